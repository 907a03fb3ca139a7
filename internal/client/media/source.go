package media

import (
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Upload limits.
const (
	MaxImageSize     = 5 * 1024 * 1024
	MaxVideoSize     = 15 * 1024 * 1024
	MaxVideoDuration = 30 * time.Second
)

var (
	// ErrUnsupportedURI is returned for URIs that do not name a local file.
	ErrUnsupportedURI = errors.New("unsupported file uri")
	// ErrUnsupportedType is returned for files that are neither an allowed image nor video.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrImageTooLarge is returned for images over MaxImageSize.
	ErrImageTooLarge = errors.New("image exceeds 5 MB")
	// ErrVideoTooLarge is returned for videos over MaxVideoSize.
	ErrVideoTooLarge = errors.New("video exceeds 15 MB")
	// ErrVideoTooLong is returned for videos over MaxVideoDuration.
	ErrVideoTooLong = errors.New("video exceeds 30 seconds")
)

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

var videoTypes = map[string]bool{
	"video/mp4": true,
}

// IsImage reports whether contentType is an accepted image type.
func IsImage(contentType string) bool { return imageTypes[contentType] }

// IsVideo reports whether contentType is an accepted video type.
func IsVideo(contentType string) bool { return videoTypes[contentType] }

// ValidateImage checks an image's type and size.
func ValidateImage(contentType string, size int64) error {
	if !IsImage(contentType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if size > MaxImageSize {
		return ErrImageTooLarge
	}
	return nil
}

// ValidateVideo checks a video's type, size and duration. A zero duration
// means it is unknown and is not checked.
func ValidateVideo(contentType string, size int64, duration time.Duration) error {
	if !IsVideo(contentType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if size > MaxVideoSize {
		return ErrVideoTooLarge
	}
	if duration < 0 {
		return ErrBadDuration
	}
	if duration > MaxVideoDuration {
		return ErrVideoTooLong
	}
	return nil
}

// LocalPath turns a picker URI into a filesystem path. Plain paths and
// file:// URIs are accepted; content:// and other schemes are not, since
// they need a platform resolver to read.
func LocalPath(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", fmt.Errorf("%w: empty", ErrUnsupportedURI)
	}
	if !strings.Contains(uri, "://") {
		return filepath.Clean(uri), nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedURI, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURI, u.Scheme)
	}
	if u.Path == "" {
		return "", fmt.Errorf("%w: no path", ErrUnsupportedURI)
	}
	return filepath.FromSlash(u.Path), nil
}

// Source is an opened local file ready to upload.
type Source struct {
	*os.File
	Name        string
	ContentType string
	Size        int64
}

// OpenSource resolves uri with LocalPath, opens the file and detects its
// type from the extension. The caller closes the returned Source.
func OpenSource(uri string) (*Source, error) {
	path, err := LocalPath(uri)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &Source{
		File:        f,
		Name:        filepath.Base(path),
		ContentType: DetectType(path),
		Size:        info.Size(),
	}, nil
}

// DetectType returns the MIME type for a file name, without parameters,
// or "application/octet-stream" when the extension is unknown.
func DetectType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".mp4":
		return "video/mp4"
	case ".pdf":
		return "application/pdf"
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		if base, _, err := mime.ParseMediaType(t); err == nil {
			return base
		}
	}
	return "application/octet-stream"
}
