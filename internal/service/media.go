package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/logger"
	"github.com/atinyakov/DigitalHouse/internal/models"
	"github.com/atinyakov/DigitalHouse/internal/repository"
)

// Upload limits.
const (
	MaxImageBytes    = 5 << 20
	MaxVideoBytes    = 15 << 20
	MaxDocumentBytes = 5 << 20
	UploadURLTTL     = 15 * time.Minute
)

// UploadPrefix is the path under which uploaded objects are stored and served.
const UploadPrefix = "/uploads/"

var mediaTypes = map[string]int64{
	"image/jpeg": MaxImageBytes,
	"image/png":  MaxImageBytes,
	"video/mp4":  MaxVideoBytes,
}

var horoscopeTypes = map[string]int64{
	"application/pdf": MaxDocumentBytes,
	"image/jpeg":      MaxImageBytes,
	"image/png":       MaxImageBytes,
}

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"video/mp4":       ".mp4",
	"application/pdf": ".pdf",
}

// ObjectRepository stores uploaded files.
type ObjectRepository interface {
	PutObject(ctx context.Context, o repository.Object) error
	Object(ctx context.Context, key string) (repository.Object, error)
}

// MediaService hands out presigned upload URLs and accepts the uploads.
type MediaService struct {
	repo      ObjectRepository
	tokens    *Tokens
	publicURL string
	log       *zap.Logger
}

// NewMediaService constructs a MediaService. publicURL is the origin the
// upload and public URLs are built on.
func NewMediaService(repo ObjectRepository, tokens *Tokens, publicURL string, log *zap.Logger) *MediaService {
	return &MediaService{
		repo:      repo,
		tokens:    tokens,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       logger.OrNop(log),
	}
}

func extension(fileName, fileType string) string {
	if ext := strings.ToLower(path.Ext(fileName)); ext != "" && len(ext) <= 5 {
		return ext
	}
	return extensions[fileType]
}

func checkFile(allowed map[string]int64, fileType string, size int64) (int64, error) {
	limit, ok := allowed[fileType]
	switch {
	case !ok:
		return 0, fail(KindInvalid, "Unsupported file type")
	case size <= 0:
		return 0, fail(KindInvalid, "File size is required")
	case size > limit:
		return 0, fail(KindTooLarge, fmt.Sprintf("File must be ≤ %d MB", limit>>20))
	}
	return limit, nil
}

func (s *MediaService) target(key, contentType string, limit int64) (models.UploadTarget, error) {
	sig, err := s.tokens.SignUpload(UploadGrant{Key: key, ContentType: contentType, MaxSize: limit}, UploadURLTTL)
	if err != nil {
		return models.UploadTarget{}, err
	}
	public := s.publicURL + UploadPrefix + key
	return models.UploadTarget{
		UploadURL: public + "?" + url.Values{"sig": {sig}}.Encode(),
		PublicURL: public,
		Key:       key,
	}, nil
}

// UploadURL returns a presigned destination for a media file.
func (s *MediaService) UploadURL(_ context.Context, userID int64, req models.UploadURLRequest) (models.UploadTarget, error) {
	if !req.Module.Valid() {
		return models.UploadTarget{}, fail(KindInvalid, "Invalid module")
	}
	limit, err := checkFile(mediaTypes, req.FileType, req.FileSize)
	if err != nil {
		return models.UploadTarget{}, err
	}
	key := fmt.Sprintf("%s/%d/%s%s", req.Module, userID, uuid.NewString(), extension(req.FileName, req.FileType))
	return s.target(key, req.FileType, limit)
}

// HoroscopeUploadURL returns a presigned destination for a horoscope document.
func (s *MediaService) HoroscopeUploadURL(_ context.Context, userID int64, req models.HoroscopeUploadRequest) (models.UploadTarget, error) {
	limit, err := checkFile(horoscopeTypes, req.FileType, req.FileSize)
	if err != nil {
		return models.UploadTarget{}, err
	}
	key := fmt.Sprintf("%s/horoscope/%d/%s%s", models.MediaMatrimony, userID, uuid.NewString(), extension(req.FileName, req.FileType))
	return s.target(key, req.FileType, limit)
}

// Accept stores an upload made through a presigned URL.
func (s *MediaService) Accept(ctx context.Context, key, sig, contentType string, body io.Reader) error {
	grant, err := s.tokens.VerifyUpload(sig, key)
	if err != nil {
		return &Error{Kind: KindForbidden, Message: "Invalid or expired upload URL", Err: err}
	}
	if grant.ContentType != "" && !strings.EqualFold(grant.ContentType, contentType) {
		return fail(KindInvalid, "Content type does not match the upload URL")
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(body, grant.MaxSize+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if n > grant.MaxSize {
		return fail(KindTooLarge, "File exceeds the size allowed by the upload URL")
	}
	if err := s.repo.PutObject(ctx, repository.Object{Key: key, ContentType: grant.ContentType, Data: buf.Bytes()}); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	s.log.Info("upload stored", zap.String("key", key), zap.Int64("bytes", n))
	return nil
}

// Object returns an uploaded file.
func (s *MediaService) Object(ctx context.Context, key string) (repository.Object, error) {
	o, err := s.repo.Object(ctx, key)
	if err != nil {
		return repository.Object{}, notFound(err, "File not found")
	}
	return o, nil
}
