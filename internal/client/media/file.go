package media

import (
	"context"
	"fmt"
	"io"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

// URLRequester issues presigned upload destinations.
type URLRequester interface {
	UploadURL(ctx context.Context, req models.UploadURLRequest) (models.UploadTarget, error)
}

// Validate checks an opened source against the limits for its type. mp4
// durations are read from the file itself, once its size is known to be
// within the limit.
func Validate(src *Source) error {
	switch {
	case IsImage(src.ContentType):
		return ValidateImage(src.ContentType, src.Size)
	case IsVideo(src.ContentType):
		if err := ValidateVideo(src.ContentType, src.Size, 0); err != nil {
			return err
		}
		d, err := VideoDuration(src)
		if err != nil {
			return fmt.Errorf("read video duration: %w", err)
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return err
		}
		return ValidateVideo(src.ContentType, src.Size, d)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedType, src.ContentType)
}

// UploadFile opens uri, validates it, requests a presigned destination for
// module and PUTs the bytes. It returns the URL the file is served from.
func (u *Uploader) UploadFile(ctx context.Context, req URLRequester, module models.MediaModule, uri string, progress ProgressFunc) (models.UploadTarget, error) {
	src, err := OpenSource(uri)
	if err != nil {
		return models.UploadTarget{}, err
	}
	defer src.Close()

	if err := Validate(src); err != nil {
		return models.UploadTarget{}, err
	}

	target, err := req.UploadURL(ctx, models.UploadURLRequest{
		FileName: src.Name,
		FileType: src.ContentType,
		FileSize: src.Size,
		Module:   module,
	})
	if err != nil {
		return models.UploadTarget{}, err
	}

	if err := u.Put(ctx, target.UploadURL, src, src.Size, src.ContentType, progress); err != nil {
		return models.UploadTarget{}, err
	}
	return target, nil
}
