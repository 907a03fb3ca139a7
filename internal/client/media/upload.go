// Package media moves files to object storage through presigned URLs and
// normalizes the media links the backend hands back.
//
// An upload is two steps: the API issues a presigned destination, then the
// bytes go straight to storage with a plain PUT. The second step carries no
// credential; the presigned URL is the authorization.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/client/transport"
)

// DefaultUploadTimeout bounds one PUT to storage.
const DefaultUploadTimeout = 2 * time.Minute

// ProgressFunc receives upload progress in [0, 1].
type ProgressFunc func(fraction float64)

// UploadError is returned when storage answers a PUT with a non-2xx status.
type UploadError struct {
	Status int
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("Upload failed: %d", e.Status)
}

// Uploader performs presigned PUTs.
type Uploader struct {
	http *http.Client
	log  *zap.Logger
}

// NewUploader returns an Uploader. A nil hc gets a client with
// DefaultUploadTimeout.
func NewUploader(hc *http.Client, log *zap.Logger) *Uploader {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultUploadTimeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{http: hc, log: log}
}

// Put streams size bytes of body to uploadURL with the given Content-Type.
// progress, if not nil, is called with 1 on success and 0 on failure.
func (u *Uploader) Put(ctx context.Context, uploadURL string, body io.Reader, size int64, contentType string, progress ProgressFunc) (err error) {
	defer func() {
		if progress == nil {
			return
		}
		if err != nil {
			progress(0)
			return
		}
		progress(1)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(transport.RequestIDHeader, uuid.NewString())

	start := time.Now()
	resp, err := u.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	u.log.Debug("upload",
		zap.String("content_type", contentType),
		zap.Int64("size", size),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UploadError{Status: resp.StatusCode}
	}
	return nil
}
