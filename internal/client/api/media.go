package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

type uploadTargetResponse struct {
	envelope
	models.UploadTarget
}

func (a *API) uploadTarget(ctx context.Context, path string, body any) (models.UploadTarget, error) {
	const fallback = "Failed to get upload URL"

	var resp uploadTargetResponse
	if err := a.call(ctx, http.MethodPost, path, nil, body, &resp, fallback); err != nil {
		return models.UploadTarget{}, err
	}
	if resp.UploadURL == "" || resp.PublicURL == "" {
		return models.UploadTarget{}, decodeError(http.MethodPost, path, fallback, "missing uploadUrl or publicUrl")
	}
	return resp.UploadTarget, nil
}

// UploadURL returns a presigned PUT destination for a media file.
func (a *API) UploadURL(ctx context.Context, req models.UploadURLRequest) (models.UploadTarget, error) {
	if !req.Module.Valid() {
		return models.UploadTarget{}, fmt.Errorf("unknown media module %q", req.Module)
	}
	return a.uploadTarget(ctx, "/media/upload-url", req)
}
