package api

import (
	"context"

	"github.com/atinyakov/DigitalHouse/internal/client/transport"
)

// Landing returns the public landing headline. The endpoint carries no ok flag.
func (a *API) Landing(ctx context.Context) (string, error) {
	var resp struct {
		Headline string `json:"headline"`
	}
	if err := a.c.Get(ctx, "/landing", nil, &resp); err != nil {
		return "", transport.WithFallback(err, "Failed to load landing content")
	}
	return resp.Headline, nil
}
