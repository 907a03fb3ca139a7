package api

import (
	"context"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

type locationsResponse struct {
	envelope
	Locations []models.Option `json:"locations"`
}

type kulamsResponse struct {
	envelope
	Kulams []models.Option `json:"kulams"`
}

// Locations returns the selectable locations. A refused response or one
// without a list yields an empty list; only transport failures are errors.
func (a *API) Locations(ctx context.Context) ([]models.Option, error) {
	var resp locationsResponse
	if err := a.c.Get(ctx, "/options/locations", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return []models.Option{}, nil
	}
	return nonNil(resp.Locations), nil
}

// Kulams returns the selectable kulams, with the same rules as Locations.
func (a *API) Kulams(ctx context.Context) ([]models.Option, error) {
	var resp kulamsResponse
	if err := a.c.Get(ctx, "/options/kulams", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return []models.Option{}, nil
	}
	return nonNil(resp.Kulams), nil
}
