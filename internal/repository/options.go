package repository

import (
	"context"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

// SetOptions replaces the selectable locations and kulams. Ids are assigned
// in the order given, starting at 1.
func (m *Memory) SetOptions(locations, kulams []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = toOptions(locations)
	m.kulams = toOptions(kulams)
}

// Locations returns the selectable locations.
func (m *Memory) Locations(context.Context) []models.Option {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Option{}, m.locations...)
}

// Kulams returns the selectable kulams.
func (m *Memory) Kulams(context.Context) []models.Option {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Option{}, m.kulams...)
}

func toOptions(names []string) []models.Option {
	out := make([]models.Option, len(names))
	for i, n := range names {
		out[i] = models.Option{ID: int64(i + 1), Name: n}
	}
	return out
}
