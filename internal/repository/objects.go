package repository

import (
	"context"
	"time"
)

// Object is an uploaded file.
type Object struct {
	Key         string
	ContentType string
	Data        []byte
	UploadedAt  time.Time
}

// PutObject stores or replaces the object under o.Key.
func (m *Memory) PutObject(_ context.Context, o Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.UploadedAt.IsZero() {
		o.UploadedAt = time.Now().UTC()
	}
	m.objects[o.Key] = o
	return nil
}

// Object returns the object stored under key.
func (m *Memory) Object(_ context.Context, key string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	if !ok {
		return Object{}, ErrNotFound
	}
	return o, nil
}
