// Package repository provides the in-memory persistence behind the
// development backend: accounts, one-time passwords, posts, comments,
// likes, reports and uploaded objects.
//
// Records are returned by value. Update callbacks run under the store's
// lock and must replace pointer fields rather than write through them.
package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique field is already taken.
	ErrConflict = errors.New("already exists")
)

// SectionReview is a restricted section submission awaiting an admin.
type SectionReview struct {
	Status  models.ReviewState
	Remarks *string
	// Payload is the submitted section as JSON. It is applied on approval.
	Payload []byte
}

// UserRecord is a stored account.
type UserRecord struct {
	ID             int64
	FullName       string
	Email          string
	Mobile         *string
	Gender         *string
	DOB            *string
	Occupation     *string
	Location       *string
	Community      *string
	Kulam          *string
	NativeDistrict *string
	ProfileImage   *string
	Role           string
	Status         models.AccountStatus
	CreatedAt      time.Time

	Professional models.ProfessionalInfo
	// Sections holds every section except basic, which is derived from the fields above.
	Sections models.ProfileSections

	PendingMatrimony *SectionReview
	PendingBusiness  *SectionReview
}

type otpEntry struct {
	code    string
	expires time.Time
}

// Memory is a process-local store safe for concurrent use.
type Memory struct {
	mu sync.RWMutex

	nextID   int64
	users    map[int64]UserRecord
	byEmail  map[string]int64
	byMobile map[string]int64
	otps     map[string]otpEntry

	posts    map[int64]PostRecord
	likes    map[int64]map[int64]struct{}
	comments map[int64][]CommentRecord
	reports  []ReportRecord

	objects map[string]Object

	locations []models.Option
	kulams    []models.Option
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		users:    map[int64]UserRecord{},
		byEmail:  map[string]int64{},
		byMobile: map[string]int64{},
		otps:     map[string]otpEntry{},
		posts:    map[int64]PostRecord{},
		likes:    map[int64]map[int64]struct{}{},
		comments: map[int64][]CommentRecord{},
		objects:  map[string]Object{},
	}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func emailKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// CreateUser stores u with a fresh id. Email and mobile must be unique.
func (m *Memory) CreateUser(_ context.Context, u UserRecord) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := emailKey(u.Email)
	if _, ok := m.byEmail[key]; ok {
		return UserRecord{}, ErrConflict
	}
	if u.Mobile != nil {
		if _, ok := m.byMobile[*u.Mobile]; ok {
			return UserRecord{}, ErrConflict
		}
	}

	u.ID = m.id()
	u.Email = key
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	m.users[u.ID] = u
	m.byEmail[key] = u.ID
	if u.Mobile != nil {
		m.byMobile[*u.Mobile] = u.ID
	}
	return u, nil
}

// UserExists reports whether an account uses email.
func (m *Memory) UserExists(_ context.Context, email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byEmail[emailKey(email)]
	return ok, nil
}

// UserByEmail looks an account up by email, case-insensitively.
func (m *Memory) UserByEmail(_ context.Context, email string) (UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[emailKey(email)]
	if !ok {
		return UserRecord{}, ErrNotFound
	}
	return m.users[id], nil
}

// UserByID looks an account up by id.
func (m *Memory) UserByID(_ context.Context, id int64) (UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return UserRecord{}, ErrNotFound
	}
	return u, nil
}

// UpdateUser applies fn to the stored account. Nothing is written when fn fails.
func (m *Memory) UpdateUser(_ context.Context, id int64, fn func(*UserRecord) error) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return UserRecord{}, ErrNotFound
	}
	if err := fn(&u); err != nil {
		return UserRecord{}, err
	}
	u.ID = id
	m.users[id] = u
	return u, nil
}

// SaveOTP replaces any code pending for email.
func (m *Memory) SaveOTP(_ context.Context, email, code string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[emailKey(email)] = otpEntry{code: code, expires: expires}
	return nil
}

// ConsumeOTP reports whether code is the live code for email. A matching
// code is used up.
func (m *Memory) ConsumeOTP(_ context.Context, email, code string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := emailKey(email)
	e, ok := m.otps[key]
	if !ok || !now.Before(e.expires) || e.code != code {
		return false, nil
	}
	delete(m.otps, key)
	return true, nil
}

// DeleteExpiredOTPs drops every code that expired at or before now and
// returns how many were removed.
func (m *Memory) DeleteExpiredOTPs(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.otps {
		if !now.Before(e.expires) {
			delete(m.otps, k)
			n++
		}
	}
	return n, nil
}
