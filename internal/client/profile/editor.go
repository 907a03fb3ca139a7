package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/client/media"
	"github.com/atinyakov/DigitalHouse/internal/models"
)

var (
	// ErrNotLoaded is returned by operations that need a baseline before Load succeeded.
	ErrNotLoaded = errors.New("profile not loaded")
	// ErrSaving is returned when a save is already in flight.
	ErrSaving = errors.New("save already in progress")
	// ErrSectionLocked is returned when a changed section is awaiting admin review.
	ErrSectionLocked = errors.New("section is awaiting review")
)

// Source is the slice of the API the editor uses.
type Source interface {
	Profile(ctx context.Context) (models.Profile, error)
	PutProfileSection(ctx context.Context, section models.SectionName, payload any) (models.Profile, error)
	HoroscopeUploadURL(ctx context.Context, req models.HoroscopeUploadRequest) (models.UploadTarget, error)
}

// Putter sends bytes to a presigned URL.
type Putter interface {
	Put(ctx context.Context, uploadURL string, body io.Reader, size int64, contentType string, progress media.ProgressFunc) error
}

// Result describes a finished save.
type Result struct {
	// NoChanges is set when nothing differed and nothing was sent.
	NoChanges bool
	// Sections lists the sections submitted, in order.
	Sections []models.SectionName
	// Review is set when any submitted section goes through admin review.
	Review bool
	// Profile is the last profile the server returned.
	Profile models.Profile
}

// Title is the heading of the notice shown after a save.
func (r Result) Title() string {
	switch {
	case r.NoChanges:
		return "No changes"
	case r.Review:
		return "Submitted for Review"
	}
	return "Profile Updated"
}

// Message is the body of the notice shown after a save.
func (r Result) Message() string {
	switch {
	case r.NoChanges:
		return "You haven't made any changes to save."
	case r.Review:
		return "Your Matrimony/Business details have been submitted for admin review. You will see status updates on this page."
	}
	return "Your profile has been updated."
}

// Editor holds the profile being edited and its baseline.
type Editor struct {
	src Source
	up  Putter
	log *zap.Logger

	mu       sync.Mutex
	loaded   bool
	profile  models.Profile
	baseline Form
	saving   bool
}

// NewEditor returns an Editor. up may be nil when horoscope upload is not used.
func NewEditor(src Source, up Putter, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Editor{src: src, up: up, log: log}
}

// Load fetches the profile and captures it as the baseline. The returned
// form is the caller's copy to edit.
func (e *Editor) Load(ctx context.Context) (Form, error) {
	p, err := e.src.Profile(ctx)
	if err != nil {
		return Form{}, err
	}
	f := FormFromProfile(p)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile = p
	e.baseline = f
	e.loaded = true
	return f, nil
}

// Baseline returns the form as last confirmed by the server.
func (e *Editor) Baseline() (Form, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.baseline, e.loaded
}

// Profile returns the last profile the server returned.
func (e *Editor) Profile() (models.Profile, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile, e.loaded
}

// Review returns the admin review of a restricted section, or nil.
func (e *Editor) Review(section models.SectionName) *models.ReviewStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile.Review(section)
}

// Locked reports whether section may not be submitted because its last
// submission is still pending review.
func (e *Editor) Locked(section models.SectionName) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return locked(e.profile, section)
}

func locked(p models.Profile, section models.SectionName) bool {
	r := p.Review(section)
	return section.Restricted() && r != nil && r.Status == models.ReviewPending
}

// Pending lists the sections of current that a save would submit.
func (e *Editor) Pending(current Form) []Change {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Diff(e.baseline, current)
}

// Save submits every section of current that differs from the baseline, in
// section order and one at a time. Each section is compared to the baseline
// left by the previous submission. On error the sections already submitted
// stay applied and are listed in the returned Result.
func (e *Editor) Save(ctx context.Context, current Form) (Result, error) {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return Result{}, ErrNotLoaded
	}
	if e.saving {
		e.mu.Unlock()
		return Result{}, ErrSaving
	}
	changes := Diff(e.baseline, current)
	for _, c := range changes {
		if locked(e.profile, c.Section) {
			e.mu.Unlock()
			return Result{}, fmt.Errorf("%w: %s", ErrSectionLocked, c.Section)
		}
	}
	if len(changes) == 0 {
		p := e.profile
		e.mu.Unlock()
		return Result{NoChanges: true, Profile: p}, nil
	}
	e.saving = true
	baseline := e.baseline
	res := Result{Profile: e.profile}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.saving = false
		e.mu.Unlock()
	}()

	for _, s := range models.Sections {
		c, ok := diffSection(s, baseline, current)
		if !ok {
			continue
		}
		p, err := e.src.PutProfileSection(ctx, s, c.Payload)
		if err != nil {
			e.log.Warn("profile section save failed", zap.String("section", string(s)), zap.Error(err))
			return res, fmt.Errorf("save %s: %w", s, err)
		}

		res.Sections = append(res.Sections, s)
		res.Profile = p
		if s.Restricted() {
			res.Review = true
		}

		next := FormFromProfile(p)
		// The server keeps restricted submissions aside until they are
		// approved, so its response still shows the old values.
		for _, done := range res.Sections {
			if done.Restricted() {
				next = next.withSection(done, current)
			}
		}
		baseline = next

		e.mu.Lock()
		e.baseline = baseline
		e.profile = p
		e.mu.Unlock()
	}
	return res, nil
}

// UploadHoroscope uploads a horoscope document and returns its public URL.
// Nothing is recorded on the profile: the caller sets the URL on
// Form.Matrimony and the next Save submits it with the rest of the section.
func (e *Editor) UploadHoroscope(ctx context.Context, name, contentType string, body io.Reader, size int64, progress media.ProgressFunc) (string, error) {
	if e.up == nil {
		return "", errors.New("no uploader configured")
	}
	if _, ok := e.Baseline(); !ok {
		return "", ErrNotLoaded
	}

	target, err := e.src.HoroscopeUploadURL(ctx, models.HoroscopeUploadRequest{
		FileName: name,
		FileType: contentType,
		FileSize: size,
	})
	if err != nil {
		return "", err
	}
	if err := e.up.Put(ctx, target.UploadURL, body, size, contentType, progress); err != nil {
		return "", err
	}
	return target.PublicURL, nil
}
