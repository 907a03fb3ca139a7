package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/logger"
	"github.com/atinyakov/DigitalHouse/internal/models"
	"github.com/atinyakov/DigitalHouse/internal/repository"
)

// NotProvided stands in for masked contact details the member never gave.
const NotProvided = "—"

// ProfileRepository is what ProfileService needs from the store.
type ProfileRepository interface {
	UserByID(ctx context.Context, id int64) (repository.UserRecord, error)
	UpdateUser(ctx context.Context, id int64, fn func(*repository.UserRecord) error) (repository.UserRecord, error)
	Posts(ctx context.Context, keep func(repository.PostRecord) bool) []repository.PostRecord
	PostsLikedBy(ctx context.Context, userID int64) []repository.PostRecord
}

// ProfileService implements the member profile: the read model with masked
// contact details, section edits and the activity tabs. Matrimony and
// business edits wait for an admin unless autoApprove is set.
type ProfileService struct {
	repo        ProfileRepository
	autoApprove bool
	log         *zap.Logger
}

// NewProfileService constructs a ProfileService. A nil log discards output.
func NewProfileService(repo ProfileRepository, autoApprove bool, log *zap.Logger) *ProfileService {
	return &ProfileService{repo: repo, autoApprove: autoApprove, log: logger.OrNop(log)}
}

// MaskEmail keeps the first two characters of the local part.
func MaskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return NotProvided
	}
	keep := 2
	if at < keep {
		keep = at
	}
	return email[:keep] + "***" + email[at:]
}

// MaskMobile keeps the last four digits.
func MaskMobile(mobile *string) string {
	if mobile == nil || len(*mobile) < 4 {
		return NotProvided
	}
	m := *mobile
	return strings.Repeat("*", len(m)-4) + m[len(m)-4:]
}

func basicSection(u repository.UserRecord) *models.BasicSection {
	role := u.Role
	return &models.BasicSection{
		FullName:       u.FullName,
		DateOfBirth:    u.DOB,
		Email:          u.Email,
		Mobile:         u.Mobile,
		Gender:         u.Gender,
		NativeDistrict: u.NativeDistrict,
		Role:           &role,
	}
}

func review(r *repository.SectionReview) *models.ReviewStatus {
	if r == nil {
		return nil
	}
	return &models.ReviewStatus{Status: r.Status, AdminRemarks: r.Remarks}
}

func completion(u repository.UserRecord) int {
	fields := []bool{
		u.Mobile != nil, u.Gender != nil, u.DOB != nil, u.Occupation != nil,
		u.Location != nil, u.Kulam != nil, u.NativeDistrict != nil, u.ProfileImage != nil,
		u.Professional.Education != nil, u.Professional.JobTitle != nil,
		u.Sections.Community != nil && u.Sections.Community.NativeVillage != nil,
		u.Sections.Personal != nil && u.Sections.Personal.FatherName != nil,
	}
	n := 0
	for _, f := range fields {
		if f {
			n++
		}
	}
	return n * 100 / len(fields)
}

func (s *ProfileService) build(ctx context.Context, u repository.UserRecord) models.Profile {
	var stats models.ProfileStats
	for _, p := range s.repo.Posts(ctx, func(p repository.PostRecord) bool { return p.UserID == u.ID }) {
		stats.TotalPosts++
		switch p.PostType {
		case models.PostJob:
			stats.JobsPosted++
		case models.PostMarketplace:
			stats.MarketplaceItems++
		case models.PostHelpRequest:
			stats.HelpRequests++
		}
	}

	sections := u.Sections
	sections.Basic = basicSection(u)
	pct := completion(u)
	showMatrimony := sections.Matrimony != nil && sections.Matrimony.MatrimonyProfileActive
	showBusiness := sections.Business != nil && sections.Business.BusinessProfileActive

	return models.Profile{
		ID:           u.ID,
		Name:         u.FullName,
		ProfileImage: u.ProfileImage,
		Verified:     u.Status == models.AccountApproved,
		MemberSince:  u.CreatedAt.Format("Jan 2006"),
		PersonalInfo: models.PersonalInfo{
			MaskedMobile: MaskMobile(u.Mobile),
			MaskedEmail:  MaskEmail(u.Email),
			Gender:       u.Gender,
			DOB:          u.DOB,
			City:         u.Location,
			District:     u.NativeDistrict,
		},
		ProfessionalInfo:     u.Professional,
		Stats:                stats,
		CompletionPercentage: &pct,
		ShowMatrimony:        &showMatrimony,
		ShowBusiness:         &showBusiness,
		Sections:             &sections,
		PendingMatrimony:     review(u.PendingMatrimony),
		PendingBusiness:      review(u.PendingBusiness),
	}
}

// Profile returns the member's profile.
func (s *ProfileService) Profile(ctx context.Context, userID int64) (models.Profile, error) {
	u, err := s.repo.UserByID(ctx, userID)
	if err != nil {
		return models.Profile{}, notFound(err, "Profile not found")
	}
	return s.build(ctx, u), nil
}

// UpdateProfile sets the top-level fields present in req.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, req models.ProfileUpdateRequest) (models.Profile, error) {
	u, err := s.repo.UpdateUser(ctx, userID, func(u *repository.UserRecord) error {
		set := func(dst **string, v *string) {
			if v != nil {
				*dst = trimPtr(v)
			}
		}
		set(&u.ProfileImage, req.ProfileImage)
		set(&u.Location, req.City)
		set(&u.NativeDistrict, req.District)
		set(&u.Professional.Education, req.Education)
		set(&u.Professional.JobTitle, req.JobTitle)
		set(&u.Professional.CompanyName, req.CompanyName)
		set(&u.Professional.WorkLocation, req.WorkLocation)
		set(&u.Professional.Skills, req.Skills)
		return nil
	})
	if err != nil {
		return models.Profile{}, notFound(err, "Profile not found")
	}
	return s.build(ctx, u), nil
}

// basicFields are the editable fields of the basic section. Email, mobile
// and role cannot be changed here.
type basicFields struct {
	FullName       *string `json:"full_name,omitempty"`
	DateOfBirth    *string `json:"date_of_birth"`
	Gender         *string `json:"gender"`
	NativeDistrict *string `json:"native_district"`
}

var errBadPayload = errors.New("bad payload")

func invalidPayload(err error) error {
	return &Error{Kind: KindInvalid, Message: "Invalid section payload", Err: err}
}

// current returns the section as JSON in the shape PutSection accepts. For a
// restricted section with a submission under review, that submission is current.
func current(u repository.UserRecord, section models.SectionName) ([]byte, error) {
	var v any
	switch section {
	case models.SectionBasic:
		v = basicFields{FullName: &u.FullName, DateOfBirth: u.DOB, Gender: u.Gender, NativeDistrict: u.NativeDistrict}
	case models.SectionCommunity:
		v = u.Sections.Community
	case models.SectionPersonal:
		v = u.Sections.Personal
	case models.SectionFamily:
		v = u.Sections.Family
	case models.SectionMatrimony:
		if r := u.PendingMatrimony; r != nil && r.Status == models.ReviewPending {
			return r.Payload, nil
		}
		v = u.Sections.Matrimony
	case models.SectionBusiness:
		if r := u.PendingBusiness; r != nil && r.Status == models.ReviewPending {
			return r.Payload, nil
		}
		v = u.Sections.Business
	}
	return json.Marshal(v)
}

// merge overlays the top-level keys of patch onto base.
func merge(base, patch []byte) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(base) > 0 && string(base) != "null" {
		if err := json.Unmarshal(base, &fields); err != nil {
			return nil, err
		}
	}
	var over map[string]json.RawMessage
	if err := json.Unmarshal(patch, &over); err != nil {
		return nil, err
	}
	if over == nil {
		return nil, errBadPayload
	}
	for k, v := range over {
		fields[k] = v
	}
	return json.Marshal(fields)
}

// apply decodes payload into the visible section.
func apply(u *repository.UserRecord, section models.SectionName, payload []byte) error {
	decode := func(dst any) error {
		if err := json.Unmarshal(payload, dst); err != nil {
			return invalidPayload(err)
		}
		return nil
	}
	switch section {
	case models.SectionBasic:
		var b basicFields
		if err := decode(&b); err != nil {
			return err
		}
		if b.FullName != nil {
			name := strings.TrimSpace(*b.FullName)
			if name == "" {
				return fail(KindInvalid, "Full name is required")
			}
			u.FullName = name
		}
		u.DOB = trimPtr(b.DateOfBirth)
		u.Gender = trimPtr(b.Gender)
		u.NativeDistrict = trimPtr(b.NativeDistrict)
	case models.SectionCommunity:
		var c models.CommunitySection
		if err := decode(&c); err != nil {
			return err
		}
		u.Sections.Community = &c
		u.Kulam = c.Kulam
	case models.SectionPersonal:
		var p models.PersonalSection
		if err := decode(&p); err != nil {
			return err
		}
		u.Sections.Personal = &p
		u.Occupation = p.Occupation
	case models.SectionFamily:
		var f models.FamilySection
		if err := decode(&f); err != nil {
			return err
		}
		u.Sections.Family = &f
	case models.SectionMatrimony:
		var m models.MatrimonySection
		if err := decode(&m); err != nil {
			return err
		}
		u.Sections.Matrimony = &m
	case models.SectionBusiness:
		var b models.BusinessSection
		if err := decode(&b); err != nil {
			return err
		}
		u.Sections.Business = &b
	}
	return nil
}

func reviewSlot(u *repository.UserRecord, section models.SectionName) **repository.SectionReview {
	if section == models.SectionMatrimony {
		return &u.PendingMatrimony
	}
	return &u.PendingBusiness
}

// PutSection replaces one section. Restricted sections are held for review.
func (s *ProfileService) PutSection(ctx context.Context, userID int64, section models.SectionName, payload []byte) (models.Profile, error) {
	return s.updateSection(ctx, userID, section, func(repository.UserRecord) ([]byte, error) {
		return payload, nil
	})
}

// PatchSection merges the top-level fields of payload into one section.
func (s *ProfileService) PatchSection(ctx context.Context, userID int64, section models.SectionName, payload []byte) (models.Profile, error) {
	return s.updateSection(ctx, userID, section, func(u repository.UserRecord) ([]byte, error) {
		base, err := current(u, section)
		if err != nil {
			return nil, err
		}
		merged, err := merge(base, payload)
		if err != nil {
			return nil, invalidPayload(err)
		}
		return merged, nil
	})
}

func (s *ProfileService) updateSection(ctx context.Context, userID int64, section models.SectionName, body func(repository.UserRecord) ([]byte, error)) (models.Profile, error) {
	if !section.Valid() {
		return models.Profile{}, fail(KindNotFound, "Unknown profile section")
	}
	u, err := s.repo.UpdateUser(ctx, userID, func(u *repository.UserRecord) error {
		payload, err := body(*u)
		if err != nil {
			return err
		}
		if !json.Valid(payload) {
			return invalidPayload(errBadPayload)
		}
		if !section.Restricted() {
			return apply(u, section, payload)
		}

		// Decode into a scratch copy so a malformed submission is refused now.
		scratch := *u
		if err := apply(&scratch, section, payload); err != nil {
			return err
		}
		if s.autoApprove {
			*u = scratch
			*reviewSlot(u, section) = &repository.SectionReview{Status: models.ReviewApproved}
			return nil
		}
		*reviewSlot(u, section) = &repository.SectionReview{Status: models.ReviewPending, Payload: payload}
		return nil
	})
	if err != nil {
		return models.Profile{}, notFound(err, "Profile not found")
	}
	s.log.Info("profile section updated", zap.Int64("user_id", userID), zap.String("section", string(section)))
	return s.build(ctx, u), nil
}

// ReviewSection approves or rejects the pending submission of a restricted
// section. Approval makes the submission visible.
func (s *ProfileService) ReviewSection(ctx context.Context, userID int64, section models.SectionName, approve bool, remarks *string) (models.Profile, error) {
	if !section.Restricted() {
		return models.Profile{}, fail(KindInvalid, "Only matrimony and business sections are reviewed")
	}
	u, err := s.repo.UpdateUser(ctx, userID, func(u *repository.UserRecord) error {
		slot := reviewSlot(u, section)
		r := *slot
		if r == nil || r.Status != models.ReviewPending {
			return fail(KindNotFound, "Nothing to review")
		}
		if approve {
			if err := apply(u, section, r.Payload); err != nil {
				return err
			}
			*slot = &repository.SectionReview{Status: models.ReviewApproved, Remarks: trimPtr(remarks)}
			return nil
		}
		*slot = &repository.SectionReview{Status: models.ReviewRejected, Remarks: trimPtr(remarks), Payload: r.Payload}
		return nil
	})
	if err != nil {
		return models.Profile{}, notFound(err, "Profile not found")
	}
	s.log.Info("profile section reviewed",
		zap.Int64("user_id", userID), zap.String("section", string(section)), zap.Bool("approved", approve))
	return s.build(ctx, u), nil
}

// SetAccountStatus moves an account between pending, approved and rejected.
func (s *ProfileService) SetAccountStatus(ctx context.Context, userID int64, status models.AccountStatus) (models.User, error) {
	switch status {
	case models.AccountPending, models.AccountApproved, models.AccountRejected:
	default:
		return models.User{}, fail(KindInvalid, fmt.Sprintf("Unknown status %q", status))
	}
	u, err := s.repo.UpdateUser(ctx, userID, func(u *repository.UserRecord) error {
		u.Status = status
		return nil
	})
	if err != nil {
		return models.User{}, notFound(err, "User not found")
	}
	s.log.Info("account status changed", zap.Int64("user_id", userID), zap.String("status", string(status)))
	return UserModel(u), nil
}

func activityStatus(p repository.PostRecord) string {
	if p.PostType == models.PostJob && !jobOpen(p) {
		return "Closed"
	}
	return "Active"
}

// Activity returns one page of the member's posts or liked posts. Saving
// posts is not supported, so the saved tab is always empty.
func (s *ProfileService) Activity(ctx context.Context, userID int64, tab models.ActivityTab, page, limit int) (models.ActivityPage, error) {
	page, limit = Paging(page, limit)
	var posts []repository.PostRecord
	switch tab {
	case models.ActivityMine:
		posts = s.repo.Posts(ctx, func(p repository.PostRecord) bool { return p.UserID == userID })
	case models.ActivityLiked:
		posts = s.repo.PostsLikedBy(ctx, userID)
	case models.ActivitySaved:
	default:
		return models.ActivityPage{}, fail(KindInvalid, "Unknown activity tab")
	}

	items := make([]models.ActivityItem, 0, limit)
	for _, p := range repository.Window(posts, (page-1)*limit, limit) {
		items = append(items, models.ActivityItem{
			PostID:    p.ID,
			Title:     p.Title,
			PostType:  p.PostType,
			CreatedAt: p.CreatedAt,
			Status:    activityStatus(p),
		})
	}
	return models.ActivityPage{Items: items, Page: page, Limit: limit, Total: len(posts)}, nil
}
