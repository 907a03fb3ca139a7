package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

// Placeholder shown for profile values the server did not send.
const (
	DefaultName   = "User"
	MissingMarker = "—"
)

type personalInfoWire struct {
	MaskedMobile *string `json:"masked_mobile"`
	MaskedEmail  *string `json:"masked_email"`
	Gender       *string `json:"gender"`
	DOB          *string `json:"dob"`
	BloodGroup   *string `json:"blood_group"`
	City         *string `json:"city"`
	District     *string `json:"district"`
}

type statsWire struct {
	TotalPosts       *int `json:"total_posts"`
	JobsPosted       *int `json:"jobs_posted"`
	MarketplaceItems *int `json:"marketplace_items"`
	HelpRequests     *int `json:"help_requests"`
}

type profileResponse struct {
	envelope
	ID                   *int64                   `json:"id"`
	Name                 *string                  `json:"name"`
	ProfileImage         *string                  `json:"profile_image"`
	Verified             *bool                    `json:"verified"`
	MemberSince          *string                  `json:"member_since"`
	PersonalInfo         *personalInfoWire        `json:"personal_info"`
	ProfessionalInfo     *models.ProfessionalInfo `json:"professional_info"`
	Stats                *statsWire               `json:"stats"`
	CompletionPercentage *int                     `json:"completion_percentage"`
	ShowMatrimony        *bool                    `json:"show_matrimony"`
	ShowBusiness         *bool                    `json:"show_business"`
	Sections             *models.ProfileSections  `json:"sections"`
	PendingMatrimony     *models.ReviewStatus     `json:"pending_matrimony"`
	PendingBusiness      *models.ReviewStatus     `json:"pending_business"`
}

func (w *profileResponse) toModel() models.Profile {
	p := models.Profile{
		ID:                   valueOr(w.ID, 0),
		Name:                 strings.TrimSpace(valueOr(w.Name, "")),
		ProfileImage:         w.ProfileImage,
		Verified:             valueOr(w.Verified, false),
		MemberSince:          valueOr(w.MemberSince, MissingMarker),
		ProfessionalInfo:     valueOr(w.ProfessionalInfo, models.ProfessionalInfo{}),
		CompletionPercentage: w.CompletionPercentage,
		ShowMatrimony:        w.ShowMatrimony,
		ShowBusiness:         w.ShowBusiness,
		Sections:             w.Sections,
		PendingMatrimony:     w.PendingMatrimony,
		PendingBusiness:      w.PendingBusiness,
	}
	if p.Name == "" {
		p.Name = DefaultName
	}

	pi := valueOr(w.PersonalInfo, personalInfoWire{})
	p.PersonalInfo = models.PersonalInfo{
		MaskedMobile: valueOr(pi.MaskedMobile, MissingMarker),
		MaskedEmail:  valueOr(pi.MaskedEmail, MissingMarker),
		Gender:       pi.Gender,
		DOB:          pi.DOB,
		BloodGroup:   pi.BloodGroup,
		City:         pi.City,
		District:     pi.District,
	}

	st := valueOr(w.Stats, statsWire{})
	p.Stats = models.ProfileStats{
		TotalPosts:       valueOr(st.TotalPosts, 0),
		JobsPosted:       valueOr(st.JobsPosted, 0),
		MarketplaceItems: valueOr(st.MarketplaceItems, 0),
		HelpRequests:     valueOr(st.HelpRequests, 0),
	}
	return p
}

type activityResponse struct {
	envelope
	Items []models.ActivityItem `json:"items"`
	Page  *int                  `json:"page"`
	Limit *int                  `json:"limit"`
	Total *int                  `json:"total"`
}

func (a *API) profile(ctx context.Context, method, path string, body any, fallback string) (models.Profile, error) {
	var resp profileResponse
	if err := a.call(ctx, method, path, nil, body, &resp, fallback); err != nil {
		return models.Profile{}, err
	}
	return resp.toModel(), nil
}

// Profile returns the signed-in member's profile with masked contact details.
func (a *API) Profile(ctx context.Context) (models.Profile, error) {
	return a.profile(ctx, http.MethodGet, "/profile/me", nil, "Failed to load profile")
}

// UpdateProfile edits the top-level profile fields and returns the updated profile.
func (a *API) UpdateProfile(ctx context.Context, req models.ProfileUpdateRequest) (models.Profile, error) {
	return a.profile(ctx, http.MethodPut, "/profile/me", req, "Failed to update profile")
}

// PatchProfileSection merges payload into one section.
func (a *API) PatchProfileSection(ctx context.Context, section models.SectionName, payload any) (models.Profile, error) {
	if !section.Valid() {
		return models.Profile{}, fmt.Errorf("unknown profile section %q", section)
	}
	return a.profile(ctx, http.MethodPatch, "/profile/me/sections/"+string(section), payload, "Failed to update profile section")
}

// PutProfileSection replaces one section. Restricted sections go to review.
func (a *API) PutProfileSection(ctx context.Context, section models.SectionName, payload any) (models.Profile, error) {
	if !section.Valid() {
		return models.Profile{}, fmt.Errorf("unknown profile section %q", section)
	}
	return a.profile(ctx, http.MethodPut, "/profile/"+string(section), payload, "Failed to update profile section")
}

// ProfileActivity returns one page of the member's posts, saved or liked items.
func (a *API) ProfileActivity(ctx context.Context, tab models.ActivityTab, page, limit int) (models.ActivityPage, error) {
	if !tab.Valid() {
		return models.ActivityPage{}, fmt.Errorf("unknown activity tab %q", tab)
	}
	q := pageQuery(page, limit)
	q.Set("tab", string(tab))

	var resp activityResponse
	if err := a.call(ctx, http.MethodGet, "/profile/activity", q, nil, &resp, "Failed to load activity"); err != nil {
		return models.ActivityPage{}, err
	}
	return models.ActivityPage{
		Items: nonNil(resp.Items),
		Page:  valueOr(resp.Page, page),
		Limit: valueOr(resp.Limit, limit),
		Total: valueOr(resp.Total, 0),
	}, nil
}

// HoroscopeFileTypes are the MIME types accepted for a horoscope document.
var HoroscopeFileTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// HoroscopeUploadURL returns a presigned destination for a horoscope document.
func (a *API) HoroscopeUploadURL(ctx context.Context, req models.HoroscopeUploadRequest) (models.UploadTarget, error) {
	ok := false
	for _, t := range HoroscopeFileTypes {
		if req.FileType == t {
			ok = true
			break
		}
	}
	if !ok {
		return models.UploadTarget{}, fmt.Errorf("unsupported horoscope file type %q", req.FileType)
	}
	return a.uploadTarget(ctx, "/profile/me/horoscope-upload-url", req)
}
