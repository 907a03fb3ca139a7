package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/DigitalHouse/internal/models"
	"github.com/atinyakov/DigitalHouse/internal/repository"
)

func newProfile(t *testing.T, autoApprove bool) (*ProfileService, *repository.Memory, int64) {
	t.Helper()
	repo := repository.NewMemory()
	mobile := "9876543210"
	u, err := repo.CreateUser(context.Background(), repository.UserRecord{
		FullName: "Kavin", Email: "kavin@example.com", Mobile: &mobile,
		Role: "MEMBER", Status: models.AccountApproved,
	})
	require.NoError(t, err)
	return NewProfileService(repo, autoApprove, nil), repo, u.ID
}

func TestMasking(t *testing.T) {
	assert.Equal(t, "ka***@example.com", MaskEmail("kavin@example.com"))
	assert.Equal(t, "k***@e.co", MaskEmail("k@e.co"))
	assert.Equal(t, NotProvided, MaskEmail("nope"))
	m := "9876543210"
	assert.Equal(t, "******3210", MaskMobile(&m))
	assert.Equal(t, NotProvided, MaskMobile(nil))
}

func TestProfile(t *testing.T) {
	s, _, id := newProfile(t, false)
	p, err := s.Profile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Kavin", p.Name)
	assert.True(t, p.Verified)
	assert.Equal(t, "ka***@example.com", p.PersonalInfo.MaskedEmail)
	require.NotNil(t, p.Sections)
	require.NotNil(t, p.Sections.Basic)
	assert.Equal(t, "kavin@example.com", p.Sections.Basic.Email)
	assert.Equal(t, "MEMBER", *p.Sections.Basic.Role)
	require.NotNil(t, p.CompletionPercentage)
	assert.False(t, *p.ShowMatrimony)

	_, err = s.Profile(context.Background(), 999)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestPutSection_Basic(t *testing.T) {
	s, _, id := newProfile(t, false)
	ctx := context.Background()

	p, err := s.PutSection(ctx, id, models.SectionBasic,
		[]byte(`{"full_name":" Kavin Kumar ","date_of_birth":"1990-02-03","gender":null,"native_district":"Erode","email":"evil@x.y"}`))
	require.NoError(t, err)
	assert.Equal(t, "Kavin Kumar", p.Name)
	assert.Equal(t, "1990-02-03", *p.Sections.Basic.DateOfBirth)
	assert.Equal(t, "kavin@example.com", p.Sections.Basic.Email, "email is read-only")

	_, err = s.PutSection(ctx, id, models.SectionBasic, []byte(`{"full_name":"  "}`))
	assert.Equal(t, KindInvalid, KindOf(err))
	_, err = s.PutSection(ctx, id, models.SectionBasic, []byte(`{`))
	assert.Equal(t, KindInvalid, KindOf(err))
	_, err = s.PutSection(ctx, id, "hobbies", []byte(`{}`))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestPutSection_Restricted(t *testing.T) {
	s, _, id := newProfile(t, false)
	ctx := context.Background()

	p, err := s.PutSection(ctx, id, models.SectionMatrimony, []byte(`{"matrimonyProfileActive":true,"rashi":"Simha"}`))
	require.NoError(t, err)
	require.NotNil(t, p.PendingMatrimony)
	assert.Equal(t, models.ReviewPending, p.PendingMatrimony.Status)
	assert.Nil(t, p.Sections.Matrimony, "not visible until approved")

	p, err = s.PatchSection(ctx, id, models.SectionMatrimony, []byte(`{"horoscopeDocumentUrl":"https://x/h.pdf"}`))
	require.NoError(t, err)
	assert.Nil(t, p.Sections.Matrimony)

	p, err = s.ReviewSection(ctx, id, models.SectionMatrimony, true, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, p.PendingMatrimony.Status)
	require.NotNil(t, p.Sections.Matrimony)
	assert.Equal(t, "Simha", *p.Sections.Matrimony.Rashi, "patch merged onto the pending submission")
	assert.Equal(t, "https://x/h.pdf", *p.Sections.Matrimony.HoroscopeDocumentURL)
	assert.True(t, *p.ShowMatrimony)

	_, err = s.ReviewSection(ctx, id, models.SectionMatrimony, true, nil)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = s.PutSection(ctx, id, models.SectionBusiness, []byte(`{"businessName":"Kavin Traders"}`))
	require.NoError(t, err)
	remarks := "Add a phone number"
	p, err = s.ReviewSection(ctx, id, models.SectionBusiness, false, &remarks)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewRejected, p.PendingBusiness.Status)
	assert.Equal(t, remarks, *p.PendingBusiness.AdminRemarks)
	assert.Nil(t, p.Sections.Business)

	_, err = s.ReviewSection(ctx, id, models.SectionPersonal, true, nil)
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestPutSection_AutoApprove(t *testing.T) {
	s, _, id := newProfile(t, true)
	p, err := s.PutSection(context.Background(), id, models.SectionBusiness, []byte(`{"businessProfileActive":true,"businessName":"Traders"}`))
	require.NoError(t, err)
	assert.Equal(t, models.ReviewApproved, p.PendingBusiness.Status)
	assert.Equal(t, "Traders", *p.Sections.Business.BusinessName)
	assert.True(t, *p.ShowBusiness)
}

func TestPatchSection_Merges(t *testing.T) {
	s, _, id := newProfile(t, false)
	ctx := context.Background()

	_, err := s.PutSection(ctx, id, models.SectionPersonal, []byte(`{"occupation":"Farmer","hobbies":"Chess"}`))
	require.NoError(t, err)
	p, err := s.PatchSection(ctx, id, models.SectionPersonal, []byte(`{"hobbies":"Kabaddi"}`))
	require.NoError(t, err)
	assert.Equal(t, "Farmer", *p.Sections.Personal.Occupation)
	assert.Equal(t, "Kabaddi", *p.Sections.Personal.Hobbies)

	_, err = s.PatchSection(ctx, id, models.SectionPersonal, []byte(`[1]`))
	assert.Equal(t, KindInvalid, KindOf(err))

	p, err = s.PatchSection(ctx, id, models.SectionCommunity, []byte(`{"kulam":"Other"}`))
	require.NoError(t, err)
	assert.Equal(t, "Other", *p.Sections.Community.Kulam)
}

func TestUpdateProfile(t *testing.T) {
	s, _, id := newProfile(t, false)
	p, err := s.UpdateProfile(context.Background(), id, models.ProfileUpdateRequest{City: ptr("Salem"), JobTitle: ptr("Engineer")})
	require.NoError(t, err)
	assert.Equal(t, "Salem", *p.PersonalInfo.City)
	assert.Equal(t, "Engineer", *p.ProfessionalInfo.JobTitle)
}

func TestActivity(t *testing.T) {
	s, repo, id := newProfile(t, false)
	ctx := context.Background()
	mine, err := repo.CreatePost(ctx, repository.PostRecord{UserID: id, PostType: models.PostJob, Title: "Mine", JobStatus: ptr("CLOSED")})
	require.NoError(t, err)
	other, err := repo.CreatePost(ctx, repository.PostRecord{UserID: id + 1, PostType: models.PostMeetup, Title: "Other"})
	require.NoError(t, err)
	_, _, err = repo.ToggleLike(ctx, other.ID, id)
	require.NoError(t, err)

	page, err := s.Activity(ctx, id, models.ActivityMine, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, mine.ID, page.Items[0].PostID)
	assert.Equal(t, "Closed", page.Items[0].Status)

	page, err = s.Activity(ctx, id, models.ActivityLiked, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Active", page.Items[0].Status)

	page, err = s.Activity(ctx, id, models.ActivitySaved, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)

	_, err = s.Activity(ctx, id, "bogus", 1, 20)
	assert.Equal(t, KindInvalid, KindOf(err))

	p, err := s.Profile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.ProfileStats{TotalPosts: 1, JobsPosted: 1}, p.Stats)
}

func TestSetAccountStatus(t *testing.T) {
	s, _, id := newProfile(t, false)
	u, err := s.SetAccountStatus(context.Background(), id, models.AccountRejected)
	require.NoError(t, err)
	assert.Equal(t, models.AccountRejected, u.Status)
	_, err = s.SetAccountStatus(context.Background(), id, "BANNED")
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestProfileJSONShape(t *testing.T) {
	s, _, id := newProfile(t, false)
	p, err := s.Profile(context.Background(), id)
	require.NoError(t, err)
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, k := range []string{"personal_info", "professional_info", "stats", "member_since", "sections"} {
		assert.Contains(t, m, k)
	}
}
