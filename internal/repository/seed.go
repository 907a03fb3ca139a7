package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/atinyakov/DigitalHouse/internal/models"
)

// Accounts created by Seed in every status, for trying the login flows.
const (
	DemoEmail     = "demo@digitalhouse.dev"
	PendingEmail  = "pending@digitalhouse.dev"
	RejectedEmail = "rejected@digitalhouse.dev"
	AdminEmail    = "admin@digitalhouse.dev"
)

// Roles stored on accounts.
const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

// Locations and Kulams offered by a seeded store.
var (
	Locations = []string{"Chennai", "Coimbatore", "Madurai", "Trichy", "Salem", "Tirunelveli", "Erode", "Other"}
	Kulams    = []string{"Semba Vattuar", "Karaiya Vettuvar", "Paandi Vettuvar", "Other"}
)

const seedMembers = 8

// Seed fills m with options, the fixed accounts, a handful of members and
// posts fake posts with comments and likes.
func Seed(ctx context.Context, m *Memory, posts int, rng int64) error {
	f := gofakeit.New(rng)
	m.SetOptions(Locations, Kulams)

	fixed := []struct {
		email  string
		name   string
		status models.AccountStatus
		role   string
	}{
		{DemoEmail, "Demo Member", models.AccountApproved, RoleMember},
		{PendingEmail, "Pending Member", models.AccountPending, RoleMember},
		{RejectedEmail, "Rejected Member", models.AccountRejected, RoleMember},
		{AdminEmail, "Community Admin", models.AccountApproved, RoleAdmin},
	}
	var authors []int64
	for _, a := range fixed {
		rec := fakeUser(f, a.email, a.name, a.status)
		rec.Role = a.role
		u, err := m.CreateUser(ctx, rec)
		if err != nil {
			return fmt.Errorf("seed %s: %w", a.email, err)
		}
		if a.status == models.AccountApproved {
			authors = append(authors, u.ID)
		}
	}
	for i := 0; i < seedMembers; i++ {
		u, err := m.CreateUser(ctx, fakeUser(f, f.Email(), f.Name(), models.AccountApproved))
		if err != nil {
			return fmt.Errorf("seed member: %w", err)
		}
		authors = append(authors, u.ID)
	}

	now := time.Now().UTC()
	for i := 0; i < posts; i++ {
		p := fakePost(f, authors[f.Number(0, len(authors)-1)], now)
		p.CreatedAt = now.Add(-time.Duration(i+1) * 97 * time.Minute)
		created, err := m.CreatePost(ctx, p)
		if err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
		for c := f.Number(0, 4); c > 0; c-- {
			if _, err := m.AddComment(ctx, CommentRecord{
				PostID:    created.ID,
				UserID:    authors[f.Number(0, len(authors)-1)],
				Body:      f.Sentence(f.Number(4, 12)),
				CreatedAt: created.CreatedAt.Add(time.Duration(c) * 11 * time.Minute),
			}); err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}
		for _, uid := range authors {
			if f.Number(0, 2) == 0 {
				if _, _, err := m.ToggleLike(ctx, created.ID, uid); err != nil {
					return fmt.Errorf("seed like: %w", err)
				}
			}
		}
	}
	return nil
}

func fakeUser(f *gofakeit.Faker, email, name string, status models.AccountStatus) UserRecord {
	mobile := fmt.Sprintf("9%09d", f.Number(0, 999999999))
	gender := f.RandomString([]string{"Male", "Female"})
	dob := f.DateRange(time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2004, 1, 1, 0, 0, 0, 0, time.UTC)).Format(time.DateOnly)
	job := f.JobTitle()
	location := f.RandomString(Locations[:len(Locations)-1])
	kulam := f.RandomString(Kulams[:len(Kulams)-1])
	community := "Vettuvar"
	district := location
	return UserRecord{
		FullName:       name,
		Email:          email,
		Mobile:         &mobile,
		Gender:         &gender,
		DOB:            &dob,
		Occupation:     &job,
		Location:       &location,
		Community:      &community,
		Kulam:          &kulam,
		NativeDistrict: &district,
		Role:           RoleMember,
		Status:         status,
		CreatedAt:      f.DateRange(time.Now().AddDate(-3, 0, 0), time.Now().AddDate(0, -1, 0)).UTC(),
		Professional: models.ProfessionalInfo{
			JobTitle:    &job,
			CompanyName: strPtr(f.Company()),
		},
		Sections: models.ProfileSections{
			Community: &models.CommunitySection{Kulam: &kulam},
			Personal:  &models.PersonalSection{CurrentLocation: &location, Occupation: &job},
		},
	}
}

func fakePost(f *gofakeit.Faker, author int64, now time.Time) PostRecord {
	t := models.PostTypes[f.Number(0, len(models.PostTypes)-1)]
	p := PostRecord{
		UserID:      author,
		PostType:    t,
		Title:       f.Sentence(f.Number(3, 7)),
		Description: strPtr(f.Paragraph(1, f.Number(1, 3), 12, " ")),
	}
	switch t {
	case models.PostAnnouncement:
		p.Pinned = f.Number(0, 2) == 0
	case models.PostMeetup:
		at := now.Add(time.Duration(f.Number(1, 30*24)) * time.Hour)
		p.MeetupAt = &at
	case models.PostHelpRequest:
		p.Urgent = f.Bool()
	case models.PostJob:
		p.JobStatus = strPtr(f.RandomString([]string{"OPEN", "OPEN", "CLOSED"}))
	}
	return p
}

func strPtr(s string) *string { return &s }
