package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/DigitalHouse/internal/client/credential"
	"github.com/atinyakov/DigitalHouse/internal/client/transport"
	"github.com/atinyakov/DigitalHouse/internal/models"
)

func newTestAPI(t *testing.T, mux *http.ServeMux) (*API, *credential.Store) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := credential.NewStore(credential.NewMemoryBackend(), nil)
	c, err := transport.New(srv.URL+"/api", store)
	require.NoError(t, err)
	return New(c), store
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestHomeSummary_Defaults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/home/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"user":{"name":"Asha","profileImage":null,"verified":true},"quickActionCounts":{"openJobs":3}}`)
	})
	a, _ := newTestAPI(t, mux)

	s, err := a.HomeSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Asha", s.User.Name)
	assert.True(t, s.User.Verified)
	assert.Equal(t, 3, s.QuickActionCounts.OpenJobs)
	assert.Zero(t, s.QuickActionCounts.TotalPosts)
	assert.Zero(t, s.UnreadMessagesCount)
	assert.Zero(t, s.UnreadNotificationsCount)
}

func TestHomeSummary_MissingUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/home/summary", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})
	a, _ := newTestAPI(t, mux)

	_, err := a.HomeSummary(context.Background())
	require.Error(t, err)
	assert.Equal(t, transport.KindDecode, transport.KindOf(err))
	assert.Equal(t, "Failed to load home summary", err.Error())
}

func TestCall_Refused(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/home/highlights", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":false}`)
	})
	mux.HandleFunc("GET /api/home/quick-actions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":false,"message":"Module disabled"}`)
	})
	a, _ := newTestAPI(t, mux)

	_, err := a.Highlights(context.Background())
	assert.Equal(t, transport.KindRefused, transport.KindOf(err))
	assert.Equal(t, "Failed to load highlights", err.Error())
	assert.Equal(t, "Failed to load highlights", transport.UserMessage(err))

	_, err = a.QuickActions(context.Background())
	assert.Equal(t, transport.KindRefused, transport.KindOf(err))
	assert.Equal(t, "Module disabled", err.Error())
}

func TestCall_TransportErrorGetsFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/home/feed", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTeapot, `{}`)
	})
	a, _ := newTestAPI(t, mux)

	_, err := a.Feed(context.Background(), 1, 20)
	require.Error(t, err)
	assert.Equal(t, http.StatusTeapot, transport.StatusOf(err))
	assert.Equal(t, "Failed to load feed", err.Error())
}

func TestFeed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/home/feed", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `{"ok":true,"total":45,"items":[
			{"postId":21,"postType":"JOB","title":"Driver needed","createdAt":"2025-01-02T03:04:05Z","author":{"name":"Ravi","verified":false},"counts":{"likes":2,"comments":1}},
			{"postId":22,"postType":"MEETUP","title":"Picnic","description":"Sunday","createdAt":"2025-01-02T03:04:05Z"}
		]}`)
	})
	a, _ := newTestAPI(t, mux)

	page, err := a.Feed(context.Background(), 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page, "missing page falls back to the requested one")
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 45, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(21), page.Items[0].PostID)
	assert.Equal(t, models.PostJob, page.Items[0].PostType)
	assert.Equal(t, 2, page.Items[0].Counts.Likes)
	assert.Equal(t, "Ravi", page.Items[0].Author.Name)
	assert.Zero(t, page.Items[1].Counts.Comments)
	require.NotNil(t, page.Items[1].Description)
	assert.Equal(t, "Sunday", *page.Items[1].Description)
}

func TestFeed_EmptyAndInvalid(t *testing.T) {
	body := `{"ok":true}`
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/home/feed", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	})
	a, _ := newTestAPI(t, mux)

	page, err := a.Feed(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)

	body = `{"ok":true,"items":[{"title":"no id"}]}`
	_, err = a.Feed(context.Background(), 1, 20)
	assert.Equal(t, transport.KindDecode, transport.KindOf(err))
}

func TestHighlights_EmptyLists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/home/highlights", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"upcomingMeetups":[{"postId":7,"postType":"MEETUP","title":"Temple festival","createdAt":"2025-03-01T10:00:00Z"}]}`)
	})
	a, _ := newTestAPI(t, mux)

	h, err := a.Highlights(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, h.PinnedAnnouncements)
	assert.Empty(t, h.UrgentHelpRequests)
	require.Len(t, h.UpcomingMeetups, 1)
	assert.Equal(t, int64(7), h.UpcomingMeetups[0].PostID)
}

func TestVerifyOTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "asha@example.com", body["email"])
		assert.Equal(t, "123456", body["otp"])
		writeJSON(w, http.StatusOK, `{"ok":true,"accessToken":"tok","user":{"id":1,"fullName":"Asha","email":"asha@example.com","status":"APPROVED"}}`)
	})
	a, _ := newTestAPI(t, mux)

	login, err := a.VerifyOTP(context.Background(), "  Asha@Example.COM ", " 123456 ")
	require.NoError(t, err)
	assert.Equal(t, "tok", login.AccessToken)
	assert.Equal(t, models.AccountApproved, login.User.Status)
}

func TestVerifyOTP_MissingToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"user":{"id":1}}`)
	})
	a, _ := newTestAPI(t, mux)

	_, err := a.VerifyOTP(context.Background(), "a@b.c", "1")
	assert.Equal(t, transport.KindDecode, transport.KindOf(err))
}

func TestRequestLogin_Forbidden(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login-request", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `{"ok":false,"message":"Your account is under verification."}`)
	})
	a, _ := newTestAPI(t, mux)

	_, err := a.RequestLogin(context.Background(), "a@b.c")
	assert.Equal(t, http.StatusForbidden, transport.StatusOf(err))
	assert.Equal(t, "Your account is under verification.", transport.MessageOf(err))
}

func TestMe_UnauthorizedClearsCredential(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer expired", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusUnauthorized, `{"ok":false,"message":"Invalid token"}`)
	})
	a, store := newTestAPI(t, mux)
	ctx := context.Background()
	store.Set(ctx, "expired")

	_, err := a.Me(ctx)
	assert.Equal(t, transport.KindUnauthorized, transport.KindOf(err))
	assert.Empty(t, store.Get(ctx))
}

func TestProfile_Normalization(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"id":5,"name":"   ","personal_info":{"city":"Madurai"},"stats":{"total_posts":4},
			"sections":{"basic":{"full_name":"Asha","email":"asha@example.com"},"personal":{"hobbies":"chess"}},
			"pending_matrimony":{"status":"REJECTED","admin_remarks":"Photo unclear"}}`)
	})
	a, _ := newTestAPI(t, mux)

	p, err := a.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
	assert.Equal(t, DefaultName, p.Name)
	assert.Equal(t, MissingMarker, p.MemberSince)
	assert.Equal(t, MissingMarker, p.PersonalInfo.MaskedEmail)
	assert.Equal(t, MissingMarker, p.PersonalInfo.MaskedMobile)
	require.NotNil(t, p.PersonalInfo.City)
	assert.Equal(t, "Madurai", *p.PersonalInfo.City)
	assert.Equal(t, 4, p.Stats.TotalPosts)
	assert.Zero(t, p.Stats.HelpRequests)
	require.NotNil(t, p.Sections)
	assert.Equal(t, "Asha", p.Sections.Basic.FullName)
	assert.Equal(t, "chess", *p.Sections.Personal.Hobbies)
	assert.Nil(t, p.Sections.Matrimony)

	rs := p.Review(models.SectionMatrimony)
	require.NotNil(t, rs)
	assert.Equal(t, models.ReviewRejected, rs.Status)
	assert.Equal(t, "Photo unclear", *rs.AdminRemarks)
	assert.Nil(t, p.Review(models.SectionBusiness))
}

func TestProfile_RefusedUsesServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":false,"message":"Profile not found"}`)
	})
	a, _ := newTestAPI(t, mux)

	_, err := a.Profile(context.Background())
	assert.Equal(t, "Profile not found", err.Error())
}

func TestPutProfileSection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/profile/personal", func(w http.ResponseWriter, r *http.Request) {
		var body models.PersonalSection
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotNil(t, body.Hobbies)
		writeJSON(w, http.StatusOK, `{"ok":true,"id":5,"name":"Asha","sections":{"personal":{"hobbies":"`+*body.Hobbies+`"}}}`)
	})
	a, _ := newTestAPI(t, mux)

	hobbies := "carrom"
	p, err := a.PutProfileSection(context.Background(), models.SectionPersonal, models.PersonalSection{Hobbies: &hobbies})
	require.NoError(t, err)
	assert.Equal(t, "carrom", *p.Sections.Personal.Hobbies)

	_, err = a.PutProfileSection(context.Background(), "hobbies", nil)
	assert.Error(t, err)
}

func TestProfileActivity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile/activity", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "liked", r.URL.Query().Get("tab"))
		writeJSON(w, http.StatusOK, `{"ok":true,"items":[{"postId":3,"title":"t","postType":"JOB","createdAt":"2025-01-01T00:00:00Z","status":"ACTIVE"}],"total":1}`)
	})
	a, _ := newTestAPI(t, mux)

	page, err := a.ProfileActivity(context.Background(), models.ActivityLiked, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 20, page.Limit)
	require.Len(t, page.Items, 1)

	_, err = a.ProfileActivity(context.Background(), "drafts", 1, 20)
	assert.Error(t, err)
}

func TestPosts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts/9", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"id":9,"user_id":2,"post_type":"ANNOUNCEMENT","title":"Hello","created_at":"2025-01-01T00:00:00Z","updated_at":"2025-01-01T00:00:00Z","author":{"id":2,"name":"Ravi"},"like_count":4,"comment_count":1,"liked_by_me":true}`)
	})
	mux.HandleFunc("POST /api/posts/9/like", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"liked":false,"like_count":3}`)
	})
	mux.HandleFunc("POST /api/posts/9/comments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"id":77,"post_id":9,"user_id":1,"body":"Nice","created_at":"2025-01-01T00:00:00Z","author":{"id":1,"name":"Asha"}}`)
	})
	mux.HandleFunc("GET /api/posts/9/comments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})
	mux.HandleFunc("POST /api/posts/9/report", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"id":12}`)
	})
	mux.HandleFunc("DELETE /api/posts/9", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"message":"Deleted"}`)
	})
	a, _ := newTestAPI(t, mux)
	ctx := context.Background()

	post, err := a.Post(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), post.ID)
	assert.Equal(t, "Ravi", post.Author.Name)
	assert.True(t, post.LikedByMe)
	assert.Equal(t, 4, post.LikeCount)

	like, err := a.LikePost(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{Liked: false, LikeCount: 3}, like)

	c, err := a.AddComment(ctx, 9, "Nice")
	require.NoError(t, err)
	assert.Equal(t, int64(77), c.ID)
	assert.Equal(t, "Nice", c.Body)

	page, err := a.Comments(ctx, 9, 1, 50)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 50, page.Limit)

	id, err := a.ReportPost(ctx, 9, "Reported by user")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	require.NoError(t, a.DeletePost(ctx, 9))
}

func TestLikePost_MissingFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/posts/1/like", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true}`)
	})
	a, _ := newTestAPI(t, mux)

	_, err := a.LikePost(context.Background(), 1)
	assert.Equal(t, transport.KindDecode, transport.KindOf(err))
}

func TestOptions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/options/locations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"locations":[{"id":1,"name":"Chennai"}]}`)
	})
	mux.HandleFunc("GET /api/options/kulams", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":false}`)
	})
	a, _ := newTestAPI(t, mux)

	locs, err := a.Locations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Option{{ID: 1, Name: "Chennai"}}, locs)

	kulams, err := a.Kulams(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, kulams)
	assert.Empty(t, kulams)
}

func TestUploadURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/media/upload-url", func(w http.ResponseWriter, r *http.Request) {
		var req models.UploadURLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.MediaPosts, req.Module)
		writeJSON(w, http.StatusOK, `{"ok":true,"uploadUrl":"https://r2/put","publicUrl":"https://cdn/x.jpg","key":"posts/x.jpg","mediaFileId":4}`)
	})
	mux.HandleFunc("POST /api/profile/me/horoscope-upload-url", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"uploadUrl":"https://r2/put"}`)
	})
	a, _ := newTestAPI(t, mux)
	ctx := context.Background()

	target, err := a.UploadURL(ctx, models.UploadURLRequest{FileName: "x.jpg", FileType: "image/jpeg", FileSize: 10, Module: models.MediaPosts})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/x.jpg", target.PublicURL)
	assert.Equal(t, int64(4), target.MediaFileID)

	_, err = a.UploadURL(ctx, models.UploadURLRequest{Module: "avatars"})
	assert.Error(t, err)

	_, err = a.HoroscopeUploadURL(ctx, models.HoroscopeUploadRequest{FileName: "h.pdf", FileType: "application/pdf", FileSize: 1})
	assert.Equal(t, transport.KindDecode, transport.KindOf(err), "publicUrl is required")

	_, err = a.HoroscopeUploadURL(ctx, models.HoroscopeUploadRequest{FileType: "text/plain"})
	assert.Error(t, err)
}

func TestLanding(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/landing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"headline":"Welcome home"}`)
	})
	a, _ := newTestAPI(t, mux)

	h, err := a.Landing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Welcome home", h)
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "new@example.com", req.Email)
		writeJSON(w, http.StatusCreated, `{"ok":true,"message":"Registration submitted","user":{"id":3,"email":"new@example.com","status":"PENDING"}}`)
	})
	a, _ := newTestAPI(t, mux)

	reg, err := a.Register(context.Background(), models.RegisterRequest{FullName: "New", Email: " NEW@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Registration submitted", reg.Message)
	assert.Equal(t, models.AccountPending, reg.User.Status)
}
