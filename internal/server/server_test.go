package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/atinyakov/DigitalHouse/internal/client/api"
	"github.com/atinyakov/DigitalHouse/internal/client/credential"
	"github.com/atinyakov/DigitalHouse/internal/client/media"
	"github.com/atinyakov/DigitalHouse/internal/client/profile"
	"github.com/atinyakov/DigitalHouse/internal/client/transport"
	"github.com/atinyakov/DigitalHouse/internal/config"
	"github.com/atinyakov/DigitalHouse/internal/models"
	"github.com/atinyakov/DigitalHouse/internal/repository"
	"github.com/atinyakov/DigitalHouse/internal/server/handler/http"
	"github.com/atinyakov/DigitalHouse/internal/service"
)

const (
	testOTP   = "246810"
	seedPosts = 12
)

type harness struct {
	srv   *httptest.Server
	store *repository.Memory
	creds *credential.Store
	api   *api.API
	tc    *transport.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemory()
	require.NoError(t, repository.Seed(ctx, store, seedPosts, 1))

	srv := httptest.NewUnstartedServer(nil)
	opts := &config.ServerOptions{
		PublicURL: "http://" + srv.Listener.Addr().String(),
		JWTSecret: "integration-secret-0123456789",
		TokenTTL:  time.Hour,
		OTPCode:   testOTP,
		OTPTTL:    time.Minute,
	}
	h, err := NewHandler(store, opts, prometheus.NewRegistry(), zaptest.NewLogger(t))
	require.NoError(t, err)
	srv.Config.Handler = h
	srv.Start()
	t.Cleanup(srv.Close)

	creds := credential.NewStore(credential.NewMemoryBackend(), nil)
	tc, err := transport.New(srv.URL+"/api", creds, transport.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return &harness{srv: srv, store: store, creds: creds, api: api.New(tc), tc: tc}
}

func (h *harness) signIn(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()
	msg, err := h.api.RequestLogin(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, service.MsgOTPSent, msg)

	login, err := h.api.VerifyOTP(ctx, email, testOTP)
	require.NoError(t, err)
	require.NotEmpty(t, login.AccessToken)
	h.creds.Set(ctx, login.AccessToken)
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	headline, err := h.api.Landing(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.Headline, headline)

	locations, err := h.api.Locations(ctx)
	require.NoError(t, err)
	assert.Len(t, locations, len(repository.Locations))

	_, err = h.api.RequestLogin(ctx, "nobody@example.com")
	assert.Equal(t, 404, transport.StatusOf(err))
	assert.Equal(t, service.MsgNoAccount, transport.MessageOf(err))

	_, err = h.api.RequestLogin(ctx, repository.PendingEmail)
	assert.Equal(t, 403, transport.StatusOf(err))
	assert.Equal(t, service.MsgUnderVerification, transport.MessageOf(err))

	_, err = h.api.Me(ctx)
	assert.Equal(t, 401, transport.StatusOf(err), "no token yet")

	h.signIn(t, repository.DemoEmail)

	_, err = h.api.VerifyOTP(ctx, repository.DemoEmail, testOTP)
	assert.Equal(t, 400, transport.StatusOf(err), "codes are single use")

	me, err := h.api.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, repository.DemoEmail, me.Email)
	assert.Equal(t, models.AccountApproved, me.Status)

	h.creds.Clear(ctx)
	_, err = h.api.Me(ctx)
	assert.Equal(t, 401, transport.StatusOf(err))
}

func TestRegisterThenApprove(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	reg, err := h.api.Register(ctx, models.RegisterRequest{
		FullName: "New Member",
		Email:    "new.member@example.com",
		Mobile:   ptr("9123456780"),
		Location: ptr("Erode"),
		Kulam:    ptr("Other"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AccountPending, reg.User.Status)

	_, err = h.api.RequestLogin(ctx, "new.member@example.com")
	assert.Equal(t, 403, transport.StatusOf(err))

	h.signIn(t, repository.DemoEmail)
	err = h.tc.Post(ctx, fmt.Sprintf("/admin/users/%d/status", reg.User.ID), map[string]string{"status": "APPROVED"}, &struct{}{})
	assert.Equal(t, 403, transport.StatusOf(err), "members may not moderate")

	h.signIn(t, repository.AdminEmail)
	require.NoError(t, h.tc.Post(ctx, fmt.Sprintf("/admin/users/%d/status", reg.User.ID), map[string]string{"status": "APPROVED"}, &struct{}{}))

	h.signIn(t, "new.member@example.com")
	me, err := h.api.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New Member", me.FullName)
}

func TestHomeAndPosts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signIn(t, repository.DemoEmail)

	summary, err := h.api.HomeSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Demo Member", summary.User.Name)

	feed, err := h.api.Feed(ctx, 1, 5)
	require.NoError(t, err)
	assert.Len(t, feed.Items, 5)
	assert.Equal(t, seedPosts, feed.Total)

	created, err := h.api.CreatePost(ctx, models.CreatePostRequest{
		PostType:    models.PostJob,
		Title:       "Hiring a welder",
		Description: ptr("Two openings in Erode"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hiring a welder", created.Title)

	feed, err = h.api.Feed(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, created.ID, feed.Items[0].PostID, "newest first")

	like, err := h.api.LikePost(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.LikeCount)

	_, err = h.api.AddComment(ctx, created.ID, "Interested")
	require.NoError(t, err)
	comments, err := h.api.Comments(ctx, created.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, comments.Items, 1)
	assert.Equal(t, "Interested", comments.Items[0].Body)

	post, err := h.api.Post(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, post.LikedByMe)
	assert.Equal(t, 1, post.CommentCount)

	_, err = h.api.ReportPost(ctx, created.ID, "spam")
	require.NoError(t, err)
	assert.Len(t, h.store.Reports(ctx), 1)

	_, err = h.api.Post(ctx, 99999)
	assert.Equal(t, 404, transport.StatusOf(err))

	h.signIn(t, repository.AdminEmail)
	err = h.api.DeletePost(ctx, created.ID)
	assert.Equal(t, 403, transport.StatusOf(err), "only the author deletes")
}

func TestProfileAndUpload(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signIn(t, repository.DemoEmail)

	p, err := h.api.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Demo Member", p.Name)
	assert.Contains(t, p.PersonalInfo.MaskedEmail, "***@digitalhouse.dev")

	p, err = h.api.PutProfileSection(ctx, models.SectionMatrimony, map[string]any{
		"matrimonyProfileActive": true,
		"rashi":                  "Mesham",
	})
	require.NoError(t, err)
	require.NotNil(t, p.Review(models.SectionMatrimony))
	assert.Equal(t, models.ReviewPending, p.Review(models.SectionMatrimony).Status)

	data := []byte("\x89PNG fake image")
	target, err := h.api.UploadURL(ctx, models.UploadURLRequest{
		FileName: "avatar.png",
		FileType: "image/png",
		FileSize: int64(len(data)),
		Module:   models.MediaProfile,
	})
	require.NoError(t, err)

	up := media.NewUploader(h.srv.Client(), nil)
	require.NoError(t, up.Put(ctx, target.UploadURL, bytes.NewReader(data), int64(len(data)), "image/png", nil))
	err = up.Put(ctx, target.PublicURL, bytes.NewReader(data), int64(len(data)), "image/png", nil)
	var upErr *media.UploadError
	require.ErrorAs(t, err, &upErr, "unsigned uploads are refused")

	resp, err := h.srv.Client().Get(target.PublicURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, data, body)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	p, err = h.api.UpdateProfile(ctx, models.ProfileUpdateRequest{ProfileImage: &target.PublicURL})
	require.NoError(t, err)
	require.NotNil(t, p.ProfileImage)
	assert.Equal(t, target.PublicURL, *p.ProfileImage)
}

func TestHoroscopeSavedWithProfileEdits(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.signIn(t, repository.DemoEmail)

	ed := profile.NewEditor(h.api, media.NewUploader(h.srv.Client(), nil), nil)
	form, err := ed.Load(ctx)
	require.NoError(t, err)

	doc := []byte("%PDF-1.4 horoscope")
	url, err := ed.UploadHoroscope(ctx, "horoscope.pdf", "application/pdf", bytes.NewReader(doc), int64(len(doc)), nil)
	require.NoError(t, err)
	assert.False(t, ed.Locked(models.SectionMatrimony), "uploading alone does not submit the section")

	form.Matrimony.HoroscopeDocumentURL = &url
	form.Personal.Occupation = ptr("Structural Engineer")

	res, err := ed.Save(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, []models.SectionName{models.SectionPersonal, models.SectionMatrimony}, res.Sections)
	assert.Equal(t, "Submitted for Review", res.Title())

	p, err := h.api.Profile(ctx)
	require.NoError(t, err)
	require.NotNil(t, p.Sections)
	require.NotNil(t, p.Sections.Personal)
	require.NotNil(t, p.Sections.Personal.Occupation)
	assert.Equal(t, "Structural Engineer", *p.Sections.Personal.Occupation)
	assert.Equal(t, models.ReviewPending, p.Review(models.SectionMatrimony).Status)

	demo, err := h.store.UserByEmail(ctx, repository.DemoEmail)
	require.NoError(t, err)
	require.NotNil(t, demo.PendingMatrimony)
	assert.Contains(t, string(demo.PendingMatrimony.Payload), url)

	res, err = ed.Save(ctx, form)
	require.NoError(t, err)
	assert.True(t, res.NoChanges)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	_, err := h.api.Landing(context.Background())
	require.NoError(t, err)

	resp, err := h.srv.Client().Get(h.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `dh_server_requests_total{code="200",method="GET",route="/api/landing"}`)
}

func ptr[T any](v T) *T { return &v }
