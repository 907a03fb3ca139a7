package nav

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/DigitalHouse/internal/client/transport"
)

func apiErr(status int, msg string) error {
	return &transport.APIError{Kind: transport.KindForStatus(status), Status: status, Message: msg}
}

func TestInitialAndGuard(t *testing.T) {
	assert.Equal(t, Route{Screen: Landing}, Initial(false))
	assert.Equal(t, Route{Screen: Home}, Initial(true))

	assert.Equal(t, Route{Screen: Login}, Guard(Route{Screen: PostDetail, PostID: 3}, false))
	assert.Equal(t, Route{Screen: PostDetail, PostID: 3}, Guard(Route{Screen: PostDetail, PostID: 3}, true))
	assert.Equal(t, Route{Screen: Registration}, Guard(Route{Screen: Registration}, false))
}

func TestScreens(t *testing.T) {
	assert.Equal(t, "Edit Profile", EditProfile.Title())
	assert.True(t, Home.RequiresAuth())
	assert.False(t, OtpVerify.RequiresAuth())
	assert.False(t, Screen("Nowhere").Valid())
	assert.Equal(t, "PostDetail/12", Route{Screen: PostDetail, PostID: 12}.String())
	assert.Equal(t, "OtpVerify?email=a@b.co", Route{Screen: OtpVerify, Email: "a@b.co"}.String())
}

func TestForError(t *testing.T) {
	r, ok := ForError(apiErr(401, "Token expired"))
	assert.True(t, ok)
	assert.Equal(t, Login, r.Screen)

	r, ok = ForError(apiErr(403, "Your account is under verification"))
	assert.True(t, ok)
	assert.Equal(t, PendingApproval, r.Screen)

	_, ok = ForError(apiErr(500, ""))
	assert.False(t, ok)
	_, ok = ForError(errors.New("plain"))
	assert.False(t, ok)
}

func TestForLoginError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		screen   Screen
		navigate bool
		message  string
	}{
		{"pending", apiErr(403, "Your account is under verification"), PendingApproval, true, ""},
		{"rejected", apiErr(403, "Your registration was rejected"), Rejected, true, "Your registration was rejected"},
		{"not approved", apiErr(403, "Account not approved"), Rejected, true, "Account not approved"},
		{"other 403", apiErr(403, "Forbidden"), Login, false, "Forbidden"},
		{"404 default", apiErr(404, ""), Login, false, NoAccountMessage},
		{"404 server text", apiErr(404, "User not found"), Login, false, "User not found"},
		{"network", &transport.APIError{Kind: transport.KindNetwork, Err: errors.New("refused")}, Login, false, "Cannot reach server. Check your internet connection and try again."},
		{"server message", apiErr(500, "Mailer down"), Login, false, "Mailer down"},
		{"fallback", apiErr(500, ""), Login, false, "Failed to send OTP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := ForLoginError(tt.err)
			assert.Equal(t, tt.navigate, ok)
			assert.Equal(t, tt.screen, r.Screen)
			assert.Equal(t, tt.message, r.Message)
		})
	}
}
