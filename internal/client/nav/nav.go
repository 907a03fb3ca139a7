// Package nav is the screen graph of the client: which screens exist, which
// need a session, and where an error or a finished step leads.
package nav

import (
	"errors"
	"strconv"
	"strings"

	"github.com/atinyakov/DigitalHouse/internal/client/transport"
)

// Screen names a destination.
type Screen string

const (
	Landing         Screen = "Landing"
	Registration    Screen = "Registration"
	PendingApproval Screen = "PendingApproval"
	Rejected        Screen = "Rejected"
	Login           Screen = "Login"
	OtpVerify       Screen = "OtpVerify"
	Home            Screen = "Home"
	Profile         Screen = "Profile"
	EditProfile     Screen = "EditProfile"
	PostDetail      Screen = "PostDetail"
	CreatePost      Screen = "CreatePost"
)

type screenInfo struct {
	title string
	auth  bool
}

var screens = map[Screen]screenInfo{
	Landing:         {title: "Digital House"},
	Registration:    {title: "Register"},
	PendingApproval: {title: "Approval Pending"},
	Rejected:        {title: "Registration Rejected"},
	Login:           {title: "Sign in"},
	OtpVerify:       {title: "Verify OTP"},
	Home:            {title: "Digital House", auth: true},
	Profile:         {title: "Profile", auth: true},
	EditProfile:     {title: "Edit Profile", auth: true},
	PostDetail:      {title: "Post", auth: true},
	CreatePost:      {title: "Create Post", auth: true},
}

// Title returns the header title of s.
func (s Screen) Title() string { return screens[s].title }

// RequiresAuth reports whether s needs a stored token.
func (s Screen) RequiresAuth() bool { return screens[s].auth }

// Valid reports whether s is a known screen.
func (s Screen) Valid() bool {
	_, ok := screens[s]
	return ok
}

// Route is a screen plus its parameters.
type Route struct {
	Screen Screen
	// Email is set for OtpVerify.
	Email string
	// PostID is set for PostDetail.
	PostID int64
	// Message is set for Rejected and for notices shown in place.
	Message string
}

func (r Route) String() string {
	switch {
	case r.Screen == PostDetail:
		return string(r.Screen) + "/" + strconv.FormatInt(r.PostID, 10)
	case r.Screen == OtpVerify && r.Email != "":
		return string(r.Screen) + "?email=" + r.Email
	}
	return string(r.Screen)
}

// Initial is the first screen shown at start-up.
func Initial(signedIn bool) Route {
	if signedIn {
		return Route{Screen: Home}
	}
	return Route{Screen: Landing}
}

// Guard redirects a screen that needs a session to Login when there is none.
func Guard(r Route, signedIn bool) Route {
	if r.Screen.RequiresAuth() && !signedIn {
		return Route{Screen: Login}
	}
	return r
}

// ForError returns where an authenticated call's failure leads. ok is
// false when the error should be shown in place.
func ForError(err error) (Route, bool) {
	switch transport.StatusOf(err) {
	case 401:
		return Route{Screen: Login}, true
	case 403:
		return Route{Screen: PendingApproval}, true
	}
	return Route{}, false
}

// NoAccountMessage is shown when a login is attempted for an unknown email.
const NoAccountMessage = "No account found. Please register first."

// ForLoginError maps a failed login request. A 403 is told apart by the
// server's message text. ok is false when the login screen stays put; the
// returned route's Message is then the text to show.
func ForLoginError(err error) (Route, bool) {
	msg := transport.MessageOf(err)
	switch transport.StatusOf(err) {
	case 403:
		switch {
		case strings.Contains(msg, "verification"):
			return Route{Screen: PendingApproval}, true
		case strings.Contains(msg, "not approved"), strings.Contains(msg, "rejected"):
			return Route{Screen: Rejected, Message: msg}, true
		}
	case 404:
		if msg == "" {
			msg = NoAccountMessage
		}
		return Route{Screen: Login, Message: msg}, false
	}

	if msg == "" {
		var apiErr *transport.APIError
		if errors.As(err, &apiErr) && (apiErr.Kind == transport.KindNetwork || apiErr.Kind == transport.KindTimeout) {
			msg = transport.UserMessage(err)
		} else {
			msg = "Failed to send OTP"
		}
	}
	return Route{Screen: Login, Message: msg}, false
}
