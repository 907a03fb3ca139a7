package main

import (
	"errors"

	"github.com/atinyakov/DigitalHouse/internal/client/media"
	"github.com/atinyakov/DigitalHouse/internal/client/profile"
	"github.com/atinyakov/DigitalHouse/internal/client/session"
)

// formMessages is the text shown for input errors, in place of the error string.
var formMessages = []struct {
	err  error
	text string
}{
	{session.ErrEmailRequired, "Please enter your email."},
	{session.ErrInvalidEmail, "Please enter a valid email address."},
	{session.ErrOTPIncomplete, "Please enter the 6-digit code from your email."},
	{session.ErrNameRequired, "Please enter your full name."},
	{session.ErrInvalidMobile, "Please enter a valid mobile number (at least 10 digits)."},
	{session.ErrLocationNeeded, "Please select your location."},
	{session.ErrKulamNeeded, "Please select your kulam."},
	{media.ErrImageTooLarge, "Image must be 5 MB or smaller."},
	{media.ErrVideoTooLarge, "Video must be 15 MB or smaller."},
	{media.ErrVideoTooLong, "Video must be 30 seconds or shorter."},
	{media.ErrBadDuration, "This video could not be read. Please choose another file."},
	{media.ErrUnsupportedType, "Only JPG and PNG images or MP4 videos can be uploaded."},
	{profile.ErrSectionLocked, "A section you changed is awaiting admin review."},
}

// formMessage returns the text shown for err, if it is an input error.
func formMessage(err error) (string, bool) {
	for _, m := range formMessages {
		if errors.Is(err, m.err) {
			return m.text, true
		}
	}
	return "", false
}
