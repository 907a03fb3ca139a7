// Package models defines the data exchanged with the community backend:
// users, feed items, posts, comments, profiles and media uploads.
package models

import "time"

// AccountStatus is the approval state of a registered account.
type AccountStatus string

const (
	AccountPending  AccountStatus = "PENDING"
	AccountApproved AccountStatus = "APPROVED"
	AccountRejected AccountStatus = "REJECTED"
)

// RegisterRequest is the payload of POST /auth/register.
type RegisterRequest struct {
	FullName     string  `json:"fullName"`
	Gender       *string `json:"gender,omitempty"`
	DOB          *string `json:"dob,omitempty"`
	Email        string  `json:"email"`
	Mobile       *string `json:"mobile,omitempty"`
	Occupation   *string `json:"occupation,omitempty"`
	Location     *string `json:"location,omitempty"`
	Community    *string `json:"community,omitempty"`
	Kulam        *string `json:"kulam,omitempty"`
	ProfilePhoto *string `json:"profilePhoto,omitempty"`
	GovtIDType   *string `json:"govtIdType,omitempty"`
	GovtIDFile   *string `json:"govtIdFile,omitempty"`
}

// RegisteredUser is returned by registration.
type RegisteredUser struct {
	ID     int64         `json:"id"`
	Email  string        `json:"email"`
	Status AccountStatus `json:"status"`
}

// Registration is the normalized result of POST /auth/register.
type Registration struct {
	Message string
	User    RegisteredUser
}

// User is the authenticated account as returned by OTP verification and /auth/me.
type User struct {
	ID        int64         `json:"id"`
	FullName  string        `json:"fullName"`
	Email     string        `json:"email"`
	Status    AccountStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt,omitzero"`
}

// Login is the result of OTP verification: the session credential and its owner.
type Login struct {
	AccessToken string
	User        User
}

// Option is a selectable value served by /options/*.
type Option struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
