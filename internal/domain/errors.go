package domain

import "errors"

// Error kinds returned by the engine. The HTTP layer maps each kind to a
// response status in one place; nothing below this layer retries.
var (
	// ErrInvalidCredential covers bad login/password pairs and session tokens
	// that fail verification for any reason.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrExpiredToken and ErrMalformedToken are kept distinct so callers can
	// tell "request a new invite" apart from "invalid link".
	ErrExpiredToken   = errors.New("token expired")
	ErrMalformedToken = errors.New("malformed token")

	ErrCodeNotFound = errors.New("reset code not found")
	ErrCodeExpired  = errors.New("reset code expired")

	// ErrNotFound is also returned when a resource exists but the actor may
	// not see it, so that unauthorized actors cannot probe for valid IDs.
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")

	ErrDuplicateMembership = errors.New("membership already exists")
	ErrAlreadyMember       = errors.New("user is already a project member")
	ErrNotAMember          = errors.New("user is not a project member")

	ErrOwnerCannotLeave = errors.New("project owner cannot leave own project")
	ErrCannotKickSelf   = errors.New("cannot kick yourself from a project")

	ErrNotificationFailed = errors.New("notification dispatch failed")
)
