// Package common defines shared constants and sentinel errors used across
// the dueDash server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal      = errors.New("internal error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUsernameTaken = errors.New("username already registered")
	ErrNoAttachment  = errors.New("no attachment")

	// Token verification errors, in the order verification checks them:
	// signature/structure first, then expiry, then the type tag, then the
	// subject claim. Each kind stays distinguishable so the HTTP and the
	// realtime boundaries can render their own messages.
	ErrTokenMalformed      = errors.New("token malformed")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenWrongType      = errors.New("wrong token type")
	ErrTokenMissingSubject = errors.New("token missing subject")

	// ErrUnknownSubject is returned by the session guard when a token
	// verifies but its subject no longer has a user row.
	ErrUnknownSubject = errors.New("unknown subject")
)
