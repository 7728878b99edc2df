// Package models defines the persistent row types of the dueDash server.
package models

import "time"

// User is a registered account. Username is unique and immutable; it is the
// identity carried in access tokens and chat broadcasts.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
