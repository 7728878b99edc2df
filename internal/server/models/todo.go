package models

import "time"

// Todo is a single task row owned by one user. AttachmentKey holds the
// object-storage key of an uploaded attachment, if any.
type Todo struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	DueTime       time.Time `json:"due_time"`
	Completed     bool      `json:"completed"`
	AttachmentKey *string   `json:"attachment_key,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
