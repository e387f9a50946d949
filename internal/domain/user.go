package domain

import "time"

// User represents a registered account. The ID is the subject claim of
// the identity provider token, not a locally generated identifier.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
