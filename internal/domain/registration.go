package domain

import "time"

// PendingRegistration is a submitted but unconfirmed registration. It lives in
// the ephemeral store keyed by email and never holds the plaintext password.
type PendingRegistration struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number"`
	AvatarKey    string    `json:"avatar_key"` // staged object key under the temporary prefix
	SubmittedAt  time.Time `json:"submitted_at"`
}
