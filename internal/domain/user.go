package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// User is a persisted account. Role stays empty until the user picks one.
type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Email        string    `json:"email" dynamodbav:"email"`
	PhoneNumber  string    `json:"phone_number" dynamodbav:"phone_number"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	FirstName    string    `json:"first_name" dynamodbav:"first_name"`
	LastName     string    `json:"last_name" dynamodbav:"last_name"`
	Avatar       string    `json:"avatar" dynamodbav:"avatar"`
	AvatarKey    string    `json:"-" dynamodbav:"avatar_key"`
	Role         string    `json:"role" dynamodbav:"role"`
	IsVerified   bool      `json:"is_verified" dynamodbav:"is_verified"`
	IsActive     bool      `json:"is_active" dynamodbav:"is_active"`
	IsStaff      bool      `json:"is_staff" dynamodbav:"is_staff"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Identity returns the caller identity tokens are minted for.
func (u *User) Identity() Identity {
	return Identity{UserID: u.UserID, Role: u.Role}
}

// RegisterRequest is the validated shape of a registration submission.
// The avatar travels separately as a file upload.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	FirstName   string `json:"first_name" validate:"required,max=150"`
	LastName    string `json:"last_name" validate:"required,max=150"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
}

type ConfirmCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,max=16"`
}

// UnmarshalJSON accepts the code as a JSON string or a JSON number.
func (r *ConfirmCodeRequest) UnmarshalJSON(b []byte) error {
	var raw struct {
		Email string          `json:"email"`
		Code  json.RawMessage `json:"code"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Email = raw.Email
	r.Code = ""
	if len(raw.Code) == 0 || string(raw.Code) == "null" {
		return nil
	}
	if raw.Code[0] == '"' {
		return json.Unmarshal(raw.Code, &r.Code)
	}
	var n json.Number
	if err := json.Unmarshal(raw.Code, &n); err != nil {
		return errors.New("code must be a string or a number")
	}
	r.Code = n.String()
	return nil
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SelectRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// NormalizeEmail trims the address and lowercases its domain part.
// The local part is kept as typed.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
