package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/heimu09/ApartXCleaning/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// AuthEnvelope wraps responses that hand out a token pair.
type AuthEnvelope struct {
	Message          string    `json:"message,omitempty"`
	Access           string    `json:"access,omitempty"`
	Refresh          string    `json:"refresh,omitempty"`
	AccessExpiresIn  int64     `json:"access_expires_in,omitempty"`
	RefreshExpiresIn int64     `json:"refresh_expires_in,omitempty"`
	User             *SafeUser `json:"user,omitempty"`
}

// SafeUser is the public view of a user.
type SafeUser struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Avatar      string    `json:"avatar"`
	Role        *string   `json:"role"`
	IsVerified  bool      `json:"is_verified"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created"`
}

func toSafeUser(u *domain.User) *SafeUser {
	if u == nil {
		return nil
	}
	su := &SafeUser{
		ID:          u.UserID,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Avatar:      u.Avatar,
		IsVerified:  u.IsVerified,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
	if u.Role != "" {
		role := u.Role
		su.Role = &role
	}
	return su
}

func authEnvelope(msg string, pair domain.TokenPair, u *domain.User) AuthEnvelope {
	return AuthEnvelope{
		Message:          msg,
		Access:           pair.Access,
		Refresh:          pair.Refresh,
		AccessExpiresIn:  pair.AccessExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
		User:             toSafeUser(u),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// decodeJSON reads a JSON body into dst and answers 400 when it cannot.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
