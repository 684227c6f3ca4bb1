package handler

import (
	"net/http"

	"github.com/heimu09/ApartXCleaning/internal/application/login"
	"github.com/heimu09/ApartXCleaning/internal/domain"
)

// LoginHandler handles the password + emailed code login endpoints.
type LoginHandler struct {
	svc login.Service
}

func NewLoginHandler(svc login.Service) *LoginHandler { return &LoginHandler{svc: svc} }

func (h *LoginHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.Request(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Login code has been sent to your email."})
}

func (h *LoginHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req domain.ConfirmCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Confirm(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authEnvelope("Login successful.", res.Tokens, res.User))
}
