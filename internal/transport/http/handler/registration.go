package handler

import (
	"errors"
	"net/http"

	"github.com/heimu09/ApartXCleaning/internal/application/registration"
	"github.com/heimu09/ApartXCleaning/internal/domain"
)

// maxRegistrationBody bounds the multipart form held in memory; larger avatar
// parts spill to temporary files.
const maxRegistrationBody = 10 << 20

// RegistrationHandler handles the two-step registration endpoints.
type RegistrationHandler struct {
	svc registration.Service
}

func NewRegistrationHandler(svc registration.Service) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

func (h *RegistrationHandler) Request(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRegistrationBody); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()
	in := registration.RequestInput{
		RegisterRequest: domain.RegisterRequest{
			Email:       r.FormValue("email"),
			Password:    r.FormValue("password"),
			FirstName:   r.FormValue("first_name"),
			LastName:    r.FormValue("last_name"),
			PhoneNumber: r.FormValue("phone_number"),
		},
	}
	file, header, err := r.FormFile("avatar")
	switch {
	case err == nil:
		defer file.Close()
		in.Avatar = &registration.Avatar{
			Reader:      file,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
		}
	case !errors.Is(err, http.ErrMissingFile):
		writeError(w, http.StatusBadRequest, "invalid avatar upload")
		return
	}

	if err := h.svc.Request(r.Context(), in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Confirmation code has been sent to your email."})
}

func (h *RegistrationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req domain.ConfirmCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Confirm(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if res.Tokens.Access == "" {
		writeJSON(w, http.StatusCreated, authEnvelope("Your account has been successfully created. Please log in.", res.Tokens, res.User))
		return
	}
	writeJSON(w, http.StatusCreated, authEnvelope("Your account has been successfully created.", res.Tokens, res.User))
}
