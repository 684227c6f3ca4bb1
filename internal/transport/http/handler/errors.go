package handler

import (
	"errors"
	"net/http"

	"github.com/heimu09/ApartXCleaning/internal/domain"
	"github.com/rs/zerolog/log"
)

type errorMapping struct {
	err    error
	status int
	code   string
	// verbose responses carry the wrapped error text instead of the sentinel's.
	verbose bool
}

// Order matters: flow errors are matched before the generic sentinels they
// may also wrap.
var errorMappings = []errorMapping{
	{err: domain.ErrValidation, status: http.StatusBadRequest, code: "validation_error", verbose: true},
	{err: domain.ErrDuplicateEmail, status: http.StatusBadRequest, code: "duplicate_email"},
	{err: domain.ErrDuplicatePhone, status: http.StatusBadRequest, code: "duplicate_phone"},
	{err: domain.ErrMissingAvatar, status: http.StatusBadRequest, code: "missing_avatar"},
	{err: domain.ErrNoPendingRegistration, status: http.StatusBadRequest, code: "no_pending_registration"},
	{err: domain.ErrCodeExpired, status: http.StatusBadRequest, code: "code_expired"},
	{err: domain.ErrCodeMismatch, status: http.StatusBadRequest, code: "code_mismatch"},
	{err: domain.ErrUserNotFound, status: http.StatusBadRequest, code: "user_not_found"},
	{err: domain.ErrInvalidCredentials, status: http.StatusBadRequest, code: "invalid_credentials"},
	{err: domain.ErrDeliveryFailed, status: http.StatusBadRequest, code: "delivery_failed"},
	{err: domain.ErrStorageFailure, status: http.StatusBadRequest, code: "storage_failure"},
	{err: domain.ErrBadRequest, status: http.StatusBadRequest, code: "bad_request", verbose: true},
	{err: domain.ErrUnauthorized, status: http.StatusUnauthorized, code: "unauthorized"},
	{err: domain.ErrForbidden, status: http.StatusForbidden, code: "forbidden"},
	{err: domain.ErrNotFound, status: http.StatusNotFound, code: "not_found"},
	{err: domain.ErrConflict, status: http.StatusConflict, code: "conflict", verbose: true},
}

// writeServiceError maps a service error onto a status and a stable message.
// Anything unrecognised is logged and reported as a 500 without details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.err.Error()
		if m.verbose {
			msg = err.Error()
		}
		writeJSON(w, m.status, MessageEnvelope{Error: msg, Code: m.code})
		return
	}
	log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled service error")
	writeJSON(w, http.StatusInternalServerError, MessageEnvelope{Error: "internal server error", Code: "internal"})
}
