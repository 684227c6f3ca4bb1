package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Verification flow errors. The text of each is the stable message returned to API callers.
var (
	ErrValidation            = errors.New("validation failed")
	ErrDuplicateEmail        = errors.New("a user with this email already exists")
	ErrDuplicatePhone        = errors.New("a user with this phone number already exists")
	ErrMissingAvatar         = errors.New("the avatar is missing")
	ErrNoPendingRegistration = errors.New("no registration is pending for this email, please register again")
	ErrCodeExpired           = errors.New("the confirmation code has expired, please request a new one")
	ErrCodeMismatch          = errors.New("the confirmation code does not match")
	ErrUserNotFound          = errors.New("a user with this email was not found")
	ErrInvalidCredentials    = errors.New("unable to log in with provided credentials")
	ErrDeliveryFailed        = errors.New("the code could not be delivered, please try again")
	ErrStorageFailure        = errors.New("the avatar could not be stored, please try again")
)
