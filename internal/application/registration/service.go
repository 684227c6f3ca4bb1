package registration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/heimu09/ApartXCleaning/internal/application/codes"
	"github.com/heimu09/ApartXCleaning/internal/domain"
	s3infra "github.com/heimu09/ApartXCleaning/internal/infrastructure/s3"
	"github.com/heimu09/ApartXCleaning/internal/pkg/id"
	"github.com/heimu09/ApartXCleaning/internal/pkg/otp"
	"github.com/heimu09/ApartXCleaning/internal/pkg/validate"
	"github.com/rs/zerolog/log"
)

// Avatar is an uploaded image waiting to be staged.
type Avatar struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// RequestInput is a registration submission.
type RequestInput struct {
	domain.RegisterRequest
	Avatar *Avatar
}

// ConfirmResult is the account created by a successful confirmation and the
// session minted for it. Tokens is empty when the account exists but no
// session could be issued.
type ConfirmResult struct {
	User   *domain.User
	Tokens domain.TokenPair
}

// Service runs two-step email-verified registration.
type Service interface {
	// Request stages a registration and emails a confirmation code. A second
	// request for the same email replaces the first.
	Request(ctx context.Context, in RequestInput) error
	// Confirm checks the code and turns the staged registration into a user.
	Confirm(ctx context.Context, req domain.ConfirmCodeRequest) (*ConfirmResult, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

type pendingStore interface {
	Swap(ctx context.Context, email string, p domain.PendingRegistration, ttl time.Duration) (domain.PendingRegistration, bool, error)
	Get(ctx context.Context, email string) (domain.PendingRegistration, bool, error)
	Delete(ctx context.Context, email string) error
}

type codeStore interface {
	Set(ctx context.Context, email, code string, ttl time.Duration) error
	SetNX(ctx context.Context, email, code string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, email string) (string, bool, error)
	Take(ctx context.Context, email string) (bool, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Copy(ctx context.Context, src, dst string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

type codeSender interface {
	Send(ctx context.Context, purpose codes.Purpose, destination, code string) error
}

type tokenIssuer interface {
	Issue(ctx context.Context, ident domain.Identity) (domain.TokenPair, error)
}

type passwordHasher interface {
	Hash(plain string) (string, error)
}

// Policy holds the lifetimes and object key prefixes of the flow.
type Policy struct {
	PendingTTL   time.Duration
	CodeTTL      time.Duration
	TempPrefix   string
	AvatarPrefix string
}

type ServiceDeps struct {
	Users        userStore
	Pending      pendingStore
	Codes        codeStore
	Avatars      objectStore
	Sender       codeSender
	Tokens       tokenIssuer
	Hasher       passwordHasher
	Policy       Policy
	GenerateCode func() (string, error)
	Now          func() time.Time
}

type service struct {
	users   userStore
	pending pendingStore
	codes   codeStore
	avatars objectStore
	sender  codeSender
	tokens  tokenIssuer
	hasher  passwordHasher
	policy  Policy
	genCode func() (string, error)
	now     func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		users:   deps.Users,
		pending: deps.Pending,
		codes:   deps.Codes,
		avatars: deps.Avatars,
		sender:  deps.Sender,
		tokens:  deps.Tokens,
		hasher:  deps.Hasher,
		policy:  deps.Policy,
		genCode: deps.GenerateCode,
		now:     deps.Now,
	}
	if s.genCode == nil {
		s.genCode = otp.Generate
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Request(ctx context.Context, in RequestInput) error {
	req := in.RegisterRequest
	req.Email = domain.NormalizeEmail(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if err := validate.Struct(req); err != nil {
		return err
	}
	if err := s.ensureUnclaimed(ctx, req.Email, req.PhoneNumber); err != nil {
		return err
	}
	if in.Avatar == nil || in.Avatar.Reader == nil {
		return domain.ErrMissingAvatar
	}
	logger := log.Ctx(ctx).With().Str("email", req.Email).Logger()

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	tempKey := s.policy.TempPrefix + id.New() + "-" + s3infra.SafeName(in.Avatar.Filename)
	if err := s.avatars.Upload(ctx, tempKey, in.Avatar.Reader, in.Avatar.ContentType); err != nil {
		logger.Error().Err(err).Msg("stage avatar")
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	pending := domain.PendingRegistration{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		AvatarKey:    tempKey,
		SubmittedAt:  s.now().UTC(),
	}
	// Each replaced entry is returned to exactly one request, so concurrent
	// submissions leave only the winner's staged avatar behind.
	previous, hadPrevious, err := s.pending.Swap(ctx, req.Email, pending, s.policy.PendingTTL)
	if err != nil {
		s.discard(ctx, tempKey)
		return err
	}
	if hadPrevious && previous.AvatarKey != tempKey {
		s.discard(ctx, previous.AvatarKey)
	}

	code, err := s.genCode()
	if err != nil {
		return err
	}
	if err := s.codes.Set(ctx, req.Email, code, s.policy.CodeTTL); err != nil {
		return err
	}
	if err := s.sender.Send(ctx, codes.PurposeRegistration, req.Email, code); err != nil {
		logger.Error().Err(err).Msg("send confirmation code")
		return err
	}
	logger.Info().Msg("registration staged")
	return nil
}

// ensureUnclaimed rejects an email or phone number already held by a user.
func (s *service) ensureUnclaimed(ctx context.Context, email, phone string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, err := s.users.GetByPhone(ctx, phone); err == nil {
		return domain.ErrDuplicatePhone
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *service) Confirm(ctx context.Context, req domain.ConfirmCodeRequest) (*ConfirmResult, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	logger := log.Ctx(ctx).With().Str("email", req.Email).Logger()

	pending, found, err := s.pending.Get(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNoPendingRegistration
	}
	stored, found, err := s.codes.Get(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrCodeExpired
	}
	if !otp.Matches(stored, req.Code) {
		logger.Info().Msg("confirmation code mismatch")
		return nil, domain.ErrCodeMismatch
	}
	// Only the confirm that removes the code goes on to create the user.
	taken, err := s.codes.Take(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !taken {
		return nil, domain.ErrCodeExpired
	}

	finalKey := s.policy.AvatarPrefix + strings.TrimPrefix(pending.AvatarKey, s.policy.TempPrefix)
	if err := s.avatars.Copy(ctx, pending.AvatarKey, finalKey); err != nil {
		logger.Error().Err(err).Msg("move staged avatar")
		s.restoreCode(ctx, req.Email, stored)
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	u := &domain.User{
		UserID:       id.New(),
		Email:        pending.Email,
		PhoneNumber:  pending.PhoneNumber,
		PasswordHash: pending.PasswordHash,
		FirstName:    pending.FirstName,
		LastName:     pending.LastName,
		Avatar:       s.avatars.URL(finalKey),
		AvatarKey:    finalKey,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		s.discard(ctx, finalKey)
		s.restoreCode(ctx, req.Email, stored)
		return nil, err
	}

	// The user exists from here on; cleanup failures are logged, not returned.
	if err := s.pending.Delete(ctx, req.Email); err != nil {
		logger.Warn().Err(err).Msg("delete pending registration")
	}
	s.discard(ctx, pending.AvatarKey)

	// A session failure must not hide the created account; the caller logs in instead.
	pair, err := s.tokens.Issue(ctx, u.Identity())
	if err != nil {
		logger.Error().Err(err).Str("user_id", u.UserID).Msg("issue tokens after registration")
		return &ConfirmResult{User: u}, nil
	}
	logger.Info().Str("user_id", u.UserID).Msg("registration confirmed")
	return &ConfirmResult{User: u, Tokens: pair}, nil
}

// restoreCode puts a taken code back after a failed confirmation so the user
// can retry. A code written since then is left alone.
func (s *service) restoreCode(ctx context.Context, email, code string) {
	if _, err := s.codes.SetNX(ctx, email, code, s.policy.CodeTTL); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("email", email).Msg("restore confirmation code")
	}
}

// discard deletes an object best-effort.
func (s *service) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.avatars.Delete(ctx, key); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("delete avatar object")
	}
}
