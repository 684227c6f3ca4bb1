package login

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/heimu09/ApartXCleaning/internal/application/codes"
	"github.com/heimu09/ApartXCleaning/internal/domain"
	"github.com/heimu09/ApartXCleaning/internal/pkg/otp"
	"github.com/heimu09/ApartXCleaning/internal/pkg/validate"
	"github.com/rs/zerolog/log"
)

// ConfirmResult is the user who completed login and their new session.
type ConfirmResult struct {
	User   *domain.User
	Tokens domain.TokenPair
}

// Service runs two-step login: password check, then an emailed code.
type Service interface {
	Request(ctx context.Context, req domain.LoginRequest) error
	Confirm(ctx context.Context, req domain.ConfirmCodeRequest) (*ConfirmResult, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type codeStore interface {
	Set(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, bool, error)
	Take(ctx context.Context, email string) (bool, error)
}

type codeSender interface {
	Send(ctx context.Context, purpose codes.Purpose, destination, code string) error
}

type tokenIssuer interface {
	Issue(ctx context.Context, ident domain.Identity) (domain.TokenPair, error)
}

type passwordVerifier interface {
	Verify(hash, plain string) bool
}

type ServiceDeps struct {
	Users        userStore
	Codes        codeStore
	Sender       codeSender
	Tokens       tokenIssuer
	Hasher       passwordVerifier
	CodeTTL      time.Duration
	GenerateCode func() (string, error)
}

type service struct {
	users   userStore
	codes   codeStore
	sender  codeSender
	tokens  tokenIssuer
	hasher  passwordVerifier
	codeTTL time.Duration
	genCode func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	genCode := deps.GenerateCode
	if genCode == nil {
		genCode = otp.Generate
	}
	return &service{
		users:   deps.Users,
		codes:   deps.Codes,
		sender:  deps.Sender,
		tokens:  deps.Tokens,
		hasher:  deps.Hasher,
		codeTTL: deps.CodeTTL,
		genCode: genCode,
	}
}

func (s *service) Request(ctx context.Context, req domain.LoginRequest) error {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return err
	}
	u, err := s.lookup(ctx, req.Email)
	if err != nil {
		return err
	}
	if !u.IsActive || !s.hasher.Verify(u.PasswordHash, req.Password) {
		log.Ctx(ctx).Info().Str("email", req.Email).Msg("login rejected")
		return domain.ErrInvalidCredentials
	}

	code, err := s.genCode()
	if err != nil {
		return err
	}
	if err := s.codes.Set(ctx, req.Email, code, s.codeTTL); err != nil {
		return err
	}
	if err := s.sender.Send(ctx, codes.PurposeLogin, req.Email, code); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("email", req.Email).Msg("send login code")
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
	stored, found, err := s.codes.Get(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrCodeExpired
	}
	if !otp.Matches(stored, req.Code) {
		return nil, domain.ErrCodeMismatch
	}
	u, err := s.lookup(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	// The code is spent before a session exists. Only the caller that removes
	// it may proceed; a concurrent confirm that matched the same code loses here.
	taken, err := s.codes.Take(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if !taken {
		return nil, domain.ErrCodeExpired
	}
	pair, err := s.tokens.Issue(ctx, u.Identity())
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("user_id", u.UserID).Msg("login confirmed")
	return &ConfirmResult{User: u, Tokens: pair}, nil
}

func (s *service) lookup(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}
