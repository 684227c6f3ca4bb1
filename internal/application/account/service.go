package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/heimu09/ApartXCleaning/internal/domain"
	"github.com/rs/zerolog/log"
)

// SelectRoleResult is the updated user and a token pair carrying the new role.
type SelectRoleResult struct {
	User   *domain.User
	Tokens domain.TokenPair
}

// Service exposes operations an authenticated user performs on their own account.
type Service interface {
	Profile(ctx context.Context, ident domain.Identity) (*domain.User, error)
	// SelectRole sets the caller's marketplace role. It succeeds only while
	// no role has been chosen.
	SelectRole(ctx context.Context, ident domain.Identity, role string) (*SelectRoleResult, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	UpdateRole(ctx context.Context, userID, role string) error
}

type tokenIssuer interface {
	Issue(ctx context.Context, ident domain.Identity) (domain.TokenPair, error)
}

type ServiceDeps struct {
	Users  userStore
	Tokens tokenIssuer
}

type service struct {
	users  userStore
	tokens tokenIssuer
}

func NewService(deps ServiceDeps) Service {
	return &service{users: deps.Users, tokens: deps.Tokens}
}

func (s *service) Profile(ctx context.Context, ident domain.Identity) (*domain.User, error) {
	if ident.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	u, err := s.users.Get(ctx, ident.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}

func (s *service) SelectRole(ctx context.Context, ident domain.Identity, role string) (*SelectRoleResult, error) {
	if ident.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !domain.IsSelectableRole(role) {
		return nil, fmt.Errorf("role %q is not selectable: %w", role, domain.ErrValidation)
	}
	if err := s.users.UpdateRole(ctx, ident.UserID, role); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u, err := s.users.Get(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	pair, err := s.tokens.Issue(ctx, u.Identity())
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("user_id", u.UserID).Str("role", role).Msg("role selected")
	return &SelectRoleResult{User: u, Tokens: pair}, nil
}
