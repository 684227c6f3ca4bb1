package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/heimu09/ApartXCleaning/internal/domain"
	jwtinfra "github.com/heimu09/ApartXCleaning/internal/infrastructure/jwt"
	"github.com/rs/zerolog/log"
)

type signer interface {
	SignPair(ident domain.Identity) (domain.TokenPair, error)
	Verify(tokenStr string, want jwtinfra.TokenType) (*jwtinfra.Claims, error)
}

type revocationStore interface {
	SetNX(ctx context.Context, jti string, userID string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, jti string) (string, bool, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Service mints, rotates and checks session tokens.
type Service interface {
	Issue(ctx context.Context, ident domain.Identity) (domain.TokenPair, error)
	// Refresh exchanges a refresh token for a new pair. The presented token
	// is revoked, so each refresh token works once.
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
	// Verify reports whether a token of either type is currently valid.
	Verify(ctx context.Context, token string) (*jwtinfra.Claims, error)
}

type ServiceDeps struct {
	Signer      signer
	Revocations revocationStore
	Users       userStore
	Now         func() time.Time
}

type service struct {
	signer      signer
	revocations revocationStore
	users       userStore
	now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{signer: deps.Signer, revocations: deps.Revocations, users: deps.Users, now: now}
}

func (s *service) Issue(_ context.Context, ident domain.Identity) (domain.TokenPair, error) {
	return s.signer.SignPair(ident)
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.signer.Verify(refreshToken, jwtinfra.TokenRefresh)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%v: %w", err, domain.ErrUnauthorized)
	}
	u, err := s.users.Get(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.TokenPair{}, fmt.Errorf("token owner no longer exists: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !u.IsActive {
		return domain.TokenPair{}, fmt.Errorf("account is disabled: %w", domain.ErrUnauthorized)
	}

	// The revocation entry must outlive the token it blocks.
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	fresh, err := s.revocations.SetNX(ctx, claims.ID, claims.UserID, ttl)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("revoke refresh token: %w", err)
	}
	if !fresh {
		log.Ctx(ctx).Warn().Str("user_id", claims.UserID).Str("jti", claims.ID).Msg("revoked refresh token presented")
		return domain.TokenPair{}, fmt.Errorf("token has been revoked: %w", domain.ErrUnauthorized)
	}
	return s.signer.SignPair(u.Identity())
}

func (s *service) Verify(ctx context.Context, token string) (*jwtinfra.Claims, error) {
	claims, err := s.signer.Verify(token, "")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrUnauthorized)
	}
	if claims.TokenType == jwtinfra.TokenRefresh {
		_, revoked, err := s.revocations.Get(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("token has been revoked: %w", domain.ErrUnauthorized)
		}
	}
	return claims, nil
}
