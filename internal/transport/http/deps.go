package http

import (
	"context"
	"io"

	"github.com/heimu09/ApartXCleaning/internal/domain"
	"github.com/heimu09/ApartXCleaning/internal/infrastructure/smtp"
	"github.com/heimu09/ApartXCleaning/internal/transport/http/handler"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdateRole sets the role only while it is still empty.
	UpdateRole(ctx context.Context, userID, role string) error
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Copy(ctx context.Context, src, dst string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Hasher hashes and checks passwords.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Users        UserRepository
	Ephemeral    redis.Cmdable
	Avatars      ObjectStore
	Mailer       smtp.Mailer
	JWTProvider  TokenProvider
	Hasher       Hasher
	Logger       zerolog.Logger
	HealthChecks map[string]handler.Pinger
}
