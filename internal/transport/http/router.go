package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/heimu09/ApartXCleaning/internal/application/account"
	"github.com/heimu09/ApartXCleaning/internal/application/codes"
	"github.com/heimu09/ApartXCleaning/internal/application/login"
	"github.com/heimu09/ApartXCleaning/internal/application/registration"
	"github.com/heimu09/ApartXCleaning/internal/application/token"
	"github.com/heimu09/ApartXCleaning/internal/config"
	"github.com/heimu09/ApartXCleaning/internal/domain"
	jwtinfra "github.com/heimu09/ApartXCleaning/internal/infrastructure/jwt"
	redisinfra "github.com/heimu09/ApartXCleaning/internal/infrastructure/redis"
	"github.com/heimu09/ApartXCleaning/internal/transport/http/handler"
	appmiddleware "github.com/heimu09/ApartXCleaning/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// TokenProvider signs and verifies session tokens.
type TokenProvider interface {
	SignPair(ident domain.Identity) (domain.TokenPair, error)
	Verify(tokenStr string, want jwtinfra.TokenType) (*jwtinfra.Claims, error)
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	for _, mw := range appmiddleware.RequestLogger(deps.Logger) {
		r.Use(mw)
	}
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, applied to public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10, cfg.TrustProxyHeaders)

	sender := codes.NewSender(deps.Mailer)
	tokenSvc := token.NewService(token.ServiceDeps{
		Signer:      deps.JWTProvider,
		Revocations: redisinfra.NewStringMap(deps.Ephemeral, redisinfra.NamespaceRevokedToken),
		Users:       deps.Users,
	})
	registrationSvc := registration.NewService(registration.ServiceDeps{
		Users:   deps.Users,
		Pending: redisinfra.NewJSONMap[domain.PendingRegistration](deps.Ephemeral, redisinfra.NamespacePendingRegistration),
		Codes:   redisinfra.NewStringMap(deps.Ephemeral, redisinfra.NamespaceConfirmationCode),
		Avatars: deps.Avatars,
		Sender:  sender,
		Tokens:  tokenSvc,
		Hasher:  deps.Hasher,
		Policy: registration.Policy{
			PendingTTL:   cfg.PendingRegistrationTTL,
			CodeTTL:      cfg.ConfirmationCodeTTL,
			TempPrefix:   cfg.AvatarTempPrefix,
			AvatarPrefix: cfg.AvatarPrefix,
		},
	})
	loginSvc := login.NewService(login.ServiceDeps{
		Users:   deps.Users,
		Codes:   redisinfra.NewStringMap(deps.Ephemeral, redisinfra.NamespaceLoginCode),
		Sender:  sender,
		Tokens:  tokenSvc,
		Hasher:  deps.Hasher,
		CodeTTL: cfg.LoginCodeTTL,
	})
	accountSvc := account.NewService(account.ServiceDeps{Users: deps.Users, Tokens: tokenSvc})

	healthH := handler.NewHealthHandler(deps.HealthChecks)
	registrationH := handler.NewRegistrationHandler(registrationSvc)
	loginH := handler.NewLoginHandler(loginSvc)
	tokenH := handler.NewTokenHandler(tokenSvc)
	accountH := handler.NewAccountHandler(accountSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Get("/roles", handler.ListRoles)

		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)

			r.Post("/request-register", registrationH.Request)
			r.Post("/confirm-register", registrationH.Confirm)
			r.Post("/request-login", loginH.Request)
			r.Post("/confirm-login", loginH.Confirm)
			r.Post("/token/refresh", tokenH.Refresh)
			r.Post("/token/verify", tokenH.Verify)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/profile", accountH.Profile)
			r.Post("/select-role", accountH.SelectRole)

			// Marketplace routes need a selected role.
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleCustomer, domain.RoleExecutor))

				r.Get("/permissions", accountH.Permissions)
			})
		})
	})

	return r
}
