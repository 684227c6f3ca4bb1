package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/heimu09/ApartXCleaning/internal/config"
	"github.com/heimu09/ApartXCleaning/internal/infrastructure/dynamo"
	jwtinfra "github.com/heimu09/ApartXCleaning/internal/infrastructure/jwt"
	redisinfra "github.com/heimu09/ApartXCleaning/internal/infrastructure/redis"
	s3infra "github.com/heimu09/ApartXCleaning/internal/infrastructure/s3"
	"github.com/heimu09/ApartXCleaning/internal/infrastructure/smtp"
	"github.com/heimu09/ApartXCleaning/internal/pkg/logger"
	"github.com/heimu09/ApartXCleaning/internal/pkg/password"
	transporthttp "github.com/heimu09/ApartXCleaning/internal/transport/http"
	"github.com/heimu09/ApartXCleaning/internal/transport/http/handler"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	lg := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		lg.Info().Msg("no .env file found, reading from environment")
	}

	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		lg.Fatal().Err(err).Msg("dynamodb client")
	}
	if err := dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables); err != nil {
		lg.Fatal().Err(err).Msg("dynamodb bootstrap")
	}

	redisClient, err := redisinfra.NewClient(cfg)
	if err != nil {
		lg.Fatal().Err(err).Msg("redis client")
	}
	defer redisClient.Close()
	if err := redisinfra.Ping(ctx, redisClient, cfg.RedisTimeout); err != nil {
		lg.Fatal().Err(err).Msg("redis unreachable")
	}

	// Tokens cannot be minted without keys, so a missing provider is fatal.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		lg.Fatal().Err(err).Msg("jwt provider")
	}

	s3Client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		lg.Fatal().Err(err).Msg("s3 client")
	}

	deps := &transporthttp.Deps{
		Users:       dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users, cfg.DynamoTables.UserUniques),
		Ephemeral:   redisClient,
		Avatars:     s3infra.NewStore(s3Client, cfg.S3BucketName, cfg.MediaBaseURL),
		Mailer:      smtp.NewMailer(cfg),
		JWTProvider: jwtProvider,
		Hasher:      password.NewHasher(cfg.BcryptCost),
		Logger:      lg,
		HealthChecks: map[string]handler.Pinger{
			"redis": func(ctx context.Context) error {
				return redisinfra.Ping(ctx, redisClient, cfg.RedisTimeout)
			},
		},
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("forced shutdown")
		return
	}
	lg.Info().Msg("server stopped")
}
