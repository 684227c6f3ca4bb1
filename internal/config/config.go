package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	S3BucketName     string
	AvatarTempPrefix string
	AvatarPrefix     string
	MediaBaseURL     string

	RedisURL     string
	RedisTimeout time.Duration

	PendingRegistrationTTL time.Duration
	ConfirmationCodeTTL    time.Duration
	LoginCodeTTL           time.Duration

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTIssuer         string
	JWTAccessTTL      time.Duration
	JWTRefreshTTL     time.Duration
	BcryptCost        int

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SMTPTimeout  time.Duration

	AllowedOrigins    []string // CORS allowed origins
	TrustProxyHeaders bool     // key rate limits on X-Forwarded-For / X-Real-Ip
	LogLevel          string
	LogFormat         string // "json" or "console"
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users       string
	UserUniques string
}

var defaults = map[string]any{
	"APP_PORT":                  "3000",
	"APP_ENV":                   "development",
	"AWS_REGION":                "us-east-1",
	"AWS_ENDPOINT_URL":          "",
	"AWS_ACCESS_KEY_ID":         "",
	"AWS_SECRET_ACCESS_KEY":     "",
	"DYNAMO_TABLE_USERS":        "users",
	"DYNAMO_TABLE_USER_UNIQUES": "user_uniques",
	"S3_BUCKET_NAME":            "apartx-media",
	"AVATAR_TEMP_PREFIX":        "tmp/",
	"AVATAR_PREFIX":             "tinder/user/avatar/",
	"MEDIA_BASE_URL":            "http://localhost:4566/apartx-media/",
	"REDIS_URL":                 "redis://localhost:6379/0",
	"REDIS_TIMEOUT":             "3s",
	"PENDING_REGISTRATION_TTL":  "24h",
	"CONFIRMATION_CODE_TTL":     "120s",
	"LOGIN_CODE_TTL":            "120s",
	"JWT_PRIVATE_KEY_PATH":      "./private_key.pem",
	"JWT_PUBLIC_KEY_PATH":       "./public_key.pem",
	"JWT_ISSUER":                "apartx-auth",
	"JWT_ACCESS_TTL":            "5m",
	"JWT_REFRESH_TTL":           "24h",
	"BCRYPT_COST":               10,
	"SMTP_HOST":                 "localhost",
	"SMTP_PORT":                 "1025",
	"SMTP_FROM":                 "noreply@example.com",
	"SMTP_USERNAME":             "",
	"SMTP_PASSWORD":             "",
	"SMTP_TIMEOUT":              "10s",
	"ALLOWED_ORIGINS":           "*",
	"TRUST_PROXY_HEADERS":       false,
	"LOG_LEVEL":                 "info",
	"LOG_FORMAT":                "json",
}

// Load reads all configuration from environment variables, falling back to
// defaults, and rejects values the verification flows cannot run with.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		AppEnv:         v.GetString("APP_ENV"),
		AWSRegion:      v.GetString("AWS_REGION"),
		AWSEndpointURL: v.GetString("AWS_ENDPOINT_URL"),
		AWSAccessKeyID: v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:   v.GetString("AWS_SECRET_ACCESS_KEY"),
		DynamoTables: DynamoTables{
			Users:       v.GetString("DYNAMO_TABLE_USERS"),
			UserUniques: v.GetString("DYNAMO_TABLE_USER_UNIQUES"),
		},
		S3BucketName:           v.GetString("S3_BUCKET_NAME"),
		AvatarTempPrefix:       v.GetString("AVATAR_TEMP_PREFIX"),
		AvatarPrefix:           v.GetString("AVATAR_PREFIX"),
		MediaBaseURL:           v.GetString("MEDIA_BASE_URL"),
		RedisURL:               v.GetString("REDIS_URL"),
		RedisTimeout:           v.GetDuration("REDIS_TIMEOUT"),
		PendingRegistrationTTL: v.GetDuration("PENDING_REGISTRATION_TTL"),
		ConfirmationCodeTTL:    v.GetDuration("CONFIRMATION_CODE_TTL"),
		LoginCodeTTL:           v.GetDuration("LOGIN_CODE_TTL"),
		JWTPrivateKeyPath:      v.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:       v.GetString("JWT_PUBLIC_KEY_PATH"),
		JWTIssuer:              v.GetString("JWT_ISSUER"),
		JWTAccessTTL:           v.GetDuration("JWT_ACCESS_TTL"),
		JWTRefreshTTL:          v.GetDuration("JWT_REFRESH_TTL"),
		BcryptCost:             v.GetInt("BCRYPT_COST"),
		SMTPHost:               v.GetString("SMTP_HOST"),
		SMTPPort:               v.GetString("SMTP_PORT"),
		SMTPFrom:               v.GetString("SMTP_FROM"),
		SMTPUsername:           v.GetString("SMTP_USERNAME"),
		SMTPPassword:           v.GetString("SMTP_PASSWORD"),
		SMTPTimeout:            v.GetDuration("SMTP_TIMEOUT"),
		AllowedOrigins:         splitList(v.GetString("ALLOWED_ORIGINS")),
		TrustProxyHeaders:      v.GetBool("TRUST_PROXY_HEADERS"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		LogFormat:              v.GetString("LOG_FORMAT"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	ttls := []struct {
		name string
		d    time.Duration
	}{
		{"PENDING_REGISTRATION_TTL", c.PendingRegistrationTTL},
		{"CONFIRMATION_CODE_TTL", c.ConfirmationCodeTTL},
		{"LOGIN_CODE_TTL", c.LoginCodeTTL},
		{"JWT_ACCESS_TTL", c.JWTAccessTTL},
		{"JWT_REFRESH_TTL", c.JWTRefreshTTL},
		{"REDIS_TIMEOUT", c.RedisTimeout},
		{"SMTP_TIMEOUT", c.SMTPTimeout},
	}
	for _, t := range ttls {
		if t.d <= 0 {
			return fmt.Errorf("config: %s must be a positive duration", t.name)
		}
	}
	if c.ConfirmationCodeTTL > c.PendingRegistrationTTL {
		return errors.New("config: CONFIRMATION_CODE_TTL must not exceed PENDING_REGISTRATION_TTL")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.AvatarTempPrefix == c.AvatarPrefix {
		return errors.New("config: AVATAR_TEMP_PREFIX and AVATAR_PREFIX must differ")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
