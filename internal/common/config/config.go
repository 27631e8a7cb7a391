package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidJWTSecret   = errors.New("JWT_SECRET must be at least 32 bytes")
	ErrInvalidStorage     = errors.New("invalid storage configuration")
)

const (
	StorageDriverS3   = "s3"
	StorageDriverBolt = "bolt"
)

type StorageConfig struct {
	Driver        string
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	BoltPath      string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

func (c OAuthConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

type AppConfig struct {
	HTTPPort        string
	DatabaseURL     string
	JWTSecret       string
	SessionTTL      time.Duration
	RequestTimeout  time.Duration
	UploadTimeout   time.Duration
	MaxRequestBytes int64
	BcryptCost      int
	CookieSecure    bool
	MigrateOnStart  bool
	RedisURL        string
	TrustedProxies  []string
	Storage         StorageConfig
	OAuth           OAuthConfig
}

type MigrateConfig struct {
	DatabaseURL string
}

// LoadDotEnv reads a .env file from the working directory when one exists.
// Variables already present in the environment win.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func LoadAppConfig() (AppConfig, error) {
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return AppConfig{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return AppConfig{}, err
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return AppConfig{}, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return AppConfig{}, err
	}

	return AppConfig{
		HTTPPort:        getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		DatabaseURL:     databaseURL,
		JWTSecret:       jwtSecret,
		SessionTTL:      getDurationEnv("SESSION_TTL", constants.DefaultSessionTTL),
		RequestTimeout:  getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		UploadTimeout:   getDurationEnv("UPLOAD_TIMEOUT", constants.DefaultUploadTimeout),
		MaxRequestBytes: getInt64Env("MAX_REQUEST_BYTES", constants.DefaultMaxRequestSize),
		BcryptCost:      getIntEnv("BCRYPT_COST", constants.DefaultBcryptCost),
		CookieSecure:    getBoolEnv("COOKIE_SECURE", false),
		MigrateOnStart:  getBoolEnv("MIGRATE_ON_START", true),
		RedisURL:        getEnv("REDIS_URL", ""),
		TrustedProxies:  getListEnv("TRUSTED_PROXIES"),
		Storage:         storage,
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/callback/google"),
		},
	}, nil
}

func LoadMigrateConfig() (MigrateConfig, error) {
	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return MigrateConfig{}, err
	}
	return MigrateConfig{DatabaseURL: databaseURL}, nil
}

func loadStorageConfig() (StorageConfig, error) {
	cfg := StorageConfig{
		Driver:        strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverBolt)),
		Bucket:        getEnv("S3_BUCKET", ""),
		Region:        getEnv("S3_REGION", "us-east-1"),
		Endpoint:      getEnv("S3_ENDPOINT", ""),
		PublicBaseURL: strings.TrimRight(getEnv("MEDIA_PUBLIC_BASE_URL", ""), "/"),
		BoltPath:      getEnv("BOLT_PATH", "media.db"),
	}

	switch cfg.Driver {
	case StorageDriverS3:
		if cfg.Bucket == "" {
			return StorageConfig{}, fmt.Errorf("%w: S3_BUCKET is required for the s3 driver", ErrInvalidStorage)
		}
	case StorageDriverBolt:
		if cfg.BoltPath == "" {
			return StorageConfig{}, fmt.Errorf("%w: BOLT_PATH is required for the bolt driver", ErrInvalidStorage)
		}
	default:
		return StorageConfig{}, fmt.Errorf("%w: unknown driver %q", ErrInvalidStorage, cfg.Driver)
	}

	return cfg, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getListEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getInt64Env(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func getBoolEnv(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
