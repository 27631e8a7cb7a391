package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadAppConfig_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/snapfeed")

	_, err := LoadAppConfig()
	if !errors.Is(err, ErrMissingRequiredEnv) {
		t.Fatalf("expected ErrMissingRequiredEnv, got %v", err)
	}
}

func TestLoadAppConfig_ShortJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("DATABASE_URL", "postgres://localhost/snapfeed")

	_, err := LoadAppConfig()
	if !errors.Is(err, ErrInvalidJWTSecret) {
		t.Fatalf("expected ErrInvalidJWTSecret, got %v", err)
	}
}

func TestLoadAppConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_URL", "postgres://localhost/snapfeed")
	t.Setenv("STORAGE_DRIVER", "bolt")
	t.Setenv("BOLT_PATH", "media.db")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("BCRYPT_COST", "")

	cfg, err := LoadAppConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTPPort == "" {
		t.Error("expected default http port")
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Errorf("expected 30 day session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("expected bcrypt cost 10, got %d", cfg.BcryptCost)
	}
	if cfg.Storage.Driver != StorageDriverBolt {
		t.Errorf("expected bolt driver, got %s", cfg.Storage.Driver)
	}
}

func TestLoadAppConfig_S3RequiresBucket(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_URL", "postgres://localhost/snapfeed")
	t.Setenv("STORAGE_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "")

	_, err := LoadAppConfig()
	if !errors.Is(err, ErrInvalidStorage) {
		t.Fatalf("expected ErrInvalidStorage, got %v", err)
	}
}

func TestLoadAppConfig_UnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_URL", "postgres://localhost/snapfeed")
	t.Setenv("STORAGE_DRIVER", "ftp")

	_, err := LoadAppConfig()
	if err == nil || !strings.Contains(err.Error(), "ftp") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

func TestOAuthConfig_GoogleEnabled(t *testing.T) {
	if (OAuthConfig{}).GoogleEnabled() {
		t.Error("expected google disabled without credentials")
	}
	if !(OAuthConfig{GoogleClientID: "id", GoogleClientSecret: "secret"}).GoogleEnabled() {
		t.Error("expected google enabled with credentials")
	}
}

func TestLoadAppConfig_TrustedProxies(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DATABASE_URL", "postgres://localhost/snapfeed")
	t.Setenv("STORAGE_DRIVER", "bolt")
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, ,172.16.0.5 ")

	cfg, err := LoadAppConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.0/8" || cfg.TrustedProxies[1] != "172.16.0.5" {
		t.Errorf("unexpected trusted proxies %q", cfg.TrustedProxies)
	}
}
