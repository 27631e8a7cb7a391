package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AlibekovAA/snapfeed/internal/common/logger"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}

func TestNewLogger_ReadsLogSettingsFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	dotEnv := "LOG_DIR=" + logDir + "\nLOG_LEVEL=ERROR\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotEnv), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)
	unsetEnv(t, "LOG_DIR")
	unsetEnv(t, "LOG_LEVEL")

	log, err := NewLogger("test")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })

	if log.ShouldLog(logger.INFO) {
		t.Error("expected LOG_LEVEL=ERROR from .env to suppress info")
	}
	if !log.ShouldLog(logger.ERROR) {
		t.Error("expected error level to be logged")
	}
	if info, err := os.Stat(logDir); err != nil || !info.IsDir() {
		t.Errorf("expected LOG_DIR from .env to be created, stat err: %v", err)
	}
}

func TestNewLogger_EnvironmentWinsOverDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=ERROR\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Chdir(dir)
	t.Setenv("LOG_DIR", "")
	t.Setenv("LOG_LEVEL", "DEBUG")

	log, err := NewLogger("test")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	if !log.ShouldLog(logger.DEBUG) {
		t.Error("expected LOG_LEVEL from the environment to win")
	}
}
