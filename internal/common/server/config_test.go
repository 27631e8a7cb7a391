package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig("8080", time.Second)

	if cfg.Addr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Addr)
	}
	if cfg.ReadTimeout != constants.ServerReadTimeout || cfg.WriteTimeout != constants.ServerWriteTimeout {
		t.Errorf("expected default timeouts, got read=%v write=%v", cfg.ReadTimeout, cfg.WriteTimeout)
	}
}

func TestNewConfig_StretchesForUploads(t *testing.T) {
	cfg := NewConfig("8080", 5*time.Minute)

	want := 5*time.Minute + constants.ServerReadHeaderTimeout
	if cfg.ReadTimeout != want || cfg.WriteTimeout != want {
		t.Errorf("expected %v, got read=%v write=%v", want, cfg.ReadTimeout, cfg.WriteTimeout)
	}
}

func TestNew(t *testing.T) {
	h := http.NewServeMux()
	srv := New(NewConfig("9090", time.Second), h)

	if srv.Addr != ":9090" || srv.Handler != h {
		t.Errorf("unexpected server %+v", srv)
	}
	if srv.MaxHeaderBytes != maxHeaderBytes {
		t.Errorf("expected max header bytes %d, got %d", maxHeaderBytes, srv.MaxHeaderBytes)
	}
}
