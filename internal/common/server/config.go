package server

import (
	"net/http"
	"time"

	"github.com/AlibekovAA/snapfeed/internal/common/constants"
)

const maxHeaderBytes = 1 << 20

type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
}

// NewConfig returns listener settings for port. Read and write deadlines are
// stretched to cover uploadTimeout so that a slow multipart upload is cut by
// the handler's own context rather than by the connection.
func NewConfig(port string, uploadTimeout time.Duration) Config {
	cfg := Config{
		Addr:              ":" + port,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		ReadTimeout:       constants.ServerReadTimeout,
		WriteTimeout:      constants.ServerWriteTimeout,
		IdleTimeout:       constants.ServerIdleTimeout,
	}
	if margin := uploadTimeout + constants.ServerReadHeaderTimeout; margin > cfg.ReadTimeout {
		cfg.ReadTimeout = margin
		cfg.WriteTimeout = margin
	}
	return cfg
}

func New(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}
}
