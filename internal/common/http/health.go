package http

import (
	"context"
	"net/http"

	"github.com/AlibekovAA/snapfeed/internal/common/logger"
)

type Pinger func(ctx context.Context) error

func HealthHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteErrorCode(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", "")
			return
		}
		if log.ShouldLog(logger.DEBUG) {
			log.Debug("health check request")
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// DatabaseHealthHandler reports whether ping succeeds. The failure cause is
// logged, never returned.
func DatabaseHealthHandler(log *logger.Logger, ping Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			WriteErrorCode(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed", "")
			return
		}
		if err := ping(r.Context()); err != nil {
			log.WithFields(r.Context(), logger.Fields{"action": "db_health"}).Errorf("database ping failed: %v", err)
			WriteErrorCode(w, http.StatusServiceUnavailable, CodeDatabaseDown, "database unavailable", TraceIDFromContext(r.Context()))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "connected"})
	}
}
