package http

import (
	"net/http"
	"runtime/debug"

	"github.com/AlibekovAA/snapfeed/internal/common/httpmetrics"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/observability/metrics"
)

// RecoveryMiddleware turns a handler panic into a 500. http.ErrAbortHandler
// is re-raised; panics on upgraded connections are only logged.
func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				metrics.PanicsRecovered.WithLabelValues(httpmetrics.NormalizePath(r.URL.Path)).Inc()
				log.WithFields(r.Context(), logger.Fields{
					"action": "panic_recovered",
					"method": r.Method,
					"path":   r.URL.Path,
				}).Errorf("panic recovered: %v\n%s", rec, debug.Stack())
				if isUpgrade(r) {
					return
				}
				WriteErrorCode(w, http.StatusInternalServerError, CodeInternal, "internal server error", TraceIDFromContext(r.Context()))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func isUpgrade(r *http.Request) bool {
	return r.Header.Get("Upgrade") != ""
}
