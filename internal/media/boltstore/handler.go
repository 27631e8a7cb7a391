package boltstore

import (
	"errors"
	"net/http"
	"strconv"

	commonhttp "github.com/AlibekovAA/snapfeed/internal/common/http"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
)

// Register serves stored objects at GET /media/{key...}.
func (s *Store) Register(mux *http.ServeMux, log *logger.Logger) {
	mux.HandleFunc("/media/{key...}", commonhttp.RequireMethod(http.MethodGet)(s.serve(log)))
}

func (s *Store) serve(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("key")
		blob, err := s.Get(r.Context(), key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				commonhttp.WriteErrorCode(w, http.StatusNotFound, commonhttp.CodeNotFound, "not found", commonhttp.TraceIDFromContext(r.Context()))
				return
			}
			log.WithFields(r.Context(), logger.Fields{
				"key":    key,
				"action": "media_read_failed",
			}).Errorf("failed to read media: %v", err)
			commonhttp.WriteErrorCode(w, http.StatusInternalServerError, commonhttp.CodeInternal, "internal server error", commonhttp.TraceIDFromContext(r.Context()))
			return
		}

		contentType := blob.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(blob.Data)
	}
}
