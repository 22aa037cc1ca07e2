package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/portfoliology/internal/common"
)

const correlationHeader = "X-Correlation-ID"

// statusRecorder remembers the status and size of a response for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.size += n
	return n, err
}

// applyMiddleware wraps h so that panics become 500s, every response carries
// a correlation ID, and every request is logged with it.
func applyMiddleware(h http.Handler, logger *common.Logger) http.Handler {
	return recoverPanics(logger, withCorrelationID(logRequests(logger, h)))
}

func recoverPanics(logger *common.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error().
					Str("panic", fmt.Sprint(v)).
					Str("path", r.URL.Path).
					Msg("Handler panicked")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withCorrelationID echoes the caller's X-Correlation-ID or mints a short one.
func withCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(correlationHeader)
		if id == "" {
			id = uuid.NewString()[:8]
		}
		w.Header().Set(correlationHeader, id)
		next.ServeHTTP(w, r)
	})
}

// logRequests logs each request; failed refreshes surface at error level.
func logRequests(logger *common.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		event := logger.Debug()
		switch {
		case rec.status >= 500:
			event = logger.Error()
		case rec.status >= 400:
			event = logger.Info()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Int("bytes", rec.size).
			Dur("duration", time.Since(start)).
			Str("correlation_id", w.Header().Get(correlationHeader)).
			Msg("HTTP request")
	})
}
