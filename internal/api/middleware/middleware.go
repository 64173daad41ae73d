package middleware

import (
	"net/http"
	"runtime/debug"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/cpd/internal/api/presenter"
	"github.com/darmiel/cpd/internal/core"
)

// RequestLogger attaches a request scoped logger to the context and logs every handled request.
// Fields added to the context logger while handling (e.g. the resolved site) end up in the
// final log line. Successful requests to quietPaths are not logged.
func RequestLogger(quietPaths ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := log.With().
				Str("correlation_id", core.CorrelationID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Logger().
				WithContext(r.Context())

			rw := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r.WithContext(ctx))

			if rw.status < http.StatusBadRequest && slices.Contains(quietPaths, r.URL.Path) {
				return
			}

			log.Ctx(ctx).Info().
				Int("status", rw.status).
				Int("bytes", rw.written).
				Dur("duration", time.Since(start)).
				Msg("request.handled")
		})
	}
}

// Recover turns panics into a 500 response. It must run inside RequestLogger.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Ctx(r.Context()).Error().
					Interface("panic", err).
					Bytes("stack", debug.Stack()).
					Msg("panic.recovered")

				presenter.Error(w, r, presenter.CodeInternal, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}
