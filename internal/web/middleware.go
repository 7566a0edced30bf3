package web

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/felixge/httpsnoop"

	"github.com/codefionn/codecompanion/internal/logger"
)

// withRequestLogging logs method, path, status and duration of every request.
func withRequestLogging(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		log.Info("%s %s %d %dB %s", r.Method, r.URL.Path, m.Code, m.Written, m.Duration.Round(time.Microsecond))
	})
}

// withRecovery turns handler panics into 500 responses.
func withRecovery(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
