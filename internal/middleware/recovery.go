package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"mentora/internal/httputil"
)

// Recovery turns a handler panic into a logged 500 instead of killing the
// connection. Note the error response is best-effort: a panic mid-SSE-stream
// happens after headers are sent, so the write may be a no-op.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"stack", string(debug.Stack()),
					)

					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
