package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

func Recovery(writeError ErrorWriter) func(http.Handler) http.Handler {
	writeError = orDefault(writeError)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					if recovered == http.ErrAbortHandler {
						panic(recovered)
					}
					slog.ErrorContext(r.Context(), "panic recovered",
						"error", fmt.Sprintf("%v", recovered), "stack", string(debug.Stack()))
					writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
