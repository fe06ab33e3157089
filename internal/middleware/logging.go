package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// errorBody picks the human message out of either service's error shape.
type errorBody struct {
	Error          string   `json:"error"`
	Detail         string   `json:"detail"`
	NonFieldErrors []string `json:"non_field_errors"`
}

func (b errorBody) message() string {
	switch {
	case b.Error != "":
		return b.Error
	case b.Detail != "":
		return b.Detail
	case len(b.NonFieldErrors) > 0:
		return b.NonFieldErrors[0]
	default:
		return ""
	}
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, requestID)

		started := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		attrs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(started).Milliseconds(),
			"client_ip", r.RemoteAddr,
		}

		if wrapped.status >= 400 && r.URL.RawQuery != "" {
			attrs = append(attrs, "query", r.URL.RawQuery)
		}

		if wrapped.status >= 400 && wrapped.body.Len() > 0 {
			var parsed errorBody
			if err := json.Unmarshal(wrapped.body.Bytes(), &parsed); err == nil {
				if msg := parsed.message(); msg != "" {
					attrs = append(attrs, "error_message", msg)
				}
			}
		}

		switch {
		case wrapped.status >= 500:
			slog.ErrorContext(r.Context(), "request", attrs...)
		case wrapped.status >= 400:
			slog.WarnContext(r.Context(), "request", attrs...)
		default:
			slog.InfoContext(r.Context(), "request", attrs...)
		}
	})
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if rw.wroteHeader {
		return
	}
	rw.status = statusCode
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	// Capture the body only for error responses so we can log error details.
	if rw.status >= 400 && rw.body.Len() < maxDumpBytes {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
