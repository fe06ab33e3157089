package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	maxDumpBytes = 64 << 10
	redacted     = "[REDACTED]"
)

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"cookie":              {},
	"proxy-authorization": {},
	"set-cookie":          {},
}

var sensitiveFields = map[string]struct{}{
	"password": {},
	"token":    {},
}

// RequestDump logs each incoming request's method, path, headers and body
// at info level. Credential headers and password or token JSON fields are
// redacted before logging. The body stays readable for the next handler.
func RequestDump(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !slog.Default().Enabled(r.Context(), slog.LevelInfo) {
			next.ServeHTTP(w, r)
			return
		}

		var body []byte
		if r.Body != nil && r.Body != http.NoBody {
			captured, err := io.ReadAll(io.LimitReader(r.Body, maxDumpBytes))
			if err == nil {
				body = captured
				r.Body = struct {
					io.Reader
					io.Closer
				}{io.MultiReader(bytes.NewReader(captured), r.Body), r.Body}
			}
		}

		slog.InfoContext(r.Context(), "incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"headers", RedactHeaders(r.Header),
			"body", RedactBody(body),
		)

		next.ServeHTTP(w, r)
	})
}

func RedactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if _, secret := sensitiveHeaders[strings.ToLower(name)]; secret {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// RedactBody masks secret fields of a JSON object body. Bodies that are not
// JSON objects are replaced wholesale since they cannot be inspected.
func RedactBody(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return redacted
	}

	quoted, _ := json.Marshal(redacted)
	for key := range fields {
		if _, secret := sensitiveFields[strings.ToLower(key)]; secret {
			fields[key] = quoted
		}
	}

	masked, err := json.Marshal(fields)
	if err != nil {
		return redacted
	}
	return string(masked)
}
