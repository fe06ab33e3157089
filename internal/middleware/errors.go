package middleware

import (
	"encoding/json"
	"net/http"
)

// ErrorWriter renders a failure produced by middleware in the owning
// service's error shape.
type ErrorWriter func(w http.ResponseWriter, status int, code string, message string)

// ErrorField renders {"error": message}, the relay's error body.
func ErrorField(w http.ResponseWriter, status int, _ string, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// DetailField renders {"detail": message}, the authority's error body.
func DetailField(w http.ResponseWriter, status int, _ string, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func orDefault(writer ErrorWriter) ErrorWriter {
	if writer == nil {
		return ErrorField
	}
	return writer
}
