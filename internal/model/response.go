package model

// ErrorResponse is the relay's error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// DetailResponse is the authority's body for authentication and lookup failures.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// FieldErrors maps a request field (or "non_field_errors") to its messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field string, message string) {
	f[field] = append(f[field], message)
}

func (f FieldErrors) Empty() bool {
	return len(f) == 0
}
