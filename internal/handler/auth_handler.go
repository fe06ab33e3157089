package handler

import (
	"errors"
	"net/http"
	"strings"

	"go-task-relay/internal/model"
	"go-task-relay/internal/service"
)

const (
	msgFieldRequired = "This field is required."
	msgFieldBlank    = "This field may not be blank."
)

// loginPayload keeps absent and empty fields apart for field-level errors.
type loginPayload struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.Credentials
	if err := decodeBody(w, r, &payload); err != nil && !errors.Is(err, errEmptyBody) {
		writeAuthorityError(w, r, err)
		return
	}

	if _, err := h.service.Register(r.Context(), payload.Username, payload.Password); err != nil {
		writeAuthorityError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.MessageResponse{Message: "User created successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := decodeBody(w, r, &payload); err != nil && !errors.Is(err, errEmptyBody) {
		writeAuthorityError(w, r, err)
		return
	}

	fields := model.FieldErrors{}
	requireField(fields, "username", payload.Username)
	requireField(fields, "password", payload.Password)
	if !fields.Empty() {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	token, err := h.service.Login(r.Context(), *payload.Username, *payload.Password)
	if err != nil {
		writeAuthorityError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

func requireField(fields model.FieldErrors, name string, value *string) {
	switch {
	case value == nil:
		fields.Add(name, msgFieldRequired)
	case strings.TrimSpace(*value) == "":
		fields.Add(name, msgFieldBlank)
	}
}
