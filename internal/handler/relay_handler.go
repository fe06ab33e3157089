package handler

import (
	"context"
	"net/http"

	"go-task-relay/internal/model"
)

const registeredMessage = "User registered successfully and synced with identity authority"

type relayService interface {
	Register(ctx context.Context, username string, password string) error
	Login(ctx context.Context, username string, password string) (model.SessionToken, error)
}

type RelayHandler struct {
	service relayService
}

func NewRelayHandler(service relayService) *RelayHandler {
	return &RelayHandler{service: service}
}

func (h *RelayHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.Credentials
	if err := decodeBody(w, r, &payload); err != nil {
		writeRelayError(w, r, relayBodyError(err))
		return
	}

	if err := h.service.Register(r.Context(), payload.Username, payload.Password); err != nil {
		writeRelayError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.MessageResponse{Message: registeredMessage})
}

func (h *RelayHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.Credentials
	if err := decodeBody(w, r, &payload); err != nil {
		writeRelayError(w, r, relayBodyError(err))
		return
	}

	token, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeRelayError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}
