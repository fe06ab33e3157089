package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go-task-relay/internal/model"
	"go-task-relay/internal/service"
	"go-task-relay/pkg/apierror"
)

const maxBodyBytes = 1 << 20

var (
	errEmptyBody     = errors.New("empty request body")
	errMalformedBody = errors.New("malformed request body")

	errBodyMissing = apierror.New("BAD_REQUEST", "Request body is missing", "", http.StatusBadRequest)
	errInvalidJSON = apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest)
)

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if value != nil {
		_ = json.NewEncoder(w).Encode(value)
	}
}

// decodeBody reads a JSON request body into dst. An empty body is reported
// separately from a malformed one.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return errEmptyBody
	default:
		return fmt.Errorf("%w: %w", errMalformedBody, err)
	}
}

// relayBodyError maps a decodeBody failure onto the relay's error codes.
func relayBodyError(err error) error {
	if errors.Is(err, errEmptyBody) {
		return errBodyMissing
	}
	return errInvalidJSON.Wrap(err)
}

// writeRelayError renders err as {"error": message}. Causes never reach the
// client.
func writeRelayError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		message = apiErr.Message
	} else {
		slog.ErrorContext(r.Context(), "unhandled relay error", "error", err)
	}

	writeJSON(w, status, model.ErrorResponse{Error: message})
}

// writeAuthorityError renders err in the shape the authority's clients
// expect for that kind of failure.
func writeAuthorityError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		writeJSON(w, http.StatusBadRequest, validation.Fields)
		return
	}

	if errors.Is(err, errMalformedBody) {
		writeJSON(w, http.StatusBadRequest, model.DetailResponse{Detail: "JSON parse error - " + err.Error()})
		return
	}

	if errors.Is(err, model.ErrTaskNotFound) {
		writeJSON(w, http.StatusNotFound, model.DetailResponse{Detail: "Not found."})
		return
	}

	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		slog.ErrorContext(r.Context(), "unhandled authority error", "error", err)
		writeJSON(w, http.StatusInternalServerError, model.DetailResponse{Detail: "Internal server error"})
		return
	}

	switch {
	case errors.Is(apiErr, service.ErrBadCredentials):
		writeJSON(w, apiErr.HTTPStatus, model.FieldErrors{"non_field_errors": {apiErr.Message}})
	case errors.Is(apiErr, service.ErrRegisterMissingFields), errors.Is(apiErr, service.ErrUsernameTaken):
		writeJSON(w, apiErr.HTTPStatus, model.ErrorResponse{Error: apiErr.Message})
	default:
		writeJSON(w, apiErr.HTTPStatus, model.DetailResponse{Detail: apiErr.Message})
	}
}
