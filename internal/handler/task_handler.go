package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-task-relay/internal/middleware"
	"go-task-relay/internal/model"
	"go-task-relay/internal/service"
	"go-task-relay/pkg/apierror"
)

var errNotAuthenticated = apierror.New("UNAUTHORIZED", "Authentication credentials were not provided.", "", http.StatusUnauthorized)

type TaskHandler struct {
	service *service.TaskService
}

func NewTaskHandler(service *service.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeAuthorityError(w, r, errNotAuthenticated)
		return
	}

	tasks, err := h.service.List(r.Context(), claims.UserID)
	if err != nil {
		writeAuthorityError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeAuthorityError(w, r, errNotAuthenticated)
		return
	}

	var payload model.TaskRequest
	if err := decodeBody(w, r, &payload); err != nil && !errors.Is(err, errEmptyBody) {
		writeAuthorityError(w, r, err)
		return
	}

	task, err := h.service.Create(r.Context(), claims.UserID, payload)
	if err != nil {
		writeAuthorityError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := h.target(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), claims.UserID, id)
	if err != nil {
		writeAuthorityError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Update handles PUT (full replacement) and PATCH (partial update).
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var payload model.TaskRequest
	if err := decodeBody(w, r, &payload); err != nil && !errors.Is(err, errEmptyBody) {
		writeAuthorityError(w, r, err)
		return
	}

	task, err := h.service.Update(r.Context(), claims.UserID, id, payload, r.Method == http.MethodPatch)
	if err != nil {
		writeAuthorityError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), claims.UserID, id); err != nil {
		writeAuthorityError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Export(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeAuthorityError(w, r, errNotAuthenticated)
		return
	}

	// Buffer first so a failed export still gets a proper error response.
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), claims.UserID, &buf); err != nil {
		writeAuthorityError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", service.ExportContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", service.ExportFilename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *TaskHandler) target(w http.ResponseWriter, r *http.Request) (*model.AuthClaims, int64, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeAuthorityError(w, r, errNotAuthenticated)
		return nil, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeAuthorityError(w, r, model.ErrTaskNotFound)
		return nil, 0, false
	}

	return claims, id, true
}
