package relay

import (
	"net/http"

	"go-task-relay/pkg/apierror"
)

// Client-facing failures of the relay. Messages are safe to show; causes
// attached with Wrap stay server-side.
var (
	ErrMissingFields       = apierror.New("MISSING_FIELDS", "Username and password are required", "", http.StatusBadRequest)
	ErrDuplicateUsername   = apierror.New("DUPLICATE_USERNAME", "Username already exists", "", http.StatusBadRequest)
	ErrUpstreamSyncFailed  = apierror.New("UPSTREAM_SYNC_FAILED", "Failed to sync user with identity authority", "", http.StatusInternalServerError)
	ErrInvalidCredentials  = apierror.New("INVALID_CREDENTIALS", "Login failed", "", http.StatusUnauthorized)
	ErrUpstreamUnreachable = apierror.New("UPSTREAM_UNREACHABLE", "Internal server error", "", http.StatusInternalServerError)
	ErrInternal            = apierror.New("INTERNAL_ERROR", "Internal server error", "", http.StatusInternalServerError)
)
