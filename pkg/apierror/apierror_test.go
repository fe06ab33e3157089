package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPIErrorMatchesByCode(t *testing.T) {
	t.Parallel()

	sentinel := New("INVALID_CREDENTIALS", "Login failed", "", http.StatusUnauthorized)
	custom := sentinel.WithMessage("Unable to log in with provided credentials.")

	require.True(t, errors.Is(custom, sentinel))
	require.Equal(t, "Login failed", sentinel.Message)
	require.Equal(t, http.StatusUnauthorized, custom.HTTPStatus)

	other := New("MISSING_FIELDS", "Username and password are required", "", http.StatusBadRequest)
	require.False(t, errors.Is(custom, other))
}

func TestAPIErrorWrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := New("UPSTREAM_UNREACHABLE", "Internal server error", "", http.StatusInternalServerError).Wrap(cause)

	wrapped := fmt.Errorf("login: %w", err)
	require.ErrorIs(t, wrapped, cause)

	var apiErr *APIError
	require.ErrorAs(t, wrapped, &apiErr)
	require.Equal(t, "Internal server error", apiErr.Message)
	require.Equal(t, "UPSTREAM_UNREACHABLE: Internal server error", apiErr.Error())
}
