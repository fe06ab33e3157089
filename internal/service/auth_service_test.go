package service

import (
	"context"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-task-relay/internal/repository"
	"go-task-relay/internal/security/password"
)

const testSecret = "test-secret-0123456789"

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	mem := repository.NewMemory()
	hasher := password.NewArgon2id(password.Argon2idParams{MemoryKiB: 1024, Iterations: 1, Parallelism: 1})
	return NewAuthService(mem.Users(), mem.Tokens(), hasher, testSecret)
}

func TestAuthService_Register(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$argon2id$"))
	assert.NotContains(t, user.PasswordHash, "secret123")

	_, err = svc.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(ctx, "", "pw")
	assert.ErrorIs(t, err, ErrRegisterMissingFields)
	_, err = svc.Register(ctx, "bob", " ")
	assert.ErrorIs(t, err, ErrRegisterMissingFields)
}

func TestAuthService_LoginReturnsStableToken(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	first, err := svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, first.UserID)
	assert.Equal(t, "alice", first.Username)
	assert.NotEmpty(t, first.Token)

	second, err := svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)

	claims, err := svc.Authenticate(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestAuthService_LoginRejects(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Login(ctx, "Alice", "secret123")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestAuthService_Authenticate(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)
	session, err := svc.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	forge := func(secret string, claims jwt.MapClaims, method jwt.SigningMethod) string {
		signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return signed
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(session.Token, jwt.MapClaims{})
	require.NoError(t, err)
	valid := parsed.Claims.(jwt.MapClaims)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "corrupted", token: session.Token + "x"},
		{name: "wrong secret", token: forge("another-secret-0123", valid, jwt.SigningMethodHS256)},
		{name: "wrong algorithm", token: forge(testSecret, valid, jwt.SigningMethodHS512)},
		{name: "unregistered jti", token: forge(testSecret, jwt.MapClaims{"sub": valid["sub"], "jti": "forged"}, jwt.SigningMethodHS256)},
		{name: "jti of another subject", token: forge(testSecret, jwt.MapClaims{"sub": "999", "jti": valid["jti"]}, jwt.SigningMethodHS256)},
		{name: "missing jti", token: forge(testSecret, jwt.MapClaims{"sub": valid["sub"]}, jwt.SigningMethodHS256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
