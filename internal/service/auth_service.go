package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-task-relay/internal/model"
	"go-task-relay/internal/security/password"
	"go-task-relay/pkg/apierror"
)

var (
	ErrRegisterMissingFields = apierror.New("MISSING_FIELDS", "Username and password are required", "", http.StatusBadRequest)
	ErrUsernameTaken         = apierror.New("DUPLICATE_USERNAME", "Username already exists", "", http.StatusBadRequest)
	ErrBadCredentials        = apierror.New("INVALID_CREDENTIALS", "Unable to log in with provided credentials.", "", http.StatusBadRequest)
	ErrInvalidToken          = apierror.New("INVALID_TOKEN", "Invalid token.", "", http.StatusUnauthorized)
)

type UserRepository interface {
	Create(ctx context.Context, username string, passwordHash string) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
}

type TokenRepository interface {
	GetOrCreate(ctx context.Context, userID int64, jti string) (string, error)
	Owner(ctx context.Context, jti string) (int64, error)
}

// AuthService is the identity authority: it owns accounts and issues the
// session tokens the task service accepts.
type AuthService struct {
	users  UserRepository
	tokens TokenRepository
	hasher password.Hasher
	secret []byte
}

func NewAuthService(users UserRepository, tokens TokenRepository, hasher password.Hasher, secret string) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		secret: []byte(secret),
	}
}

func (s *AuthService) Register(ctx context.Context, username string, pwd string) (model.User, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(pwd) == "" {
		return model.User{}, ErrRegisterMissingFields
	}

	hash, err := s.hasher.Hash(pwd)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, hash)
	if errors.Is(err, model.ErrUserAlreadyExists) {
		return model.User{}, ErrUsernameTaken
	}
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Login verifies credentials and returns the user's token. A user has one
// token; later logins return the same value.
func (s *AuthService) Login(ctx context.Context, username string, pwd string) (model.SessionToken, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.SessionToken{}, ErrBadCredentials
	}
	if err != nil {
		return model.SessionToken{}, err
	}

	ok, err := s.hasher.Verify(user.PasswordHash, pwd)
	if err != nil {
		return model.SessionToken{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return model.SessionToken{}, ErrBadCredentials
	}

	jti, err := s.tokens.GetOrCreate(ctx, user.ID, uuid.NewString())
	if err != nil {
		return model.SessionToken{}, err
	}

	token, err := s.signToken(user, jti)
	if err != nil {
		return model.SessionToken{}, err
	}

	return model.SessionToken{Token: token, UserID: user.ID, Username: user.Username}, nil
}

// Authenticate resolves a presented token to its owner. The signature alone
// is not enough: the token id must still be registered to the subject.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	subject, _ := claimsMap["sub"].(string)
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims := &model.AuthClaims{UserID: userID}
	claims.Username, _ = claimsMap["username"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)
	if claims.TokenID == "" {
		return nil, ErrInvalidToken
	}

	owner, err := s.tokens.Owner(ctx, claims.TokenID)
	if errors.Is(err, model.ErrTokenNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if owner != userID {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *AuthService) signToken(user model.User, jti string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"jti":      jti,
	})
	return token.SignedString(s.secret)
}
