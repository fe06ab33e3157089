package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go-task-relay/internal/model"
)

// RelayClient calls the credential relay. Its requests carry no token.
type RelayClient struct {
	api api
}

func NewRelayClient(baseURL string, timeout time.Duration) *RelayClient {
	return &RelayClient{api: newAPI(baseURL, &http.Client{Timeout: timeout}, ErrInvalidCredentials)}
}

// Register returns the relay's confirmation message.
func (c *RelayClient) Register(ctx context.Context, username string, password string) (string, error) {
	var resp model.MessageResponse
	if err := c.api.call(ctx, http.MethodPost, "/api/register", model.Credentials{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *RelayClient) Login(ctx context.Context, username string, password string) (model.SessionToken, error) {
	var token model.SessionToken
	if err := c.api.call(ctx, http.MethodPost, "/api/login", model.Credentials{Username: username, Password: password}, &token); err != nil {
		return model.SessionToken{}, err
	}
	if token.Token == "" {
		return model.SessionToken{}, fmt.Errorf("%w: login response without token", ErrServer)
	}
	return token, nil
}
