// Package upstream talks to the identity authority on behalf of the relay.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go-task-relay/internal/model"
)

const (
	registerPath = "/api/register/"
	loginPath    = "/api/login/"

	maxResponseBytes = 1 << 20

	OperationRegister = "register"
	OperationLogin    = "login"

	OutcomeSuccess     = "success"
	OutcomeRejected    = "rejected"
	OutcomeUnreachable = "unreachable"
)

// Observer receives one call per upstream request.
type Observer interface {
	ObserveUpstream(operation string, outcome string, elapsed time.Duration)
}

type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	observer   Observer
}

type Option func(*Client)

func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New builds a client for the authority at baseURL. Every call is bounded by
// timeout; expiry surfaces as ErrUnreachable.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register forwards a registration. The password travels in plaintext over
// the internal channel, as the authority hashes it itself.
func (c *Client) Register(ctx context.Context, username string, password string) error {
	_, _, err := c.post(ctx, OperationRegister, registerPath, model.Credentials{Username: username, Password: password})
	return err
}

func (c *Client) Login(ctx context.Context, username string, password string) (model.SessionToken, error) {
	status, body, err := c.post(ctx, OperationLogin, loginPath, model.Credentials{Username: username, Password: password})
	if err != nil {
		return model.SessionToken{}, err
	}

	var token model.SessionToken
	if err := json.Unmarshal(body, &token); err != nil {
		return model.SessionToken{}, fmt.Errorf("%w: decode login response (status %d): %w", ErrUnreachable, status, err)
	}
	if token.Token == "" {
		return model.SessionToken{}, fmt.Errorf("%w: login response without token (status %d)", ErrUnreachable, status)
	}
	return token, nil
}

func (c *Client) post(ctx context.Context, operation string, path string, payload any) (int, []byte, error) {
	started := time.Now()
	status, body, err := c.do(ctx, path, payload)
	c.observe(operation, err, time.Since(started))
	return status, body, err
}

func (c *Client) do(ctx context.Context, path string, payload any) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read response: %w", ErrUnreachable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp.StatusCode, body, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return resp.StatusCode, body, &RejectedError{
			StatusCode: resp.StatusCode,
			Message:    PrimaryMessage(body),
			Body:       body,
		}
	default:
		return resp.StatusCode, body, fmt.Errorf("%w: authority returned status %d", ErrUnreachable, resp.StatusCode)
	}
}

func (c *Client) observe(operation string, err error, elapsed time.Duration) {
	if c.observer == nil {
		return
	}

	outcome := OutcomeSuccess
	switch {
	case errors.Is(err, ErrRejected):
		outcome = OutcomeRejected
	case err != nil:
		outcome = OutcomeUnreachable
	}
	c.observer.ObserveUpstream(operation, outcome, elapsed)
}

// PrimaryMessage picks the most specific human message out of an authority
// error body: non_field_errors[0], then "error", then "detail", then the
// first field error in key order.
func PrimaryMessage(body []byte) string {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}

	if msg := firstString(parsed["non_field_errors"]); msg != "" {
		return msg
	}
	for _, key := range []string{"error", "detail"} {
		if msg := firstString(parsed[key]); msg != "" {
			return msg
		}
	}

	keys := make([]string, 0, len(parsed))
	for key := range parsed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if msg := firstString(parsed[key]); msg != "" {
			return key + ": " + msg
		}
	}
	return ""
}

func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}
