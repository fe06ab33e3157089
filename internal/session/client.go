package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-task-relay/internal/model"
	"go-task-relay/internal/upstream"
)

const maxResponseBytes = 1 << 20

var (
	// ErrRejected covers 400 responses: missing fields, duplicate
	// usernames and task validation failures.
	ErrRejected           = errors.New("request rejected")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is a 401 from the task service. The session has
	// already been cleared when a caller sees it.
	ErrUnauthorized = errors.New("session expired")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
)

// ResponseError is a non-2xx answer. Message is the server's own text and is
// meant to be shown to the user unchanged.
type ResponseError struct {
	StatusCode int
	Message    string
	Fields     model.FieldErrors
	kind       error
}

func (e *ResponseError) Error() string {
	return e.Message
}

func (e *ResponseError) Unwrap() error {
	return e.kind
}

type api struct {
	baseURL string
	client  *http.Client
	// unauthorized is what a 401 means for this service.
	unauthorized error
}

func newAPI(baseURL string, client *http.Client, unauthorized error) api {
	return api{baseURL: strings.TrimRight(baseURL, "/"), client: client, unauthorized: unauthorized}
}

// call sends payload as JSON (when non-nil) and decodes a 2xx body into out
// (when non-nil).
func (a api) call(ctx context.Context, method string, path string, payload any, out any) error {
	resp, err := a.send(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// send returns the response only for 2xx statuses; the caller closes it.
func (a api) send(ctx context.Context, method string, path string, payload any) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	return nil, a.responseError(resp.StatusCode, raw)
}

func (a api) responseError(status int, raw []byte) *ResponseError {
	message := upstream.PrimaryMessage(raw)
	if message == "" {
		message = http.StatusText(status)
	}

	var kind error
	switch {
	case status == http.StatusUnauthorized:
		kind = a.unauthorized
	case status == http.StatusNotFound:
		kind = ErrNotFound
	case status >= 500:
		kind = ErrServer
	default:
		kind = ErrRejected
	}

	return &ResponseError{StatusCode: status, Message: message, Fields: fieldErrors(raw), kind: kind}
}

// fieldErrors collects the list-valued entries of a validation body; scalar
// entries such as "error" or "detail" are skipped.
func fieldErrors(raw []byte) model.FieldErrors {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil
	}

	fields := model.FieldErrors{}
	for key, value := range parsed {
		var messages []string
		if err := json.Unmarshal(value, &messages); err != nil {
			continue
		}
		for _, message := range messages {
			fields.Add(key, message)
		}
	}
	if fields.Empty() {
		return nil
	}
	return fields
}
