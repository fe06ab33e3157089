// Package relay implements the client-facing façade in front of the
// identity authority: registration is recorded locally and then forwarded,
// login is a pure pass-through.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"go-task-relay/internal/credstore"
	"go-task-relay/internal/model"
	"go-task-relay/internal/security/password"
	"go-task-relay/internal/upstream"
	"go-task-relay/pkg/apierror"
)

const outcomeOK = "OK"

// Authority is the identity authority as seen by the relay.
type Authority interface {
	Register(ctx context.Context, username string, password string) error
	Login(ctx context.Context, username string, password string) (model.SessionToken, error)
}

// Recorder counts request outcomes by result code.
type Recorder interface {
	RegistrationOutcome(outcome string)
	LoginOutcome(outcome string)
}

type Service struct {
	store     credstore.Store
	authority Authority
	hasher    password.Hasher
	policy    Policy
	recorder  Recorder
}

func NewService(store credstore.Store, authority Authority, hasher password.Hasher, policy Policy, recorder Recorder) *Service {
	if policy == "" {
		policy = PolicyEager
	}
	return &Service{
		store:     store,
		authority: authority,
		hasher:    hasher,
		policy:    policy,
		recorder:  recorder,
	}
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Register validates, records the account locally as pending, forwards it
// to the authority and marks it synced on confirmation.
func (s *Service) Register(ctx context.Context, username string, pwd string) (err error) {
	defer func() { s.recordRegistration(err) }()

	if missingFields(username, pwd) {
		return ErrMissingFields
	}

	hash, err := s.hasher.Hash(pwd)
	if err != nil {
		return ErrInternal.Wrap(err)
	}

	_, err = s.store.CreateAccount(ctx, username, hash)
	switch {
	case errors.Is(err, model.ErrDuplicateUsername):
		resume, resumeErr := s.shouldResume(ctx, username, pwd)
		if resumeErr != nil {
			return ErrInternal.Wrap(resumeErr)
		}
		if !resume {
			return ErrDuplicateUsername
		}
		slog.InfoContext(ctx, "resuming pending registration", "username", username)
	case err != nil:
		return ErrInternal.Wrap(err)
	}

	return s.forward(ctx, username, pwd)
}

func (s *Service) forward(ctx context.Context, username string, pwd string) error {
	if err := s.authority.Register(ctx, username, pwd); err != nil {
		attrs := []any{"username", username, "policy", string(s.policy), "error", err}
		var rejected *upstream.RejectedError
		if errors.As(err, &rejected) {
			attrs = append(attrs, "upstream_status", rejected.StatusCode, "upstream_body", string(rejected.Body))
		}
		slog.ErrorContext(ctx, "identity authority sync failed", attrs...)

		s.compensate(ctx, username)
		return ErrUpstreamSyncFailed.Wrap(err)
	}

	if err := s.store.MarkSynced(ctx, username); err != nil {
		// The authority owns the account now; a stale pending flag only
		// affects the resume policy.
		slog.WarnContext(ctx, "failed to mark local account synced", "username", username, "error", err)
	}
	return nil
}

func (s *Service) compensate(ctx context.Context, username string) {
	switch s.policy {
	case PolicyRollback:
		if err := s.store.DeleteAccount(ctx, username); err != nil {
			slog.ErrorContext(ctx, "rollback of pending account failed; local and authority stores diverge",
				"username", username, "error", err)
			return
		}
		slog.InfoContext(ctx, "pending account rolled back", "username", username)
	case PolicyResume:
		slog.WarnContext(ctx, "local account left pending; it will be re-forwarded on the next registration",
			"username", username)
	default:
		slog.WarnContext(ctx, "local account left pending without an authority counterpart; retries will be rejected as duplicates",
			"username", username)
	}
}

func (s *Service) shouldResume(ctx context.Context, username string, pwd string) (bool, error) {
	if s.policy != PolicyResume {
		return false, nil
	}

	account, err := s.store.FindAccount(ctx, username)
	if errors.Is(err, model.ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if account.Status != model.AccountPending {
		return false, nil
	}

	ok, err := s.hasher.Verify(account.PasswordHash, pwd)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Login forwards the credentials unchanged. The relay keeps no login state
// and never consults its local store here.
func (s *Service) Login(ctx context.Context, username string, pwd string) (token model.SessionToken, err error) {
	defer func() { s.recordLogin(err) }()

	if missingFields(username, pwd) {
		return model.SessionToken{}, ErrMissingFields
	}

	token, err = s.authority.Login(ctx, username, pwd)
	if err == nil {
		return token, nil
	}

	var rejected *upstream.RejectedError
	if errors.As(err, &rejected) {
		slog.InfoContext(ctx, "login rejected by identity authority",
			"username", username, "upstream_status", rejected.StatusCode)
		if rejected.Message != "" {
			return model.SessionToken{}, ErrInvalidCredentials.WithMessage(rejected.Message).Wrap(err)
		}
		return model.SessionToken{}, ErrInvalidCredentials.Wrap(err)
	}

	slog.ErrorContext(ctx, "identity authority login failed", "username", username, "error", err)
	return model.SessionToken{}, ErrUpstreamUnreachable.Wrap(err)
}

func (s *Service) recordRegistration(err error) {
	if s.recorder != nil {
		s.recorder.RegistrationOutcome(outcomeOf(err))
	}
}

func (s *Service) recordLogin(err error) {
	if s.recorder != nil {
		s.recorder.LoginOutcome(outcomeOf(err))
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ErrInternal.Code
}

func missingFields(username string, pwd string) bool {
	return strings.TrimSpace(username) == "" || strings.TrimSpace(pwd) == ""
}
