// Package session holds the client's view of who is logged in and the HTTP
// clients that act on behalf of that user.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go-task-relay/internal/model"
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// View is a screen or command group the front-end wants to show.
type View string

const (
	ViewLogin    View = "login"
	ViewRegister View = "register"
	ViewTasks    View = "tasks"
)

const (
	ReasonLogin    = "login"
	ReasonLogout   = "logout"
	ReasonRejected = "token rejected"
)

var ErrEmptyToken = errors.New("session token is empty")

type Change struct {
	From   State
	To     State
	Reason string
}

type Listener func(Change)

// Session is the single owner of the current token. All methods are safe for
// concurrent use.
type Session struct {
	store TokenStore

	mu        sync.RWMutex
	token     string
	username  string
	listeners []Listener
}

// Open restores the session from store. A persisted token is trusted without
// asking the server; the first rejected request will invalidate it.
func Open(ctx context.Context, store TokenStore) (*Session, error) {
	stored, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	s := &Session{store: store}
	if strings.TrimSpace(stored.Token) != "" {
		s.token = stored.Token
		s.username = stored.Username
	}
	return s, nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	if s.token == "" {
		return Unauthenticated
	}
	return Authenticated
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Authenticate installs a freshly issued token and persists it.
func (s *Session) Authenticate(ctx context.Context, token model.SessionToken) error {
	if strings.TrimSpace(token.Token) == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	if err := s.store.Save(ctx, Stored{Token: token.Token, Username: token.Username}); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist session: %w", err)
	}
	from := s.stateLocked()
	s.token = token.Token
	s.username = token.Username
	listeners := s.snapshotLocked()
	s.mu.Unlock()

	slog.Info("session authenticated", "username", token.Username)
	notify(listeners, Change{From: from, To: Authenticated, Reason: ReasonLogin})
	return nil
}

// Logout drops the token locally. The server is not contacted.
func (s *Session) Logout(ctx context.Context) error {
	return s.clear(ctx, "", ReasonLogout)
}

// Invalidate drops the token whatever it is.
func (s *Session) Invalidate(ctx context.Context, reason string) error {
	return s.clear(ctx, "", reason)
}

// invalidateToken drops the session only if it still holds token, so a late
// 401 for a replaced token cannot log out a newer login.
func (s *Session) invalidateToken(ctx context.Context, token string, reason string) error {
	return s.clear(ctx, token, reason)
}

func (s *Session) clear(ctx context.Context, expected string, reason string) error {
	s.mu.Lock()
	if expected != "" && s.token != expected {
		s.mu.Unlock()
		return nil
	}
	from := s.stateLocked()

	// In-memory state is cleared even if the store fails; the caller sees
	// the error and the next Open may resurrect the stale token.
	s.token = ""
	s.username = ""
	err := s.store.Clear(ctx)
	listeners := s.snapshotLocked()
	s.mu.Unlock()

	if from == Authenticated {
		slog.Info("session cleared", "reason", reason)
		notify(listeners, Change{From: from, To: Unauthenticated, Reason: reason})
	}
	if err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	return nil
}

// Route returns where the front-end should go when it asks for view.
func (s *Session) Route(view View) View {
	state := s.State()
	switch {
	case state == Authenticated && (view == ViewLogin || view == ViewRegister):
		return ViewTasks
	case state == Unauthenticated && view == ViewTasks:
		return ViewLogin
	default:
		return view
	}
}

// OnChange registers a listener called after every state transition, outside
// the session lock.
func (s *Session) OnChange(listener Listener) {
	if listener == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *Session) snapshotLocked() []Listener {
	return append([]Listener(nil), s.listeners...)
}

func notify(listeners []Listener, change Change) {
	for _, listener := range listeners {
		listener(change)
	}
}
