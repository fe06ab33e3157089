package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"go-task-relay/internal/model"
)

// Memory implements the user, token and task repositories in process. It
// backs the authority when AUTHORITY_STORE=memory and in tests.
type Memory struct {
	mu sync.RWMutex

	nextUserID int64
	nextTaskID int64

	usersByID       map[int64]model.User
	usersByUsername map[string]int64
	tokenByUser     map[int64]string
	tokenOwner      map[string]int64
	tasks           map[int64]model.Task
}

func NewMemory() *Memory {
	return &Memory{
		usersByID:       map[int64]model.User{},
		usersByUsername: map[string]int64{},
		tokenByUser:     map[int64]string{},
		tokenOwner:      map[string]int64{},
		tasks:           map[int64]model.Task{},
	}
}

// Users, Tokens and Tasks return views of m satisfying the per-entity
// repository method sets.
func (m *Memory) Users() *MemoryUsers   { return &MemoryUsers{m} }
func (m *Memory) Tokens() *MemoryTokens { return &MemoryTokens{m} }
func (m *Memory) Tasks() *MemoryTasks   { return &MemoryTasks{m} }

type MemoryUsers struct{ m *Memory }

func (r *MemoryUsers) Create(_ context.Context, username string, passwordHash string) (model.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, exists := r.m.usersByUsername[username]; exists {
		return model.User{}, model.ErrUserAlreadyExists
	}

	r.m.nextUserID++
	u := model.User{
		ID:           r.m.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		DateJoined:   time.Now().UTC(),
	}
	r.m.usersByID[u.ID] = u
	r.m.usersByUsername[username] = u.ID
	return u, nil
}

func (r *MemoryUsers) FindByID(_ context.Context, id int64) (model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	u, exists := r.m.usersByID[id]
	if !exists {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUsers) FindByUsername(_ context.Context, username string) (model.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	id, exists := r.m.usersByUsername[username]
	if !exists {
		return model.User{}, model.ErrUserNotFound
	}
	return r.m.usersByID[id], nil
}

func (r *MemoryUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	_, exists := r.m.usersByUsername[username]
	return exists, nil
}

type MemoryTokens struct{ m *Memory }

func (r *MemoryTokens) GetOrCreate(_ context.Context, userID int64, jti string) (string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if current, exists := r.m.tokenByUser[userID]; exists {
		return current, nil
	}
	r.m.tokenByUser[userID] = jti
	r.m.tokenOwner[jti] = userID
	return jti, nil
}

func (r *MemoryTokens) Owner(_ context.Context, jti string) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	userID, exists := r.m.tokenOwner[jti]
	if !exists {
		return 0, model.ErrTokenNotFound
	}
	return userID, nil
}

func (r *MemoryTokens) RevokeForUser(_ context.Context, userID int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if jti, exists := r.m.tokenByUser[userID]; exists {
		delete(r.m.tokenOwner, jti)
		delete(r.m.tokenByUser, userID)
	}
	return nil
}

type MemoryTasks struct{ m *Memory }

func (r *MemoryTasks) Create(_ context.Context, t model.Task) (model.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	r.m.nextTaskID++
	t.ID = r.m.nextTaskID
	t.CreatedAt = time.Now().UTC()
	r.m.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryTasks) ListByUser(_ context.Context, userID int64) ([]model.Task, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	tasks := make([]model.Task, 0)
	for _, t := range r.m.tasks {
		if t.UserID == userID {
			tasks = append(tasks, t)
		}
	}
	slices.SortFunc(tasks, func(a, b model.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		default:
			return 0
		}
	})
	return tasks, nil
}

func (r *MemoryTasks) FindByID(_ context.Context, userID int64, id int64) (model.Task, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	t, exists := r.m.tasks[id]
	if !exists || t.UserID != userID {
		return model.Task{}, model.ErrTaskNotFound
	}
	return t, nil
}

func (r *MemoryTasks) Update(_ context.Context, t model.Task) (model.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	current, exists := r.m.tasks[t.ID]
	if !exists || current.UserID != t.UserID {
		return model.Task{}, model.ErrTaskNotFound
	}
	t.CreatedAt = current.CreatedAt
	r.m.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryTasks) Delete(_ context.Context, userID int64, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	t, exists := r.m.tasks[id]
	if !exists || t.UserID != userID {
		return model.ErrTaskNotFound
	}
	delete(r.m.tasks, id)
	return nil
}
