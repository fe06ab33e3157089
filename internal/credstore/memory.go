package credstore

import (
	"context"
	"sync"
	"time"

	"go-task-relay/internal/model"
)

type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]model.Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: map[string]model.Account{}}
}

func (s *MemoryStore) CreateAccount(_ context.Context, username string, passwordHash string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[username]; exists {
		return model.Account{}, model.ErrDuplicateUsername
	}

	account := model.Account{
		Username:     username,
		PasswordHash: passwordHash,
		Status:       model.AccountPending,
		CreatedAt:    time.Now().UTC(),
	}
	s.accounts[username] = account
	return account, nil
}

func (s *MemoryStore) FindAccount(_ context.Context, username string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[username]
	if !exists {
		return model.Account{}, model.ErrAccountNotFound
	}
	return account, nil
}

func (s *MemoryStore) MarkSynced(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[username]
	if !exists {
		return model.ErrAccountNotFound
	}

	now := time.Now().UTC()
	account.Status = model.AccountSynced
	account.SyncedAt = &now
	s.accounts[username] = account
	return nil
}

func (s *MemoryStore) DeleteAccount(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, exists := s.accounts[username]
	if !exists || account.Status != model.AccountPending {
		return model.ErrAccountNotFound
	}
	delete(s.accounts, username)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
