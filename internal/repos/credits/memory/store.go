// Package memory holds an in-memory Balances store for tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jasdeace/webapp/internal/repos/credits"
)

var _ credits.Balances = (*Store)(nil)

// Store keeps balances in a map guarded by a mutex. CompareAndSet has the
// same conflict semantics as the postgres implementation. FailCompareAndSet
// lets tests inject a store failure on the Nth CompareAndSet call.
type Store struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64

	casCalls          int
	failCompareAndSet func(call int) error
}

func New() *Store {
	return &Store{balances: make(map[uuid.UUID]int64)}
}

// FailCompareAndSet registers a hook invoked before every CompareAndSet with
// the 1-based call number; a non-nil return is surfaced as the call's error.
func (s *Store) FailCompareAndSet(hook func(call int) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCompareAndSet = hook
}

func (s *Store) Get(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[userID]
	if !ok {
		return 0, credits.ErrNoBalance
	}

	return balance, nil
}

func (s *Store) Create(_ context.Context, userID uuid.UUID, initial int64) error {
	if initial < 0 {
		return credits.ErrNegativeBalance
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.balances[userID]; ok {
		return credits.ErrBalanceConflict
	}

	s.balances[userID] = initial

	return nil
}

func (s *Store) CompareAndSet(_ context.Context, userID uuid.UUID, expected, next int64) error {
	if next < 0 {
		return credits.ErrNegativeBalance
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.casCalls++
	if s.failCompareAndSet != nil {
		err := s.failCompareAndSet(s.casCalls)
		if err != nil {
			return err
		}
	}

	balance, ok := s.balances[userID]
	if !ok || balance != expected {
		return credits.ErrBalanceConflict
	}

	s.balances[userID] = next

	return nil
}

// Seed sets a balance directly, bypassing conflict checks. Test helper.
func (s *Store) Seed(userID uuid.UUID, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = balance
}
