// Package memory holds an in-memory Submissions store for tests and local runs.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jasdeace/webapp/internal/repos/submissions"
)

var _ submissions.Submissions = (*Store)(nil)

// Store keeps submission records in insertion order. InsertErr, when set,
// makes every Insert fail with that error; tests use it to drive the
// coordinator down its compensation path.
type Store struct {
	mu   sync.Mutex
	recs []submissions.Record

	InsertErr error
}

func New() *Store {
	return &Store{}
}

func (s *Store) Insert(_ context.Context, rec submissions.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.InsertErr != nil {
		return s.InsertErr
	}

	for _, existing := range s.recs {
		if existing.ID == rec.ID {
			return submissions.ErrDuplicateSubmission
		}
	}

	s.recs = append(s.recs, rec)

	return nil
}

func (s *Store) ListByUser(_ context.Context, userID uuid.UUID) ([]submissions.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Newest first, matching the postgres implementation.
	var out []submissions.Record

	for i := len(s.recs) - 1; i >= 0; i-- {
		if s.recs[i].UserID == userID {
			out = append(out, s.recs[i])
		}
	}

	return out, nil
}

// Count reports how many records are stored. Test helper.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.recs)
}
