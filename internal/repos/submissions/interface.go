package submissions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrDuplicateSubmission = errors.New("duplicate submission")

// Record is one persisted form submission. Append-only: rows are written
// exactly once per successful charge and never updated.
type Record struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	FormData      string
	CreditBalance int64 // balance after the debit that paid for this submission
	CreatedAt     time.Time
}

type Submissions interface {
	Insert(ctx context.Context, rec Record) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Record, error)
}
