package credits

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNoBalance means no credit row exists for the user.
	ErrNoBalance = errors.New("no credit record")

	// ErrBalanceConflict means a conditional write did not apply because the
	// stored value no longer matches what the caller last read (or, on Create,
	// because another writer initialized the row first).
	ErrBalanceConflict = errors.New("balance conflict")

	// ErrNegativeBalance means the requested write would store a negative value.
	ErrNegativeBalance = errors.New("negative balance")
)

// Balances is the record-store surface for the per-user credit balance.
// CompareAndSet is the only mutation on existing rows: the update applies
// only when the stored value still equals expected, which is what lets the
// coordinator detect concurrent modification instead of over-spending.
type Balances interface {
	Get(ctx context.Context, userID uuid.UUID) (int64, error)
	Create(ctx context.Context, userID uuid.UUID, initial int64) error
	CompareAndSet(ctx context.Context, userID uuid.UUID, expected, next int64) error
}
