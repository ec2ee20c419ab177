package credits

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jasdeace/webapp/internal/repos/credits"
)

// CompareAndSet updates the balance only if the stored value still equals
// expected. Zero rows affected means the row is gone or another writer got
// there first; either way the caller's read is stale.
func (r *balancesRepo) CompareAndSet(ctx context.Context, userID uuid.UUID, expected, next int64) error {
	if next < 0 {
		return credits.ErrNegativeBalance
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE credits
		SET credit_balance = $3,
		    updated_at = now()
		WHERE user_id = $1
		  AND credit_balance = $2
	`, userID, expected, next)
	if err != nil {
		return fmt.Errorf("compare-and-set balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return credits.ErrBalanceConflict
	}

	return nil
}
