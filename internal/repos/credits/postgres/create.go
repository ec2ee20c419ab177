package credits

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jasdeace/webapp/internal/repos/credits"
)

func (r *balancesRepo) Create(ctx context.Context, userID uuid.UUID, initial int64) error {
	if initial < 0 {
		return credits.ErrNegativeBalance
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credits (user_id, credit_balance)
		VALUES ($1, $2)
	`, userID, initial)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation: another writer initialized first
				return credits.ErrBalanceConflict
			}
		}

		return fmt.Errorf("create balance: %w", err)
	}

	return nil
}
