package credits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jasdeace/webapp/internal/repos/credits"
)

func (r *balancesRepo) Get(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64

	err := r.db.QueryRowContext(ctx, `
		SELECT credit_balance
		FROM credits
		WHERE user_id = $1
	`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, credits.ErrNoBalance
		}

		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}
