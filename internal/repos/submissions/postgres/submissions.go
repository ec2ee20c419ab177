package submissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jasdeace/webapp/internal/repos/submissions"
)

var _ submissions.Submissions = (*submissionsRepo)(nil)

type submissionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *submissionsRepo {
	return &submissionsRepo{db: db}
}

func (r *submissionsRepo) Insert(ctx context.Context, rec submissions.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO submissions (id, user_id, form_data, credit_balance, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.UserID, rec.FormData, rec.CreditBalance, rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return submissions.ErrDuplicateSubmission
			}
		}

		return fmt.Errorf("insert submission: %w", err)
	}

	return nil
}

func (r *submissionsRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]submissions.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, form_data, credit_balance, created_at
		FROM submissions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var recs []submissions.Record

	for rows.Next() {
		var rec submissions.Record

		err = rows.Scan(&rec.ID, &rec.UserID, &rec.FormData, &rec.CreditBalance, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}

		recs = append(recs, rec)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}

	return recs, nil
}
