// Package credits implements the credit transaction coordinator: the
// debit / submit / compensate-on-failure sequence around the credit ledger.
package credits

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	creditsrepo "github.com/jasdeace/webapp/internal/repos/credits"
	"github.com/jasdeace/webapp/internal/repos/submissions"
)

// Coordinator guarantees that a successful form submission corresponds to
// exactly one balance debit, and that a failed submission leaves the balance
// unchanged. The one documented exception is a failed compensating write,
// which is surfaced as ErrCompensationFailed and must be reconciled manually.
//
// All durable state lives in the record store; the coordinator holds nothing
// across calls and re-reads fresh balance state on every operation.
type Coordinator struct {
	balances creditsrepo.Balances
	subs     submissions.Submissions
	cost     int64
	rec      Recorder

	now   func() time.Time
	newID func() uuid.UUID
}

// New builds a coordinator. cost <= 0 falls back to DefaultSubmissionCost;
// a nil recorder disables metrics.
func New(balances creditsrepo.Balances, subs submissions.Submissions, cost int64, rec Recorder) *Coordinator {
	if cost <= 0 {
		cost = DefaultSubmissionCost
	}
	if rec == nil {
		rec = nopRecorder{}
	}

	return &Coordinator{
		balances: balances,
		subs:     subs,
		cost:     cost,
		rec:      rec,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// SubmissionCost reports the configured cost per submission.
func (c *Coordinator) SubmissionCost() int64 {
	return c.cost
}

// Charge debits one submission's cost from the user's balance, persists the
// submission record, and returns the post-debit balance.
//
// The balance write is conditional on the value read in the same call. Two
// concurrent charges against the same row therefore cannot both apply: the
// loser fails with ErrCreditUpdateFailed and no partial effect.
func (c *Coordinator) Charge(ctx context.Context, userID uuid.UUID, formData string) (Outcome, error) {
	// 1) Read current balance. Absence is a hard failure here: silently
	// creating a zero row at charge time would just mask sign-up bugs.
	balance, err := c.balances.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, creditsrepo.ErrNoBalance) {
			c.rec.RecordCharge("no_record")
			return Outcome{}, ErrNoCreditRecord
		}

		return Outcome{}, fmt.Errorf("read balance: %w", err)
	}

	if balance < c.cost {
		c.rec.RecordCharge("insufficient")
		return Outcome{}, ErrInsufficientCredit
	}

	// 2) Conditional debit keyed on the value we just read.
	tentative := balance - c.cost

	err = c.balances.CompareAndSet(ctx, userID, balance, tentative)
	if err != nil {
		if errors.Is(err, creditsrepo.ErrBalanceConflict) {
			c.rec.RecordCharge("conflict")
			c.rec.RecordDebitConflict()
			return Outcome{}, fmt.Errorf("debit did not apply: %w", ErrCreditUpdateFailed)
		}

		return Outcome{}, fmt.Errorf("debit balance: %w", err)
	}

	// The successful conditional write is the confirmation: the stored value
	// was still what we read, and it is now tentative. A re-read here would
	// only observe unrelated writers (a concurrent top-up) and must not fail
	// the charge.

	// 3) Persist the submission; on failure restore the pre-debit balance.
	rec := submissions.Record{
		ID:            c.newID(),
		UserID:        userID,
		FormData:      formData,
		CreditBalance: tentative,
		CreatedAt:     c.now(),
	}

	err = c.subs.Insert(ctx, rec)
	if err != nil {
		cerr := c.balances.CompareAndSet(ctx, userID, tentative, balance)
		if cerr != nil {
			c.rec.RecordCharge("compensation_failed")
			c.rec.RecordCompensationFailure()
			slog.Error("compensating write failed; ledger needs manual reconciliation",
				"user_id", userID,
				"debited_balance", tentative,
				"expected_balance", balance,
				"error", cerr,
			)

			return Outcome{}, fmt.Errorf("insert submission: %v: %w",
				err, errors.Join(ErrSubmissionFailed, ErrCompensationFailed))
		}

		c.rec.RecordCharge("submission_failed")

		return Outcome{}, fmt.Errorf("insert submission: %v: %w", err, ErrSubmissionFailed)
	}

	c.rec.RecordCharge("success")

	return Outcome{NewBalance: tentative, SubmissionID: rec.ID}, nil
}

// TopUp adds amount to the user's balance and returns the new value. This is
// the one path that lazily initializes a missing balance row: top-up only
// ever increases the balance, so it cannot be used to dodge a charge.
func (c *Coordinator) TopUp(ctx context.Context, userID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	balance, err := c.balances.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, creditsrepo.ErrNoBalance) {
			return 0, fmt.Errorf("read balance: %w", err)
		}

		err = c.balances.Create(ctx, userID, 0)
		if err != nil && !errors.Is(err, creditsrepo.ErrBalanceConflict) {
			return 0, fmt.Errorf("init balance: %w", err)
		}

		// A conflict means a concurrent initializer won; re-read either way.
		balance, err = c.balances.Get(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("read balance after init: %w", err)
		}
	}

	next := balance + amount

	err = c.balances.CompareAndSet(ctx, userID, balance, next)
	if err != nil {
		if errors.Is(err, creditsrepo.ErrBalanceConflict) {
			c.rec.RecordDebitConflict()
			return 0, fmt.Errorf("top-up did not apply: %w", ErrCreditUpdateFailed)
		}

		return 0, fmt.Errorf("top-up balance: %w", err)
	}

	c.rec.RecordTopUp()

	return next, nil
}

// GetBalance returns the current balance without mutating anything.
func (c *Coordinator) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	balance, err := c.balances.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, creditsrepo.ErrNoBalance) {
			return 0, ErrNoCreditRecord
		}

		return 0, fmt.Errorf("read balance: %w", err)
	}

	return balance, nil
}

// Submissions lists the user's persisted submission records, newest first.
func (c *Coordinator) Submissions(ctx context.Context, userID uuid.UUID) ([]submissions.Record, error) {
	recs, err := c.subs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	return recs, nil
}
