package credits

import (
	"errors"

	"github.com/google/uuid"
)

// DefaultSubmissionCost is how many credits one form submission consumes.
const DefaultSubmissionCost = 1

var (
	// ErrNoCreditRecord: submission attempted before the balance was ever
	// initialized. Charging does not lazily create a zero row; only sign-up
	// or a top-up does.
	ErrNoCreditRecord = errors.New("no credit record")

	// ErrInsufficientCredit: balance is below the submission cost. No
	// mutation was performed.
	ErrInsufficientCredit = errors.New("insufficient credit")

	// ErrInvalidAmount: top-up amount must be a positive integer.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrCreditUpdateFailed: the conditional balance write did not apply,
	// typically because a concurrent request changed the balance between
	// read and write. No partial effect remains; safe to retry.
	ErrCreditUpdateFailed = errors.New("credit update failed")

	// ErrSubmissionFailed: the debit applied but persisting the submission
	// failed. Unless ErrCompensationFailed is also present, the balance was
	// restored to its pre-call value.
	ErrSubmissionFailed = errors.New("submission failed")

	// ErrCompensationFailed: the compensating write after a failed
	// submission also failed. The balance may be inconsistent and needs
	// manual reconciliation. Never returned alone; always joined with
	// ErrSubmissionFailed.
	ErrCompensationFailed = errors.New("compensation failed")
)

// Outcome is the result of a successful charge: the balance after the debit
// and the id of the submission record that was persisted for it.
type Outcome struct {
	NewBalance   int64
	SubmissionID uuid.UUID
}

// Recorder receives coordinator outcome counts. The prometheus-backed
// implementation lives in internal/metrics.
type Recorder interface {
	RecordCharge(outcome string)
	RecordTopUp()
	RecordDebitConflict()
	RecordCompensationFailure()
}

type nopRecorder struct{}

func (nopRecorder) RecordCharge(string)        {}
func (nopRecorder) RecordTopUp()               {}
func (nopRecorder) RecordDebitConflict()       {}
func (nopRecorder) RecordCompensationFailure() {}
