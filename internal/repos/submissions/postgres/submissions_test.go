package submissions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jasdeace/webapp/internal/infra/pgtestutil"
	"github.com/jasdeace/webapp/internal/repos/submissions"
)

func TestSubmissions_InsertAndList(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Now().UTC().Truncate(time.Millisecond)

	first := submissions.Record{
		ID:            uuid.New(),
		UserID:        userID,
		FormData:      "first payload",
		CreditBalance: 4,
		CreatedAt:     base,
	}
	second := submissions.Record{
		ID:            uuid.New(),
		UserID:        userID,
		FormData:      "second payload",
		CreditBalance: 3,
		CreatedAt:     base.Add(time.Second),
	}

	err := repo.Insert(ctx, first)
	if err != nil {
		t.Fatalf("insert first: %v", err)
	}
	err = repo.Insert(ctx, second)
	if err != nil {
		t.Fatalf("insert second: %v", err)
	}

	// Unrelated user's record must not show up in the listing.
	err = repo.Insert(ctx, submissions.Record{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		FormData:      "other user",
		CreditBalance: 9,
		CreatedAt:     base,
	})
	if err != nil {
		t.Fatalf("insert other user: %v", err)
	}

	recs, err := repo.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(recs) != 2 {
		t.Fatalf("want 2 records, got %d", len(recs))
	}
	if recs[0].ID != second.ID || recs[1].ID != first.ID {
		t.Fatalf("expected newest-first ordering, got %v then %v", recs[0].ID, recs[1].ID)
	}
	if recs[0].FormData != "second payload" || recs[0].CreditBalance != 3 {
		t.Fatalf("record fields mismatch: %+v", recs[0])
	}
}

func TestSubmissions_DuplicateIDRejected(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := context.Background()

	rec := submissions.Record{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		FormData:      "payload",
		CreditBalance: 1,
		CreatedAt:     time.Now().UTC(),
	}

	err := repo.Insert(ctx, rec)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err = repo.Insert(ctx, rec)
	if !errors.Is(err, submissions.ErrDuplicateSubmission) {
		t.Fatalf("expected ErrDuplicateSubmission, got: %v", err)
	}
}

func TestSubmissions_ListEmpty(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	recs, err := repo.ListByUser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("want no records, got %d", len(recs))
	}
}
