package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
)

type fakeStore struct {
	entries []Entry
	err     error
}

func (f *fakeStore) Insert(ctx context.Context, e Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func TestRecordPersistsEntry(t *testing.T) {
	store := &fakeStore{}
	rec := NewRecorder(store, logger.New("development"))

	rec.Record(context.Background(), Entry{
		Action:     ActionCreate,
		EntityType: "lead",
		EntityID:   uuid.New().String(),
		Details:    "Lead created",
		UserName:   "Admin",
	})

	if len(store.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(store.entries))
	}
	if store.entries[0].Action != ActionCreate {
		t.Fatalf("expected CREATE, got %s", store.entries[0].Action)
	}
}

func TestRecordSwallowsStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection lost")}
	rec := NewRecorder(store, logger.New("development"))

	// Must not panic or propagate.
	rec.Record(context.Background(), Entry{Action: ActionUpdate, EntityType: "lead"})
}

func TestJoinIDs(t *testing.T) {
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	got := JoinIDs([]uuid.UUID{a, b})
	want := a.String() + "," + b.String()
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestJoinIDsEmpty(t *testing.T) {
	if got := JoinIDs(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
