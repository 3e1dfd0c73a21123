package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/email"
	"github.com/mafiaidola/leads-manager-sub000/internal/notification"
	"github.com/mafiaidola/leads-manager-sub000/internal/notification/outbox"
	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
)

type fakeOutboxStore struct {
	records map[uuid.UUID]*outbox.Record
}

func (f *fakeOutboxStore) GetByID(_ context.Context, id uuid.UUID) (*outbox.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return rec, nil
}

func (f *fakeOutboxStore) MarkProcessing(_ context.Context, id uuid.UUID) error {
	f.records[id].Status = outbox.StatusProcessing
	return nil
}

func (f *fakeOutboxStore) MarkSucceeded(_ context.Context, id uuid.UUID) error {
	f.records[id].Status = outbox.StatusSucceeded
	return nil
}

func (f *fakeOutboxStore) MarkFailed(_ context.Context, id uuid.UUID, cause string) error {
	f.records[id].Status = outbox.StatusFailed
	f.records[id].LastError = &cause
	return nil
}

func (f *fakeOutboxStore) MarkPending(_ context.Context, id uuid.UUID, cause string) error {
	rec := f.records[id]
	rec.Status = outbox.StatusPending
	rec.Attempts++
	rec.LastError = &cause
	return nil
}

func (f *fakeOutboxStore) ClaimPending(_ context.Context, limit int) ([]*outbox.Record, error) {
	var claimed []*outbox.Record
	for _, rec := range f.records {
		if rec.Status == outbox.StatusPending && len(claimed) < limit {
			rec.Status = outbox.StatusEnqueued
			claimed = append(claimed, rec)
		}
	}
	return claimed, nil
}

type fakeSender struct {
	sent []email.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg email.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func seedRecord(t *testing.T, store *fakeOutboxStore, status string) *outbox.Record {
	t.Helper()
	payload, err := json.Marshal(notification.EmailPayload{
		LeadID:        uuid.New(),
		LeadName:      "Acme",
		RecipientName: "Sara",
		ActorName:     "Admin",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	rec := &outbox.Record{
		ID:        uuid.New(),
		Kind:      outbox.KindLeadAssigned,
		Recipient: "sara@example.com",
		Payload:   payload,
		Status:    status,
		RunAt:     time.Now(),
	}
	store.records[rec.ID] = rec
	return rec
}

func newTestWorker(store *fakeOutboxStore, sender *fakeSender) *Worker {
	return &Worker{store: store, sender: sender, log: logger.New("test")}
}

func deliver(t *testing.T, w *Worker, id uuid.UUID) {
	t.Helper()
	task, err := NewOutboxDeliverTask(id)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := w.handleOutboxDeliver(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
}

func TestDeliverySucceedsAndSettlesRecord(t *testing.T) {
	store := &fakeOutboxStore{records: map[uuid.UUID]*outbox.Record{}}
	sender := &fakeSender{}
	rec := seedRecord(t, store, outbox.StatusEnqueued)

	deliver(t, newTestWorker(store, sender), rec.ID)

	if rec.Status != outbox.StatusSucceeded {
		t.Fatalf("status = %s, want %s", rec.Status, outbox.StatusSucceeded)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	if sender.sent[0].To != "sara@example.com" {
		t.Fatalf("recipient = %s", sender.sent[0].To)
	}
}

func TestSendFailureReturnsRecordToPending(t *testing.T) {
	store := &fakeOutboxStore{records: map[uuid.UUID]*outbox.Record{}}
	sender := &fakeSender{err: errors.New("smtp down")}
	rec := seedRecord(t, store, outbox.StatusEnqueued)

	deliver(t, newTestWorker(store, sender), rec.ID)

	if rec.Status != outbox.StatusPending {
		t.Fatalf("status = %s, want %s", rec.Status, outbox.StatusPending)
	}
	if rec.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", rec.Attempts)
	}
}

func TestAttemptBudgetParksRecordAsFailed(t *testing.T) {
	store := &fakeOutboxStore{records: map[uuid.UUID]*outbox.Record{}}
	sender := &fakeSender{err: errors.New("smtp down")}
	rec := seedRecord(t, store, outbox.StatusEnqueued)
	rec.Attempts = maxSendAttempts - 1

	deliver(t, newTestWorker(store, sender), rec.ID)

	if rec.Status != outbox.StatusFailed {
		t.Fatalf("status = %s, want %s", rec.Status, outbox.StatusFailed)
	}
}

func TestSettledRecordIsNotResent(t *testing.T) {
	store := &fakeOutboxStore{records: map[uuid.UUID]*outbox.Record{}}
	sender := &fakeSender{}
	rec := seedRecord(t, store, outbox.StatusSucceeded)

	deliver(t, newTestWorker(store, sender), rec.ID)

	if len(sender.sent) != 0 {
		t.Fatal("settled record must not be resent")
	}
}

func TestUnrenderablePayloadIsParkedAsFailed(t *testing.T) {
	store := &fakeOutboxStore{records: map[uuid.UUID]*outbox.Record{}}
	sender := &fakeSender{}
	rec := seedRecord(t, store, outbox.StatusEnqueued)
	rec.Kind = "carrier_pigeon"

	deliver(t, newTestWorker(store, sender), rec.ID)

	if rec.Status != outbox.StatusFailed {
		t.Fatalf("status = %s, want %s", rec.Status, outbox.StatusFailed)
	}
	if len(sender.sent) != 0 {
		t.Fatal("unrenderable record must not be sent")
	}
}
