package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/mafiaidola/leads-manager-sub000/internal/email"
	"github.com/mafiaidola/leads-manager-sub000/internal/notification/outbox"
	"github.com/mafiaidola/leads-manager-sub000/platform/config"
	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
)

// maxSendAttempts bounds redelivery of one outbox record before it is
// parked as failed.
const maxSendAttempts = 5

// OutboxStore is the slice of the outbox repository the worker needs.
type OutboxStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*outbox.Record, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkSucceeded(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, cause string) error
	MarkPending(ctx context.Context, id uuid.UUID, cause string) error
}

// Worker consumes delivery tasks and sends the rendered mail.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	store  OutboxStore
	sender email.Sender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, store OutboxStore, sender email.Sender, log *logger.Logger) (*Worker, error) {
	connOpt, err := redisConnOpt(cfg)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(connOpt, asynq.Config{
		Concurrency: cfg.GetAsynqConcurrency(),
		Queues:      map[string]int{cfg.GetAsynqQueueName(): 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Error("task failed", "type", task.Type(), "error", err)
		}),
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		store:  store,
		sender: sender,
		log:    log,
	}
	w.mux.HandleFunc(TaskOutboxDeliver, w.handleOutboxDeliver)
	return w, nil
}

// Run serves tasks until the context is cancelled, then drains in-flight
// handlers before returning.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start task server: %w", err)
	}
	<-ctx.Done()
	w.log.Info("shutting down task server")
	w.server.Shutdown()
	return nil
}

func (w *Worker) handleOutboxDeliver(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseOutboxDeliverPayload(task)
	if err != nil {
		return err
	}

	rec, err := w.store.GetByID(ctx, payload.RecordID)
	if err != nil {
		return fmt.Errorf("load outbox record %s: %w", payload.RecordID, err)
	}
	// Replays of already-settled records are harmless no-ops.
	if rec.Status == outbox.StatusSucceeded || rec.Status == outbox.StatusFailed {
		return nil
	}

	if err := w.store.MarkProcessing(ctx, rec.ID); err != nil {
		return err
	}

	msg, err := email.Render(rec)
	if err != nil {
		// A payload that cannot render will never succeed.
		w.settleFailed(ctx, rec.ID, err)
		return nil
	}

	if err := w.sender.Send(ctx, msg); err != nil {
		w.settleRetryable(ctx, rec, err)
		return nil
	}

	if err := w.store.MarkSucceeded(ctx, rec.ID); err != nil {
		return err
	}
	w.log.Info("outbox record delivered", "record_id", rec.ID, "kind", rec.Kind)
	return nil
}

func (w *Worker) settleFailed(ctx context.Context, id uuid.UUID, cause error) {
	w.log.Error("outbox record unrecoverable", "record_id", id, "error", cause)
	if err := w.store.MarkFailed(ctx, id, cause.Error()); err != nil {
		w.log.Error("mark outbox record failed", "record_id", id, "error", err)
	}
}

// settleRetryable returns the record to pending so the poller retries it,
// unless its attempt budget is spent.
func (w *Worker) settleRetryable(ctx context.Context, rec *outbox.Record, cause error) {
	if rec.Attempts+1 >= maxSendAttempts {
		w.settleFailed(ctx, rec.ID, fmt.Errorf("attempts exhausted: %w", cause))
		return
	}
	w.log.Warn("outbox delivery failed, will retry", "record_id", rec.ID, "attempt", rec.Attempts+1, "error", cause)
	if err := w.store.MarkPending(ctx, rec.ID, cause.Error()); err != nil {
		w.log.Error("return outbox record to pending", "record_id", rec.ID, "error", err)
	}
}
