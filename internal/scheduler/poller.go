package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/notification/outbox"
	"github.com/mafiaidola/leads-manager-sub000/platform/config"
	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
)

// OutboxSource is the slice of the outbox repository the poller needs.
type OutboxSource interface {
	ClaimPending(ctx context.Context, limit int) ([]*outbox.Record, error)
	MarkPending(ctx context.Context, id uuid.UUID, cause string) error
}

// TaskEnqueuer pushes one claimed record onto the delivery queue.
type TaskEnqueuer interface {
	EnqueueOutboxDelivery(ctx context.Context, recordID uuid.UUID, runAt time.Time) error
}

// OutboxPoller periodically claims due outbox records and enqueues them.
// A record whose enqueue fails is returned to pending for the next tick.
type OutboxPoller struct {
	source   OutboxSource
	enqueuer TaskEnqueuer
	interval time.Duration
	batch    int
	log      *logger.Logger
}

func NewOutboxPoller(source OutboxSource, enqueuer TaskEnqueuer, cfg config.SchedulerConfig, log *logger.Logger) *OutboxPoller {
	return &OutboxPoller{
		source:   source,
		enqueuer: enqueuer,
		interval: cfg.GetOutboxPollInterval(),
		batch:    cfg.GetOutboxBatchSize(),
		log:      log,
	}
}

// Run blocks until the context is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info("outbox poller started", "interval", p.interval.String(), "batch", p.batch)
	for {
		select {
		case <-ctx.Done():
			p.log.Info("outbox poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *OutboxPoller) tick(ctx context.Context) {
	records, err := p.source.ClaimPending(ctx, p.batch)
	if err != nil {
		p.log.Error("claim pending outbox records", "error", err)
		return
	}
	for _, rec := range records {
		if err := p.enqueuer.EnqueueOutboxDelivery(ctx, rec.ID, rec.RunAt); err != nil {
			p.log.Error("enqueue outbox delivery", "error", err, "record_id", rec.ID)
			if markErr := p.source.MarkPending(ctx, rec.ID, err.Error()); markErr != nil {
				p.log.Error("return outbox record to pending", "error", markErr, "record_id", rec.ID)
			}
		}
	}
	if len(records) > 0 {
		p.log.Info("outbox batch enqueued", "count", len(records))
	}
}
