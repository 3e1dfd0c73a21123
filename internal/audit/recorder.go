package audit

import (
	"context"

	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
)

// Store is the slice of the repository the recorder needs.
type Store interface {
	Insert(ctx context.Context, e Entry) error
}

// Recorder writes audit entries synchronously but best-effort: a failed
// write is logged for the operator and never surfaced to the caller, so
// audit can never roll back or fail the primary mutation.
type Recorder struct {
	store Store
	log   *logger.Logger
}

func NewRecorder(store Store, log *logger.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Insert(ctx, e); err != nil {
		r.log.Error("audit write failed",
			"action", e.Action,
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
			"error", err,
		)
	}
}
