// Package outbox persists email deliveries so the worker can send them
// independently of the request that produced them.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Delivery statuses. A record moves pending -> enqueued -> processing and
// ends in succeeded or failed; MarkPending puts a retryable record back.
const (
	StatusPending    = "pending"
	StatusEnqueued   = "enqueued"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
)

// Email kinds understood by the worker-side renderer.
const (
	KindLeadAssigned      = "lead_assigned"
	KindLeadStatusChanged = "lead_status_changed"
)

type Record struct {
	ID        uuid.UUID
	Kind      string
	Recipient string
	Payload   []byte
	Status    string
	Attempts  int
	LastError *string
	RunAt     time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type InsertParams struct {
	Kind      string
	Recipient string
	Payload   any
	RunAt     time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, p InsertParams) error {
	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	runAt := p.RunAt
	if runAt.IsZero() {
		runAt = time.Now()
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO notification_outbox (kind, recipient, payload, status, run_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.Kind, p.Recipient, payload, StatusPending, runAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox record: %w", err)
	}
	return nil
}

// ClaimPending atomically moves due pending records to enqueued and returns
// them. SKIP LOCKED lets concurrent pollers claim disjoint batches.
func (r *Repository) ClaimPending(ctx context.Context, limit int) ([]*Record, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE notification_outbox SET status = $1, updated_at = now()
		WHERE id IN (
			SELECT id FROM notification_outbox
			WHERE status = $2 AND run_at <= now()
			ORDER BY run_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, recipient, payload, status, attempts, last_error, run_at, created_at, updated_at`,
		StatusEnqueued, StatusPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("claim pending outbox records: %w", err)
	}
	defer rows.Close()

	records := make([]*Record, 0, limit)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Recipient, &rec.Payload, &rec.Status, &rec.Attempts, &rec.LastError, &rec.RunAt, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `
		SELECT id, kind, recipient, payload, status, attempts, last_error, run_at, created_at, updated_at
		FROM notification_outbox WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Kind, &rec.Recipient, &rec.Payload, &rec.Status, &rec.Attempts, &rec.LastError, &rec.RunAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get outbox record: %w", err)
	}
	return &rec, nil
}

func (r *Repository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, StatusProcessing, nil)
}

func (r *Repository) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, StatusSucceeded, nil)
}

func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, cause string) error {
	return r.setStatus(ctx, id, StatusFailed, &cause)
}

// MarkPending returns a record to the pollable pool after a transient
// failure, bumping the attempt counter.
func (r *Repository) MarkPending(ctx context.Context, id uuid.UUID, cause string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = $2, attempts = attempts + 1, last_error = $3, updated_at = now()
		WHERE id = $1`,
		id, StatusPending, cause,
	)
	if err != nil {
		return fmt.Errorf("mark outbox record pending: %w", err)
	}
	return nil
}

func (r *Repository) setStatus(ctx context.Context, id uuid.UUID, status string, cause *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox SET status = $2, last_error = $3, updated_at = now()
		WHERE id = $1`,
		id, status, cause,
	)
	if err != nil {
		return fmt.Errorf("mark outbox record %s: %w", status, err)
	}
	return nil
}
