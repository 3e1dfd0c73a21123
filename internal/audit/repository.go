// Package audit appends immutable records of every mutating operation.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Audit actions.
const (
	ActionCreate     = "CREATE"
	ActionUpdate     = "UPDATE"
	ActionDelete     = "DELETE"
	ActionBulkUpdate = "BULK_UPDATE"
	ActionBulkDelete = "BULK_DELETE"
	ActionTransfer   = "TRANSFER"
	ActionRestore    = "RESTORE"
)

// Entry is one audit row. EntityID may be a comma-joined id list for
// bulk operations. The lead reference is soft: entries survive permanent
// lead deletion.
type Entry struct {
	ID         uuid.UUID
	Action     string
	EntityType string
	EntityID   string
	Details    string
	UserName   string
	CreatedAt  time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (action, entity_type, entity_id, details, user_name)
		VALUES ($1, $2, $3, $4, $5)`,
		e.Action, e.EntityType, e.EntityID, e.Details, e.UserName,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries for operator review.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, action, entity_type, entity_id, details, user_name, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.EntityType, &e.EntityID, &e.Details, &e.UserName, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// JoinIDs renders a bulk id list into the entity_id column format.
func JoinIDs(ids []uuid.UUID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ",")
}
