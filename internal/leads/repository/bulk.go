package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// BulkUpdateStatus sets the status on every non-deleted lead in ids with
// one statement and returns the number of rows touched.
func (r *Repository) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status string, updatedBy uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET status = $2, updated_by = $3, updated_at = now()
		WHERE id = ANY($1) AND deleted_at IS NULL`,
		ids, status, updatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("bulk update status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// BulkAssign hands every lead in ids to assignee. The caller has already
// verified the assignee exists and is active.
func (r *Repository) BulkAssign(ctx context.Context, ids []uuid.UUID, assignee uuid.UUID, updatedBy uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET assigned_to = $2, updated_by = $3, updated_at = now()
		WHERE id = ANY($1) AND deleted_at IS NULL`,
		ids, assignee, updatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("bulk assign: %w", err)
	}
	return tag.RowsAffected(), nil
}

// BulkSoftDelete moves every lead in ids to the trash in one statement.
func (r *Repository) BulkSoftDelete(ctx context.Context, ids []uuid.UUID, updatedBy uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET deleted_at = now(), updated_by = $2, updated_at = now()
		WHERE id = ANY($1) AND deleted_at IS NULL`,
		ids, updatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("bulk soft delete: %w", err)
	}
	return tag.RowsAffected(), nil
}
