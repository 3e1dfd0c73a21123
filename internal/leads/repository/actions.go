package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Action types mirror the interaction channels agents log.
const (
	ActionTypeCall     = "CALL"
	ActionTypeMeeting  = "MEETING"
	ActionTypeEmail    = "EMAIL"
	ActionTypeFollowUp = "FOLLOW_UP"
	ActionTypeWhatsApp = "WHATSAPP"
	ActionTypeOther    = "OTHER"
)

// Action is a logged interaction with a lead.
type Action struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	AuthorID    uuid.UUID
	Type        string
	Description string
	Outcome     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateActionParams struct {
	LeadID      uuid.UUID
	AuthorID    uuid.UUID
	Type        string
	Description string
	Outcome     *string
}

func (r *Repository) CreateAction(ctx context.Context, p CreateActionParams) (*Action, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lead_actions (lead_id, author_id, type, description, outcome)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, lead_id, author_id, type, description, outcome, created_at, updated_at`,
		p.LeadID, p.AuthorID, p.Type, p.Description, p.Outcome,
	)
	return scanAction(row)
}

func (r *Repository) ListActions(ctx context.Context, leadID uuid.UUID) ([]*Action, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, author_id, type, description, outcome, created_at, updated_at
		FROM lead_actions
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC`,
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	actions := make([]*Action, 0)
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}

func scanAction(row pgx.Row) (*Action, error) {
	var a Action
	err := row.Scan(&a.ID, &a.LeadID, &a.AuthorID, &a.Type, &a.Description, &a.Outcome, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ValidActionType reports whether t is one of the known action types.
func ValidActionType(t string) bool {
	switch t {
	case ActionTypeCall, ActionTypeMeeting, ActionTypeEmail, ActionTypeFollowUp, ActionTypeWhatsApp, ActionTypeOther:
		return true
	}
	return false
}
