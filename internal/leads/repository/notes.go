package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Note types. SYSTEM notes have no author.
const (
	NoteTypeComment      = "COMMENT"
	NoteTypeSystem       = "SYSTEM"
	NoteTypeStatusChange = "STATUS_CHANGE"
	NoteTypePhoneUpdate  = "PHONE_UPDATE"
)

// Note is an append-only annotation on a lead. Rows are never updated or
// deleted except by cascade when the lead is permanently removed.
type Note struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	AuthorID   *uuid.UUID
	AuthorRole string
	Type       string
	Message    string
	Meta       map[string]any
	CreatedAt  time.Time
}

type CreateNoteParams struct {
	LeadID     uuid.UUID
	AuthorID   *uuid.UUID
	AuthorRole string
	Type       string
	Message    string
	Meta       map[string]any
}

func (r *Repository) CreateNote(ctx context.Context, p CreateNoteParams) (*Note, error) {
	var meta []byte
	if p.Meta != nil {
		encoded, err := json.Marshal(p.Meta)
		if err != nil {
			return nil, fmt.Errorf("encode note meta: %w", err)
		}
		meta = encoded
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO lead_notes (lead_id, author_id, author_role, type, message, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, lead_id, author_id, author_role, type, message, meta, created_at`,
		p.LeadID, p.AuthorID, p.AuthorRole, p.Type, p.Message, meta,
	)
	return scanNote(row)
}

func (r *Repository) ListNotes(ctx context.Context, leadID uuid.UUID) ([]*Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, author_id, author_role, type, message, meta, created_at
		FROM lead_notes
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC`,
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func scanNote(row pgx.Row) (*Note, error) {
	var n Note
	var meta []byte
	err := row.Scan(&n.ID, &n.LeadID, &n.AuthorID, &n.AuthorRole, &n.Type, &n.Message, &meta, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &n.Meta); err != nil {
			return nil, fmt.Errorf("decode note meta: %w", err)
		}
	}
	return &n, nil
}
