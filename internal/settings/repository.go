// Package settings stores the tenant vocabulary: the configured status,
// source and product keys that classify leads.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings is the singleton vocabulary document. Statuses is an ordered
// list; order matters for pipeline presentation but not for transitions.
type Settings struct {
	Statuses []string
	Sources  []string
	Products []string
}

// Defaults seed a fresh tenant before the vocabulary is customized.
func Defaults() *Settings {
	return &Settings{
		Statuses: []string{"New", "Contacted", "Qualified", "Proposal", "Won", "Lost"},
		Sources:  []string{"Website", "Referral", "Social", "Cold Call", "Event", "Other"},
		Products: []string{},
	}
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get loads the vocabulary, falling back to defaults when the row has
// not been written yet.
func (r *Repository) Get(ctx context.Context) (*Settings, error) {
	row := r.pool.QueryRow(ctx, `SELECT statuses, sources, products FROM settings WHERE id = 1`)

	var s Settings
	err := row.Scan(&s.Statuses, &s.Sources, &s.Products)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

func (r *Repository) Save(ctx context.Context, s *Settings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settings (id, statuses, sources, products, updated_at)
		VALUES (1, $1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET statuses = EXCLUDED.statuses,
		    sources = EXCLUDED.sources,
		    products = EXCLUDED.products,
		    updated_at = now()`,
		s.Statuses, s.Sources, s.Products,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// HasStatus reports whether key is one of the configured status keys.
func (s *Settings) HasStatus(key string) bool {
	for _, status := range s.Statuses {
		if status == key {
			return true
		}
	}
	return false
}
