// Package users is the read-side directory of principals. Accounts are
// provisioned by the external identity service; this module only reads.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	ID          uuid.UUID
	Name        string
	Email       string
	Role        string
	Permissions []string
	Active      bool
	CreatedAt   time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, role, permissions, active, created_at
		FROM users WHERE id = $1`,
		id,
	)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Permissions, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// ListAdmins returns every active admin, for notification fan-out.
func (r *Repository) ListAdmins(ctx context.Context) ([]*User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, role, permissions, active, created_at
		FROM users WHERE role = 'ADMIN' AND active`,
	)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var admins []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Permissions, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		admins = append(admins, &u)
	}
	return admins, rows.Err()
}
