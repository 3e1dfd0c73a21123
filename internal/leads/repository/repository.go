// Package repository is the Postgres persistence layer for leads and
// their attached notes and actions.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PageSize is the fixed page length for lead listings.
const PageSize = 50

var (
	ErrNotFound       = errors.New("lead not found")
	ErrDuplicatePhone = errors.New("phone number already in use")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead is the stored lead row. ContactedToday is derived from
// last_contact_at at read time and never written.
type Lead struct {
	ID               uuid.UUID
	SerialNumber     int64
	Name             string
	Company          string
	Position         string
	Email            string
	Phone            string
	PhoneDigits      string
	PhoneCountryCode string
	Website          string
	AddressStreet    string
	AddressCity      string
	AddressPostal    string
	AddressCountry   string
	Status           string
	Source           string
	Product          string
	Tags             []string
	Currency         string
	Value            *float64
	AssignedTo       *uuid.UUID
	CreatedBy        uuid.UUID
	UpdatedBy        *uuid.UUID
	Public           bool
	FollowUpDate     *time.Time
	LastContactAt    *time.Time
	ContactedToday   bool
	StarredBy        []uuid.UUID
	DeletedAt        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

const leadColumns = `
	id, serial_number, name, company, position, email, phone, phone_digits,
	phone_country_code, website, address_street, address_city,
	address_postal_code, address_country, status, source, product, tags,
	currency, value, assigned_to, created_by, updated_by, public,
	follow_up_date, last_contact_at,
	(last_contact_at IS NOT NULL AND last_contact_at::date = now()::date) AS contacted_today,
	starred_by, deleted_at, created_at, updated_at`

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.SerialNumber, &l.Name, &l.Company, &l.Position, &l.Email,
		&l.Phone, &l.PhoneDigits, &l.PhoneCountryCode, &l.Website,
		&l.AddressStreet, &l.AddressCity, &l.AddressPostal, &l.AddressCountry,
		&l.Status, &l.Source, &l.Product, &l.Tags, &l.Currency, &l.Value,
		&l.AssignedTo, &l.CreatedBy, &l.UpdatedBy, &l.Public,
		&l.FollowUpDate, &l.LastContactAt, &l.ContactedToday,
		&l.StarredBy, &l.DeletedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// CreateLeadParams carries the already-normalized fields for a new lead.
type CreateLeadParams struct {
	Name             string
	Company          string
	Position         string
	Email            string
	Phone            string
	PhoneDigits      string
	PhoneCountryCode string
	Website          string
	AddressStreet    string
	AddressCity      string
	AddressPostal    string
	AddressCountry   string
	Status           string
	Source           string
	Product          string
	Tags             []string
	Currency         string
	Value            *float64
	AssignedTo       *uuid.UUID
	CreatedBy        uuid.UUID
	Public           bool
	FollowUpDate     *time.Time
}

func (r *Repository) Create(ctx context.Context, p CreateLeadParams) (*Lead, error) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			name, company, position, email, phone, phone_digits,
			phone_country_code, website, address_street, address_city,
			address_postal_code, address_country, status, source, product,
			tags, currency, value, assigned_to, created_by, public,
			follow_up_date
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22
		)
		RETURNING `+leadColumns,
		p.Name, p.Company, p.Position, p.Email, p.Phone, p.PhoneDigits,
		p.PhoneCountryCode, p.Website, p.AddressStreet, p.AddressCity,
		p.AddressPostal, p.AddressCountry, p.Status, p.Source, p.Product,
		p.Tags, p.Currency, p.Value, p.AssignedTo, p.CreatedBy, p.Public,
		p.FollowUpDate,
	)

	lead, err := scanLead(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePhone
		}
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// UpdateLeadParams is a partial update. Nil pointers leave the column
// untouched. AssignedToSet distinguishes "clear assignment" from
// "leave as is".
type UpdateLeadParams struct {
	Name             *string
	Company          *string
	Position         *string
	Email            *string
	Phone            *string
	PhoneDigits      *string
	PhoneCountryCode *string
	Website          *string
	AddressStreet    *string
	AddressCity      *string
	AddressPostal    *string
	AddressCountry   *string
	Status           *string
	Source           *string
	Product          *string
	Tags             []string
	Currency         *string
	Value            *float64
	ValueSet         bool
	AssignedTo       *uuid.UUID
	AssignedToSet    bool
	Public           *bool
	FollowUpDate     *time.Time
	FollowUpDateSet  bool
	UpdatedBy        uuid.UUID
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateLeadParams) (*Lead, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	argIdx := 1

	addSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if p.Name != nil {
		addSet("name", *p.Name)
	}
	if p.Company != nil {
		addSet("company", *p.Company)
	}
	if p.Position != nil {
		addSet("position", *p.Position)
	}
	if p.Email != nil {
		addSet("email", *p.Email)
	}
	if p.Phone != nil {
		addSet("phone", *p.Phone)
	}
	if p.PhoneDigits != nil {
		addSet("phone_digits", *p.PhoneDigits)
	}
	if p.PhoneCountryCode != nil {
		addSet("phone_country_code", *p.PhoneCountryCode)
	}
	if p.Website != nil {
		addSet("website", *p.Website)
	}
	if p.AddressStreet != nil {
		addSet("address_street", *p.AddressStreet)
	}
	if p.AddressCity != nil {
		addSet("address_city", *p.AddressCity)
	}
	if p.AddressPostal != nil {
		addSet("address_postal_code", *p.AddressPostal)
	}
	if p.AddressCountry != nil {
		addSet("address_country", *p.AddressCountry)
	}
	if p.Status != nil {
		addSet("status", *p.Status)
	}
	if p.Source != nil {
		addSet("source", *p.Source)
	}
	if p.Product != nil {
		addSet("product", *p.Product)
	}
	if p.Tags != nil {
		addSet("tags", p.Tags)
	}
	if p.Currency != nil {
		addSet("currency", *p.Currency)
	}
	if p.ValueSet {
		addSet("value", p.Value)
	}
	if p.AssignedToSet {
		addSet("assigned_to", p.AssignedTo)
	}
	if p.Public != nil {
		addSet("public", *p.Public)
	}
	if p.FollowUpDateSet {
		addSet("follow_up_date", p.FollowUpDate)
	}
	addSet("updated_by", p.UpdatedBy)

	query := fmt.Sprintf(
		`UPDATE leads SET %s WHERE id = $%d AND deleted_at IS NULL RETURNING %s`,
		strings.Join(sets, ", "), argIdx, leadColumns,
	)
	args = append(args, id)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePhone
		}
		return nil, err
	}
	return lead, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, updatedBy uuid.UUID) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET status = $2, updated_by = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		id, status, updatedBy,
	)
	return scanLead(row)
}

func (r *Repository) SetAssignee(ctx context.Context, id uuid.UUID, assignee *uuid.UUID, updatedBy uuid.UUID) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET assigned_to = $2, updated_by = $3, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		id, assignee, updatedBy,
	)
	return scanLead(row)
}

// TouchLastContact bumps last_contact_at; called when an action is logged.
func (r *Repository) TouchLastContact(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET last_contact_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET deleted_at = now(), updated_by = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		id, updatedBy,
	)
	return scanLead(row)
}

func (r *Repository) Restore(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET deleted_at = NULL, updated_by = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NOT NULL
		RETURNING `+leadColumns,
		id, updatedBy,
	)
	lead, err := scanLead(row)
	if err != nil {
		// Restoring can revive a phone collision with a lead created since
		// the soft delete.
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePhone
		}
		return nil, err
	}
	return lead, nil
}

// PermanentDelete removes the lead row; notes and actions go with it via
// FK cascade. Audit entries hold a soft reference and survive.
func (r *Repository) PermanentDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleStar flips the caller's membership in the starred set in one
// statement, so concurrent toggles by different users never lose writes.
func (r *Repository) ToggleStar(ctx context.Context, id, userID uuid.UUID) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET starred_by = CASE
			WHEN $2 = ANY(starred_by) THEN array_remove(starred_by, $2)
			ELSE array_append(starred_by, $2)
		END
		WHERE id = $1
		RETURNING `+leadColumns,
		id, userID,
	)
	return scanLead(row)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
