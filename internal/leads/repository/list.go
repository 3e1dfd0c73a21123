package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ListParams filters and pages a lead listing. Trash switches the view
// to soft-deleted leads only.
type ListParams struct {
	Status     string
	Source     string
	Product    string
	Tag        string
	AssignedTo *uuid.UUID
	StarredBy  *uuid.UUID
	Search     string
	Trash      bool
	SortBy     string
	SortDesc   bool
	Page       int
}

type ListResult struct {
	Leads []*Lead
	Total int64
	Page  int
}

func buildListWhere(p ListParams) (string, []any) {
	conds := []string{}
	args := []any{}
	argIdx := 1

	addEquals := func(column, value string) {
		if value == "" {
			return
		}
		conds = append(conds, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if p.Trash {
		conds = append(conds, "deleted_at IS NOT NULL")
	} else {
		conds = append(conds, "deleted_at IS NULL")
	}

	addEquals("status", p.Status)
	addEquals("source", p.Source)
	addEquals("product", p.Product)

	if p.Tag != "" {
		conds = append(conds, fmt.Sprintf("$%d = ANY(tags)", argIdx))
		args = append(args, p.Tag)
		argIdx++
	}
	if p.AssignedTo != nil {
		conds = append(conds, fmt.Sprintf("assigned_to = $%d", argIdx))
		args = append(args, *p.AssignedTo)
		argIdx++
	}
	if p.StarredBy != nil {
		conds = append(conds, fmt.Sprintf("$%d = ANY(starred_by)", argIdx))
		args = append(args, *p.StarredBy)
		argIdx++
	}
	if p.Search != "" {
		pattern := "%" + p.Search + "%"
		// The phone alternative only applies when the term carries digits;
		// an empty LIKE pattern would match every row.
		if digits := digitsOnly(p.Search); digits != "" {
			conds = append(conds, fmt.Sprintf(
				"(name ILIKE $%d OR company ILIKE $%d OR email ILIKE $%d OR phone_digits LIKE $%d)",
				argIdx, argIdx, argIdx, argIdx+1,
			))
			args = append(args, pattern, "%"+digits+"%")
			argIdx += 2
		} else {
			conds = append(conds, fmt.Sprintf(
				"(name ILIKE $%d OR company ILIKE $%d OR email ILIKE $%d)",
				argIdx, argIdx, argIdx,
			))
			args = append(args, pattern)
			argIdx++
		}
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

func mapSortColumn(sortBy string) string {
	switch sortBy {
	case "name":
		return "name"
	case "company":
		return "company"
	case "status":
		return "status"
	case "value":
		return "value"
	case "follow_up_date":
		return "follow_up_date"
	case "last_contact_at":
		return "last_contact_at"
	case "serial_number":
		return "serial_number"
	default:
		return "created_at"
	}
}

func (r *Repository) List(ctx context.Context, p ListParams) (*ListResult, error) {
	where, args := buildListWhere(p)

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM leads "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	direction := "ASC"
	if p.SortDesc || p.SortBy == "" {
		direction = "DESC"
	}
	query := fmt.Sprintf(
		"SELECT %s FROM leads %s ORDER BY %s %s, id LIMIT %d OFFSET %d",
		leadColumns, where, mapSortColumn(p.SortBy), direction, PageSize, (page-1)*PageSize,
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]*Lead, 0, PageSize)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ListResult{Leads: leads, Total: total, Page: page}, nil
}

// FindByPhoneDigits returns the non-deleted lead holding the given
// normalized phone, excluding excludeID when non-nil.
func (r *Repository) FindByPhoneDigits(ctx context.Context, digits string, excludeID *uuid.UUID) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE phone_digits = $1 AND deleted_at IS NULL`
	args := []any{digits}
	if excludeID != nil {
		query += ` AND id <> $2`
		args = append(args, *excludeID)
	}
	query += ` LIMIT 1`
	return scanLead(r.pool.QueryRow(ctx, query, args...))
}

// FindSimilar returns up to limit non-deleted leads matching the email or
// normalized phone, for advisory pre-submission warnings.
func (r *Repository) FindSimilar(ctx context.Context, email, phoneDigits string, excludeID *uuid.UUID, limit int) ([]*Lead, error) {
	conds := []string{}
	args := []any{}
	argIdx := 1

	if email != "" {
		conds = append(conds, fmt.Sprintf("lower(email) = lower($%d)", argIdx))
		args = append(args, email)
		argIdx++
	}
	if phoneDigits != "" {
		conds = append(conds, fmt.Sprintf("phone_digits = $%d", argIdx))
		args = append(args, phoneDigits)
		argIdx++
	}
	if len(conds) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		"SELECT %s FROM leads WHERE deleted_at IS NULL AND (%s)",
		leadColumns, strings.Join(conds, " OR "),
	)
	if excludeID != nil {
		query += fmt.Sprintf(" AND id <> $%d", argIdx)
		args = append(args, *excludeID)
		argIdx++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find similar leads: %w", err)
	}
	defer rows.Close()

	var leads []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
