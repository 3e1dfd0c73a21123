package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Timeline entry kinds.
const (
	TimelineKindNote   = "note"
	TimelineKindAction = "action"
	TimelineKindAudit  = "audit"
)

// TimelineEntry is one row of the merged lead history.
type TimelineEntry struct {
	Kind       string
	Type       string
	Message    string
	AuthorName string
	Meta       map[string]any
	CreatedAt  time.Time
}

// Timeline merges the lead's notes, actions and audit entries into one
// stream, newest first. The three logs stay separate tables; the merge
// happens at read time and produces a fresh snapshot on every call.
func (r *Repository) Timeline(ctx context.Context, leadID uuid.UUID) ([]*TimelineEntry, error) {
	var (
		noteEntries   []*TimelineEntry
		actionEntries []*TimelineEntry
		auditEntries  []*TimelineEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		noteEntries, err = r.timelineNotes(gctx, leadID)
		return err
	})
	g.Go(func() error {
		var err error
		actionEntries, err = r.timelineActions(gctx, leadID)
		return err
	})
	g.Go(func() error {
		var err error
		auditEntries, err = r.timelineAudit(gctx, leadID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]*TimelineEntry, 0, len(noteEntries)+len(actionEntries)+len(auditEntries))
	merged = append(merged, noteEntries...)
	merged = append(merged, actionEntries...)
	merged = append(merged, auditEntries...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged, nil
}

func (r *Repository) timelineNotes(ctx context.Context, leadID uuid.UUID) ([]*TimelineEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT n.type, n.message, n.meta, COALESCE(u.name, ''), n.created_at
		FROM lead_notes n
		LEFT JOIN users u ON u.id = n.author_id
		WHERE n.lead_id = $1
		ORDER BY n.created_at DESC`,
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("timeline notes: %w", err)
	}
	defer rows.Close()

	var entries []*TimelineEntry
	for rows.Next() {
		e := &TimelineEntry{Kind: TimelineKindNote}
		var meta []byte
		if err := rows.Scan(&e.Type, &e.Message, &meta, &e.AuthorName, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Meta); err != nil {
				return nil, fmt.Errorf("timeline note meta: %w", err)
			}
		}
		if e.AuthorName == "" {
			e.AuthorName = "System"
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Repository) timelineActions(ctx context.Context, leadID uuid.UUID) ([]*TimelineEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.type, a.description, COALESCE(u.name, ''), a.created_at
		FROM lead_actions a
		LEFT JOIN users u ON u.id = a.author_id
		WHERE a.lead_id = $1
		ORDER BY a.created_at DESC`,
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("timeline actions: %w", err)
	}
	defer rows.Close()

	var entries []*TimelineEntry
	for rows.Next() {
		e := &TimelineEntry{Kind: TimelineKindAction}
		if err := rows.Scan(&e.Type, &e.Message, &e.AuthorName, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// timelineAudit also catches bulk entries whose entity_id is a
// comma-joined id list containing this lead.
func (r *Repository) timelineAudit(ctx context.Context, leadID uuid.UUID) ([]*TimelineEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT action, details, user_name, created_at
		FROM audit_logs
		WHERE entity_type = 'lead' AND position($1 in entity_id) > 0
		ORDER BY created_at DESC`,
		leadID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("timeline audit: %w", err)
	}
	defer rows.Close()

	var entries []*TimelineEntry
	for rows.Next() {
		e := &TimelineEntry{Kind: TimelineKindAudit}
		if err := rows.Scan(&e.Type, &e.Message, &e.AuthorName, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MergeTimeline merges pre-sorted entry slices newest-first. Exported for
// reuse by callers that already hold the individual streams.
func MergeTimeline(streams ...[]*TimelineEntry) []*TimelineEntry {
	var merged []*TimelineEntry
	for _, s := range streams {
		merged = append(merged, s...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}
