package repository

import (
	"testing"
	"time"
)

func entryAt(kind string, offset time.Duration) *TimelineEntry {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &TimelineEntry{Kind: kind, CreatedAt: base.Add(offset)}
}

func TestMergeTimelineNewestFirst(t *testing.T) {
	notes := []*TimelineEntry{entryAt(TimelineKindNote, 3 * time.Minute), entryAt(TimelineKindNote, 0)}
	actions := []*TimelineEntry{entryAt(TimelineKindAction, 2 * time.Minute)}
	audits := []*TimelineEntry{entryAt(TimelineKindAudit, 5 * time.Minute), entryAt(TimelineKindAudit, time.Minute)}

	merged := MergeTimeline(notes, actions, audits)

	if len(merged) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(merged))
	}
	for i := 1; i < len(merged); i++ {
		if merged[i].CreatedAt.After(merged[i-1].CreatedAt) {
			t.Fatalf("entry %d is newer than entry %d", i, i-1)
		}
	}
	if merged[0].Kind != TimelineKindAudit {
		t.Fatalf("expected newest entry to be the audit one, got %s", merged[0].Kind)
	}
}

func TestMergeTimelineStableForEqualTimestamps(t *testing.T) {
	a := entryAt(TimelineKindNote, 0)
	b := entryAt(TimelineKindAction, 0)

	merged := MergeTimeline([]*TimelineEntry{a}, []*TimelineEntry{b})
	if merged[0] != a || merged[1] != b {
		t.Fatal("equal timestamps should keep input order")
	}
}

func TestMergeTimelineEmpty(t *testing.T) {
	if got := MergeTimeline(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty merge, got %d entries", len(got))
	}
}
