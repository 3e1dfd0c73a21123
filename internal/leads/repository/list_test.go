package repository

import (
	"strings"
	"testing"
)

func TestBuildListWhereTextSearchHasNoPhoneClause(t *testing.T) {
	where, args := buildListWhere(ListParams{Search: "acme"})

	if strings.Contains(where, "phone_digits") {
		t.Fatalf("text-only search must not compare phone_digits, got %q", where)
	}
	if len(args) != 1 {
		t.Fatalf("expected one search argument, got %v", args)
	}
	if args[0] != "%acme%" {
		t.Fatalf("search pattern = %v", args[0])
	}
}

func TestBuildListWhereNumericSearchMatchesPhone(t *testing.T) {
	where, args := buildListWhere(ListParams{Search: "50-123"})

	if !strings.Contains(where, "phone_digits LIKE") {
		t.Fatalf("numeric search must compare phone_digits, got %q", where)
	}
	if len(args) != 2 {
		t.Fatalf("expected two search arguments, got %v", args)
	}
	if args[1] != "%50123%" {
		t.Fatalf("phone pattern = %v, want digits only", args[1])
	}
}

func TestBuildListWhereNeverEmitsEmptyLikePattern(t *testing.T) {
	for _, term := range []string{"acme", "O'Brien", "weiß", "lead @ corp"} {
		_, args := buildListWhere(ListParams{Search: term})
		for _, arg := range args {
			if arg == "%%" {
				t.Fatalf("search %q produced a vacuous pattern: %v", term, args)
			}
		}
	}
}

func TestBuildListWhereTrashView(t *testing.T) {
	where, _ := buildListWhere(ListParams{Trash: true})
	if !strings.Contains(where, "deleted_at IS NOT NULL") {
		t.Fatalf("trash view must select deleted rows, got %q", where)
	}

	where, _ = buildListWhere(ListParams{})
	if !strings.Contains(where, "deleted_at IS NULL") {
		t.Fatalf("default view must exclude deleted rows, got %q", where)
	}
}
