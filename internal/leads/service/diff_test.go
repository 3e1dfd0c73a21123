package service

import (
	"strings"
	"testing"

	"github.com/mafiaidola/leads-manager-sub000/internal/leads/repository"
)

func TestDiffLeadsRendersChangedFields(t *testing.T) {
	before := &repository.Lead{Name: "Acme", Status: "New", Company: "Acme Inc"}
	after := &repository.Lead{Name: "Acme Corp", Status: "Won", Company: "Acme Inc"}

	diff := diffLeads(before, after)

	if !strings.Contains(diff, `name: "Acme" -> "Acme Corp"`) {
		t.Fatalf("diff missing name change: %q", diff)
	}
	if !strings.Contains(diff, `status: "New" -> "Won"`) {
		t.Fatalf("diff missing status change: %q", diff)
	}
	if strings.Contains(diff, "company") {
		t.Fatalf("diff should skip unchanged fields: %q", diff)
	}
}

func TestDiffLeadsValue(t *testing.T) {
	v1, v2 := 100.0, 250.5
	before := &repository.Lead{Value: &v1}
	after := &repository.Lead{Value: &v2}

	diff := diffLeads(before, after)
	if !strings.Contains(diff, `value: "100" -> "250.5"`) {
		t.Fatalf("diff missing value change: %q", diff)
	}
}

func TestDiffLeadsIdentical(t *testing.T) {
	lead := &repository.Lead{Name: "Same"}
	if diff := diffLeads(lead, lead); diff != "" {
		t.Fatalf("expected empty diff, got %q", diff)
	}
}
