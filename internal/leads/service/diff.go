package service

import (
	"fmt"
	"strings"

	"github.com/mafiaidola/leads-manager-sub000/internal/leads/repository"
)

// diffLeads renders the field-level changes between two lead snapshots
// for the audit message. Only the fields an operator cares about are
// compared.
func diffLeads(before, after *repository.Lead) string {
	var changes []string

	addChange := func(field, from, to string) {
		if from == to {
			return
		}
		changes = append(changes, fmt.Sprintf("%s: %q -> %q", field, from, to))
	}

	addChange("name", before.Name, after.Name)
	addChange("company", before.Company, after.Company)
	addChange("email", before.Email, after.Email)
	addChange("phone", before.Phone, after.Phone)
	addChange("status", before.Status, after.Status)
	addChange("source", before.Source, after.Source)
	addChange("product", before.Product, after.Product)
	addChange("website", before.Website, after.Website)
	addChange("value", formatValue(before.Value), formatValue(after.Value))

	return strings.Join(changes, "; ")
}

func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}
