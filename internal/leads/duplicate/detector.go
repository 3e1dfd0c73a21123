// Package duplicate detects leads sharing a phone number or email. It is
// used interactively before submission and authoritatively inside
// create/update; the storage layer's unique index is the final backstop.
package duplicate

import (
	"context"

	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/leads/repository"
	"github.com/mafiaidola/leads-manager-sub000/platform/phone"
)

const maxAdvisoryMatches = 5

// Store is the slice of the lead repository the detector reads.
type Store interface {
	FindByPhoneDigits(ctx context.Context, digits string, excludeID *uuid.UUID) (*repository.Lead, error)
	FindSimilar(ctx context.Context, email, phoneDigits string, excludeID *uuid.UUID, limit int) ([]*repository.Lead, error)
}

// PhoneResult reports an authoritative phone collision.
type PhoneResult struct {
	Exists   bool
	LeadID   uuid.UUID
	LeadName string
}

// Match is one advisory similar-lead hit.
type Match struct {
	LeadID  uuid.UUID
	Name    string
	Company string
	Email   string
	Phone   string
}

type Detector struct {
	store  Store
	region string
}

func New(store Store, defaultRegion string) *Detector {
	return &Detector{store: store, region: defaultRegion}
}

// comparableDigits maps raw input onto the digit form leads are stored
// under. Stored phone_digits come from the E.164 representation, so the
// input must take the same route or local formats would never collide.
// Inputs below the comparable minimum are not meaningful and map to "".
func (d *Detector) comparableDigits(rawPhone string) string {
	if !phone.Comparable(rawPhone) {
		return ""
	}
	return phone.Digits(phone.NormalizeE164(rawPhone, d.region))
}

// CheckPhone looks for a non-deleted lead holding the same normalized
// phone. Numbers shorter than the comparable minimum never collide.
func (d *Detector) CheckPhone(ctx context.Context, rawPhone string, excludeID *uuid.UUID) (PhoneResult, error) {
	digits := d.comparableDigits(rawPhone)
	if digits == "" {
		return PhoneResult{}, nil
	}

	lead, err := d.store.FindByPhoneDigits(ctx, digits, excludeID)
	if err != nil {
		if err == repository.ErrNotFound {
			return PhoneResult{}, nil
		}
		return PhoneResult{}, err
	}
	return PhoneResult{Exists: true, LeadID: lead.ID, LeadName: lead.Name}, nil
}

// CheckLead returns up to five advisory matches on email or phone for
// pre-submission warnings. It never blocks a write.
func (d *Detector) CheckLead(ctx context.Context, email, rawPhone string, excludeID *uuid.UUID) ([]Match, error) {
	digits := d.comparableDigits(rawPhone)
	if email == "" && digits == "" {
		return nil, nil
	}

	leads, err := d.store.FindSimilar(ctx, email, digits, excludeID, maxAdvisoryMatches)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(leads))
	for _, lead := range leads {
		matches = append(matches, Match{
			LeadID:  lead.ID,
			Name:    lead.Name,
			Company: lead.Company,
			Email:   lead.Email,
			Phone:   lead.Phone,
		})
	}
	return matches, nil
}
