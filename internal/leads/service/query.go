package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/leads/domain"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/policy"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/repository"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/transport"
	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
)

// ListQuery carries listing filters from the handler.
type ListQuery struct {
	Status     string
	Source     string
	Product    string
	Tag        string
	AssignedTo *uuid.UUID
	Starred    bool
	Search     string
	Trash      bool
	SortBy     string
	SortDesc   bool
	Page       int
}

// Get returns one lead.
func (s *Service) Get(ctx context.Context, p domain.Principal, id uuid.UUID) (*transport.LeadResult, error) {
	if err := policy.Authorize(p, domain.OpView, nil); err != nil {
		return nil, err
	}
	lead, err := s.loadLead(ctx, id)
	if err != nil {
		return nil, err
	}
	return &transport.LeadResult{
		Message: "Lead loaded",
		Success: true,
		Lead:    toLeadResponse(lead, p.UserID),
	}, nil
}

// List returns one page of leads, 50 per page. Trash flips the view to
// soft-deleted leads.
func (s *Service) List(ctx context.Context, p domain.Principal, q ListQuery) (*transport.LeadListResult, error) {
	if err := policy.Authorize(p, domain.OpView, nil); err != nil {
		return nil, err
	}

	params := repository.ListParams{
		Status:     q.Status,
		Source:     q.Source,
		Product:    q.Product,
		Tag:        q.Tag,
		AssignedTo: q.AssignedTo,
		Search:     q.Search,
		Trash:      q.Trash,
		SortBy:     q.SortBy,
		SortDesc:   q.SortDesc,
		Page:       q.Page,
	}
	if q.Starred {
		params.StarredBy = &p.UserID
	}
	// Scoped viewers only see their own book, whatever filter they sent.
	if !policy.CanViewAll(p) {
		params.AssignedTo = &p.UserID
	}

	result, err := s.store.List(ctx, params)
	if err != nil {
		return nil, apperr.Internal("could not list leads", err)
	}

	leads := make([]*transport.LeadResponse, 0, len(result.Leads))
	for _, lead := range result.Leads {
		leads = append(leads, toLeadResponse(lead, p.UserID))
	}

	pages := result.Total / repository.PageSize
	if result.Total%repository.PageSize != 0 {
		pages++
	}
	return &transport.LeadListResult{
		Message: "Leads loaded",
		Success: true,
		Leads:   leads,
		Total:   result.Total,
		Page:    result.Page,
		Pages:   pages,
	}, nil
}

// Search is a thin wrapper over List with only a search term.
func (s *Service) Search(ctx context.Context, p domain.Principal, term string, page int) (*transport.LeadListResult, error) {
	return s.List(ctx, p, ListQuery{Search: term, Page: page})
}

// Timeline returns the merged note/action/audit history of a lead.
func (s *Service) Timeline(ctx context.Context, p domain.Principal, id uuid.UUID) (*transport.TimelineResult, error) {
	if err := policy.Authorize(p, domain.OpView, nil); err != nil {
		return nil, err
	}
	if _, err := s.loadLead(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.store.Timeline(ctx, id)
	if err != nil {
		return nil, apperr.Internal("could not load timeline", err)
	}
	return &transport.TimelineResult{
		Message: "Timeline loaded",
		Success: true,
		Entries: toTimelineResponse(entries),
	}, nil
}

// CheckDuplicatePhone is the interactive pre-submit phone check.
func (s *Service) CheckDuplicatePhone(ctx context.Context, p domain.Principal, rawPhone string, excludeID *uuid.UUID) (*transport.DuplicatePhoneResult, error) {
	if p.IsZero() {
		return nil, apperr.Unauthorized("you must be signed in")
	}

	dup, err := s.detector.CheckPhone(ctx, rawPhone, excludeID)
	if err != nil {
		return nil, apperr.Internal("duplicate check failed", err)
	}
	result := &transport.DuplicatePhoneResult{
		Message: "No duplicate found",
		Success: true,
		Exists:  dup.Exists,
	}
	if dup.Exists {
		result.Message = "A lead with this phone number already exists"
		result.LeadID = &dup.LeadID
		result.LeadName = dup.LeadName
	}
	return result, nil
}

// CheckDuplicateLead returns advisory matches on email or phone.
func (s *Service) CheckDuplicateLead(ctx context.Context, p domain.Principal, email, rawPhone string, excludeID *uuid.UUID) (*transport.DuplicateLeadResult, error) {
	if p.IsZero() {
		return nil, apperr.Unauthorized("you must be signed in")
	}

	matches, err := s.detector.CheckLead(ctx, email, rawPhone, excludeID)
	if err != nil {
		return nil, apperr.Internal("duplicate check failed", err)
	}

	out := make([]transport.DuplicateMatch, 0, len(matches))
	for _, m := range matches {
		out = append(out, transport.DuplicateMatch{
			LeadID:  m.LeadID,
			Name:    m.Name,
			Company: m.Company,
			Email:   m.Email,
			Phone:   m.Phone,
		})
	}
	return &transport.DuplicateLeadResult{
		Message: "Duplicate check complete",
		Success: true,
		Matches: out,
	}, nil
}

// ListNotes returns every note on a lead, newest first.
func (s *Service) ListNotes(ctx context.Context, p domain.Principal, leadID uuid.UUID) (*transport.NoteListResult, error) {
	if err := policy.Authorize(p, domain.OpView, nil); err != nil {
		return nil, err
	}
	if _, err := s.loadLead(ctx, leadID); err != nil {
		return nil, err
	}

	notes, err := s.store.ListNotes(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, apperr.Internal("could not list notes", err)
	}

	out := make([]*transport.NoteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, toNoteResponse(note))
	}
	return &transport.NoteListResult{Message: "Notes loaded", Success: true, Notes: out}, nil
}
