// Package service is the lead lifecycle engine: it authorizes, validates,
// applies mutations and fans out the side effects that keep the timeline
// and other users informed.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/audit"
	"github.com/mafiaidola/leads-manager-sub000/internal/events"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/domain"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/duplicate"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/policy"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/ports"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/repository"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/transport"
	"github.com/mafiaidola/leads-manager-sub000/internal/users"
	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
	"github.com/mafiaidola/leads-manager-sub000/platform/phone"
)

const entityLead = "lead"

// Store is what the engine needs from the persistence layer.
type Store interface {
	Create(ctx context.Context, p repository.CreateLeadParams) (*repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Lead, error)
	Update(ctx context.Context, id uuid.UUID, p repository.UpdateLeadParams) (*repository.Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, updatedBy uuid.UUID) (*repository.Lead, error)
	SetAssignee(ctx context.Context, id uuid.UUID, assignee *uuid.UUID, updatedBy uuid.UUID) (*repository.Lead, error)
	TouchLastContact(ctx context.Context, id uuid.UUID) error
	SoftDelete(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID) (*repository.Lead, error)
	Restore(ctx context.Context, id uuid.UUID, updatedBy uuid.UUID) (*repository.Lead, error)
	PermanentDelete(ctx context.Context, id uuid.UUID) error
	ToggleStar(ctx context.Context, id, userID uuid.UUID) (*repository.Lead, error)
	List(ctx context.Context, p repository.ListParams) (*repository.ListResult, error)
	FindByPhoneDigits(ctx context.Context, digits string, excludeID *uuid.UUID) (*repository.Lead, error)
	FindSimilar(ctx context.Context, email, phoneDigits string, excludeID *uuid.UUID, limit int) ([]*repository.Lead, error)
	BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status string, updatedBy uuid.UUID) (int64, error)
	BulkAssign(ctx context.Context, ids []uuid.UUID, assignee uuid.UUID, updatedBy uuid.UUID) (int64, error)
	BulkSoftDelete(ctx context.Context, ids []uuid.UUID, updatedBy uuid.UUID) (int64, error)
	CreateNote(ctx context.Context, p repository.CreateNoteParams) (*repository.Note, error)
	ListNotes(ctx context.Context, leadID uuid.UUID) ([]*repository.Note, error)
	CreateAction(ctx context.Context, p repository.CreateActionParams) (*repository.Action, error)
	Timeline(ctx context.Context, leadID uuid.UUID) ([]*repository.TimelineEntry, error)
}

type Service struct {
	store    Store
	detector *duplicate.Detector
	users    ports.UserDirectory
	vocab    ports.StatusVocabulary
	auditor  *audit.Recorder
	bus      events.Bus
	log      *logger.Logger
	region   string
}

func New(store Store, detector *duplicate.Detector, dir ports.UserDirectory, vocab ports.StatusVocabulary, auditor *audit.Recorder, bus events.Bus, log *logger.Logger, defaultPhoneRegion string) *Service {
	return &Service{
		store:    store,
		detector: detector,
		users:    dir,
		vocab:    vocab,
		auditor:  auditor,
		bus:      bus,
		log:      log,
		region:   defaultPhoneRegion,
	}
}

// Create validates and persists a new lead, then fans out its side
// effects: a creation note, an optional assignment note, an audit entry
// and an async notification to admins and the assignee. Validation and
// the duplicate check both run before any write.
func (s *Service) Create(ctx context.Context, p domain.Principal, req transport.CreateLeadRequest) (*transport.LeadResult, error) {
	if err := policy.Authorize(p, domain.OpCreate, nil); err != nil {
		return nil, err
	}

	if err := validatePhoneInput(req.Phone); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		def, err := s.vocab.DefaultStatus(ctx)
		if err != nil {
			return nil, apperr.Internal("could not load status settings", err)
		}
		status = def
	} else if err := s.requireKnownStatus(ctx, status); err != nil {
		return nil, err
	}

	if req.AssignedTo != nil {
		if err := s.requireActiveUser(ctx, *req.AssignedTo); err != nil {
			return nil, err
		}
	}

	if req.Phone != "" {
		dup, err := s.detector.CheckPhone(ctx, req.Phone, nil)
		if err != nil {
			return nil, apperr.Internal("duplicate check failed", err)
		}
		if dup.Exists {
			return nil, duplicateError(dup.LeadName, dup.LeadID)
		}
	}

	lead, err := s.store.Create(ctx, s.createParams(p, req, status))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			// Lost the race against a concurrent create; the unique
			// index is authoritative.
			return nil, s.duplicateFromIndex(ctx, req.Phone)
		}
		return nil, apperr.Internal("could not create lead", err)
	}

	s.systemNote(ctx, lead.ID, "Lead created", repository.NoteTypeSystem, nil)
	if lead.AssignedTo != nil {
		s.systemNote(ctx, lead.ID,
			fmt.Sprintf("Lead assigned to %s", s.userName(ctx, *lead.AssignedTo)),
			repository.NoteTypeSystem, nil)
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: entityLead,
		EntityID:   lead.ID.String(),
		Details:    fmt.Sprintf("Lead %q created", lead.Name),
		UserName:   p.Name,
	})

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		LeadName:   lead.Name,
		AssignedTo: lead.AssignedTo,
		ActorID:    p.UserID,
		ActorName:  p.Name,
	})

	return &transport.LeadResult{
		Message: "Lead created successfully",
		Success: true,
		Lead:    toLeadResponse(lead, p.UserID),
	}, nil
}

// Update applies a partial edit. Callers without assignment rights have
// their submitted assignedTo silently ignored. A changed phone re-runs
// the duplicate check excluding the lead itself; a changed status is
// recorded and notified like an explicit status transition.
func (s *Service) Update(ctx context.Context, p domain.Principal, id uuid.UUID, req transport.UpdateLeadRequest) (*transport.LeadResult, error) {
	existing, err := s.loadLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, domain.OpUpdate, &policy.Target{AssignedTo: existing.AssignedTo}); err != nil {
		return nil, err
	}

	params := repository.UpdateLeadParams{UpdatedBy: p.UserID}
	params.Name = req.Name
	params.Company = req.Company
	params.Position = req.Position
	params.Email = req.Email
	params.Website = req.Website
	params.Source = req.Source
	params.Product = req.Product
	params.Tags = req.Tags
	params.Currency = req.Currency
	params.Public = req.Public
	if req.Address != nil {
		params.AddressStreet = &req.Address.Street
		params.AddressCity = &req.Address.City
		params.AddressPostal = &req.Address.PostalCode
		params.AddressCountry = &req.Address.Country
	}
	if req.Value.Set {
		params.Value = req.Value.Value
		params.ValueSet = true
	}
	if req.FollowUpDate.Set {
		params.FollowUpDate = req.FollowUpDate.Value
		params.FollowUpDateSet = true
	}

	if req.Status != nil && *req.Status != existing.Status {
		if err := s.requireKnownStatus(ctx, *req.Status); err != nil {
			return nil, err
		}
		params.Status = req.Status
	}

	phoneChanged := false
	if req.Phone != nil && *req.Phone != existing.Phone {
		if err := validatePhoneInput(*req.Phone); err != nil {
			return nil, err
		}
		if *req.Phone != "" {
			dup, err := s.detector.CheckPhone(ctx, *req.Phone, &id)
			if err != nil {
				return nil, apperr.Internal("duplicate check failed", err)
			}
			if dup.Exists {
				return nil, duplicateError(dup.LeadName, dup.LeadID)
			}
		}
		normalized := phone.NormalizeE164(*req.Phone, s.region)
		digits := phone.Digits(normalized)
		code := phone.CountryCode(normalized, s.region)
		params.Phone = &normalized
		params.PhoneDigits = &digits
		params.PhoneCountryCode = &code
		phoneChanged = true
	}

	if req.AssignedTo.Set && policy.CanChangeAssignment(p) {
		if req.AssignedTo.Value != nil {
			if err := s.requireActiveUser(ctx, *req.AssignedTo.Value); err != nil {
				return nil, err
			}
		}
		params.AssignedTo = req.AssignedTo.Value
		params.AssignedToSet = true
	}

	updated, err := s.store.Update(ctx, id, params)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("lead not found")
		case errors.Is(err, repository.ErrDuplicatePhone):
			return nil, s.duplicateFromIndex(ctx, valueOr(req.Phone))
		}
		return nil, apperr.Internal("could not update lead", err)
	}

	if phoneChanged {
		s.systemNote(ctx, id, fmt.Sprintf("Phone updated from %q to %q", existing.Phone, updated.Phone),
			repository.NoteTypePhoneUpdate, map[string]any{"from": existing.Phone, "to": updated.Phone})
	}
	if updated.Status != existing.Status {
		s.recordStatusChange(ctx, p, existing, updated)
	}

	details := diffLeads(existing, updated)
	if details == "" {
		details = "Lead updated"
	}
	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: entityLead,
		EntityID:   id.String(),
		Details:    details,
		UserName:   p.Name,
	})

	if assignmentChanged(existing.AssignedTo, updated.AssignedTo) && updated.AssignedTo != nil {
		s.systemNote(ctx, id,
			fmt.Sprintf("Lead assigned to %s", s.userName(ctx, *updated.AssignedTo)),
			repository.NoteTypeSystem, nil)
		s.bus.Publish(ctx, events.LeadAssigned{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     updated.ID,
			LeadName:   updated.Name,
			AssignedTo: *updated.AssignedTo,
			ActorID:    p.UserID,
			ActorName:  p.Name,
		})
	}

	return &transport.LeadResult{
		Message: "Lead updated successfully",
		Success: true,
		Lead:    toLeadResponse(updated, p.UserID),
	}, nil
}

// UpdateStatus moves a lead between configured status keys. Transitions
// are free-form but always leave a STATUS_CHANGE note, an audit entry
// and an async notification to the assignee.
func (s *Service) UpdateStatus(ctx context.Context, p domain.Principal, id uuid.UUID, status string) (*transport.LeadResult, error) {
	existing, err := s.loadLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, domain.OpUpdateStatus, &policy.Target{AssignedTo: existing.AssignedTo}); err != nil {
		return nil, err
	}
	if err := s.requireKnownStatus(ctx, status); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateStatus(ctx, id, status, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, apperr.Internal("could not update lead status", err)
	}

	if updated.Status != existing.Status {
		s.recordStatusChange(ctx, p, existing, updated)
	}
	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: entityLead,
		EntityID:   id.String(),
		Details:    fmt.Sprintf("Status changed from %q to %q", existing.Status, updated.Status),
		UserName:   p.Name,
	})

	return &transport.LeadResult{
		Message: "Lead status updated",
		Success: true,
		Lead:    toLeadResponse(updated, p.UserID),
	}, nil
}

// Transfer reassigns a lead to another agent.
func (s *Service) Transfer(ctx context.Context, p domain.Principal, id, toUserID uuid.UUID) (*transport.LeadResult, error) {
	existing, err := s.loadLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, domain.OpTransfer, &policy.Target{AssignedTo: existing.AssignedTo}); err != nil {
		return nil, err
	}
	if err := s.requireActiveUser(ctx, toUserID); err != nil {
		return nil, err
	}

	updated, err := s.store.SetAssignee(ctx, id, &toUserID, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, apperr.Internal("could not transfer lead", err)
	}

	previous := "nobody"
	if existing.AssignedTo != nil {
		previous = s.userName(ctx, *existing.AssignedTo)
	}
	next := s.userName(ctx, toUserID)

	s.systemNote(ctx, id, fmt.Sprintf("Lead transferred from %s to %s", previous, next),
		repository.NoteTypeSystem, nil)
	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionTransfer,
		EntityType: entityLead,
		EntityID:   id.String(),
		Details:    fmt.Sprintf("Transferred from %s to %s", previous, next),
		UserName:   p.Name,
	})
	s.bus.Publish(ctx, events.LeadTransferred{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       updated.ID,
		LeadName:     updated.Name,
		FromAssignee: existing.AssignedTo,
		ToAssignee:   toUserID,
		ActorID:      p.UserID,
		ActorName:    p.Name,
	})

	return &transport.LeadResult{
		Message: "Lead transferred successfully",
		Success: true,
		Lead:    toLeadResponse(updated, p.UserID),
	}, nil
}

// Delete moves a lead to the trash.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id uuid.UUID) (*transport.LeadResult, error) {
	existing, err := s.loadLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, domain.OpSoftDelete, &policy.Target{AssignedTo: existing.AssignedTo}); err != nil {
		return nil, err
	}

	deleted, err := s.store.SoftDelete(ctx, id, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, apperr.Internal("could not delete lead", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: entityLead,
		EntityID:   id.String(),
		Details:    fmt.Sprintf("Lead %q moved to trash", deleted.Name),
		UserName:   p.Name,
	})

	return &transport.LeadResult{Message: "Lead moved to trash", Success: true}, nil
}

// Restore brings a soft-deleted lead back.
func (s *Service) Restore(ctx context.Context, p domain.Principal, id uuid.UUID) (*transport.LeadResult, error) {
	if err := policy.Authorize(p, domain.OpRestore, nil); err != nil {
		return nil, err
	}

	restored, err := s.store.Restore(ctx, id, p.UserID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperr.NotFound("lead not found in trash")
		case errors.Is(err, repository.ErrDuplicatePhone):
			return nil, apperr.Conflict("another lead now uses this phone number")
		}
		return nil, apperr.Internal("could not restore lead", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionRestore,
		EntityType: entityLead,
		EntityID:   id.String(),
		Details:    fmt.Sprintf("Lead %q restored from trash", restored.Name),
		UserName:   p.Name,
	})

	return &transport.LeadResult{
		Message: "Lead restored successfully",
		Success: true,
		Lead:    toLeadResponse(restored, p.UserID),
	}, nil
}

// PermanentDelete removes a lead for good, cascading its notes and
// actions. Audit entries survive.
func (s *Service) PermanentDelete(ctx context.Context, p domain.Principal, id uuid.UUID) (*transport.LeadResult, error) {
	existing, err := s.loadLead(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, domain.OpPermanentDelete, nil); err != nil {
		return nil, err
	}

	if err := s.store.PermanentDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, apperr.Internal("could not permanently delete lead", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: entityLead,
		EntityID:   id.String(),
		Details:    fmt.Sprintf("Lead %q permanently deleted", existing.Name),
		UserName:   p.Name,
	})

	return &transport.LeadResult{Message: "Lead permanently deleted", Success: true}, nil
}

// ToggleStar flips the caller's bookmark on the lead. Bookmarking is
// personal, so any authenticated principal may do it.
func (s *Service) ToggleStar(ctx context.Context, p domain.Principal, id uuid.UUID) (*transport.LeadResult, error) {
	if err := policy.Authorize(p, domain.OpToggleStar, nil); err != nil {
		return nil, err
	}

	updated, err := s.store.ToggleStar(ctx, id, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, apperr.Internal("could not update star", err)
	}

	message := "Lead starred"
	if !containsUUID(updated.StarredBy, p.UserID) {
		message = "Lead unstarred"
	}
	return &transport.LeadResult{
		Message: message,
		Success: true,
		Lead:    toLeadResponse(updated, p.UserID),
	}, nil
}

func (s *Service) recordStatusChange(ctx context.Context, p domain.Principal, before, after *repository.Lead) {
	s.noteWithAuthor(ctx, p, after.ID,
		fmt.Sprintf("Status changed from %q to %q", before.Status, after.Status),
		repository.NoteTypeStatusChange,
		map[string]any{"fromStatus": before.Status, "toStatus": after.Status})

	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     after.ID,
		LeadName:   after.Name,
		FromStatus: before.Status,
		ToStatus:   after.Status,
		AssignedTo: after.AssignedTo,
		ActorID:    p.UserID,
		ActorName:  p.Name,
	})
}

func (s *Service) createParams(p domain.Principal, req transport.CreateLeadRequest, status string) repository.CreateLeadParams {
	normalized := phone.NormalizeE164(req.Phone, s.region)
	return repository.CreateLeadParams{
		Name:             req.Name,
		Company:          req.Company,
		Position:         req.Position,
		Email:            req.Email,
		Phone:            normalized,
		PhoneDigits:      phone.Digits(normalized),
		PhoneCountryCode: phone.CountryCode(normalized, s.region),
		Website:          req.Website,
		AddressStreet:    req.Address.Street,
		AddressCity:      req.Address.City,
		AddressPostal:    req.Address.PostalCode,
		AddressCountry:   req.Address.Country,
		Status:           status,
		Source:           req.Source,
		Product:          req.Product,
		Tags:             req.Tags,
		Currency:         req.Currency,
		Value:            req.Value,
		AssignedTo:       req.AssignedTo,
		CreatedBy:        p.UserID,
		Public:           req.Public,
		FollowUpDate:     req.FollowUpDate,
	}
}

func (s *Service) loadLead(ctx context.Context, id uuid.UUID) (*repository.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, apperr.Internal("could not load lead", err)
	}
	return lead, nil
}

func (s *Service) requireKnownStatus(ctx context.Context, status string) error {
	known, err := s.vocab.HasStatus(ctx, status)
	if err != nil {
		return apperr.Internal("could not load status settings", err)
	}
	if !known {
		return apperr.Validation("unknown status").WithDetails(map[string]any{"status": status})
	}
	return nil
}

func (s *Service) requireActiveUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return apperr.NotFound("target user not found")
		}
		return apperr.Internal("could not load target user", err)
	}
	if !user.Active {
		return apperr.Validation("target user is deactivated")
	}
	return nil
}

// systemNote writes an authorless note; failures are logged and dropped
// so an annotation problem never fails the mutation that caused it.
func (s *Service) systemNote(ctx context.Context, leadID uuid.UUID, message, noteType string, meta map[string]any) {
	_, err := s.store.CreateNote(ctx, repository.CreateNoteParams{
		LeadID:  leadID,
		Type:    noteType,
		Message: message,
		Meta:    meta,
	})
	if err != nil {
		s.log.Error("system note write failed", "lead_id", leadID, "error", err)
	}
}

func (s *Service) noteWithAuthor(ctx context.Context, p domain.Principal, leadID uuid.UUID, message, noteType string, meta map[string]any) {
	_, err := s.store.CreateNote(ctx, repository.CreateNoteParams{
		LeadID:     leadID,
		AuthorID:   &p.UserID,
		AuthorRole: p.Role.String(),
		Type:       noteType,
		Message:    message,
		Meta:       meta,
	})
	if err != nil {
		s.log.Error("note write failed", "lead_id", leadID, "error", err)
	}
}

func (s *Service) userName(ctx context.Context, id uuid.UUID) string {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return id.String()
	}
	return user.Name
}

// duplicateFromIndex builds the conflict error after a unique-index
// violation, looking the winner up for a friendly message.
func (s *Service) duplicateFromIndex(ctx context.Context, rawPhone string) error {
	if rawPhone != "" {
		if dup, err := s.detector.CheckPhone(ctx, rawPhone, nil); err == nil && dup.Exists {
			return duplicateError(dup.LeadName, dup.LeadID)
		}
	}
	return apperr.Conflict("a lead with this phone number already exists")
}

func duplicateError(leadName string, leadID uuid.UUID) error {
	return apperr.Conflict(fmt.Sprintf("a lead with this phone number already exists: %s", leadName)).
		WithDetails(map[string]any{"leadId": leadID.String(), "leadName": leadName})
}

func validatePhoneInput(raw string) error {
	if raw == "" {
		return nil
	}
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return apperr.Validation("phone may only contain digits").
				WithDetails(map[string]any{"phone": "digits_only"})
		}
	}
	if phone.Digits(raw) == "" {
		return apperr.Validation("phone may only contain digits").
			WithDetails(map[string]any{"phone": "digits_only"})
	}
	return nil
}

func assignmentChanged(before, after *uuid.UUID) bool {
	switch {
	case before == nil && after == nil:
		return false
	case before == nil || after == nil:
		return true
	default:
		return *before != *after
	}
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func valueOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
