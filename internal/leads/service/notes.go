package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/events"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/domain"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/policy"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/repository"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/transport"
	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
)

// AddNote appends a comment to a lead.
func (s *Service) AddNote(ctx context.Context, p domain.Principal, leadID uuid.UUID, req transport.AddNoteRequest) (*transport.NoteResult, error) {
	lead, err := s.loadLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, domain.OpAddNote, &policy.Target{AssignedTo: lead.AssignedTo}); err != nil {
		return nil, err
	}

	note, err := s.store.CreateNote(ctx, repository.CreateNoteParams{
		LeadID:     leadID,
		AuthorID:   &p.UserID,
		AuthorRole: p.Role.String(),
		Type:       repository.NoteTypeComment,
		Message:    req.Message,
	})
	if err != nil {
		return nil, apperr.Internal("could not add note", err)
	}

	return &transport.NoteResult{
		Message: "Note added",
		Success: true,
		Note:    toNoteResponse(note),
	}, nil
}

// AddAction logs an interaction with a lead. It always writes a
// companion SYSTEM note and bumps the lead's last contact time.
func (s *Service) AddAction(ctx context.Context, p domain.Principal, leadID uuid.UUID, req transport.AddActionRequest) (*transport.ActionResult, error) {
	lead, err := s.loadLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, domain.OpAddAction, &policy.Target{AssignedTo: lead.AssignedTo}); err != nil {
		return nil, err
	}
	if !repository.ValidActionType(req.Type) {
		return nil, apperr.Validation("unknown action type").
			WithDetails(map[string]any{"type": req.Type})
	}

	action, err := s.store.CreateAction(ctx, repository.CreateActionParams{
		LeadID:      leadID,
		AuthorID:    p.UserID,
		Type:        req.Type,
		Description: req.Description,
		Outcome:     req.Outcome,
	})
	if err != nil {
		return nil, apperr.Internal("could not log action", err)
	}

	s.systemNote(ctx, leadID,
		fmt.Sprintf("%s logged: %s", req.Type, req.Description),
		repository.NoteTypeSystem,
		map[string]any{"actionId": action.ID.String(), "actionType": req.Type})

	if err := s.store.TouchLastContact(ctx, leadID); err != nil {
		s.log.Error("last contact update failed", "lead_id", leadID, "error", err)
	}

	s.bus.Publish(ctx, events.LeadActionLogged{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     leadID,
		LeadName:   lead.Name,
		ActionType: req.Type,
		AssignedTo: lead.AssignedTo,
		ActorID:    p.UserID,
		ActorName:  p.Name,
	})

	return &transport.ActionResult{
		Message: "Action logged",
		Success: true,
		Action:  toActionResponse(action),
	}, nil
}
