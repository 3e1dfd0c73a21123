package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/audit"
	"github.com/mafiaidola/leads-manager-sub000/internal/events"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/domain"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/policy"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/transport"
	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
)

// Bulk operations authorize once for the whole batch, apply one
// multi-row update and write exactly one aggregated audit entry. The
// row update is a single statement; the audit write stays outside any
// transaction because audit is advisory and must never roll back the
// mutation.

func (s *Service) BulkUpdateStatus(ctx context.Context, p domain.Principal, req transport.BulkStatusRequest) (*transport.BulkResult, error) {
	if err := policy.Authorize(p, domain.OpBulkUpdateStatus, nil); err != nil {
		return nil, err
	}
	if err := s.requireKnownStatus(ctx, req.Status); err != nil {
		return nil, err
	}

	count, err := s.store.BulkUpdateStatus(ctx, req.IDs, req.Status, p.UserID)
	if err != nil {
		return nil, apperr.Internal("bulk status update failed", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionBulkUpdate,
		EntityType: entityLead,
		EntityID:   audit.JoinIDs(req.IDs),
		Details:    fmt.Sprintf("Status set to %q on %d leads", req.Status, count),
		UserName:   p.Name,
	})
	s.publishBulk(ctx, p, req.IDs, "status")

	return &transport.BulkResult{
		Message: fmt.Sprintf("Updated %d leads", count),
		Success: true,
		Count:   count,
	}, nil
}

// BulkAssign verifies the target before any write: an inactive or
// missing target aborts the whole batch with zero leads modified.
func (s *Service) BulkAssign(ctx context.Context, p domain.Principal, req transport.BulkAssignRequest) (*transport.BulkResult, error) {
	if err := policy.Authorize(p, domain.OpBulkAssign, nil); err != nil {
		return nil, err
	}
	if err := s.requireActiveUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	count, err := s.store.BulkAssign(ctx, req.IDs, req.UserID, p.UserID)
	if err != nil {
		return nil, apperr.Internal("bulk assign failed", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionBulkUpdate,
		EntityType: entityLead,
		EntityID:   audit.JoinIDs(req.IDs),
		Details:    fmt.Sprintf("Assigned %d leads to %s", count, s.userName(ctx, req.UserID)),
		UserName:   p.Name,
	})
	s.publishBulk(ctx, p, req.IDs, "assign")

	return &transport.BulkResult{
		Message: fmt.Sprintf("Assigned %d leads", count),
		Success: true,
		Count:   count,
	}, nil
}

func (s *Service) BulkSoftDelete(ctx context.Context, p domain.Principal, req transport.BulkDeleteRequest) (*transport.BulkResult, error) {
	if err := policy.Authorize(p, domain.OpBulkSoftDelete, nil); err != nil {
		return nil, err
	}

	count, err := s.store.BulkSoftDelete(ctx, req.IDs, p.UserID)
	if err != nil {
		return nil, apperr.Internal("bulk delete failed", err)
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionBulkDelete,
		EntityType: entityLead,
		EntityID:   audit.JoinIDs(req.IDs),
		Details:    fmt.Sprintf("Moved %d leads to trash", count),
		UserName:   p.Name,
	})
	s.publishBulk(ctx, p, req.IDs, "delete")

	return &transport.BulkResult{
		Message: fmt.Sprintf("Moved %d leads to trash", count),
		Success: true,
		Count:   count,
	}, nil
}

func (s *Service) publishBulk(ctx context.Context, p domain.Principal, ids []uuid.UUID, operation string) {
	s.bus.Publish(ctx, events.LeadsBulkUpdated{
		BaseEvent: events.NewBaseEvent(),
		LeadIDs:   ids,
		Operation: operation,
		ActorID:   p.UserID,
		ActorName: p.Name,
	})
}
