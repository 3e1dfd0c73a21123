// Package policy is the pure authorization decision function for lead
// operations. It has no side effects and touches no storage; callers load
// the target lead and hand its assignment to Authorize.
package policy

import (
	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/leads/domain"
	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
)

// Target is the slice of a lead the policy needs. Nil means the operation
// has no existing target (create, bulk ops validated as a unit).
type Target struct {
	AssignedTo *uuid.UUID
}

// Authorize decides whether principal may perform op on target. Denials
// carry the user-facing reason and are returned verbatim to the caller.
func Authorize(p domain.Principal, op domain.Operation, target *Target) error {
	if p.IsZero() {
		return apperr.Unauthorized("you must be signed in")
	}

	// Bookmarking and reading are personal, not data mutations.
	if op == domain.OpToggleStar || op == domain.OpView {
		return nil
	}

	switch p.Role.Kind {
	case domain.RoleAdmin:
		return nil
	case domain.RoleMarketing:
		return authorizeMarketing(op)
	case domain.RoleSales:
		return authorizeSales(p, op, target)
	case domain.RoleCustom:
		return authorizeCustom(p, op)
	}
	return apperr.Forbidden("unknown role")
}

func authorizeMarketing(op domain.Operation) error {
	switch op {
	case domain.OpCreate, domain.OpTransfer, domain.OpBulkAssign:
		return nil
	case domain.OpUpdate:
		return apperr.Forbidden("marketing cannot edit leads")
	case domain.OpUpdateStatus, domain.OpBulkUpdateStatus:
		return apperr.Forbidden("marketing cannot change lead status")
	case domain.OpAddNote:
		return apperr.Forbidden("marketing cannot add notes")
	case domain.OpAddAction:
		return apperr.Forbidden("marketing cannot log actions")
	case domain.OpSoftDelete, domain.OpRestore, domain.OpPermanentDelete, domain.OpBulkSoftDelete:
		return apperr.Forbidden("only admins can delete or restore leads")
	}
	return apperr.Forbidden("operation not permitted for marketing")
}

func authorizeSales(p domain.Principal, op domain.Operation, target *Target) error {
	switch op {
	case domain.OpUpdate, domain.OpUpdateStatus, domain.OpAddNote, domain.OpAddAction:
		if target == nil || target.AssignedTo == nil || *target.AssignedTo != p.UserID {
			return apperr.Forbidden("this lead is not assigned to you")
		}
		return nil
	case domain.OpCreate:
		return apperr.Forbidden("sales cannot create leads")
	case domain.OpTransfer, domain.OpBulkAssign:
		return apperr.Forbidden("only admins and marketing can reassign leads")
	case domain.OpSoftDelete, domain.OpRestore, domain.OpPermanentDelete, domain.OpBulkSoftDelete:
		return apperr.Forbidden("only admins can delete or restore leads")
	case domain.OpBulkUpdateStatus:
		return apperr.Forbidden("sales cannot run bulk operations")
	}
	return apperr.Forbidden("operation not permitted for sales")
}

func authorizeCustom(p domain.Principal, op domain.Operation) error {
	required, ok := requiredPermission(op)
	if !ok {
		return apperr.Forbidden("operation not permitted for this role")
	}
	if !p.Role.Has(required) {
		return apperr.Forbidden("your role lacks the " + string(required) + " permission")
	}
	return nil
}

func requiredPermission(op domain.Operation) (domain.Permission, bool) {
	switch op {
	case domain.OpCreate:
		return domain.PermLeadCreate, true
	case domain.OpUpdate:
		return domain.PermLeadEdit, true
	case domain.OpUpdateStatus:
		return domain.PermLeadStatusEdit, true
	case domain.OpTransfer, domain.OpBulkAssign:
		return domain.PermLeadAssign, true
	case domain.OpSoftDelete, domain.OpRestore, domain.OpPermanentDelete:
		return domain.PermLeadDelete, true
	case domain.OpAddNote:
		return domain.PermLeadNote, true
	case domain.OpAddAction:
		return domain.PermLeadAction, true
	case domain.OpBulkUpdateStatus, domain.OpBulkSoftDelete:
		return domain.PermLeadBulk, true
	}
	return "", false
}

// CanViewAll reports whether listings show the whole lead book. Built-in
// roles all see everything; a custom role without the view-all permission
// is scoped to its own assignments.
func CanViewAll(p domain.Principal) bool {
	switch p.Role.Kind {
	case domain.RoleAdmin, domain.RoleMarketing, domain.RoleSales:
		return true
	case domain.RoleCustom:
		return p.Role.Has(domain.PermLeadViewAll)
	}
	return false
}

// CanChangeAssignment reports whether the principal may set a lead's
// assignee through a plain update. Anyone else's submitted assignedTo is
// silently ignored rather than rejected.
func CanChangeAssignment(p domain.Principal) bool {
	switch p.Role.Kind {
	case domain.RoleAdmin:
		return true
	case domain.RoleCustom:
		return p.Role.Has(domain.PermLeadAssign)
	}
	return false
}
