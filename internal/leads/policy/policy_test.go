package policy

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mafiaidola/leads-manager-sub000/internal/leads/domain"
	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
)

func principal(role domain.Role) domain.Principal {
	return domain.Principal{UserID: uuid.New(), Name: "Test User", Role: role}
}

func TestZeroPrincipalIsUnauthorized(t *testing.T) {
	err := Authorize(domain.Principal{}, domain.OpUpdate, nil)
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAdminMayDoEverything(t *testing.T) {
	p := principal(domain.Admin())
	ops := []domain.Operation{
		domain.OpCreate, domain.OpUpdate, domain.OpUpdateStatus, domain.OpTransfer,
		domain.OpSoftDelete, domain.OpRestore, domain.OpPermanentDelete,
		domain.OpAddNote, domain.OpAddAction,
		domain.OpBulkUpdateStatus, domain.OpBulkAssign, domain.OpBulkSoftDelete,
		domain.OpToggleStar, domain.OpView,
	}
	for _, op := range ops {
		if err := Authorize(p, op, nil); err != nil {
			t.Fatalf("admin denied %s: %v", op, err)
		}
	}
}

func TestMarketingMayCreateButNotMutate(t *testing.T) {
	p := principal(domain.Marketing())

	if err := Authorize(p, domain.OpCreate, nil); err != nil {
		t.Fatalf("marketing should create leads: %v", err)
	}
	if err := Authorize(p, domain.OpTransfer, nil); err != nil {
		t.Fatalf("marketing should transfer leads: %v", err)
	}
	if err := Authorize(p, domain.OpBulkAssign, nil); err != nil {
		t.Fatalf("marketing should bulk assign: %v", err)
	}

	denied := []domain.Operation{
		domain.OpUpdate, domain.OpUpdateStatus, domain.OpAddNote, domain.OpAddAction,
		domain.OpSoftDelete, domain.OpRestore, domain.OpPermanentDelete,
		domain.OpBulkUpdateStatus, domain.OpBulkSoftDelete,
	}
	for _, op := range denied {
		if err := Authorize(p, op, nil); !apperr.Is(err, apperr.KindForbidden) {
			t.Fatalf("marketing should be denied %s, got %v", op, err)
		}
	}
}

func TestSalesMayMutateOwnLeadOnly(t *testing.T) {
	p := principal(domain.Sales())
	mine := &Target{AssignedTo: &p.UserID}
	other := uuid.New()
	theirs := &Target{AssignedTo: &other}

	for _, op := range []domain.Operation{domain.OpUpdate, domain.OpUpdateStatus, domain.OpAddNote, domain.OpAddAction} {
		if err := Authorize(p, op, mine); err != nil {
			t.Fatalf("sales denied %s on own lead: %v", op, err)
		}
		if err := Authorize(p, op, theirs); !apperr.Is(err, apperr.KindForbidden) {
			t.Fatalf("sales should be denied %s on another agent's lead, got %v", op, err)
		}
		if err := Authorize(p, op, &Target{}); !apperr.Is(err, apperr.KindForbidden) {
			t.Fatalf("sales should be denied %s on unassigned lead, got %v", op, err)
		}
	}
}

func TestSalesHardDenials(t *testing.T) {
	p := principal(domain.Sales())
	mine := &Target{AssignedTo: &p.UserID}

	denied := []domain.Operation{
		domain.OpCreate, domain.OpTransfer,
		domain.OpSoftDelete, domain.OpRestore, domain.OpPermanentDelete,
		domain.OpBulkUpdateStatus, domain.OpBulkAssign, domain.OpBulkSoftDelete,
	}
	for _, op := range denied {
		if err := Authorize(p, op, mine); !apperr.Is(err, apperr.KindForbidden) {
			t.Fatalf("sales should be denied %s even on own lead, got %v", op, err)
		}
	}
}

func TestAnyAuthenticatedPrincipalMayStar(t *testing.T) {
	for _, role := range []domain.Role{domain.Admin(), domain.Marketing(), domain.Sales(), domain.Custom()} {
		if err := Authorize(principal(role), domain.OpToggleStar, nil); err != nil {
			t.Fatalf("%s denied star toggle: %v", role, err)
		}
	}
}

func TestCustomRolePermissionGates(t *testing.T) {
	editor := principal(domain.Custom(domain.PermLeadEdit, domain.PermLeadNote))

	if err := Authorize(editor, domain.OpUpdate, nil); err != nil {
		t.Fatalf("custom role with edit permission denied update: %v", err)
	}
	if err := Authorize(editor, domain.OpAddNote, nil); err != nil {
		t.Fatalf("custom role with note permission denied note: %v", err)
	}
	if err := Authorize(editor, domain.OpSoftDelete, nil); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("custom role without delete permission should be denied, got %v", err)
	}
	if err := Authorize(editor, domain.OpBulkAssign, nil); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("custom role without assign permission should be denied, got %v", err)
	}
}

func TestCanChangeAssignment(t *testing.T) {
	if !CanChangeAssignment(principal(domain.Admin())) {
		t.Fatal("admin should change assignment")
	}
	if CanChangeAssignment(principal(domain.Sales())) {
		t.Fatal("sales should not change assignment")
	}
	if CanChangeAssignment(principal(domain.Marketing())) {
		t.Fatal("marketing should not change assignment via update")
	}
	if !CanChangeAssignment(principal(domain.Custom(domain.PermLeadAssign))) {
		t.Fatal("custom role with assign permission should change assignment")
	}
}

func TestCanViewAll(t *testing.T) {
	for _, role := range []domain.Role{domain.Admin(), domain.Marketing(), domain.Sales()} {
		if !CanViewAll(principal(role)) {
			t.Fatalf("built-in role %v should see the whole lead book", role.Kind)
		}
	}
	if CanViewAll(principal(domain.Custom(domain.PermLeadEdit))) {
		t.Fatal("custom role without view-all should be scoped to own leads")
	}
	if !CanViewAll(principal(domain.Custom(domain.PermLeadViewAll))) {
		t.Fatal("custom role with view-all should see everything")
	}
}

func TestParseRoleMapsBuiltins(t *testing.T) {
	if domain.ParseRole("ADMIN", nil).Kind != domain.RoleAdmin {
		t.Fatal("ADMIN should map to the admin kind")
	}
	custom := domain.ParseRole("SUPPORT", []string{"leads:note"})
	if custom.Kind != domain.RoleCustom {
		t.Fatal("unknown role names should map to custom")
	}
	if !custom.Has(domain.PermLeadNote) {
		t.Fatal("custom role should carry its permission set")
	}
}
