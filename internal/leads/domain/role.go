// Package domain holds the role model and operation catalogue the
// authorization policy is written against.
package domain

// RoleKind tags the closed set of role variants. Custom roles carry an
// explicit permission set instead of a kind-wide grant.
type RoleKind int

const (
	RoleAdmin RoleKind = iota
	RoleMarketing
	RoleSales
	RoleCustom
)

// Permission names a single grantable capability for custom roles.
type Permission string

const (
	PermLeadCreate     Permission = "leads:create"
	PermLeadEdit       Permission = "leads:edit"
	PermLeadDelete     Permission = "leads:delete"
	PermLeadAssign     Permission = "leads:assign"
	PermLeadBulk       Permission = "leads:bulk"
	PermLeadNote       Permission = "leads:note"
	PermLeadAction     Permission = "leads:action"
	PermLeadViewAll    Permission = "leads:view_all"
	PermLeadStatusEdit Permission = "leads:status"
)

// Role is a tagged union over the built-in roles plus tenant-defined
// custom roles. Permissions is only consulted when Kind is RoleCustom.
type Role struct {
	Kind        RoleKind
	Permissions map[Permission]bool
}

func Admin() Role     { return Role{Kind: RoleAdmin} }
func Marketing() Role { return Role{Kind: RoleMarketing} }
func Sales() Role     { return Role{Kind: RoleSales} }

func Custom(perms ...Permission) Role {
	set := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return Role{Kind: RoleCustom, Permissions: set}
}

// ParseRole maps the wire representation of a role onto the union.
// Unknown role names become custom roles with the given permissions, so
// a tenant-defined role is never silently promoted to a built-in.
func ParseRole(name string, permissions []string) Role {
	switch name {
	case "ADMIN":
		return Admin()
	case "MARKETING":
		return Marketing()
	case "SALES":
		return Sales()
	default:
		perms := make([]Permission, 0, len(permissions))
		for _, p := range permissions {
			perms = append(perms, Permission(p))
		}
		return Custom(perms...)
	}
}

// Has reports whether a custom role carries the permission. Built-in
// kinds never consult the permission set.
func (r Role) Has(p Permission) bool {
	if r.Kind != RoleCustom {
		return false
	}
	return r.Permissions[p]
}

func (r Role) String() string {
	switch r.Kind {
	case RoleAdmin:
		return "ADMIN"
	case RoleMarketing:
		return "MARKETING"
	case RoleSales:
		return "SALES"
	default:
		return "CUSTOM"
	}
}
