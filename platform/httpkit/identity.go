// Package httpkit provides HTTP infrastructure shared by all modules:
// identity extraction, JWT validation, rate limiting and the response
// envelope. It contains no business logic.
package httpkit

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextUserIDKey is the gin context key for the authenticated user id.
	ContextUserIDKey = "userID"
	// ContextRoleKey is the gin context key for the user's role.
	ContextRoleKey = "role"
	// ContextPermissionsKey is the gin context key for a custom role's permission set.
	ContextPermissionsKey = "permissions"
	// ContextUserNameKey is the gin context key for the user's display name.
	ContextUserNameKey = "userName"
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID      uuid.UUID
	Role        string
	Permissions []string
	Name        string
}

// GetIdentity extracts the principal from the gin context. The second
// return is false when the request was not authenticated.
func GetIdentity(c *gin.Context) (Identity, bool) {
	rawID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return Identity{}, false
	}
	userID, ok := rawID.(uuid.UUID)
	if !ok {
		return Identity{}, false
	}

	identity := Identity{UserID: userID}
	if role, ok := c.Get(ContextRoleKey); ok {
		identity.Role, _ = role.(string)
	}
	if perms, ok := c.Get(ContextPermissionsKey); ok {
		identity.Permissions, _ = perms.([]string)
	}
	if name, ok := c.Get(ContextUserNameKey); ok {
		identity.Name, _ = name.(string)
	}
	return identity, true
}
