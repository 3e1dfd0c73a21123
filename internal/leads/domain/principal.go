package domain

import "github.com/google/uuid"

// Principal is the acting user as seen by the policy and the service.
// It is built from the request identity, never from ambient state.
type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

func (p Principal) IsZero() bool {
	return p.UserID == uuid.Nil
}
