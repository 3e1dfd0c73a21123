// Package ports declares the narrow interfaces the leads service needs
// from neighbouring modules, so the dependency direction stays inward.
package ports

import (
	"context"

	"github.com/google/uuid"
)

// DirectoryUser is the slice of a user the leads module consumes.
type DirectoryUser struct {
	ID     uuid.UUID
	Name   string
	Email  string
	Role   string
	Active bool
}

// UserDirectory resolves assignment targets and notification audiences.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*DirectoryUser, error)
}

// StatusVocabulary exposes the tenant's configured status keys.
type StatusVocabulary interface {
	HasStatus(ctx context.Context, key string) (bool, error)
	DefaultStatus(ctx context.Context) (string, error)
}
