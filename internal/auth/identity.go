package auth

import (
	"github.com/devflow-dev/devflow/internal/models"
	"github.com/google/uuid"
)

// Identity is the caller as established by the authorization guard.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  models.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}
