// Package policy decides whether a caller may act on a resource.
package policy

import (
	"github.com/devflow-dev/devflow/internal/apperr"
	"github.com/devflow-dev/devflow/internal/auth"
	"github.com/google/uuid"
)

var ErrNotOwner = apperr.Unauthorized(apperr.ReasonNotOwner, "You do not have permission to access this resource")

// Authorize allows administrators and the owner of the resource.
func Authorize(identity auth.Identity, ownerID uuid.UUID) error {
	if identity.IsAdmin() || identity.ID == ownerID {
		return nil
	}
	return ErrNotOwner
}

// RequireAdmin allows administrators only.
func RequireAdmin(identity auth.Identity) error {
	if identity.IsAdmin() {
		return nil
	}
	return ErrNotOwner
}
