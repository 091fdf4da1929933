package utils

import (
	"fmt"

	"github.com/devflow-dev/devflow/internal/apperr"
	"github.com/devflow-dev/devflow/internal/auth"
	"github.com/devflow-dev/devflow/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func SetCurrentUser(ctx *gin.Context, identity auth.Identity) {
	ctx.Set(types.ContextUserKey, identity)
}

func GetCurrentUser(ctx *gin.Context) (auth.Identity, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return auth.Identity{}, fmt.Errorf("User not authenticated")
	}

	identity, ok := user.(auth.Identity)

	if !ok {
		return auth.Identity{}, fmt.Errorf("Invalid user type in context")
	}

	return identity, nil
}

// UUIDParam parses a path parameter. A malformed id is a validation error.
func UUIDParam(ctx *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, apperr.Validation(fmt.Errorf("%s: %w", name, err))
	}
	return id, nil
}
