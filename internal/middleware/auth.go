package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/devflow-dev/devflow/internal/apperr"
	"github.com/devflow-dev/devflow/internal/auth"
	"github.com/devflow-dev/devflow/internal/models"
	"github.com/devflow-dev/devflow/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	errMissingHeader       = apperr.Unauthorized(apperr.ReasonMissingHeader, "Missing or invalid Authorization header")
	errSecretNotConfigured = apperr.Unauthorized(apperr.ReasonSecretNotConfigured, "JWT secret is not configured")
	errStaleIdentity       = apperr.Unauthorized(apperr.ReasonStaleIdentity, "Invalid or expired token")
)

type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// FailureRecorder counts rejected requests by reason.
type FailureRecorder interface {
	AuthFailed(reason string)
}

// AuthMiddleware verifies the bearer token and checks that the user it names
// still exists with the same email and role. The resulting auth.Identity is
// stored in the request context.
func AuthMiddleware(tokens *auth.TokenService, users UserLookup, failures FailureRecorder) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, err := authenticate(ctx, tokens, users)
		if err != nil {
			if failures != nil {
				failures.AuthFailed(failureReason(err))
			}
			ctx.Error(err)
			ctx.Abort()
			return
		}

		utils.SetCurrentUser(ctx, identity)
		ctx.Next()
	}
}

func authenticate(ctx *gin.Context, tokens *auth.TokenService, users UserLookup) (auth.Identity, error) {
	authHeader := ctx.GetHeader("Authorization")

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return auth.Identity{}, errMissingHeader
	}

	if !tokens.Configured() {
		return auth.Identity{}, errSecretNotConfigured
	}

	claims, err := tokens.Verify(parts[1])
	if err != nil {
		return auth.Identity{}, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return auth.Identity{}, errStaleIdentity.Wrap(err)
	}

	user, err := users.FindByID(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.Identity{}, errStaleIdentity.Wrap(err)
		}
		return auth.Identity{}, err
	}

	if user.Email != claims.Email || user.Role != claims.Role {
		return auth.Identity{}, errStaleIdentity
	}

	return auth.Identity{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func failureReason(err error) string {
	if reason := apperr.ReasonOf(err); reason != "" {
		return string(reason)
	}
	return "internal"
}
