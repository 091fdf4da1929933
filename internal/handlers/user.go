package handlers

import (
	"net/http"
	"strings"

	"github.com/devflow-dev/devflow/internal/apperr"
	"github.com/devflow-dev/devflow/internal/models"
	"github.com/devflow-dev/devflow/internal/services"
	"github.com/devflow-dev/devflow/internal/types"
	"github.com/devflow-dev/devflow/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=4"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=4"`
	Role     *string `json:"role"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *Handler) CreateUser(ctx *gin.Context) {
	var body CreateUserRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.Error(err)
		return
	}

	user, err := h.Users.Create(ctx.Request.Context(), services.CreateUserInput{
		Name:     strings.TrimSpace(body.Name),
		Email:    normalizeEmail(body.Email),
		Password: body.Password,
	})
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewUserResponse(user))
}

func (h *Handler) ListUsers(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	users, err := h.Users.List(ctx.Request.Context(), caller)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponses(users))
}

func (h *Handler) GetUser(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	userID, err := utils.UUIDParam(ctx, types.ParamUserID)
	if err != nil {
		ctx.Error(err)
		return
	}

	user, err := h.Users.Get(ctx.Request.Context(), caller, userID)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}

func (h *Handler) UpdateUser(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	userID, err := utils.UUIDParam(ctx, types.ParamUserID)
	if err != nil {
		ctx.Error(err)
		return
	}

	var body UpdateUserRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.Error(err)
		return
	}

	input := services.UpdateUserInput{Name: body.Name, Password: body.Password}
	if body.Email != nil {
		email := normalizeEmail(*body.Email)
		input.Email = &email
	}
	if body.Role != nil {
		role, err := models.ParseRole(*body.Role)
		if err != nil {
			ctx.Error(apperr.Validation(err))
			return
		}
		input.Role = &role
	}

	user, err := h.Users.Update(ctx.Request.Context(), caller, userID, input)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(user))
}

func (h *Handler) DeleteUser(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	userID, err := utils.UUIDParam(ctx, types.ParamUserID)
	if err != nil {
		ctx.Error(err)
		return
	}

	if err := h.Users.Delete(ctx.Request.Context(), caller, userID); err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "User deleted successfully"})
}
