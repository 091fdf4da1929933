package handlers

import (
	"net/http"

	"github.com/devflow-dev/devflow/internal/services"
	"github.com/devflow-dev/devflow/internal/types"
	"github.com/devflow-dev/devflow/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required,min=3"`
	Description *string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=3"`
	Description *string `json:"description"`
}

func (h *Handler) CreateProject(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	var body CreateProjectRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.Error(err)
		return
	}

	project, err := h.Projects.Create(ctx.Request.Context(), caller, body.Name, body.Description)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewProjectResponse(project))
}

func (h *Handler) ListProjects(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	projects, err := h.Projects.List(ctx.Request.Context(), caller)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewProjectResponses(projects))
}

func (h *Handler) GetProject(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	projectID, err := utils.UUIDParam(ctx, types.ParamProjectID)
	if err != nil {
		ctx.Error(err)
		return
	}

	project, err := h.Projects.Get(ctx.Request.Context(), caller, projectID)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewProjectResponse(project))
}

func (h *Handler) UpdateProject(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	projectID, err := utils.UUIDParam(ctx, types.ParamProjectID)
	if err != nil {
		ctx.Error(err)
		return
	}

	var body UpdateProjectRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.Error(err)
		return
	}

	project, err := h.Projects.Update(ctx.Request.Context(), caller, projectID, services.UpdateProjectInput{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewProjectResponse(project))
}

func (h *Handler) DeleteProject(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	projectID, err := utils.UUIDParam(ctx, types.ParamProjectID)
	if err != nil {
		ctx.Error(err)
		return
	}

	if err := h.Projects.Delete(ctx.Request.Context(), caller, projectID); err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Project deleted successfully"})
}
