package handlers

import (
	"net/http"

	"github.com/devflow-dev/devflow/internal/types"
	"github.com/devflow-dev/devflow/internal/utils"
	"github.com/gin-gonic/gin"
)

type ColumnRequest struct {
	Name string `json:"name" binding:"required,min=3"`
}

func (h *Handler) CreateColumn(ctx *gin.Context) {
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

	var body ColumnRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.Error(err)
		return
	}

	column, err := h.Columns.Create(ctx.Request.Context(), caller, projectID, body.Name)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewColumnResponse(column))
}

func (h *Handler) ListColumns(ctx *gin.Context) {
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

	columns, err := h.Columns.List(ctx.Request.Context(), caller, projectID)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewColumnResponses(columns))
}

func (h *Handler) UpdateColumn(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	columnID, err := utils.UUIDParam(ctx, types.ParamColumnID)
	if err != nil {
		ctx.Error(err)
		return
	}

	var body ColumnRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.Error(err)
		return
	}

	column, err := h.Columns.Rename(ctx.Request.Context(), caller, columnID, body.Name)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewColumnResponse(column))
}

func (h *Handler) DeleteColumn(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	columnID, err := utils.UUIDParam(ctx, types.ParamColumnID)
	if err != nil {
		ctx.Error(err)
		return
	}

	if err := h.Columns.Delete(ctx.Request.Context(), caller, columnID); err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Column deleted successfully"})
}
