package handlers

import (
	"net/http"

	"github.com/devflow-dev/devflow/internal/types"
	"github.com/devflow-dev/devflow/internal/utils"
	"github.com/gin-gonic/gin"
)

type CreateCardRequest struct {
	Name string `json:"name" binding:"required,min=3"`
}

type UpdateCardRequest struct {
	Name *string `json:"name" binding:"omitempty,min=3"`
}

type CardOrderRequest struct {
	Order *int `json:"order" binding:"required"`
}

func (h *Handler) CreateCard(ctx *gin.Context) {
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

	var body CreateCardRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.Error(err)
		return
	}

	card, err := h.Cards.Create(ctx.Request.Context(), caller, columnID, body.Name)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewCardResponse(card))
}

func (h *Handler) ListCards(ctx *gin.Context) {
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

	cards, err := h.Cards.List(ctx.Request.Context(), caller, columnID)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCardResponses(cards))
}

func (h *Handler) GetCard(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	cardID, err := utils.UUIDParam(ctx, types.ParamCardID)
	if err != nil {
		ctx.Error(err)
		return
	}

	card, err := h.Cards.Get(ctx.Request.Context(), caller, cardID)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCardResponse(card))
}

func (h *Handler) UpdateCard(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	cardID, err := utils.UUIDParam(ctx, types.ParamCardID)
	if err != nil {
		ctx.Error(err)
		return
	}

	var body UpdateCardRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.Error(err)
		return
	}

	card, err := h.Cards.Update(ctx.Request.Context(), caller, cardID, body.Name)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCardResponse(card))
}

func (h *Handler) UpdateCardOrder(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	cardID, err := utils.UUIDParam(ctx, types.ParamCardID)
	if err != nil {
		ctx.Error(err)
		return
	}

	var body CardOrderRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.Error(err)
		return
	}

	card, err := h.Cards.Move(ctx.Request.Context(), caller, cardID, *body.Order)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCardResponse(card))
}

func (h *Handler) DeleteCard(ctx *gin.Context) {
	caller, err := utils.GetCurrentUser(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}

	cardID, err := utils.UUIDParam(ctx, types.ParamCardID)
	if err != nil {
		ctx.Error(err)
		return
	}

	if err := h.Cards.Delete(ctx.Request.Context(), caller, cardID); err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, types.MessageResponse{Message: "Card deleted successfully"})
}
