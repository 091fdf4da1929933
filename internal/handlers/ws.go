package handlers

import (
	"log"
	"net/http"
	"slices"

	"github.com/devflow-dev/devflow/internal/types"
	"github.com/devflow-dev/devflow/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket subscribes the caller to refresh events for a project they can access.
func (h *Handler) WebSocket(ctx *gin.Context) {
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

	if _, err := h.Projects.Get(ctx.Request.Context(), caller, projectID); err != nil {
		ctx.Error(err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(h.AllowedOrigins, origin)
		},
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.Hub.Serve(conn, projectID)
}
