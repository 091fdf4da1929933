package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Checker interface {
	Check(ctx context.Context) error
}

// HealthCheck reports 503 when the database cannot be reached.
func (h *Handler) HealthCheck(c *gin.Context) {
	status, database, code := "ok", "ok", http.StatusOK

	if h.Database != nil {
		if err := h.Database.Check(c.Request.Context()); err != nil {
			log.Printf("Health check failed: %v", err)
			status, database, code = "degraded", "unavailable", http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"database":  database,
		"message":   "DevFlow is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
