package handlers

import (
	"github.com/devflow-dev/devflow/internal/auth"
	"github.com/devflow-dev/devflow/internal/realtime"
	"github.com/devflow-dev/devflow/internal/services"
)

// Handler carries the services the HTTP endpoints call into.
type Handler struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Projects *services.ProjectService
	Columns  *services.ColumnService
	Cards    *services.CardService

	// GitHub is nil when OAuth is not configured.
	GitHub *auth.Linker

	Database       Checker
	Hub            *realtime.Hub
	AllowedOrigins []string
	SecureCookies  bool
}
