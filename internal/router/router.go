package router

import (
	"time"

	"github.com/devflow-dev/devflow/internal/handlers"
	"github.com/devflow-dev/devflow/internal/metrics"
	"github.com/devflow-dev/devflow/internal/middleware"
	"github.com/devflow-dev/devflow/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter mounts the API under /api. guard is the bearer token middleware.
func NewRouter(h *handlers.Handler, guard gin.HandlerFunc, m *metrics.Metrics) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     h.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Metrics(m), middleware.ErrorHandler())

	r.GET("/metrics", gin.WrapH(m.Handler()))

	projectParam := ":" + types.ParamProjectID
	columnParam := ":" + types.ParamColumnID
	cardParam := ":" + types.ParamCardID

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/ws/"+projectParam, guard, h.WebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/login", h.LoginUser)
			auth.GET("/verify", guard, h.VerifyToken)

			if h.GitHub != nil {
				auth.GET("/github/login", h.GitHubLogin)
				auth.GET("/github/callback", h.GitHubCallback)
			}
		}

		api.POST("/users", h.CreateUser)
		users := api.Group("/users", guard)
		{
			userParam := "/:" + types.ParamUserID
			users.GET("", h.ListUsers)
			users.GET(userParam, h.GetUser)
			users.PATCH(userParam, h.UpdateUser)
			users.DELETE(userParam, h.DeleteUser)
		}

		projects := api.Group("/projects", guard)
		{
			projects.POST("", h.CreateProject)
			projects.GET("", h.ListProjects)
			projects.GET("/"+projectParam, h.GetProject)
			projects.PATCH("/"+projectParam, h.UpdateProject)
			projects.DELETE("/"+projectParam, h.DeleteProject)

			projects.POST("/"+projectParam+"/columns", h.CreateColumn)
			projects.GET("/"+projectParam+"/columns", h.ListColumns)
		}

		columns := api.Group("/columns", guard)
		{
			columns.PATCH("/"+columnParam, h.UpdateColumn)
			columns.DELETE("/"+columnParam, h.DeleteColumn)

			columns.POST("/"+columnParam+"/cards", h.CreateCard)
			columns.GET("/"+columnParam+"/cards", h.ListCards)
		}

		cards := api.Group("/cards", guard)
		{
			cards.GET("/"+cardParam, h.GetCard)
			cards.PATCH("/"+cardParam, h.UpdateCard)
			cards.PATCH("/"+cardParam+"/order", h.UpdateCardOrder)
			cards.DELETE("/"+cardParam, h.DeleteCard)
		}
	}

	return r
}
