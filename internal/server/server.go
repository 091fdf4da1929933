// Package server assembles the HTTP API from configuration and a database.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/devflow-dev/devflow/internal/auth"
	"github.com/devflow-dev/devflow/internal/config"
	"github.com/devflow-dev/devflow/internal/handlers"
	"github.com/devflow-dev/devflow/internal/health"
	"github.com/devflow-dev/devflow/internal/metrics"
	"github.com/devflow-dev/devflow/internal/middleware"
	"github.com/devflow-dev/devflow/internal/realtime"
	"github.com/devflow-dev/devflow/internal/router"
	"github.com/devflow-dev/devflow/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Options overrides collaborators that tests replace.
type Options struct {
	Hasher *auth.PasswordHasher
	Tokens *auth.TokenService
	// GitHub replaces the OAuth linker built from config.
	GitHub *auth.Linker
}

type Server struct {
	engine  *gin.Engine
	hub     *realtime.Hub
	metrics *metrics.Metrics
	port    string
}

// New wires stores, services and handlers on top of conn.
func New(cfg config.Config, conn *gorm.DB, opts Options) *Server {
	hasher := opts.Hasher
	if hasher == nil {
		hasher = auth.NewPasswordHasher()
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = auth.NewTokenService(cfg.JWTSecret)
	}
	if !tokens.Configured() {
		log.Println("JWT_SECRET is not set; logins will fail and protected routes will reject every request")
	}

	stores := services.NewStores(conn)
	hub := realtime.NewHub()
	m := metrics.New()

	projects := services.NewProjectService(stores, hub)
	columns := services.NewColumnService(stores, projects, hub)

	linker := opts.GitHub
	if linker == nil && cfg.GitHub.Enabled() {
		oauth := auth.NewGitHubOAuthConfig(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.RedirectURI)
		client := auth.NewGitHubClient(&http.Client{Timeout: 10 * time.Second})
		linker = auth.NewLinker(oauth, client, stores.Users, stores.Accounts, tokens)
	}

	h := &handlers.Handler{
		Auth:           services.NewAuthService(stores, hasher, tokens),
		Users:          services.NewUserService(stores, hasher),
		Projects:       projects,
		Columns:        columns,
		Cards:          services.NewCardService(stores, columns, hub),
		GitHub:         linker,
		Database:       health.NewDatabaseCheck(conn),
		Hub:            hub,
		AllowedOrigins: cfg.AllowedOrigins(),
		SecureCookies:  strings.HasPrefix(cfg.GitHub.RedirectURI, "https://"),
	}

	guard := middleware.AuthMiddleware(tokens, stores.Users, m)

	return &Server{
		engine:  router.NewRouter(h, guard, m),
		hub:     hub,
		metrics: m,
		port:    cfg.Port,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Hub() *realtime.Hub {
	return s.hub
}

// Serve listens on the configured port until ctx ends, then drains
// in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", s.port)
		serveErr <- srv.ListenAndServe()
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return handleErr(<-serveErr)
	case err := <-serveErr:
		return handleErr(err)
	}
}
