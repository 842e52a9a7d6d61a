package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/dorkdesk-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server exposing the workspace state API
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService      driving.AuthService
	workspaceService driving.WorkspaceService

	// Infrastructure
	db Pinger // PostgreSQL health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "127.0.0.1",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	workspaceService driving.WorkspaceService,
	db Pinger, // can be nil
) *Server {
	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		authService:      authService,
		workspaceService: workspaceService,
		db:               db,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authService)
	auth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(h)
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.Handle("POST /api/v1/auth/logout", auth(s.handleLogout))

	// State snapshot
	s.router.Handle("GET /api/v1/state", auth(s.handleGetState))

	// Category endpoints
	s.router.Handle("POST /api/v1/categories", auth(s.handleCreateCategory))
	s.router.Handle("PUT /api/v1/categories/{key}", auth(s.handleRenameCategory))
	s.router.Handle("DELETE /api/v1/categories/{key}", auth(s.handleDeleteCategory))
	s.router.Handle("POST /api/v1/categories/{key}/activate", auth(s.handleActivateCategory))

	// Dork endpoints
	s.router.Handle("POST /api/v1/categories/{key}/dorks", auth(s.handleAddDork))
	s.router.Handle("PUT /api/v1/categories/{key}/dorks/{index}", auth(s.handleEditDork))
	s.router.Handle("POST /api/v1/categories/{key}/dorks/delete", auth(s.handleDeleteDorks))
	s.router.Handle("POST /api/v1/categories/{key}/dorks/move", auth(s.handleMoveDorks))
	s.router.Handle("PUT /api/v1/categories/{key}/tooltips", auth(s.handleSetTooltip))

	// Selection endpoints
	s.router.Handle("POST /api/v1/categories/{key}/selection/toggle", auth(s.handleToggleChecked))
	s.router.Handle("PUT /api/v1/categories/{key}/selection", auth(s.handleSetChecked))
	s.router.Handle("POST /api/v1/categories/{key}/selection/negate", auth(s.handleToggleNegated))
	s.router.Handle("POST /api/v1/categories/{key}/selection/group", auth(s.handleMakeOrGroup))
	s.router.Handle("DELETE /api/v1/categories/{key}/selection/groups", auth(s.handleClearGroups))

	// Variables and search engine
	s.router.Handle("PUT /api/v1/variables/{name}", auth(s.handleSetVariable))
	s.router.Handle("PUT /api/v1/engine", auth(s.handleSetSearchEngine))

	// Profile endpoints
	s.router.Handle("POST /api/v1/profiles", auth(s.handleSaveProfile))
	s.router.Handle("POST /api/v1/profiles/{name}/apply", auth(s.handleApplyProfile))
	s.router.Handle("DELETE /api/v1/profiles/{name}", auth(s.handleDeleteProfile))

	// Browser launch
	s.router.Handle("POST /api/v1/open", auth(s.handleOpenInBrowser))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
