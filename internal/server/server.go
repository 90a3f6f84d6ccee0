// Package server sets up the HTTP server, router and all route definitions.
//
// This is the wiring layer — the composition root where the dependency
// chain is assembled:
//
//	sqlite.DB → service.Registry → handlers → chi routes
//
// Each layer only receives what it needs: services get the repository
// interface, handlers get services, the router gets handlers. main.go stays
// minimal; everything testable lives here or below.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/teamline/internal/auth"
	"github.com/sakif/teamline/internal/handler"
	"github.com/sakif/teamline/internal/middleware"
	sqliteRepo "github.com/sakif/teamline/internal/repository/sqlite"
	"github.com/sakif/teamline/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port      int
	DBPath    string // path to the SQLite database file, or ":memory:"
	JWTSecret string
	// EnableAdminRoutes mounts DELETE /api/admin/clear. Test rigs only —
	// it wipes the entire database without authentication.
	EnableAdminRoutes bool
}

// Server owns the router and the database connection; the connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain and registers every route.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(service.NewRegistry(db, tokens, auth.NewPasswordService(), logger))
	return s, nil
}

// Handler exposes the router — the end-to-end tests drive it through
// httptest without opening a port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start does this itself; Close exists for
// callers that use Handler() directly.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes(svc *service.Registry) {
	// Middleware order matters: request id and real ip first so the logger
	// and recoverer see them.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	authH := handler.NewAuthHandler(svc.Auth, s.logger)
	userH := handler.NewUserHandler(svc.Users, s.logger)
	channelH := handler.NewChannelHandler(svc.Channels, s.logger)
	dmH := handler.NewDmHandler(svc.Dms, s.logger)
	messageH := handler.NewMessageHandler(svc.Messages, s.logger)
	standupH := handler.NewStandupHandler(svc.Standups, s.logger)
	searchH := handler.NewSearchHandler(svc.Search, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authH.HandleRegister)
		r.Post("/auth/login", authH.HandleLogin)
		r.Post("/auth/logout", authH.HandleLogout)

		r.Get("/users", userH.HandleList)
		r.Get("/users/{uID}", userH.HandleProfile)
		r.Put("/users/name", userH.HandleSetName)
		r.Put("/users/email", userH.HandleSetEmail)

		r.Post("/channels", channelH.HandleCreate)
		r.Get("/channels", channelH.HandleList)
		r.Get("/channels/{channelID}", channelH.HandleDetails)
		r.Post("/channels/{channelID}/join", channelH.HandleJoin)
		r.Post("/channels/{channelID}/invite", channelH.HandleInvite)
		r.Post("/channels/{channelID}/leave", channelH.HandleLeave)
		r.Post("/channels/{channelID}/owners", channelH.HandleAddOwner)
		r.Delete("/channels/{channelID}/owners", channelH.HandleRemoveOwner)
		r.Get("/channels/{channelID}/messages", messageH.HandlePage("channelID"))
		r.Post("/channels/{channelID}/messages", messageH.HandleSend("channelID"))
		r.Post("/channels/{channelID}/standup/start", standupH.HandleStart)
		r.Post("/channels/{channelID}/standup/send", standupH.HandleSend)
		r.Get("/channels/{channelID}/standup", standupH.HandleActive)

		r.Post("/dms", dmH.HandleCreate)
		r.Get("/dms", dmH.HandleList)
		r.Get("/dms/{dmID}", dmH.HandleDetails)
		r.Delete("/dms/{dmID}", dmH.HandleRemove)
		r.Post("/dms/{dmID}/leave", dmH.HandleLeave)
		r.Get("/dms/{dmID}/messages", messageH.HandlePage("dmID"))
		r.Post("/dms/{dmID}/messages", messageH.HandleSend("dmID"))

		r.Put("/messages/{messageID}", messageH.HandleEdit)
		r.Delete("/messages/{messageID}", messageH.HandleRemove)
		r.Post("/messages/{messageID}/react", messageH.HandleReact)
		r.Post("/messages/{messageID}/unreact", messageH.HandleUnreact)
		r.Post("/messages/{messageID}/pin", messageH.HandlePin)
		r.Post("/messages/{messageID}/unpin", messageH.HandleUnpin)

		r.Get("/search", searchH.HandleQuery)

		if s.config.EnableAdminRoutes {
			adminH := handler.NewAdminHandler(svc.Admin, s.logger)
			r.Delete("/admin/clear", adminH.HandleClear)
		}
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for up
// to 30 seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
