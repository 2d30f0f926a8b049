// Package server wires the store, services, handlers, and routes together
// and owns the HTTP listener lifecycle.
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

	"github.com/sakif/devhub/internal/auth"
	"github.com/sakif/devhub/internal/config"
	"github.com/sakif/devhub/internal/handler"
	"github.com/sakif/devhub/internal/middleware"
	"github.com/sakif/devhub/internal/realtime"
	"github.com/sakif/devhub/internal/repository/jsonfile"
	"github.com/sakif/devhub/internal/service"
	"github.com/sakif/devhub/internal/upload"
)

// Server holds the router and the configuration it was built from. All
// dependencies are wired in New; Start only runs the listener.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
}

// New assembles the full dependency chain:
//
//	jsonfile.Store → services → handlers → routes
//
// The notification path is wired in a fixed order because of who needs whom:
// presence and the notification log first, then the hub (which replays
// unread entries on connect), then the dispatcher (which pushes through the
// hub), then the domain services that dispatch.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	store, err := jsonfile.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening data store: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	uploads, err := upload.NewSaver(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("creating upload saver: %w", err)
	}

	var github *auth.GitHubProvider
	if cfg.GitHub.ClientID != "" {
		github = auth.NewGitHubProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.CallbackURL)
	}

	presence := realtime.NewPresence()
	notifications := service.NewNotificationService(store.Notifications, logger)
	hub := realtime.NewHub(presence, notifications, logger)
	dispatcher := service.NewDispatcher(notifications, presence, hub, logger)

	auths := service.NewAuthService(store.Users, tokens, passwords, logger)
	users := service.NewUserService(store.Users, logger)
	posts := service.NewPostService(store.Posts, store.Users, dispatcher, logger)
	connections := service.NewConnectionService(store.Connections, store.Users, dispatcher, logger)

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
	}
	s.setupRoutes(
		handler.NewAuthHandler(auths, users, github, uploads, logger),
		handler.NewUserHandler(users, uploads, logger),
		handler.NewPostHandler(posts, uploads, logger),
		handler.NewConnectionHandler(connections, logger),
		handler.NewNotificationHandler(notifications, logger),
		hub,
		tokens,
		uploads,
		github != nil,
	)
	return s, nil
}

func (s *Server) setupRoutes(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	postHandler *handler.PostHandler,
	connectionHandler *handler.ConnectionHandler,
	notificationHandler *handler.NotificationHandler,
	hub *realtime.Hub,
	tokens *auth.TokenService,
	uploads *upload.Saver,
	oauthEnabled bool,
) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Uploaded images are served straight from disk.
	fileServer := http.FileServer(http.Dir(uploads.Dir()))
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	// The WebSocket endpoint identifies its user in-band (an "authenticate"
	// event carrying the user id), so it sits outside RequireAuth.
	s.router.Get("/ws", hub.ServeWS)

	if oauthEnabled {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Put("/profile", userHandler.HandleUpdateProfile)

			r.Get("/users", userHandler.HandleList)
			r.Get("/users/{id}", userHandler.HandleGetByID)

			r.Get("/posts", postHandler.HandleList)
			r.Post("/posts", postHandler.HandleCreate)
			r.Get("/posts/{id}", postHandler.HandleGetByID)
			r.Put("/posts/{id}", postHandler.HandleUpdate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)
			r.Post("/posts/{id}/like", postHandler.HandleToggleLike)
			r.Post("/posts/{id}/comments", postHandler.HandleComment)

			r.Get("/connections", connectionHandler.HandleList)
			r.Post("/connections", connectionHandler.HandleRequest)
			r.Get("/connections/pending", connectionHandler.HandleListPending)
			r.Post("/connections/{id}/accept", connectionHandler.HandleAccept)
			r.Post("/connections/{id}/reject", connectionHandler.HandleReject)
			r.Delete("/connections/{id}", connectionHandler.HandleRemove)

			r.Get("/notifications", notificationHandler.HandleList)
			r.Get("/notifications/unread-count", notificationHandler.HandleUnreadCount)
			r.Put("/notifications/read-all", notificationHandler.HandleMarkAllRead)
			r.Put("/notifications/{id}/read", notificationHandler.HandleMarkRead)
		})
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully, giving in-flight requests 30 seconds to finish.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
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
			slog.Int("port", s.cfg.Port),
			slog.String("dataDir", s.cfg.DataDir),
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
