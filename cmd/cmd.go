package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ewaste-recycle-backend/internal/config"
	"ewaste-recycle-backend/internal/gemini"
	"ewaste-recycle-backend/internal/handlers"
	"ewaste-recycle-backend/internal/middleware"
	"ewaste-recycle-backend/internal/models"
	"ewaste-recycle-backend/internal/repository"
	"ewaste-recycle-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize collaborators
	imageService, err := services.NewImageService(cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create image service")
	}
	geminiClient := gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Gemini.Model)
	pushService, err := services.NewPushService(cfg.APNS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push service")
	}

	// Initialize services
	userService := services.NewUserService(userRepo, cfg.JWT.Secret)
	ledgerService := services.NewLedgerService(ledgerRepo, cfg.Points.RecycleAward)
	notificationService := services.NewNotificationService(notificationRepo, submissionRepo, userRepo, pushService)
	wsHub := services.NewWSHub()
	submissionService := services.NewSubmissionService(
		submissionRepo,
		ledgerService,
		notificationService,
		wsHub,
		imageService,
		geminiClient,
	)
	assistantService := services.NewAssistantService(geminiClient)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, ledgerService)
	orgHandler := handlers.NewOrgHandler(submissionService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	assistantHandler := handlers.NewAssistantHandler(assistantService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService, submissionService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", userHandler.Register)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Put("/users/push-token", userHandler.UpdatePushToken)
			r.Post("/assistant", assistantHandler.Ask)

			// Owner-side
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleUser))
				r.Post("/submissions/analyze", submissionHandler.Analyze)
				r.Post("/submissions", submissionHandler.Decide)
				r.Get("/submissions", submissionHandler.List)
				r.Get("/points", submissionHandler.Points)
				r.Get("/notifications", notificationHandler.ListUnread)
				r.Post("/notifications/{submission_id}/read", notificationHandler.MarkRead)
			})

			// Organization-side
			r.Route("/org", func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleOrganization))
				r.Get("/submissions", orgHandler.List)
				r.Post("/submissions/{id}/accept", orgHandler.Accept)
				r.Post("/submissions/{id}/reject", orgHandler.Reject)
				r.Post("/submissions/{id}/pickup", orgHandler.SchedulePickup)
				r.Post("/submissions/{id}/done", orgHandler.Done)
			})
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
