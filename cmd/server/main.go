package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talkcoach/internal/config"
	"talkcoach/internal/database"
	"talkcoach/internal/handlers"
	"talkcoach/internal/repository"
	"talkcoach/internal/security"
	"talkcoach/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	detailRepo := repository.NewDetailRepository(db)
	reportRepo := repository.NewReportRepository(db)
	vocabRepo := repository.NewVocabRepository(db)

	// Services
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(userRepo, tokens)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	feedbackService, err := service.NewFeedbackService(db, detailRepo, reportRepo, cfg.ReportTimezone)
	if err != nil {
		log.Fatalf("Failed to initialize feedback service: %v", err)
	}
	queryService := service.NewFeedbackQueryService(detailRepo, reportRepo)
	chatService := service.NewChatService(cfg.TutorServiceURL, feedbackService)
	vocabService := service.NewVocabService(vocabRepo)

	// Handlers
	limiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(tokens, limiter)
	authHandler := handlers.NewAuthHandler(authService, emailService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	queryHandler := handlers.NewQueryHandler(queryService)
	chatHandler := handlers.NewChatHandler(chatService)
	vocabHandler := handlers.NewVocabHandler(vocabService)

	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.GetProfile))
	mux.HandleFunc("PUT /api/auth/me", middleware.RequireAuth(authHandler.UpdateProfile))
	mux.HandleFunc("POST /api/auth/forgot-password", middleware.RateLimit(authHandler.ForgotPassword))
	mux.HandleFunc("POST /api/auth/reset-password", middleware.RateLimit(authHandler.ResetPassword))

	// Chat routes
	mux.HandleFunc("POST /api/chat/start", middleware.RequireAuth(chatHandler.Start))
	mux.HandleFunc("POST /api/chat/send", middleware.RequireAuth(chatHandler.Send))
	mux.HandleFunc("POST /api/chat/end", middleware.RequireAuth(chatHandler.End))

	// Feedback routes
	mux.HandleFunc("POST /api/feedback/details", middleware.RequireAuth(feedbackHandler.AddDetail))
	mux.HandleFunc("POST /api/feedback/finalize", middleware.RequireAuth(feedbackHandler.Finalize))
	mux.HandleFunc("GET /api/feedback/report-dates", middleware.RequireAuth(queryHandler.ListReportDates))
	mux.HandleFunc("GET /api/feedback/reports", middleware.RequireAuth(queryHandler.ListReports))
	mux.HandleFunc("GET /api/feedback/reports/{reportId}/details", middleware.RequireAuth(queryHandler.ListDetails))

	// Vocabulary routes
	mux.HandleFunc("GET /api/vocabulary", middleware.RequireAuth(vocabHandler.List))
	mux.HandleFunc("POST /api/vocabulary", middleware.RequireAuth(vocabHandler.Save))
	mux.HandleFunc("PUT /api/vocabulary/{vocaId}", middleware.RequireAuth(vocabHandler.MarkKnown))
	mux.HandleFunc("DELETE /api/vocabulary/{vocaId}", middleware.RequireAuth(vocabHandler.Delete))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      middleware.Logging(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go cleanupExpiredResetTokens(authService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// cleanupExpiredResetTokens periodically purges expired password reset tokens
func cleanupExpiredResetTokens(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredResetTokens(); err != nil {
			log.Printf("Reset token cleanup failed: %v", err)
		}
	}
}
