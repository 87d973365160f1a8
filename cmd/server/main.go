package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"mentora/internal/auth"
	"mentora/internal/config"
	"mentora/internal/handler"
	"mentora/internal/handler/sse"
	"mentora/internal/llm"
	"mentora/internal/llm/anthropic"
	"mentora/internal/llm/gemini"
	"mentora/internal/llm/lorem"
	"mentora/internal/middleware"
	"mentora/internal/repository/postgres"
	"mentora/internal/tutor"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	conversationRepo := postgres.NewConversationRepository(repoConfig)
	preferencesRepo := postgres.NewPreferencesRepository(repoConfig)
	feedbackRepo := postgres.NewFeedbackRepository(repoConfig)

	// Setup generation providers
	registry := llm.NewRegistry()
	if cfg.GeminiAPIKey != "" {
		geminiProvider, err := gemini.NewProvider(cfg.GeminiAPIKey, logger)
		if err != nil {
			log.Fatalf("Failed to create gemini provider: %v", err)
		}
		registry.Register(geminiProvider)
	}
	if cfg.AnthropicAPIKey != "" {
		anthropicProvider, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			log.Fatalf("Failed to create anthropic provider: %v", err)
		}
		registry.Register(anthropicProvider)
	}
	if cfg.GeminiAPIKey == "" && cfg.AnthropicAPIKey == "" {
		if cfg.Environment == "prod" {
			log.Fatal("No generation API key configured")
		}
		// Keyless dev runs stream lorem ipsum instead of real responses.
		registry.Register(lorem.NewFallbackProvider())
		logger.Warn("no API key configured, using lorem provider")
	}

	profiles, err := tutor.LoadProfiles()
	if err != nil {
		log.Fatalf("Failed to load model profiles: %v", err)
	}

	orchestrator := tutor.NewOrchestrator(registry, profiles, logger,
		tutor.WithConnectivityProbe(tutor.NewDialProbe()),
	)
	guard := tutor.NewInflightGuard()

	logger.Info("services initialized")

	// Create handlers
	chatHandler := handler.NewChatHandler(orchestrator, conversationRepo, preferencesRepo, guard, sse.DefaultConfig(), logger)
	conversationHandler := handler.NewConversationHandler(conversationRepo, logger)
	quizHandler := handler.NewQuizHandler(orchestrator, preferencesRepo, logger)
	notesHandler := handler.NewNotesHandler(orchestrator, preferencesRepo, logger)
	illustrationHandler := handler.NewIllustrationHandler(orchestrator, preferencesRepo, logger)
	preferencesHandler := handler.NewPreferencesHandler(preferencesRepo, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackRepo, logger)
	voiceHandler := handler.NewVoiceHandler(preferencesRepo, logger)
	healthHandler := handler.NewHealthHandler(pool)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Conversation routes
	mux.HandleFunc("GET /api/conversations", conversationHandler.List)
	mux.HandleFunc("GET /api/conversations/{id}", conversationHandler.Get)
	mux.HandleFunc("PUT /api/conversations/{id}", conversationHandler.Save)
	mux.HandleFunc("DELETE /api/conversations/{id}", conversationHandler.Delete)

	// Tutoring routes (generation calls are expensive upstream, so these are
	// the only routes behind the per-user rate limiter)
	rateLimiter := middleware.NewRateLimiter(2, 5)
	mux.Handle("POST /api/conversations/{id}/messages", rateLimiter.Middleware(http.HandlerFunc(chatHandler.SendMessage)))
	mux.Handle("POST /api/quizzes", rateLimiter.Middleware(http.HandlerFunc(quizHandler.Generate)))
	mux.Handle("POST /api/notes", rateLimiter.Middleware(http.HandlerFunc(notesHandler.Synthesize)))
	mux.Handle("POST /api/illustrations", rateLimiter.Middleware(http.HandlerFunc(illustrationHandler.Generate)))

	// User preferences routes
	mux.HandleFunc("GET /api/users/me/preferences", preferencesHandler.Get)
	mux.HandleFunc("PATCH /api/users/me/preferences", preferencesHandler.Update)

	// Feedback routes
	mux.HandleFunc("POST /api/feedback", feedbackHandler.Create)
	mux.HandleFunc("GET /api/feedback", feedbackHandler.List)

	// Voice session configuration
	mux.HandleFunc("GET /api/voice/session", voiceHandler.Session)

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS -> Recovery -> Auth -> Routes
	httpHandler = middleware.AuthMiddleware(jwtVerifier)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
