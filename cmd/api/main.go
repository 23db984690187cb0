// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bookleaf/support-platform/internal/agent"
	"github.com/bookleaf/support-platform/internal/config"
	"github.com/bookleaf/support-platform/internal/events"
	"github.com/bookleaf/support-platform/internal/handler"
	"github.com/bookleaf/support-platform/internal/identity"
	"github.com/bookleaf/support-platform/internal/knowledge"
	"github.com/bookleaf/support-platform/internal/llm"
	"github.com/bookleaf/support-platform/internal/middleware"
	"github.com/bookleaf/support-platform/internal/service"
	"github.com/bookleaf/support-platform/internal/store"
	"github.com/bookleaf/support-platform/internal/tools"
	"github.com/bookleaf/support-platform/pkg/logger"
	"github.com/bookleaf/support-platform/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "support-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS
	eventsClient, err := events.Connect(events.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer eventsClient.Close()

	// Ensure JetStream stream exists
	publisher := events.NewPublisher(eventsClient)
	if err := publisher.EnsureStream(ctx); err != nil {
		log.Error("failed to ensure stream", zap.Error(err))
		os.Exit(1)
	}

	// Connect to the database
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize LLM clients. The dialogue oracle needs tool calling, so it
	// always runs on OpenAI; identity disambiguation prefers Anthropic when
	// a key is configured.
	oracle, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	if err != nil {
		log.Error("failed to create oracle client", zap.Error(err))
		os.Exit(1)
	}

	var identityOracle llm.Client = oracle
	if cfg.AnthropicAPIKey != "" {
		anthropicClient, err := llm.NewAnthropicClient(cfg.AnthropicAPIKey)
		if err != nil {
			log.Warn("failed to create Anthropic client, using OpenAI for disambiguation")
		} else {
			identityOracle = anthropicClient
		}
	}

	embedder, err := knowledge.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Error("failed to create embedder", zap.Error(err))
		os.Exit(1)
	}

	// Initialize the core pipeline
	registry := tools.NewRegistry(db, embedder, db, db, log)
	evaluator := agent.NewEvaluator(agent.EvaluatorConfig{
		LowConfidence:     cfg.LowConfidence,
		HighConfidence:    cfg.HighConfidence,
		HandoverThreshold: cfg.HandoverThreshold,
	})
	orchestrator := agent.NewOrchestrator(oracle, registry, evaluator, log,
		agent.WithModel(cfg.OracleModel),
		agent.WithMaxCycles(cfg.MaxToolCycles),
	)
	resolver := identity.NewResolver(db, db, identityOracle, log,
		identity.WithThreshold(cfg.IdentityThreshold),
		identity.WithOracleModel(cfg.IdentityModel),
	)
	botService := service.NewBotService(resolver, orchestrator, publisher, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(eventsClient)
	chatHandler := handler.NewChatHandler(botService, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Chat)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
