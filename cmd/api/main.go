package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/servicofacil/prestador-api/internal/config"
	"github.com/servicofacil/prestador-api/internal/domain"
	"github.com/servicofacil/prestador-api/internal/handler"
	"github.com/servicofacil/prestador-api/internal/infra/cache"
	"github.com/servicofacil/prestador-api/internal/infra/client"
	"github.com/servicofacil/prestador-api/internal/infra/email"
	"github.com/servicofacil/prestador-api/internal/infra/observability"
	"github.com/servicofacil/prestador-api/internal/infra/resilience"
	"github.com/servicofacil/prestador-api/internal/infra/supabase"
	"github.com/servicofacil/prestador-api/internal/port"
	"github.com/servicofacil/prestador-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("registry_api_url", cfg.RegistryAPIURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("activation_token_ttl", cfg.ActivationTokenTTL),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "prestador-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	cnpjCache := cache.New[domain.CnpjLookup](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	registryClient := client.NewRegistryClient(
		httpClient,
		cfg.RegistryAPIURL,
		resilience.NewCircuitBreaker("cnpj-registry"),
		resilienceCfg,
	)

	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		resilience.NewCircuitBreaker("supabase"),
		resilienceCfg,
		logger,
	)

	var mailer port.EmailSender
	if cfg.SMTPHost != "" {
		mailer = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
		logger.Info("smtp sender enabled", zap.String("host", cfg.SMTPHost))
	} else {
		mailer = email.NewNoopSender(logger)
		logger.Warn("smtp not configured, activation emails are logged only")
	}

	// --- Services ---
	tokenSvc := service.NewTokenService(cfg.JWTSecret, cfg.JWTAccessTTL)
	authSvc := service.NewAuthService(supabaseClient, tokenSvc, logger)
	providerSvc := service.NewProviderService(
		supabaseClient,
		supabaseClient,
		registryClient,
		mailer,
		cnpjCache,
		metrics,
		logger,
		cfg.ActivationTokenTTL,
	)

	// --- Router ---
	router := handler.NewRouter(providerSvc, authSvc, tokenSvc, supabaseClient, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
