package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/clinicdesk/booking-ai/internal/api/router"
	"github.com/clinicdesk/booking-ai/internal/appointments"
	"github.com/clinicdesk/booking-ai/internal/assistant"
	"github.com/clinicdesk/booking-ai/internal/chat"
	appconfig "github.com/clinicdesk/booking-ai/internal/config"
	"github.com/clinicdesk/booking-ai/internal/conversation"
	"github.com/clinicdesk/booking-ai/internal/http/handlers"
	"github.com/clinicdesk/booking-ai/internal/observability/metrics"
	"github.com/clinicdesk/booking-ai/internal/session"
	"github.com/clinicdesk/booking-ai/internal/storage"
	"github.com/clinicdesk/booking-ai/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-ai API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"storage", cfg.StorageBackend,
	)

	kv, cleanup, err := buildStorage(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	llm, llmCleanup := buildLLMClient(cfg, logger)
	defer llmCleanup()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	convMetrics := metrics.NewConversationMetrics(reg)

	sessions := session.NewStore(kv, logger, session.WithTTL(cfg.SessionTTL))
	chatLog := chat.NewLog(kv, logger)
	svc := conversation.NewService(sessions, chatLog, llm, logger,
		conversation.WithHistoryLimit(cfg.HistoryLimit),
		conversation.WithLLMTimeout(cfg.LLMTimeout),
		conversation.WithGeneration(cfg.GeminiModelID, int32(cfg.LLMMaxTokens), float32(cfg.LLMTemperature)),
		conversation.WithMetrics(convMetrics),
	)
	appts := appointments.NewService(kv, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		Sessions:           handlers.NewSessionHandler(svc, logger),
		Chat:               handlers.NewChatHandler(svc, logger),
		Appointments:       handlers.NewAppointmentHandler(appts, logger),
		WS:                 handlers.NewWSHandler(svc, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildStorage selects the KV backend from configuration. The returned
// cleanup closes the underlying connection.
func buildStorage(cfg *appconfig.Config, logger *logging.Logger) (storage.KV, func(), error) {
	switch cfg.StorageBackend {
	case "redis":
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		logger.Info("using redis storage", "addr", cfg.RedisAddr)
		return storage.NewRedisKV(client, otel.Tracer("storage.redis")), func() { _ = client.Close() }, nil

	case "postgres":
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("using postgres storage")
		return storage.NewPostgresKV(db), func() { _ = db.Close() }, nil

	default:
		kv, err := storage.NewFileKV(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using file storage", "path", cfg.FilePath)
		return kv, func() {}, nil
	}
}

// buildLLMClient returns the Gemini client when an API key is configured,
// otherwise a scripted client so the service stays usable in keyless
// development.
func buildLLMClient(cfg *appconfig.Config, logger *logging.Logger) (assistant.LLMClient, func()) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, using scripted responses")
		return assistant.NewScriptedLLMClient(), func() {}
	}

	gemini, err := assistant.NewGeminiLLMClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		logger.Error("failed to create gemini client, using scripted responses", "error", err)
		return assistant.NewScriptedLLMClient(), func() {}
	}

	if cfg.GeminiFallbackModelID == "" || cfg.GeminiFallbackModelID == cfg.GeminiModelID {
		return gemini, func() { _ = gemini.Close() }
	}

	// A secondary model absorbs transient failures of the primary; the
	// conversation-level fallback reply only fires when both fail.
	secondary, err := assistant.NewGeminiLLMClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiFallbackModelID)
	if err != nil {
		logger.Warn("failed to create fallback gemini client", "error", err)
		return gemini, func() { _ = gemini.Close() }
	}
	chain := assistant.NewFallbackLLMClient(gemini, secondary, logger.Logger)
	return chain, func() {
		_ = gemini.Close()
		_ = secondary.Close()
	}
}
