package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/zflorman/Hillpulse-v3/internal/api"
	"github.com/zflorman/Hillpulse-v3/internal/config"
	"github.com/zflorman/Hillpulse-v3/internal/dedupe"
	"github.com/zflorman/Hillpulse-v3/internal/ingest"
	"github.com/zflorman/Hillpulse-v3/internal/llm/gemini"
	"github.com/zflorman/Hillpulse-v3/internal/notify"
	"github.com/zflorman/Hillpulse-v3/internal/notify/email"
	emailsmtp "github.com/zflorman/Hillpulse-v3/internal/notify/email/smtp"
	"github.com/zflorman/Hillpulse-v3/internal/notify/pushover"
	"github.com/zflorman/Hillpulse-v3/internal/observability/otelx"
	"github.com/zflorman/Hillpulse-v3/internal/summarizer"
	tweetimpl "github.com/zflorman/Hillpulse-v3/internal/tweet/impl"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otelx.Init(ctx, logger, cfg.OTel)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	if shutdownTracing != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(shutdownCtx)
		}()
	}

	store, err := buildSeenStore(cfg.Dedupe, logger)
	if err != nil {
		log.Fatalf("failed to initialize dedup store: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	var sweeper *cron.Cron
	if cleaner, ok := store.(dedupe.Cleaner); ok {
		sweeper = cron.New()
		_, err := sweeper.AddFunc(cfg.Dedupe.CleanupSchedule, func() {
			removed, err := cleaner.Cleanup(context.Background())
			if err != nil {
				logger.Warn("dedup cleanup failed", "error", err)
				return
			}
			if removed > 0 {
				logger.Info("dedup cleanup", "removed", removed)
			}
		})
		if err != nil {
			log.Fatalf("invalid dedup cleanup schedule %q: %v", cfg.Dedupe.CleanupSchedule, err)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	prompts, err := summarizer.LoadPromptConfig(cfg.PromptConfigPath)
	if err != nil {
		log.Fatalf("failed to load prompt config: %v", err)
	}

	summ, err := summarizer.New(
		gemini.NewClient(cfg.Gemini),
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.Temperature,
		prompts,
		logger,
	)
	if err != nil {
		log.Fatalf("failed to build summarizer: %v", err)
	}

	var filter *ingest.Filter
	if cfg.IngestFilter != "" {
		filter, err = ingest.NewFilter(cfg.IngestFilter)
		if err != nil {
			log.Fatalf("invalid ingest filter: %v", err)
		}
	}

	notifiers := []notify.Notifier{
		pushover.New(cfg.Pushover),
		buildEmailNotifier(cfg.SMTP),
	}

	pipeline := ingest.New(
		tweetimpl.NewFetcher(cfg.Tweet, logger),
		store,
		summ,
		notifiers,
		filter,
		logger,
	)

	server := api.NewServer(pipeline, cfg.IngestSecret, logger)

	go func() {
		logger.Info("hillpulse listening", "port", cfg.Port)
		if err := server.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown failed", "error", err)
	}
}

func buildSeenStore(cfg config.DedupeEnvConfig, logger *slog.Logger) (dedupe.SeenStore, error) {
	switch cfg.Backend {
	case "off", "none", "disabled":
		logger.Info("duplicate suppression disabled")
		return nil, nil
	case "sqlite":
		return dedupe.NewSQLiteStore(cfg.SQLitePath, cfg.TTL)
	case "redis":
		return dedupe.NewRedisStore(dedupe.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
			TTL:       cfg.TTL,
		})
	default:
		return dedupe.NewMemoryStore(cfg.TTL), nil
	}
}

func buildEmailNotifier(cfg config.SMTPEnvConfig) notify.Notifier {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" || cfg.To == "" {
		// Missing credentials disable the channel; New with a nil sender
		// reports ErrNotConfigured on every attempt.
		return email.New(nil, cfg.From, "")
	}
	sender := emailsmtp.NewSender(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.TLSMode, cfg.InsecureSkipVerify)
	return email.New(sender, cfg.From, cfg.To)
}
