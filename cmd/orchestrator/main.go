// cmd/orchestrator/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ufunda-bots/internal/bots"
	"ufunda-bots/internal/common/aws"
	"ufunda-bots/internal/common/config"
	"ufunda-bots/internal/common/database"
	"ufunda-bots/internal/common/httpclient"
	"ufunda-bots/internal/common/logger"
	"ufunda-bots/internal/common/observability"
	"ufunda-bots/internal/dispatch"
	"ufunda-bots/internal/notify"
	"ufunda-bots/internal/run"
	"ufunda-bots/internal/server"
	"ufunda-bots/pkg/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting orchestrator", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name, os.Getenv("JAEGER_ENDPOINT"))
	defer obs.Shutdown()

	// Status store: in-memory unless redis is configured.
	var store server.StatusStore = server.NewMemoryStore()
	if cfg.Redis.Address != "" {
		redisClient, err := database.NewRedis(cfg.Redis)
		if err != nil {
			zapLog.Fatal("failed to create redis client", zap.Error(err))
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx); err != nil {
			zapLog.Fatal("redis unreachable", zap.Error(err))
		}
		cancel()
		defer redisClient.Close()
		store = server.NewRedisStore(redisClient.GetClient())
		log.Info("using redis status store", map[string]interface{}{"address": cfg.Redis.Address})
	}

	sinks := buildSinks(cfg, store, log, zapLog)
	artifacts := run.NewArtifactStore(cfg.Dispatch.ArtifactDir)
	aggregator := run.NewAggregator(artifacts, sinks, log)

	botRegistry := bots.Default(cfg, log)
	log.Info("bot registry built", map[string]interface{}{"bots": botRegistry.IDs()})

	orchestrator := dispatch.NewOrchestrator(botRegistry, aggregator, obs, log, cfg.Dispatch.MaxConcurrency)
	queue := dispatch.NewQueue(orchestrator, cfg.Dispatch.QueueSize, log)
	queue.Start(context.Background())

	manifest, err := registry.LoadManifest(cfg.ManifestPath)
	if err != nil {
		log.Warn("bot manifest unavailable, serving empty catalogue", map[string]interface{}{
			"path":  cfg.ManifestPath,
			"error": err.Error(),
		})
		manifest = &registry.BotManifest{}
	}

	webhook := server.NewWebhookHandler(queue, store, log)
	api := server.NewAPI(store, manifest, log)
	srv := server.New(cfg.Server, webhook, api, log)
	srv.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		log.Error("queue drain incomplete", map[string]interface{}{"error": err.Error()})
	}

	log.Info("orchestrator stopped gracefully", nil)
}

// buildSinks wires every configured notification sink. Unconfigured sinks
// are simply absent; delivery degrades to a no-op, never an error.
func buildSinks(cfg *config.Config, store server.StatusStore, log logger.Logger, zapLog *zap.Logger) []notify.Sink {
	var sinks []notify.Sink

	if urls := cfg.Notifications.Dashboard.URLs; len(urls) > 0 {
		timeout := config.GetDuration(cfg.Notifications.Dashboard.Timeout)
		sinks = append(sinks, notify.NewDashboardSink(urls, httpclient.NewClient(timeout), log))
	}

	if cfg.Notifications.Email.Enabled {
		var mailer notify.Mailer
		switch cfg.Notifications.Email.Provider {
		case "smtp":
			mailer = &notify.SMTPMailer{
				Host:     cfg.Notifications.SMTP.Host,
				Port:     cfg.Notifications.SMTP.Port,
				Username: cfg.Notifications.SMTP.Username,
				Password: cfg.Notifications.SMTP.Password,
				UseTLS:   cfg.Notifications.SMTP.UseTLS,
			}
		default:
			sesClient, err := aws.NewSESClient(context.Background(), cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("failed to create SES client", zap.Error(err))
			}
			mailer = sesClient
		}
		sinks = append(sinks, notify.NewEmailSink(mailer,
			cfg.Notifications.Email.FromEmail,
			cfg.Notifications.Email.Alerts, log))
	}

	if cfg.Notifications.SMS.Enabled {
		snsClient, err := aws.NewSNSClient(context.Background(), cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("failed to create SNS client", zap.Error(err))
		}
		sinks = append(sinks, notify.NewSMSSink(snsClient, cfg.Notifications.SMS.PhoneNumbers, log))
	}

	if cfg.Dispatch.AuditLogPath != "" {
		sinks = append(sinks, notify.NewAuditLog(cfg.Dispatch.AuditLogPath))
	}

	sinks = append(sinks, server.NewStatusSink(store))
	return sinks
}
