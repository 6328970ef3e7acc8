package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/luisz08/notif-svc/internal/channel"
	"github.com/luisz08/notif-svc/internal/config"
	"github.com/luisz08/notif-svc/internal/dedup"
	"github.com/luisz08/notif-svc/internal/event"
	"github.com/luisz08/notif-svc/internal/handler"
	eventHandler "github.com/luisz08/notif-svc/internal/handler/event"
	notificationHandler "github.com/luisz08/notif-svc/internal/handler/notification"
	registryHandler "github.com/luisz08/notif-svc/internal/handler/registry"
	"github.com/luisz08/notif-svc/internal/repository/postgres"
	"github.com/luisz08/notif-svc/internal/router"
	"github.com/luisz08/notif-svc/internal/scheduler"
	eventService "github.com/luisz08/notif-svc/internal/service/event"
	notificationService "github.com/luisz08/notif-svc/internal/service/notification"
	"github.com/luisz08/notif-svc/internal/template"
	applogger "github.com/luisz08/notif-svc/pkg/logger"
	"github.com/luisz08/notif-svc/pkg/messaging"
	redisbroker "github.com/luisz08/notif-svc/pkg/messaging/redis"
	"github.com/luisz08/notif-svc/pkg/metrics"
)

const (
	serviceName    = "Notification Service"
	serviceVersion = "1.0.0"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize logger
	logger := *applogger.NewLogger(nil).Zerolog()
	log.Logger = logger

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	base := postgres.NewBaseRepository(db)
	eventRepo := postgres.NewEventRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	dedupRepo := postgres.NewDeduplicationRepository(base)

	// Surface any realtime backlog left behind by a previous crash.
	if unprocessed, err := eventRepo.GetUnprocessed(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to check for unprocessed events")
	} else if len(unprocessed) > 0 {
		log.Warn().Int("count", len(unprocessed)).Msg("unprocessed events found in database")
	}

	// Initialize metrics
	m := metrics.NewMetrics(prometheus.DefaultRegisterer, "notifsvc")

	// Initialize template rendering
	templates := template.NewManager(cfg.Templates.Dir, time.Duration(cfg.Templates.CacheTTLSeconds)*time.Second)

	// Initialize delivery channels
	channels := channel.NewManager(
		channel.NewEmailChannel(cfg.Channels.Email),
		channel.NewSlackChannel(cfg.Channels.Slack, &logger),
	)

	// Initialize deduplication
	window := time.Duration(cfg.Deduplication.WindowSeconds) * time.Second
	timeWindow := dedup.NewTimeWindowPolicy(notificationRepo, dedupRepo, window)
	deduper := dedup.NewManager(&logger, timeWindow)

	// Trim old suppression log entries in the background.
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	retention := time.Duration(cfg.Deduplication.LogRetentionHours) * time.Hour
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				removed, err := timeWindow.CleanupLog(cleanupCtx, retention)
				if err != nil {
					logger.Error().Err(err).Msg("failed to cleanup deduplication logs")
					continue
				}
				if removed > 0 {
					logger.Info().Int64("removed", removed).Msg("cleaned up deduplication logs")
				}
			}
		}
	}()

	// Initialize the lifecycle event broker
	var broker messaging.Broker = messaging.NopBroker{}
	if cfg.Redis.Enabled {
		broker, err = redisbroker.NewRedisBroker(cfg.Redis.URL, &logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	// Initialize services
	registry := event.NewRegistry(templates)
	notifSvc := notificationService.NewService(notificationRepo, deduper, channels, broker, m, &logger)
	eventSvc := eventService.NewService(eventRepo, registry, notifSvc, m, &logger)

	// Initialize and start the scheduler before accepting traffic so
	// every persisted job is registered ahead of external triggers.
	sched := scheduler.New(
		scheduler.Config{
			Workers:      cfg.Scheduler.Workers,
			MisfireGrace: time.Duration(cfg.Scheduler.MisfireGraceSecond) * time.Second,
		},
		eventRepo, registry, notifSvc, m, &logger,
	)
	if err := sched.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	// Setup router
	r := router.NewRouter(
		router.Config{
			ServiceInfo: handler.ServiceInfo{Name: serviceName, Version: serviceVersion},
			RateLimit:   rate.Limit(100),
			RateBurst:   200,
		},
		&logger,
		eventHandler.NewHandler(eventSvc, sched),
		notificationHandler.NewHandler(notificationRepo),
		registryHandler.NewHandler(registry, channels, templates),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	sched.Stop()
	log.Info().Msg("server exited")
}
