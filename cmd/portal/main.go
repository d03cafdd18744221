package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/pediclinic/portal/internal/api/router"
	"github.com/pediclinic/portal/internal/booking"
	"github.com/pediclinic/portal/internal/clinicapi"
	appconfig "github.com/pediclinic/portal/internal/config"
	"github.com/pediclinic/portal/internal/http/handlers"
	"github.com/pediclinic/portal/internal/http/middleware"
	"github.com/pediclinic/portal/internal/notifications"
	"github.com/pediclinic/portal/internal/observability/metrics"
	"github.com/pediclinic/portal/internal/push"
	"github.com/pediclinic/portal/internal/queue"
	"github.com/pediclinic/portal/internal/session"
	"github.com/pediclinic/portal/internal/vaccines"
	"github.com/pediclinic/portal/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting pediclinic portal",
		"env", cfg.Env,
		"port", cfg.Port,
		"clinic_api", cfg.ClinicAPIBaseURL,
	)

	reg := prometheus.NewRegistry()
	portalMetrics := metrics.NewPortalMetrics(reg)

	apiClient, err := clinicapi.New(clinicapi.Config{
		BaseURL: cfg.ClinicAPIBaseURL,
		Timeout: cfg.ClinicAPITimeout,
		Logger:  logger,
		Metrics: portalMetrics,
	})
	if err != nil {
		logger.Error("clinic API client init failed", "error", err)
		os.Exit(1)
	}

	redisClient := buildRedisClient(cfg)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("redis not available", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	if cfg.SessionSigningKey == "" {
		logger.Error("SESSION_SIGNING_KEY is required")
		os.Exit(1)
	}
	codec, err := session.NewCookieCodec(cfg.SessionCookieName, cfg.SessionSigningKey, cfg.SessionTTL, cfg.SessionCookieSecure)
	if err != nil {
		logger.Error("session cookie codec init failed", "error", err)
		os.Exit(1)
	}
	store := session.NewStore(redisClient, apiClient, cfg.SessionTTL, logger)

	bookingSvc := booking.NewService(apiClient, logger)
	inbox := notifications.NewService(apiClient, logger)
	vaccinesSvc := vaccines.NewService(apiClient)

	scanner := queue.NewReminderScanner(cfg.ReminderLookahead, time.Local)
	hub := push.NewHub(scanner, cfg.MinutesPerPatient, portalMetrics, logger)
	watcher := queue.NewWatcher(queue.WatcherConfig{
		API:              apiClient,
		Sink:             hub,
		Scanner:          scanner,
		Metrics:          portalMetrics,
		Logger:           logger,
		PollInterval:     cfg.QueuePollInterval,
		PollJitter:       cfg.QueuePollJitter,
		ReminderInterval: cfg.ReminderInterval,
	})
	feed := push.NewUpstream(cfg.EventFeedURL, cfg.EventFeedReconnectBase, cfg.EventFeedReconnectLimit,
		func(ctx context.Context, event string) {
			if event == push.EventAppointmentsUpdated {
				watcher.PollOnce(ctx)
				hub.BroadcastRefresh()
			}
		}, logger)

	authLimiter := middleware.NewRateLimiter(1, 10)

	routerCfg := &router.Config{
		Logger:             logger,
		SessionCodec:       codec,
		SessionStore:       store,
		Auth:               handlers.NewAuthHandler(store, codec, inbox, hub, logger),
		Booking:            handlers.NewBookingHandler(bookingSvc, watcher, logger),
		Appointments:       handlers.NewAppointmentsHandler(apiClient, watcher, cfg.MinutesPerPatient, logger),
		Admin:              handlers.NewAdminHandler(apiClient, watcher, logger),
		Reception:          handlers.NewReceptionHandler(apiClient, bookingSvc, watcher, logger),
		Notifications:      handlers.NewNotificationsHandler(inbox, logger),
		Reviews:            handlers.NewReviewsHandler(apiClient, logger),
		Profile:            handlers.NewProfileHandler(apiClient, store, vaccinesSvc, logger),
		Hub:                hub,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateLimit:      authLimiter,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)
	go feed.Run(ctx)
	go evictLoop(ctx, authLimiter)

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
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := redisClient.Close(); err != nil {
		logger.Warn("redis close failed", "error", err)
	}
	logger.Info("stopped")
}

func buildRedisClient(cfg *appconfig.Config) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

func evictLoop(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Evict(10 * time.Minute)
		}
	}
}
