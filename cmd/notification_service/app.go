package notificationservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"ride-booking/internal/general/config"
	"ride-booking/internal/general/logger"
	"ride-booking/internal/general/rabbitmq"
	"ride-booking/internal/software/notification/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// dedupTTL bounds how long handled message ids stay in Redis. Redeliveries
// arrive within seconds; a day leaves a generous margin for broker outages.
const dedupTTL = 24 * time.Hour

// Run wires the notification service and blocks until ctx is cancelled.
func Run(ctx context.Context, prefetch int) error {
	// set up a new logger and context for notification service with a static request ID for startup logs
	logger := logger.New("notification-service")
	ctx = logger.WithRequestID(ctx, "startup-001")

	// load a config from file
	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		logger.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	// connect to RabbitMQ
	rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()

	// set up the Redis-backed dedup store
	dedup := service.NewRedisDedup(
		fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		cfg.Redis.Password,
		dedupTTL,
	)
	defer dedup.Close()

	// set up the notification consumer
	svc := service.NewNotificationService(logger, rmq, dedup)

	// small HTTP surface for health and metrics only
	mux := http.NewServeMux()
	mux.HandleFunc("GET /notifications/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Services.NotificationServicePort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http_server_error", "HTTP server terminated with error", err, nil)
		}
	}()

	logger.Info(ctx, "service_started",
		fmt.Sprintf("Notification Service started on port %d", cfg.Services.NotificationServicePort),
		map[string]any{"port": cfg.Services.NotificationServicePort, "prefetch": prefetch},
	)

	// consume until ctx is cancelled; reconnects restart the consume loop
	for {
		err := svc.Run(ctx, prefetch)

		select {
		case <-ctx.Done():
			// graceful HTTP shutdown on context cancel
			shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Info(ctx, "shutdown_started", "Notification Service shutting down", nil)
			if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
				logger.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
			}
			return nil
		default:
		}

		if err != nil {
			logger.Error(ctx, "consume_interrupted", "Consumer stopped, restarting after reconnect", err, nil)
		}

		// brief pause so a flapping broker does not spin this loop
		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
		}
	}
}
