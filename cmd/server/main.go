package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/oceanBigOne/mre-who-am-i/internal/adapter/httpserver"
	"github.com/oceanBigOne/mre-who-am-i/internal/adapter/metrics"
	"github.com/oceanBigOne/mre-who-am-i/internal/adapter/redis"
	"github.com/oceanBigOne/mre-who-am-i/internal/adapter/websocket"
	"github.com/oceanBigOne/mre-who-am-i/internal/app"
	"github.com/oceanBigOne/mre-who-am-i/internal/attachment"
	"github.com/oceanBigOne/mre-who-am-i/internal/content"
	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
	"github.com/oceanBigOne/mre-who-am-i/internal/platform/config"
	"github.com/oceanBigOne/mre-who-am-i/internal/platform/logging"
	"github.com/oceanBigOne/mre-who-am-i/internal/platform/version"
	"github.com/oceanBigOne/mre-who-am-i/internal/scene"
	"github.com/oceanBigOne/mre-who-am-i/internal/syncfix"
)

const shutdownTimeout = 10 * time.Second

type components struct {
	server    *httpserver.Server
	host      *app.Host
	scheduler *syncfix.Scheduler
	manager   *attachment.Manager
	hub       *websocket.Hub
}

func runGracefulShutdown(c components) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := c.server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		c.scheduler.Stop()
		c.manager.Stop()
		if err := c.host.Close(ctx); err != nil {
			slog.Error("Failed to tear down lobby", "error", err)
		}
		c.hub.Stop()

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupNames builds the name source chain. Redis is consulted first when configured.
func setupNames(ctx context.Context, cfg *config.Config) (domain.ContentSource, *goredis.Client) {
	embedded := content.NewEmbeddedSource()
	if cfg.RedisURL == "" {
		return embedded, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	country := content.NormalizeCountry(cfg.Country)
	if names, err := embedded.Names(ctx, country); err == nil {
		written, err := redis.SeedNames(ctx, client, country, names)
		if err != nil {
			slog.Warn("Failed to seed names in Redis", "country", country, "error", err)
		} else if written {
			slog.Info("Seeded names in Redis", "country", country, "count", len(names))
		}
	}
	return content.Chain{redis.NewNameSource(client), embedded}, client
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().String())

	reg := metrics.NewRegistry()
	schedulerMetrics := metrics.NewSchedulerMetrics(reg)
	attachmentMetrics := metrics.NewAttachmentMetrics(reg)
	wsMetrics := metrics.NewWebSocketMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	source, redisClient := setupNames(context.Background(), cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	country := content.NormalizeCountry(cfg.Country)
	catalog := content.NewCatalog(source)
	if _, err := catalog.Names(context.Background(), country); err != nil {
		slog.Error("Failed to load names", "country", country, "error", err)
		os.Exit(1)
	}

	backend := scene.NewBackend()
	hub := websocket.NewHub(backend, cfg.MaxWebSocketClients, websocket.NewCheckOrigin(cfg.AppURL, cfg.IsDevelopment()), wsMetrics)
	backend.Subscribe(hub)

	scheduler, err := syncfix.New(cfg.SyncInterval, clock, schedulerMetrics)
	if err != nil {
		slog.Error("Failed to create sync scheduler", "error", err)
		os.Exit(1)
	}

	manager := attachment.NewManager(backend, cfg.BodyLocation(), cfg.ResourceCallTimeout, clock, attachmentMetrics)
	host := app.NewHost(backend, catalog, manager, scheduler, country)

	healthChecks := []httpserver.HealthCheck{
		{Name: "attachments", Check: func(ctx context.Context) error {
			_, err := manager.Attachments(ctx)
			return err
		}},
	}
	if redisClient != nil {
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	srv := httpserver.NewServer(cfg, httpserver.Deps{
		Host:           host,
		Attachments:    manager,
		SceneHandler:   hub,
		MetricsHandler: metrics.Handler(reg),
		Metrics:        httpMetrics,
		HealthChecks:   healthChecks,
		Clock:          clock,
	})

	done := runGracefulShutdown(components{
		server:    srv,
		host:      host,
		scheduler: scheduler,
		manager:   manager,
		hub:       hub,
	})

	slog.Info("Session host ready", "country", country, "attach_point", cfg.BodyLocation(), "sync_interval", scheduler.Interval())
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Server stopped")
}
