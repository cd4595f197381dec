/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the cabin booking server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load config (file, .env, CABIN_* env)
  2. Initialize the store (sqlite, postgres or memory)
  3. Optionally connect the Redis availability cache
  4. Optionally publish audit entries to Kafka
  5. Build the booking service, API handler and router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Config file (default: ./config/config.yaml when present)
  -port    HTTP server port, overrides server.port
  -db      SQLite database path, overrides store.sqlite.path
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Flush the audit publisher, close Redis and the database
  4. Exit

EXAMPLES:
  ./server -db="./data/cabins.db"
  CABIN_STORE_DRIVER=postgres CABIN_STORE_POSTGRES_DSN=postgres://... ./server
  CABIN_REDIS_ENABLED=true CABIN_KAFKA_ENABLED=true ./server -port=3000

SEE ALSO:
  - config/config.go: Configuration sources
  - api/server.go: Router configuration
  - booking/service.go: Booking orchestrator
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/cabin-engine/api"
	"github.com/warp/cabin-engine/auth"
	"github.com/warp/cabin-engine/booking"
	"github.com/warp/cabin-engine/cache"
	"github.com/warp/cabin-engine/config"
	"github.com/warp/cabin-engine/events"
	"github.com/warp/cabin-engine/generic"
	"github.com/warp/cabin-engine/generic/store"
	"github.com/warp/cabin-engine/store/postgres"
	"github.com/warp/cabin-engine/store/sqlite"
)

const shutdownTimeout = 30 * time.Second

// backend is what every store driver provides.
type backend interface {
	generic.Store
	api.Seeder
}

func main() {
	// Flags
	configPath := flag.String("config", "", "Config file path")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Store.SQLite.Path = *dbPath
	}

	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("failed to set up logger")
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx := context.Background()

	settings, err := cfg.Booking.Settings()
	if err != nil {
		return err
	}

	// Initialize store
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()
	log.WithField("driver", cfg.Store.Driver).Info("store ready")

	// Availability cache
	var rangeCache booking.AvailabilityCache
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		rangeCache = cache.NewRedisAvailability(client, cfg.Redis.CacheTTL)
		log.WithField("addr", cfg.Redis.Addr).Info("availability cache enabled")
	}

	// Audit log, optionally mirrored to Kafka
	var audit generic.AuditLog = st
	if cfg.Kafka.Enabled {
		sink := events.NewKafkaAuditSink(events.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		fanout := events.NewFanoutAudit(st, log, sink)
		defer fanout.Close()
		audit = fanout
		log.WithField("topic", cfg.Kafka.Topic).Info("audit publishing enabled")
	}

	svc := booking.NewService(st, settings,
		booking.WithAuditLog(audit),
		booking.WithLogger(log),
		booking.WithAvailability(booking.NewAvailability(st, rangeCache, log)),
	)

	tokens := auth.NewProvider(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	handler := api.NewHandler(svc, st, tokens, log)
	handler.DevMode = cfg.Auth.DevTokens
	if handler.DevMode {
		log.Warn("dev mode: token issuance and scenario loading are enabled")
	}

	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (backend, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(ctx, postgres.Config{
			DSN:             cfg.Postgres.ConnString(),
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		})
	case "memory":
		return store.NewMemory(), nil
	default:
		if cfg.SQLite.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		return sqlite.New(cfg.SQLite.Path)
	}
}
