package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"qrlink/config"
	"qrlink/db"
	_ "qrlink/docs" // Import docs for Swagger
	"qrlink/handlers"
	"qrlink/pkg/limiter"
	"qrlink/pkg/logger"
	"qrlink/registry"
	"qrlink/resolver"
	"qrlink/store"
)

// @title QR Link API
// @version 1.0
// @description API for creating dynamic QR links, editing their destinations and QR styling, and following short redirects
// @host localhost:8080
// @BasePath /
// @schemes http

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)
	if envErr != nil {
		log.Info(".env file not found, using environment variables")
	}

	if err := run(cfg, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("store initialized", "backend", cfg.Store.Backend)

	links := registry.New(st, registry.WithLogger(log))
	res := resolver.New(links, log, resolver.Config{
		QueueSize: cfg.Scan.QueueSize,
		Timeout:   cfg.Scan.Timeout,
	})
	defer res.Close()

	var rl *limiter.RateLimiter
	if cfg.RateLimit.Enabled {
		rl = limiter.PerMinute(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		defer rl.Stop()
	}

	h := handlers.New(links, res, cfg.Server.BaseURL, log,
		handlers.WithForwardedHeaders(cfg.Server.TrustProxyHeaders))
	router := setupRouter(cfg, h, st, rl, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("server is running", "port", cfg.Server.Port,
			"docs", "http://localhost:"+cfg.Server.Port+"/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errChan:
		return fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// openStore connects the configured backend and returns a matching close func.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func() error, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		return store.NewRedis(client, cfg.Redis.KeyPrefix), client.Close, nil

	case config.BackendPostgres:
		database, err := db.InitDB(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return database, database.Close, nil

	default:
		return store.NewMemory(), func() error { return nil }, nil
	}
}
