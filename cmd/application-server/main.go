// cmd/application-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/devops863/kaizen-sourcing/internal/applications"
	awsclient "github.com/devops863/kaizen-sourcing/internal/common/aws"
	"github.com/devops863/kaizen-sourcing/internal/common/config"
	"github.com/devops863/kaizen-sourcing/internal/common/database"
	"github.com/devops863/kaizen-sourcing/internal/common/logger"
	"github.com/devops863/kaizen-sourcing/internal/common/observability"
	"github.com/devops863/kaizen-sourcing/internal/notifications"
	"github.com/devops863/kaizen-sourcing/internal/server"
)

// retryWithBackoff runs operation until it succeeds, doubling the delay after each failure.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting application server...", zap.String("environment", cfg.App.Environment))

	ctx := context.Background()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if cfg.Database.Postgres.AutoMigrate {
		if err := database.EnsureSchema(ctx, pg.DB); err != nil {
			zapLog.Fatal("schema migration failed", zap.Error(err))
		}
		zapLog.Info("applications table ready")
	} else {
		exists, err := database.TableExists(ctx, pg.DB, "applications")
		if err != nil {
			zapLog.Fatal("schema check failed", zap.Error(err))
		}
		if !exists {
			zapLog.Fatal("applications table is missing and auto_migrate is disabled")
		}
	}

	checks := map[string]server.Pinger{"postgres": pg}

	var store applications.Store = applications.NewPostgresStore(pg.DB)

	// --- Redis (optional list cache) ---
	if cfg.Database.Redis.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		store = applications.NewCachedStore(store, rdb.Client, cfg.Cache.Prefix, config.GetDuration(cfg.Cache.ListTTL), log)
		checks["redis"] = rdb
	}

	opts := []applications.Option{applications.WithRecorder(obs)}

	// --- Confirmation notifications ---
	if cfg.Notifications.Enabled() {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		notifier := notifications.NewConfirmationNotifier(
			notifications.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				Timeout:      config.GetDuration(cfg.Notifications.Timeout),
			},
			awsclient.NewSESClient(awsCfg, cfg.Notifications.Email.FromEmail),
			awsclient.NewSNSClient(awsCfg, cfg.Notifications.SMS.SenderID),
			log,
		)
		opts = append(opts, applications.WithNotifier(notifier))
		zapLog.Info("confirmation notifications enabled",
			zap.Bool("email", cfg.Notifications.Email.Enabled),
			zap.Bool("sms", cfg.Notifications.SMS.Enabled),
		)
	}

	srv := server.New(cfg.Server, server.Dependencies{
		Applications: applications.NewService(store, log, opts...),
		Checks:       checks,
		Logger:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		zapLog.Info("Shutdown signal received, draining requests...")
	case err := <-errCh:
		if err != nil {
			zapLog.Error("http server stopped", zap.Error(err))
		}
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("Application server stopped")
}
