package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	batchapi "github.com/aliskhannn/texture-tool/internal/api/handlers/batch"
	"github.com/aliskhannn/texture-tool/internal/api/router"
	"github.com/aliskhannn/texture-tool/internal/api/server"
	"github.com/aliskhannn/texture-tool/internal/batch"
	"github.com/aliskhannn/texture-tool/internal/config"
	"github.com/aliskhannn/texture-tool/internal/infra/kafka/consumer"
	batchmsg "github.com/aliskhannn/texture-tool/internal/kafka/handlers/batch"
	"github.com/aliskhannn/texture-tool/internal/processor"
	batchsvc "github.com/aliskhannn/texture-tool/internal/service/batch"
	"github.com/aliskhannn/texture-tool/internal/storage/file"
	"github.com/aliskhannn/texture-tool/internal/storage/mirror"
)

func main() {
	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad("./config/config.yml")

	defaults, err := cfg.Defaults.Params()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("invalid default parameters")
	}

	// Retry strategy for Kafka and the output mirror.
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}

	// Single-file transforms write through the local file storage.
	imageProcessor := processor.New(file.NewStorage())
	driver := batch.New(imageProcessor, nil)

	// Optionally mirror every output into a MinIO bucket.
	if m := cfg.Storage.Mirror; m.Enabled {
		storage, err := mirror.NewStorage(ctx, m.Endpoint, m.AccessKey, m.SecretKey, m.BucketName, m.Prefix, m.UseSSL, strategy)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to mirror storage")
		}
		driver = batch.New(imageProcessor, storage)

		zlog.Logger.Info().
			Str("bucket", m.BucketName).
			Msg("output mirror enabled")
	}

	service := batchsvc.NewService(driver, zlog.Logger, cfg.Server.QueueSize)

	// Start the batch worker in a separate goroutine.
	var wg sync.WaitGroup
	wg.Add(1)
	go service.Run(ctx, &wg)

	// Kafka consumer for batch submissions.
	var c *consumer.Consumer
	if cfg.Kafka.Enabled {
		c = consumer.New(&cfg.Kafka, strategy, batchmsg.NewSubmittedHandler(service, defaults))

		wg.Add(1)
		go c.Consume(ctx, &wg)
	}

	// Start HTTP server in a separate goroutine.
	r := router.Setup(batchapi.NewHandler(service, defaults))
	s := server.New(cfg.Server, r)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	zlog.Logger.Info().
		Str("addr", cfg.Server.HTTPPort).
		Msg("texture tool started")

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// Wait for the batch worker and Kafka consumer to finish.
	wg.Wait()

	if c != nil {
		if err := c.Client.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close kafka consumer client")
		}
	}
}
