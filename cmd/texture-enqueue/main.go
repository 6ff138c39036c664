package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/texture-tool/internal/config"
	"github.com/aliskhannn/texture-tool/internal/infra/kafka/producer"
)

func main() {
	var o options
	configPath := flag.String("config", "./config/config.yml", "path to the config file")
	flag.StringVar(&o.operation, "op", "", "operation: remove_watermark or downsample")
	flag.StringVar(&o.single, "file", "", "single image to process")
	flag.StringVar(&o.folder, "folder", "", "folder to process recursively")
	flag.StringVar(&o.output, "out", "", "output folder")
	flag.IntVar(&o.size, "size", unset, "downsample target size")
	flag.IntVar(&o.x, "x", unset, "watermark left edge, percent of width")
	flag.IntVar(&o.y, "y", unset, "watermark top edge, percent measured from the bottom")
	flag.IntVar(&o.w, "w", unset, "watermark width, percent of width")
	flag.IntVar(&o.h, "h", unset, "watermark height, percent of width")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.MustLoad(*configPath)

	// Only flags that were given end up in the request; the server fills the rest.
	req := buildRequest(o, cfg.Defaults.Watermark)

	p := producer.New(&cfg.Kafka, retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	})
	defer func() {
		if err := p.Client.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close kafka producer client")
		}
	}()

	id, err := p.Produce(ctx, req)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to enqueue batch")
		return
	}

	zlog.Logger.Info().
		Str("request_id", id.String()).
		Str("topic", cfg.Kafka.Topic).
		Msg("batch enqueued")
}
