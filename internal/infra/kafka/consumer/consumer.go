package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/texture-tool/internal/config"
)

// maxBackoff caps the wait between attempts to hand over a retryable message.
const maxBackoff = 30 * time.Second

// submittedHandler defines the interface for handling batch submission messages.
// Retryable reports whether a Handle error is transient.
type submittedHandler interface {
	Handle(ctx context.Context, msg kafka.Message) error
	Retryable(err error) bool
}

// Consumer represents a Kafka consumer along with its configuration
// and the handler that turns messages into batch jobs.
type Consumer struct {
	Client           *wbfkafka.Consumer
	submittedHandler submittedHandler
	cfg              *config.Kafka
	strategy         retry.Strategy
}

// New creates a new Consumer.
// - cfg: Kafka configuration struct
// - s: retry strategy
// - sh: handler for batch submission messages
func New(
	cfg *config.Kafka,
	s retry.Strategy,
	sh submittedHandler,
) *Consumer {
	consumer := wbfkafka.NewConsumer(cfg.Brokers, cfg.Topic, cfg.GroupID)

	return &Consumer{
		Client:           consumer,
		submittedHandler: sh,
		cfg:              cfg,
		strategy:         s,
	}
}

// Consume continuously fetches messages from Kafka, hands them to the handler,
// and commits offsets. It stops gracefully on context cancellation.
func (c *Consumer) Consume(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	zlog.Logger.Info().
		Str("topic", c.cfg.Topic).
		Msg("starting consumer")

	for {
		// Exit if context is canceled (graceful shutdown).
		if ctx.Err() != nil {
			zlog.Logger.Info().Msg("shutdown signal received, stopping consumer")
			return
		}

		// Fetch a message from Kafka with retries.
		var msg kafka.Message
		err := retry.Do(func() error {
			var fetchErr error
			msg, fetchErr = c.Client.Fetch(ctx)
			return fetchErr
		}, c.strategy)

		if err != nil {
			if ctx.Err() != nil {
				continue
			}

			zlog.Logger.Err(err).Msg("failed to fetch message")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		// Submit the batch; shutdown leaves the message uncommitted.
		if !c.handle(ctx, msg) {
			continue
		}

		// Commit the message with retries.
		err = retry.Do(func() error {
			return c.Client.Commit(ctx, msg)
		}, c.strategy)
		if err != nil {
			zlog.Logger.Err(err).Msg("failed to commit message after retries")
			continue
		}

		zlog.Logger.Info().
			Int64("offset", msg.Offset).
			Msg("message handled")
	}
}

// handle passes msg to the handler until it is accepted or rejected for good.
// Transient failures are retried with backoff. It reports whether the
// message should be committed, which is false only when ctx ends first.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) bool {
	delay := c.strategy.Delay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	for {
		err := c.submittedHandler.Handle(ctx, msg)
		if err == nil {
			return true
		}

		if !c.submittedHandler.Retryable(err) {
			zlog.Logger.Err(err).
				Str("message", string(msg.Value)).
				Msg("batch request rejected")
			return true
		}

		zlog.Logger.Warn().
			Err(err).
			Int64("offset", msg.Offset).
			Dur("retry_in", delay).
			Msg("failed to submit batch, retrying")

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}

		if c.strategy.Backoff > 1 {
			delay = time.Duration(float64(delay) * c.strategy.Backoff)
		}
		delay = min(delay, maxBackoff)
	}
}
