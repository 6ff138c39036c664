package producer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/texture-tool/internal/config"
	"github.com/aliskhannn/texture-tool/internal/model"
)

// Producer represents a Kafka producer.
type Producer struct {
	Client   *wbfkafka.Producer
	strategy retry.Strategy
	cfg      *config.Kafka
}

// New creates a new Producer.
// - cfg: Kafka configuration struct
// - s: retry strategy
func New(
	cfg *config.Kafka,
	s retry.Strategy,
) *Producer {
	producer := wbfkafka.NewProducer(cfg.Brokers, cfg.Topic)

	return &Producer{
		Client:   producer,
		cfg:      cfg,
		strategy: s,
	}
}

// Produce serializes the request to JSON and sends it to Kafka.
// A fresh request ID is used as the message key and returned.
func (p *Producer) Produce(ctx context.Context, req model.BatchRequest) (uuid.UUID, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal batch request: %v", err)
	}

	id := uuid.New()

	if err = p.Client.SendWithRetry(ctx, p.strategy, []byte(id.String()), data); err != nil {
		return uuid.Nil, fmt.Errorf("failed to send batch request: %v", err)
	}

	return id, nil
}
