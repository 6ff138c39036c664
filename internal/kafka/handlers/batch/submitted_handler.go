package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/texture-tool/internal/model"
	batchsvc "github.com/aliskhannn/texture-tool/internal/service/batch"
)

// service defines the interface for queueing batch jobs.
type service interface {
	Submit(ctx context.Context, params model.Params) (uuid.UUID, error)
}

// SubmittedHandler handles Kafka messages carrying batch requests.
type SubmittedHandler struct {
	service  service
	defaults model.Params
}

// NewSubmittedHandler creates a new handler. Fields missing from a
// request are taken from defaults.
func NewSubmittedHandler(s service, defaults model.Params) *SubmittedHandler {
	return &SubmittedHandler{service: s, defaults: defaults}
}

// Handle decodes a batch request from the message and queues it.
func (h *SubmittedHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var req model.BatchRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("unmarshal batch request: %w", err)
	}

	params, err := req.Apply(h.defaults)
	if err != nil {
		return fmt.Errorf("invalid batch request: %w", err)
	}

	id, err := h.service.Submit(ctx, params)
	if err != nil {
		return fmt.Errorf("submit batch: %w", err)
	}

	zlog.Logger.Info().
		Str("job_id", id.String()).
		Str("key", string(msg.Key)).
		Msg("batch submitted from kafka")

	return nil
}

// Retryable reports whether err from Handle is worth another attempt. Only a
// full job queue is; malformed or invalid requests never succeed.
func (h *SubmittedHandler) Retryable(err error) bool {
	return errors.Is(err, batchsvc.ErrQueueFull)
}
