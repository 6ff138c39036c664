package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/texture-tool/internal/api/respond"
	"github.com/aliskhannn/texture-tool/internal/model"
	batchsvc "github.com/aliskhannn/texture-tool/internal/service/batch"
)

// service defines the interface for batch job operations.
type service interface {
	Submit(ctx context.Context, params model.Params) (uuid.UUID, error)
	Get(id uuid.UUID) (model.Job, error)
	Logs(id uuid.UUID, after int) ([]model.LogEntry, int, error)
	Cancel(id uuid.UUID) error
}

// Handler provides HTTP handlers for batch endpoints.
type Handler struct {
	service  service
	defaults model.Params
}

// NewHandler creates a new Handler. Fields missing from a submission
// are taken from defaults.
func NewHandler(s service, defaults model.Params) *Handler {
	return &Handler{service: s, defaults: defaults}
}

// OperationInfo describes one selectable operation.
type OperationInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Submit queues a batch built from the request body and the defaults.
func (h *Handler) Submit(c *ginext.Context) {
	var req model.BatchRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Err(err).Msg("failed to decode batch request")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}

	params, err := req.Apply(h.defaults)
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("invalid batch request")
		respond.Fail(c, http.StatusBadRequest, err)
		return
	}

	id, err := h.service.Submit(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, batchsvc.ErrQueueFull) {
			zlog.Logger.Warn().Msg("batch queue is full")
			respond.Fail(c, http.StatusServiceUnavailable, err)
			return
		}

		zlog.Logger.Err(err).Msg("failed to submit batch")
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to submit batch: %v", err))
		return
	}

	respond.Accepted(c, map[string]interface{}{
		"id": id,
	})
}

// Get returns the status and entries of a batch.
func (h *Handler) Get(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	job, err := h.service.Get(id)
	if err != nil {
		failLookup(c, err)
		return
	}

	respond.OK(c, job)
}

// Logs returns the entries of a batch starting at the "after" cursor.
func (h *Handler) Logs(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	after := 0
	if s := c.Query("after"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid cursor %q", s))
			return
		}
		after = n
	}

	entries, next, err := h.service.Logs(id, after)
	if err != nil {
		failLookup(c, err)
		return
	}

	respond.OK(c, map[string]interface{}{
		"entries": entries,
		"next":    next,
	})
}

// Cancel stops a pending or running batch.
func (h *Handler) Cancel(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(id); err != nil {
		if errors.Is(err, batchsvc.ErrJobFinished) {
			respond.Fail(c, http.StatusConflict, err)
			return
		}

		failLookup(c, err)
		return
	}

	respond.NoContent(c)
}

// Operations lists the available operations with their labels.
func (h *Handler) Operations(c *ginext.Context) {
	ops := make([]OperationInfo, 0, len(model.Operations))
	for _, o := range model.Operations {
		ops = append(ops, OperationInfo{Name: o.String(), Label: o.Label()})
	}

	respond.OK(c, ops)
}

// Defaults returns the initial parameter state.
func (h *Handler) Defaults(c *ginext.Context) {
	respond.OK(c, h.defaults)
}

func parseID(c *ginext.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		zlog.Logger.Err(err).Msg("failed to parse id")
		respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid id: %v", err))
		return uuid.Nil, false
	}

	return id, true
}

func failLookup(c *ginext.Context, err error) {
	if errors.Is(err, batchsvc.ErrJobNotFound) {
		zlog.Logger.Warn().Msg("batch not found")
		respond.Fail(c, http.StatusNotFound, fmt.Errorf("batch not found"))
		return
	}

	zlog.Logger.Err(err).Msg("failed to look up batch")
	respond.Fail(c, http.StatusInternalServerError, err)
}
