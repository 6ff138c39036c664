package consumer

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/texture-tool/internal/config"
	batchsvc "github.com/aliskhannn/texture-tool/internal/service/batch"
)

func TestMain(m *testing.M) {
	zlog.Init()
	os.Exit(m.Run())
}

// scriptedHandler returns the queued errors in order, then nil.
type scriptedHandler struct {
	errs  []error
	calls int
}

func (h *scriptedHandler) Handle(context.Context, kafka.Message) error {
	h.calls++
	if len(h.errs) == 0 {
		return nil
	}
	err := h.errs[0]
	h.errs = h.errs[1:]
	return err
}

func (h *scriptedHandler) Retryable(err error) bool {
	return errors.Is(err, batchsvc.ErrQueueFull)
}

func newTestConsumer(h submittedHandler) *Consumer {
	return &Consumer{
		submittedHandler: h,
		cfg:              &config.Kafka{Topic: "texture-batches"},
		strategy:         retry.Strategy{Attempts: 1, Delay: time.Millisecond, Backoff: 2},
	}
}

func TestHandleRetriesFullQueue(t *testing.T) {
	h := &scriptedHandler{errs: []error{batchsvc.ErrQueueFull, batchsvc.ErrQueueFull}}

	if !newTestConsumer(h).handle(context.Background(), kafka.Message{Value: []byte(`{}`)}) {
		t.Fatal("message should be committed once accepted")
	}
	if h.calls != 3 {
		t.Fatalf("handler called %d times, want 3", h.calls)
	}
}

func TestHandleCommitsPermanentRejection(t *testing.T) {
	h := &scriptedHandler{errs: []error{errors.New("unmarshal batch request: bad json")}}

	if !newTestConsumer(h).handle(context.Background(), kafka.Message{Value: []byte(`x`)}) {
		t.Fatal("invalid message should be committed")
	}
	if h.calls != 1 {
		t.Fatalf("handler called %d times, want 1", h.calls)
	}
}

func TestHandleStopsOnShutdown(t *testing.T) {
	errs := make([]error, 1000)
	for i := range errs {
		errs[i] = batchsvc.ErrQueueFull
	}
	h := &scriptedHandler{errs: errs}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if newTestConsumer(h).handle(ctx, kafka.Message{}) {
		t.Fatal("message must stay uncommitted when shutting down")
	}
}
