package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aliskhannn/texture-tool/internal/model"
	"github.com/aliskhannn/texture-tool/internal/report"
)

// stubRunner reports one entry per run and optionally blocks until
// released or canceled.
type stubRunner struct {
	mu      sync.Mutex
	order   []string
	started chan string
	release chan struct{}
}

func newStubRunner(block bool) *stubRunner {
	r := &stubRunner{started: make(chan string, 16)}
	if block {
		r.release = make(chan struct{})
	}
	return r
}

func (r *stubRunner) Run(ctx context.Context, params model.Params, rep report.Reporter) model.Summary {
	r.mu.Lock()
	r.order = append(r.order, params.OutputFolder)
	r.mu.Unlock()
	r.started <- params.OutputFolder

	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			rep.Report(model.LevelWarn, "canceled")
			return model.Summary{Canceled: true}
		}
	}

	rep.Report(model.LevelInfo, "done: "+params.OutputFolder)
	return model.Summary{Total: 1, Succeeded: 1}
}

func startService(t *testing.T, r runner, queueSize int) *Service {
	t.Helper()

	s := NewService(r, zerolog.Nop(), queueSize)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go s.Run(ctx, &wg)

	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	return s
}

func waitStatus(t *testing.T, s *Service, id uuid.UUID, want model.JobStatus) model.Job {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		j, err := s.Get(id)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if j.Status == want {
			return j
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("job %s never reached status %s", id, want)
	return model.Job{}
}

func TestJobsRunInSubmissionOrder(t *testing.T) {
	r := newStubRunner(false)
	s := startService(t, r, 8)

	var ids []uuid.UUID
	for _, out := range []string{"first", "second", "third"} {
		id, err := s.Submit(context.Background(), model.Params{OutputFolder: out})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		ids = append(ids, id)
	}

	for _, id := range ids {
		j := waitStatus(t, s, id, model.JobDone)
		if len(j.Entries) != 1 || j.Summary == nil || j.Summary.Succeeded != 1 {
			t.Fatalf("unexpected job %+v", j)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.order) != 3 || r.order[0] != "first" || r.order[2] != "third" {
		t.Fatalf("unexpected run order %v", r.order)
	}
}

func TestLogsCursor(t *testing.T) {
	s := startService(t, newStubRunner(false), 1)

	id, err := s.Submit(context.Background(), model.Params{OutputFolder: "out"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	waitStatus(t, s, id, model.JobDone)

	entries, next, err := s.Logs(id, 0)
	if err != nil || len(entries) != 1 || next != 1 {
		t.Fatalf("logs from 0: %v %d %v", entries, next, err)
	}

	entries, next, err = s.Logs(id, next)
	if err != nil || len(entries) != 0 || next != 1 {
		t.Fatalf("logs from cursor: %v %d %v", entries, next, err)
	}
}

func TestCancelRunningJob(t *testing.T) {
	r := newStubRunner(true)
	s := startService(t, r, 4)

	id, err := s.Submit(context.Background(), model.Params{OutputFolder: "slow"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-r.started
	waitStatus(t, s, id, model.JobRunning)

	if err := s.Cancel(id); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	j := waitStatus(t, s, id, model.JobCanceled)
	if j.FinishedAt == nil || !j.Summary.Canceled {
		t.Fatalf("unexpected canceled job %+v", j)
	}

	if err := s.Cancel(id); !errors.Is(err, ErrJobFinished) {
		t.Fatalf("second cancel: got %v, want ErrJobFinished", err)
	}
}

func TestCancelPendingJobNeverRuns(t *testing.T) {
	r := newStubRunner(true)
	s := startService(t, r, 4)

	first, _ := s.Submit(context.Background(), model.Params{OutputFolder: "first"})
	<-r.started

	second, err := s.Submit(context.Background(), model.Params{OutputFolder: "second"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := s.Cancel(second); err != nil {
		t.Fatalf("cancel pending: %v", err)
	}

	close(r.release)
	waitStatus(t, s, first, model.JobDone)

	j, _ := s.Get(second)
	if j.Status != model.JobCanceled || j.StartedAt != nil {
		t.Fatalf("pending job should be canceled without starting: %+v", j)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.order) != 1 {
		t.Fatalf("canceled job ran: %v", r.order)
	}
}

func TestQueueFull(t *testing.T) {
	// No worker is started, so the single slot stays occupied.
	s := NewService(newStubRunner(false), zerolog.Nop(), 1)

	if _, err := s.Submit(context.Background(), model.Params{}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := s.Submit(context.Background(), model.Params{}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("got %v, want ErrQueueFull", err)
	}
}

func TestUnknownJob(t *testing.T) {
	s := NewService(newStubRunner(false), zerolog.Nop(), 1)
	id := uuid.New()

	if _, err := s.Get(id); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("get: %v", err)
	}
	if _, _, err := s.Logs(id, 0); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("logs: %v", err)
	}
	if err := s.Cancel(id); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("cancel: %v", err)
	}
}
