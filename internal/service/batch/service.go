package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aliskhannn/texture-tool/internal/model"
	"github.com/aliskhannn/texture-tool/internal/report"
)

var (
	// ErrJobNotFound is returned when no job with the given ID exists.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobFinished is returned when canceling a job that already ended.
	ErrJobFinished = errors.New("job already finished")
	// ErrQueueFull is returned when the pending queue has no free slot.
	ErrQueueFull = errors.New("job queue is full")
)

// runner defines the batch driver executing one set of params.
type runner interface {
	Run(ctx context.Context, params model.Params, r report.Reporter) model.Summary
}

// job is the mutable state behind a model.Job. All fields except
// collector are guarded by Service.mu.
type job struct {
	id         uuid.UUID
	params     model.Params
	status     model.JobStatus
	createdAt  time.Time
	startedAt  *time.Time
	finishedAt *time.Time
	summary    *model.Summary
	cancel     context.CancelFunc
	collector  *report.Collector
}

// Service accepts batches and executes them one at a time on a single
// worker in submission order.
type Service struct {
	runner runner
	logger zerolog.Logger
	queue  chan *job
	now    func() time.Time

	mu   sync.RWMutex
	jobs map[uuid.UUID]*job
}

// NewService creates a Service with room for queueSize pending jobs.
func NewService(r runner, logger zerolog.Logger, queueSize int) *Service {
	if queueSize < 1 {
		queueSize = 1
	}

	return &Service{
		runner: r,
		logger: logger,
		queue:  make(chan *job, queueSize),
		now:    time.Now,
		jobs:   make(map[uuid.UUID]*job),
	}
}

// Submit registers a new job for params and queues it for execution.
func (s *Service) Submit(ctx context.Context, params model.Params) (uuid.UUID, error) {
	j := &job{
		id:        uuid.New(),
		params:    params,
		status:    model.JobPending,
		createdAt: s.now(),
		collector: report.NewCollector(),
	}

	s.mu.Lock()
	s.jobs[j.id] = j
	s.mu.Unlock()

	select {
	case s.queue <- j:
	case <-ctx.Done():
		s.forget(j.id)
		return uuid.Nil, fmt.Errorf("submit job: %w", ctx.Err())
	default:
		s.forget(j.id)
		return uuid.Nil, ErrQueueFull
	}

	s.logger.Info().
		Str("job_id", j.id.String()).
		Str("operation", params.Operation.String()).
		Msg("job submitted")

	return j.id, nil
}

// Get returns a snapshot of the job with the given ID.
func (s *Service) Get(id uuid.UUID) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return model.Job{}, ErrJobNotFound
	}

	return model.Job{
		ID:         j.id,
		Params:     j.params,
		Status:     j.status,
		Entries:    j.collector.Entries(),
		CreatedAt:  j.createdAt,
		StartedAt:  j.startedAt,
		FinishedAt: j.finishedAt,
		Summary:    j.summary,
	}, nil
}

// Logs returns the entries of a job from cursor after on, together with
// the cursor for the next read.
func (s *Service) Logs(id uuid.UUID, after int) ([]model.LogEntry, int, error) {
	s.mu.RLock()
	j, ok := s.jobs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, 0, ErrJobNotFound
	}

	entries, next := j.collector.Since(after)
	return entries, next, nil
}

// Cancel stops a job. A pending job never starts; a running job stops
// after the file in progress.
func (s *Service) Cancel(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}

	switch j.status {
	case model.JobPending:
		now := s.now()
		j.status = model.JobCanceled
		j.finishedAt = &now
	case model.JobRunning:
		j.cancel()
	default:
		return ErrJobFinished
	}

	return nil
}

// Run executes queued jobs until ctx is canceled. Canceling ctx also
// cancels the job in progress.
func (s *Service) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	s.logger.Info().Msg("starting batch worker")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("shutdown signal received, stopping batch worker")
			return
		case j := <-s.queue:
			s.execute(ctx, j)
		}
	}
}

// execute runs a single job unless it was canceled while pending.
func (s *Service) execute(ctx context.Context, j *job) {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if j.status != model.JobPending {
		s.mu.Unlock()
		return
	}
	started := s.now()
	j.status = model.JobRunning
	j.startedAt = &started
	j.cancel = cancel
	s.mu.Unlock()

	logger := s.logger.With().
		Str("job_id", j.id.String()).
		Str("operation", j.params.Operation.String()).
		Logger()

	sum := s.runner.Run(jobCtx, j.params, report.Multi(j.collector, report.NewLog(logger)))

	s.mu.Lock()
	finished := s.now()
	j.finishedAt = &finished
	j.summary = &sum
	status := model.JobDone
	if sum.Canceled || jobCtx.Err() != nil {
		status = model.JobCanceled
	}
	j.status = status
	s.mu.Unlock()

	logger.Info().
		Int("total", sum.Total).
		Int("failed", sum.Failed).
		Str("status", string(status)).
		Msg("job finished")
}

func (s *Service) forget(id uuid.UUID) {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
}
