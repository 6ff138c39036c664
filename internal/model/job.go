package model

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a submitted batch.
type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobCanceled JobStatus = "canceled"
)

// Job represents a batch submitted for background execution.
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Params     Params     `json:"params"`
	Status     JobStatus  `json:"status"`
	Entries    []LogEntry `json:"entries"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Summary    *Summary   `json:"summary,omitempty"`
}

// Summary counts the outcomes of one batch run.
type Summary struct {
	Total     int  `json:"total"`
	Succeeded int  `json:"succeeded"`
	Skipped   int  `json:"skipped"`
	Failed    int  `json:"failed"`
	Canceled  bool `json:"canceled"`
}
