// Package report delivers user-facing batch log entries to their consumers.
package report

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aliskhannn/texture-tool/internal/model"
)

// Reporter accepts leveled messages produced while a batch runs.
type Reporter interface {
	Report(level model.Level, msg string)
}

// Func adapts an ordinary function to the Reporter interface.
type Func func(level model.Level, msg string)

// Report calls f(level, msg).
func (f Func) Report(level model.Level, msg string) {
	f(level, msg)
}

// Multi fans every entry out to all given reporters in order.
func Multi(reporters ...Reporter) Reporter {
	return Func(func(level model.Level, msg string) {
		for _, r := range reporters {
			r.Report(level, msg)
		}
	})
}

// Log writes entries as structured events to a zerolog logger.
type Log struct {
	logger zerolog.Logger
}

// NewLog creates a reporter writing to logger. Extra context such as
// the job ID is expected to be attached to the logger by the caller.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

// Report implements Reporter.
func (l *Log) Report(level model.Level, msg string) {
	l.logger.WithLevel(zerologLevel(level)).Msg(msg)
}

func zerologLevel(level model.Level) zerolog.Level {
	switch level {
	case model.LevelWarn:
		return zerolog.WarnLevel
	case model.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Collector stores entries in arrival order and lets consumers read them
// by cursor. It is safe for concurrent use.
type Collector struct {
	mu      sync.RWMutex
	entries []model.LogEntry
	now     func() time.Time
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{now: time.Now}
}

// Report implements Reporter.
func (c *Collector) Report(level model.Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, model.LogEntry{
		Level:   level,
		Message: msg,
		Time:    c.now(),
	})
}

// Since returns a copy of the entries starting at cursor after, along with
// the cursor to use on the next call.
func (c *Collector) Since(after int) ([]model.LogEntry, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if after < 0 {
		after = 0
	}
	if after >= len(c.entries) {
		return []model.LogEntry{}, len(c.entries)
	}

	out := make([]model.LogEntry, len(c.entries)-after)
	copy(out, c.entries[after:])

	return out, len(c.entries)
}

// Entries returns a copy of all collected entries.
func (c *Collector) Entries() []model.LogEntry {
	entries, _ := c.Since(0)
	return entries
}

// Count returns the number of entries per level.
func (c *Collector) Count(level model.Level) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, e := range c.entries {
		if e.Level == level {
			n++
		}
	}

	return n
}
