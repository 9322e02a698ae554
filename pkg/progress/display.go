// pkg/progress/display.go
//
// Progress feedback for long-running operations. Everything goes through
// the structured logger so console and file output stay consistent.

package progress

import (
	"context"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Operation is a long-running operation with no measurable progress, only
// an estimated duration and periodic "still working" reminders.
type Operation struct {
	Name        string // e.g. "Collecting hardware inventory"
	Duration    string // e.g. "1-2 minutes"
	Note        string // e.g. "slow WANs stretch this considerably"
	PollSeconds int
	logger      otelzap.LoggerWithCtx
	done        chan struct{}
}

// NewOperation creates a progress operation. Call Start, then Done.
func NewOperation(ctx context.Context, name, duration string) *Operation {
	return &Operation{
		Name:        name,
		Duration:    duration,
		PollSeconds: 30,
		logger:      otelzap.Ctx(ctx),
		done:        make(chan struct{}),
	}
}

// WithNote adds an optional note shown once at start.
func (op *Operation) WithNote(note string) *Operation {
	op.Note = note
	return op
}

// WithPollInterval sets the reminder interval in seconds.
func (op *Operation) WithPollInterval(seconds int) *Operation {
	op.PollSeconds = seconds
	return op
}

// Start begins showing progress. Call Done when the operation completes.
func (op *Operation) Start() {
	op.logger.Info(op.Name, zap.String("estimated_duration", op.Duration))
	if op.Note != "" {
		op.logger.Info("Note: " + op.Note)
	}
	go op.ticker()
}

func (op *Operation) ticker() {
	ticker := time.NewTicker(time.Duration(op.PollSeconds) * time.Second)
	defer ticker.Stop()

	elapsed := 0
	for {
		select {
		case <-op.done:
			return
		case <-ticker.C:
			elapsed += op.PollSeconds
			op.logger.Info("Progress update",
				zap.String("status", "still working"),
				zap.Int("elapsed_seconds", elapsed),
				zap.String("operation", op.Name))
		}
	}
}

// Done stops the progress display.
func (op *Operation) Done() {
	close(op.done)
	op.logger.Info("Operation completed", zap.String("operation", op.Name))
}

// Tracker reports progress over a known number of items, one line per
// item with a running percentage. Safe for concurrent Advance calls.
type Tracker struct {
	name   string
	total  int
	done   int
	mu     sync.Mutex
	logger otelzap.LoggerWithCtx
}

// NewTracker creates a tracker for total items.
func NewTracker(ctx context.Context, name string, total int) *Tracker {
	return &Tracker{name: name, total: total, logger: otelzap.Ctx(ctx)}
}

// Advance marks one item complete and logs the step.
func (t *Tracker) Advance(label string) {
	t.mu.Lock()
	t.done++
	done := t.done
	t.mu.Unlock()

	percent := 100
	if t.total > 0 {
		percent = done * 100 / t.total
	}
	t.logger.Info(t.name,
		zap.String("current", label),
		zap.Int("completed", done),
		zap.Int("total", t.total),
		zap.Int("percent", percent))
}

// Percent returns completion as a whole percentage.
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.total <= 0 {
		return 100
	}
	return t.done * 100 / t.total
}
