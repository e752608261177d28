// Package audit records routing activity to persistent storage without
// slowing down or failing the routing operation that produced it.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/lucsky/cuid"
	"report-router/internal/common/logging"
	"report-router/internal/routing"
	"report-router/internal/storage"
)

// Sink persists audit events. storage.Storage satisfies it.
type Sink interface {
	InsertAuditEvent(ctx context.Context, event *storage.AuditEvent) error
}

// DefaultBufferSize is the number of events queued before new ones are dropped.
const DefaultBufferSize = 256

// Recorder is an asynchronous routing.Auditor. Entries are queued and written
// by a single background worker; a full queue drops the entry with a warning.
type Recorder struct {
	sink    Sink
	logger  logging.Logger
	events  chan *storage.AuditEvent
	done    chan struct{}
	now     func() time.Time
	mu      sync.RWMutex
	closed  bool
	timeout time.Duration
}

// NewRecorder starts a Recorder writing to sink. A bufferSize of zero selects
// DefaultBufferSize.
func NewRecorder(sink Sink, bufferSize int, logger logging.Logger) *Recorder {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	r := &Recorder{
		sink:    sink,
		logger:  logger.WithFields(logging.Field{Key: "component", Value: "audit"}),
		events:  make(chan *storage.AuditEvent, bufferSize),
		done:    make(chan struct{}),
		now:     time.Now,
		timeout: 5 * time.Second,
	}

	go r.run()
	return r
}

// Record implements routing.Auditor. It never blocks on the sink.
func (r *Recorder) Record(ctx context.Context, entry routing.AuditEntry) {
	event := &storage.AuditEvent{
		ID:        cuid.New(),
		Principal: entry.Principal.Email,
		Role:      entry.Principal.Role,
		Action:    entry.Action,
		Details:   entry.Details,
		Targets:   entry.Targets,
		Status:    entry.Status,
		CreatedAt: r.now().UTC(),
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("Audit recorder closed, dropping event", logging.Field{Key: "action", Value: event.Action})
		return
	}

	select {
	case r.events <- event:
	default:
		r.logger.Warn("Audit queue full, dropping event",
			logging.Field{Key: "action", Value: event.Action},
			logging.Field{Key: "principal", Value: event.Principal},
		)
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	for event := range r.events {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.sink.InsertAuditEvent(ctx, event); err != nil {
			r.logger.Error("Failed to write audit event", err,
				logging.Field{Key: "action", Value: event.Action},
				logging.Field{Key: "id", Value: event.ID},
			)
		}
		cancel()
	}
}

// Close stops accepting entries and waits until the queue is drained or ctx
// expires.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.events)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
