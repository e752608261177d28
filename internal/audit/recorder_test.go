package audit

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"report-router/internal/common/logging"
	"report-router/internal/routing"
	"report-router/internal/storage"
	"report-router/internal/storage/sqlite"
)

type memorySink struct {
	mu     sync.Mutex
	events []*storage.AuditEvent
	err    error
	block  chan struct{}
}

func (m *memorySink) InsertAuditEvent(ctx context.Context, event *storage.AuditEvent) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *memorySink) recorded() []*storage.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*storage.AuditEvent(nil), m.events...)
}

func entry(action string) routing.AuditEntry {
	return routing.AuditEntry{
		Principal: routing.Principal{Email: "ops@example.com", Role: "Operator"},
		Action:    action,
		Details:   "routed to finance",
		Targets:   []string{"Finance__Q1.pdf"},
		Status:    routing.StatusSuccess,
	}
}

func TestRecorder_RecordAndClose(t *testing.T) {
	sink := &memorySink{}
	recorder := NewRecorder(sink, 0, logging.NewNopLogger())

	recorder.Record(context.Background(), entry(routing.ActionFileRouted))
	recorder.Record(context.Background(), entry(routing.ActionBulkRoutingExecuted))

	require.NoError(t, recorder.Close(context.Background()))

	events := sink.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, routing.ActionFileRouted, events[0].Action)
	assert.Equal(t, "ops@example.com", events[0].Principal)
	assert.Equal(t, "Operator", events[0].Role)
	assert.Equal(t, []string{"Finance__Q1.pdf"}, events[0].Targets)
	assert.NotEmpty(t, events[0].ID)
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.False(t, events[0].CreatedAt.IsZero())
}

func TestRecorder_RecordAfterCloseIsDropped(t *testing.T) {
	sink := &memorySink{}
	recorder := NewRecorder(sink, 1, logging.NewNopLogger())
	require.NoError(t, recorder.Close(context.Background()))
	require.NoError(t, recorder.Close(context.Background()))

	assert.NotPanics(t, func() {
		recorder.Record(context.Background(), entry(routing.ActionFileRouted))
	})
	assert.Empty(t, sink.recorded())
}

func TestRecorder_FullQueueDoesNotBlock(t *testing.T) {
	sink := &memorySink{block: make(chan struct{})}
	recorder := NewRecorder(sink, 1, logging.NewNopLogger())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			recorder.Record(context.Background(), entry(routing.ActionFileRouted))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	close(sink.block)
	require.NoError(t, recorder.Close(context.Background()))
	assert.LessOrEqual(t, len(sink.recorded()), 2)
}

func TestRecorder_SinkErrorsAreSwallowed(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	recorder := NewRecorder(sink, 4, logging.NewNopLogger())

	recorder.Record(context.Background(), entry(routing.ActionFileRoutingError))
	require.NoError(t, recorder.Close(context.Background()))
	assert.Len(t, sink.recorded(), 1)
}

func TestRecorder_CloseHonoursContext(t *testing.T) {
	sink := &memorySink{block: make(chan struct{})}
	defer close(sink.block)
	recorder := NewRecorder(sink, 4, logging.NewNopLogger())
	recorder.Record(context.Background(), entry(routing.ActionFileRouted))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, recorder.Close(ctx), context.DeadlineExceeded)
}

func TestRecorder_WritesToSQLite(t *testing.T) {
	store, err := sqlite.NewAdapter(&sqlite.Config{DatabasePath: filepath.Join(t.TempDir(), "audit.db")})
	require.NoError(t, err)
	defer store.Close()

	recorder := NewRecorder(store, 0, logging.NewNopLogger())
	recorder.Record(context.Background(), entry(routing.ActionBulkRoutingExecuted))
	assert.NoError(t, recorder.Close(context.Background()))
}
