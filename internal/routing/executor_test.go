package routing

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routedDecision(fileName, folder string) RoutingDecision {
	id := int64(1)
	return RoutingDecision{
		FileName:          fileName,
		Outcome:           OutcomeRouted,
		MatchedRuleID:     &id,
		DestinationFolder: folder,
		DestinationPath:   filepath.Join(testReports, folder, fileName),
	}
}

func TestExecutor_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("moves file and creates folder", func(t *testing.T) {
		store := newMemStore(t, "Finance__Q1.pdf")
		executor := NewExecutor(store, testIncoming, testReports, time.Second)

		decision := executor.Execute(ctx, routedDecision("Finance__Q1.pdf", "finance/2026"))

		assert.Equal(t, OutcomeRouted, decision.Outcome)
		assert.Empty(t, decision.Reason)
		assert.False(t, exists(store, filepath.Join(testIncoming, "Finance__Q1.pdf")))
		assert.True(t, exists(store, filepath.Join(testReports, "finance", "2026", "Finance__Q1.pdf")))
	})

	t.Run("collision leaves both files untouched", func(t *testing.T) {
		store := newMemStore(t, "Finance__Q1.pdf")
		dest := filepath.Join(testReports, "finance", "Finance__Q1.pdf")
		require.NoError(t, store.MkdirAll(filepath.Dir(dest), 0o755))
		writeFile(t, store, dest, "original")

		executor := NewExecutor(store, testIncoming, testReports, time.Second)
		decision := executor.Execute(ctx, routedDecision("Finance__Q1.pdf", "finance"))

		assert.Equal(t, OutcomeCollision, decision.Outcome)
		assert.Equal(t, ReasonCollision, decision.Reason)
		assert.True(t, exists(store, filepath.Join(testIncoming, "Finance__Q1.pdf")))
		assertContent(t, store, dest, "original")
	})

	t.Run("missing source", func(t *testing.T) {
		store := newMemStore(t)
		executor := NewExecutor(store, testIncoming, testReports, time.Second)

		decision := executor.Execute(ctx, routedDecision("Ghost__x.pdf", "finance"))

		assert.Equal(t, OutcomeError, decision.Outcome)
		assert.Equal(t, ReasonFileNotFound, decision.Reason)
	})

	t.Run("escaping folder is rejected before any mutation", func(t *testing.T) {
		store := newMemStore(t, "Finance__Q1.pdf")
		executor := NewExecutor(store, testIncoming, testReports, time.Second)

		decision := executor.Execute(ctx, routedDecision("Finance__Q1.pdf", "../outside"))

		assert.Equal(t, OutcomeError, decision.Outcome)
		assert.Contains(t, decision.Reason, "escapes")
		assert.False(t, exists(store, "/data/outside"))
		assert.True(t, exists(store, filepath.Join(testIncoming, "Finance__Q1.pdf")))
	})

	t.Run("rename failure reports underlying message", func(t *testing.T) {
		store := newMemStore(t, "Finance__Q1.pdf")
		fsys := &faultyFS{Filesystem: store, renameErr: errors.New("device busy")}
		executor := NewExecutor(fsys, testIncoming, testReports, time.Second)

		decision := executor.Execute(ctx, routedDecision("Finance__Q1.pdf", "finance"))

		assert.Equal(t, OutcomeError, decision.Outcome)
		assert.Equal(t, "device busy", decision.Reason)
		assert.True(t, exists(store, filepath.Join(testIncoming, "Finance__Q1.pdf")))
	})

	t.Run("mkdir failure", func(t *testing.T) {
		store := newMemStore(t, "Finance__Q1.pdf")
		fsys := &faultyFS{Filesystem: store, mkdirErr: errors.New("read-only filesystem")}
		executor := NewExecutor(fsys, testIncoming, testReports, time.Second)

		decision := executor.Execute(ctx, routedDecision("Finance__Q1.pdf", "finance"))

		assert.Equal(t, OutcomeError, decision.Outcome)
		assert.Contains(t, decision.Reason, "read-only filesystem")
	})

	t.Run("move timeout", func(t *testing.T) {
		store := newMemStore(t, "Finance__Q1.pdf")
		gate := &gatedFS{Filesystem: store, entered: make(chan struct{}), release: make(chan struct{})}
		defer close(gate.release)

		executor := NewExecutor(gate, testIncoming, testReports, 20*time.Millisecond)
		decision := executor.Execute(ctx, routedDecision("Finance__Q1.pdf", "finance"))

		assert.Equal(t, OutcomeError, decision.Outcome)
		assert.Contains(t, decision.Reason, "timed out")
	})

	t.Run("timed out move is logged until it settles", func(t *testing.T) {
		store := newMemStore(t, "Finance__Q1.pdf")
		gate := &gatedFS{Filesystem: store, entered: make(chan struct{}), release: make(chan struct{})}
		var logs syncBuffer

		executor := NewExecutor(gate, testIncoming, testReports, 20*time.Millisecond).WithLogger(bufferLogger(t, &logs))
		decision := executor.Execute(ctx, routedDecision("Finance__Q1.pdf", "finance"))

		assert.Equal(t, OutcomeError, decision.Outcome)
		assert.Contains(t, decision.Reason, filepath.Join(testIncoming, "Finance__Q1.pdf"))
		assert.Contains(t, logs.String(), "Move timed out and is still pending")
		assert.Contains(t, logs.String(), filepath.Join(testReports, "finance", "Finance__Q1.pdf"))

		close(gate.release)
		assert.Eventually(t, func() bool {
			return strings.Contains(logs.String(), "Pending move completed after timeout")
		}, time.Second, 5*time.Millisecond)
		assert.True(t, exists(store, filepath.Join(testReports, "finance", "Finance__Q1.pdf")))
	})

	t.Run("non-routed decisions pass through", func(t *testing.T) {
		store := newMemStore(t, "Unknown__x.pdf")
		executor := NewExecutor(store, testIncoming, testReports, time.Second)

		in := RoutingDecision{FileName: "Unknown__x.pdf", Outcome: OutcomeNoMatch, Reason: "no rule matches prefix Unknown"}
		assert.Equal(t, in, executor.Execute(ctx, in))
		assert.True(t, exists(store, filepath.Join(testIncoming, "Unknown__x.pdf")))
	})
}

func TestNewExecutor_DefaultTimeout(t *testing.T) {
	executor := NewExecutor(newMemStore(t), testIncoming, testReports, 0)
	assert.Equal(t, DefaultMoveTimeout, executor.moveTimeout)
}
