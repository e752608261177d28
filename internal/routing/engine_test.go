package routing

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "report-router/internal/common/errors"
	"report-router/internal/common/logging"
	"report-router/internal/fsstore"
	"report-router/internal/locks"
)

func assertContent(t *testing.T, store *fsstore.Store, path, want string) {
	t.Helper()
	data, err := afero.ReadFile(store.Fs(), path)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
}

func TestNewEngine_Validation(t *testing.T) {
	store := newMemStore(t)

	tests := []struct {
		name string
		opts Options
	}{
		{"missing rules", Options{FS: store, IncomingDir: testIncoming, ReportsDir: testReports}},
		{"missing fs", Options{Rules: &staticRules{}, IncomingDir: testIncoming, ReportsDir: testReports}},
		{"missing locker", Options{Rules: &staticRules{}, FS: store, IncomingDir: testIncoming, ReportsDir: testReports}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(tt.opts)
			assert.Nil(t, engine)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
		})
	}
}

func TestEngine_RunRoutingNow_EndToEnd(t *testing.T) {
	store := newMemStore(t, "Finance__Q1-summary.pdf", "Unknown__x.pdf")
	fixture := newEngine(t, store, rule(1, "Finance", "finance", 10))

	result, err := fixture.engine.RunRoutingNow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.RoutedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 0, result.FailedCount)
	require.Len(t, result.Decisions, 2)

	assert.Equal(t, "Finance__Q1-summary.pdf", result.Decisions[0].FileName)
	assert.Equal(t, OutcomeRouted, result.Decisions[0].Outcome)
	assert.Equal(t, "Unknown__x.pdf", result.Decisions[1].FileName)
	assert.Equal(t, OutcomeNoMatch, result.Decisions[1].Outcome)
	assert.Equal(t, "no rule matches prefix Unknown", result.Decisions[1].Reason)

	assert.True(t, exists(store, filepath.Join(testReports, "finance", "Finance__Q1-summary.pdf")))
	assert.True(t, exists(store, filepath.Join(testIncoming, "Unknown__x.pdf")))

	entries := fixture.auditor.all()
	require.Len(t, entries, 1)
	assert.Equal(t, ActionBulkRoutingExecuted, entries[0].Action)
	assert.Equal(t, StatusSuccess, entries[0].Status)
	assert.Equal(t, SystemPrincipal, entries[0].Principal)
	assert.Equal(t, []string{"Finance__Q1-summary.pdf"}, entries[0].Targets)
	assert.Equal(t, "routed=1 skipped=1 failed=0", entries[0].Details)

	require.Len(t, fixture.publisher.events, 1)
	event := fixture.publisher.events[0]
	assert.Equal(t, "Finance__Q1-summary.pdf", event.FileName)
	assert.Equal(t, "finance", event.Folder)
	assert.Equal(t, int64(1), event.RuleID)
	assert.Equal(t, filepath.Join(testReports, "finance", "Finance__Q1-summary.pdf"), event.Path)
}

func TestEngine_RunRoutingNow_Idempotent(t *testing.T) {
	store := newMemStore(t, "Finance__Q1.pdf", "Risk__a.pdf")
	fixture := newEngine(t, store, rule(1, "Finance", "finance", 1), rule(2, "Risk", "risk", 1))

	first, err := fixture.engine.RunRoutingNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.RoutedCount)

	second, err := fixture.engine.RunRoutingNow(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second.Decisions)
	assert.NotNil(t, second.Decisions)
	assert.Equal(t, 0, second.RoutedCount+second.SkippedCount+second.FailedCount)
}

func TestEngine_RunRoutingNow_Collision(t *testing.T) {
	store := newMemStore(t, "Finance__Q1.pdf")
	dest := filepath.Join(testReports, "finance", "Finance__Q1.pdf")
	require.NoError(t, store.MkdirAll(filepath.Dir(dest), 0o755))
	writeFile(t, store, dest, "existing")

	fixture := newEngine(t, store, rule(1, "Finance", "finance", 1))
	result, err := fixture.engine.RunRoutingNow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.RoutedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, OutcomeCollision, result.Decisions[0].Outcome)
	assertContent(t, store, dest, "existing")
	assert.True(t, exists(store, filepath.Join(testIncoming, "Finance__Q1.pdf")))
	assert.Empty(t, fixture.publisher.events)
}

func TestEngine_RunRoutingNow_PerFileErrorsDoNotAbort(t *testing.T) {
	store := newMemStore(t, "Bad__a.pdf", "Finance__b.pdf")
	fixture := newEngine(t, store,
		rule(1, "Bad", "../escape", 1),
		rule(2, "Finance", "finance", 1),
	)

	result, err := fixture.engine.RunRoutingNow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.RoutedCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, OutcomeError, result.Decisions[0].Outcome)
	assert.Equal(t, OutcomeRouted, result.Decisions[1].Outcome)
}

func TestEngine_RunRoutingNow_SkipsDirectoriesAndHiddenFiles(t *testing.T) {
	store := newMemStore(t, "Finance__a.pdf", ".Finance__partial.pdf")
	require.NoError(t, store.MkdirAll(filepath.Join(testIncoming, "Finance__dir"), 0o755))

	fixture := newEngine(t, store, rule(1, "Finance", "finance", 1))
	result, err := fixture.engine.RunRoutingNow(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Decisions, 1)
	assert.Equal(t, "Finance__a.pdf", result.Decisions[0].FileName)
}

func TestEngine_RunRoutingNow_ScanFailureAborts(t *testing.T) {
	store := newMemStore(t, "Finance__a.pdf")
	fsys := &faultyFS{Filesystem: store, readDirErr: errors.New("permission denied")}
	fixture := newEngine(t, fsys, rule(1, "Finance", "finance", 1))

	result, err := fixture.engine.RunRoutingNow(context.Background())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIO))
	assert.True(t, exists(store, filepath.Join(testIncoming, "Finance__a.pdf")))

	entries := fixture.auditor.all()
	require.Len(t, entries, 1)
	assert.Equal(t, ActionBulkRoutingFailed, entries[0].Action)
	assert.Equal(t, StatusFailed, entries[0].Status)
}

func TestEngine_RunRoutingNow_RuleLoadFailureAborts(t *testing.T) {
	store := newMemStore(t, "Finance__a.pdf")
	fixture := newEngine(t, store)
	fixture.rules.err = errors.New("database is locked")

	_, err := fixture.engine.RunRoutingNow(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIO))
	assert.True(t, exists(store, filepath.Join(testIncoming, "Finance__a.pdf")))

	// the lock must have been released
	fixture.rules.err = nil
	_, err = fixture.engine.RunRoutingNow(context.Background())
	assert.NoError(t, err)
}

func TestEngine_RunRoutingNow_Concurrent(t *testing.T) {
	store := newMemStore(t, "Finance__a.pdf")
	gate := &gatedFS{Filesystem: store, entered: make(chan struct{}), release: make(chan struct{})}
	fixture := newEngine(t, gate, rule(1, "Finance", "finance", 1))

	var (
		wg          sync.WaitGroup
		firstResult *RoutingResult
		firstErr    error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstResult, firstErr = fixture.engine.RunRoutingNow(context.Background())
	}()

	<-gate.entered

	_, err := fixture.engine.RunRoutingNow(context.Background())
	assert.ErrorIs(t, err, ErrRoutingInProgress)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConflict))

	_, err = fixture.engine.RouteSingle(context.Background(), "Finance__a.pdf")
	assert.ErrorIs(t, err, ErrRoutingInProgress)

	// read-only operations run alongside a pass
	files, err := fixture.engine.ListIncomingFiles(context.Background())
	require.NoError(t, err)
	assert.Len(t, files, 1)

	decisions, err := fixture.engine.DryRun(context.Background(), []string{"Finance__a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeRouted, decisions[0].Outcome)

	close(gate.release)
	wg.Wait()

	require.NoError(t, firstErr)
	assert.Equal(t, 1, firstResult.RoutedCount)
}

func TestEngine_DryRun(t *testing.T) {
	store := newMemStore(t, "Finance__real.pdf")
	fixture := newEngine(t, store, rule(1, "Finance", "finance", 1))

	decisions, err := fixture.engine.DryRun(context.Background(), []string{
		"Finance__real.pdf",
		"Finance__hypothetical.pdf",
		"Unknown__x.pdf",
	})
	require.NoError(t, err)
	require.Len(t, decisions, 3)

	assert.Equal(t, OutcomeRouted, decisions[0].Outcome)
	assert.Equal(t, OutcomeRouted, decisions[1].Outcome)
	assert.Equal(t, filepath.Join(testReports, "finance", "Finance__hypothetical.pdf"), decisions[1].DestinationPath)
	assert.Equal(t, OutcomeNoMatch, decisions[2].Outcome)

	assert.True(t, exists(store, filepath.Join(testIncoming, "Finance__real.pdf")))
	assert.False(t, exists(store, filepath.Join(testReports, "finance")))
	assert.Equal(t, 1, fixture.rules.calls, "one snapshot per dry run")
	assert.Empty(t, fixture.auditor.all())
}

func TestEngine_DryRun_Empty(t *testing.T) {
	fixture := newEngine(t, newMemStore(t))

	decisions, err := fixture.engine.DryRun(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, decisions)
	assert.Empty(t, decisions)
}

func TestEngine_ListIncomingFiles(t *testing.T) {
	store := newMemStore(t, "b.pdf", "a.pdf")
	fixture := newEngine(t, store)

	files, err := fixture.engine.ListIncomingFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.pdf", files[0].Name)
	assert.Equal(t, int64(len("a.pdf")), files[0].SizeBytes)
	assert.Equal(t, "b.pdf", files[1].Name)
}

func TestEngine_RouteSingle(t *testing.T) {
	ctx := WithPrincipal(context.Background(), Principal{Email: "ops@example.com", Role: "Operator"})

	t.Run("routes the named file only", func(t *testing.T) {
		store := newMemStore(t, "Finance__a.pdf", "Finance__b.pdf")
		fixture := newEngine(t, store, rule(1, "Finance", "finance", 1))

		decision, err := fixture.engine.RouteSingle(ctx, "Finance__a.pdf")
		require.NoError(t, err)

		assert.Equal(t, OutcomeRouted, decision.Outcome)
		assert.True(t, exists(store, filepath.Join(testReports, "finance", "Finance__a.pdf")))
		assert.True(t, exists(store, filepath.Join(testIncoming, "Finance__b.pdf")))

		entries := fixture.auditor.all()
		require.Len(t, entries, 1)
		assert.Equal(t, ActionFileRouted, entries[0].Action)
		assert.Equal(t, "ops@example.com", entries[0].Principal.Email)
		assert.Equal(t, "Operator", entries[0].Principal.Role)
		assert.Equal(t, []string{"Finance__a.pdf"}, entries[0].Targets)
	})

	t.Run("missing file", func(t *testing.T) {
		fixture := newEngine(t, newMemStore(t), rule(1, "Finance", "finance", 1))

		decision, err := fixture.engine.RouteSingle(ctx, "Finance__ghost.pdf")
		require.NoError(t, err)

		assert.Equal(t, OutcomeError, decision.Outcome)
		assert.Equal(t, ReasonFileNotFound, decision.Reason)
		assert.Equal(t, 0, fixture.rules.calls)

		entries := fixture.auditor.all()
		require.Len(t, entries, 1)
		assert.Equal(t, ActionFileRoutingError, entries[0].Action)
		assert.Equal(t, StatusFailed, entries[0].Status)
	})

	t.Run("directory named like a file", func(t *testing.T) {
		store := newMemStore(t)
		require.NoError(t, store.MkdirAll(filepath.Join(testIncoming, "Finance__dir"), 0o755))
		fixture := newEngine(t, store, rule(1, "Finance", "finance", 1))

		decision, err := fixture.engine.RouteSingle(ctx, "Finance__dir")
		require.NoError(t, err)
		assert.Equal(t, ReasonFileNotFound, decision.Reason)
	})

	t.Run("no match", func(t *testing.T) {
		store := newMemStore(t, "Unknown__x.pdf")
		fixture := newEngine(t, store, rule(1, "Finance", "finance", 1))

		decision, err := fixture.engine.RouteSingle(ctx, "Unknown__x.pdf")
		require.NoError(t, err)
		assert.Equal(t, OutcomeNoMatch, decision.Outcome)

		entries := fixture.auditor.all()
		require.Len(t, entries, 1)
		assert.Equal(t, ActionFileRoutingFailed, entries[0].Action)
	})

	t.Run("path traversal in name", func(t *testing.T) {
		fixture := newEngine(t, newMemStore(t), rule(1, "Finance", "finance", 1))

		decision, err := fixture.engine.RouteSingle(ctx, "../../etc/passwd")
		require.NoError(t, err)
		assert.Equal(t, OutcomeError, decision.Outcome)
		assert.Contains(t, decision.Reason, "must not contain a path")
	})

	t.Run("rule load failure", func(t *testing.T) {
		store := newMemStore(t, "Finance__a.pdf")
		fixture := newEngine(t, store)
		fixture.rules.err = errors.New("connection refused")

		_, err := fixture.engine.RouteSingle(ctx, "Finance__a.pdf")
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeIO))
	})
}

func TestEngine_PublishFailureDoesNotFailRouting(t *testing.T) {
	store := newMemStore(t, "Finance__a.pdf")
	fixture := newEngine(t, store, rule(1, "Finance", "finance", 1))
	fixture.publisher.err = errors.New("broker down")

	result, err := fixture.engine.RunRoutingNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.RoutedCount)
}

func TestPrincipalFromContext(t *testing.T) {
	assert.Equal(t, SystemPrincipal, PrincipalFromContext(context.Background()))

	ctx := WithPrincipal(context.Background(), Principal{Email: "a@example.com"})
	assert.Equal(t, Principal{Email: "a@example.com", Role: "Admin"}, PrincipalFromContext(ctx))
}

func TestEngine_PublishIsBoundedByMoveTimeout(t *testing.T) {
	store := newMemStore(t, "Finance__a.pdf")
	publisher := &stallingPublisher{}
	locker := locks.NewLocalLocker()

	engine, err := NewEngine(Options{
		Rules:       &staticRules{rules: []PathRule{rule(1, "Finance", "finance", 1)}},
		FS:          store,
		Locker:      locker,
		Events:      publisher,
		Logger:      logging.NewNopLogger(),
		IncomingDir: testIncoming,
		ReportsDir:  testReports,
		MoveTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		result, err := engine.RunRoutingNow(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 1, result.RoutedCount)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("routing pass blocked on a stalled publisher")
	}

	publisher.mu.Lock()
	assert.True(t, publisher.hadDeadline)
	publisher.mu.Unlock()

	lock, err := locker.TryAcquire(context.Background(), ExecutionLockKey)
	require.NoError(t, err, "execution lock must be free after the pass")
	require.NoError(t, lock.Release(context.Background()))
}

func TestEngine_RunRoutingNow_StopsWhenLockIsLost(t *testing.T) {
	store := newMemStore(t, "Finance__a.pdf", "Finance__b.pdf", "Finance__c.pdf")
	fixture := newEngine(t, store, rule(1, "Finance", "finance", 1))

	engine, err := NewEngine(Options{
		Rules:       fixture.rules,
		FS:          store,
		Locker:      &expiringLocker{heldChecks: 1},
		Auditor:     fixture.auditor,
		Logger:      logging.NewNopLogger(),
		IncomingDir: testIncoming,
		ReportsDir:  testReports,
	})
	require.NoError(t, err)

	result, err := engine.RunRoutingNow(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExecutionLockLost))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConflict))
	assert.Contains(t, err.Error(), "stopped after 1 of 3 files")

	require.NotNil(t, result)
	assert.Equal(t, 1, result.RoutedCount)
	assert.True(t, exists(store, filepath.Join(testReports, "finance", "Finance__a.pdf")))
	assert.True(t, exists(store, filepath.Join(testIncoming, "Finance__b.pdf")))
	assert.True(t, exists(store, filepath.Join(testIncoming, "Finance__c.pdf")))

	entries := fixture.auditor.all()
	require.Len(t, entries, 1)
	assert.Equal(t, ActionBulkRoutingFailed, entries[0].Action)
	assert.Equal(t, StatusFailed, entries[0].Status)
	assert.Equal(t, []string{"Finance__a.pdf"}, entries[0].Targets)
}

func TestEngine_RouteSingle_LockLost(t *testing.T) {
	store := newMemStore(t, "Finance__a.pdf")
	engine, err := NewEngine(Options{
		Rules:       &staticRules{rules: []PathRule{rule(1, "Finance", "finance", 1)}},
		FS:          store,
		Locker:      &expiringLocker{heldChecks: 0},
		Logger:      logging.NewNopLogger(),
		IncomingDir: testIncoming,
		ReportsDir:  testReports,
	})
	require.NoError(t, err)

	_, err = engine.RouteSingle(context.Background(), "Finance__a.pdf")
	assert.True(t, errors.Is(err, ErrExecutionLockLost))
	assert.True(t, exists(store, filepath.Join(testIncoming, "Finance__a.pdf")))
}
