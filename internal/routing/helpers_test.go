package routing

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"report-router/internal/common/logging"
	"report-router/internal/fsstore"
	"report-router/internal/locks"
)

const (
	testIncoming = "/data/incoming"
	testReports  = "/data/reports"
)

type staticRules struct {
	rules []PathRule
	err   error
	calls int
	mu    sync.Mutex
}

func (s *staticRules) ListActiveRules(ctx context.Context) ([]PathRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]PathRule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recordingAuditor) Record(ctx context.Context, entry AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAuditor) all() []AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AuditEntry(nil), r.entries...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []RoutedEvent
	err    error
}

func (r *recordingPublisher) PublishRouted(ctx context.Context, event RoutedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

// gatedFS blocks every rename until release is closed.
type gatedFS struct {
	Filesystem
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedFS) RenameNoReplace(oldpath, newpath string) error {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.Filesystem.RenameNoReplace(oldpath, newpath)
}

// faultyFS fails selected operations.
type faultyFS struct {
	Filesystem
	readDirErr error
	renameErr  error
	mkdirErr   error
}

func (f *faultyFS) ReadDir(dir string) ([]fs.FileInfo, error) {
	if f.readDirErr != nil {
		return nil, f.readDirErr
	}
	return f.Filesystem.ReadDir(dir)
}

func (f *faultyFS) RenameNoReplace(oldpath, newpath string) error {
	if f.renameErr != nil {
		return f.renameErr
	}
	return f.Filesystem.RenameNoReplace(oldpath, newpath)
}

func (f *faultyFS) MkdirAll(path string, perm fs.FileMode) error {
	if f.mkdirErr != nil {
		return f.mkdirErr
	}
	return f.Filesystem.MkdirAll(path, perm)
}

func newMemStore(t *testing.T, files ...string) *fsstore.Store {
	t.Helper()

	store := fsstore.NewStore(afero.NewMemMapFs())
	require.NoError(t, store.MkdirAll(testIncoming, 0o755))
	require.NoError(t, store.MkdirAll(testReports, 0o755))
	for _, name := range files {
		writeFile(t, store, filepath.Join(testIncoming, name), name)
	}
	return store
}

func writeFile(t *testing.T, store *fsstore.Store, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(store.Fs(), path, []byte(content), 0o644))
}

func exists(store *fsstore.Store, path string) bool {
	_, err := store.Stat(path)
	return err == nil
}

type engineFixture struct {
	engine    *Engine
	rules     *staticRules
	auditor   *recordingAuditor
	publisher *recordingPublisher
}

func newEngine(t *testing.T, fsys Filesystem, rules ...PathRule) *engineFixture {
	t.Helper()

	fixture := &engineFixture{
		rules:     &staticRules{rules: rules},
		auditor:   &recordingAuditor{},
		publisher: &recordingPublisher{},
	}

	engine, err := NewEngine(Options{
		Rules:       fixture.rules,
		FS:          fsys,
		Locker:      locks.NewLocalLocker(),
		Auditor:     fixture.auditor,
		Events:      fixture.publisher,
		Logger:      logging.NewNopLogger(),
		IncomingDir: testIncoming,
		ReportsDir:  testReports,
		MoveTimeout: 5 * time.Second,
		Now:         func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)

	fixture.engine = engine
	return fixture
}

func rule(id int64, prefix, folder string, priority int) PathRule {
	return PathRule{ID: id, Prefix: prefix, DestinationFolder: folder, Priority: priority, Active: true}
}

// syncBuffer is a bytes.Buffer safe for loggers writing from goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func bufferLogger(t *testing.T, buf *syncBuffer) logging.Logger {
	t.Helper()
	logger, err := logging.NewZapLogger(logging.LogConfig{Level: logging.DebugLevel, Output: buf})
	require.NoError(t, err)
	return logger
}

// stallingPublisher blocks until the publish context ends.
type stallingPublisher struct {
	mu          sync.Mutex
	hadDeadline bool
}

func (p *stallingPublisher) PublishRouted(ctx context.Context, event RoutedEvent) error {
	_, ok := ctx.Deadline()
	p.mu.Lock()
	p.hadDeadline = ok
	p.mu.Unlock()

	<-ctx.Done()
	return ctx.Err()
}

// expiringLocker hands out locks that report themselves lost after
// heldChecks calls to IsHeld.
type expiringLocker struct {
	heldChecks int
}

func (l *expiringLocker) TryAcquire(ctx context.Context, key string) (locks.Lock, error) {
	return &expiringLock{key: key, remaining: l.heldChecks}, nil
}

type expiringLock struct {
	mu        sync.Mutex
	key       string
	remaining int
	released  bool
}

func (l *expiringLock) Key() string { return l.key }

func (l *expiringLock) Release(ctx context.Context) error {
	l.mu.Lock()
	l.released = true
	l.mu.Unlock()
	return nil
}

func (l *expiringLock) IsHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released || l.remaining <= 0 {
		return false
	}
	l.remaining--
	return true
}
