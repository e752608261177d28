package routing

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"report-router/internal/common/logging"
)

// DefaultMoveTimeout bounds a single move when none is configured.
const DefaultMoveTimeout = 30 * time.Second

// Executor performs the filesystem move for a matched decision. It never
// overwrites an existing destination and leaves the source untouched on any
// failure.
//
// Callers must hold the execution lock.
type Executor struct {
	fs          Filesystem
	incomingDir string
	reportsRoot string
	moveTimeout time.Duration
	logger      logging.Logger
}

// NewExecutor creates an Executor moving files from incomingDir to folders
// below reportsRoot. A non-positive moveTimeout selects DefaultMoveTimeout.
func NewExecutor(fsys Filesystem, incomingDir, reportsRoot string, moveTimeout time.Duration) *Executor {
	if moveTimeout <= 0 {
		moveTimeout = DefaultMoveTimeout
	}
	return &Executor{
		fs:          fsys,
		incomingDir: incomingDir,
		reportsRoot: reportsRoot,
		moveTimeout: moveTimeout,
		logger:      logging.NewNopLogger(),
	}
}

// WithLogger sets the logger used to report moves that outlive the timeout.
func (e *Executor) WithLogger(logger logging.Logger) *Executor {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// Execute moves the file of a ROUTED decision and returns the final decision.
// Decisions with any other outcome are returned unchanged.
func (e *Executor) Execute(ctx context.Context, decision RoutingDecision) RoutingDecision {
	if decision.Outcome != OutcomeRouted {
		return decision
	}

	fail := func(outcome Outcome, reason string) RoutingDecision {
		decision.Outcome = outcome
		decision.Reason = reason
		return decision
	}

	dest, folder, err := ResolveDestination(e.reportsRoot, decision.DestinationFolder, decision.FileName)
	if err != nil {
		return fail(OutcomeError, err.Error())
	}
	decision.DestinationFolder = folder
	decision.DestinationPath = dest

	src := filepath.Join(e.incomingDir, decision.FileName)
	info, err := e.fs.Stat(src)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return fail(OutcomeError, ReasonFileNotFound)
		}
		return fail(OutcomeError, err.Error())
	}
	if !info.Mode().IsRegular() {
		return fail(OutcomeError, ReasonFileNotFound)
	}

	if err := e.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fail(OutcomeError, fmt.Sprintf("failed to create destination folder: %v", err))
	}

	if _, err := e.fs.Stat(dest); err == nil {
		return fail(OutcomeCollision, ReasonCollision)
	} else if !stderrors.Is(err, fs.ErrNotExist) {
		return fail(OutcomeError, err.Error())
	}

	if err := e.move(src, dest); err != nil {
		if stderrors.Is(err, fs.ErrExist) {
			return fail(OutcomeCollision, ReasonCollision)
		}
		return fail(OutcomeError, err.Error())
	}

	decision.Reason = ""
	return decision
}

// move runs the no-replace rename bounded by the move timeout. A rename that
// outlives the timeout cannot be cancelled: it is logged as pending, and its
// eventual result is logged too so the file can be reconciled.
func (e *Executor) move(src, dest string) error {
	done := make(chan error, 1)
	go func() {
		done <- e.fs.RenameNoReplace(src, dest)
	}()

	timer := time.NewTimer(e.moveTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
	}

	fields := []logging.Field{
		{Key: "source", Value: src},
		{Key: "destination", Value: dest},
		{Key: "timeout", Value: e.moveTimeout},
	}
	e.logger.Warn("Move timed out and is still pending", fields...)

	go func() {
		if err := <-done; err != nil {
			e.logger.Warn("Pending move failed, source left in incoming", append(fields, logging.Err(err))...)
			return
		}
		e.logger.Warn("Pending move completed after timeout, file is now at destination", fields...)
	}()

	return fmt.Errorf("move timed out after %s; rename of %s may still complete", e.moveTimeout, src)
}
