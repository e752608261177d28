package routing

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/lucsky/cuid"
	"report-router/internal/common/errors"
	"report-router/internal/common/logging"
	"report-router/internal/locks"
)

// ExecutionLockKey names the lock guarding incoming and every destination.
const ExecutionLockKey = "routing:execute"

// Options configures an Engine. Rules, FS and Locker are required.
type Options struct {
	Rules       RuleSource
	FS          Filesystem
	Locker      Locker
	Auditor     Auditor        // optional
	Events      EventPublisher // optional
	Logger      logging.Logger // optional, defaults to the global logger
	IncomingDir string
	ReportsDir  string
	MoveTimeout time.Duration
	Now         func() time.Time // optional, defaults to time.Now
}

// Engine orchestrates scanning, matching and moving report files.
type Engine struct {
	rules    RuleSource
	locker   Locker
	auditor  Auditor
	events   EventPublisher
	logger   logging.Logger
	scanner  *Scanner
	matcher  *Matcher
	executor *Executor
	fs       Filesystem
	incoming string
	now      func() time.Time
}

// NewEngine validates opts and builds an Engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Rules == nil {
		return nil, errors.ConfigError("rule source is required")
	}
	if opts.FS == nil {
		return nil, errors.ConfigError("filesystem is required")
	}
	if opts.Locker == nil {
		return nil, errors.ConfigError("execution locker is required")
	}
	if opts.IncomingDir == "" || opts.ReportsDir == "" {
		return nil, errors.ConfigError("incoming and reports directories are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		rules:    opts.Rules,
		locker:   opts.Locker,
		auditor:  opts.Auditor,
		events:   opts.Events,
		logger:   logger.WithFields(logging.Field{Key: "component", Value: "routing_engine"}),
		scanner:  NewScanner(opts.FS, opts.IncomingDir),
		matcher:  NewMatcher(opts.ReportsDir),
		executor: NewExecutor(opts.FS, opts.IncomingDir, opts.ReportsDir, opts.MoveTimeout).WithLogger(logger),
		fs:       opts.FS,
		incoming: opts.IncomingDir,
		now:      now,
	}, nil
}

// ListIncomingFiles returns the files currently waiting in incoming. It does
// not take the execution lock.
func (e *Engine) ListIncomingFiles(ctx context.Context) ([]IncomingFileRef, error) {
	return e.scanner.Scan(ctx)
}

// DryRun predicts the decision for each name against one rule snapshot. The
// names need not exist and the filesystem is never touched.
func (e *Engine) DryRun(ctx context.Context, fileNames []string) ([]RoutingDecision, error) {
	rules, err := e.loadRules(ctx)
	if err != nil {
		return nil, err
	}

	decisions := make([]RoutingDecision, 0, len(fileNames))
	for _, name := range fileNames {
		decisions = append(decisions, e.matcher.Match(name, rules))
	}
	return decisions, nil
}

// RunRoutingNow routes every pending file in incoming. It returns
// ErrRoutingInProgress if another pass holds the execution lock. Per-file
// failures are reported in the result; only a failure to scan incoming or to
// load the rules aborts the pass, before anything is moved.
//
// If the lock is lost mid-pass the remaining files are left in place and
// ErrExecutionLockLost is returned with the decisions made so far.
func (e *Engine) RunRoutingNow(ctx context.Context) (*RoutingResult, error) {
	principal := PrincipalFromContext(ctx)

	lock, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer e.release(ctx, lock)

	ctx = logging.ContextWith(ctx, logging.RunIDKey, cuid.New())
	logger := e.logger.WithContext(ctx)
	started := e.now()

	files, err := e.scanner.Scan(ctx)
	if err != nil {
		e.audit(ctx, principal, ActionBulkRoutingFailed, err.Error(), nil, StatusFailed)
		return nil, err
	}

	rules, err := e.loadRules(ctx)
	if err != nil {
		e.audit(ctx, principal, ActionBulkRoutingFailed, err.Error(), nil, StatusFailed)
		return nil, err
	}

	// Scan returns files sorted by name, which fixes the processing order.
	result := &RoutingResult{Decisions: make([]RoutingDecision, 0, len(files))}
	for i, file := range files {
		if !lock.IsHeld() {
			err := fmt.Errorf("%w: stopped after %d of %d files", ErrExecutionLockLost, i, len(files))
			logger.Error("Stopping routing pass", err,
				logging.Field{Key: "routed", Value: result.RoutedCount},
				logging.Field{Key: "remaining", Value: len(files) - i},
			)
			e.audit(ctx, principal, ActionBulkRoutingFailed,
				fmt.Sprintf("%v (%s)", err, result.String()), routedNames(result.Decisions), StatusFailed)
			return result, err
		}

		decision := e.route(ctx, logger, file.Name, rules)
		result.add(decision)
	}

	logger.Info("Routing pass finished",
		logging.Field{Key: "routed", Value: result.RoutedCount},
		logging.Field{Key: "skipped", Value: result.SkippedCount},
		logging.Field{Key: "failed", Value: result.FailedCount},
		logging.Field{Key: "duration", Value: e.now().Sub(started)},
	)

	e.audit(ctx, principal, ActionBulkRoutingExecuted,
		result.String(), routedNames(result.Decisions), StatusSuccess)

	return result, nil
}

// RouteSingle routes one named file under the execution lock. A file that is
// not in incoming yields an ERROR decision rather than an error.
func (e *Engine) RouteSingle(ctx context.Context, fileName string) (RoutingDecision, error) {
	principal := PrincipalFromContext(ctx)

	if err := validateFileName(fileName); err != nil {
		decision := RoutingDecision{FileName: fileName, Outcome: OutcomeError, Reason: err.Error()}
		e.auditSingle(ctx, principal, decision)
		return decision, nil
	}

	lock, err := e.acquire(ctx)
	if err != nil {
		return RoutingDecision{}, err
	}
	defer e.release(ctx, lock)

	ctx = logging.ContextWith(ctx, logging.RunIDKey, cuid.New())
	logger := e.logger.WithContext(ctx)

	info, err := e.fs.Stat(filepath.Join(e.incoming, fileName))
	switch {
	case err != nil && stderrors.Is(err, fs.ErrNotExist), err == nil && !info.Mode().IsRegular():
		decision := RoutingDecision{FileName: fileName, Outcome: OutcomeError, Reason: ReasonFileNotFound}
		logger.Warn("Single-file routing target missing", logging.Field{Key: "file", Value: fileName})
		e.auditSingle(ctx, principal, decision)
		return decision, nil
	case err != nil:
		decision := RoutingDecision{FileName: fileName, Outcome: OutcomeError, Reason: err.Error()}
		logger.Warn("Failed to stat single-file routing target", logging.Field{Key: "file", Value: fileName}, logging.Err(err))
		e.auditSingle(ctx, principal, decision)
		return decision, nil
	}

	rules, err := e.loadRules(ctx)
	if err != nil {
		e.audit(ctx, principal, ActionFileRoutingError, err.Error(), []string{fileName}, StatusFailed)
		return RoutingDecision{}, err
	}

	if !lock.IsHeld() {
		e.audit(ctx, principal, ActionFileRoutingError, ErrExecutionLockLost.Error(), []string{fileName}, StatusFailed)
		return RoutingDecision{}, ErrExecutionLockLost
	}

	decision := e.route(ctx, logger, fileName, rules)
	e.auditSingle(ctx, principal, decision)
	return decision, nil
}

// route matches and, if matched, moves one file. It publishes the routed
// event after a successful move.
func (e *Engine) route(ctx context.Context, logger logging.Logger, fileName string, rules []PathRule) RoutingDecision {
	decision := e.matcher.Match(fileName, rules)
	decision = e.executor.Execute(ctx, decision)

	fields := []logging.Field{
		{Key: "file", Value: decision.FileName},
		{Key: "outcome", Value: string(decision.Outcome)},
		{Key: "reason", Value: decision.Reason},
	}
	if decision.MatchedRuleID != nil {
		fields = append(fields, logging.Field{Key: "rule_id", Value: *decision.MatchedRuleID})
	}

	switch decision.Outcome {
	case OutcomeRouted:
		logger.Debug("Routing decision", append(fields, logging.Field{Key: "destination", Value: decision.DestinationPath})...)
		e.publish(ctx, logger, decision)
	case OutcomeError:
		logger.Warn("Failed to route file", fields...)
	default:
		logger.Debug("Routing decision", fields...)
	}

	return decision
}

func (e *Engine) acquire(ctx context.Context) (locks.Lock, error) {
	lock, err := e.locker.TryAcquire(ctx, ExecutionLockKey)
	if err != nil {
		if stderrors.Is(err, locks.ErrLockHeld) {
			return nil, ErrRoutingInProgress
		}
		return nil, err
	}
	return lock, nil
}

func (e *Engine) release(ctx context.Context, lock locks.Lock) {
	if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
		e.logger.Error("Failed to release execution lock", err)
	}
}

func (e *Engine) loadRules(ctx context.Context) ([]PathRule, error) {
	rules, err := e.rules.ListActiveRules(ctx)
	if err != nil {
		return nil, errors.IOError("failed to load routing rules", err)
	}
	return rules, nil
}

func (e *Engine) publish(ctx context.Context, logger logging.Logger, decision RoutingDecision) {
	if e.events == nil {
		return
	}

	event := RoutedEvent{
		FileName: decision.FileName,
		Folder:   decision.DestinationFolder,
		Path:     decision.DestinationPath,
		RoutedAt: e.now().UTC(),
	}
	if decision.MatchedRuleID != nil {
		event.RuleID = *decision.MatchedRuleID
	}

	// The pass holds the execution lock while publishing, so a stalled
	// broker must not outlive the move timeout.
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.executor.moveTimeout)
	defer cancel()

	if err := e.events.PublishRouted(publishCtx, event); err != nil {
		logger.Warn("Failed to publish routed event",
			logging.Field{Key: "file", Value: decision.FileName},
			logging.Err(err),
		)
	}
}

func (e *Engine) auditSingle(ctx context.Context, principal Principal, decision RoutingDecision) {
	switch decision.Outcome {
	case OutcomeRouted:
		e.audit(ctx, principal, ActionFileRouted,
			fmt.Sprintf("routed to %s", decision.DestinationFolder),
			[]string{decision.FileName}, StatusSuccess)
	case OutcomeError:
		e.audit(ctx, principal, ActionFileRoutingError, decision.Reason, []string{decision.FileName}, StatusFailed)
	default:
		e.audit(ctx, principal, ActionFileRoutingFailed, decision.Reason, []string{decision.FileName}, StatusFailed)
	}
}

func (e *Engine) audit(ctx context.Context, principal Principal, action, details string, targets []string, status string) {
	if e.auditor == nil {
		return
	}
	e.auditor.Record(context.WithoutCancel(ctx), AuditEntry{
		Principal: principal,
		Action:    action,
		Details:   details,
		Targets:   targets,
		Status:    status,
	})
}

func routedNames(decisions []RoutingDecision) []string {
	var names []string
	for _, d := range decisions {
		if d.Outcome == OutcomeRouted {
			names = append(names, d.FileName)
		}
	}
	return names
}

// String renders a compact summary, as used in log lines and CLI output.
func (r *RoutingResult) String() string {
	return fmt.Sprintf("routed=%d skipped=%d failed=%d", r.RoutedCount, r.SkippedCount, r.FailedCount)
}
