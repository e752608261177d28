// Package scheduler runs unattended routing passes on a cron schedule.
package scheduler

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"report-router/internal/common/errors"
	"report-router/internal/common/logging"
	"report-router/internal/routing"
)

// Principal is recorded in the audit trail for scheduled passes.
var Principal = routing.Principal{Email: "scheduler", Role: "Admin"}

// Runner executes one bulk routing pass.
type Runner interface {
	RunRoutingNow(ctx context.Context) (*routing.RoutingResult, error)
}

// Scheduler triggers Runner according to a standard five-field cron spec.
// Overlapping ticks are skipped.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger logging.Logger
	spec   string
	entry  cron.EntryID
}

// ParseSpec validates a cron expression. Descriptors such as @hourly are accepted.
func ParseSpec(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("invalid routing schedule: %v", err)).
			WithContext("schedule", spec)
	}
	return schedule, nil
}

// New prepares a Scheduler. Call Start to begin firing.
func New(spec string, runner Runner, logger logging.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, errors.ConfigError("scheduler requires a runner")
	}
	schedule, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	logger = logger.WithFields(logging.Field{Key: "component", Value: "scheduler"}, logging.Field{Key: "schedule", Value: spec})

	cl := cronLogger{logger}
	s := &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		runner: runner,
		logger: logger,
		spec:   spec,
	}
	s.entry = s.cron.Schedule(schedule, cron.FuncJob(s.run))
	return s, nil
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Routing scheduler started", logging.Field{Key: "next_run", Value: s.Next()})
}

// Stop prevents further runs and waits for an in-flight pass or ctx expiry.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Routing scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next activation time, or zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

func (s *Scheduler) run() {
	ctx := routing.WithPrincipal(context.Background(), Principal)

	result, err := s.runner.RunRoutingNow(ctx)
	switch {
	case stderrors.Is(err, routing.ErrRoutingInProgress):
		s.logger.Info("Skipping scheduled routing pass, another pass is running")
	case err != nil:
		s.logger.Error("Scheduled routing pass failed", err)
	default:
		s.logger.Info("Scheduled routing pass finished",
			logging.Field{Key: "routed", Value: result.RoutedCount},
			logging.Field{Key: "skipped", Value: result.SkippedCount},
			logging.Field{Key: "failed", Value: result.FailedCount},
		)
	}
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct {
	logger logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, pairs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, err, pairs(keysAndValues)...)
}

func pairs(keysAndValues []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields = append(fields, logging.Field{Key: fmt.Sprint(keysAndValues[i]), Value: keysAndValues[i+1]})
	}
	return fields
}
