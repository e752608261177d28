package routing

import (
	"context"
	"io/fs"
	"time"

	"report-router/internal/locks"
)

// Outcome is the terminal classification of a file within one routing pass.
type Outcome string

const (
	// OutcomeRouted means the file was moved to its destination
	OutcomeRouted Outcome = "ROUTED"
	// OutcomeNoMatch means no active rule matched the file name
	OutcomeNoMatch Outcome = "NO_MATCH"
	// OutcomeCollision means the destination already held a file of that name
	OutcomeCollision Outcome = "COLLISION"
	// OutcomeError means validation or the move itself failed
	OutcomeError Outcome = "ERROR"
)

// PathRule maps a filename prefix to a destination folder under the reports
// root. Rules are owned by the rule store and are read-only here.
type PathRule struct {
	ID                int64     `json:"id"`
	Prefix            string    `json:"prefix"`
	DestinationFolder string    `json:"destinationFolder"`
	Priority          int       `json:"priority"`  // lower wins among equal-length prefixes
	Active            bool      `json:"active"`    // inactive rules never match
	CreatedAt         time.Time `json:"createdAt"` // informational
}

// IncomingFileRef describes a regular file currently sitting in incoming.
type IncomingFileRef struct {
	Name       string    `json:"name"`
	SizeBytes  int64     `json:"sizeBytes"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// RoutingDecision is the per-file verdict of a dry run or routing pass.
type RoutingDecision struct {
	FileName          string  `json:"fileName"`
	Outcome           Outcome `json:"outcome"`
	MatchedRuleID     *int64  `json:"matchedRuleId,omitempty"`
	DestinationFolder string  `json:"destinationFolder,omitempty"`
	DestinationPath   string  `json:"destinationPath,omitempty"`
	Reason            string  `json:"reason,omitempty"`
}

// RoutingResult aggregates a bulk routing pass.
type RoutingResult struct {
	Decisions    []RoutingDecision `json:"decisions"`
	RoutedCount  int               `json:"routedCount"`
	SkippedCount int               `json:"skippedCount"`
	FailedCount  int               `json:"failedCount"`
}

// add records a decision and bumps the counter for its outcome.
func (r *RoutingResult) add(d RoutingDecision) {
	r.Decisions = append(r.Decisions, d)
	switch d.Outcome {
	case OutcomeRouted:
		r.RoutedCount++
	case OutcomeNoMatch, OutcomeCollision:
		r.SkippedCount++
	default:
		r.FailedCount++
	}
}

// RuleSource provides the current snapshot of active path rules.
type RuleSource interface {
	ListActiveRules(ctx context.Context) ([]PathRule, error)
}

// Filesystem is the set of primitives the engine needs from storage.
// RenameNoReplace must fail with an error matching fs.ErrExist, and leave
// both paths untouched, when newpath already exists.
type Filesystem interface {
	ReadDir(dir string) ([]fs.FileInfo, error)
	Stat(name string) (fs.FileInfo, error)
	MkdirAll(path string, perm fs.FileMode) error
	RenameNoReplace(oldpath, newpath string) error
}

// Locker hands out the exclusive execution lock.
type Locker = locks.Locker

// Principal identifies who triggered an operation, for auditing.
type Principal struct {
	Email string
	Role  string
}

// SystemPrincipal is used when the caller supplies no identity.
var SystemPrincipal = Principal{Email: "system", Role: "Admin"}

// AuditEntry is one fire-and-forget audit record.
type AuditEntry struct {
	Principal Principal
	Action    string
	Details   string
	Targets   []string
	Status    string
}

// Auditor receives audit entries. Implementations must not block the caller
// for long and must never fail the routing operation.
type Auditor interface {
	Record(ctx context.Context, entry AuditEntry)
}

// RoutedEvent describes a file that has just been routed.
type RoutedEvent struct {
	FileName string    `json:"fileName"`
	Folder   string    `json:"folder"`
	Path     string    `json:"path"`
	RuleID   int64     `json:"ruleId"`
	RoutedAt time.Time `json:"routedAt"`
}

// EventPublisher is notified after every successful move. Errors are logged
// by the engine and otherwise ignored.
type EventPublisher interface {
	PublishRouted(ctx context.Context, event RoutedEvent) error
}
