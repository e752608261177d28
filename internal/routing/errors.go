package routing

import (
	"report-router/internal/common/errors"
)

// Audit actions emitted by the engine.
const (
	ActionFileRouted          = "FILE_ROUTED"
	ActionFileRoutingFailed   = "FILE_ROUTING_FAILED"
	ActionFileRoutingError    = "FILE_ROUTING_ERROR"
	ActionBulkRoutingExecuted = "BULK_ROUTING_EXECUTED"
	ActionBulkRoutingFailed   = "BULK_ROUTING_FAILED"
)

// Audit statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Reasons attached to decisions.
const (
	ReasonFileNotFound = "file not found in incoming"
	ReasonCollision    = "destination file already exists"
)

// ErrRoutingInProgress is returned when another routing pass holds the
// execution lock.
var ErrRoutingInProgress = errors.ConflictError("routing already in progress").WithCode("ROUTING_IN_PROGRESS")

// ErrExecutionLockLost is returned when the execution lock expires or fails
// to renew in the middle of a pass. The pass stops before the next file.
var ErrExecutionLockLost = errors.ConflictError("execution lock lost during routing").WithCode("EXECUTION_LOCK_LOST")
