// Package handlers exposes the routing engine, the report folders and the
// per-user inbox over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"report-router/internal/auth"
	"report-router/internal/common/errors"
	"report-router/internal/common/logging"
	"report-router/internal/inbox"
	"report-router/internal/reports"
	"report-router/internal/routing"
)

const maxBodyBytes = 1 << 20

// RoutingService is the part of routing.Engine the handlers drive.
type RoutingService interface {
	ListIncomingFiles(ctx context.Context) ([]routing.IncomingFileRef, error)
	DryRun(ctx context.Context, fileNames []string) ([]routing.RoutingDecision, error)
	RunRoutingNow(ctx context.Context) (*routing.RoutingResult, error)
	RouteSingle(ctx context.Context, fileName string) (routing.RoutingDecision, error)
}

// RuleLister returns every stored rule, active or not.
type RuleLister interface {
	ListRules(ctx context.Context) ([]routing.PathRule, error)
}

// HealthChecker is implemented by storage and the Redis client.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Dependencies wires the handlers. Rules, Auth and Checks are optional.
type Dependencies struct {
	Routing RoutingService
	Rules   RuleLister
	Inbox   *inbox.Store
	Reports *reports.Browser
	Auth    *auth.Auth
	Checks  map[string]HealthChecker
	Version string
	Logger  logging.Logger
}

type Handlers struct {
	routing RoutingService
	rules   RuleLister
	inbox   *inbox.Store
	reports *reports.Browser
	auth    *auth.Auth
	checks  map[string]HealthChecker
	version string
	logger  logging.Logger
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// StatusResponse acknowledges commands without a payload.
type StatusResponse struct {
	Status string `json:"status"`
}

func New(deps Dependencies) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	version := deps.Version
	if version == "" {
		version = "1.0.0"
	}
	return &Handlers{
		routing: deps.Routing,
		rules:   deps.Rules,
		inbox:   deps.Inbox,
		reports: deps.Reports,
		auth:    deps.Auth,
		checks:  deps.Checks,
		version: version,
		logger:  logger.WithFields(logging.Field{Key: "component", Value: "handlers"}),
	}
}

func (h *Handlers) sendJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", err)
	}
}

// sendError maps an AppError type to its HTTP status.
func (h *Handlers) sendError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithContext(r.Context()).Error("Request failed", err, logging.Field{Key: "path", Value: r.URL.Path})
	}

	resp := ErrorResponse{Error: err.Error()}
	if appErr, ok := errors.AsAppError(err); ok {
		resp.Error = appErr.Message
		resp.Code = appErr.Code
	}
	h.sendJSONResponse(w, status, resp)
}

func (h *Handlers) badRequest(w http.ResponseWriter, message string) {
	h.sendJSONResponse(w, http.StatusBadRequest, ErrorResponse{Error: message})
}

func statusFor(err error) int {
	switch errors.GetType(err) {
	case errors.ErrTypeValidation:
		return http.StatusBadRequest
	case errors.ErrTypeAuth:
		return http.StatusUnauthorized
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	case errors.ErrTypeConflict:
		return http.StatusConflict
	case errors.ErrTypeConnection:
		return http.StatusServiceUnavailable
	case errors.ErrTypeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrTypeConfig:
		// an optional feature is not configured on this instance
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, w http.ResponseWriter, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// userID takes the explicit userId parameter, falling back to the acting
// principal.
func userID(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if id := r.URL.Query().Get("userId"); id != "" {
		return id
	}
	return routing.PrincipalFromContext(r.Context()).Email
}
