package handlers

import (
	"net/http"

	"report-router/internal/routing"
)

// RouteOneResponse is a single-file decision plus the moved flag.
type RouteOneResponse struct {
	routing.RoutingDecision
	Moved bool `json:"moved"`
}

// RunRouting routes every file waiting in incoming
// @Summary Run a routing pass
// @Description Moves every pending report in incoming to its destination folder
// @Tags routing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} routing.RoutingResult "Per-file decisions and counts"
// @Failure 409 {object} ErrorResponse "Another routing pass is running"
// @Failure 500 {object} ErrorResponse "Incoming could not be scanned or rules could not be loaded"
// @Router /api/routing/run [post]
func (h *Handlers) RunRouting(w http.ResponseWriter, r *http.Request) {
	result, err := h.routing.RunRoutingNow(r.Context())
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSONResponse(w, http.StatusOK, result)
}

// DryRun predicts decisions without touching the filesystem
// @Summary Dry-run file names
// @Description Returns the decision each file name would get against the current rules
// @Tags routing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param fileNames body []string true "File names to evaluate"
// @Success 200 {array} routing.RoutingDecision "One decision per name, in request order"
// @Failure 400 {object} ErrorResponse "Body is not a JSON array of strings"
// @Router /api/routing/dry-run [post]
func (h *Handlers) DryRun(w http.ResponseWriter, r *http.Request) {
	var fileNames []string
	if err := decodeJSON(r, w, &fileNames); err != nil {
		h.badRequest(w, "request body must be a JSON array of file names")
		return
	}

	decisions, err := h.routing.DryRun(r.Context(), fileNames)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSONResponse(w, http.StatusOK, decisions)
}

// ListIncoming returns the files waiting in incoming
// @Summary List incoming files
// @Tags routing
// @Produce json
// @Security BearerAuth
// @Success 200 {array} routing.IncomingFileRef "Pending files sorted by name"
// @Failure 500 {object} ErrorResponse "Incoming could not be read"
// @Router /api/routing/incoming [get]
func (h *Handlers) ListIncoming(w http.ResponseWriter, r *http.Request) {
	files, err := h.routing.ListIncomingFiles(r.Context())
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSONResponse(w, http.StatusOK, files)
}

// RouteOne routes a single named file
// @Summary Route one file
// @Description Routes one file from incoming. Unroutable files are reported with moved=false and a reason.
// @Tags routing
// @Produce json
// @Security BearerAuth
// @Param fileName query string true "File name in incoming"
// @Success 200 {object} RouteOneResponse "Decision for the file"
// @Failure 400 {object} ErrorResponse "fileName is missing"
// @Failure 409 {object} ErrorResponse "Another routing pass is running"
// @Router /api/routing/route-one [post]
func (h *Handlers) RouteOne(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("fileName")
	if fileName == "" {
		h.badRequest(w, "fileName is required")
		return
	}

	decision, err := h.routing.RouteSingle(r.Context(), fileName)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	h.sendJSONResponse(w, http.StatusOK, RouteOneResponse{
		RoutingDecision: decision,
		Moved:           decision.Outcome == routing.OutcomeRouted,
	})
}

// ListRules returns every stored path rule
// @Summary List path rules
// @Tags routing
// @Produce json
// @Security BearerAuth
// @Success 200 {array} routing.PathRule "Rules ordered by priority and id"
// @Failure 501 {object} ErrorResponse "Rule source does not support listing"
// @Router /api/routing/rules [get]
func (h *Handlers) ListRules(w http.ResponseWriter, r *http.Request) {
	if h.rules == nil {
		h.sendJSONResponse(w, http.StatusNotImplemented, ErrorResponse{Error: "rule source does not support listing"})
		return
	}

	rules, err := h.rules.ListRules(r.Context())
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	if rules == nil {
		rules = []routing.PathRule{}
	}
	h.sendJSONResponse(w, http.StatusOK, rules)
}
