package handlers

import (
	"net/http"

	"report-router/internal/auth"
)

// Logout revokes the bearer token of the request
// @Summary Revoke the current token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse "No bearer token"
// @Failure 401 {object} ErrorResponse "Token is invalid"
// @Failure 501 {object} ErrorResponse "Tokens or revocation are not configured"
// @Router /api/auth/logout [post]
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.ExtractToken(r)
	if token == "" {
		h.badRequest(w, "bearer token is required")
		return
	}
	if h.auth == nil || !h.auth.Enabled() {
		h.sendJSONResponse(w, http.StatusNotImplemented, ErrorResponse{Error: "authentication is not configured"})
		return
	}

	if err := h.auth.RevokeJWT(r.Context(), token); err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSONResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
}
