package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// ListReportFolders returns the destination folders
// @Summary List report folders
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string "Folder names, sorted"
// @Router /api/reports/folders [get]
func (h *Handlers) ListReportFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.reports.Folders(r.Context())
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSONResponse(w, http.StatusOK, folders)
}

// ListReportFiles returns the reports routed into one folder
// @Summary List reports in a folder
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param folder path string true "Folder below the reports root"
// @Success 200 {array} reports.File "Reports sorted by name"
// @Failure 400 {object} ErrorResponse "Folder escapes the reports root"
// @Router /api/reports/folders/{folder} [get]
func (h *Handlers) ListReportFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.reports.Files(r.Context(), mux.Vars(r)["folder"])
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.sendJSONResponse(w, http.StatusOK, files)
}
