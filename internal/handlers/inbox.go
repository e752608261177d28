package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"report-router/internal/inbox"
)

// NotificationRequest creates a notification for a user.
type NotificationRequest struct {
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// FavoriteRequest names a report for the favorites endpoints.
type FavoriteRequest struct {
	UserID   string `json:"userId"`
	Folder   string `json:"folder"`
	FileName string `json:"fileName"`
}

// FavoritesResponse wraps the favorites list.
type FavoritesResponse struct {
	Favorites []inbox.Favorite `json:"favorites"`
}

// SubscriptionRequest names a folder for the subscription endpoints.
type SubscriptionRequest struct {
	UserID string `json:"userId"`
	Folder string `json:"folder"`
}

// SubscriptionsResponse wraps the subscribed folders.
type SubscriptionsResponse struct {
	Folders []string `json:"folders"`
}

// ListNotifications returns a user's notifications, newest first
// @Summary List notifications
// @Tags inbox
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User, defaults to the authenticated principal"
// @Success 200 {array} inbox.Notification
// @Router /api/notifications [get]
func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	h.sendJSONResponse(w, http.StatusOK, h.inbox.Notifications(userID(r, "")))
}

// AddNotification stores a notification
// @Summary Add a notification
// @Tags inbox
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param notification body NotificationRequest true "Notification"
// @Success 200 {object} inbox.Notification
// @Failure 400 {object} ErrorResponse "Invalid JSON"
// @Router /api/notifications [post]
func (h *Handlers) AddNotification(w http.ResponseWriter, r *http.Request) {
	var req NotificationRequest
	if err := decodeJSON(r, w, &req); err != nil {
		h.badRequest(w, "invalid JSON")
		return
	}

	n := h.inbox.AddNotification(userID(r, req.UserID), req.Type, req.Title, req.Message)
	h.sendJSONResponse(w, http.StatusOK, n)
}

// MarkAllNotificationsRead flags every notification as read
// @Summary Mark all notifications read
// @Tags inbox
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User"
// @Success 200 {object} StatusResponse
// @Router /api/notifications/mark-all-read [post]
func (h *Handlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	h.inbox.MarkAllRead(userID(r, ""))
	h.sendJSONResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// MarkNotificationRead flags one notification as read
// @Summary Mark a notification read
// @Tags inbox
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Param userId query string false "User"
// @Success 200 {object} StatusResponse
// @Failure 404 {object} StatusResponse
// @Router /api/notifications/mark-read/{id} [post]
func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	h.sendFound(w, h.inbox.MarkRead(userID(r, ""), mux.Vars(r)["id"]))
}

// DeleteNotification removes one notification
// @Summary Delete a notification
// @Tags inbox
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Param userId query string false "User"
// @Success 200 {object} StatusResponse
// @Failure 404 {object} StatusResponse
// @Router /api/notifications/{id} [delete]
func (h *Handlers) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	h.sendFound(w, h.inbox.DeleteNotification(userID(r, ""), mux.Vars(r)["id"]))
}

// ClearNotifications removes every notification of a user
// @Summary Clear notifications
// @Tags inbox
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User"
// @Success 200 {object} StatusResponse
// @Router /api/notifications/clear [delete]
func (h *Handlers) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	h.inbox.ClearNotifications(userID(r, ""))
	h.sendJSONResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handlers) sendFound(w http.ResponseWriter, found bool) {
	if !found {
		h.sendJSONResponse(w, http.StatusNotFound, StatusResponse{Status: "not_found"})
		return
	}
	h.sendJSONResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// ListFavorites returns a user's favorite reports
// @Summary List favorites
// @Tags inbox
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User"
// @Success 200 {object} FavoritesResponse
// @Router /api/favorites [get]
func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	h.sendJSONResponse(w, http.StatusOK, FavoritesResponse{Favorites: h.inbox.Favorites(userID(r, ""))})
}

// AddFavorite marks a report as favorite
// @Summary Add a favorite
// @Tags inbox
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param favorite body FavoriteRequest true "Report"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse "Missing folder or fileName"
// @Router /api/favorites [post]
func (h *Handlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	req, ok := h.favoriteRequest(w, r)
	if !ok {
		return
	}
	h.inbox.AddFavorite(req.UserID, req.Folder, req.FileName)
	h.sendJSONResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// RemoveFavorite drops a favorite
// @Summary Remove a favorite
// @Tags inbox
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param favorite body FavoriteRequest true "Report"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse "Missing folder or fileName"
// @Router /api/favorites [delete]
func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	req, ok := h.favoriteRequest(w, r)
	if !ok {
		return
	}
	h.inbox.RemoveFavorite(req.UserID, req.Folder, req.FileName)
	h.sendJSONResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handlers) favoriteRequest(w http.ResponseWriter, r *http.Request) (FavoriteRequest, bool) {
	var req FavoriteRequest
	if err := decodeJSON(r, w, &req); err != nil {
		h.badRequest(w, "invalid JSON")
		return req, false
	}
	if req.Folder == "" || req.FileName == "" {
		h.badRequest(w, "missing folder or fileName")
		return req, false
	}
	req.UserID = userID(r, req.UserID)
	return req, true
}

// ListSubscriptions returns the folders a user follows
// @Summary List folder subscriptions
// @Tags inbox
// @Produce json
// @Security BearerAuth
// @Param userId query string false "User"
// @Success 200 {object} SubscriptionsResponse
// @Router /api/subscriptions [get]
func (h *Handlers) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	h.sendJSONResponse(w, http.StatusOK, SubscriptionsResponse{Folders: h.inbox.Subscriptions(userID(r, ""))})
}

// Subscribe follows a folder; routed reports then raise a notification
// @Summary Subscribe to a folder
// @Tags inbox
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subscription body SubscriptionRequest true "Folder"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse "Missing folder"
// @Router /api/subscriptions [post]
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	req, ok := h.subscriptionRequest(w, r)
	if !ok {
		return
	}
	h.inbox.Subscribe(req.UserID, req.Folder)
	h.sendJSONResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// Unsubscribe stops following a folder
// @Summary Unsubscribe from a folder
// @Tags inbox
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subscription body SubscriptionRequest true "Folder"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse "Missing folder"
// @Router /api/subscriptions [delete]
func (h *Handlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	req, ok := h.subscriptionRequest(w, r)
	if !ok {
		return
	}
	h.inbox.Unsubscribe(req.UserID, req.Folder)
	h.sendJSONResponse(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handlers) subscriptionRequest(w http.ResponseWriter, r *http.Request) (SubscriptionRequest, bool) {
	var req SubscriptionRequest
	if err := decodeJSON(r, w, &req); err != nil {
		h.badRequest(w, "invalid JSON")
		return req, false
	}
	if req.Folder == "" {
		h.badRequest(w, "missing folder")
		return req, false
	}
	req.UserID = userID(r, req.UserID)
	return req, true
}
