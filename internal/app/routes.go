package app

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"report-router/internal/handlers"
	"report-router/internal/middleware"
	"report-router/internal/ratelimit"
)

// SetupRoutes configures all HTTP routes for the application
func SetupRoutes(router *mux.Router, h *handlers.Handlers, authMiddleware func(http.Handler) http.Handler, limiter *ratelimit.Limiter) {
	// Add logging middleware to all routes
	router.Use(middleware.LoggingMiddleware)

	// Health check (no auth required)
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// Swagger UI (no auth required)
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)
	if limiter != nil {
		api.Use(limiter.Middleware(ratelimit.PrincipalKey))
	}

	api.HandleFunc("/auth/logout", h.Logout).Methods("POST")

	// Routing
	api.HandleFunc("/routing/incoming", h.ListIncoming).Methods("GET")
	api.HandleFunc("/routing/dry-run", h.DryRun).Methods("POST")
	api.HandleFunc("/routing/run", h.RunRouting).Methods("POST")
	api.HandleFunc("/routing/route-one", h.RouteOne).Methods("POST")
	api.HandleFunc("/routing/rules", h.ListRules).Methods("GET")

	// Report folders
	api.HandleFunc("/reports/folders", h.ListReportFolders).Methods("GET")
	api.HandleFunc("/reports/folders/{folder:.+}", h.ListReportFiles).Methods("GET")

	// Notifications; literal paths before {id}
	api.HandleFunc("/notifications", h.ListNotifications).Methods("GET")
	api.HandleFunc("/notifications", h.AddNotification).Methods("POST")
	api.HandleFunc("/notifications/mark-all-read", h.MarkAllNotificationsRead).Methods("POST")
	api.HandleFunc("/notifications/mark-read/{id}", h.MarkNotificationRead).Methods("POST")
	api.HandleFunc("/notifications/clear", h.ClearNotifications).Methods("DELETE")
	api.HandleFunc("/notifications/{id}", h.DeleteNotification).Methods("DELETE")

	// Favorites
	api.HandleFunc("/favorites", h.ListFavorites).Methods("GET")
	api.HandleFunc("/favorites", h.AddFavorite).Methods("POST")
	api.HandleFunc("/favorites", h.RemoveFavorite).Methods("DELETE")

	// Folder subscriptions
	api.HandleFunc("/subscriptions", h.ListSubscriptions).Methods("GET")
	api.HandleFunc("/subscriptions", h.Subscribe).Methods("POST")
	api.HandleFunc("/subscriptions", h.Unsubscribe).Methods("DELETE")
}
