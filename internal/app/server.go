package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"report-router/internal/handlers"
	"report-router/internal/ratelimit"
	"report-router/internal/reports"
	"report-router/internal/server"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// RunServer builds the HTTP server with all handlers configured
func (app *App) RunServer() (*server.Server, http.Handler) {
	checks := map[string]handlers.HealthChecker{"database": app.Storage}
	if app.RedisClient != nil {
		checks["redis"] = app.RedisClient
	}

	deps := handlers.Dependencies{
		Routing: app.Engine,
		Inbox:   app.Inbox,
		Reports: reports.NewBrowser(app.FS, app.Config.ReportsDir),
		Auth:    app.Auth,
		Checks:  checks,
		Version: Version,
	}
	if lister, ok := app.Rules.(handlers.RuleLister); ok {
		deps.Rules = lister
	}
	h := handlers.New(deps)

	var limiter *ratelimit.Limiter
	if rps, burst := app.Config.RateLimit(); rps > 0 && burst > 0 {
		limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerSecond: rps, Burst: burst})
	}

	router := mux.NewRouter()
	SetupRoutes(router, h, app.Auth.Middleware, limiter)

	srv := server.New(router, app.Config.Port, "", "", app.Logger)
	return srv, router
}
