package app

import (
	"context"

	"report-router/internal/audit"
	"report-router/internal/auth"
	"report-router/internal/common/logging"
	"report-router/internal/config"
	"report-router/internal/events"
	"report-router/internal/fsstore"
	"report-router/internal/inbox"
	"report-router/internal/redis"
	"report-router/internal/routing"
	"report-router/internal/scheduler"
	"report-router/internal/storage"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Storage     storage.Storage
	RedisClient *redis.Client
	FS          *fsstore.Store
	Rules       routing.RuleSource
	Recorder    *audit.Recorder
	Inbox       *inbox.Store
	AMQP        *events.AMQPPublisher
	Engine      *routing.Engine
	Scheduler   *scheduler.Scheduler
	Auth        *auth.Auth
	Logger      logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Inbox:  inbox.NewStore(),
		Logger: logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "app"}),
	}

	// Initialize components in order of dependency
	if err := app.initializeStorage(); err != nil {
		return nil, err
	}

	if err := app.initializeRedis(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeFilesystem(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeRouting(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeScheduler(); err != nil {
		app.Cleanup()
		return nil, err
	}

	app.initializeAuth()

	return app, nil
}

// Shutdown stops the scheduler and drains pending audit records.
func (app *App) Shutdown(ctx context.Context) error {
	if app.Scheduler != nil {
		if err := app.Scheduler.Stop(ctx); err != nil {
			app.Logger.Warn("Scheduler did not stop cleanly", logging.Err(err))
		} else {
			app.Logger.Info("Scheduler stopped")
		}
	}

	if app.Recorder != nil {
		if err := app.Recorder.Close(ctx); err != nil {
			return err
		}
		app.Logger.Info("Audit recorder drained")
	}
	return nil
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.AMQP != nil {
		if err := app.AMQP.Close(); err != nil {
			app.Logger.Warn("Failed to close AMQP publisher", logging.Err(err))
		}
	}
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
	if app.Storage != nil {
		app.Storage.Close()
	}
}
