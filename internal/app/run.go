package app

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"report-router/internal/common/logging"
	"report-router/internal/config"
	"report-router/internal/rules"
)

// Run is the main entry point for the application
func Run() error {
	// Load environment variables
	_ = godotenv.Load()

	var importRules string
	flag.StringVar(&importRules, "import-rules", "", "Load a YAML rules file into the database and exit")
	flag.Parse()

	// Initialize logging
	if err := logging.InitGlobalLogger(); err != nil {
		return err
	}
	defer logging.MustSync()

	logging.Info("Starting report router",
		logging.Field{Key: "cpus", Value: runtime.NumCPU()},
		logging.Field{Key: "version", Value: Version},
	)

	// Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logging.Error("Configuration validation failed", err)
		return err
	}

	// Initialize application
	app, err := New(cfg)
	if err != nil {
		logging.Error("Failed to initialize application", err)
		return err
	}
	defer app.Cleanup()

	if importRules != "" {
		return app.ImportRules(context.Background(), importRules)
	}

	// Start server
	srv, _ := app.RunServer()
	if err := srv.Start(); err != nil {
		logging.Error("Server failed to start", err)
		return err
	}
	if app.Scheduler != nil {
		app.Scheduler.Start()
	}

	// Wait for interrupt signal or a fatal server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-srv.Errors():
	}

	logging.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting requests before draining the rest
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", err)
	}

	if err := app.Shutdown(ctx); err != nil {
		logging.Warn("Error during app shutdown", logging.Err(err))
	}

	logging.Info("Server exited")
	return serveErr
}

// ImportRules upserts the rules in a YAML file into the database.
func (app *App) ImportRules(ctx context.Context, path string) error {
	parsed, err := rules.LoadFile(afero.NewOsFs(), path)
	if err != nil {
		logging.Error("Failed to load rules file", err, logging.Field{Key: "path", Value: path})
		return err
	}

	if err := app.Storage.UpsertRules(ctx, parsed); err != nil {
		logging.Error("Failed to import rules", err)
		return err
	}

	logging.Info("Imported routing rules", logging.Field{Key: "path", Value: path}, logging.Field{Key: "count", Value: len(parsed)})
	return nil
}
