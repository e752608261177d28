package app

import (
	"fmt"

	"report-router/internal/common/logging"
	"report-router/internal/storage"
	_ "report-router/internal/storage/postgres"
	_ "report-router/internal/storage/sqlite"
)

func (app *App) initializeStorage() error {
	if app.Config.IsPostgres() {
		app.Logger.Info("Database: PostgreSQL",
			logging.Field{Key: "host", Value: app.Config.PostgresHost},
			logging.Field{Key: "port", Value: app.Config.PostgresPort},
			logging.Field{Key: "database", Value: app.Config.PostgresDB},
		)
	} else {
		app.Logger.Info("Database: SQLite", logging.Field{Key: "path", Value: app.Config.DatabasePath})
	}

	store, err := storage.NewStorage(app.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.Storage = store
	return nil
}
