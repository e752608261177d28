package postgres

import (
	"report-router/internal/storage"
)

type Factory struct{}

func (f *Factory) Create(config storage.StorageConfig) (storage.Storage, error) {
	pgConfig, err := ConfigFrom(config)
	if err != nil {
		return nil, err
	}

	return NewAdapter(pgConfig)
}

func (f *Factory) GetType() string {
	return "postgres"
}

func init() {
	storage.Register("postgres", &Factory{})
}
