package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"report-router/internal/storage"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"complete", Config{Host: "db", Database: "reports", Username: "postgres"}, false},
		{"missing host", Config{Database: "reports", Username: "postgres"}, true},
		{"missing database", Config{Host: "db", Username: "postgres"}, true},
		{"missing user", Config{Host: "db", Database: "reports"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 5432, tt.config.Port)
			assert.Equal(t, "prefer", tt.config.SSLMode)
		})
	}
}

func TestConfig_GetConnectionString(t *testing.T) {
	c := &Config{Host: "db", Port: 5433, Database: "reports", Username: "router", Password: "p@ss word", SSLMode: "disable"}

	assert.Equal(t, "postgres://router:p%40ss%20word@db:5433/reports?sslmode=disable", c.GetConnectionString())
	assert.Equal(t, "postgres", c.GetType())
}

func TestConfigFrom(t *testing.T) {
	cfg, err := ConfigFrom(storage.GenericConfig{
		"host": "db", "port": "5433", "database": "reports",
		"username": "router", "password": "secret", "sslmode": "require",
	})
	require.NoError(t, err)
	assert.Equal(t, &Config{Host: "db", Port: 5433, Database: "reports", Username: "router", Password: "secret", SSLMode: "require"}, cfg)

	_, err = ConfigFrom(storage.GenericConfig{"port": "abc"})
	assert.Error(t, err)
}

func TestNewConfigFromURL(t *testing.T) {
	cfg, err := NewConfigFromURL("postgres://router:secret@db:6543/reports?sslmode=verify-full")
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "reports", cfg.Database)
	assert.Equal(t, "router", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "verify-full", cfg.SSLMode)

	_, err = NewConfigFromURL("postgres://db")
	assert.Error(t, err)
}
