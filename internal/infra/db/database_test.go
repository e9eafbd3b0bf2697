package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zakat-tracker/backend/config"
	"github.com/zakat-tracker/backend/internal/integration/persistence/model"
)

func TestDialectorFor(t *testing.T) {
	tests := []struct {
		url     string
		driver  string
		wantErr bool
	}{
		{"postgres://u:p@localhost:5432/zakat?sslmode=disable", "postgres", false},
		{"postgresql://u:p@localhost/zakat", "postgres", false},
		{"sqlite://zakat.db", "sqlite", false},
		{"sqlite://:memory:", "sqlite", false},
		{"mysql://localhost", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, driver, err := dialectorFor(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
		})
	}
}

func TestNewConnection_SQLiteMemory(t *testing.T) {
	database, err := NewConnection(&config.DatabaseConfig{URL: "sqlite://:memory:"})
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	assert.Equal(t, "sqlite", database.Driver())
	assert.True(t, database.HealthCheck())

	require.NoError(t, database.AutoMigrate(model.All()...))
	for _, m := range model.All() {
		assert.True(t, database.DB().Migrator().HasTable(m), "%T", m)
	}
}
