package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestModels_InstantsAreZoneAware(t *testing.T) {
	cache := &sync.Map{}
	for _, m := range All() {
		s, err := schema.Parse(m, cache, schema.NamingStrategy{})
		require.NoError(t, err)

		for _, field := range s.Fields {
			assert.NotEqual(t, schema.DataType("timestamp"), field.DataType,
				"%s.%s must be stored as timestamptz", s.Table, field.DBName)
		}
	}

	tests := []struct {
		model any
		field string
	}{
		{model: &HawlCycleModel{}, field: "EndDate"},
		{model: &EmailQueueModel{}, field: "ProcessedAt"},
	}
	for _, tt := range tests {
		s, err := schema.Parse(tt.model, cache, schema.NamingStrategy{})
		require.NoError(t, err)
		field := s.LookUpField(tt.field)
		require.NotNil(t, field, tt.field)
		assert.Equal(t, schema.DataType("timestamptz"), field.DataType, tt.field)
	}
}
