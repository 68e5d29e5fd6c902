package bunx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDB(t *testing.T) {
	tests := []struct {
		name string
		dsn  func(t *testing.T) string
	}{
		{"in-memory", func(t *testing.T) string { return MemoryDSN }},
		{"file path with missing parent", func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "nested", "local.db")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := NewSQLiteDB(tt.dsn(t))
			require.NoError(t, err)
			defer Close(db)

			var one int
			require.NoError(t, db.NewRaw("SELECT 1").Scan(context.Background(), &one))
			assert.Equal(t, 1, one)
		})
	}
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
