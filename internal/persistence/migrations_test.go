package persistence

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationFilesOrder(t *testing.T) {
	fsys := fstest.MapFS{
		"002_privileges.sql": {Data: []byte("SELECT 2")},
		"001_init.sql":       {Data: []byte("SELECT 1")},
		"README.md":          {Data: []byte("docs")},
		"old/000_x.sql":      {Data: []byte("SELECT 0")},
	}

	files, err := migrationFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_privileges.sql"}, files)
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, fstest.MapFS{}, zap.NewNop()))
}
