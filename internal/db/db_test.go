package db

import (
	"path/filepath"
	"testing"

	"expense_tracker/internal/config"
	"expense_tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "app.db")}

	conn, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))

	assert.True(t, conn.Migrator().HasTable(&domain.Wallet{}))
	assert.True(t, conn.Migrator().HasTable(&domain.Transaction{}))
	assert.True(t, conn.Migrator().HasTable(&domain.User{}))
	assert.True(t, conn.Migrator().HasTable("credentials"))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
