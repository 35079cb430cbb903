package database

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	logger, hook := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "nested", "setback.db")

	db, err := OpenAndMigrate(path, logger)
	require.NoError(t, err)
	defer db.Close()

	applied, err := AppliedMigrations(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_results.sql"}, applied)
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)

	for _, table := range []string{"hand_results", "game_results"} {
		var name string
		require.NoError(t, db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table).Scan(&name))
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "setback.db")
	db, err := OpenAndMigrate(path, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	logger, hook := test.NewNullLogger()
	db, err = OpenAndMigrate(path, logger)
	require.NoError(t, err)
	defer db.Close()
	assert.Empty(t, hook.AllEntries(), "nothing left to apply")
}

func TestOpenAndMigrateRequiresPath(t *testing.T) {
	_, err := OpenAndMigrate("", nil)
	assert.Error(t, err)
}

func TestFailedMigrationRollsBack(t *testing.T) {
	db, err := OpenAndMigrate(filepath.Join(t.TempDir(), "setback.db"), nil)
	require.NoError(t, err)
	defer db.Close()

	err = apply(db, "9999_broken.sql", "CREATE TABLE broken (id INTEGER); NOT SQL AT ALL;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "9999_broken.sql")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE name = 'broken'`).Scan(&n))
	assert.Zero(t, n)
	applied, err := AppliedMigrations(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_results.sql"}, applied)
}
