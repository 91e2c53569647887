package migrate

import (
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"schema/001_create_runs.up.sql":   {Data: []byte("CREATE TABLE runs (id TEXT PRIMARY KEY);")},
		"schema/001_create_runs.down.sql": {Data: []byte("DROP TABLE runs;")},
		"schema/002_add_name.up.sql":      {Data: []byte("ALTER TABLE runs ADD COLUMN name TEXT;")},
		"schema/002_add_name.down.sql":    {Data: []byte("ALTER TABLE runs DROP COLUMN name;")},
		"schema/README.md":                {Data: []byte("not a migration")},
	}
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMigrations(t *testing.T) {
	migrations, err := NewFSProvider(testFS(), "schema", "").GetMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "create runs", migrations[0].Name)
	assert.NotEmpty(t, migrations[0].Up)
	assert.NotEmpty(t, migrations[0].Down)
	assert.Equal(t, 2, migrations[1].Version)
}

func TestMigrateUpAndDown(t *testing.T) {
	db := openDB(t)
	m := NewMigrator(db, NewFSProvider(testFS(), "schema", "test_migrations"), nil)

	pending, err := m.GetPendingMigrations()
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, m.MigrateUp())
	version, err := m.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	_, err = db.Exec("INSERT INTO runs (id, name) VALUES ('a', 'first')")
	require.NoError(t, err)

	// already current
	require.NoError(t, m.MigrateUp())

	require.NoError(t, m.MigrateTo(1))
	version, err = m.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	_, err = db.Exec("INSERT INTO runs (id, name) VALUES ('b', 'second')")
	assert.Error(t, err, "name column should be gone")

	require.NoError(t, m.MigrateDown(0))
	version, err = m.GetCurrentVersion()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.Error(t, m.MigrateDown(0))
}

func TestMissingDownMigration(t *testing.T) {
	fsys := testFS()
	delete(fsys, "schema/002_add_name.down.sql")

	db := openDB(t)
	m := NewMigrator(db, NewFSProvider(fsys, "schema", ""), nil)
	require.NoError(t, m.MigrateUp())
	assert.Error(t, m.MigrateTo(1))
}
