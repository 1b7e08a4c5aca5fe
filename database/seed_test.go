package database

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB, temp dizinde gerçek bir SQLite dosyası açar ve migration'ları
// embedded FS'ten çalıştırır — production açılışıyla birebir aynı yol.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	migrationsFS, err := fs.Sub(EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := New(filepath.Join(t.TempDir(), "seed_test.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestSeedDemoUsersIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SeedDemoUsers(ctx))

	var count int
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, len(demoUsers), count)

	// İkinci seed mevcut kayıtları ezmemeli ve duplike üretmemeli.
	_, err := db.Conn.Exec("UPDATE users SET name = 'Renamed' WHERE id = ?", demoUsers[0].ID)
	require.NoError(t, err)
	require.NoError(t, db.SeedDemoUsers(ctx))

	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, len(demoUsers), count)

	var name string
	require.NoError(t, db.Conn.QueryRow(
		"SELECT name FROM users WHERE id = ?", demoUsers[0].ID).Scan(&name))
	assert.Equal(t, "Renamed", name, "seed should not overwrite existing rows")
}

func TestSeedDemoUsersDoesNotTouchForeignRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Conn.Exec(
		"INSERT INTO users (id, name) VALUES (?, ?)", "upstream-1", "Gerçek Kullanıcı")
	require.NoError(t, err)

	require.NoError(t, db.SeedDemoUsers(ctx))

	var count int
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, len(demoUsers)+1, count)
}
