package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriyield/entities"
)

func TestOpenSQLiteMigrates(t *testing.T) {
	db, err := OpenSQLite("file::memory:")
	require.NoError(t, err)

	for _, m := range []any{&entities.KVEntry{}, &entities.KBDocument{}, &entities.KBChunk{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
	// running twice is harmless
	require.NoError(t, Migrate(db))
}

func TestOpenSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agri.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Create(&entities.KVEntry{Key: "k", Value: []byte("v")}).Error)

	sqlDB, _ := db.DB()
	require.NoError(t, sqlDB.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	var got entities.KVEntry
	require.NoError(t, db.Where(&entities.KVEntry{Key: "k"}).First(&got).Error)
	assert.Equal(t, []byte("v"), got.Value)
}
