package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"pwvault/internal/domain/entry"
	"pwvault/internal/infrastructure/migration"
	"pwvault/internal/infrastructure/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.RunRepositoryTests(t, func(t *testing.T) entry.Repository {
		s, err := New(filepath.Join(t.TempDir(), "vault.db"), migration.DefaultEngine, slog.Default())
		require.NoError(t, err)
		return s
	})
}

func TestStore_PathWithSpaces(t *testing.T) {
	storagetest.RunRepositoryTests(t, func(t *testing.T) entry.Repository {
		path := filepath.Join(t.TempDir(), "Application Support", "pwvault", "vault.db")
		s, err := New(path, migration.DefaultEngine, slog.Default())
		require.NoError(t, err)
		return s
	})
}

func TestNew_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Application Support", "vault.db")

	s, err := New(path, migration.DefaultEngine, slog.Default())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(t.Context(), "email", storagetest.Sample))
	assert.FileExists(t, path)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.db")

	s, err := New(path, migration.DefaultEngine, slog.Default())
	require.NoError(t, err)
	require.NoError(t, s.Put(t.Context(), "email", storagetest.Sample))
	require.NoError(t, s.Close())

	s, err = New(path, migration.DefaultEngine, slog.Default())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(t.Context(), "email")
	require.NoError(t, err)
	assert.Equal(t, storagetest.Sample, got)
}

func TestStore_MigrationFailure(t *testing.T) {
	engine := func(*sql.DB) (migration.Migrator, error) {
		return nil, assert.AnError
	}

	_, err := New(filepath.Join(t.TempDir(), "vault.db"), engine, slog.Default())
	assert.ErrorIs(t, err, entry.ErrStoreUnreadable)
}
