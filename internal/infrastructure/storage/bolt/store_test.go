package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
	"golang.org/x/exp/slog"

	"pwvault/internal/domain/entry"
	"pwvault/internal/infrastructure/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.RunRepositoryTests(t, func(t *testing.T) entry.Repository {
		s, err := New(filepath.Join(t.TempDir(), "vault.bolt"), slog.Default())
		require.NoError(t, err)
		return s
	})
}

func TestStore_MalformedValue(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "vault.bolt"), slog.Default())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(entriesBucket).Put([]byte("broken"), []byte(`{"salt":"a"}`))
	}))

	_, err = s.Get(context.Background(), "broken")
	assert.ErrorIs(t, err, entry.ErrMalformedEntry)
}

func TestStore_EmptyTitle(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "vault.bolt"), slog.Default())
	require.NoError(t, err)
	defer s.Close()

	err = s.Put(context.Background(), "", storagetest.Sample)
	assert.ErrorIs(t, err, entry.ErrInvalidTitle)
}

func TestNew_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Application Support", "nested", "vault.bolt")

	s, err := New(path, slog.Default())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(context.Background(), "email", storagetest.Sample))
	assert.FileExists(t, path)
}
