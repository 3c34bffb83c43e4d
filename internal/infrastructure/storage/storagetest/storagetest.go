// Package storagetest holds behaviour checks shared by every entry.Repository driver.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pwvault/internal/domain/entry"
)

var Sample = entry.Envelope{
	Salt:       "c2FsdHNhbHRzYWx0c2FsdA==",
	IV:         "aXZpdml2aXZpdml2aXZpdg==",
	Tag:        "dGFndGFndGFndGFndGFnIQ==",
	Ciphertext: "Y2lwaGVy",
}

// RunRepositoryTests exercises newRepo against the Repository contract.
// newRepo must return an empty repository; it is closed by the suite.
func RunRepositoryTests(t *testing.T, newRepo func(t *testing.T) entry.Repository) {
	t.Run("EmptyTitles", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		titles, err := repo.Titles(context.Background())
		require.NoError(t, err)
		assert.Empty(t, titles)
	})

	t.Run("PutGet", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		defer repo.Close()

		require.NoError(t, repo.Put(ctx, "email", Sample))
		got, err := repo.Get(ctx, "email")
		require.NoError(t, err)
		assert.Equal(t, Sample, got)
	})

	t.Run("EmptyCiphertext", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		defer repo.Close()

		env := Sample
		env.Ciphertext = ""
		require.NoError(t, repo.Put(ctx, "empty", env))
		got, err := repo.Get(ctx, "empty")
		require.NoError(t, err)
		assert.Equal(t, env, got)
	})

	t.Run("PutReplaces", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		defer repo.Close()

		require.NoError(t, repo.Put(ctx, "email", Sample))
		replaced := entry.Envelope{Salt: "MQ==", IV: "Mg==", Tag: "Mw==", Ciphertext: "NA=="}
		require.NoError(t, repo.Put(ctx, "email", replaced))

		got, err := repo.Get(ctx, "email")
		require.NoError(t, err)
		assert.Equal(t, replaced, got)

		titles, err := repo.Titles(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"email"}, titles)
	})

	t.Run("TitlesSortedCaseSensitive", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		defer repo.Close()

		for _, title := range []string{"email", "bank", "Email", "wifi"} {
			require.NoError(t, repo.Put(ctx, title, Sample))
		}
		titles, err := repo.Titles(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Email", "bank", "email", "wifi"}, titles)
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := newRepo(t)
		defer repo.Close()

		_, err := repo.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, entry.ErrTitleNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		ctx := context.Background()
		repo := newRepo(t)
		defer repo.Close()

		require.NoError(t, repo.Put(ctx, "email", Sample))
		require.NoError(t, repo.Put(ctx, "bank", Sample))
		require.NoError(t, repo.Delete(ctx, "email"))

		_, err := repo.Get(ctx, "email")
		assert.ErrorIs(t, err, entry.ErrTitleNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "email"), entry.ErrTitleNotFound)

		titles, err := repo.Titles(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"bank"}, titles)
	})
}
