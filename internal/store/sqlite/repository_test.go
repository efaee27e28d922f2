package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesboard/internal/core"
	"salesboard/internal/store"
	"salesboard/internal/store/storetest"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	return repo
}

func TestSQLiteRepositoryConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestRepository(t) })
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	repo, err := NewRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewRepository(path)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, RunMigrations(path))
}

func TestReplaceAllRollsBackOnCancelledContext(t *testing.T) {
	repo := newTestRepository(t)
	defer repo.Close()
	ctx := context.Background()

	_, err := repo.ReplaceAll(ctx, storetest.Fixture())
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = repo.ReplaceAll(cancelled, []core.Transaction{{Title: "x", DateOfSale: time.Now()}})
	require.Error(t, err)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(storetest.Fixture()), n)
}
