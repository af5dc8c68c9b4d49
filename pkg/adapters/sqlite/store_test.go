package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/tendril/pkg/adapters/sqlite"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.DefinitionStore = (*sqlite.Store)(nil)

func open(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "tendril.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := sqlite.Open(" ")
	assert.Error(t, err)
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunDefinitionStoreContract(t, open(t))
}

func TestSQLiteStore_Revisions(t *testing.T) {
	store := open(t)
	ctx := context.Background()

	revs, err := store.Revisions(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, revs)

	for _, label := range []string{"first", "second", "third"} {
		require.NoError(t, store.Save(ctx, &domain.Definition{Events: []domain.EventDef{{Label: label}}}))
	}

	revs, err = store.Revisions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, "third", revs[0].Definition.Events[0].Label)
	assert.Equal(t, "second", revs[1].Definition.Events[0].Label)
	assert.Greater(t, revs[0].Number, revs[1].Number)
	assert.False(t, revs[0].SavedAt.IsZero())

	all, err := store.Revisions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	latest, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "third", latest.Events[0].Label)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tendril.db")
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, ports.ContractDefinition()))
	require.NoError(t, store.Close())

	store, err = sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Events, 2)
}
