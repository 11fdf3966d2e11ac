package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnershipRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewOwnershipRepository(db)
	azul := insertTestGame(t, db, "Azul")
	hive := insertTestGame(t, db, "Hive")

	require.NoError(t, repo.Upsert(t.Context(), "user-1", azul.ID))
	require.NoError(t, repo.Upsert(t.Context(), "user-1", azul.ID))
	require.NoError(t, repo.Upsert(t.Context(), "user-1", hive.ID))
	require.NoError(t, repo.Upsert(t.Context(), "user-2", azul.ID))

	owned, err := repo.ListByUser(t.Context(), "user-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{azul.ID, hive.ID}, owned)

	owners, err := repo.ListOwners(t.Context(), azul.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user-1", "user-2"}, owners)

	require.NoError(t, repo.Delete(t.Context(), "user-1", azul.ID))
	require.NoError(t, repo.Delete(t.Context(), "user-1", azul.ID))
	owned, err = repo.ListByUser(t.Context(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{hive.ID}, owned)

	owned, err = repo.ListByUser(t.Context(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, owned)
	assert.Empty(t, owned)
}
