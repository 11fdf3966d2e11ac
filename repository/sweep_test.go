package repository

import (
	"testing"
	"time"

	"bodoge-manager/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepOrphans(t *testing.T) {
	db := newTestDB(t)
	gone := insertTestGame(t, db, "Gone")
	kept := insertTestGame(t, db, "Kept")

	states := NewPlayStateRepository(db)
	owners := NewOwnershipRepository(db)
	for _, id := range []string{gone.ID, kept.ID} {
		require.NoError(t, states.Upsert(t.Context(), &models.PlayState{UserID: "user-1", BoardGameID: id, Evaluation: 3}))
		require.NoError(t, owners.Upsert(t.Context(), "user-1", id))
	}
	date := time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)
	insertTestMatch(t, db, gone.ID, "user-1", date, models.MatchPlayer{PlayerName: "Alice"}, models.MatchPlayer{PlayerName: "Bob"})
	keptMatch := insertTestMatch(t, db, kept.ID, "user-1", date, models.MatchPlayer{PlayerName: "Alice"})

	// the catalog row disappears without the cascade, as a partial write would leave it
	require.NoError(t, db.Delete(&models.BoardGame{}, "id = ?", gone.ID).Error)

	sweeper := NewSweeper(db)
	res, err := sweeper.SweepOrphans(t.Context())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{PlayStates: 1, Ownerships: 1, Matches: 1, MatchPlayers: 2}, res)
	assert.Equal(t, int64(5), res.Total())

	assert.Equal(t, int64(1), count(t, db, &models.PlayState{}, ""))
	assert.Equal(t, int64(1), count(t, db, &models.OwnedGame{}, ""))
	assert.Equal(t, int64(1), count(t, db, &models.Match{}, "id = ?", keptMatch.ID))
	assert.Equal(t, int64(1), count(t, db, &models.MatchPlayer{}, ""))

	res, err = sweeper.SweepOrphans(t.Context())
	require.NoError(t, err)
	assert.Zero(t, res.Total())
}
