package services

import (
	"context"
	"errors"
	"testing"

	"bodoge-manager/models"
	"bodoge-manager/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGameService(s *memstore.Store) *BoardGameService {
	return NewBoardGameService(memStores(s), s.Friends(), DefaultSorter)
}

func validInput(name string) GameInput {
	return GameInput{Name: name, MinPlayers: 2, MaxPlayers: 4, PlayTimeMinutes: 60, Tags: []string{"Strategy"}}
}

func TestAddGameRequiresViewer(t *testing.T) {
	s := memstore.New()
	_, err := newGameService(s).AddGame(context.Background(), "", validInput("Catan"))
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "please sign in", se.Message)
	assert.Equal(t, 0, s.CallCount("InsertGame"))
}

func TestAddGameValidatesBeforeWriting(t *testing.T) {
	tests := map[string]func(*GameInput){
		"empty name":       func(in *GameInput) { in.Name = "   " },
		"min above max":    func(in *GameInput) { in.MinPlayers, in.MaxPlayers = 5, 4 },
		"zero players":     func(in *GameInput) { in.MinPlayers = 0 },
		"negative time":    func(in *GameInput) { in.PlayTimeMinutes = -1 },
		"bad time range":   func(in *GameInput) { in.MinPlayTime, in.MaxPlayTime = ptr(90), ptr(30) },
		"complexity range": func(in *GameInput) { in.Complexity = ptr(7.0) },
	}
	for name, edit := range tests {
		t.Run(name, func(t *testing.T) {
			s := memstore.New()
			in := validInput("Catan")
			edit(&in)
			_, err := newGameService(s).AddGame(context.Background(), "u1", in)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, 0, s.CallCount("InsertGame"))
		})
	}
}

func TestAddGameWithOwnership(t *testing.T) {
	s := memstore.New()
	svc := newGameService(s)
	in := validInput("  Catan ")
	in.Tags = []string{"Strategy", " ", "Strategy", "Trading"}
	in.Owned = ptr(true)

	g, err := svc.AddGame(context.Background(), "u1", in)
	require.NoError(t, err)
	assert.Equal(t, "Catan", g.Name)
	assert.Equal(t, "catan", g.Slug)
	assert.Equal(t, "u1", g.CreatedBy)
	assert.Equal(t, []string{"Strategy", "Trading"}, []string(g.Tags))
	assert.True(t, s.Owns("u1", g.ID))

	games, err := svc.ListGames(context.Background(), "u1", ListQuery{OwnedOnly: true})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.True(t, games[0].IsOwned)
}

func TestUpdateGame(t *testing.T) {
	s := memstore.New()
	s.PutGame(game("g1", "Catan", 3, 4, 60))
	s.PutOwned("u1", "g1")
	svc := newGameService(s)

	in := validInput("Catan: Seafarers")
	in.Owned = ptr(false)
	g, err := svc.UpdateGame(context.Background(), "u1", "g1", in)
	require.NoError(t, err)
	assert.Equal(t, "catan-seafarers", g.Slug)
	assert.False(t, s.Owns("u1", "g1"))

	// nil owned leaves ownership alone
	s.PutOwned("u1", "g1")
	_, err = svc.UpdateGame(context.Background(), "u1", "g1", validInput("Catan"))
	require.NoError(t, err)
	assert.True(t, s.Owns("u1", "g1"))

	_, err = svc.UpdateGame(context.Background(), "u1", "missing", validInput("X"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateGameOwnershipIsPartOfTheUpdate(t *testing.T) {
	s := memstore.New()
	s.PutGame(game("g1", "Catan", 3, 4, 60))
	svc := newGameService(s)

	in := validInput("Catan")
	in.Owned = ptr(true)
	_, err := svc.UpdateGame(context.Background(), "u1", "g1", in)
	require.NoError(t, err)
	assert.True(t, s.Owns("u1", "g1"))
	assert.Equal(t, 0, s.CallCount("UpsertOwnership"))

	s.Fail["UpdateGame"] = errors.New("connection reset")
	in.Owned = ptr(false)
	_, err = svc.UpdateGame(context.Background(), "u1", "g1", in)
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.True(t, s.Owns("u1", "g1"))
	assert.Equal(t, 0, s.CallCount("DeleteOwnership"))
}

func TestDeleteGameCascades(t *testing.T) {
	s := memstore.New()
	s.PutGame(game("g1", "Catan", 3, 4, 60))
	s.PutState(models.PlayState{UserID: "u1", BoardGameID: "g1", Evaluation: 5})
	s.PutOwned("u1", "g1")
	svc := newGameService(s)

	require.NoError(t, svc.DeleteGame(context.Background(), "u1", "g1"))
	assert.False(t, s.HasGame("g1"))
	assert.False(t, s.Owns("u1", "g1"))

	swept, err := s.SweepOrphans(context.Background())
	require.NoError(t, err)
	assert.Zero(t, swept.Total())

	assert.ErrorIs(t, svc.DeleteGame(context.Background(), "u1", "g1"), ErrNotFound)
}

func TestRateAndImplyPlayed(t *testing.T) {
	s := memstore.New()
	s.PutGame(game("g1", "Catan", 3, 4, 60))
	svc := newGameService(s)
	ctx := context.Background()

	st, err := svc.RateAndImplyPlayed(ctx, "u1", "g1", 4, ptr("great"))
	require.NoError(t, err)
	assert.True(t, st.Played)

	st, err = svc.RateAndImplyPlayed(ctx, "u1", "g1", 0, nil)
	require.NoError(t, err)
	assert.False(t, st.Played)

	_, err = svc.RateAndImplyPlayed(ctx, "u1", "g1", 6, nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.RateAndImplyPlayed(ctx, "u1", "nope", 3, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.RateAndImplyPlayed(ctx, "", "g1", 3, nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestEditPlayStateKeepsPlayedIndependent(t *testing.T) {
	s := memstore.New()
	s.PutGame(game("g1", "Catan", 3, 4, 60))
	svc := newGameService(s)
	ctx := context.Background()

	st, err := svc.EditPlayState(ctx, "u1", "g1", PlayStatePatch{Evaluation: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, st.Evaluation)
	assert.False(t, st.Played)

	games, err := svc.ListGames(ctx, "u1", ListQuery{})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, 5, games[0].Evaluation)
	assert.False(t, games[0].Played)

	// merge keeps the earlier evaluation
	st, err = svc.EditPlayState(ctx, "u1", "g1", PlayStatePatch{Played: ptr(true), Comment: ptr("again")})
	require.NoError(t, err)
	assert.Equal(t, 5, st.Evaluation)
	assert.True(t, st.Played)
	assert.Equal(t, "again", *st.Comment)

	// played survives clearing the rating
	st, err = svc.EditPlayState(ctx, "u1", "g1", PlayStatePatch{Evaluation: ptr(0)})
	require.NoError(t, err)
	assert.True(t, st.Played)
}

func TestListGamesFilters(t *testing.T) {
	s := memstore.New()
	s.PutGame(game("g1", "Catan", 3, 4, 60, "Trading"))
	s.PutGame(game("g2", "Azul", 2, 4, 40, "Abstract"))
	svc := newGameService(s)

	games, err := svc.ListGames(context.Background(), "", ListQuery{Sort: SortName})
	require.NoError(t, err)
	assert.Equal(t, []string{"g2", "g1"}, ids(games))

	games, err = svc.ListGames(context.Background(), "", ListQuery{Tags: []string{"Trading"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, ids(games))

	_, err = svc.ListGames(context.Background(), "", ListQuery{Sort: "rating"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ListGames(context.Background(), "", ListQuery{OwnedOnly: true})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestListProfileGamesVisibility(t *testing.T) {
	s := memstore.New()
	s.PutGame(game("g1", "Catan", 3, 4, 60))
	s.PutOwned("alice", "g1")
	s.PutProfile(models.Profile{ID: "alice", DisplayName: "Alice", Discriminator: "1234", VisibilityGames: models.VisibilityFriends})
	s.Befriend("alice", "bob")
	svc := newGameService(s)
	ctx := context.Background()

	games, err := svc.ListProfileGames(ctx, "bob", "alice", ListQuery{OwnedOnly: true})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.False(t, games[0].IsOwned)

	_, err = svc.ListProfileGames(ctx, "carol", "alice", ListQuery{OwnedOnly: true})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListProfileGames(ctx, "", "alice", ListQuery{OwnedOnly: true})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListTags(t *testing.T) {
	s := memstore.New()
	s.PutGame(game("g1", "Catan", 3, 4, 60, "Trading", "Dice"))
	s.PutGame(game("g2", "Azul", 2, 4, 40, "Abstract"))

	tags, err := newGameService(s).ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Abstract", "Dice", "Trading"}, tags)
}

func TestGacha(t *testing.T) {
	s := memstore.New()
	s.PutGame(game("g1", "Catan", 3, 4, 60))
	s.PutGame(game("g2", "Azul", 2, 4, 40))
	s.PutState(models.PlayState{UserID: "u1", BoardGameID: "g1", Played: true, Evaluation: 4})
	svc := newGameService(s)
	svc.Rand = fixed(0)

	cond := DefaultGachaCondition()
	cond.PlayStatus = PlayStatusPlayed
	got, err := svc.Gacha(context.Background(), "u1", cond)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "g1", got.ID)

	// another user's played flag does not count
	got, err = svc.Gacha(context.Background(), "u2", cond)
	require.NoError(t, err)
	assert.Nil(t, got)

	cond.PlayStatus = "sometimes"
	_, err = svc.Gacha(context.Background(), "u1", cond)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListEvaluations(t *testing.T) {
	s := memstore.New()
	s.PutGame(game("g1", "Catan", 3, 4, 60))
	s.PutProfile(models.Profile{ID: "u1", DisplayName: "Alice", Discriminator: "0042", AvatarURL: "a.png"})
	s.PutProfile(models.Profile{ID: "u2", DisplayName: "Bob"})
	s.PutState(models.PlayState{UserID: "u1", BoardGameID: "g1", Played: true, Evaluation: 4})
	s.PutState(models.PlayState{UserID: "u2", BoardGameID: "g1", Played: true, Evaluation: 4})
	s.PutState(models.PlayState{UserID: "u3", BoardGameID: "g1"})
	s.PutState(models.PlayState{UserID: "u4", BoardGameID: "g1", Evaluation: 5, Comment: ptr("best")})
	s.PutOwned("u2", "g1")

	entries, err := newGameService(s).ListEvaluations(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "u4", entries[0].UserID)
	assert.Equal(t, UnknownPlayer, entries[0].DisplayName)
	assert.Equal(t, "best", entries[0].Comment)

	// equal ratings: most recently updated first
	assert.Equal(t, "u2", entries[1].UserID)
	assert.Equal(t, "Bob", entries[1].DisplayName)
	assert.True(t, entries[1].Owns)
	assert.Equal(t, "u1", entries[2].UserID)
	assert.Equal(t, "Alice#0042", entries[2].DisplayName)
	assert.Equal(t, "a.png", entries[2].AvatarURL)
	assert.False(t, entries[2].Owns)

	// unrated rows still appear
	assert.Equal(t, "u3", entries[3].UserID)
	assert.Zero(t, entries[3].Evaluation)

	_, err = newGameService(s).ListEvaluations(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
