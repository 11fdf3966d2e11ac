package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(r float64) func() float64 { return func() float64 { return r } }

func TestSelectRandomIndex(t *testing.T) {
	games := annotated(
		ag("1", "Catan", 60, 4),
		ag("2", "Azul", 40, 3),
		ag("3", "Splendor", 30, 4),
	)
	cond := DefaultGachaCondition()

	first := SelectRandom(games, cond, fixed(0))
	require.NotNil(t, first)
	assert.Equal(t, "1", first.ID)

	last := SelectRandom(games, cond, fixed(0.9999))
	require.NotNil(t, last)
	assert.Equal(t, "3", last.ID)

	mid := SelectRandom(games, cond, fixed(0.5))
	require.NotNil(t, mid)
	assert.Equal(t, "2", mid.ID)
}

func TestSelectRandomEmptyAndSingle(t *testing.T) {
	cond := DefaultGachaCondition()
	assert.Nil(t, SelectRandom(nil, cond, fixed(0.3)))

	only := annotated(ag("1", "Catan", 60, 4))
	for _, r := range []float64{0, 0.5, 0.9999} {
		got := SelectRandom(only, cond, fixed(r))
		require.NotNil(t, got)
		assert.Equal(t, "1", got.ID)
	}

	// default source stays in range
	for range 50 {
		require.NotNil(t, SelectRandom(only, cond, nil))
	}
}

func TestSelectRandomUsesSurvivorsOnly(t *testing.T) {
	games := annotated(
		ag("1", "Catan", 60, 4),
		ag("2", "Twilight Imperium", 480, 4.5),
		ag("3", "Splendor", 30, 4),
	)
	got := SelectRandom(games, DefaultGachaCondition(), fixed(0.9999))
	require.NotNil(t, got)
	assert.Equal(t, "3", got.ID)
}

func TestGachaConditionMatch(t *testing.T) {
	g := ag("1", "Catan", 60, 4, "Trading", "Dice")
	g.MinPlayers, g.MaxPlayers = 3, 4
	g.Played = true

	tests := []struct {
		name string
		edit func(*GachaCondition)
		want bool
	}{
		{"defaults", func(c *GachaCondition) {}, true},
		{"players in range", func(c *GachaCondition) { c.Players = ptr(3) }, true},
		{"players too few", func(c *GachaCondition) { c.Players = ptr(2) }, false},
		{"players too many", func(c *GachaCondition) { c.Players = ptr(5) }, false},
		{"played", func(c *GachaCondition) { c.PlayStatus = PlayStatusPlayed }, true},
		{"unplayed", func(c *GachaCondition) { c.PlayStatus = PlayStatusUnplayed }, false},
		{"tags subset", func(c *GachaCondition) { c.Tags = []string{"Dice"} }, true},
		{"tags missing", func(c *GachaCondition) { c.Tags = []string{"Dice", "Worker"} }, false},
		{"time bound inclusive", func(c *GachaCondition) { c.MinTime, c.MaxTime = 60, 60 }, true},
		{"time out of range", func(c *GachaCondition) { c.MaxTime = 59 }, false},
		{"rating inclusive", func(c *GachaCondition) { c.MinRating = 4 }, true},
		{"rating too low", func(c *GachaCondition) { c.MinRating = 4.1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := DefaultGachaCondition()
			tt.edit(&cond)
			assert.Equal(t, tt.want, cond.Match(&g))
		})
	}
}

func TestGachaConditionValidate(t *testing.T) {
	assert.NoError(t, DefaultGachaCondition().Validate())

	bad := []func(*GachaCondition){
		func(c *GachaCondition) { c.PlayStatus = "maybe" },
		func(c *GachaCondition) { c.Players = ptr(0) },
		func(c *GachaCondition) { c.MinTime = 100; c.MaxTime = 50 },
		func(c *GachaCondition) { c.MaxRating = 6 },
		func(c *GachaCondition) { c.MinRating = 4; c.MaxRating = 3 },
	}
	for _, edit := range bad {
		cond := DefaultGachaCondition()
		edit(&cond)
		assert.ErrorIs(t, cond.Validate(), ErrValidation)
	}
}
