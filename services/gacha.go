package services

import (
	"math/rand/v2"
)

type PlayStatus string

const (
	PlayStatusAny      PlayStatus = "any"
	PlayStatusPlayed   PlayStatus = "played"
	PlayStatusUnplayed PlayStatus = "unplayed"
)

func (p PlayStatus) Valid() bool {
	switch p {
	case PlayStatusAny, PlayStatusPlayed, PlayStatusUnplayed:
		return true
	}
	return false
}

// GachaCondition narrows the random draw. Ranges are inclusive.
type GachaCondition struct {
	Players    *int       `json:"players"`
	PlayStatus PlayStatus `json:"play_status"`
	Tags       []string   `json:"tags"`
	MinTime    int        `json:"min_time"`
	MaxTime    int        `json:"max_time"`
	MinRating  float64    `json:"min_rating"`
	MaxRating  float64    `json:"max_rating"`
}

func DefaultGachaCondition() GachaCondition {
	return GachaCondition{
		PlayStatus: PlayStatusAny,
		MinTime:    0,
		MaxTime:    180,
		MinRating:  0,
		MaxRating:  5,
	}
}

func (c GachaCondition) Validate() error {
	if !c.PlayStatus.Valid() {
		return invalid("play_status must be any, played or unplayed")
	}
	if c.Players != nil && *c.Players < 1 {
		return invalid("players must be at least 1")
	}
	if c.MinTime < 0 || c.MinTime > c.MaxTime {
		return invalid("time range is invalid")
	}
	if c.MinRating < 0 || c.MaxRating > 5 || c.MinRating > c.MaxRating {
		return invalid("rating range is invalid")
	}
	return nil
}

// Match reports whether g survives every predicate. The play status is the
// viewer's own played flag.
func (c GachaCondition) Match(g *AnnotatedGame) bool {
	if c.Players != nil && (*c.Players < g.MinPlayers || *c.Players > g.MaxPlayers) {
		return false
	}
	switch c.PlayStatus {
	case PlayStatusPlayed:
		if !g.Played {
			return false
		}
	case PlayStatusUnplayed:
		if g.Played {
			return false
		}
	}
	if !hasAllTags(g, c.Tags) {
		return false
	}
	if g.PlayTimeMinutes < c.MinTime || g.PlayTimeMinutes > c.MaxTime {
		return false
	}
	return g.AverageEvaluation >= c.MinRating && g.AverageEvaluation <= c.MaxRating
}

// SelectRandom picks one surviving game using index floor(r*len) where r in
// [0,1) comes from rnd. A nil rnd uses math/rand. Returns nil when nothing
// survives.
func SelectRandom(games []AnnotatedGame, cond GachaCondition, rnd func() float64) *AnnotatedGame {
	var candidates []*AnnotatedGame
	for i := range games {
		if cond.Match(&games[i]) {
			candidates = append(candidates, &games[i])
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	if rnd == nil {
		rnd = rand.Float64
	}
	idx := int(rnd() * float64(len(candidates)))
	// guard against a source returning exactly 1
	if idx >= len(candidates) {
		idx = len(candidates) - 1
	}
	picked := *candidates[idx]
	return &picked
}
