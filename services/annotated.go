package services

import (
	"context"
	"math"

	"bodoge-manager/models"

	"golang.org/x/sync/errgroup"
)

// AnnotatedGame is a catalog row merged with the viewer's play state, the
// cross-user aggregate and the viewer's ownership.
type AnnotatedGame struct {
	models.BoardGame

	Played     bool   `json:"played"`
	Evaluation int    `json:"evaluation"`
	Comment    string `json:"comment"`

	AverageEvaluation float64 `json:"average_evaluation"`
	AnyPlayed         bool    `json:"any_played"`
	IsOwned           bool    `json:"is_owned"`
}

// AverageEvaluation is the mean of the positive evaluations rounded to one
// decimal, or 0 when nobody rated.
func AverageEvaluation(states []models.PlayState) float64 {
	sum, n := 0, 0
	for _, s := range states {
		if s.Evaluation > 0 {
			sum += s.Evaluation
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*10) / 10
}

// BuildAnnotatedGames composes the per-viewer game list. subject defaults to
// viewer. With ownedOnly the list is restricted to games the subject owns and
// an empty ownership set returns an empty list without reading the catalog.
// Any read failure aborts the whole call.
func BuildAnnotatedGames(ctx context.Context, st GameStores, viewer, subject string, ownedOnly bool) ([]AnnotatedGame, error) {
	if subject == "" {
		subject = viewer
	}

	var allow []string
	if ownedOnly && subject != "" {
		ids, err := st.Ownership.ListByUser(ctx, subject)
		if err != nil {
			return nil, storeFailure("list subject ownership", err)
		}
		if len(ids) == 0 {
			return []AnnotatedGame{}, nil
		}
		allow = ids
	}

	games, err := st.Catalog.ListGames(ctx, allow)
	if err != nil {
		return nil, storeFailure("list games", err)
	}
	if len(games) == 0 {
		return []AnnotatedGame{}, nil
	}

	ids := make([]string, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}

	var (
		states    []models.PlayState
		viewerOwn []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		states, err = st.PlayStates.ListByGameIDs(gctx, ids)
		return err
	})
	if viewer != "" {
		g.Go(func() error {
			var err error
			viewerOwn, err = st.Ownership.ListByUser(gctx, viewer)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeFailure("annotate games", err)
	}

	byGame := make(map[string][]models.PlayState, len(games))
	for _, s := range states {
		byGame[s.BoardGameID] = append(byGame[s.BoardGameID], s)
	}
	owned := make(map[string]struct{}, len(viewerOwn))
	for _, id := range viewerOwn {
		owned[id] = struct{}{}
	}

	out := make([]AnnotatedGame, 0, len(games))
	for _, game := range games {
		rows := byGame[game.ID]
		a := AnnotatedGame{
			BoardGame:         game,
			AverageEvaluation: AverageEvaluation(rows),
		}
		for _, s := range rows {
			if s.Played {
				a.AnyPlayed = true
			}
			if viewer != "" && s.UserID == viewer {
				a.Played = s.Played
				a.Evaluation = s.Evaluation
				if s.Comment != nil {
					a.Comment = *s.Comment
				}
			}
		}
		_, a.IsOwned = owned[game.ID]
		out = append(out, a)
	}
	return out, nil
}
