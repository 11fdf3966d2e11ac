package services

import (
	"context"
	"slices"
	"time"

	"bodoge-manager/models"

	"golang.org/x/sync/errgroup"
)

// UnknownPlayer is shown for respondents without a profile.
const UnknownPlayer = "Unknown player"

// EvaluationEntry is one respondent's row on a game's detail view.
type EvaluationEntry struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Played      bool      `json:"played"`
	Evaluation  int       `json:"evaluation"`
	Comment     string    `json:"comment"`
	Owns        bool      `json:"owns"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListEvaluations returns one entry per user with any play state for the game,
// unrated rows included, ordered by evaluation then most recent update.
func ListEvaluations(ctx context.Context, st GameStores, gameID string) ([]EvaluationEntry, error) {
	var (
		states []models.PlayState
		owners []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		states, err = st.PlayStates.ListByGameIDs(gctx, []string{gameID})
		return err
	})
	g.Go(func() error {
		var err error
		owners, err = st.Ownership.ListOwners(gctx, gameID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeFailure("list evaluations", err)
	}
	if len(states) == 0 {
		return []EvaluationEntry{}, nil
	}

	userIDs := make([]string, len(states))
	for i, s := range states {
		userIDs[i] = s.UserID
	}
	profiles, err := st.Profiles.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, storeFailure("list evaluation profiles", err)
	}
	byID := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}

	out := make([]EvaluationEntry, 0, len(states))
	for _, s := range states {
		e := EvaluationEntry{
			UserID:      s.UserID,
			DisplayName: UnknownPlayer,
			Played:      s.Played,
			Evaluation:  s.Evaluation,
			Owns:        slices.Contains(owners, s.UserID),
			UpdatedAt:   s.UpdatedAt,
		}
		if s.Comment != nil {
			e.Comment = *s.Comment
		}
		if p, ok := byID[s.UserID]; ok && p.DisplayName != "" {
			e.DisplayName = p.Tag()
			e.AvatarURL = p.AvatarURL
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b EvaluationEntry) int {
		if a.Evaluation != b.Evaluation {
			return b.Evaluation - a.Evaluation
		}
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}
