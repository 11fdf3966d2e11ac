package services

import (
	"context"
	"errors"
	"slices"
	"strings"

	"bodoge-manager/models"
	"bodoge-manager/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// BoardGameService serves the catalog and the per-viewer game views.
type BoardGameService struct {
	Stores GameStores
	Gate   Gate
	Sorter Sorter
	// Rand feeds the gacha draw; nil uses math/rand.
	Rand func() float64
}

func NewBoardGameService(stores GameStores, friends FriendshipStore, sorter Sorter) *BoardGameService {
	return &BoardGameService{
		Stores: stores,
		Gate:   Gate{Profiles: stores.Profiles, Friends: friends},
		Sorter: sorter,
	}
}

func requireViewer(viewer string) error {
	if viewer == "" {
		return ErrNotAuthenticated
	}
	return nil
}

// GameInput is the editable part of a catalog row. Owned is optional on
// update, where nil leaves the viewer's ownership untouched.
type GameInput struct {
	Name            string   `json:"name"`
	MinPlayers      int      `json:"min"`
	MaxPlayers      int      `json:"max"`
	PlayTimeMinutes int      `json:"time"`
	MinPlayTime     *int     `json:"min_play_time"`
	MaxPlayTime     *int     `json:"max_play_time"`
	Tags            []string `json:"tags"`

	BggID         *string  `json:"bgg_id"`
	ImageURL      string   `json:"image_url"`
	ThumbnailURL  string   `json:"thumbnail_url"`
	Description   string   `json:"description"`
	YearPublished *int     `json:"year_published"`
	Designers     []string `json:"designers"`
	Artists       []string `json:"artists"`
	Publishers    []string `json:"publishers"`
	Mechanics     []string `json:"mechanics"`
	Categories    []string `json:"categories"`
	AverageRating *float64 `json:"average_rating"`
	Complexity    *float64 `json:"complexity"`

	Owned *bool `json:"owned"`
}

// cleanList trims entries and drops blanks and repeats, keeping order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (in *GameInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.MinPlayers < 1 {
		return invalid("min players must be at least 1")
	}
	if in.MaxPlayers < in.MinPlayers {
		return invalid("min players must not exceed max players")
	}
	if in.PlayTimeMinutes < 0 {
		return invalid("play time must not be negative")
	}
	if in.MinPlayTime != nil && *in.MinPlayTime < 0 || in.MaxPlayTime != nil && *in.MaxPlayTime < 0 {
		return invalid("play time must not be negative")
	}
	if in.MinPlayTime != nil && in.MaxPlayTime != nil && *in.MinPlayTime > *in.MaxPlayTime {
		return invalid("min play time must not exceed max play time")
	}
	if in.AverageRating != nil && (*in.AverageRating < 0 || *in.AverageRating > 10) {
		return invalid("average rating must be between 0 and 10")
	}
	if in.Complexity != nil && (*in.Complexity < 0 || *in.Complexity > 5) {
		return invalid("complexity must be between 0 and 5")
	}
	in.Tags = cleanList(in.Tags)
	return nil
}

func (in *GameInput) apply(g *models.BoardGame) {
	g.Name = in.Name
	g.MinPlayers = in.MinPlayers
	g.MaxPlayers = in.MaxPlayers
	g.PlayTimeMinutes = in.PlayTimeMinutes
	g.MinPlayTime = in.MinPlayTime
	g.MaxPlayTime = in.MaxPlayTime
	g.Tags = datatypes.JSONSlice[string](in.Tags)
	g.BggID = in.BggID
	g.ImageURL = in.ImageURL
	g.ThumbnailURL = in.ThumbnailURL
	g.Description = in.Description
	g.YearPublished = in.YearPublished
	g.Designers = datatypes.JSONSlice[string](cleanList(in.Designers))
	g.Artists = datatypes.JSONSlice[string](cleanList(in.Artists))
	g.Publishers = datatypes.JSONSlice[string](cleanList(in.Publishers))
	g.Mechanics = datatypes.JSONSlice[string](cleanList(in.Mechanics))
	g.Categories = datatypes.JSONSlice[string](cleanList(in.Categories))
	g.AverageRating = in.AverageRating
	g.Complexity = in.Complexity
}

// ListQuery narrows and orders an annotated list.
type ListQuery struct {
	Query     string
	Tags      []string
	Sort      SortKey
	OwnedOnly bool
}

func (q ListQuery) validate() error {
	if !q.Sort.Valid() {
		return invalid("sort must be name, time or evaluation")
	}
	return nil
}

// ListGames is the viewer's own annotated catalog.
func (s *BoardGameService) ListGames(ctx context.Context, viewer string, q ListQuery) ([]AnnotatedGame, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	if q.OwnedOnly && viewer == "" {
		return nil, ErrNotAuthenticated
	}
	games, err := BuildAnnotatedGames(ctx, s.Stores, viewer, viewer, q.OwnedOnly)
	if err != nil {
		return nil, err
	}
	return s.Sorter.FilterAndSort(games, q.Query, q.Tags, q.Sort), nil
}

// ListProfileGames lists subject's games as seen by viewer. isOwned stays
// relative to viewer.
func (s *BoardGameService) ListProfileGames(ctx context.Context, viewer, subject string, q ListQuery) ([]AnnotatedGame, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	ok, err := s.Gate.Allow(ctx, viewer, subject, SectionGames)
	if err != nil {
		return nil, storeFailure("check games visibility", err)
	}
	if !ok {
		return nil, &Error{HTTP: 403, Code: "Forbidden", Message: "this user's games are not visible to you"}
	}
	games, err := BuildAnnotatedGames(ctx, s.Stores, viewer, subject, q.OwnedOnly)
	if err != nil {
		return nil, err
	}
	return s.Sorter.FilterAndSort(games, q.Query, q.Tags, q.Sort), nil
}

// ListTags returns every distinct tag in the catalog.
func (s *BoardGameService) ListTags(ctx context.Context) ([]string, error) {
	games, err := s.Stores.Catalog.ListGames(ctx, nil)
	if err != nil {
		return nil, storeFailure("list tags", err)
	}
	annotated := make([]AnnotatedGame, len(games))
	for i, g := range games {
		annotated[i].BoardGame = g
	}
	return s.Sorter.CollectTags(annotated), nil
}

func (s *BoardGameService) GetGame(ctx context.Context, id string) (*models.BoardGame, error) {
	g, err := s.Stores.Catalog.GetGame(ctx, id)
	if err != nil {
		return nil, fromStore("get game", "game", err)
	}
	return g, nil
}

// AddGame inserts a catalog row and, when in.Owned is set, the viewer's
// ownership in the same transaction.
func (s *BoardGameService) AddGame(ctx context.Context, viewer string, in GameInput) (*models.BoardGame, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	game := &models.BoardGame{CreatedBy: viewer}
	in.apply(game)

	var owner *models.OwnedGame
	if in.Owned != nil && *in.Owned {
		owner = &models.OwnedGame{UserID: viewer}
	}
	if err := s.Stores.Catalog.InsertGame(ctx, game, owner); err != nil {
		return nil, fromStore("insert game", "game", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": viewer, "game_id": game.ID}).Info("[GAMES] game added")
	return game, nil
}

func (s *BoardGameService) UpdateGame(ctx context.Context, viewer, id string, in GameInput) (*models.BoardGame, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	game, err := s.Stores.Catalog.GetGame(ctx, id)
	if err != nil {
		return nil, fromStore("get game", "game", err)
	}
	in.apply(game)

	var ownership *repository.OwnershipChange
	if in.Owned != nil {
		ownership = &repository.OwnershipChange{UserID: viewer, Owned: *in.Owned}
	}
	if err := s.Stores.Catalog.UpdateGame(ctx, game, ownership); err != nil {
		return nil, fromStore("update game", "game", err)
	}
	return game, nil
}

// DeleteGame removes the game with its play states, ownerships and matches.
func (s *BoardGameService) DeleteGame(ctx context.Context, viewer, id string) error {
	if err := requireViewer(viewer); err != nil {
		return err
	}
	if err := s.Stores.Catalog.DeleteGame(ctx, id); err != nil {
		return fromStore("delete game", "game", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": viewer, "game_id": id}).Info("[GAMES] game deleted")
	return nil
}

func (s *BoardGameService) SetOwnership(ctx context.Context, viewer, id string, owned bool) error {
	if err := requireViewer(viewer); err != nil {
		return err
	}
	if _, err := s.Stores.Catalog.GetGame(ctx, id); err != nil {
		return fromStore("get game", "game", err)
	}
	return s.setOwnership(ctx, viewer, id, owned)
}

func (s *BoardGameService) setOwnership(ctx context.Context, viewer, id string, owned bool) error {
	var err error
	if owned {
		err = s.Stores.Ownership.Upsert(ctx, viewer, id)
	} else {
		err = s.Stores.Ownership.Delete(ctx, viewer, id)
	}
	return fromStore("set ownership", "ownership", err)
}

func validEvaluation(e int) error {
	if e < 0 || e > 5 {
		return invalid("evaluation must be between 0 and 5")
	}
	return nil
}

// RateAndImplyPlayed stores a rating and marks the game played exactly when
// the rating is positive.
func (s *BoardGameService) RateAndImplyPlayed(ctx context.Context, viewer, id string, evaluation int, comment *string) (*models.PlayState, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if err := validEvaluation(evaluation); err != nil {
		return nil, err
	}
	if _, err := s.Stores.Catalog.GetGame(ctx, id); err != nil {
		return nil, fromStore("get game", "game", err)
	}
	state := &models.PlayState{
		UserID:      viewer,
		BoardGameID: id,
		Played:      evaluation > 0,
		Evaluation:  evaluation,
		Comment:     comment,
	}
	if err := s.Stores.PlayStates.Upsert(ctx, state); err != nil {
		return nil, fromStore("upsert play state", "play state", err)
	}
	return state, nil
}

// PlayStatePatch changes only the fields that are set.
type PlayStatePatch struct {
	Played     *bool   `json:"played"`
	Evaluation *int    `json:"evaluation"`
	Comment    *string `json:"comment"`
}

// EditPlayState merges patch into the viewer's row, starting from
// played=false, evaluation=0, no comment. Played is never derived.
func (s *BoardGameService) EditPlayState(ctx context.Context, viewer, id string, patch PlayStatePatch) (*models.PlayState, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if patch.Evaluation != nil {
		if err := validEvaluation(*patch.Evaluation); err != nil {
			return nil, err
		}
	}
	if _, err := s.Stores.Catalog.GetGame(ctx, id); err != nil {
		return nil, fromStore("get game", "game", err)
	}

	state, err := s.Stores.PlayStates.Get(ctx, viewer, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		state = &models.PlayState{UserID: viewer, BoardGameID: id}
	case err != nil:
		return nil, storeFailure("get play state", err)
	}
	if patch.Played != nil {
		state.Played = *patch.Played
	}
	if patch.Evaluation != nil {
		state.Evaluation = *patch.Evaluation
	}
	if patch.Comment != nil {
		state.Comment = patch.Comment
	}
	if err := s.Stores.PlayStates.Upsert(ctx, state); err != nil {
		return nil, fromStore("upsert play state", "play state", err)
	}
	return state, nil
}

func (s *BoardGameService) ListEvaluations(ctx context.Context, id string) ([]EvaluationEntry, error) {
	if _, err := s.Stores.Catalog.GetGame(ctx, id); err != nil {
		return nil, fromStore("get game", "game", err)
	}
	return ListEvaluations(ctx, s.Stores, id)
}

// Gacha draws one of the viewer's games matching cond, or nil.
func (s *BoardGameService) Gacha(ctx context.Context, viewer string, cond GachaCondition) (*AnnotatedGame, error) {
	if err := cond.Validate(); err != nil {
		return nil, err
	}
	games, err := BuildAnnotatedGames(ctx, s.Stores, viewer, viewer, false)
	if err != nil {
		return nil, err
	}
	return SelectRandom(games, cond, s.Rand), nil
}
