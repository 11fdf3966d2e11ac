package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"bodoge-manager/models"
	"bodoge-manager/repository"

	"github.com/sirupsen/logrus"
)

type MatchService struct {
	Matches  MatchStore
	Catalog  CatalogStore
	Profiles ProfileStore
	Gate     Gate
	Uploader ImageUploader
}

func NewMatchService(matches MatchStore, catalog CatalogStore, profiles ProfileStore, friends FriendshipStore, up ImageUploader) *MatchService {
	return &MatchService{
		Matches:  matches,
		Catalog:  catalog,
		Profiles: profiles,
		Gate:     Gate{Profiles: profiles, Friends: friends},
		Uploader: up,
	}
}

type PlayerInput struct {
	UserID     *string `json:"user_id"`
	PlayerName string  `json:"player_name"`
	Score      *string `json:"score"`
	Rank       *int    `json:"rank"`
	IsWinner   bool    `json:"is_winner"`
	Role       *string `json:"role"`
}

type MatchInput struct {
	BoardGameID string        `json:"board_game_id"`
	Date        time.Time     `json:"date"`
	Location    *string       `json:"location"`
	Note        *string       `json:"note"`
	ImageURL    *string       `json:"image_url"`
	Players     []PlayerInput `json:"players"`
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func (in *MatchInput) Validate() error {
	if strings.TrimSpace(in.BoardGameID) == "" {
		return invalid("board_game_id is required")
	}
	if in.Date.IsZero() {
		return invalid("date is required")
	}
	if len(in.Players) == 0 {
		return invalid("at least one player is required")
	}
	for i := range in.Players {
		p := &in.Players[i]
		p.UserID = blankToNil(p.UserID)
		p.PlayerName = strings.TrimSpace(p.PlayerName)
		if p.PlayerName == "" && p.UserID == nil {
			return invalid("player %d needs a name or a linked user", i+1)
		}
		if p.Rank != nil && *p.Rank < 1 {
			return invalid("player %d rank must be at least 1", i+1)
		}
		p.Score = blankToNil(p.Score)
		p.Role = blankToNil(p.Role)
	}
	in.Location = blankToNil(in.Location)
	in.Note = blankToNil(in.Note)
	in.ImageURL = blankToNil(in.ImageURL)
	return nil
}

func (in *MatchInput) apply(m *models.Match) {
	m.BoardGameID = in.BoardGameID
	m.Date = in.Date
	m.Location = in.Location
	m.Note = in.Note
	m.ImageURL = in.ImageURL
	m.Players = make([]models.MatchPlayer, len(in.Players))
	for i, p := range in.Players {
		m.Players[i] = models.MatchPlayer{
			UserID:     p.UserID,
			PlayerName: p.PlayerName,
			Score:      p.Score,
			Rank:       p.Rank,
			IsWinner:   p.IsWinner,
			Role:       p.Role,
		}
	}
}

// MatchView is a match with its game name and composed player names.
type MatchView struct {
	models.Match
	GameName string `json:"game_name"`
}

// ListMatches returns matches the target created or played in, newest first.
// target defaults to viewer.
func (s *MatchService) ListMatches(ctx context.Context, viewer, target, gameID string) ([]MatchView, error) {
	if target == "" {
		target = viewer
	}
	if target == "" {
		return nil, ErrNotAuthenticated
	}
	ok, err := s.Gate.Allow(ctx, viewer, target, SectionMatches)
	if err != nil {
		return nil, storeFailure("check matches visibility", err)
	}
	if !ok {
		return nil, &Error{HTTP: 403, Code: "Forbidden", Message: "this user's matches are not visible to you"}
	}

	matches, err := s.Matches.List(ctx, repository.MatchFilter{BoardGameID: gameID, InvolvingUserID: target})
	if err != nil {
		return nil, storeFailure("list matches", err)
	}
	return s.compose(ctx, matches)
}

func (s *MatchService) compose(ctx context.Context, matches []models.Match) ([]MatchView, error) {
	out := make([]MatchView, 0, len(matches))
	if len(matches) == 0 {
		return out, nil
	}

	var gameIDs, userIDs []string
	for _, m := range matches {
		gameIDs = append(gameIDs, m.BoardGameID)
		for _, p := range m.Players {
			if p.UserID != nil {
				userIDs = append(userIDs, *p.UserID)
			}
		}
	}
	games, err := s.Catalog.ListGames(ctx, gameIDs)
	if err != nil {
		return nil, storeFailure("list match games", err)
	}
	names := make(map[string]string, len(games))
	for _, g := range games {
		names[g.ID] = g.Name
	}
	tags := map[string]string{}
	if len(userIDs) > 0 {
		profiles, err := s.Profiles.GetByIDs(ctx, userIDs)
		if err != nil {
			return nil, storeFailure("list match players", err)
		}
		for i := range profiles {
			if profiles[i].DisplayName != "" {
				tags[profiles[i].ID] = profiles[i].Tag()
			}
		}
	}

	for _, m := range matches {
		for i := range m.Players {
			p := &m.Players[i]
			if p.UserID == nil {
				continue
			}
			if tag, ok := tags[*p.UserID]; ok {
				p.PlayerName = tag
			} else if p.PlayerName == "" {
				p.PlayerName = UnknownPlayer
			}
		}
		out = append(out, MatchView{Match: m, GameName: names[m.BoardGameID]})
	}
	return out, nil
}

func (s *MatchService) AddMatch(ctx context.Context, viewer string, in MatchInput) (*MatchView, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Catalog.GetGame(ctx, in.BoardGameID); err != nil {
		return nil, fromStore("get game", "game", err)
	}
	m := &models.Match{CreatedBy: viewer}
	in.apply(m)
	if err := s.Matches.Create(ctx, m); err != nil {
		return nil, storeFailure("create match", err)
	}
	logrus.WithFields(logrus.Fields{"user_id": viewer, "match_id": m.ID, "game_id": m.BoardGameID}).Info("[MATCHES] match recorded")
	return s.one(ctx, m)
}

// owned loads a match and checks that viewer created it.
func (s *MatchService) owned(ctx context.Context, viewer, id string) (*models.Match, error) {
	m, err := s.Matches.Get(ctx, id)
	if err != nil {
		return nil, fromStore("get match", "match", err)
	}
	if m.CreatedBy != viewer {
		return nil, &Error{HTTP: 403, Code: "Forbidden", Message: "only the creator can change this match"}
	}
	return m, nil
}

// UpdateMatch replaces the match fields and its whole player list.
func (s *MatchService) UpdateMatch(ctx context.Context, viewer, id string, in MatchInput) (*MatchView, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m, err := s.owned(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if in.BoardGameID != m.BoardGameID {
		if _, err := s.Catalog.GetGame(ctx, in.BoardGameID); err != nil {
			return nil, fromStore("get game", "game", err)
		}
	}
	in.apply(m)
	if err := s.Matches.Update(ctx, m); err != nil {
		return nil, fromStore("update match", "match", err)
	}
	return s.one(ctx, m)
}

func (s *MatchService) DeleteMatch(ctx context.Context, viewer, id string) error {
	if err := requireViewer(viewer); err != nil {
		return err
	}
	if _, err := s.owned(ctx, viewer, id); err != nil {
		return err
	}
	if err := s.Matches.Delete(ctx, id); err != nil {
		return fromStore("delete match", "match", err)
	}
	return nil
}

// UploadMatchImage stores a match photo and returns its URL.
func (s *MatchService) UploadMatchImage(ctx context.Context, viewer string, fh *multipart.FileHeader) (string, error) {
	if err := requireViewer(viewer); err != nil {
		return "", err
	}
	return uploadImage(ctx, s.Uploader, fh, "matches/"+viewer)
}

func (s *MatchService) one(ctx context.Context, m *models.Match) (*MatchView, error) {
	views, err := s.compose(ctx, []models.Match{*m})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
