package repository

import (
	"context"
	"fmt"

	"bodoge-manager/models"

	"gorm.io/gorm"
)

// MatchFilter narrows List. Empty fields do not constrain.
type MatchFilter struct {
	BoardGameID string
	// InvolvingUserID keeps matches created by the user or listing the user
	// as a linked player.
	InvolvingUserID string
}

// MatchRepository stores matches and their players.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	if db == nil {
		panic("database connection cannot be nil for MatchRepository")
	}
	return &MatchRepository{db: db}
}

func playersByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *MatchRepository) Get(ctx context.Context, id string) (*models.Match, error) {
	var m models.Match
	if err := r.db.WithContext(ctx).Preload("Players", playersByPosition).First(&m, "id = ?", id).Error; err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("gorm: get match %s: %w", id, err)
	}
	return &m, nil
}

// List returns matches newest date first with their players.
func (r *MatchRepository) List(ctx context.Context, filter MatchFilter) ([]models.Match, error) {
	matches := []models.Match{}
	q := r.db.WithContext(ctx).Preload("Players", playersByPosition).Order("date DESC")
	if filter.BoardGameID != "" {
		q = q.Where("board_game_id = ?", filter.BoardGameID)
	}
	if filter.InvolvingUserID != "" {
		participated := r.db.Model(&models.MatchPlayer{}).Select("match_id").Where("user_id = ?", filter.InvolvingUserID)
		q = q.Where("(created_by = ? OR id IN (?))", filter.InvolvingUserID, participated)
	}
	if err := q.Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("gorm: list matches: %w", err)
	}
	return matches, nil
}

// Create inserts the match and its players atomically.
func (r *MatchRepository) Create(ctx context.Context, m *models.Match) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		players := m.Players
		if err := tx.Omit("Players").Create(m).Error; err != nil {
			return fmt.Errorf("gorm: insert match: %w", err)
		}
		if err := insertPlayers(tx, m.ID, players); err != nil {
			return err
		}
		m.Players = players
		return nil
	})
}

// Update rewrites the match row and replaces its whole player list.
func (r *MatchRepository) Update(ctx context.Context, m *models.Match) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		players := m.Players
		res := tx.Model(m).Omit("Players").
			Select("board_game_id", "date", "location", "note", "image_url", "updated_at").
			Updates(m)
		if res.Error != nil {
			return fmt.Errorf("gorm: update match %s: %w", m.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("match_id = ?", m.ID).Delete(&models.MatchPlayer{}).Error; err != nil {
			return fmt.Errorf("gorm: delete players of match %s: %w", m.ID, err)
		}
		if err := insertPlayers(tx, m.ID, players); err != nil {
			return err
		}
		m.Players = players
		return nil
	})
}

func (r *MatchRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", id).Delete(&models.MatchPlayer{}).Error; err != nil {
			return fmt.Errorf("gorm: delete players of match %s: %w", id, err)
		}
		res := tx.Delete(&models.Match{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("gorm: delete match %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func insertPlayers(tx *gorm.DB, matchID string, players []models.MatchPlayer) error {
	if len(players) == 0 {
		return nil
	}
	for i := range players {
		players[i].ID = ""
		players[i].MatchID = matchID
		players[i].Position = i
	}
	if err := tx.Create(&players).Error; err != nil {
		return fmt.Errorf("gorm: insert players of match %s: %w", matchID, err)
	}
	return nil
}
