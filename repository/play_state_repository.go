package repository

import (
	"context"
	"fmt"

	"bodoge-manager/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlayStateRepository stores per-user-per-game play states.
type PlayStateRepository struct {
	db *gorm.DB
}

func NewPlayStateRepository(db *gorm.DB) *PlayStateRepository {
	if db == nil {
		panic("database connection cannot be nil for PlayStateRepository")
	}
	return &PlayStateRepository{db: db}
}

// ListByGameIDs returns every user's rows for the given games only.
func (r *PlayStateRepository) ListByGameIDs(ctx context.Context, gameIDs []string) ([]models.PlayState, error) {
	states := []models.PlayState{}
	if len(gameIDs) == 0 {
		return states, nil
	}
	if err := r.db.WithContext(ctx).Where("board_game_id IN ?", gameIDs).Find(&states).Error; err != nil {
		return nil, fmt.Errorf("gorm: list play states: %w", err)
	}
	return states, nil
}

func (r *PlayStateRepository) Get(ctx context.Context, userID, gameID string) (*models.PlayState, error) {
	var state models.PlayState
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND board_game_id = ?", userID, gameID).
		First(&state).Error
	if err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("gorm: get play state (%s, %s): %w", userID, gameID, err)
	}
	return &state, nil
}

// Upsert writes the full row keyed by (user_id, board_game_id).
func (r *PlayStateRepository) Upsert(ctx context.Context, state *models.PlayState) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "board_game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"played", "evaluation", "comment", "updated_at"}),
	}).Create(state).Error
	if err != nil {
		return fmt.Errorf("gorm: upsert play state (%s, %s): %w", state.UserID, state.BoardGameID, err)
	}
	return nil
}
