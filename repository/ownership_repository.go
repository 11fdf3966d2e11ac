package repository

import (
	"context"
	"fmt"

	"bodoge-manager/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OwnershipChange sets or clears one user's ownership alongside another write.
type OwnershipChange struct {
	UserID string
	Owned  bool
}

// OwnershipRepository stores presence-only ownership markers.
type OwnershipRepository struct {
	db *gorm.DB
}

func NewOwnershipRepository(db *gorm.DB) *OwnershipRepository {
	if db == nil {
		panic("database connection cannot be nil for OwnershipRepository")
	}
	return &OwnershipRepository{db: db}
}

// ListByUser returns the ids of games userID owns.
func (r *OwnershipRepository) ListByUser(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.OwnedGame{}).
		Where("user_id = ?", userID).
		Pluck("board_game_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list owned games of %s: %w", userID, err)
	}
	return ids, nil
}

// ListOwners returns the ids of users who own gameID.
func (r *OwnershipRepository) ListOwners(ctx context.Context, gameID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.OwnedGame{}).
		Where("board_game_id = ?", gameID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list owners of %s: %w", gameID, err)
	}
	return ids, nil
}

func (r *OwnershipRepository) Upsert(ctx context.Context, userID, gameID string) error {
	row := models.OwnedGame{UserID: userID, BoardGameID: gameID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("gorm: upsert ownership (%s, %s): %w", userID, gameID, err)
	}
	return nil
}

func (r *OwnershipRepository) Delete(ctx context.Context, userID, gameID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND board_game_id = ?", userID, gameID).
		Delete(&models.OwnedGame{}).Error
	if err != nil {
		return fmt.Errorf("gorm: delete ownership (%s, %s): %w", userID, gameID, err)
	}
	return nil
}
