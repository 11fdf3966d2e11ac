package repository

import (
	"context"
	"fmt"

	"bodoge-manager/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameRepository is the gorm-backed catalog store.
type GameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	if db == nil {
		panic("database connection cannot be nil for GameRepository")
	}
	return &GameRepository{db: db}
}

// ListGames returns catalog rows newest first. A nil ids slice means every
// row; a non-nil empty slice matches nothing.
func (r *GameRepository) ListGames(ctx context.Context, ids []string) ([]models.BoardGame, error) {
	games := []models.BoardGame{}
	if ids != nil && len(ids) == 0 {
		return games, nil
	}

	q := r.db.WithContext(ctx).Order("created_at DESC")
	if ids != nil {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Find(&games).Error; err != nil {
		return nil, fmt.Errorf("gorm: list board games: %w", err)
	}
	return games, nil
}

func (r *GameRepository) GetGame(ctx context.Context, id string) (*models.BoardGame, error) {
	var game models.BoardGame
	if err := r.db.WithContext(ctx).First(&game, "id = ?", id).Error; err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("gorm: get board game %s: %w", id, err)
	}
	return &game, nil
}

// InsertGame creates the catalog row and, when owner is set, the creator's
// ownership row in the same transaction.
func (r *GameRepository) InsertGame(ctx context.Context, game *models.BoardGame, owner *models.OwnedGame) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(game).Error; err != nil {
			return fmt.Errorf("gorm: insert board game: %w", translate(err))
		}
		if owner == nil {
			return nil
		}
		owner.BoardGameID = game.ID
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(owner).Error; err != nil {
			return fmt.Errorf("gorm: insert ownership for new game: %w", err)
		}
		return nil
	})
}

// UpdateGame rewrites the catalog row. A non-nil ownership change is applied
// in the same transaction.
func (r *GameRepository) UpdateGame(ctx context.Context, game *models.BoardGame, ownership *OwnershipChange) error {
	game.RefreshSlug()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(game).Select("*").Omit("id", "created_at", "created_by").Updates(game)
		if res.Error != nil {
			return fmt.Errorf("gorm: update board game %s: %w", game.ID, translate(res.Error))
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if ownership == nil {
			return nil
		}
		if ownership.Owned {
			row := models.OwnedGame{UserID: ownership.UserID, BoardGameID: game.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return fmt.Errorf("gorm: upsert ownership of %s: %w", game.ID, err)
			}
			return nil
		}
		err := tx.Where("user_id = ? AND board_game_id = ?", ownership.UserID, game.ID).
			Delete(&models.OwnedGame{}).Error
		if err != nil {
			return fmt.Errorf("gorm: delete ownership of %s: %w", game.ID, err)
		}
		return nil
	})
}

// DeleteGame removes the game together with every row that references it.
func (r *GameRepository) DeleteGame(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board_game_id = ?", id).Delete(&models.PlayState{}).Error; err != nil {
			return fmt.Errorf("gorm: delete play states of %s: %w", id, err)
		}
		if err := tx.Where("board_game_id = ?", id).Delete(&models.OwnedGame{}).Error; err != nil {
			return fmt.Errorf("gorm: delete ownerships of %s: %w", id, err)
		}
		matchIDs := tx.Model(&models.Match{}).Select("id").Where("board_game_id = ?", id)
		if err := tx.Where("match_id IN (?)", matchIDs).Delete(&models.MatchPlayer{}).Error; err != nil {
			return fmt.Errorf("gorm: delete match players of %s: %w", id, err)
		}
		if err := tx.Where("board_game_id = ?", id).Delete(&models.Match{}).Error; err != nil {
			return fmt.Errorf("gorm: delete matches of %s: %w", id, err)
		}

		res := tx.Delete(&models.BoardGame{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("gorm: delete board game %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
