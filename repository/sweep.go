package repository

import (
	"context"
	"fmt"

	"bodoge-manager/models"

	"gorm.io/gorm"
)

// SweepResult counts rows removed by one orphan sweep.
type SweepResult struct {
	PlayStates   int64
	Ownerships   int64
	Matches      int64
	MatchPlayers int64
}

func (s SweepResult) Total() int64 {
	return s.PlayStates + s.Ownerships + s.Matches + s.MatchPlayers
}

// Sweeper removes child rows whose parent no longer exists.
type Sweeper struct {
	db *gorm.DB
}

func NewSweeper(db *gorm.DB) *Sweeper {
	if db == nil {
		panic("database connection cannot be nil for Sweeper")
	}
	return &Sweeper{db: db}
}

// SweepOrphans runs in one transaction. Players of orphaned matches go first
// because match_players references matches.
func (s *Sweeper) SweepOrphans(ctx context.Context) (SweepResult, error) {
	var out SweepResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("board_game_id NOT IN (?)", tx.Model(&models.BoardGame{}).Select("id")).Delete(&models.PlayState{})
		if res.Error != nil {
			return fmt.Errorf("gorm: sweep play states: %w", res.Error)
		}
		out.PlayStates = res.RowsAffected

		res = tx.Where("board_game_id NOT IN (?)", tx.Model(&models.BoardGame{}).Select("id")).Delete(&models.OwnedGame{})
		if res.Error != nil {
			return fmt.Errorf("gorm: sweep ownerships: %w", res.Error)
		}
		out.Ownerships = res.RowsAffected

		orphaned := tx.Model(&models.Match{}).Select("id").
			Where("board_game_id NOT IN (?)", tx.Model(&models.BoardGame{}).Select("id"))
		res = tx.Where("match_id IN (?) OR match_id NOT IN (?)", orphaned, tx.Model(&models.Match{}).Select("id")).
			Delete(&models.MatchPlayer{})
		if res.Error != nil {
			return fmt.Errorf("gorm: sweep match players: %w", res.Error)
		}
		out.MatchPlayers = res.RowsAffected

		res = tx.Where("board_game_id NOT IN (?)", tx.Model(&models.BoardGame{}).Select("id")).Delete(&models.Match{})
		if res.Error != nil {
			return fmt.Errorf("gorm: sweep matches: %w", res.Error)
		}
		out.Matches = res.RowsAffected
		return nil
	})
	return out, err
}
