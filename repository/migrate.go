package repository

import (
	"bodoge-manager/models"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the repositories use.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.BoardGame{},
		&models.PlayState{},
		&models.OwnedGame{},
		&models.Match{},
		&models.MatchPlayer{},
		&models.Profile{},
		&models.Friendship{},
	)
}
