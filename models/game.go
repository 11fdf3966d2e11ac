// models/game.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BoardGame is a shared catalog row. Tags keep insertion order for display.
type BoardGame struct {
	ID              string `json:"id" gorm:"primaryKey;type:uuid"`
	Name            string `json:"name" gorm:"not null;index"`
	Slug            string `json:"slug" gorm:"index"`
	MinPlayers      int    `json:"min" gorm:"column:min_players;not null;check:min_players >= 1"`
	MaxPlayers      int    `json:"max" gorm:"column:max_players;not null"`
	PlayTimeMinutes int    `json:"time" gorm:"column:play_time_minutes;not null;default:0"`
	MinPlayTime     *int   `json:"min_play_time,omitempty" gorm:"column:min_playtime"`
	MaxPlayTime     *int   `json:"max_play_time,omitempty" gorm:"column:max_playtime"`

	Tags datatypes.JSONSlice[string] `json:"tags" gorm:"type:jsonb"`

	// 📚 Metadata, usually copied from an external catalog
	BggID         *string                     `json:"bgg_id,omitempty" gorm:"index"`
	ImageURL      string                      `json:"image_url,omitempty"`
	ThumbnailURL  string                      `json:"thumbnail_url,omitempty"`
	Description   string                      `json:"description,omitempty" gorm:"type:text"`
	YearPublished *int                        `json:"year_published,omitempty"`
	Designers     datatypes.JSONSlice[string] `json:"designers,omitempty" gorm:"type:jsonb"`
	Artists       datatypes.JSONSlice[string] `json:"artists,omitempty" gorm:"type:jsonb"`
	Publishers    datatypes.JSONSlice[string] `json:"publishers,omitempty" gorm:"type:jsonb"`
	Mechanics     datatypes.JSONSlice[string] `json:"mechanics,omitempty" gorm:"type:jsonb"`
	Categories    datatypes.JSONSlice[string] `json:"categories,omitempty" gorm:"type:jsonb"`
	AverageRating *float64                    `json:"average_rating,omitempty"`
	Complexity    *float64                    `json:"complexity,omitempty"`

	CreatedBy string `json:"created_by" gorm:"index"`

	Timestamps
}

func (g *BoardGame) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.RefreshSlug()
	return nil
}

// RefreshSlug derives Slug from Name.
func (g *BoardGame) RefreshSlug() {
	g.Slug = slug.Make(g.Name)
}

// HasTag reports whether the game carries tag (exact match).
func (g *BoardGame) HasTag(tag string) bool {
	for _, t := range g.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PlayState is one user's personal record for one game.
type PlayState struct {
	UserID      string    `json:"user_id" gorm:"primaryKey;type:uuid"`
	BoardGameID string    `json:"board_game_id" gorm:"primaryKey;type:uuid;index"`
	Played      bool      `json:"played" gorm:"not null;default:false"`
	Evaluation  int       `json:"evaluation" gorm:"not null;default:0;check:evaluation >= 0 and evaluation <= 5"`
	Comment     *string   `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PlayState) TableName() string {
	return "user_board_game_states"
}

// OwnedGame marks that a user has a physical copy. Presence-only.
type OwnedGame struct {
	UserID      string    `json:"user_id" gorm:"primaryKey;type:uuid"`
	BoardGameID string    `json:"board_game_id" gorm:"primaryKey;type:uuid;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
