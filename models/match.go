package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Match records one play session of a board game.
type Match struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	BoardGameID string    `json:"board_game_id" gorm:"type:uuid;index;not null"`
	Date        time.Time `json:"date" gorm:"not null;index"`
	Location    *string   `json:"location,omitempty"`
	Note        *string   `json:"note,omitempty" gorm:"type:text"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedBy   string    `json:"created_by" gorm:"type:uuid;index;not null"`

	// Players are fully replaced on every edit.
	Players []MatchPlayer `json:"players" gorm:"foreignKey:MatchID"`

	Timestamps
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// MatchPlayer is one participant. PlayerName is free text so guests without
// accounts can be recorded; UserID links a registered user when known.
type MatchPlayer struct {
	ID         string  `json:"id" gorm:"primaryKey;type:uuid"`
	MatchID    string  `json:"match_id" gorm:"type:uuid;index;not null"`
	Position   int     `json:"position" gorm:"not null;default:0"`
	UserID     *string `json:"user_id,omitempty" gorm:"type:uuid;index"`
	PlayerName string  `json:"player_name" gorm:"not null"`
	Score      *string `json:"score,omitempty"`
	Rank       *int    `json:"rank,omitempty"`
	IsWinner   bool    `json:"is_winner" gorm:"not null;default:false"`
	Role       *string `json:"role,omitempty"`
}

func (p *MatchPlayer) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
