package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visibility controls who can see one section of a profile.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityPrivate:
		return true
	}
	return false
}

// Profile is keyed by the auth provider's user id.
type Profile struct {
	ID            string `json:"id" gorm:"primaryKey;type:uuid"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name" gorm:"not null;uniqueIndex:idx_profiles_name_disc"`
	Discriminator string `json:"discriminator" gorm:"type:varchar(4);uniqueIndex:idx_profiles_name_disc"`
	Bio           string `json:"bio" gorm:"type:text"`
	AvatarURL     string `json:"avatar_url,omitempty"`

	VisibilityGames    Visibility `json:"visibility_games" gorm:"type:varchar(16);not null;default:'public'"`
	VisibilityMatches  Visibility `json:"visibility_matches" gorm:"type:varchar(16);not null;default:'public'"`
	VisibilityFriends  Visibility `json:"visibility_friends" gorm:"type:varchar(16);not null;default:'public'"`
	VisibilityUserList Visibility `json:"visibility_user_list" gorm:"type:varchar(16);not null;default:'public'"`

	Timestamps
}

// Tag renders "name#1234", or just the name when no discriminator is set.
func (p *Profile) Tag() string {
	if p.Discriminator == "" {
		return p.DisplayName
	}
	return fmt.Sprintf("%s#%s", p.DisplayName, p.Discriminator)
}

// FillDefaultVisibility sets any empty visibility field to public.
func (p *Profile) FillDefaultVisibility() {
	for _, v := range []*Visibility{&p.VisibilityGames, &p.VisibilityMatches, &p.VisibilityFriends, &p.VisibilityUserList} {
		if *v == "" {
			*v = VisibilityPublic
		}
	}
}

const (
	FriendshipStatusPending  = "pending"
	FriendshipStatusAccepted = "accepted"
	FriendshipStatusRejected = "rejected"
)

// Friendship is a request from SenderID to ReceiverID. PairKey makes the
// unordered pair unique.
type Friendship struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid"`
	SenderID   string `json:"sender_id" gorm:"type:uuid;index;not null"`
	ReceiverID string `json:"receiver_id" gorm:"type:uuid;index;not null"`
	PairKey    string `json:"-" gorm:"uniqueIndex;not null"`
	Status     string `json:"status" gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','accepted','rejected')"`

	Timestamps
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.PairKey = FriendshipPairKey(f.SenderID, f.ReceiverID)
	return nil
}

// FriendshipPairKey is the same for (a, b) and (b, a).
func FriendshipPairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}

// Other returns the id on the opposite side of the friendship from userID.
func (f *Friendship) Other(userID string) string {
	if f.SenderID == userID {
		return f.ReceiverID
	}
	return f.SenderID
}
