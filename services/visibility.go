package services

import (
	"context"
	"errors"

	"bodoge-manager/models"
	"bodoge-manager/repository"
)

// CanView is the single decision point for profile-scoped sections seen by
// someone other than their owner.
func CanView(v models.Visibility, isFriend bool) bool {
	switch v {
	case models.VisibilityPublic, "":
		return true
	case models.VisibilityFriends:
		return isFriend
	}
	return false
}

// areFriends reports whether an accepted friendship links a and b.
func areFriends(ctx context.Context, friends FriendshipStore, a, b string) (bool, error) {
	if a == "" || b == "" || a == b {
		return false, nil
	}
	f, err := friends.FindBetween(ctx, a, b)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return f.Status == models.FriendshipStatusAccepted, nil
}

// Section selects one of the four visibility settings.
type Section int

const (
	SectionGames Section = iota
	SectionMatches
	SectionFriends
	SectionUserList
)

func (s Section) of(p *models.Profile) models.Visibility {
	switch s {
	case SectionGames:
		return p.VisibilityGames
	case SectionMatches:
		return p.VisibilityMatches
	case SectionFriends:
		return p.VisibilityFriends
	}
	return p.VisibilityUserList
}

// Gate decides whether viewer may see section of subject's profile. The
// subject always sees their own data. A missing profile counts as public.
type Gate struct {
	Profiles ProfileStore
	Friends  FriendshipStore
}

func (g Gate) Allow(ctx context.Context, viewer, subject string, section Section) (bool, error) {
	if viewer != "" && viewer == subject {
		return true, nil
	}
	p, err := g.Profiles.GetByID(ctx, subject)
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	v := section.of(p)
	if v != models.VisibilityFriends {
		return CanView(v, false), nil
	}
	friend, err := areFriends(ctx, g.Friends, viewer, subject)
	if err != nil {
		return false, err
	}
	return CanView(v, friend), nil
}
