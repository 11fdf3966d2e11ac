package services

import (
	"context"
	"errors"
	"strings"

	"bodoge-manager/models"
	"bodoge-manager/repository"

	"github.com/sirupsen/logrus"
)

type FriendService struct {
	Profiles ProfileStore
	Friends  FriendshipStore
	Gate     Gate
}

func NewFriendService(profiles ProfileStore, friends FriendshipStore) *FriendService {
	return &FriendService{
		Profiles: profiles,
		Friends:  friends,
		Gate:     Gate{Profiles: profiles, Friends: friends},
	}
}

// FriendshipView is a friendship from the viewer's side.
type FriendshipView struct {
	models.Friendship
	Direction string          `json:"direction"` // "sent" or "received"
	Other     *ProfileSummary `json:"other"`
}

// ParseTag splits "name#1234".
func ParseTag(tag string) (name, disc string, err error) {
	i := strings.LastIndex(tag, "#")
	if i < 0 {
		return "", "", invalid("use the name#1234 format")
	}
	name, disc = strings.TrimSpace(tag[:i]), strings.TrimSpace(tag[i+1:])
	if name == "" || !validDiscriminator(disc) {
		return "", "", invalid("use the name#1234 format")
	}
	return name, disc, nil
}

func (s *FriendService) SendFriendRequest(ctx context.Context, viewer, tag string) (*models.Friendship, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	name, disc, err := ParseTag(tag)
	if err != nil {
		return nil, err
	}
	target, err := s.Profiles.FindByTag(ctx, name, disc)
	if err != nil {
		return nil, fromStore("find profile by tag", "user", err)
	}
	if target.ID == viewer {
		return nil, invalid("you cannot send a friend request to yourself")
	}
	_, err = s.Friends.FindBetween(ctx, viewer, target.ID)
	switch {
	case err == nil:
		return nil, conflict("a friend request already exists")
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storeFailure("find friendship", err)
	}

	f := &models.Friendship{SenderID: viewer, ReceiverID: target.ID, Status: models.FriendshipStatusPending}
	if err := s.Friends.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, conflict("a friend request already exists")
		}
		return nil, storeFailure("create friendship", err)
	}
	logrus.WithField("user_id", viewer).Infof("[FRIENDS] request sent to %s", target.ID)
	return f, nil
}

// ListFriendships returns every request the viewer sent or received.
func (s *FriendService) ListFriendships(ctx context.Context, viewer string) ([]FriendshipView, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	rows, err := s.Friends.ListForUser(ctx, viewer, false)
	if err != nil {
		return nil, storeFailure("list friendships", err)
	}
	return s.annotate(ctx, viewer, rows)
}

func (s *FriendService) annotate(ctx context.Context, viewer string, rows []models.Friendship) ([]FriendshipView, error) {
	out := make([]FriendshipView, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].Other(viewer)
	}
	profiles, err := s.Profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeFailure("list friend profiles", err)
	}
	byID := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = &profiles[i]
	}
	for _, f := range rows {
		v := FriendshipView{Friendship: f, Direction: "received"}
		if f.SenderID == viewer {
			v.Direction = "sent"
		}
		if p, ok := byID[f.Other(viewer)]; ok {
			sum := summarize(p)
			v.Other = &sum
		}
		out = append(out, v)
	}
	return out, nil
}

// RespondToFriendRequest lets the receiver accept or reject a pending request.
func (s *FriendService) RespondToFriendRequest(ctx context.Context, viewer, id, status string) (*models.Friendship, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if status != models.FriendshipStatusAccepted && status != models.FriendshipStatusRejected {
		return nil, invalid("status must be accepted or rejected")
	}
	f, err := s.Friends.Get(ctx, id)
	if err != nil {
		return nil, fromStore("get friendship", "friend request", err)
	}
	if f.ReceiverID != viewer {
		return nil, &Error{HTTP: 403, Code: "Forbidden", Message: "only the receiver can answer this request"}
	}
	if f.Status != models.FriendshipStatusPending {
		return nil, conflict("this request was already answered")
	}
	if err := s.Friends.UpdateStatus(ctx, id, status); err != nil {
		return nil, fromStore("update friendship", "friend request", err)
	}
	f.Status = status
	return f, nil
}

// ListFriendsOf returns subject's accepted friends when viewer may see them.
func (s *FriendService) ListFriendsOf(ctx context.Context, viewer, subject string) ([]ProfileSummary, error) {
	ok, err := s.Gate.Allow(ctx, viewer, subject, SectionFriends)
	if err != nil {
		return nil, storeFailure("check friends visibility", err)
	}
	if !ok {
		return nil, &Error{HTTP: 403, Code: "Forbidden", Message: "this user's friends are not visible to you"}
	}
	rows, err := s.Friends.ListForUser(ctx, subject, true)
	if err != nil {
		return nil, storeFailure("list friendships", err)
	}
	views, err := s.annotate(ctx, subject, rows)
	if err != nil {
		return nil, err
	}
	out := make([]ProfileSummary, 0, len(views))
	for _, v := range views {
		if v.Other != nil {
			out = append(out, *v.Other)
		}
	}
	return out, nil
}
