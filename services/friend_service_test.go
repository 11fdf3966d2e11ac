package services

import (
	"context"
	"testing"

	"bodoge-manager/models"
	"bodoge-manager/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func friendFixture() (*memstore.Store, *FriendService) {
	s := memstore.New()
	s.PutProfile(models.Profile{ID: "u1", DisplayName: "Alice", Discriminator: "0001"})
	s.PutProfile(models.Profile{ID: "u2", DisplayName: "Bob", Discriminator: "0002"})
	s.PutProfile(models.Profile{ID: "u3", DisplayName: "Carol", Discriminator: "0003", VisibilityFriends: models.VisibilityFriends})
	return s, NewFriendService(s.Profiles(), s.Friends())
}

func TestParseTag(t *testing.T) {
	name, disc, err := ParseTag("Bob#0002")
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)
	assert.Equal(t, "0002", disc)

	name, _, err = ParseTag("a#b#1234")
	require.NoError(t, err)
	assert.Equal(t, "a#b", name)

	for _, bad := range []string{"Bob", "#1234", "Bob#12", "Bob#0000", "Bob#abcd"} {
		_, _, err := ParseTag(bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

func TestFriendRequestFlow(t *testing.T) {
	_, svc := friendFixture()
	ctx := context.Background()

	f, err := svc.SendFriendRequest(ctx, "u1", "Bob#0002")
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusPending, f.Status)

	// the pair is unique in either direction
	_, err = svc.SendFriendRequest(ctx, "u1", "Bob#0002")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.SendFriendRequest(ctx, "u2", "Alice#0001")
	assert.ErrorIs(t, err, ErrConflict)

	list, err := svc.ListFriendships(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "received", list[0].Direction)
	require.NotNil(t, list[0].Other)
	assert.Equal(t, "Alice#0001", list[0].Other.Tag)

	_, err = svc.RespondToFriendRequest(ctx, "u1", f.ID, models.FriendshipStatusAccepted)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.RespondToFriendRequest(ctx, "u2", f.ID, "maybe")
	assert.ErrorIs(t, err, ErrValidation)

	f, err = svc.RespondToFriendRequest(ctx, "u2", f.ID, models.FriendshipStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipStatusAccepted, f.Status)

	_, err = svc.RespondToFriendRequest(ctx, "u2", f.ID, models.FriendshipStatusRejected)
	assert.ErrorIs(t, err, ErrConflict)

	friends, err := svc.ListFriendsOf(ctx, "", "u1")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "u2", friends[0].ID)
}

func TestSendFriendRequestRejects(t *testing.T) {
	s, svc := friendFixture()
	ctx := context.Background()

	_, err := svc.SendFriendRequest(ctx, "u1", "Alice#0001")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SendFriendRequest(ctx, "u1", "Dave#0004")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SendFriendRequest(ctx, "u1", "Bob")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SendFriendRequest(ctx, "", "Bob#0002")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Equal(t, 0, s.CallCount("CreateFriendship"))
}

func TestListFriendsOfVisibility(t *testing.T) {
	s, svc := friendFixture()
	s.Befriend("u3", "u1")
	ctx := context.Background()

	_, err := svc.ListFriendsOf(ctx, "u2", "u3")
	assert.ErrorIs(t, err, ErrForbidden)

	friends, err := svc.ListFriendsOf(ctx, "u1", "u3")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "Alice#0001", friends[0].Tag)
}
