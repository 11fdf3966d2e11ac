package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"mime/multipart"
	"regexp"
	"strings"

	"bodoge-manager/models"
	"bodoge-manager/repository"

	"github.com/sahilm/fuzzy"
	"github.com/sirupsen/logrus"
)

const discriminatorAttempts = 5

var discriminatorPattern = regexp.MustCompile(`^[0-9]{4}$`)

type ProfileService struct {
	Profiles ProfileStore
	Friends  FriendshipStore
	Uploader ImageUploader
	// IntN returns a value in [0,n); nil uses math/rand.
	IntN func(n int) int
}

func NewProfileService(profiles ProfileStore, friends FriendshipStore, up ImageUploader) *ProfileService {
	return &ProfileService{Profiles: profiles, Friends: friends, Uploader: up}
}

// ProfileSummary is the public face of a profile inside other views.
type ProfileSummary struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	Discriminator string `json:"discriminator"`
	Tag           string `json:"tag"`
	AvatarURL     string `json:"avatar_url,omitempty"`
}

func summarize(p *models.Profile) ProfileSummary {
	return ProfileSummary{
		ID:            p.ID,
		DisplayName:   p.DisplayName,
		Discriminator: p.Discriminator,
		Tag:           p.Tag(),
		AvatarURL:     p.AvatarURL,
	}
}

// ProfileView is a profile with the viewer's relation to it.
type ProfileView struct {
	models.Profile
	IsMe           bool `json:"is_me"`
	IsFriend       bool `json:"is_friend"`
	CanViewGames   bool `json:"can_view_games"`
	CanViewMatches bool `json:"can_view_matches"`
	CanViewFriends bool `json:"can_view_friends"`
}

type profileSource []models.Profile

func (p profileSource) String(i int) string { return p[i].Tag() }
func (p profileSource) Len() int            { return len(p) }

// ListProfiles returns the profiles whose user-list visibility admits viewer,
// by display name, or best fuzzy match first when q is set.
func (s *ProfileService) ListProfiles(ctx context.Context, viewer, q string) ([]ProfileSummary, error) {
	all, err := s.Profiles.List(ctx)
	if err != nil {
		return nil, storeFailure("list profiles", err)
	}
	friends, err := s.friendSet(ctx, viewer)
	if err != nil {
		return nil, storeFailure("list friends", err)
	}

	visible := make(profileSource, 0, len(all))
	for _, p := range all {
		if p.DisplayName == "" {
			continue
		}
		_, isFriend := friends[p.ID]
		if p.ID == viewer || CanView(p.VisibilityUserList, isFriend) {
			visible = append(visible, p)
		}
	}

	out := []ProfileSummary{}
	if q = strings.TrimSpace(q); q == "" {
		for i := range visible {
			out = append(out, summarize(&visible[i]))
		}
		return out, nil
	}
	for _, m := range fuzzy.FindFrom(q, visible) {
		out = append(out, summarize(&visible[m.Index]))
	}
	return out, nil
}

func (s *ProfileService) friendSet(ctx context.Context, viewer string) (map[string]struct{}, error) {
	set := map[string]struct{}{}
	if viewer == "" {
		return set, nil
	}
	rows, err := s.Friends.ListForUser(ctx, viewer, true)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		set[rows[i].Other(viewer)] = struct{}{}
	}
	return set, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, viewer, id string) (*ProfileView, error) {
	p, err := s.Profiles.GetByID(ctx, id)
	if err != nil {
		return nil, fromStore("get profile", "profile", err)
	}
	v := &ProfileView{Profile: *p, IsMe: viewer != "" && viewer == id}
	if !v.IsMe {
		if v.IsFriend, err = areFriends(ctx, s.Friends, viewer, id); err != nil {
			return nil, storeFailure("check friendship", err)
		}
	}
	can := func(vis models.Visibility) bool { return v.IsMe || CanView(vis, v.IsFriend) }
	v.CanViewGames = can(p.VisibilityGames)
	v.CanViewMatches = can(p.VisibilityMatches)
	v.CanViewFriends = can(p.VisibilityFriends)
	return v, nil
}

// Me returns the viewer's own profile, NotFound until one is saved.
func (s *ProfileService) Me(ctx context.Context, viewer string) (*models.Profile, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	p, err := s.Profiles.GetByID(ctx, viewer)
	if err != nil {
		return nil, fromStore("get profile", "profile", err)
	}
	return p, nil
}

type ProfileInput struct {
	DisplayName        string             `json:"display_name"`
	Discriminator      *string            `json:"discriminator"`
	Bio                string             `json:"bio"`
	Username           string             `json:"username"`
	VisibilityGames    *models.Visibility `json:"visibility_games"`
	VisibilityMatches  *models.Visibility `json:"visibility_matches"`
	VisibilityFriends  *models.Visibility `json:"visibility_friends"`
	VisibilityUserList *models.Visibility `json:"visibility_user_list"`
}

func validDiscriminator(d string) bool {
	return discriminatorPattern.MatchString(d) && d != "0000"
}

func (in *ProfileInput) Validate() error {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.DisplayName == "" {
		return invalid("display name is required")
	}
	if strings.Contains(in.DisplayName, "#") {
		return invalid("display name must not contain #")
	}
	if len([]rune(in.DisplayName)) > 32 {
		return invalid("display name is too long (max 32)")
	}
	if in.Discriminator != nil && !validDiscriminator(*in.Discriminator) {
		return invalid("discriminator must be 4 digits between 0001 and 9999")
	}
	for _, v := range []*models.Visibility{in.VisibilityGames, in.VisibilityMatches, in.VisibilityFriends, in.VisibilityUserList} {
		if v != nil && !v.Valid() {
			return invalid("visibility must be public, friends or private")
		}
	}
	return nil
}

// UpsertMyProfile creates or edits the viewer's profile. Without an explicit
// discriminator the current one is kept while the name is unchanged, and a
// fresh one is generated otherwise.
func (s *ProfileService) UpsertMyProfile(ctx context.Context, viewer string, in ProfileInput) (*models.Profile, error) {
	if err := requireViewer(viewer); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p, err := s.Profiles.GetByID(ctx, viewer)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		p = &models.Profile{ID: viewer}
	case err != nil:
		return nil, storeFailure("get profile", err)
	}

	switch {
	case in.Discriminator != nil:
		p.Discriminator = *in.Discriminator
	case p.Discriminator != "" && p.DisplayName == in.DisplayName:
		// keep
	default:
		d, err := s.GenerateDiscriminator(ctx, in.DisplayName)
		if err != nil {
			return nil, err
		}
		p.Discriminator = d
	}
	p.DisplayName = in.DisplayName
	p.Bio = strings.TrimSpace(in.Bio)
	if in.Username != "" {
		p.Username = strings.TrimSpace(in.Username)
	}
	for dst, src := range map[*models.Visibility]*models.Visibility{
		&p.VisibilityGames:    in.VisibilityGames,
		&p.VisibilityMatches:  in.VisibilityMatches,
		&p.VisibilityFriends:  in.VisibilityFriends,
		&p.VisibilityUserList: in.VisibilityUserList,
	} {
		if src != nil {
			*dst = *src
		}
	}
	p.FillDefaultVisibility()

	if err := s.Profiles.Save(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, conflict(p.Tag() + " is already taken")
		}
		return nil, storeFailure("save profile", err)
	}
	logrus.WithField("user_id", viewer).Info("[PROFILES] profile saved")
	return p, nil
}

// GenerateDiscriminator tries a few random values in 0001-9999 that are not
// yet taken for displayName.
func (s *ProfileService) GenerateDiscriminator(ctx context.Context, displayName string) (string, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return "", invalid("display name is required")
	}
	intN := s.IntN
	if intN == nil {
		intN = rand.IntN
	}
	for range discriminatorAttempts {
		d := fmt.Sprintf("%04d", intN(9999)+1)
		_, err := s.Profiles.FindByTag(ctx, displayName, d)
		if errors.Is(err, repository.ErrNotFound) {
			return d, nil
		}
		if err != nil {
			return "", storeFailure("find profile by tag", err)
		}
	}
	return "", conflict("could not find a free discriminator, try another name")
}

// UploadAvatar stores the image and points the viewer's profile at it.
func (s *ProfileService) UploadAvatar(ctx context.Context, viewer string, fh *multipart.FileHeader) (string, error) {
	if err := requireViewer(viewer); err != nil {
		return "", err
	}
	if _, err := s.Profiles.GetByID(ctx, viewer); err != nil {
		return "", fromStore("get profile", "profile", err)
	}
	url, err := uploadImage(ctx, s.Uploader, fh, "avatars/"+viewer)
	if err != nil {
		return "", err
	}
	if err := s.Profiles.UpdateAvatar(ctx, viewer, url); err != nil {
		return "", fromStore("update avatar", "profile", err)
	}
	return url, nil
}
