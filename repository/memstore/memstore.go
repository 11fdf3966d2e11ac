// Package memstore is an in-memory implementation of every store the services
// depend on. It mirrors the repository semantics (sentinel errors, ordering,
// cascades) and is safe for concurrent use.
package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"bodoge-manager/models"
	"bodoge-manager/repository"

	"github.com/google/uuid"
)

type pair struct{ user, game string }

// Store holds all tables. Fail maps an operation name (e.g. "ListGames") to an
// error returned instead of running it.
type Store struct {
	mu sync.Mutex

	games      map[string]models.BoardGame
	states     map[pair]models.PlayState
	owned      map[pair]time.Time
	profiles   map[string]models.Profile
	friendship map[string]models.Friendship
	matches    map[string]models.Match

	clock func() time.Time
	seq   int

	Fail  map[string]error
	Calls map[string]int
}

func New() *Store {
	return &Store{
		games:      map[string]models.BoardGame{},
		states:     map[pair]models.PlayState{},
		owned:      map[pair]time.Time{},
		profiles:   map[string]models.Profile{},
		friendship: map[string]models.Friendship{},
		matches:    map[string]models.Match{},
		clock:      time.Now,
		Fail:       map[string]error{},
		Calls:      map[string]int{},
	}
}

// enter locks the store, records the call and returns the injected failure.
func (s *Store) enter(op string) error {
	s.mu.Lock()
	s.Calls[op]++
	return s.Fail[op]
}

// now returns strictly increasing times so ordering by timestamp is stable.
func (s *Store) now() time.Time {
	s.seq++
	return s.clock().Add(time.Duration(s.seq) * time.Millisecond)
}

// CallCount returns how many times op was invoked.
func (s *Store) CallCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[op]
}

// ---- catalog ----

func (s *Store) ListGames(ctx context.Context, ids []string) ([]models.BoardGame, error) {
	defer s.mu.Unlock()
	if err := s.enter("ListGames"); err != nil {
		return nil, err
	}
	out := []models.BoardGame{}
	for _, g := range s.games {
		if ids != nil && !slices.Contains(ids, g.ID) {
			continue
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetGame(ctx context.Context, id string) (*models.BoardGame, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetGame"); err != nil {
		return nil, err
	}
	g, ok := s.games[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (s *Store) InsertGame(ctx context.Context, game *models.BoardGame, owner *models.OwnedGame) error {
	defer s.mu.Unlock()
	if err := s.enter("InsertGame"); err != nil {
		return err
	}
	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	game.RefreshSlug()
	now := s.now()
	game.CreatedAt, game.UpdatedAt = now, now
	s.games[game.ID] = *game
	if owner != nil {
		owner.BoardGameID = game.ID
		s.owned[pair{owner.UserID, game.ID}] = now
	}
	return nil
}

func (s *Store) UpdateGame(ctx context.Context, game *models.BoardGame, ownership *repository.OwnershipChange) error {
	defer s.mu.Unlock()
	if err := s.enter("UpdateGame"); err != nil {
		return err
	}
	old, ok := s.games[game.ID]
	if !ok {
		return repository.ErrNotFound
	}
	game.RefreshSlug()
	game.CreatedAt, game.CreatedBy = old.CreatedAt, old.CreatedBy
	game.UpdatedAt = s.now()
	s.games[game.ID] = *game
	if ownership != nil {
		key := pair{ownership.UserID, game.ID}
		if ownership.Owned {
			if _, ok := s.owned[key]; !ok {
				s.owned[key] = game.UpdatedAt
			}
		} else {
			delete(s.owned, key)
		}
	}
	return nil
}

func (s *Store) DeleteGame(ctx context.Context, id string) error {
	defer s.mu.Unlock()
	if err := s.enter("DeleteGame"); err != nil {
		return err
	}
	if _, ok := s.games[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.games, id)
	for k := range s.states {
		if k.game == id {
			delete(s.states, k)
		}
	}
	for k := range s.owned {
		if k.game == id {
			delete(s.owned, k)
		}
	}
	for mid, m := range s.matches {
		if m.BoardGameID == id {
			delete(s.matches, mid)
		}
	}
	return nil
}

// ---- play states ----

func (s *Store) ListByGameIDs(ctx context.Context, gameIDs []string) ([]models.PlayState, error) {
	defer s.mu.Unlock()
	if err := s.enter("ListByGameIDs"); err != nil {
		return nil, err
	}
	out := []models.PlayState{}
	for k, st := range s.states {
		if slices.Contains(gameIDs, k.game) {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BoardGameID != out[j].BoardGameID {
			return out[i].BoardGameID < out[j].BoardGameID
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (s *Store) Get(ctx context.Context, userID, gameID string) (*models.PlayState, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetPlayState"); err != nil {
		return nil, err
	}
	st, ok := s.states[pair{userID, gameID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (s *Store) Upsert(ctx context.Context, state *models.PlayState) error {
	defer s.mu.Unlock()
	if err := s.enter("UpsertPlayState"); err != nil {
		return err
	}
	k := pair{state.UserID, state.BoardGameID}
	now := s.now()
	if old, ok := s.states[k]; ok {
		state.CreatedAt = old.CreatedAt
	} else {
		state.CreatedAt = now
	}
	state.UpdatedAt = now
	s.states[k] = *state
	return nil
}

// ---- ownership ----

// Owners exposes the ownership table under the OwnershipStore method names.
type Owners struct{ *Store }

func (s *Store) Ownership() Owners { return Owners{s} }

func (o Owners) ListByUser(ctx context.Context, userID string) ([]string, error) {
	defer o.mu.Unlock()
	if err := o.enter("ListOwnedByUser"); err != nil {
		return nil, err
	}
	out := []string{}
	for k := range o.owned {
		if k.user == userID {
			out = append(out, k.game)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (o Owners) ListOwners(ctx context.Context, gameID string) ([]string, error) {
	defer o.mu.Unlock()
	if err := o.enter("ListOwners"); err != nil {
		return nil, err
	}
	out := []string{}
	for k := range o.owned {
		if k.game == gameID {
			out = append(out, k.user)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (o Owners) Upsert(ctx context.Context, userID, gameID string) error {
	defer o.mu.Unlock()
	if err := o.enter("UpsertOwnership"); err != nil {
		return err
	}
	k := pair{userID, gameID}
	if _, ok := o.owned[k]; !ok {
		o.owned[k] = o.now()
	}
	return nil
}

func (o Owners) Delete(ctx context.Context, userID, gameID string) error {
	defer o.mu.Unlock()
	if err := o.enter("DeleteOwnership"); err != nil {
		return err
	}
	delete(o.owned, pair{userID, gameID})
	return nil
}

// ---- profiles ----

// Profiles exposes the profile table under the ProfileStore method names.
type Profiles struct{ *Store }

func (s *Store) Profiles() Profiles { return Profiles{s} }

func (p Profiles) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	defer p.mu.Unlock()
	if err := p.enter("GetProfile"); err != nil {
		return nil, err
	}
	pr, ok := p.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &pr, nil
}

func (p Profiles) GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	defer p.mu.Unlock()
	if err := p.enter("GetProfiles"); err != nil {
		return nil, err
	}
	out := []models.Profile{}
	for _, id := range ids {
		if pr, ok := p.profiles[id]; ok {
			out = append(out, pr)
		}
	}
	return out, nil
}

func (p Profiles) FindByTag(ctx context.Context, displayName, discriminator string) (*models.Profile, error) {
	defer p.mu.Unlock()
	if err := p.enter("FindByTag"); err != nil {
		return nil, err
	}
	for _, pr := range p.profiles {
		if pr.DisplayName == displayName && pr.Discriminator == discriminator {
			return &pr, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (p Profiles) List(ctx context.Context) ([]models.Profile, error) {
	defer p.mu.Unlock()
	if err := p.enter("ListProfiles"); err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(p.profiles))
	for _, pr := range p.profiles {
		out = append(out, pr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (p Profiles) Save(ctx context.Context, pr *models.Profile) error {
	defer p.mu.Unlock()
	if err := p.enter("SaveProfile"); err != nil {
		return err
	}
	for id, other := range p.profiles {
		if id != pr.ID && other.DisplayName == pr.DisplayName && other.Discriminator == pr.Discriminator {
			return repository.ErrDuplicateEntry
		}
	}
	now := p.now()
	if old, ok := p.profiles[pr.ID]; ok {
		pr.CreatedAt = old.CreatedAt
	} else {
		pr.CreatedAt = now
	}
	pr.UpdatedAt = now
	p.profiles[pr.ID] = *pr
	return nil
}

func (p Profiles) UpdateAvatar(ctx context.Context, id, url string) error {
	defer p.mu.Unlock()
	if err := p.enter("UpdateAvatar"); err != nil {
		return err
	}
	pr, ok := p.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	pr.AvatarURL = url
	p.profiles[id] = pr
	return nil
}

// ---- friendships ----

// Friends exposes the friendship table under the FriendshipStore method names.
type Friends struct{ *Store }

func (s *Store) Friends() Friends { return Friends{s} }

func (f Friends) Get(ctx context.Context, id string) (*models.Friendship, error) {
	defer f.mu.Unlock()
	if err := f.enter("GetFriendship"); err != nil {
		return nil, err
	}
	fr, ok := f.friendship[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &fr, nil
}

func (f Friends) FindBetween(ctx context.Context, a, b string) (*models.Friendship, error) {
	defer f.mu.Unlock()
	if err := f.enter("FindBetween"); err != nil {
		return nil, err
	}
	key := models.FriendshipPairKey(a, b)
	for _, fr := range f.friendship {
		if fr.PairKey == key {
			return &fr, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f Friends) Create(ctx context.Context, fr *models.Friendship) error {
	defer f.mu.Unlock()
	if err := f.enter("CreateFriendship"); err != nil {
		return err
	}
	if fr.ID == "" {
		fr.ID = uuid.NewString()
	}
	fr.PairKey = models.FriendshipPairKey(fr.SenderID, fr.ReceiverID)
	for _, other := range f.friendship {
		if other.PairKey == fr.PairKey {
			return repository.ErrDuplicateEntry
		}
	}
	if fr.Status == "" {
		fr.Status = models.FriendshipStatusPending
	}
	now := f.now()
	fr.CreatedAt, fr.UpdatedAt = now, now
	f.friendship[fr.ID] = *fr
	return nil
}

func (f Friends) UpdateStatus(ctx context.Context, id, status string) error {
	defer f.mu.Unlock()
	if err := f.enter("UpdateFriendshipStatus"); err != nil {
		return err
	}
	fr, ok := f.friendship[id]
	if !ok {
		return repository.ErrNotFound
	}
	fr.Status = status
	fr.UpdatedAt = f.now()
	f.friendship[id] = fr
	return nil
}

func (f Friends) ListForUser(ctx context.Context, userID string, acceptedOnly bool) ([]models.Friendship, error) {
	defer f.mu.Unlock()
	if err := f.enter("ListFriendships"); err != nil {
		return nil, err
	}
	out := []models.Friendship{}
	for _, fr := range f.friendship {
		if fr.SenderID != userID && fr.ReceiverID != userID {
			continue
		}
		if acceptedOnly && fr.Status != models.FriendshipStatusAccepted {
			continue
		}
		out = append(out, fr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---- matches ----

// Matches exposes the match tables under the MatchStore method names.
type Matches struct{ *Store }

func (s *Store) Matches() Matches { return Matches{s} }

func cloneMatch(m models.Match) models.Match {
	m.Players = slices.Clone(m.Players)
	return m
}

func (m Matches) Get(ctx context.Context, id string) (*models.Match, error) {
	defer m.mu.Unlock()
	if err := m.enter("GetMatch"); err != nil {
		return nil, err
	}
	match, ok := m.matches[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	match = cloneMatch(match)
	return &match, nil
}

func (m Matches) List(ctx context.Context, filter repository.MatchFilter) ([]models.Match, error) {
	defer m.mu.Unlock()
	if err := m.enter("ListMatches"); err != nil {
		return nil, err
	}
	out := []models.Match{}
	for _, match := range m.matches {
		if filter.BoardGameID != "" && match.BoardGameID != filter.BoardGameID {
			continue
		}
		if u := filter.InvolvingUserID; u != "" && match.CreatedBy != u && !slices.ContainsFunc(match.Players, func(p models.MatchPlayer) bool {
			return p.UserID != nil && *p.UserID == u
		}) {
			continue
		}
		out = append(out, cloneMatch(match))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m Matches) Create(ctx context.Context, match *models.Match) error {
	defer m.mu.Unlock()
	if err := m.enter("CreateMatch"); err != nil {
		return err
	}
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	now := m.now()
	match.CreatedAt, match.UpdatedAt = now, now
	m.assignPlayers(match)
	m.matches[match.ID] = cloneMatch(*match)
	return nil
}

func (m Matches) Update(ctx context.Context, match *models.Match) error {
	defer m.mu.Unlock()
	if err := m.enter("UpdateMatch"); err != nil {
		return err
	}
	old, ok := m.matches[match.ID]
	if !ok {
		return repository.ErrNotFound
	}
	match.CreatedAt, match.CreatedBy = old.CreatedAt, old.CreatedBy
	match.UpdatedAt = m.now()
	m.assignPlayers(match)
	m.matches[match.ID] = cloneMatch(*match)
	return nil
}

func (m Matches) Delete(ctx context.Context, id string) error {
	defer m.mu.Unlock()
	if err := m.enter("DeleteMatch"); err != nil {
		return err
	}
	if _, ok := m.matches[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.matches, id)
	return nil
}

func (m Matches) assignPlayers(match *models.Match) {
	for i := range match.Players {
		match.Players[i].ID = uuid.NewString()
		match.Players[i].MatchID = match.ID
		match.Players[i].Position = i
	}
}

// ---- sweep ----

// InjectOrphanPlayState adds a play state whose game does not exist, bypassing
// the cascade, so sweeps have something to collect.
func (s *Store) InjectOrphanPlayState(userID, gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[pair{userID, gameID}] = models.PlayState{UserID: userID, BoardGameID: gameID}
}

func (s *Store) SweepOrphans(ctx context.Context) (repository.SweepResult, error) {
	defer s.mu.Unlock()
	var out repository.SweepResult
	if err := s.enter("SweepOrphans"); err != nil {
		return out, err
	}
	for k := range s.states {
		if _, ok := s.games[k.game]; !ok {
			delete(s.states, k)
			out.PlayStates++
		}
	}
	for k := range s.owned {
		if _, ok := s.games[k.game]; !ok {
			delete(s.owned, k)
			out.Ownerships++
		}
	}
	for id, match := range s.matches {
		if _, ok := s.games[match.BoardGameID]; !ok {
			delete(s.matches, id)
			out.Matches++
			out.MatchPlayers += int64(len(match.Players))
		}
	}
	return out, nil
}

// ---- seeding helpers for tests ----

// PutGame stores g as-is, keeping a caller-provided CreatedAt.
func (s *Store) PutGame(g models.BoardGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.now()
	}
	s.games[g.ID] = g
}

// PutState stores st as-is, keeping a caller-provided UpdatedAt.
func (s *Store) PutState(st models.PlayState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = s.now()
	}
	s.states[pair{st.UserID, st.BoardGameID}] = st
}

func (s *Store) PutOwned(userID, gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owned[pair{userID, gameID}] = s.now()
}

func (s *Store) PutProfile(p models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.FillDefaultVisibility()
	s.profiles[p.ID] = p
}

// Befriend stores an accepted friendship between a and b.
func (s *Store) Befriend(a, b string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := s.now()
	s.friendship[id] = models.Friendship{
		ID: id, SenderID: a, ReceiverID: b,
		PairKey:    models.FriendshipPairKey(a, b),
		Status:     models.FriendshipStatusAccepted,
		Timestamps: models.Timestamps{CreatedAt: now, UpdatedAt: now},
	}
	return id
}

// Owns reports whether userID has an ownership row for gameID.
func (s *Store) Owns(userID, gameID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.owned[pair{userID, gameID}]
	return ok
}

// HasGame reports whether the catalog still holds id.
func (s *Store) HasGame(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.games[id]
	return ok
}
