package services

import (
	"context"

	"bodoge-manager/models"
	"bodoge-manager/repository"
)

// CatalogStore holds the shared board-game rows. A nil ids slice lists every
// row; a non-nil slice restricts the result to those ids.
type CatalogStore interface {
	ListGames(ctx context.Context, ids []string) ([]models.BoardGame, error)
	GetGame(ctx context.Context, id string) (*models.BoardGame, error)
	InsertGame(ctx context.Context, game *models.BoardGame, owner *models.OwnedGame) error
	UpdateGame(ctx context.Context, game *models.BoardGame, ownership *repository.OwnershipChange) error
	DeleteGame(ctx context.Context, id string) error
}

type PlayStateStore interface {
	ListByGameIDs(ctx context.Context, gameIDs []string) ([]models.PlayState, error)
	Get(ctx context.Context, userID, gameID string) (*models.PlayState, error)
	Upsert(ctx context.Context, state *models.PlayState) error
}

type OwnershipStore interface {
	ListByUser(ctx context.Context, userID string) ([]string, error)
	ListOwners(ctx context.Context, gameID string) ([]string, error)
	Upsert(ctx context.Context, userID, gameID string) error
	Delete(ctx context.Context, userID, gameID string) error
}

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	FindByTag(ctx context.Context, displayName, discriminator string) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Save(ctx context.Context, p *models.Profile) error
	UpdateAvatar(ctx context.Context, id, url string) error
}

type FriendshipStore interface {
	Get(ctx context.Context, id string) (*models.Friendship, error)
	FindBetween(ctx context.Context, a, b string) (*models.Friendship, error)
	Create(ctx context.Context, f *models.Friendship) error
	UpdateStatus(ctx context.Context, id, status string) error
	ListForUser(ctx context.Context, userID string, acceptedOnly bool) ([]models.Friendship, error)
}

type MatchStore interface {
	Get(ctx context.Context, id string) (*models.Match, error)
	List(ctx context.Context, filter repository.MatchFilter) ([]models.Match, error)
	Create(ctx context.Context, m *models.Match) error
	Update(ctx context.Context, m *models.Match) error
	Delete(ctx context.Context, id string) error
}

type SweepStore interface {
	SweepOrphans(ctx context.Context) (repository.SweepResult, error)
}

// GameStores is the set of stores the game views read from.
type GameStores struct {
	Catalog    CatalogStore
	PlayStates PlayStateStore
	Ownership  OwnershipStore
	Profiles   ProfileStore
}
