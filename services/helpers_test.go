package services

import (
	"context"

	"bodoge-manager/models"
	"bodoge-manager/repository"
	"bodoge-manager/repository/memstore"

	"github.com/stretchr/testify/mock"
)

func memStores(s *memstore.Store) GameStores {
	return GameStores{
		Catalog:    s,
		PlayStates: s,
		Ownership:  s.Ownership(),
		Profiles:   s.Profiles(),
	}
}

func game(id, name string, min, max, minutes int, tags ...string) models.BoardGame {
	return models.BoardGame{ID: id, Name: name, MinPlayers: min, MaxPlayers: max, PlayTimeMinutes: minutes, Tags: tags}
}

func ptr[T any](v T) *T { return &v }

// mockCatalog records catalog calls so tests can assert on short-circuits.
type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) ListGames(ctx context.Context, ids []string) ([]models.BoardGame, error) {
	args := m.Called(ctx, ids)
	games, _ := args.Get(0).([]models.BoardGame)
	return games, args.Error(1)
}

func (m *mockCatalog) GetGame(ctx context.Context, id string) (*models.BoardGame, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*models.BoardGame)
	return g, args.Error(1)
}

func (m *mockCatalog) InsertGame(ctx context.Context, g *models.BoardGame, owner *models.OwnedGame) error {
	return m.Called(ctx, g, owner).Error(0)
}

func (m *mockCatalog) UpdateGame(ctx context.Context, g *models.BoardGame, ownership *repository.OwnershipChange) error {
	return m.Called(ctx, g, ownership).Error(0)
}

func (m *mockCatalog) DeleteGame(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
