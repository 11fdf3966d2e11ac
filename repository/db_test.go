package repository

import (
	"path/filepath"
	"testing"
	"time"

	"bodoge-manager/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a migrated sqlite file under t.TempDir with foreign keys
// enforced, opened the same way as production (TranslateError on).
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "bodoge.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func insertTestGame(t *testing.T, db *gorm.DB, name string) models.BoardGame {
	t.Helper()
	g := models.BoardGame{Name: name, MinPlayers: 2, MaxPlayers: 4, PlayTimeMinutes: 45, CreatedBy: "user-1"}
	require.NoError(t, NewGameRepository(db).InsertGame(t.Context(), &g, nil))
	return g
}

func insertTestMatch(t *testing.T, db *gorm.DB, gameID, createdBy string, date time.Time, players ...models.MatchPlayer) models.Match {
	t.Helper()
	m := models.Match{BoardGameID: gameID, Date: date, CreatedBy: createdBy, Players: players}
	require.NoError(t, NewMatchRepository(db).Create(t.Context(), &m))
	return m
}

func count(t *testing.T, db *gorm.DB, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func linked(userID string) *string { return &userID }
