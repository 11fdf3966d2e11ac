package repository

import (
	"context"
	"fmt"

	"bodoge-manager/models"

	"gorm.io/gorm"
)

// FriendshipRepository stores friend requests and accepted friendships.
type FriendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) *FriendshipRepository {
	if db == nil {
		panic("database connection cannot be nil for FriendshipRepository")
	}
	return &FriendshipRepository{db: db}
}

func (r *FriendshipRepository) Get(ctx context.Context, id string) (*models.Friendship, error) {
	var f models.Friendship
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("gorm: get friendship %s: %w", id, err)
	}
	return &f, nil
}

// FindBetween returns the row for the unordered pair {a, b}.
func (r *FriendshipRepository) FindBetween(ctx context.Context, a, b string) (*models.Friendship, error) {
	var f models.Friendship
	err := r.db.WithContext(ctx).
		Where("pair_key = ?", models.FriendshipPairKey(a, b)).
		First(&f).Error
	if err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("gorm: find friendship between %s and %s: %w", a, b, err)
	}
	return &f, nil
}

func (r *FriendshipRepository) Create(ctx context.Context, f *models.Friendship) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		if err = translate(err); err == ErrDuplicateEntry {
			return err
		}
		return fmt.Errorf("gorm: create friendship: %w", err)
	}
	return nil
}

func (r *FriendshipRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Friendship{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("gorm: update friendship %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForUser returns rows where userID is either side, newest first.
func (r *FriendshipRepository) ListForUser(ctx context.Context, userID string, acceptedOnly bool) ([]models.Friendship, error) {
	rows := []models.Friendship{}
	q := r.db.WithContext(ctx).
		Where("(sender_id = ? OR receiver_id = ?)", userID, userID).
		Order("created_at DESC")
	if acceptedOnly {
		q = q.Where("status = ?", models.FriendshipStatusAccepted)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gorm: list friendships of %s: %w", userID, err)
	}
	return rows, nil
}
