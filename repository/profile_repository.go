package repository

import (
	"context"
	"fmt"

	"bodoge-manager/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository stores public user profiles.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	if db == nil {
		panic("database connection cannot be nil for ProfileRepository")
	}
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("gorm: get profile %s: %w", id, err)
	}
	return &p, nil
}

func (r *ProfileRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	profiles := []models.Profile{}
	if len(ids) == 0 {
		return profiles, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("gorm: get profiles by ids: %w", err)
	}
	return profiles, nil
}

// FindByTag looks a profile up by its "name#1234" pair.
func (r *ProfileRepository) FindByTag(ctx context.Context, displayName, discriminator string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).
		Where("display_name = ? AND discriminator = ?", displayName, discriminator).
		First(&p).Error
	if err != nil {
		if err = translate(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("gorm: find profile %s#%s: %w", displayName, discriminator, err)
	}
	return &p, nil
}

// List returns every profile ordered by display name.
func (r *ProfileRepository) List(ctx context.Context) ([]models.Profile, error) {
	profiles := []models.Profile{}
	if err := r.db.WithContext(ctx).Order("display_name ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("gorm: list profiles: %w", err)
	}
	return profiles, nil
}

// Save inserts or fully updates the profile keyed by id. A name#discriminator
// collision yields ErrDuplicateEntry.
func (r *ProfileRepository) Save(ctx context.Context, p *models.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "display_name", "discriminator", "bio", "avatar_url",
			"visibility_games", "visibility_matches", "visibility_friends", "visibility_user_list",
			"updated_at",
		}),
	}).Create(p).Error
	if err != nil {
		if err = translate(err); err == ErrDuplicateEntry {
			return err
		}
		return fmt.Errorf("gorm: save profile %s: %w", p.ID, err)
	}
	return nil
}

func (r *ProfileRepository) UpdateAvatar(ctx context.Context, id, url string) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("avatar_url", url)
	if res.Error != nil {
		return fmt.Errorf("gorm: update avatar of %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
