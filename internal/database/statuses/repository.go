// Package statuses provides database operations for the reading status taxonomy.
//
// # Usage
//
//	repo := statuses.NewRepository(db)
//	planned, err := repo.FirstByRole(ctx, entities.StatusRolePlanned)
package statuses

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]entities.StatusCode, error) {
	var statuses []entities.StatusCode
	err := r.db.WithContext(ctx).Order("id").Find(&statuses).Error
	return statuses, err
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.StatusCode, error) {
	var status entities.StatusCode
	if err := r.db.WithContext(ctx).First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// GetByName matches case-insensitively; names are unique ignoring case.
func (r *Repository) GetByName(ctx context.Context, name string) (*entities.StatusCode, error) {
	var status entities.StatusCode
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// FirstByRole returns the lowest-id status with the role, preferring protected rows.
func (r *Repository) FirstByRole(ctx context.Context, role entities.StatusRole) (*entities.StatusCode, error) {
	var status entities.StatusCode
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("protected DESC, id ASC").
		Take(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *Repository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.StatusCode{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// NameTaken reports whether another status (not excludeID) already uses name.
func (r *Repository) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.StatusCode{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(ctx context.Context, status *entities.StatusCode) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *Repository) Update(ctx context.Context, status *entities.StatusCode) error {
	return r.db.WithContext(ctx).
		Model(status).
		Select("name", "role").
		Updates(status).Error
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entities.StatusCode{}, id).Error
}
