package reports

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, report *entities.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// ListForUser returns the user's reports, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uint, offset, limit int) ([]entities.Report, error) {
	var reports []entities.Report
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("generated_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&reports).Error
	return reports, err
}

// GetForUser returns gorm.ErrRecordNotFound for reports owned by someone else.
func (r *Repository) GetForUser(ctx context.Context, userID, id uint) (*entities.Report, error) {
	var report entities.Report
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// OlderThan lists reports generated before the cutoff, across all users.
func (r *Repository) OlderThan(ctx context.Context, cutoff time.Time) ([]entities.Report, error) {
	var reports []entities.Report
	err := r.db.WithContext(ctx).Where("generated_at < ?", cutoff).Order("id").Find(&reports).Error
	return reports, err
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entities.Report{}, id).Error
}
