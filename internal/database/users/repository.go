// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByLogin(ctx, "alice")
package users

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// CreateFirstAdmin creates user as an admin when the table is empty and as a
// member otherwise. The check and insert share one transaction so two
// concurrent first registrations cannot both become admin.
func (r *Repository) CreateFirstAdmin(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.User{}).Count(&count).Error; err != nil {
			return err
		}
		user.Role = entities.UserRoleMember
		if count == 0 {
			user.Role = entities.UserRoleAdmin
		}
		return tx.Create(user).Error
	})
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByLogin matches the login case-insensitively.
func (r *Repository) GetByLogin(ctx context.Context, login string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("LOWER(login) = LOWER(?)", login).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) LoginTaken(ctx context.Context, login string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("LOWER(login) = LOWER(?) AND id <> ?", login, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) List(ctx context.Context, offset, limit int) ([]entities.User, error) {
	var users []entities.User
	err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error
	return count, err
}

// Update writes the profile columns of user.
func (r *Repository) Update(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Model(user).
		Select("login", "name", "password_hash", "role").
		Updates(user).Error
}

// RecordFailedLogin stores the failure streak and its lock expiry, if any.
func (r *Repository) RecordFailedLogin(ctx context.Context, userID uint, count int, since time.Time, lockedUntil *time.Time) error {
	return r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"failed_login_count": count,
		"failed_login_since": since,
		"locked_until":       lockedUntil,
	}).Error
}

func (r *Repository) RecordSuccessfulLogin(ctx context.Context, userID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"last_login_at":      at,
		"failed_login_count": 0,
		"failed_login_since": nil,
		"locked_until":       nil,
	}).Error
}

// DeleteWithData removes the user together with their reading log and report
// rows in one transaction. It returns the report file paths so the caller can
// remove the files, and gorm.ErrRecordNotFound when the user does not exist.
func (r *Repository) DeleteWithData(ctx context.Context, id uint) ([]string, error) {
	var reportFiles []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Report{}).Where("user_id = ?", id).Pluck("file_path", &reportFiles).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entities.StatusRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entities.Report{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reportFiles, nil
}
