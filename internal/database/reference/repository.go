// Package reference provides database operations for authors, genres and
// publishers: the lookup data books point at.
//
// # Usage
//
//	repo := reference.NewRepository(db)
//	authors, err := repo.ListAuthors(ctx, 0, 100)
package reference

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

// --- Authors ---

func (r *Repository) ListAuthors(ctx context.Context, offset, limit int) ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.WithContext(ctx).Order("last_name, first_name, id").Offset(offset).Limit(limit).Find(&authors).Error
	return authors, err
}

func (r *Repository) GetAuthor(ctx context.Context, id uint) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.WithContext(ctx).First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *Repository) CreateAuthor(ctx context.Context, author *entities.Author) error {
	return r.db.WithContext(ctx).Create(author).Error
}

func (r *Repository) UpdateAuthor(ctx context.Context, author *entities.Author) error {
	return r.db.WithContext(ctx).Model(author).
		Select("last_name", "first_name", "middle_name").
		Updates(author).Error
}

// DeleteAuthor unlinks the author from every book before deleting the row.
func (r *Repository) DeleteAuthor(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_authors WHERE author_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Author{}, id).Error
	})
}

// --- Genres ---

func (r *Repository) ListGenres(ctx context.Context, offset, limit int) ([]entities.Genre, error) {
	var genres []entities.Genre
	err := r.db.WithContext(ctx).Order("name, id").Offset(offset).Limit(limit).Find(&genres).Error
	return genres, err
}

func (r *Repository) GetGenre(ctx context.Context, id uint) (*entities.Genre, error) {
	var genre entities.Genre
	if err := r.db.WithContext(ctx).First(&genre, id).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *Repository) GenreNameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Genre{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateGenre(ctx context.Context, genre *entities.Genre) error {
	return r.db.WithContext(ctx).Create(genre).Error
}

func (r *Repository) UpdateGenre(ctx context.Context, genre *entities.Genre) error {
	return r.db.WithContext(ctx).Model(genre).Select("name").Updates(genre).Error
}

func (r *Repository) DeleteGenre(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_genres WHERE genre_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Genre{}, id).Error
	})
}

// --- Publishers ---

func (r *Repository) ListPublishers(ctx context.Context, offset, limit int) ([]entities.Publisher, error) {
	var publishers []entities.Publisher
	err := r.db.WithContext(ctx).Order("name, id").Offset(offset).Limit(limit).Find(&publishers).Error
	return publishers, err
}

func (r *Repository) GetPublisher(ctx context.Context, id uint) (*entities.Publisher, error) {
	var publisher entities.Publisher
	if err := r.db.WithContext(ctx).First(&publisher, id).Error; err != nil {
		return nil, err
	}
	return &publisher, nil
}

func (r *Repository) PublisherNameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Publisher{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreatePublisher(ctx context.Context, publisher *entities.Publisher) error {
	return r.db.WithContext(ctx).Create(publisher).Error
}

func (r *Repository) UpdatePublisher(ctx context.Context, publisher *entities.Publisher) error {
	return r.db.WithContext(ctx).Model(publisher).Select("name").Updates(publisher).Error
}

// DeletePublisher removes the row; callers check CountByPublisher first.
func (r *Repository) DeletePublisher(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entities.Publisher{}, id).Error
}

// --- Lookups used when creating books ---

// AuthorsByIDs returns the authors found; callers compare lengths to detect gaps.
func (r *Repository) AuthorsByIDs(ctx context.Context, ids []uint) ([]entities.Author, error) {
	var authors []entities.Author
	if len(ids) == 0 {
		return authors, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&authors).Error
	return authors, err
}

func (r *Repository) GenresByIDs(ctx context.Context, ids []uint) ([]entities.Genre, error) {
	var genres []entities.Genre
	if len(ids) == 0 {
		return genres, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&genres).Error
	return genres, err
}
