// Package books provides database operations for the shared book catalog.
//
// Books are not owned by users; the reading log decides which books appear
// in a user's collection. ListForUser and the catalog service rely on that.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetByID(ctx, 123)
package books

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Publisher").
		Preload("Authors", func(db *gorm.DB) *gorm.DB {
			return db.Order("last_name, first_name, id")
		}).
		Preload("Genres", func(db *gorm.DB) *gorm.DB {
			return db.Order("name, id")
		})
}

// Create inserts the book and links the given authors and genres.
// The associated rows must already exist; they are never upserted here.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).
		Omit("Publisher", "Authors.*", "Genres.*").
		Create(book).Error
}

// GetByID retrieves a book with its publisher, authors and genres.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.withDetails(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *Repository) GetByIDs(ctx context.Context, ids []uint) ([]entities.Book, error) {
	var books []entities.Book
	if len(ids) == 0 {
		return books, nil
	}
	err := r.withDetails(ctx).Where("id IN ?", ids).Order("id").Find(&books).Error
	return books, err
}

func (r *Repository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// ListForUser returns the books the user has at least one status record for,
// optionally filtered by a case-insensitive title substring.
func (r *Repository) ListForUser(ctx context.Context, userID uint, search string, offset, limit int) ([]entities.Book, int64, error) {
	search = strings.TrimSpace(search)
	scoped := func() *gorm.DB {
		tracked := r.db.Model(&entities.StatusRecord{}).Select("book_id").Where("user_id = ?", userID)
		query := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id IN (?)", tracked)
		if search != "" {
			query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uint
	if err := scoped().Order("title, id").Offset(offset).Limit(limit).Pluck("id", &ids).Error; err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return []entities.Book{}, total, nil
	}

	var books []entities.Book
	err := r.withDetails(ctx).Where("id IN ?", ids).Order("title, id").Find(&books).Error
	return books, total, err
}

// Update writes the scalar columns of book.
func (r *Repository) Update(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).
		Model(book).
		Select("title", "published", "description", "publisher_id").
		Updates(book).Error
}

func (r *Repository) ReplaceAuthors(ctx context.Context, book *entities.Book, authors []entities.Author) error {
	assoc := r.db.WithContext(ctx).Model(book).Omit("Authors.*").Association("Authors")
	if len(authors) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(authors)
}

func (r *Repository) ReplaceGenres(ctx context.Context, book *entities.Book, genres []entities.Genre) error {
	assoc := r.db.WithContext(ctx).Model(book).Omit("Genres.*").Association("Genres")
	if len(genres) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(genres)
}

func (r *Repository) CountByPublisher(ctx context.Context, publisherID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Where("publisher_id = ?", publisherID).Count(&count).Error
	return count, err
}
