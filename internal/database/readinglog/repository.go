// Package readinglog stores the append-only status records that make up a
// user's reading log.
//
// # Usage
//
//	repo := readinglog.NewRepository(db)
//	current, err := repo.Current(ctx, userID, bookID) // nil, nil when untracked
//
// There is deliberately no update method: a status change is a new row.
package readinglog

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// newestFirst is the single ordering used for "current" and history.
const newestFirst = "created_at DESC, id DESC"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx, for callers composing a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Append inserts record and loads its status. ID and CreatedAt are assigned here.
func (r *Repository) Append(ctx context.Context, record *entities.StatusRecord) error {
	record.ID = 0
	record.CreatedAt = time.Time{}
	if err := r.db.WithContext(ctx).Omit("Status").Create(record).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).First(&record.Status, record.StatusID).Error
}

// Current returns the newest record, or nil when the user has none for the book.
func (r *Repository) Current(ctx context.Context, userID, bookID uint) (*entities.StatusRecord, error) {
	var record entities.StatusRecord
	err := r.db.WithContext(ctx).
		Preload("Status").
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Order(newestFirst).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CurrentForBooks returns the newest record per book for the given books.
// Books without records are absent from the map.
func (r *Repository) CurrentForBooks(ctx context.Context, userID uint, bookIDs []uint) (map[uint]*entities.StatusRecord, error) {
	result := make(map[uint]*entities.StatusRecord, len(bookIDs))
	if len(bookIDs) == 0 {
		return result, nil
	}

	var records []entities.StatusRecord
	err := r.db.WithContext(ctx).
		Preload("Status").
		Where("user_id = ? AND book_id IN ?", userID, bookIDs).
		Order("book_id, " + newestFirst).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	for i := range records {
		if _, seen := result[records[i].BookID]; !seen {
			result[records[i].BookID] = &records[i]
		}
	}
	return result, nil
}

func (r *Repository) History(ctx context.Context, userID, bookID uint) ([]entities.StatusRecord, error) {
	var records []entities.StatusRecord
	err := r.db.WithContext(ctx).
		Preload("Status").
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Order(newestFirst).
		Find(&records).Error
	return records, err
}

func (r *Repository) IsTracked(ctx context.Context, userID, bookID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.StatusRecord{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// RemoveBook deletes only this user's records for the book.
func (r *Repository) RemoveBook(ctx context.Context, userID, bookID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.StatusRecord{})
	return result.RowsAffected, result.Error
}

// DeleteByUser drops a user's entire log; used when the account is removed.
func (r *Repository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&entities.StatusRecord{})
	return result.RowsAffected, result.Error
}

func (r *Repository) CountByStatus(ctx context.Context, statusID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.StatusRecord{}).
		Where("status_id = ?", statusID).
		Count(&count).Error
	return count, err
}

// StatsRow is one record joined with its status role.
type StatsRow struct {
	BookID    uint
	RecordID  uint
	Role      entities.StatusRole
	PagesRead *int
	StartDate *datatypes.Date
	EndDate   *datatypes.Date
}

// StatsRows returns every record of the user joined with its status role,
// grouped by book and newest first within each book.
func (r *Repository) StatsRows(ctx context.Context, userID uint) ([]StatsRow, error) {
	var rows []StatsRow
	err := r.db.WithContext(ctx).
		Table("status_records AS sr").
		Select("sr.book_id, sr.id AS record_id, sc.role, sr.pages_read, sr.start_date, sr.end_date").
		Joins("JOIN status_codes sc ON sc.id = sr.status_id").
		Where("sr.user_id = ?", userID).
		Order("sr.book_id, sr.created_at DESC, sr.id DESC").
		Scan(&rows).Error
	return rows, err
}

// FirstAdded maps each tracked book to the timestamp of its earliest record.
func (r *Repository) FirstAdded(ctx context.Context, userID uint) (map[uint]time.Time, error) {
	var rows []struct {
		BookID    uint
		CreatedAt time.Time
	}
	err := r.db.WithContext(ctx).
		Model(&entities.StatusRecord{}).
		Select("book_id, created_at").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	added := make(map[uint]time.Time)
	for _, row := range rows {
		if _, seen := added[row.BookID]; !seen {
			added[row.BookID] = row.CreatedAt.UTC()
		}
	}
	return added, nil
}

// TrackedBookIDs returns the ids of every book the user has at least one record for.
func (r *Repository) TrackedBookIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&entities.StatusRecord{}).
		Distinct("book_id").
		Where("user_id = ?", userID).
		Pluck("book_id", &ids).Error
	return ids, err
}
