// Package readinglog implements the per-user reading-status log: appending
// status changes, resolving the current status, history, and aggregate stats.
//
// Ownership of a book is not stored anywhere; a user owns a book exactly when
// at least one status record exists for the pair.
package readinglog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	logdb "github.com/mrlokans/bookshelf/internal/database/readinglog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/validation"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// LogStore is the persistence the log needs; *logdb.Repository satisfies it.
type LogStore interface {
	Append(ctx context.Context, record *entities.StatusRecord) error
	Current(ctx context.Context, userID, bookID uint) (*entities.StatusRecord, error)
	CurrentForBooks(ctx context.Context, userID uint, bookIDs []uint) (map[uint]*entities.StatusRecord, error)
	History(ctx context.Context, userID, bookID uint) ([]entities.StatusRecord, error)
	IsTracked(ctx context.Context, userID, bookID uint) (bool, error)
	RemoveBook(ctx context.Context, userID, bookID uint) (int64, error)
	CountByStatus(ctx context.Context, statusID uint) (int64, error)
	StatsRows(ctx context.Context, userID uint) ([]logdb.StatsRow, error)
	FirstAdded(ctx context.Context, userID uint) (map[uint]time.Time, error)
}

type StatusLookup interface {
	GetByID(ctx context.Context, id uint) (*entities.StatusCode, error)
}

type BookLoader interface {
	GetByIDs(ctx context.Context, ids []uint) ([]entities.Book, error)
}

var _ LogStore = (*logdb.Repository)(nil)

type Service struct {
	store     LogStore
	statuses  StatusLookup
	books     BookLoader
	validator *validation.Validator
}

func NewService(store LogStore, statuses StatusLookup, books BookLoader) *Service {
	return &Service{
		store:     store,
		statuses:  statuses,
		books:     books,
		validator: validation.New(),
	}
}

// AppendInput describes one status change. Dates use DateLayout.
type AppendInput struct {
	UserID    uint   `json:"-"`
	BookID    uint   `json:"-"`
	StatusID  uint   `json:"status_id" validate:"required"`
	StartDate string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PagesRead *int   `json:"pages_read,omitempty" validate:"omitempty,gte=0"`
}

// Append adds a record without checking ownership; callers that act on
// behalf of a request should use ChangeStatus.
func (s *Service) Append(ctx context.Context, in AppendInput) (*entities.StatusRecord, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	startDate, endDate, err := parseRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.statuses.GetByID(ctx, in.StatusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("status %d not found", in.StatusID).WithField("status_id", "does not exist")
		}
		return nil, apperr.Internal("failed to load status", err)
	}

	record := &entities.StatusRecord{
		UserID:    in.UserID,
		BookID:    in.BookID,
		StatusID:  in.StatusID,
		StartDate: startDate,
		EndDate:   endDate,
		PagesRead: in.PagesRead,
	}
	if err := s.store.Append(ctx, record); err != nil {
		return nil, apperr.Internal("failed to append status", err)
	}
	return record, nil
}

// ChangeStatus appends a record after checking the user owns the book.
func (s *Service) ChangeStatus(ctx context.Context, in AppendInput) (*entities.StatusRecord, error) {
	if err := s.requireTracked(ctx, in.UserID, in.BookID); err != nil {
		return nil, err
	}
	return s.Append(ctx, in)
}

// CurrentStatus returns nil, nil when the user has no records for the book.
func (s *Service) CurrentStatus(ctx context.Context, userID, bookID uint) (*entities.StatusRecord, error) {
	record, err := s.store.Current(ctx, userID, bookID)
	if err != nil {
		return nil, apperr.Internal("failed to load current status", err)
	}
	return record, nil
}

// CurrentStatuses resolves the current record for many books in one query.
func (s *Service) CurrentStatuses(ctx context.Context, userID uint, bookIDs []uint) (map[uint]*entities.StatusRecord, error) {
	records, err := s.store.CurrentForBooks(ctx, userID, bookIDs)
	if err != nil {
		return nil, apperr.Internal("failed to load current statuses", err)
	}
	return records, nil
}

// History lists the user's records for a book, newest first. An untracked
// pair yields an empty slice.
func (s *Service) History(ctx context.Context, userID, bookID uint) ([]entities.StatusRecord, error) {
	records, err := s.store.History(ctx, userID, bookID)
	if err != nil {
		return nil, apperr.Internal("failed to load status history", err)
	}
	if records == nil {
		records = []entities.StatusRecord{}
	}
	return records, nil
}

func (s *Service) IsTracked(ctx context.Context, userID, bookID uint) (bool, error) {
	tracked, err := s.store.IsTracked(ctx, userID, bookID)
	if err != nil {
		return false, apperr.Internal("failed to resolve ownership", err)
	}
	return tracked, nil
}

// RemoveBook drops the user's records for the book. Removing an untracked
// book is not an error.
func (s *Service) RemoveBook(ctx context.Context, userID, bookID uint) (int64, error) {
	removed, err := s.store.RemoveBook(ctx, userID, bookID)
	if err != nil {
		return 0, apperr.Internal("failed to remove book from collection", err)
	}
	return removed, nil
}

func (s *Service) CountByStatus(ctx context.Context, statusID uint) (int64, error) {
	count, err := s.store.CountByStatus(ctx, statusID)
	if err != nil {
		return 0, apperr.Internal("failed to count status usage", err)
	}
	return count, nil
}

func (s *Service) requireTracked(ctx context.Context, userID, bookID uint) error {
	tracked, err := s.IsTracked(ctx, userID, bookID)
	if err != nil {
		return err
	}
	if !tracked {
		return apperr.NotFoundf("book %d not found in collection", bookID)
	}
	return nil
}

// ParseDate parses a DateLayout string into a UTC calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

func parseRange(start, end string) (*datatypes.Date, *datatypes.Date, error) {
	var startDate, endDate *datatypes.Date
	if start != "" {
		t, err := ParseDate(start)
		if err != nil {
			return nil, nil, apperr.Validationf("invalid start date").WithField("start_date", "must be a date in 2006-01-02 format")
		}
		d := datatypes.Date(t)
		startDate = &d
	}
	if end != "" {
		t, err := ParseDate(end)
		if err != nil {
			return nil, nil, apperr.Validationf("invalid end date").WithField("end_date", "must be a date in 2006-01-02 format")
		}
		d := datatypes.Date(t)
		endDate = &d
	}
	if startDate != nil && endDate != nil && time.Time(*endDate).Before(time.Time(*startDate)) {
		return nil, nil, apperr.Validationf("end date precedes start date").WithField("end_date", "must not be before start_date")
	}
	return startDate, endDate, nil
}

// FormatDate renders a stored date with DateLayout, or "" for nil.
func FormatDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format(DateLayout)
}

func wrapLoad(what string, err error) error {
	return apperr.Internal(fmt.Sprintf("failed to load %s", what), err)
}
