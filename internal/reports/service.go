// Package reports renders PDF reports about a user's collection, stores them
// under the reports directory and keeps a history row for each one.
package reports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/readinglog"
	"github.com/mrlokans/bookshelf/internal/validation"
)

type Store interface {
	Create(ctx context.Context, report *entities.Report) error
	ListForUser(ctx context.Context, userID uint, offset, limit int) ([]entities.Report, error)
	GetForUser(ctx context.Context, userID, id uint) (*entities.Report, error)
	OlderThan(ctx context.Context, cutoff time.Time) ([]entities.Report, error)
	Delete(ctx context.Context, id uint) error
}

type BookSource interface {
	GetBook(ctx context.Context, userID, bookID uint) (*catalog.BookView, error)
}

type CollectionHistory interface {
	BooksAddedInPeriod(ctx context.Context, userID uint, from, to time.Time) ([]readinglog.AddedBook, error)
	AddedAt(ctx context.Context, userID, bookID uint) (*time.Time, error)
}

type Service struct {
	store     Store
	books     BookSource
	history   CollectionHistory
	dir       string
	validator *validation.Validator
	now       func() time.Time
}

func NewService(store Store, books BookSource, history CollectionHistory, dir string) *Service {
	return &Service{
		store:     store,
		books:     books,
		history:   history,
		dir:       dir,
		validator: validation.New(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type GenerateInput struct {
	ReportType entities.ReportType `json:"report_type" validate:"required,oneof=book_card collection_growth"`
	BookID     uint                `json:"book_id,omitempty"`
	PeriodFrom string              `json:"period_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PeriodTo   string              `json:"period_to,omitempty" validate:"omitempty,datetime=2006-01-02"`

	// Owner is printed on collection reports; set by the caller, never bound.
	Owner string `json:"-"`
}

// Generated is a stored report together with the rendered bytes.
type Generated struct {
	Report  *entities.Report
	Content []byte
}

// Generate renders the requested report, writes it to disk and records it.
func (s *Service) Generate(ctx context.Context, userID uint, in GenerateInput) (*Generated, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	switch in.ReportType {
	case entities.ReportTypeBookCard:
		if in.BookID == 0 {
			return nil, apperr.Validationf("book_id is required for book cards").WithField("book_id", "is required")
		}
		return s.GenerateBookCard(ctx, userID, in.BookID)
	default:
		from, to, err := parsePeriod(in.PeriodFrom, in.PeriodTo)
		if err != nil {
			return nil, err
		}
		return s.GenerateCollectionGrowth(ctx, userID, in.Owner, from, to)
	}
}

func (s *Service) GenerateBookCard(ctx context.Context, userID, bookID uint) (*Generated, error) {
	book, err := s.books.GetBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	addedAt, err := s.history.AddedAt(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	content, err := RenderBookCard(BookCardData{Book: *book, AddedAt: addedAt, GeneratedAt: now})
	if err != nil {
		return nil, apperr.Internal("failed to render book card", err)
	}

	report := &entities.Report{
		UserID:      userID,
		ReportType:  entities.ReportTypeBookCard,
		BookID:      &bookID,
		FileName:    fmt.Sprintf("book_card_%d_%s.pdf", bookID, stamp(now)),
		GeneratedAt: now,
	}
	return s.save(ctx, report, content)
}

// GenerateCollectionGrowth renders and stores the report; owner is printed
// on the page when non-empty.
func (s *Service) GenerateCollectionGrowth(ctx context.Context, userID uint, owner string, from, to time.Time) (*Generated, error) {
	content, err := s.RenderCollectionGrowth(ctx, userID, owner, from, to)
	if err != nil {
		return nil, err
	}

	now := s.now()
	periodFrom, periodTo := datatypes.Date(from), datatypes.Date(to)
	report := &entities.Report{
		UserID:     userID,
		ReportType: entities.ReportTypeCollectionGrowth,
		PeriodFrom: &periodFrom,
		PeriodTo:   &periodTo,
		FileName: fmt.Sprintf("collection_report_%s_%s_%s.pdf",
			from.Format("20060102"), to.Format("20060102"), stamp(now)),
		GeneratedAt: now,
	}
	return s.save(ctx, report, content)
}

// RenderCollectionGrowth renders the report without storing it.
func (s *Service) RenderCollectionGrowth(ctx context.Context, userID uint, owner string, from, to time.Time) ([]byte, error) {
	added, err := s.history.BooksAddedInPeriod(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	content, err := RenderCollectionGrowth(CollectionGrowthData{
		Owner:       owner,
		From:        from,
		To:          to,
		Books:       added,
		GeneratedAt: s.now(),
	})
	if err != nil {
		return nil, apperr.Internal("failed to render collection report", err)
	}
	return content, nil
}

func (s *Service) save(ctx context.Context, report *entities.Report, content []byte) (*Generated, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, apperr.Internal("failed to create reports directory", err)
	}
	report.FilePath = filepath.Join(s.dir, report.FileName)
	if err := os.WriteFile(report.FilePath, content, 0o644); err != nil {
		return nil, apperr.Internal("failed to write report", err)
	}
	if err := s.store.Create(ctx, report); err != nil {
		_ = os.Remove(report.FilePath)
		return nil, apperr.Internal("failed to record report", err)
	}
	log.Printf("Generated %s report %s for user %d", report.ReportType, report.FileName, report.UserID)
	return &Generated{Report: report, Content: content}, nil
}

func (s *Service) List(ctx context.Context, userID uint, offset, limit int) ([]entities.Report, error) {
	offset, limit = catalog.Page(offset, limit)
	reports, err := s.store.ListForUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, apperr.Internal("failed to list reports", err)
	}
	return reports, nil
}

// Get returns a report owned by the user whose file is still on disk.
func (s *Service) Get(ctx context.Context, userID, id uint) (*entities.Report, error) {
	report, err := s.store.GetForUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("report %d not found", id)
		}
		return nil, apperr.Internal("failed to load report", err)
	}
	if _, err := os.Stat(report.FilePath); err != nil {
		return nil, apperr.NotFoundf("report file %s is no longer available", report.FileName)
	}
	return report, nil
}

// CleanupOlderThan deletes report files and rows generated before cutoff.
// Missing files are not an error.
func (s *Service) CleanupOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := s.store.OlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list old reports: %w", err)
	}
	removed := 0
	for _, report := range stale {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := os.Remove(report.FilePath); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove report file %s: %v", report.FilePath, err)
			continue
		}
		if err := s.store.Delete(ctx, report.ID); err != nil {
			return removed, fmt.Errorf("delete report %d: %w", report.ID, err)
		}
		removed++
	}
	return removed, nil
}

func parsePeriod(from, to string) (time.Time, time.Time, error) {
	if from == "" || to == "" {
		return time.Time{}, time.Time{}, apperr.ValidationFields("period is required for collection reports", map[string]string{
			"period_from": "is required",
			"period_to":   "is required",
		})
	}
	start, err := readinglog.ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validationf("invalid period start").WithField("period_from", "must be a date in 2006-01-02 format")
	}
	end, err := readinglog.ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validationf("invalid period end").WithField("period_to", "must be a date in 2006-01-02 format")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperr.Validationf("period start is after period end").WithField("period_from", "must not be after period_to")
	}
	return start, end, nil
}

func stamp(t time.Time) string {
	return t.Format("20060102_150405") + "_" + uuid.NewString()[:8]
}
