package readinglog

import (
	"context"
	"sort"
	"time"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Stats summarises a user's collection by the role of each book's current status.
type Stats struct {
	Planned        int      `json:"planned"`
	Reading        int      `json:"reading"`
	Completed      int      `json:"completed"`
	Other          int      `json:"other"`
	TotalBooks     int      `json:"total_books"`
	TotalPagesRead int      `json:"total_pages_read"`
	AvgReadingDays *float64 `json:"avg_reading_days"`
}

// AggregateStats buckets every tracked book by its current status role.
//
// Pages are counted once per book from its newest record that reports them,
// since pages_read is progress so far rather than a delta.
// AvgReadingDays averages end-start over completed books that carry both
// dates and is nil when there are none.
func (s *Service) AggregateStats(ctx context.Context, userID uint) (*Stats, error) {
	rows, err := s.store.StatsRows(ctx, userID)
	if err != nil {
		return nil, wrapLoad("statistics", err)
	}

	stats := &Stats{}
	var readingDays float64
	var timedBooks int
	pagesCounted := false

	for i, row := range rows {
		if i == 0 || row.BookID != rows[i-1].BookID {
			stats.TotalBooks++
			pagesCounted = false

			switch row.Role {
			case entities.StatusRolePlanned:
				stats.Planned++
			case entities.StatusRoleInProgress:
				stats.Reading++
			case entities.StatusRoleCompleted:
				stats.Completed++
				if row.StartDate != nil && row.EndDate != nil {
					readingDays += time.Time(*row.EndDate).Sub(time.Time(*row.StartDate)).Hours() / 24
					timedBooks++
				}
			default:
				stats.Other++
			}
		}

		if !pagesCounted && row.PagesRead != nil {
			stats.TotalPagesRead += *row.PagesRead
			pagesCounted = true
		}
	}

	if timedBooks > 0 {
		avg := readingDays / float64(timedBooks)
		stats.AvgReadingDays = &avg
	}
	return stats, nil
}

type AddedBook struct {
	Book    entities.Book `json:"book"`
	AddedAt time.Time     `json:"added_at"`
}

// BooksAddedInPeriod returns books whose first record for the user falls
// inside [from, to] as whole UTC calendar days, oldest first.
func (s *Service) BooksAddedInPeriod(ctx context.Context, userID uint, from, to time.Time) ([]AddedBook, error) {
	lower := startOfDay(from)
	upper := startOfDay(to).AddDate(0, 0, 1)
	if !lower.Before(upper) {
		return nil, apperr.Validationf("period start is after period end").WithField("from", "must not be after to")
	}

	added, err := s.store.FirstAdded(ctx, userID)
	if err != nil {
		return nil, wrapLoad("collection history", err)
	}

	ids := make([]uint, 0, len(added))
	for bookID, at := range added {
		if !at.Before(lower) && at.Before(upper) {
			ids = append(ids, bookID)
		}
	}
	if len(ids) == 0 {
		return []AddedBook{}, nil
	}

	books, err := s.books.GetByIDs(ctx, ids)
	if err != nil {
		return nil, wrapLoad("books", err)
	}

	result := make([]AddedBook, 0, len(books))
	for _, book := range books {
		result = append(result, AddedBook{Book: book, AddedAt: added[book.ID]})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AddedAt.Equal(result[j].AddedAt) {
			return result[i].Book.ID < result[j].Book.ID
		}
		return result[i].AddedAt.Before(result[j].AddedAt)
	})
	return result, nil
}

// AddedAt returns when the user first tracked the book, or nil if untracked.
func (s *Service) AddedAt(ctx context.Context, userID, bookID uint) (*time.Time, error) {
	added, err := s.store.FirstAdded(ctx, userID)
	if err != nil {
		return nil, wrapLoad("collection history", err)
	}
	at, ok := added[bookID]
	if !ok {
		return nil, nil
	}
	return &at, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
