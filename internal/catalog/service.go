// Package catalog manages the shared book catalog and its reference data
// (authors, genres, publishers), and each user's view of it.
//
// Books are shared. A book belongs to a user's collection while the user has
// status records for it, so adding a book always writes a first "planned"
// record in the same transaction as the book row.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database/books"
	logdb "github.com/mrlokans/bookshelf/internal/database/readinglog"
	"github.com/mrlokans/bookshelf/internal/database/reference"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/validation"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// PlannedStatus resolves the status newly added books start in.
type PlannedStatus interface {
	DefaultPlanned(ctx context.Context) (*entities.StatusCode, error)
}

type Service struct {
	db        *gorm.DB
	books     *books.Repository
	refs      *reference.Repository
	log       *logdb.Repository
	planned   PlannedStatus
	validator *validation.Validator
}

func NewService(db *gorm.DB, bookRepo *books.Repository, refs *reference.Repository, logRepo *logdb.Repository, planned PlannedStatus) *Service {
	return &Service{
		db:        db,
		books:     bookRepo,
		refs:      refs,
		log:       logRepo,
		planned:   planned,
		validator: validation.New(),
	}
}

// Page clamps skip/limit query values.
func Page(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return offset, limit
}

func notFoundOr(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("%s %d not found", what, id)
	}
	return apperr.Internal(fmt.Sprintf("failed to load %s", what), err)
}
