package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// BookView is a catalog book as seen by one user.
type BookView struct {
	entities.Book
	CurrentStatus *entities.StatusRecord `json:"current_status"`
}

type BookInput struct {
	Title       string `json:"title" validate:"required,max=512"`
	Published   *int   `json:"published,omitempty" validate:"omitempty,gte=0,lte=9999"`
	Description string `json:"description"`
	PublisherID *uint  `json:"publisher_id,omitempty"`
	AuthorIDs   []uint `json:"author_ids"`
	GenreIDs    []uint `json:"genre_ids"`
}

// BookUpdate is a partial update. AuthorIDs and GenreIDs replace the whole
// set when present; an empty list clears it.
type BookUpdate struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=512"`
	Published   *int    `json:"published,omitempty" validate:"omitempty,gte=0,lte=9999"`
	Description *string `json:"description,omitempty"`
	PublisherID *uint   `json:"publisher_id,omitempty"`
	AuthorIDs   *[]uint `json:"author_ids,omitempty"`
	GenreIDs    *[]uint `json:"genre_ids,omitempty"`
}

// CreateBook adds a catalog book and puts it into the user's collection as planned.
func (s *Service) CreateBook(ctx context.Context, userID uint, in BookInput) (*BookView, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := s.checkPublisher(ctx, in.PublisherID); err != nil {
		return nil, err
	}
	authors, err := s.resolveAuthors(ctx, in.AuthorIDs)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, in.GenreIDs)
	if err != nil {
		return nil, err
	}
	planned, err := s.planned.DefaultPlanned(ctx)
	if err != nil {
		return nil, err
	}

	book := &entities.Book{
		Title:       in.Title,
		Published:   in.Published,
		Description: strings.TrimSpace(in.Description),
		PublisherID: in.PublisherID,
		Authors:     authors,
		Genres:      genres,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.books.WithTx(tx).Create(ctx, book); err != nil {
			return err
		}
		return s.log.WithTx(tx).Append(ctx, &entities.StatusRecord{
			UserID:   userID,
			BookID:   book.ID,
			StatusID: planned.ID,
		})
	})
	if err != nil {
		return nil, apperr.Internal("failed to create book", err)
	}
	return s.GetBook(ctx, userID, book.ID)
}

// ListBooks returns the user's collection sorted by title, with the total
// count before pagination.
func (s *Service) ListBooks(ctx context.Context, userID uint, search string, offset, limit int) ([]BookView, int64, error) {
	offset, limit = Page(offset, limit)
	list, total, err := s.books.ListForUser(ctx, userID, search, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list books", err)
	}

	ids := make([]uint, len(list))
	for i, b := range list {
		ids[i] = b.ID
	}
	current, err := s.log.CurrentForBooks(ctx, userID, ids)
	if err != nil {
		return nil, 0, apperr.Internal("failed to load current statuses", err)
	}

	views := make([]BookView, len(list))
	for i, b := range list {
		views[i] = BookView{Book: b, CurrentStatus: current[b.ID]}
	}
	return views, total, nil
}

// GetBook returns a book from the user's collection. Books the user does not
// track are reported as not found.
func (s *Service) GetBook(ctx context.Context, userID, bookID uint) (*BookView, error) {
	if err := s.requireTracked(ctx, userID, bookID); err != nil {
		return nil, err
	}
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, notFoundOr(err, "book", bookID)
	}
	current, err := s.log.Current(ctx, userID, bookID)
	if err != nil {
		return nil, apperr.Internal("failed to load current status", err)
	}
	return &BookView{Book: *book, CurrentStatus: current}, nil
}

// UpdateBook edits a book in the user's collection.
func (s *Service) UpdateBook(ctx context.Context, userID, bookID uint, in BookUpdate) (*BookView, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := s.requireTracked(ctx, userID, bookID); err != nil {
		return nil, err
	}
	book, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, notFoundOr(err, "book", bookID)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Validationf("validation failed").WithField("title", "is required")
		}
		book.Title = title
	}
	if in.Published != nil {
		book.Published = in.Published
	}
	if in.Description != nil {
		book.Description = strings.TrimSpace(*in.Description)
	}
	if in.PublisherID != nil {
		if err := s.checkPublisher(ctx, in.PublisherID); err != nil {
			return nil, err
		}
		book.PublisherID = in.PublisherID
		book.Publisher = nil
	}

	var authors []entities.Author
	if in.AuthorIDs != nil {
		if authors, err = s.resolveAuthors(ctx, *in.AuthorIDs); err != nil {
			return nil, err
		}
	}
	var genres []entities.Genre
	if in.GenreIDs != nil {
		if genres, err = s.resolveGenres(ctx, *in.GenreIDs); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.books.WithTx(tx)
		if err := repo.Update(ctx, book); err != nil {
			return err
		}
		if in.AuthorIDs != nil {
			if err := repo.ReplaceAuthors(ctx, book, authors); err != nil {
				return err
			}
		}
		if in.GenreIDs != nil {
			return repo.ReplaceGenres(ctx, book, genres)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal("failed to update book", err)
	}
	return s.GetBook(ctx, userID, bookID)
}

// TrackBook adds an existing catalog book to the user's collection as planned.
func (s *Service) TrackBook(ctx context.Context, userID, bookID uint) (*BookView, error) {
	exists, err := s.books.Exists(ctx, bookID)
	if err != nil {
		return nil, apperr.Internal("failed to check book", err)
	}
	if !exists {
		return nil, apperr.NotFoundf("book %d not found", bookID)
	}
	tracked, err := s.log.IsTracked(ctx, userID, bookID)
	if err != nil {
		return nil, apperr.Internal("failed to resolve ownership", err)
	}
	if tracked {
		return nil, apperr.Conflictf("book %d is already in your collection", bookID)
	}

	planned, err := s.planned.DefaultPlanned(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.log.Append(ctx, &entities.StatusRecord{UserID: userID, BookID: bookID, StatusID: planned.ID}); err != nil {
		return nil, apperr.Internal("failed to track book", err)
	}
	return s.GetBook(ctx, userID, bookID)
}

// RemoveBook drops the book from the user's collection; the catalog row stays.
// Removing a book that is not in the collection is not an error.
func (s *Service) RemoveBook(ctx context.Context, userID, bookID uint) (int64, error) {
	removed, err := s.log.RemoveBook(ctx, userID, bookID)
	if err != nil {
		return 0, apperr.Internal("failed to remove book from collection", err)
	}
	return removed, nil
}

func (s *Service) requireTracked(ctx context.Context, userID, bookID uint) error {
	tracked, err := s.log.IsTracked(ctx, userID, bookID)
	if err != nil {
		return apperr.Internal("failed to resolve ownership", err)
	}
	if !tracked {
		return apperr.NotFoundf("book %d not found in collection", bookID)
	}
	return nil
}

func (s *Service) checkPublisher(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.refs.GetPublisher(ctx, *id); err != nil {
		return withField(notFoundOr(err, "publisher", *id), "publisher_id")
	}
	return nil
}

func (s *Service) resolveAuthors(ctx context.Context, ids []uint) ([]entities.Author, error) {
	ids = unique(ids)
	authors, err := s.refs.AuthorsByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("failed to load authors", err)
	}
	found := make(map[uint]bool, len(authors))
	for _, a := range authors {
		found[a.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, apperr.NotFoundf("author %d not found", id).WithField("author_ids", "unknown author")
		}
	}
	return authors, nil
}

func (s *Service) resolveGenres(ctx context.Context, ids []uint) ([]entities.Genre, error) {
	ids = unique(ids)
	genres, err := s.refs.GenresByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("failed to load genres", err)
	}
	found := make(map[uint]bool, len(genres))
	for _, g := range genres {
		found[g.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, apperr.NotFoundf("genre %d not found", id).WithField("genre_ids", "unknown genre")
		}
	}
	return genres, nil
}

func unique(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func withField(err error, field string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind == apperr.KindNotFound {
		return appErr.WithField(field, "does not exist")
	}
	return err
}
