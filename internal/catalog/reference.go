package catalog

import (
	"context"
	"strings"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type AuthorInput struct {
	LastName   string `json:"last_name" validate:"required,max=128"`
	FirstName  string `json:"first_name" validate:"required,max=128"`
	MiddleName string `json:"middle_name" validate:"max=128"`
}

func (in *AuthorInput) trim() {
	in.LastName = strings.TrimSpace(in.LastName)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.MiddleName = strings.TrimSpace(in.MiddleName)
}

type GenreInput struct {
	Name string `json:"name" validate:"required,max=128"`
}

type PublisherInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

// --- Authors ---

func (s *Service) ListAuthors(ctx context.Context, offset, limit int) ([]entities.Author, error) {
	offset, limit = Page(offset, limit)
	authors, err := s.refs.ListAuthors(ctx, offset, limit)
	if err != nil {
		return nil, apperr.Internal("failed to list authors", err)
	}
	return authors, nil
}

func (s *Service) GetAuthor(ctx context.Context, id uint) (*entities.Author, error) {
	author, err := s.refs.GetAuthor(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "author", id)
	}
	return author, nil
}

func (s *Service) CreateAuthor(ctx context.Context, in AuthorInput) (*entities.Author, error) {
	in.trim()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	author := &entities.Author{LastName: in.LastName, FirstName: in.FirstName, MiddleName: in.MiddleName}
	if err := s.refs.CreateAuthor(ctx, author); err != nil {
		return nil, apperr.Internal("failed to create author", err)
	}
	return author, nil
}

func (s *Service) UpdateAuthor(ctx context.Context, id uint, in AuthorInput) (*entities.Author, error) {
	in.trim()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	author, err := s.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	author.LastName, author.FirstName, author.MiddleName = in.LastName, in.FirstName, in.MiddleName
	if err := s.refs.UpdateAuthor(ctx, author); err != nil {
		return nil, apperr.Internal("failed to update author", err)
	}
	return author, nil
}

// DeleteAuthor also unlinks the author from every book.
func (s *Service) DeleteAuthor(ctx context.Context, id uint) (*entities.Author, error) {
	author, err := s.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.refs.DeleteAuthor(ctx, id); err != nil {
		return nil, apperr.Internal("failed to delete author", err)
	}
	return author, nil
}

// --- Genres ---

func (s *Service) ListGenres(ctx context.Context, offset, limit int) ([]entities.Genre, error) {
	offset, limit = Page(offset, limit)
	genres, err := s.refs.ListGenres(ctx, offset, limit)
	if err != nil {
		return nil, apperr.Internal("failed to list genres", err)
	}
	return genres, nil
}

func (s *Service) GetGenre(ctx context.Context, id uint) (*entities.Genre, error) {
	genre, err := s.refs.GetGenre(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "genre", id)
	}
	return genre, nil
}

func (s *Service) CreateGenre(ctx context.Context, in GenreInput) (*entities.Genre, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := s.ensureGenreFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}
	genre := &entities.Genre{Name: in.Name}
	if err := s.refs.CreateGenre(ctx, genre); err != nil {
		return nil, apperr.Internal("failed to create genre", err)
	}
	return genre, nil
}

func (s *Service) UpdateGenre(ctx context.Context, id uint, in GenreInput) (*entities.Genre, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	genre, err := s.GetGenre(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureGenreFree(ctx, in.Name, id); err != nil {
		return nil, err
	}
	genre.Name = in.Name
	if err := s.refs.UpdateGenre(ctx, genre); err != nil {
		return nil, apperr.Internal("failed to update genre", err)
	}
	return genre, nil
}

func (s *Service) DeleteGenre(ctx context.Context, id uint) (*entities.Genre, error) {
	genre, err := s.GetGenre(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.refs.DeleteGenre(ctx, id); err != nil {
		return nil, apperr.Internal("failed to delete genre", err)
	}
	return genre, nil
}

func (s *Service) ensureGenreFree(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.refs.GenreNameTaken(ctx, name, excludeID)
	if err != nil {
		return apperr.Internal("failed to check genre name", err)
	}
	if taken {
		return apperr.Conflictf("genre %q already exists", name).WithField("name", "already exists")
	}
	return nil
}

// --- Publishers ---

func (s *Service) ListPublishers(ctx context.Context, offset, limit int) ([]entities.Publisher, error) {
	offset, limit = Page(offset, limit)
	publishers, err := s.refs.ListPublishers(ctx, offset, limit)
	if err != nil {
		return nil, apperr.Internal("failed to list publishers", err)
	}
	return publishers, nil
}

func (s *Service) GetPublisher(ctx context.Context, id uint) (*entities.Publisher, error) {
	publisher, err := s.refs.GetPublisher(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "publisher", id)
	}
	return publisher, nil
}

func (s *Service) CreatePublisher(ctx context.Context, in PublisherInput) (*entities.Publisher, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := s.ensurePublisherFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}
	publisher := &entities.Publisher{Name: in.Name}
	if err := s.refs.CreatePublisher(ctx, publisher); err != nil {
		return nil, apperr.Internal("failed to create publisher", err)
	}
	return publisher, nil
}

func (s *Service) UpdatePublisher(ctx context.Context, id uint, in PublisherInput) (*entities.Publisher, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	publisher, err := s.GetPublisher(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensurePublisherFree(ctx, in.Name, id); err != nil {
		return nil, err
	}
	publisher.Name = in.Name
	if err := s.refs.UpdatePublisher(ctx, publisher); err != nil {
		return nil, apperr.Internal("failed to update publisher", err)
	}
	return publisher, nil
}

// DeletePublisher refuses publishers still referenced by a book.
func (s *Service) DeletePublisher(ctx context.Context, id uint) (*entities.Publisher, error) {
	publisher, err := s.GetPublisher(ctx, id)
	if err != nil {
		return nil, err
	}
	used, err := s.books.CountByPublisher(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to count publisher usage", err)
	}
	if used > 0 {
		return nil, apperr.Conflictf("publisher %q is referenced by %d books", publisher.Name, used)
	}
	if err := s.refs.DeletePublisher(ctx, id); err != nil {
		return nil, apperr.Internal("failed to delete publisher", err)
	}
	return publisher, nil
}

func (s *Service) ensurePublisherFree(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.refs.PublisherNameTaken(ctx, name, excludeID)
	if err != nil {
		return apperr.Internal("failed to check publisher name", err)
	}
	if taken {
		return apperr.Conflictf("publisher %q already exists", name).WithField("name", "already exists")
	}
	return nil
}
