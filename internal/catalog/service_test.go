package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/dbtest"
	logdb "github.com/mrlokans/bookshelf/internal/database/readinglog"
	"github.com/mrlokans/bookshelf/internal/database/reference"
	"github.com/mrlokans/bookshelf/internal/database/statuses"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/taxonomy"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t).DB
	logRepo := logdb.NewRepository(db)
	planned := taxonomy.NewService(statuses.NewRepository(db), logRepo)
	return NewService(db, books.NewRepository(db), reference.NewRepository(db), logRepo, planned), db
}

func intPtr(v int) *int { return &v }

func TestPage(t *testing.T) {
	tests := []struct {
		offset, limit         int
		wantOffset, wantLimit int
	}{
		{0, 0, 0, DefaultLimit},
		{-5, 10, 0, 10},
		{20, 5000, 20, MaxLimit},
	}
	for _, tt := range tests {
		offset, limit := Page(tt.offset, tt.limit)
		assert.Equal(t, tt.wantOffset, offset)
		assert.Equal(t, tt.wantLimit, limit)
	}
}

func TestService_CreateBookStartsPlanned(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	user := dbtest.CreateUser(t, db, "alice", entities.UserRoleMember)

	author, err := svc.CreateAuthor(ctx, AuthorInput{LastName: "Herbert", FirstName: "Frank"})
	require.NoError(t, err)
	genre, err := svc.CreateGenre(ctx, GenreInput{Name: "Science Fiction"})
	require.NoError(t, err)
	publisher, err := svc.CreatePublisher(ctx, PublisherInput{Name: "Chilton"})
	require.NoError(t, err)

	view, err := svc.CreateBook(ctx, user.ID, BookInput{
		Title:       "  Dune ",
		Published:   intPtr(1965),
		PublisherID: &publisher.ID,
		AuthorIDs:   []uint{author.ID, author.ID},
		GenreIDs:    []uint{genre.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Dune", view.Title)
	require.Len(t, view.Authors, 1)
	assert.Equal(t, "Herbert Frank", view.Authors[0].DisplayName())
	require.Len(t, view.Genres, 1)
	require.NotNil(t, view.Publisher)
	assert.Equal(t, "Chilton", view.Publisher.Name)
	require.NotNil(t, view.CurrentStatus)
	assert.Equal(t, entities.StatusRolePlanned, view.CurrentStatus.Status.Role)
}

func TestService_CreateBookMissingReferences(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	user := dbtest.CreateUser(t, db, "alice", entities.UserRoleMember)
	missing := uint(404)

	tests := []struct {
		name    string
		in      BookInput
		message string
	}{
		{"publisher", BookInput{Title: "X", PublisherID: &missing}, "publisher 404 not found"},
		{"author", BookInput{Title: "X", AuthorIDs: []uint{missing}}, "author 404 not found"},
		{"genre", BookInput{Title: "X", GenreIDs: []uint{missing}}, "genre 404 not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateBook(ctx, user.ID, tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrNotFound))
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	var count int64
	require.NoError(t, db.Model(&entities.Book{}).Count(&count).Error)
	assert.Zero(t, count, "failed creates leave no rows behind")
}

func TestService_CreateBookValidation(t *testing.T) {
	svc, db := setupService(t)
	user := dbtest.CreateUser(t, db, "alice", entities.UserRoleMember)

	_, err := svc.CreateBook(context.Background(), user.ID, BookInput{Title: "   "})

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestService_BooksAreScopedToCollection(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice", entities.UserRoleMember)
	bob := dbtest.CreateUser(t, db, "bob", entities.UserRoleMember)

	dune, err := svc.CreateBook(ctx, alice.ID, BookInput{Title: "Dune"})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, alice.ID, BookInput{Title: "Emma"})
	require.NoError(t, err)

	list, total, err := svc.ListBooks(ctx, alice.ID, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, "Dune", list[0].Title)
	assert.NotNil(t, list[0].CurrentStatus)

	list, total, err = svc.ListBooks(ctx, alice.ID, "EMM", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Emma", list[0].Title)

	_, err = svc.GetBook(ctx, bob.ID, dune.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, total, err = svc.ListBooks(ctx, bob.ID, "", 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestService_TrackBook(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice", entities.UserRoleMember)
	bob := dbtest.CreateUser(t, db, "bob", entities.UserRoleMember)

	dune, err := svc.CreateBook(ctx, alice.ID, BookInput{Title: "Dune"})
	require.NoError(t, err)

	view, err := svc.TrackBook(ctx, bob.ID, dune.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusRolePlanned, view.CurrentStatus.Status.Role)

	_, err = svc.TrackBook(ctx, bob.ID, dune.ID)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = svc.TrackBook(ctx, bob.ID, 999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestService_UpdateBook(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice", entities.UserRoleMember)
	bob := dbtest.CreateUser(t, db, "bob", entities.UserRoleMember)

	herbert, err := svc.CreateAuthor(ctx, AuthorInput{LastName: "Herbert", FirstName: "Frank"})
	require.NoError(t, err)
	anderson, err := svc.CreateAuthor(ctx, AuthorInput{LastName: "Anderson", FirstName: "Kevin"})
	require.NoError(t, err)
	genre, err := svc.CreateGenre(ctx, GenreInput{Name: "SF"})
	require.NoError(t, err)

	book, err := svc.CreateBook(ctx, alice.ID, BookInput{
		Title:     "Dune",
		AuthorIDs: []uint{herbert.ID},
		GenreIDs:  []uint{genre.ID},
	})
	require.NoError(t, err)

	title := "Dune Messiah"
	authors := []uint{anderson.ID, herbert.ID}
	updated, err := svc.UpdateBook(ctx, alice.ID, book.ID, BookUpdate{Title: &title, AuthorIDs: &authors})
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", updated.Title)
	require.Len(t, updated.Authors, 2)
	assert.Equal(t, "Anderson", updated.Authors[0].LastName)
	assert.Len(t, updated.Genres, 1, "genres untouched when omitted")

	none := []uint{}
	updated, err = svc.UpdateBook(ctx, alice.ID, book.ID, BookUpdate{GenreIDs: &none})
	require.NoError(t, err)
	assert.Empty(t, updated.Genres)

	_, err = svc.UpdateBook(ctx, bob.ID, book.ID, BookUpdate{Title: &title})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	missing := []uint{999}
	_, err = svc.UpdateBook(ctx, alice.ID, book.ID, BookUpdate{AuthorIDs: &missing})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestService_RemoveBookIsIdempotent(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice", entities.UserRoleMember)
	book, err := svc.CreateBook(ctx, alice.ID, BookInput{Title: "Dune"})
	require.NoError(t, err)

	removed, err := svc.RemoveBook(ctx, alice.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = svc.RemoveBook(ctx, alice.ID, book.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)

	var count int64
	require.NoError(t, db.Model(&entities.Book{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "catalog row survives removal")
}

func TestService_ReferenceConflicts(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice", entities.UserRoleMember)

	_, err := svc.CreateGenre(ctx, GenreInput{Name: "Fantasy"})
	require.NoError(t, err)
	_, err = svc.CreateGenre(ctx, GenreInput{Name: "fantasy"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	publisher, err := svc.CreatePublisher(ctx, PublisherInput{Name: "Ace"})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, alice.ID, BookInput{Title: "Dune", PublisherID: &publisher.ID})
	require.NoError(t, err)

	_, err = svc.DeletePublisher(ctx, publisher.ID)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = svc.DeletePublisher(ctx, 999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestService_DeleteAuthorDetachesBooks(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	alice := dbtest.CreateUser(t, db, "alice", entities.UserRoleMember)
	author, err := svc.CreateAuthor(ctx, AuthorInput{LastName: "Herbert", FirstName: "Frank"})
	require.NoError(t, err)
	book, err := svc.CreateBook(ctx, alice.ID, BookInput{Title: "Dune", AuthorIDs: []uint{author.ID}})
	require.NoError(t, err)

	_, err = svc.DeleteAuthor(ctx, author.ID)
	require.NoError(t, err)

	view, err := svc.GetBook(ctx, alice.ID, book.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Authors)

	_, err = svc.GetAuthor(ctx, author.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestService_UpdateAuthorValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	author, err := svc.CreateAuthor(ctx, AuthorInput{LastName: "Herbert", FirstName: "Frank"})
	require.NoError(t, err)

	_, err = svc.UpdateAuthor(ctx, author.ID, AuthorInput{LastName: "Herbert"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	updated, err := svc.UpdateAuthor(ctx, author.ID, AuthorInput{LastName: "Herbert", FirstName: "Frank", MiddleName: "Patrick"})
	require.NoError(t, err)
	assert.Equal(t, "Herbert Frank Patrick", updated.DisplayName())
}
