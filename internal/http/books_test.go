package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func TestBooksController_RequiresToken(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/books", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBooksController_CreateStartsAsPlanned(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "alice")

	w := api.do(t, http.MethodPost, "/api/books", token, catalog.BookInput{Title: "Dune"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	book := decode[catalog.BookView](t, w)
	assert.Equal(t, "Dune", book.Title)
	require.NotNil(t, book.CurrentStatus)
	assert.Equal(t, entities.StatusRolePlanned, book.CurrentStatus.Status.Role)
	assert.Equal(t, float64(1), testutil.ToFloat64(api.metrics.BooksAddedTotal))
}

func TestBooksController_CreateValidation(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "alice")

	t.Run("missing title", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/books", token, map[string]any{"title": "  "})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.Equal(t, "VALIDATION", resp.Code)
	})

	t.Run("unknown author", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/books", token, catalog.BookInput{Title: "Dune", AuthorIDs: []uint{42}})

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decode[ErrorResponse](t, w)
		assert.Contains(t, resp.Error, "42")
	})
}

func TestBooksController_ListIsPerUser(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register(t, "alice")
	bob := api.register(t, "bob")

	for i := 0; i < 3; i++ {
		api.createBook(t, alice, fmt.Sprintf("Alice book %d", i))
	}
	api.createBook(t, bob, "Bob book")

	w := api.do(t, http.MethodGet, "/api/books?limit=2", alice, nil)

	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Data    []catalog.BookView `json:"data"`
		Total   int64              `json:"total"`
		HasMore bool               `json:"has_more"`
	}](t, w)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Data, 2)
	assert.True(t, page.HasMore)

	w = api.do(t, http.MethodGet, "/api/books?search=bob", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode[map[string]any](t, w)["total"])
}

func TestBooksController_GetNotOwnedIsNotFound(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register(t, "alice")
	bob := api.register(t, "bob")
	id := api.createBook(t, alice, "Dune")

	w := api.do(t, http.MethodGet, fmt.Sprintf("/api/books/%d", id), bob, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooksController_InvalidID(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "alice")

	w := api.do(t, http.MethodGet, "/api/books/abc", token, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBooksController_UpdateTitle(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "alice")
	id := api.createBook(t, token, "Dune")

	title := "Dune Messiah"
	w := api.do(t, http.MethodPut, fmt.Sprintf("/api/books/%d", id), token, catalog.BookUpdate{Title: &title})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Dune Messiah", decode[catalog.BookView](t, w).Title)
}

func TestBooksController_TrackAndRemove(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register(t, "alice")
	bob := api.register(t, "bob")
	id := api.createBook(t, alice, "Dune")
	path := fmt.Sprintf("/api/books/%d", id)

	w := api.do(t, http.MethodPost, path+"/track", bob, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(t, http.MethodPost, path+"/track", bob, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, http.MethodDelete, path, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Removing again is still a success.
	w = api.do(t, http.MethodDelete, path, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[SuccessResponse](t, w)
	assert.Equal(t, map[string]any{"removed_records": float64(0)}, resp.Data)

	// Alice still has the book.
	w = api.do(t, http.MethodGet, path, alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBooksController_TrackMissingBook(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "alice")

	w := api.do(t, http.MethodPost, "/api/books/999/track", token, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
