package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/metrics"
)

// BooksController serves the caller's collection. Every book in a response
// carries the caller's current status.
type BooksController struct {
	catalog *catalog.Service
	audit   *audit.Service
	metrics *metrics.Metrics
}

func NewBooksController(catalogService *catalog.Service, auditService *audit.Service, m *metrics.Metrics) *BooksController {
	return &BooksController{catalog: catalogService, audit: auditService, metrics: m}
}

// List handles GET /api/books?search=&skip=&limit=
func (bc *BooksController) List(c *gin.Context) {
	offset, limit, ok := parsePagination(c)
	if !ok {
		return
	}
	search := strings.TrimSpace(c.Query("search"))

	books, total, err := bc.catalog.ListBooks(c.Request.Context(), auth.GetUserID(c), search, offset, limit)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPage(books, total, offset, limit))
}

// Create handles POST /api/books. The new book enters the collection as planned.
func (bc *BooksController) Create(c *gin.Context) {
	var in catalog.BookInput
	if !bindJSON(c, &in) {
		return
	}
	userID := auth.GetUserID(c)

	book, err := bc.catalog.CreateBook(c.Request.Context(), userID, in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	bc.metrics.BookAdded()
	bc.audit.LogCollection(userID, "book_create", book.ID, book.Title)
	c.JSON(http.StatusCreated, book)
}

// Get handles GET /api/books/:id
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.catalog.GetBook(c.Request.Context(), auth.GetUserID(c), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// Update handles PUT /api/books/:id
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in catalog.BookUpdate
	if !bindJSON(c, &in) {
		return
	}
	userID := auth.GetUserID(c)

	book, err := bc.catalog.UpdateBook(c.Request.Context(), userID, id, in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	bc.audit.LogCollection(userID, "book_update", book.ID, book.Title)
	c.JSON(http.StatusOK, book)
}

// Track handles POST /api/books/:id/track, adding an existing catalog book
// to the caller's collection.
func (bc *BooksController) Track(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := auth.GetUserID(c)

	book, err := bc.catalog.TrackBook(c.Request.Context(), userID, id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	bc.metrics.BookAdded()
	bc.audit.LogCollection(userID, "book_track", book.ID, book.Title)
	c.JSON(http.StatusCreated, book)
}

// Remove handles DELETE /api/books/:id. Only the caller's status records go;
// the catalog book stays for other users.
func (bc *BooksController) Remove(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := auth.GetUserID(c)

	removed, err := bc.catalog.RemoveBook(c.Request.Context(), userID, id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	if removed > 0 {
		bc.audit.LogCollection(userID, "book_remove", id, "")
	}
	respondSuccess(c, "book removed from collection", gin.H{"removed_records": removed})
}
