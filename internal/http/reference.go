package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
)

// ReferenceController serves authors, genres and publishers.
type ReferenceController struct {
	catalog *catalog.Service
	audit   *audit.Service
}

func NewReferenceController(catalogService *catalog.Service, auditService *audit.Service) *ReferenceController {
	return &ReferenceController{catalog: catalogService, audit: auditService}
}

// --- Authors ---

// ListAuthors handles GET /api/authors
func (rc *ReferenceController) ListAuthors(c *gin.Context) {
	offset, limit, ok := parsePagination(c)
	if !ok {
		return
	}
	authors, err := rc.catalog.ListAuthors(c.Request.Context(), offset, limit)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, authors)
}

// GetAuthor handles GET /api/authors/:id
func (rc *ReferenceController) GetAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	author, err := rc.catalog.GetAuthor(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, author)
}

// CreateAuthor handles POST /api/authors
func (rc *ReferenceController) CreateAuthor(c *gin.Context) {
	var in catalog.AuthorInput
	if !bindJSON(c, &in) {
		return
	}
	author, err := rc.catalog.CreateAuthor(c.Request.Context(), in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	rc.audit.LogTaxonomy(auth.GetUserID(c), "author", "create", author.ID, author.DisplayName())
	c.JSON(http.StatusCreated, author)
}

// UpdateAuthor handles PUT /api/authors/:id
func (rc *ReferenceController) UpdateAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in catalog.AuthorInput
	if !bindJSON(c, &in) {
		return
	}
	author, err := rc.catalog.UpdateAuthor(c.Request.Context(), id, in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	rc.audit.LogTaxonomy(auth.GetUserID(c), "author", "update", author.ID, author.DisplayName())
	c.JSON(http.StatusOK, author)
}

// DeleteAuthor handles DELETE /api/authors/:id
func (rc *ReferenceController) DeleteAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	author, err := rc.catalog.DeleteAuthor(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	rc.audit.LogTaxonomy(auth.GetUserID(c), "author", "delete", author.ID, author.DisplayName())
	respondSuccess(c, "author deleted", author)
}

// --- Genres ---

// ListGenres handles GET /api/genres
func (rc *ReferenceController) ListGenres(c *gin.Context) {
	offset, limit, ok := parsePagination(c)
	if !ok {
		return
	}
	genres, err := rc.catalog.ListGenres(c.Request.Context(), offset, limit)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

// GetGenre handles GET /api/genres/:id
func (rc *ReferenceController) GetGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	genre, err := rc.catalog.GetGenre(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, genre)
}

// CreateGenre handles POST /api/genres
func (rc *ReferenceController) CreateGenre(c *gin.Context) {
	var in catalog.GenreInput
	if !bindJSON(c, &in) {
		return
	}
	genre, err := rc.catalog.CreateGenre(c.Request.Context(), in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	rc.audit.LogTaxonomy(auth.GetUserID(c), "genre", "create", genre.ID, genre.Name)
	c.JSON(http.StatusCreated, genre)
}

// UpdateGenre handles PUT /api/genres/:id
func (rc *ReferenceController) UpdateGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in catalog.GenreInput
	if !bindJSON(c, &in) {
		return
	}
	genre, err := rc.catalog.UpdateGenre(c.Request.Context(), id, in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	rc.audit.LogTaxonomy(auth.GetUserID(c), "genre", "update", genre.ID, genre.Name)
	c.JSON(http.StatusOK, genre)
}

// DeleteGenre handles DELETE /api/genres/:id
func (rc *ReferenceController) DeleteGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	genre, err := rc.catalog.DeleteGenre(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	rc.audit.LogTaxonomy(auth.GetUserID(c), "genre", "delete", genre.ID, genre.Name)
	respondSuccess(c, "genre deleted", genre)
}

// --- Publishers ---

// ListPublishers handles GET /api/publishers
func (rc *ReferenceController) ListPublishers(c *gin.Context) {
	offset, limit, ok := parsePagination(c)
	if !ok {
		return
	}
	publishers, err := rc.catalog.ListPublishers(c.Request.Context(), offset, limit)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, publishers)
}

// GetPublisher handles GET /api/publishers/:id
func (rc *ReferenceController) GetPublisher(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	publisher, err := rc.catalog.GetPublisher(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, publisher)
}

// CreatePublisher handles POST /api/publishers
func (rc *ReferenceController) CreatePublisher(c *gin.Context) {
	var in catalog.PublisherInput
	if !bindJSON(c, &in) {
		return
	}
	publisher, err := rc.catalog.CreatePublisher(c.Request.Context(), in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	rc.audit.LogTaxonomy(auth.GetUserID(c), "publisher", "create", publisher.ID, publisher.Name)
	c.JSON(http.StatusCreated, publisher)
}

// UpdatePublisher handles PUT /api/publishers/:id
func (rc *ReferenceController) UpdatePublisher(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in catalog.PublisherInput
	if !bindJSON(c, &in) {
		return
	}
	publisher, err := rc.catalog.UpdatePublisher(c.Request.Context(), id, in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	rc.audit.LogTaxonomy(auth.GetUserID(c), "publisher", "update", publisher.ID, publisher.Name)
	c.JSON(http.StatusOK, publisher)
}

// DeletePublisher handles DELETE /api/publishers/:id. Publishers still
// referenced by a book are refused.
func (rc *ReferenceController) DeletePublisher(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	publisher, err := rc.catalog.DeletePublisher(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	rc.audit.LogTaxonomy(auth.GetUserID(c), "publisher", "delete", publisher.ID, publisher.Name)
	respondSuccess(c, "publisher deleted", publisher)
}
