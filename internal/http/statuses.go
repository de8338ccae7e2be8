package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/metrics"
	"github.com/mrlokans/bookshelf/internal/readinglog"
	"github.com/mrlokans/bookshelf/internal/taxonomy"
)

// StatusController serves the status taxonomy and the per-book reading log.
type StatusController struct {
	taxonomy *taxonomy.Service
	log      *readinglog.Service
	audit    *audit.Service
	metrics  *metrics.Metrics
}

func NewStatusController(tax *taxonomy.Service, logService *readinglog.Service, auditService *audit.Service, m *metrics.Metrics) *StatusController {
	return &StatusController{taxonomy: tax, log: logService, audit: auditService, metrics: m}
}

// --- Taxonomy ---

// List handles GET /api/statuses
func (sc *StatusController) List(c *gin.Context) {
	statuses, err := sc.taxonomy.List(c.Request.Context())
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// Get handles GET /api/statuses/:id
func (sc *StatusController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	status, err := sc.taxonomy.Get(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Create handles POST /api/statuses (admin)
func (sc *StatusController) Create(c *gin.Context) {
	var in taxonomy.StatusInput
	if !bindJSON(c, &in) {
		return
	}
	status, err := sc.taxonomy.Create(c.Request.Context(), in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	sc.audit.LogTaxonomy(auth.GetUserID(c), "status", "create", status.ID, status.Name)
	c.JSON(http.StatusCreated, status)
}

// Update handles PUT /api/statuses/:id (admin)
func (sc *StatusController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in taxonomy.StatusInput
	if !bindJSON(c, &in) {
		return
	}
	status, err := sc.taxonomy.Update(c.Request.Context(), id, in)
	if err != nil {
		respondAppError(c, err)
		return
	}
	sc.audit.LogTaxonomy(auth.GetUserID(c), "status", "update", status.ID, status.Name)
	c.JSON(http.StatusOK, status)
}

// Delete handles DELETE /api/statuses/:id (admin). Protected statuses and
// statuses still referenced by a record are refused.
func (sc *StatusController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	status, err := sc.taxonomy.Get(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, err)
		return
	}
	if err := sc.taxonomy.Delete(c.Request.Context(), id); err != nil {
		respondAppError(c, err)
		return
	}
	sc.audit.LogTaxonomy(auth.GetUserID(c), "status", "delete", id, status.Name)
	c.Status(http.StatusNoContent)
}

// --- Reading log ---

// Current handles GET /api/books/:id/status
func (sc *StatusController) Current(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	record, err := sc.log.CurrentStatus(c.Request.Context(), auth.GetUserID(c), bookID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	if record == nil {
		respondAppError(c, apperr.NotFoundf("no status recorded for book %d", bookID))
		return
	}
	c.JSON(http.StatusOK, record)
}

// Append handles POST /api/books/:id/status. Any status may follow any other.
func (sc *StatusController) Append(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var in readinglog.AppendInput
	if !bindJSON(c, &in) {
		return
	}
	in.UserID = auth.GetUserID(c)
	in.BookID = bookID

	record, err := sc.log.ChangeStatus(c.Request.Context(), in)
	if err != nil {
		sc.audit.LogStatusChange(in.UserID, bookID, "", err)
		respondAppError(c, err)
		return
	}

	sc.metrics.StatusChanged(string(record.Status.Role))
	sc.audit.LogStatusChange(in.UserID, bookID, record.Status.Name, nil)
	c.JSON(http.StatusCreated, record)
}

// History handles GET /api/books/:id/statuses, newest first. Books outside
// the caller's collection are 404.
func (sc *StatusController) History(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := auth.GetUserID(c)
	tracked, err := sc.log.IsTracked(c.Request.Context(), userID, bookID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	if !tracked {
		respondAppError(c, apperr.NotFoundf("book %d not found in collection", bookID))
		return
	}

	records, err := sc.log.History(c.Request.Context(), userID, bookID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
