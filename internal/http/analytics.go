package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/readinglog"
)

// AnalyticsController exposes read-only aggregations over the reading log.
type AnalyticsController struct {
	log *readinglog.Service
}

func NewAnalyticsController(logService *readinglog.Service) *AnalyticsController {
	return &AnalyticsController{log: logService}
}

// UserStats handles GET /api/analytics/user/:user_id/stats. Users may read
// their own stats; admins may read anyone's.
func (ac *AnalyticsController) UserStats(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	if userID != auth.GetUserID(c) && !auth.IsAdmin(c) {
		respondAppError(c, apperr.Forbiddenf("not allowed to view statistics of user %d", userID))
		return
	}

	stats, err := ac.log.AggregateStats(c.Request.Context(), userID)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AddedInPeriod handles GET /api/analytics/added?from=YYYY-MM-DD&to=YYYY-MM-DD
// for the caller's collection.
func (ac *AnalyticsController) AddedInPeriod(c *gin.Context) {
	from, err := readinglog.ParseDate(c.Query("from"))
	if err != nil {
		respondAppError(c, apperr.Validationf("invalid period start").WithField("from", "must be a date in 2006-01-02 format"))
		return
	}
	to, err := readinglog.ParseDate(c.Query("to"))
	if err != nil {
		respondAppError(c, apperr.Validationf("invalid period end").WithField("to", "must be a date in 2006-01-02 format"))
		return
	}

	books, err := ac.log.BooksAddedInPeriod(c.Request.Context(), auth.GetUserID(c), from, to)
	if err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"from":  from.Format(readinglog.DateLayout),
		"to":    to.Format(readinglog.DateLayout),
		"books": books,
		"total": len(books),
	})
}
