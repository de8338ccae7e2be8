package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddlewareLabelsByRoute(t *testing.T) {
	m := New()
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/api/books/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/api/books/1", "/api/books/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/books/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.StatusChanged("completed")
	m.StatusChanged("completed")
	m.BookAdded()
	m.ReportGenerated("book_card", nil)
	m.ReportGenerated("book_card", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StatusChangesTotal.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BooksAddedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsTotal.WithLabelValues("book_card", "failure")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.BookAdded()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "bookshelf_books_added_total 1")
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.StatusChanged("planned")
		m.BookAdded()
		m.ReportGenerated("book_card", nil)
	})
}
