package http

import (
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/metrics"
	"github.com/mrlokans/bookshelf/internal/readinglog"
	"github.com/mrlokans/bookshelf/internal/reports"
	"github.com/mrlokans/bookshelf/internal/taxonomy"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database Pinger
	Catalog  *catalog.Service
	Taxonomy *taxonomy.Service
	Log      *readinglog.Service
	Reports  *reports.Service

	// Authentication
	AuthService *auth.Service

	// Observability (optional)
	Audit   *audit.Service
	Metrics *metrics.Metrics

	// Task queue client (optional)
	TaskClient TaskEnqueuer

	// Application info
	Version string
}
