package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/database"
	auditdb "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	logdb "github.com/mrlokans/bookshelf/internal/database/readinglog"
	reportsdb "github.com/mrlokans/bookshelf/internal/database/reports"
	"github.com/mrlokans/bookshelf/internal/database/statuses"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/readinglog"
	"github.com/mrlokans/bookshelf/internal/reports"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/taxonomy"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// =============================================================================
// Data Access Interfaces
// =============================================================================

// Reading log
var _ readinglog.LogStore = (*logdb.Repository)(nil)
var _ readinglog.StatusLookup = (*statuses.Repository)(nil)
var _ readinglog.BookLoader = (*books.Repository)(nil)

// Status taxonomy
var _ taxonomy.StatusStore = (*statuses.Repository)(nil)
var _ taxonomy.UsageCounter = (*logdb.Repository)(nil)

// Users, reports and audit
var _ auth.UserStore = (*users.Repository)(nil)
var _ reports.Store = (*reportsdb.Repository)(nil)
var _ audit.Store = (*auditdb.Repository)(nil)

// Health
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Service Collaborators
// =============================================================================

var _ catalog.PlannedStatus = (*taxonomy.Service)(nil)
var _ reports.BookSource = (*catalog.Service)(nil)
var _ reports.CollectionHistory = (*readinglog.Service)(nil)

// =============================================================================
// Background Maintenance
// =============================================================================

var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.ReportCleaner = (*reports.Service)(nil)
var _ tasks.MaintenanceRecorder = (*audit.Service)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ http.TaskEnqueuer = (*tasks.Client)(nil)
