// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - readinglog.LogStore: the append-only status log (internal/database/readinglog)
//   - taxonomy.StatusStore: reading statuses (internal/database/statuses)
//   - auth.UserStore: accounts and login state (internal/database/users)
//   - reports.Store: generated report history (internal/database/reports)
//   - audit.Store: audit events (internal/database/audit)
//
// ## Service Collaborators
//
//   - catalog.PlannedStatus: the status new books start in
//   - reports.BookSource / reports.CollectionHistory: report inputs
//
// ## Background Maintenance
//
//   - tasks.AuditEventCleaner / tasks.ReportCleaner: cleanup targets
//   - scheduler.Enqueuer / http.TaskEnqueuer: the task queue client
//
// # Adding a New Report Type
//
//  1. Add a ReportType constant in internal/entities and extend the oneof
//     rule on reports.GenerateInput.
//
//  2. Add a renderer in internal/reports/render.go:
//
//     func RenderReadingTimeline(data ReadingTimelineData) ([]byte, error)
//
//  3. Add a GenerateReadingTimeline method that renders and calls save, and
//     dispatch to it from Generate.
//
// # Adding a New Maintenance Task
//
//  1. Define the task and processor in internal/tasks/ following
//     cleanup_audit.go, and add it to Types and BuildTask.
//
//  2. Register its queue in Client.RegisterMaintenance.
//
//  3. Add the type to the scheduler's task list if it should run on cron.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
