// Package audit records who changed what in a collection.
//
// Events are written in the background so request latency never depends on
// the audit table; Wait drains pending writes on shutdown.
package audit

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	auditdb "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type Store interface {
	LogEvent(ctx context.Context, event *entities.AuditEvent) error
	GetEvents(ctx context.Context, filter auditdb.EventFilter, limit, offset int) ([]entities.AuditEvent, int64, error)
	DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error)
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo    Store
	pending sync.WaitGroup
}

func NewService(repo Store) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
// A nil Service drops the event.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every LogAsync write has finished.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.pending.Wait()
}

// LogStatusChange records a status appended to a user's reading log.
func (s *Service) LogStatusChange(userID, bookID uint, statusName string, err error) {
	s.LogAsync(withError(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventStatusChange,
		Action:      "status_append",
		Description: fmt.Sprintf("Set status of book %d to %q", bookID, statusName),
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	}, err))
}

// LogCollection records a book entering or leaving a collection, or its
// metadata changing. Action is e.g. "book_create", "book_track", "book_remove".
func (s *Service) LogCollection(userID uint, action string, bookID uint, title string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventCollection,
		Action:      action,
		Description: truncate(title, 500),
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogTaxonomy records changes to statuses, authors, genres and publishers.
func (s *Service) LogTaxonomy(userID uint, entityType, action string, entityID uint, name string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventTaxonomy,
		Action:      entityType + "_" + action,
		Description: truncate(name, 500),
		EntityType:  entityType,
		EntityID:    &entityID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogReport records a PDF report generation attempt.
func (s *Service) LogReport(userID uint, reportType entities.ReportType, reportID uint, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventReport,
		Action:      string(reportType) + "_generate",
		Description: fmt.Sprintf("Generated %s report", reportType),
		EntityType:  "report",
		Status:      entities.AuditStatusSuccess,
	}
	if reportID > 0 {
		event.EntityID = &reportID
	}
	s.LogAsync(withError(event, err))
}

// LogAuth records an authentication event. login is the name presented,
// kept even when it matches no account.
func (s *Service) LogAuth(userID uint, login, action, ipAddr string, success bool) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAuth,
		Action:      action,
		Description: truncate(fmt.Sprintf("login %q", login), 500),
		IPAddress:   ipAddr,
		Status:      entities.AuditStatusSuccess,
	}
	if !success {
		event.Status = entities.AuditStatusFailed
	}
	s.LogAsync(event)
}

// LogUser records account administration performed by actorID on targetID.
func (s *Service) LogUser(actorID uint, action string, targetID uint, login string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      actorID,
		EventType:   entities.AuditEventUser,
		Action:      action,
		Description: "User " + login,
		EntityType:  "user",
		EntityID:    &targetID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogMaintenance records a background cleanup run.
func (s *Service) LogMaintenance(action, description string, err error) {
	s.LogAsync(withError(&entities.AuditEvent{
		EventType:   entities.AuditEventMaintenance,
		Action:      action,
		Description: truncate(description, 500),
		Status:      entities.AuditStatusSuccess,
	}, err))
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, filter auditdb.EventFilter, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, filter, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func withError(event *entities.AuditEvent, err error) *entities.AuditEvent {
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	return event
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
