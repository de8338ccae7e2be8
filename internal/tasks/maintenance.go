package tasks

import (
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
)

const (
	TypeCleanupAuditEvents = "cleanup_audit_events"
	TypeCleanupReportFiles = "cleanup_report_files"
)

var ErrUnknownTaskType = errors.New("unknown task type")

// Retention controls how much history the cleanup tasks keep.
type Retention struct {
	AuditDays int
	Reports   time.Duration
}

// MaintenanceRecorder receives a summary of every cleanup run.
type MaintenanceRecorder interface {
	LogMaintenance(action, description string, err error)
}

// TypeInfo describes a task that can be triggered manually.
type TypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Types lists the maintenance tasks in a stable order.
func Types() []TypeInfo {
	return []TypeInfo{
		{Type: TypeCleanupAuditEvents, Description: "Delete audit events older than the retention period"},
		{Type: TypeCleanupReportFiles, Description: "Delete generated report files older than the retention period"},
	}
}

// BuildTask returns the task for a type name.
func BuildTask(taskType string, r Retention) (backlite.Task, error) {
	switch taskType {
	case TypeCleanupAuditEvents:
		return CleanupAuditEventsTask{RetentionDays: r.AuditDays}, nil
	case TypeCleanupReportFiles:
		return CleanupReportFilesTask{RetentionHours: int(r.Reports / time.Hour)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
}

func record(recorder MaintenanceRecorder, action, description string, err error) {
	if recorder != nil {
		recorder.LogMaintenance(action, description, err)
	}
}
