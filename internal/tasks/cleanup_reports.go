package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// ReportCleaner deletes generated report files and their rows.
type ReportCleaner interface {
	CleanupOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// CleanupReportFilesTask removes reports generated more than RetentionHours ago.
type CleanupReportFilesTask struct {
	RetentionHours int `json:"retention_hours"`
}

func (t CleanupReportFilesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        TypeCleanupReportFiles,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func CleanupReportFilesProcessor(cleaner ReportCleaner, recorder MaintenanceRecorder) backlite.QueueProcessor[CleanupReportFilesTask] {
	return func(ctx context.Context, task CleanupReportFilesTask) error {
		if cleaner == nil {
			return fmt.Errorf("report cleaner not configured")
		}

		hours := task.RetentionHours
		if hours <= 0 {
			hours = 30 * 24
		}
		cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

		removed, err := cleaner.CleanupOlderThan(ctx, cutoff)
		if err != nil {
			err = fmt.Errorf("cleanup report files: %w", err)
			record(recorder, TypeCleanupReportFiles, fmt.Sprintf("Removed %d reports before failing", removed), err)
			return err
		}

		summary := fmt.Sprintf("Removed %d reports older than %d hours", removed, hours)
		log.Printf("[TASK] %s", summary)
		record(recorder, TypeCleanupReportFiles, summary, nil)
		return nil
	}
}

func NewCleanupReportFilesQueue(cleaner ReportCleaner, recorder MaintenanceRecorder) backlite.Queue {
	return backlite.NewQueue(CleanupReportFilesProcessor(cleaner, recorder))
}
