// Package scheduler triggers periodic background maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookshelf/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Enqueuer adds a task by type name; *tasks.Client satisfies it.
type Enqueuer interface {
	Enqueue(taskType string) (string, error)
}

// MaintenanceScheduler enqueues the cleanup tasks on a cron schedule. The
// work itself runs on the task queue, so a slow cleanup never blocks cron.
type MaintenanceScheduler struct {
	enqueuer Enqueuer
	schedule string
	taskList []string

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewMaintenanceScheduler(enqueuer Enqueuer, schedule string) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		enqueuer: enqueuer,
		schedule: schedule,
		taskList: []string{tasks.TypeCleanupAuditEvents, tasks.TypeCleanupReportFiles},
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// Start registers the job and starts cron. It stops when ctx is cancelled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Maintenance scheduler: started with schedule '%s'. Next run: %v", s.schedule, s.nextRunLocked())

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running job to finish.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	log.Printf("Maintenance scheduler: stopped")
}

// RunOnce enqueues every maintenance task immediately. Enqueue failures are
// logged and do not stop the remaining tasks.
func (s *MaintenanceScheduler) RunOnce() {
	for _, taskType := range s.taskList {
		id, err := s.enqueuer.Enqueue(taskType)
		if err != nil {
			log.Printf("Maintenance scheduler: failed to enqueue %s: %v", taskType, err)
			continue
		}
		log.Printf("Maintenance scheduler: enqueued %s (%s)", taskType, id)
	}
}

// NextRun returns when the job fires next, or the zero time when stopped.
func (s *MaintenanceScheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.nextRunLocked()
}

func (s *MaintenanceScheduler) nextRunLocked() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
