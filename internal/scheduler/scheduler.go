// Package scheduler runs periodic dataset refreshes.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/zed-insights/internal/aggregation"
)

// DefaultRefreshTimeout bounds one scheduled refresh
const DefaultRefreshTimeout = 2 * time.Minute

// Refresher rebuilds and publishes the dataset
type Refresher interface {
	Refresh(ctx context.Context, force bool) (*aggregation.Dataset, error)
}

// Scheduler manages scheduled refresh jobs
type Scheduler struct {
	cron           *cron.Cron
	refresher      Refresher
	logger         *logrus.Entry
	mu             sync.RWMutex
	isRunning      bool
	jobIDs         []cron.EntryID
	refreshTimeout time.Duration
}

// NewScheduler creates a new scheduler. Overlapping runs of the same job are skipped.
func NewScheduler(refresher Refresher, logger *logrus.Logger) *Scheduler {
	entry := logger.WithField("component", "scheduler")
	cronLogger := cron.PrintfLogger(entry)

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		refresher:      refresher,
		logger:         entry,
		jobIDs:         make([]cron.EntryID, 0),
		refreshTimeout: DefaultRefreshTimeout,
	}
}

// ScheduleRefresh schedules a dataset refresh on a standard cron spec or @every descriptor
func (s *Scheduler) ScheduleRefresh(spec string, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		s.runRefresh(context.Background(), force)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", spec).Info("Scheduled dataset refresh")

	return nil
}

// RunNow performs one refresh immediately on the caller's goroutine
func (s *Scheduler) RunNow(ctx context.Context, force bool) error {
	return s.runRefresh(ctx, force)
}

func (s *Scheduler) runRefresh(ctx context.Context, force bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	defer cancel()

	ds, err := s.refresher.Refresh(ctx, force)
	if err != nil {
		s.logger.WithError(err).Warn("Scheduled refresh failed")
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"horses": ds.HorseCount(),
		"sets":   ds.EquipmentSetCount(),
	}).Debug("Scheduled refresh completed")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
