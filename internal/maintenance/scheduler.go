// Package maintenance runs periodic SQLite upkeep on a cron schedule.
package maintenance

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Optimizer is the database surface the scheduler needs.
type Optimizer interface {
	Optimize(ctx context.Context) error
}

// Recorder receives the outcome of every run. *metrics.Metrics satisfies it.
type Recorder interface {
	MaintenanceRun(task string, err error)
}

const taskOptimize = "optimize"

// runTimeout bounds a single PRAGMA optimize.
const runTimeout = 2 * time.Minute

// Status reports the scheduler state.
type Status struct {
	Running  bool
	Schedule string
	LastRun  *time.Time
	LastErr  error
	NextRun  *time.Time
}

// Scheduler runs Optimize on a standard cron expression.
type Scheduler struct {
	db       Optimizer
	recorder Recorder
	schedule string
	cron     *cron.Cron
	entryID  cron.EntryID

	mu      sync.RWMutex
	running bool
	lastRun *time.Time
	lastErr error
}

// NewScheduler creates a scheduler. recorder may be nil.
func NewScheduler(db Optimizer, schedule string, recorder Recorder) *Scheduler {
	return &Scheduler{
		db:       db,
		recorder: recorder,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers the job and starts the cron loop. An empty schedule
// leaves the scheduler idle.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.schedule == "" {
		log.Info().Msg("Database maintenance disabled")
		return nil
	}

	id, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(context.Background()) })
	if err != nil {
		return err
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	log.Info().Str("schedule", s.schedule).Msg("Database maintenance scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	ctx := s.cron.Stop()
	s.mu.Unlock()

	// The running job takes s.mu to record its result.
	<-ctx.Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
	}
	s.running = false
	log.Info().Msg("Database maintenance scheduler stopped")
}

// RunOnce performs one optimize pass immediately.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	start := time.Now()
	err := s.db.Optimize(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Database optimize failed")
	} else {
		log.Debug().Dur("duration", time.Since(start)).Msg("Database optimized")
	}
	if s.recorder != nil {
		s.recorder.MaintenanceRun(taskOptimize, err)
	}

	s.mu.Lock()
	s.lastRun = &start
	s.lastErr = err
	s.mu.Unlock()

	return err
}

// Status returns the current scheduler state.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		Running:  s.running,
		Schedule: s.schedule,
		LastRun:  s.lastRun,
		LastErr:  s.lastErr,
	}
	if s.entryID != 0 {
		entry := s.cron.Entry(s.entryID)
		if !entry.Next.IsZero() {
			status.NextRun = &entry.Next
		}
	}
	return status
}
