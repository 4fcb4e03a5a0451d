package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/wordsrs/internal/logger"
	"github.com/example/wordsrs/pkg/models"
)

const jobTimeout = time.Minute

// Maintainer is the part of the session service the periodic jobs drive.
type Maintainer interface {
	SweepAbandoned(ctx context.Context, olderThan time.Duration) (int, error)
	Stats(ctx context.Context, levels []int) ([]models.LevelStats, error)
}

// Config controls which jobs run and how often. A zero interval disables the
// job; a zero SessionTimeout disables the sweep.
type Config struct {
	SessionTimeout   time.Duration
	SweepInterval    time.Duration
	SnapshotInterval time.Duration
	Levels           []int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	svc       Maintainer
	cfg       Config
	log       *logger.Logger

	mu       sync.Mutex
	lastSnap []models.LevelStats
}

// New creates a new scheduler instance
func New(svc Maintainer, cfg Config, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		svc:       svc,
		cfg:       cfg,
		log:       log.With("component", "scheduler"),
	}
}

// Start registers the jobs and runs them in the background.
func (s *Scheduler) Start() error {
	if s.cfg.SessionTimeout > 0 && s.cfg.SweepInterval > 0 {
		if _, err := s.scheduler.Every(s.cfg.SweepInterval).Do(s.sweepAbandoned); err != nil {
			return fmt.Errorf("failed to schedule session sweep: %w", err)
		}
	}
	if s.cfg.SnapshotInterval > 0 {
		if _, err := s.scheduler.Every(s.cfg.SnapshotInterval).Do(s.snapshotStats); err != nil {
			return fmt.Errorf("failed to schedule stats snapshot: %w", err)
		}
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	s.log.Info("scheduler started",
		"jobs", len(s.scheduler.Jobs()),
		"sweep_every", s.cfg.SweepInterval,
		"snapshot_every", s.cfg.SnapshotInterval,
	)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

// RunNow runs every enabled job once, synchronously.
func (s *Scheduler) RunNow() {
	if s.cfg.SessionTimeout > 0 {
		s.sweepAbandoned()
	}
	s.snapshotStats()
}

// LastSnapshot returns the statistics from the most recent snapshot run.
func (s *Scheduler) LastSnapshot() []models.LevelStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.LevelStats(nil), s.lastSnap...)
}

// sweepAbandoned closes sessions left open longer than the timeout
func (s *Scheduler) sweepAbandoned() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.svc.SweepAbandoned(ctx, s.cfg.SessionTimeout)
	if err != nil {
		s.log.Error("session sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("abandoned sessions closed", "count", n)
	}
}

// snapshotStats logs the per-level due queue and progress
func (s *Scheduler) snapshotStats() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	stats, err := s.svc.Stats(ctx, s.cfg.Levels)
	if err != nil {
		s.log.Error("stats snapshot failed", "error", err)
		return
	}
	for _, st := range stats {
		s.log.Info("level snapshot",
			"level", st.LevelTag,
			"total", st.Total,
			"unseen", st.Unseen,
			"due", st.Due,
			"mastered", st.Mastered,
		)
	}

	s.mu.Lock()
	s.lastSnap = stats
	s.mu.Unlock()
}
