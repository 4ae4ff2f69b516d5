package scheduler

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron"

	"github.com/i474232898/weatherbeats/internal/common"
)

// Pinger is the health probe run on every tick.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Scheduler periodically checks that the database is reachable.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Pinger
	interval  time.Duration
	timeout   time.Duration
	logger    *log.Logger
}

// New creates a new Scheduler. A non-positive interval disables it.
func New(target Pinger, interval time.Duration, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = common.Discard()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		timeout:   10 * time.Second,
		logger:    logger.WithPrefix("scheduler"),
	}
}

// Start schedules the health probe and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("health check disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.check)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("health check scheduled", "interval", s.interval)
	return nil
}

// check pings the target once and logs the outcome.
func (s *Scheduler) check() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.target.Ping(ctx); err != nil {
		s.logger.Error("database health check failed", "err", err)
		return
	}
	s.logger.Debug("database healthy", "took", time.Since(start))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
