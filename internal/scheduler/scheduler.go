package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler periodically refreshes the current-conditions source. It carries
// no retry logic: a failed cycle simply waits for the next tick. The daily
// and recent-history sources are on-demand only and are not scheduled here.
type Scheduler struct {
	scheduler *gocron.Scheduler
	trigger   func(context.Context)
	interval  time.Duration
	log       *slog.Logger
}

// New creates a Scheduler that fires trigger every interval.
func New(interval time.Duration, log *slog.Logger, trigger func(context.Context)) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		trigger:   trigger,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	seconds := int(s.interval.Seconds())
	if seconds <= 0 {
		seconds = 60
	}

	_, err := s.scheduler.Every(seconds).Seconds().Do(func() {
		s.log.Debug("scheduler: refreshing current conditions")
		s.trigger(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
