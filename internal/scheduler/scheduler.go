package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/coolescape/coolescape/internal/weather"
)

// Scheduler periodically pre-warms the district weather cache so interactive
// ranking requests mostly hit cached results.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	interval  time.Duration
}

// New creates a Scheduler. An interval of zero disables pre-warming.
func New(interval time.Duration, service *weather.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
	}
}

// Start schedules the periodic pre-warm job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: pre-warm disabled; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 10
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: pre-warming district weather cache")

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		reports, err := s.service.RankDistricts(ctx)
		if err != nil {
			log.Printf("scheduler: pre-warm failed: %v", err)
			return
		}
		log.Printf("scheduler: refreshed %d district reports", len(reports))
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
