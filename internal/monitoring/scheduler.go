package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/glossary-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the periodic maintenance jobs on a cron schedule.
type Scheduler struct {
	eventSvc  services.EventServiceProvider
	retention time.Duration
	cron      *cron.Cron
	now       func() time.Time
}

// NewScheduler creates a scheduler that prunes events older than retention
// according to the standard cron expression schedule.
func NewScheduler(eventSvc services.EventServiceProvider, schedule string, retention time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		eventSvc:  eventSvc,
		retention: retention,
		cron:      cron.New(),
		now:       time.Now,
	}

	if _, err := s.cron.AddFunc(schedule, s.pruneJob); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run starts the scheduler in its own goroutine.
func (s *Scheduler) Run() {
	log.Info().Dur("retention", s.retention).Msg("Starting background scheduler...")
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped background scheduler.")
}

// PruneExpiredEvents deletes every event older than the retention period.
func (s *Scheduler) PruneExpiredEvents(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	removed, err := s.eventSvc.PruneEvents(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		msg := fmt.Sprintf("Pruned %d events older than %s", removed, cutoff.UTC().Format(time.RFC3339))
		if err := s.eventSvc.CreateEvent(ctx, services.EventRetentionCleanup, "info", msg, nil); err != nil {
			log.Warn().Err(err).Msg("Scheduler: Failed to record prune event")
		}
	}
	return removed, nil
}

func (s *Scheduler) pruneJob() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.PruneExpiredEvents(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Scheduler: Failed to prune events")
		return
	}
	log.Debug().Int64("removed", removed).Msg("Scheduler: Event retention pass complete")
}
