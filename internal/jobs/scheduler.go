// Package jobs runs the periodic background work of the backend, currently
// the recurrence processing.
package jobs

import (
	"fmt"
	"time"

	"github.com/pocketledger/backend/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Scheduler wraps cron-based jobs.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLocation(time.UTC)),
	}
}

// ScheduleRecurrenceProcessing registers the recurrence processing job
// every given duration.
func (s *Scheduler) ScheduleRecurrenceProcessing(interval time.Duration) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}

	spec := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	return s.cron.AddFunc(spec, func() {
		err := ProcessRecurrences(time.Now().In(time.UTC))
		if err != nil {
			log.Error().Err(err).Msg("recurrence processing")
		}
	})
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running job to finish before returning.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ProcessRecurrences runs the recurrence processor for every user that has
// at least one due template. Users are independent of each other, so a
// failure for one does not stop the others; the first error is reported
// after all users have been tried.
//
// Processing advances one period per run. A template that is overdue by
// several periods catches up over the next runs.
func ProcessRecurrences(now time.Time) error {
	userIDs, err := models.UsersWithDueRecurrences(models.DB, now)
	if err != nil {
		return err
	}

	g := new(errgroup.Group)
	g.SetLimit(4)

	for _, userID := range userIDs {
		g.Go(func() error {
			result, err := models.ProcessDueRecurrences(models.DB, userID, now)
			if err != nil {
				log.Error().Err(err).Str("user", userID.String()).Msg("recurrence processing")
				return err
			}

			if result.Processed > 0 {
				log.Info().Str("user", userID.String()).Int("processed", result.Processed).Msg("recurrence processing")
			}

			return nil
		})
	}

	return g.Wait()
}
