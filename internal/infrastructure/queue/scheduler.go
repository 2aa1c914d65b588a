package queue

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Scheduler enqueues the overdue scan on a cron spec.
type Scheduler struct {
	s   *asynq.Scheduler
	log zerolog.Logger
}

// NewScheduler registers the overdue scan under cronspec (e.g. "0 6 * * *").
func NewScheduler(redisOpt asynq.RedisConnOpt, cronspec string, log zerolog.Logger) (*Scheduler, error) {
	s := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{LogLevel: asynq.WarnLevel})
	id, err := s.Register(cronspec, newOverdueScanTask())
	if err != nil {
		return nil, fmt.Errorf("register overdue scan %q: %w", cronspec, err)
	}
	log.Info().Str("entry_id", id).Str("cron", cronspec).Msg("overdue scan scheduled")
	return &Scheduler{s: s, log: log}, nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() error {
	return s.s.Start()
}

func (s *Scheduler) Shutdown() {
	s.s.Shutdown()
}
