package worker

import (
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/teamplan/planboard/internal/config"
)

// StartScheduler creates and starts an Asynq Scheduler that enqueues the
// periodic orphan sweep. Returns a stop function for graceful shutdown.
func StartScheduler(cfg *config.Config, log *slog.Logger) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			LogLevel: asynq.InfoLevel,
			Logger:   &asynqLoggerAdapter{logger: log},
		},
	)

	task, err := NewSweepTask()
	if err != nil {
		return nil, fmt.Errorf("failed to build sweep task: %w", err)
	}

	entryID, err := scheduler.Register(cfg.SweepSchedule, task)
	if err != nil {
		return nil, fmt.Errorf("failed to register sweep schedule: %w", err)
	}

	if err := scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.Info(
		"Scheduler started",
		"schedule", cfg.SweepSchedule,
		"entry_id", entryID,
	)

	return func() { scheduler.Shutdown() }, nil
}
