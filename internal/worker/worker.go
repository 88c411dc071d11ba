package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/teamplan/planboard/internal/config"
	"github.com/teamplan/planboard/internal/contentplan"
	"github.com/teamplan/planboard/internal/events"
)

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger interface
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Run starts the Asynq worker server and blocks until shutdown signal.
// Use this for standalone worker mode.
func Run(cfg *config.Config, log *slog.Logger, db *gorm.DB, registry *contentplan.Registry, publisher *events.Publisher) error {
	srv, mux, err := newServer(cfg, log, db, registry, publisher)
	if err != nil {
		return err
	}
	return srv.Run(mux)
}

// Start starts the Asynq worker in non-blocking mode and returns a stop
// function. Use this for embedded mode so the caller can coordinate
// shutdown.
func Start(cfg *config.Config, log *slog.Logger, db *gorm.DB, registry *contentplan.Registry, publisher *events.Publisher) (stop func(), err error) {
	srv, mux, err := newServer(cfg, log, db, registry, publisher)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	return func() { srv.Shutdown() }, nil
}

func newServer(cfg *config.Config, log *slog.Logger, db *gorm.DB, registry *contentplan.Registry, publisher *events.Publisher) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     5,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(log)),
			Logger:          &asynqLoggerAdapter{logger: log},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSweepOrphans, handleSweepOrphans(log, db, registry, publisher))

	log.Info("Worker starting", "concurrency", 5, "redis", cfg.RedisURL)
	return srv, mux, nil
}

// handleSweepOrphans removes assets and task links whose publication no
// longer exists. Publications are deleted directly by SQL in some admin
// flows, so sub-resources keyed by (channel, content_id) can be left
// behind; the sweep reconciles them.
func handleSweepOrphans(log *slog.Logger, db *gorm.DB, registry *contentplan.Registry, publisher *events.Publisher) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload sweepPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
		}

		log.Info("Processing contentplan:sweep_orphans task", "sweep_run_id", payload.SweepRunID)

		var totalAssets, totalLinks int64
		for _, cfg := range registry.Buckets() {
			if !cfg.IsPublication() {
				continue
			}
			channel := string(cfg.Bucket)

			assets := db.WithContext(ctx).Exec(
				fmt.Sprintf("DELETE FROM content_assets WHERE channel = ? AND content_id NOT IN (SELECT id FROM %s)", cfg.Table),
				channel,
			)
			if assets.Error != nil {
				return fmt.Errorf("failed to sweep assets for %s: %w", channel, assets.Error)
			}

			links := db.WithContext(ctx).Exec(
				fmt.Sprintf("DELETE FROM content_task_links WHERE channel = ? AND content_id NOT IN (SELECT id FROM %s)", cfg.Table),
				channel,
			)
			if links.Error != nil {
				return fmt.Errorf("failed to sweep task links for %s: %w", channel, links.Error)
			}

			if assets.RowsAffected > 0 || links.RowsAffected > 0 {
				log.Info("Swept orphaned sub-resources",
					"sweep_run_id", payload.SweepRunID,
					"channel", channel,
					"assets", assets.RowsAffected,
					"task_links", links.RowsAffected,
				)
				if publisher != nil {
					if _, err := publisher.PublishChange(ctx, events.Change{
						Channel: channel,
						Action:  "swept",
						Actor:   "system",
					}); err != nil {
						log.Warn("Failed to publish sweep event", "error", err.Error())
					}
				}
			}
			totalAssets += assets.RowsAffected
			totalLinks += links.RowsAffected
		}

		log.Info("Orphan sweep completed",
			"sweep_run_id", payload.SweepRunID,
			"assets_removed", totalAssets,
			"task_links_removed", totalLinks,
		)
		return nil
	}
}

// makeErrorHandler creates an error handler function with logger closure.
func makeErrorHandler(log *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		log.Error(
			"Task execution failed",
			"task_type", task.Type(),
			"error", err.Error(),
			"retry_count", retried,
			"max_retry", maxRetry,
		)

		if retried >= maxRetry {
			log.Error(
				"Task moved to dead letter queue (all retries exhausted)",
				"task_type", task.Type(),
				"payload", string(task.Payload()),
			)
		}
	}
}
