package worker

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskSweepOrphans = "contentplan:sweep_orphans"
)

// Package-level Asynq client (singleton)
var client *asynq.Client

// InitClient initializes the global Asynq client for task enqueueing.
// Must be called before any EnqueueX functions.
func InitClient(redisURL string) error {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return err
	}

	client = asynq.NewClient(opt)
	return nil
}

// CloseClient closes the Asynq client connection gracefully.
func CloseClient() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// sweepPayload carries a run id so a sweep can be traced across the
// scheduler, the queue and the worker logs.
type sweepPayload struct {
	SweepRunID string `json:"sweep_run_id"`
}

// NewSweepTask builds a sweep task with a fresh run id. Used by both the
// scheduler registration and ad hoc enqueueing.
func NewSweepTask() (*asynq.Task, error) {
	payload, err := json.Marshal(sweepPayload{
		SweepRunID: uuid.New().String(),
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskSweepOrphans,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Retention(24*time.Hour),
	), nil
}

// EnqueueSweepOrphans enqueues an immediate orphan sweep, outside the
// periodic schedule. Useful after bulk deletions.
func EnqueueSweepOrphans() error {
	task, err := NewSweepTask()
	if err != nil {
		return err
	}
	_, err = client.Enqueue(task)
	return err
}
