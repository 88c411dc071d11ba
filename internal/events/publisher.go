// Package events publishes content-plan change notifications to a Redis
// Stream for downstream consumers (UI refresh, audit). Publishing is best
// effort: a missing publisher or a failed XADD never fails the request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamContentPlanChanges is the stream mutations are published to.
const StreamContentPlanChanges = "contentplan:changes"

// Change describes a single content-plan mutation.
type Change struct {
	Channel string `json:"channel"`
	ID      int    `json:"id"`
	Action  string `json:"action"` // created/updated/deleted
	Actor   string `json:"actor"`  // role of the acting user
}

// Publisher publishes change events to Redis Streams.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher creates a Publisher from a Redis URL.
func NewPublisher(redisURL string) (*Publisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &Publisher{rdb: redis.NewClient(opts)}, nil
}

// PublishChange appends a change event to the stream and returns the
// assigned message id.
func (p *Publisher) PublishChange(ctx context.Context, change Change) (string, error) {
	payload, err := json.Marshal(change)
	if err != nil {
		return "", fmt.Errorf("failed to marshal change: %w", err)
	}

	result := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamContentPlanChanges,
		MaxLen: 10000,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"payload":      string(payload),
			"published_at": time.Now().Unix(),
		},
	})
	if result.Err() != nil {
		return "", fmt.Errorf("failed to publish to stream: %w", result.Err())
	}
	return result.Val(), nil
}

// Close closes the Redis client connection.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
