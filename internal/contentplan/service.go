package contentplan

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/teamplan/planboard/internal/apperr"
	"github.com/teamplan/planboard/internal/events"
	"github.com/teamplan/planboard/internal/roles"
)

// TaskLookup is the read-only task collaborator used to validate and
// annotate links.
type TaskLookup interface {
	GetByID(ctx context.Context, id string) (map[string]any, bool, error)
	Decode(payload []byte) (map[string]any, bool)
}

// ChangeStream receives best-effort mutation notifications. May be nil.
type ChangeStream interface {
	PublishChange(ctx context.Context, change events.Change) (string, error)
}

// Service orchestrates range resolution, per-bucket reads and writes, and
// the asset/task-link sub-operations. Validation and authorization run
// before any storage access.
type Service struct {
	store        Store
	tasks        TaskLookup
	registry     *Registry
	stream       ChangeStream
	log          *slog.Logger
	maxRangeDays int
	now          func() time.Time
}

// NewService wires the content-plan service. stream may be nil when Redis
// is not configured.
func NewService(store Store, tasks TaskLookup, registry *Registry, stream ChangeStream, log *slog.Logger, maxRangeDays int) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:        store,
		tasks:        tasks,
		registry:     registry,
		stream:       stream,
		log:          log,
		maxRangeDays: maxRangeDays,
		now:          time.Now,
	}
}

// GetRange resolves the requested window and aggregates all three buckets.
// Reads require no authentication.
func (s *Service) GetRange(ctx context.Context, q RangeQuery) (*RangePayload, error) {
	dateRange, err := ResolveRange(q, s.now(), s.maxRangeDays)
	if err != nil {
		return nil, err
	}

	payload := &RangePayload{
		Range:     dateRange,
		Events:    []Item{},
		Instagram: []Item{},
		Telegram:  []Item{},
	}
	for _, cfg := range s.registry.Buckets() {
		items, err := s.store.ListRange(ctx, cfg, dateRange)
		if err != nil {
			return nil, apperr.Storage("failed to fetch content plan", err)
		}
		if items == nil {
			items = []Item{}
		}
		switch cfg.Bucket {
		case BucketEvents:
			payload.Events = items
		case BucketInstagram:
			payload.Instagram = items
		case BucketTelegram:
			payload.Telegram = items
		}
	}
	return payload, nil
}

// Create inserts a new item into bucket on behalf of actor.
func (s *Service) Create(ctx context.Context, actor roles.Role, bucket string, raw map[string]any) (Item, error) {
	cfg, err := s.writableBucket(actor, bucket)
	if err != nil {
		return Item{}, err
	}

	values, err := NormalizePayload(cfg.Fields, raw, false)
	if err != nil {
		return Item{}, err
	}

	item, err := s.store.Insert(ctx, cfg, values)
	if errors.Is(err, ErrEventMissing) {
		return Item{}, apperr.Validation("event link references a missing event")
	}
	if err != nil {
		return Item{}, apperr.Storage("failed to create content plan item", err)
	}

	s.notify(ctx, actor, "created", cfg.Bucket, item.ID)
	return item, nil
}

// Update applies a partial update to an existing item.
func (s *Service) Update(ctx context.Context, actor roles.Role, bucket, rawID string, raw map[string]any) (Item, error) {
	cfg, err := s.writableBucket(actor, bucket)
	if err != nil {
		return Item{}, err
	}

	id, err := parseItemID(rawID)
	if err != nil {
		return Item{}, err
	}

	values, err := NormalizePayload(cfg.Fields, raw, true)
	if err != nil {
		return Item{}, err
	}

	item, found, err := s.store.Update(ctx, cfg, id, values)
	if errors.Is(err, ErrEventMissing) {
		return Item{}, apperr.Validation("event link references a missing event")
	}
	if err != nil {
		return Item{}, apperr.Storage("failed to update content plan item", err)
	}
	if !found {
		return Item{}, apperr.NotFound("item not found")
	}

	s.notify(ctx, actor, "updated", cfg.Bucket, item.ID)
	return item, nil
}

// Remove deletes an item.
func (s *Service) Remove(ctx context.Context, actor roles.Role, bucket, rawID string) error {
	cfg, err := s.writableBucket(actor, bucket)
	if err != nil {
		return err
	}

	id, err := parseItemID(rawID)
	if err != nil {
		return err
	}

	removed, err := s.store.Delete(ctx, cfg, id)
	if err != nil {
		return apperr.Storage("failed to delete content plan item", err)
	}
	if !removed {
		return apperr.NotFound("item not found")
	}

	s.notify(ctx, actor, "deleted", cfg.Bucket, id)
	return nil
}

// writableBucket resolves bucket and gates actor before any storage access.
// Unknown bucket wins over the role check.
func (s *Service) writableBucket(actor roles.Role, bucket string) (*BucketConfig, error) {
	cfg := s.registry.Lookup(bucket)
	if cfg == nil {
		return nil, apperr.NotFound("unknown content plan bucket")
	}
	if !cfg.CanManage(actor) {
		return nil, apperr.Forbidden("insufficient permissions to modify content plan entries")
	}
	return cfg, nil
}

func (s *Service) notify(ctx context.Context, actor roles.Role, action string, bucket Bucket, id int) {
	if s.stream == nil {
		return
	}
	change := events.Change{
		Channel: string(bucket),
		ID:      id,
		Action:  action,
		Actor:   string(actor),
	}
	if _, err := s.stream.PublishChange(ctx, change); err != nil {
		s.log.Warn("Failed to publish content plan change",
			"channel", change.Channel,
			"id", change.ID,
			"action", change.Action,
			"error", err.Error(),
		)
	}
}

func parseItemID(raw string) (int, error) {
	id, err := strconv.Atoi(trim(raw))
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid item id")
	}
	return id, nil
}
