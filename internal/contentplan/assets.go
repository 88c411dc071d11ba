package contentplan

import (
	"context"
	"errors"
	"time"

	"github.com/teamplan/planboard/internal/apperr"
	"github.com/teamplan/planboard/internal/roles"
)

// ListAssets returns the assets of a publication, newest first.
func (s *Service) ListAssets(ctx context.Context, bucket, rawID string) ([]Asset, error) {
	cfg, id, err := s.resolvePublication(bucket, rawID)
	if err != nil {
		return nil, err
	}
	if err := s.requireItem(ctx, cfg, id); err != nil {
		return nil, err
	}

	assets, err := s.store.ListAssets(ctx, cfg.Bucket, id)
	if err != nil {
		return nil, apperr.Storage("failed to fetch assets", err)
	}
	if assets == nil {
		assets = []Asset{}
	}
	return assets, nil
}

// CreateAsset attaches a new asset to a publication.
func (s *Service) CreateAsset(ctx context.Context, actor roles.Role, bucket, rawID string, raw map[string]any) (Asset, error) {
	cfg, id, err := s.resolvePublication(bucket, rawID)
	if err != nil {
		return Asset{}, err
	}
	if !cfg.CanManage(actor) {
		return Asset{}, apperr.Forbidden("insufficient permissions to modify content plan entries")
	}

	input, err := normalizeAssetInput(raw)
	if err != nil {
		return Asset{}, err
	}

	if err := s.requireItem(ctx, cfg, id); err != nil {
		return Asset{}, err
	}

	asset, err := s.store.InsertAsset(ctx, cfg.Bucket, id, input)
	if err != nil {
		return Asset{}, apperr.Storage("failed to create asset", err)
	}
	return asset, nil
}

// RemoveAsset deletes an asset only when the (asset, channel, content)
// triple matches exactly.
func (s *Service) RemoveAsset(ctx context.Context, actor roles.Role, bucket, rawID, rawAssetID string) error {
	cfg, id, err := s.resolvePublication(bucket, rawID)
	if err != nil {
		return err
	}
	if !cfg.CanManage(actor) {
		return apperr.Forbidden("insufficient permissions to modify content plan entries")
	}

	assetID, err := parseItemID(rawAssetID)
	if err != nil {
		return apperr.Validation("invalid asset id")
	}

	if err := s.requireItem(ctx, cfg, id); err != nil {
		return err
	}

	removed, err := s.store.DeleteAsset(ctx, cfg.Bucket, id, assetID)
	if err != nil {
		return apperr.Storage("failed to delete asset", err)
	}
	if !removed {
		return apperr.NotFound("asset not found")
	}
	return nil
}

// ListLinkedTasks returns the tasks linked to a publication, annotated with
// linkedAt. Links whose task has been deleted or no longer validates are
// silently filtered out.
func (s *Service) ListLinkedTasks(ctx context.Context, bucket, rawID string) ([]LinkedTask, error) {
	cfg, id, err := s.resolvePublication(bucket, rawID)
	if err != nil {
		return nil, err
	}
	if err := s.requireItem(ctx, cfg, id); err != nil {
		return nil, err
	}

	rows, err := s.store.ListTaskLinks(ctx, cfg.Bucket, id)
	if err != nil {
		return nil, apperr.Storage("failed to fetch linked tasks", err)
	}

	tasks := make([]LinkedTask, 0, len(rows))
	for _, row := range rows {
		doc, ok := s.tasks.Decode(row.Payload)
		if !ok {
			continue
		}
		tasks = append(tasks, annotateTask(doc, row.LinkedAt))
	}
	return tasks, nil
}

// LinkTask associates an existing task with a publication. Linking the same
// task twice is a conflict, not a silent no-op.
func (s *Service) LinkTask(ctx context.Context, actor roles.Role, bucket, rawID, taskID string) (LinkedTask, error) {
	cfg, id, err := s.resolvePublication(bucket, rawID)
	if err != nil {
		return nil, err
	}
	if !cfg.CanManage(actor) {
		return nil, apperr.Forbidden("insufficient permissions to modify content plan entries")
	}

	taskID = trim(taskID)
	if taskID == "" {
		return nil, apperr.Validation("task id is required")
	}

	if err := s.requireItem(ctx, cfg, id); err != nil {
		return nil, err
	}

	task, found, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperr.Storage("failed to look up task", err)
	}
	if !found {
		return nil, apperr.NotFound("task not found")
	}

	linkedAt, err := s.store.InsertTaskLink(ctx, cfg.Bucket, id, taskID)
	if errors.Is(err, ErrAlreadyLinked) {
		return nil, apperr.Conflict("task already linked to this publication")
	}
	if err != nil {
		return nil, apperr.Storage("failed to link task", err)
	}

	return annotateTask(task, linkedAt), nil
}

// UnlinkTask removes a task association.
func (s *Service) UnlinkTask(ctx context.Context, actor roles.Role, bucket, rawID, taskID string) error {
	cfg, id, err := s.resolvePublication(bucket, rawID)
	if err != nil {
		return err
	}
	if !cfg.CanManage(actor) {
		return apperr.Forbidden("insufficient permissions to modify content plan entries")
	}

	taskID = trim(taskID)
	if taskID == "" {
		return apperr.Validation("task id is required")
	}

	if err := s.requireItem(ctx, cfg, id); err != nil {
		return err
	}

	removed, err := s.store.DeleteTaskLink(ctx, cfg.Bucket, id, taskID)
	if err != nil {
		return apperr.Storage("failed to unlink task", err)
	}
	if !removed {
		return apperr.NotFound("task link not found")
	}
	return nil
}

// resolvePublication gates the bucket and id checks shared by all asset and
// task-link operations. Events never carry assets or links.
func (s *Service) resolvePublication(bucket, rawID string) (*BucketConfig, int, error) {
	cfg := s.registry.Lookup(bucket)
	if cfg == nil {
		return nil, 0, apperr.NotFound("unknown content plan bucket")
	}
	if !cfg.IsPublication() {
		return nil, 0, apperr.Validation("operation only available for publications")
	}
	id, err := parseItemID(rawID)
	if err != nil {
		return nil, 0, err
	}
	return cfg, id, nil
}

func (s *Service) requireItem(ctx context.Context, cfg *BucketConfig, id int) error {
	_, found, err := s.store.Find(ctx, cfg, id)
	if err != nil {
		return apperr.Storage("failed to fetch content plan item", err)
	}
	if !found {
		return apperr.NotFound("item not found")
	}
	return nil
}

func annotateTask(doc map[string]any, linkedAt time.Time) LinkedTask {
	task := make(LinkedTask, len(doc)+1)
	for key, value := range doc {
		task[key] = value
	}
	task["linkedAt"] = linkedAt.UTC().Format(time.RFC3339Nano)
	return task
}

func normalizeAssetInput(raw map[string]any) (AssetInput, error) {
	title := trim(stringify(raw["title"]))
	if title == "" {
		return AssetInput{}, apperr.Validation(`field "title" is required`)
	}

	input := AssetInput{Title: title}
	if url := trim(stringify(raw["url"])); url != "" {
		input.URL = &url
	}
	if notes := trim(stringify(raw["notes"])); notes != "" {
		input.Notes = &notes
	}
	return input, nil
}
