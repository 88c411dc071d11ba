package contentplan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/teamplan/planboard/internal/models"
)

// Storage-level outcomes the service translates into API errors.
var (
	// ErrAlreadyLinked reports that the (task, channel, content) triple is
	// already present.
	ErrAlreadyLinked = errors.New("task already linked")
	// ErrEventMissing reports a rejected event_id foreign reference.
	ErrEventMissing = errors.New("event link references a missing event")
)

// TaskLinkRow is one row of the link-to-task join. Payload is nil when the
// underlying task no longer exists (stale link entries are tolerated).
type TaskLinkRow struct {
	TaskID   string
	LinkedAt time.Time
	Payload  datatypes.JSON
}

// Store is the persistence boundary of the content plan. The gorm
// implementation is the real one; tests substitute spies.
type Store interface {
	ListRange(ctx context.Context, cfg *BucketConfig, r DateRange) ([]Item, error)
	Insert(ctx context.Context, cfg *BucketConfig, values map[string]any) (Item, error)
	Update(ctx context.Context, cfg *BucketConfig, id int, values map[string]any) (Item, bool, error)
	Delete(ctx context.Context, cfg *BucketConfig, id int) (bool, error)
	Find(ctx context.Context, cfg *BucketConfig, id int) (Item, bool, error)

	ListAssets(ctx context.Context, channel Bucket, contentID int) ([]Asset, error)
	InsertAsset(ctx context.Context, channel Bucket, contentID int, input AssetInput) (Asset, error)
	DeleteAsset(ctx context.Context, channel Bucket, contentID, assetID int) (bool, error)

	ListTaskLinks(ctx context.Context, channel Bucket, contentID int) ([]TaskLinkRow, error)
	InsertTaskLink(ctx context.Context, channel Bucket, contentID int, taskID string) (time.Time, error)
	DeleteTaskLink(ctx context.Context, channel Bucket, contentID int, taskID string) (bool, error)
}

// GormStore implements Store on PostgreSQL via GORM. Item statements are
// built from the bucket's field schema; identifiers come from the registry
// only, values are always bound parameters.
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a GormStore.
func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListRange(ctx context.Context, cfg *BucketConfig, r DateRange) ([]Item, error) {
	var rows []map[string]any
	err := s.db.WithContext(ctx).
		Table(cfg.Table).
		Where("date >= ? AND date <= ?", r.From, r.To).
		Order("date ASC, time ASC NULLS LAST, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapRow(cfg.Bucket, row))
	}
	return items, nil
}

func (s *GormStore) Insert(ctx context.Context, cfg *BucketConfig, values map[string]any) (Item, error) {
	columns := make([]string, 0, len(cfg.Fields))
	placeholders := make([]string, 0, len(cfg.Fields))
	args := make([]any, 0, len(cfg.Fields))
	for _, field := range cfg.Fields {
		columns = append(columns, field.Name)
		placeholders = append(placeholders, "?")
		args = append(args, values[field.Name])
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		cfg.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)

	row := map[string]any{}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		if isForeignKeyViolation(err) {
			return Item{}, ErrEventMissing
		}
		return Item{}, err
	}
	return mapRow(cfg.Bucket, row), nil
}

func (s *GormStore) Update(ctx context.Context, cfg *BucketConfig, id int, values map[string]any) (Item, bool, error) {
	assignments := make([]string, 0, len(values))
	args := make([]any, 0, len(values)+1)
	// Iterate the schema, not the map, to keep column order deterministic.
	for _, field := range cfg.Fields {
		value, ok := values[field.Name]
		if !ok {
			continue
		}
		assignments = append(assignments, field.Name+" = ?")
		args = append(args, value)
	}
	if len(assignments) == 0 {
		return Item{}, false, nil
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = NOW() WHERE id = ? RETURNING *",
		cfg.Table, strings.Join(assignments, ", "),
	)

	row := map[string]any{}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		if isForeignKeyViolation(err) {
			return Item{}, false, ErrEventMissing
		}
		return Item{}, false, err
	}
	if len(row) == 0 {
		return Item{}, false, nil
	}
	return mapRow(cfg.Bucket, row), true, nil
}

func (s *GormStore) Delete(ctx context.Context, cfg *BucketConfig, id int) (bool, error) {
	result := s.db.WithContext(ctx).Exec(
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", cfg.Table), id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) Find(ctx context.Context, cfg *BucketConfig, id int) (Item, bool, error) {
	row := map[string]any{}
	err := s.db.WithContext(ctx).Raw(
		fmt.Sprintf("SELECT * FROM %s WHERE id = ? LIMIT 1", cfg.Table), id,
	).Scan(&row).Error
	if err != nil {
		return Item{}, false, err
	}
	if len(row) == 0 {
		return Item{}, false, nil
	}
	return mapRow(cfg.Bucket, row), true, nil
}

func (s *GormStore) ListAssets(ctx context.Context, channel Bucket, contentID int) ([]Asset, error) {
	var rows []models.ContentAsset
	err := s.db.WithContext(ctx).
		Where("channel = ? AND content_id = ?", string(channel), contentID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	assets := make([]Asset, 0, len(rows))
	for _, row := range rows {
		assets = append(assets, mapAsset(row))
	}
	return assets, nil
}

func (s *GormStore) InsertAsset(ctx context.Context, channel Bucket, contentID int, input AssetInput) (Asset, error) {
	asset := models.ContentAsset{
		Channel:   string(channel),
		ContentID: contentID,
		Title:     input.Title,
		URL:       input.URL,
		Notes:     input.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&asset).Error; err != nil {
		return Asset{}, err
	}
	return mapAsset(asset), nil
}

func (s *GormStore) DeleteAsset(ctx context.Context, channel Bucket, contentID, assetID int) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND channel = ? AND content_id = ?", assetID, string(channel), contentID).
		Delete(&models.ContentAsset{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) ListTaskLinks(ctx context.Context, channel Bucket, contentID int) ([]TaskLinkRow, error) {
	var rows []TaskLinkRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT ctl.task_id, ctl.created_at AS linked_at, t.payload
		FROM content_task_links ctl
		LEFT JOIN tasks t ON t.id = ctl.task_id
		WHERE ctl.channel = ? AND ctl.content_id = ?
		ORDER BY ctl.created_at DESC, ctl.id DESC
	`, string(channel), contentID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertTaskLink is an explicit insert-if-absent. The unique constraint
// settles concurrent races; whichever insert loses maps to ErrAlreadyLinked.
func (s *GormStore) InsertTaskLink(ctx context.Context, channel Bucket, contentID int, taskID string) (time.Time, error) {
	var link models.ContentTaskLink
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.ContentTaskLink{}).
			Where("task_id = ? AND channel = ? AND content_id = ?", taskID, string(channel), contentID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyLinked
		}

		link = models.ContentTaskLink{
			TaskID:    taskID,
			Channel:   string(channel),
			ContentID: contentID,
		}
		if err := tx.Create(&link).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrAlreadyLinked
			}
			return err
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return link.CreatedAt, nil
}

func (s *GormStore) DeleteTaskLink(ctx context.Context, channel Bucket, contentID int, taskID string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("task_id = ? AND channel = ? AND content_id = ?", taskID, string(channel), contentID).
		Delete(&models.ContentTaskLink{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// mapRow converts a scanned row into the channel-discriminated API shape.
func mapRow(bucket Bucket, row map[string]any) Item {
	item := Item{
		ID:          asInt(row["id"]),
		Title:       asString(row["title"]),
		Description: asStringPtr(row["description"]),
		Date:        asString(row["date"]),
		Time:        asStringPtr(row["time"]),
		Type:        asStringPtr(row["type"]),
		Channel:     bucket,
		CreatedAt:   asTimePtr(row["created_at"]),
		UpdatedAt:   asTimePtr(row["updated_at"]),
	}
	if bucket == BucketEvents {
		item.Location = asStringPtr(row["location"])
	} else {
		item.Status = asStringPtr(row["status"])
		item.EventID = asInt64Ptr(row["event_id"])
	}
	return item
}

func mapAsset(asset models.ContentAsset) Asset {
	return Asset{
		ID:        int(asset.ID),
		Title:     asset.Title,
		URL:       asset.URL,
		Notes:     asset.Notes,
		Channel:   asset.Channel,
		ContentID: asset.ContentID,
		CreatedAt: asset.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: asset.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key value")
}

func isForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) ||
		strings.Contains(err.Error(), "23503") ||
		strings.Contains(err.Error(), "foreign key constraint")
}

func asString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func asStringPtr(value any) *string {
	if s, ok := value.(string); ok {
		return &s
	}
	return nil
}

func asInt(value any) int {
	switch v := value.(type) {
	case int64:
		return int(v)
	case int32:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func asInt64Ptr(value any) *int64 {
	switch v := value.(type) {
	case nil:
		return nil
	case int64:
		return &v
	case int32:
		n := int64(v)
		return &n
	case int:
		n := int64(v)
		return &n
	}
	return nil
}

func asTimePtr(value any) *time.Time {
	if ts, ok := value.(time.Time); ok {
		return &ts
	}
	return nil
}
