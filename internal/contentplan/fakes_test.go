package contentplan

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/teamplan/planboard/internal/events"
)

// fakeStore is an in-memory Store spy. Tests assert on calls to verify
// that gating short-circuits before any storage access.
type fakeStore struct {
	calls []string

	items  map[Bucket]map[int]Item
	nextID int

	assets      map[string][]Asset
	nextAssetID int

	links map[string][]TaskLinkRow

	failWith     error
	rejectEvents bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:  map[Bucket]map[int]Item{},
		assets: map[string][]Asset{},
		links:  map[string][]TaskLinkRow{},
	}
}

func (f *fakeStore) record(method string) {
	f.calls = append(f.calls, method)
}

func (f *fakeStore) called(method string) bool {
	for _, call := range f.calls {
		if call == method {
			return true
		}
	}
	return false
}

func subKey(channel Bucket, contentID int) string {
	return fmt.Sprintf("%s/%d", channel, contentID)
}

func (f *fakeStore) seedItem(bucket Bucket, item Item) Item {
	f.nextID++
	item.ID = f.nextID
	item.Channel = bucket
	if f.items[bucket] == nil {
		f.items[bucket] = map[int]Item{}
	}
	f.items[bucket][item.ID] = item
	return item
}

func (f *fakeStore) ListRange(ctx context.Context, cfg *BucketConfig, r DateRange) ([]Item, error) {
	f.record("ListRange")
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []Item
	for _, item := range f.items[cfg.Bucket] {
		if item.Date >= r.From && item.Date <= r.To {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeStore) Insert(ctx context.Context, cfg *BucketConfig, values map[string]any) (Item, error) {
	f.record("Insert")
	if f.failWith != nil {
		return Item{}, f.failWith
	}
	if f.rejectEvents && values["event_id"] != nil {
		return Item{}, ErrEventMissing
	}
	return f.seedItem(cfg.Bucket, itemFromValues(cfg.Bucket, values)), nil
}

func (f *fakeStore) Update(ctx context.Context, cfg *BucketConfig, id int, values map[string]any) (Item, bool, error) {
	f.record("Update")
	if f.failWith != nil {
		return Item{}, false, f.failWith
	}
	if f.rejectEvents && values["event_id"] != nil {
		return Item{}, false, ErrEventMissing
	}
	item, ok := f.items[cfg.Bucket][id]
	if !ok {
		return Item{}, false, nil
	}
	applyValues(&item, values)
	f.items[cfg.Bucket][id] = item
	return item, true, nil
}

func (f *fakeStore) Delete(ctx context.Context, cfg *BucketConfig, id int) (bool, error) {
	f.record("Delete")
	if f.failWith != nil {
		return false, f.failWith
	}
	if _, ok := f.items[cfg.Bucket][id]; !ok {
		return false, nil
	}
	delete(f.items[cfg.Bucket], id)
	return true, nil
}

func (f *fakeStore) Find(ctx context.Context, cfg *BucketConfig, id int) (Item, bool, error) {
	f.record("Find")
	if f.failWith != nil {
		return Item{}, false, f.failWith
	}
	item, ok := f.items[cfg.Bucket][id]
	return item, ok, nil
}

func (f *fakeStore) ListAssets(ctx context.Context, channel Bucket, contentID int) ([]Asset, error) {
	f.record("ListAssets")
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.assets[subKey(channel, contentID)], nil
}

func (f *fakeStore) InsertAsset(ctx context.Context, channel Bucket, contentID int, input AssetInput) (Asset, error) {
	f.record("InsertAsset")
	if f.failWith != nil {
		return Asset{}, f.failWith
	}
	f.nextAssetID++
	asset := Asset{
		ID:        f.nextAssetID,
		Title:     input.Title,
		URL:       input.URL,
		Notes:     input.Notes,
		Channel:   string(channel),
		ContentID: contentID,
	}
	key := subKey(channel, contentID)
	f.assets[key] = append(f.assets[key], asset)
	return asset, nil
}

func (f *fakeStore) DeleteAsset(ctx context.Context, channel Bucket, contentID, assetID int) (bool, error) {
	f.record("DeleteAsset")
	if f.failWith != nil {
		return false, f.failWith
	}
	key := subKey(channel, contentID)
	for i, asset := range f.assets[key] {
		if asset.ID == assetID {
			f.assets[key] = append(f.assets[key][:i], f.assets[key][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListTaskLinks(ctx context.Context, channel Bucket, contentID int) ([]TaskLinkRow, error) {
	f.record("ListTaskLinks")
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.links[subKey(channel, contentID)], nil
}

func (f *fakeStore) InsertTaskLink(ctx context.Context, channel Bucket, contentID int, taskID string) (time.Time, error) {
	f.record("InsertTaskLink")
	if f.failWith != nil {
		return time.Time{}, f.failWith
	}
	key := subKey(channel, contentID)
	for _, row := range f.links[key] {
		if row.TaskID == taskID {
			return time.Time{}, ErrAlreadyLinked
		}
	}
	linkedAt := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	f.links[key] = append(f.links[key], TaskLinkRow{TaskID: taskID, LinkedAt: linkedAt})
	return linkedAt, nil
}

func (f *fakeStore) DeleteTaskLink(ctx context.Context, channel Bucket, contentID int, taskID string) (bool, error) {
	f.record("DeleteTaskLink")
	if f.failWith != nil {
		return false, f.failWith
	}
	key := subKey(channel, contentID)
	for i, row := range f.links[key] {
		if row.TaskID == taskID {
			f.links[key] = append(f.links[key][:i], f.links[key][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func itemFromValues(bucket Bucket, values map[string]any) Item {
	item := Item{Channel: bucket}
	applyValues(&item, values)
	return item
}

func applyValues(item *Item, values map[string]any) {
	for name, value := range values {
		switch name {
		case "title":
			if s, ok := value.(string); ok {
				item.Title = s
			}
		case "description":
			item.Description = toStringPtr(value)
		case "date":
			if s, ok := value.(string); ok {
				item.Date = s
			}
		case "time":
			item.Time = toStringPtr(value)
		case "type":
			item.Type = toStringPtr(value)
		case "location":
			item.Location = toStringPtr(value)
		case "status":
			item.Status = toStringPtr(value)
		case "event_id":
			if id, ok := value.(int64); ok {
				item.EventID = &id
			} else {
				item.EventID = nil
			}
		}
	}
}

func toStringPtr(value any) *string {
	if s, ok := value.(string); ok {
		return &s
	}
	return nil
}

// fakeTasks is an in-memory TaskLookup.
type fakeTasks struct {
	docs map[string]map[string]any
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{docs: map[string]map[string]any{}}
}

func (f *fakeTasks) GetByID(ctx context.Context, id string) (map[string]any, bool, error) {
	doc, ok := f.docs[id]
	return doc, ok, nil
}

func (f *fakeTasks) Decode(payload []byte) (map[string]any, bool) {
	if len(payload) == 0 {
		return nil, false
	}
	var doc map[string]any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, false
	}
	return doc, true
}

// fakeStream records published changes.
type fakeStream struct {
	changes []events.Change
}

func (f *fakeStream) PublishChange(ctx context.Context, change events.Change) (string, error) {
	f.changes = append(f.changes, change)
	return "1-0", nil
}

func mustJSON(doc map[string]any) datatypes.JSON {
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(raw)
}
