package contentplan

import (
	"encoding/json"
	"time"
)

// Item is the channel-discriminated API rendering of a content-plan row.
// Events carry location; publications carry status and eventId. Clients
// consuming the unified collection switch on the channel tag.
type Item struct {
	ID          int
	Title       string
	Description *string
	Date        string
	Time        *string
	Type        *string
	Channel     Bucket
	Location    *string
	Status      *string
	EventID     *int64
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

// MarshalJSON renders only the fields that belong to the item's channel, so
// an event never exposes status/eventId and a publication never exposes
// location, while channel-owned null fields stay visible.
func (i Item) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":          i.ID,
		"title":       i.Title,
		"description": i.Description,
		"date":        i.Date,
		"time":        i.Time,
		"type":        i.Type,
		"channel":     i.Channel,
		"createdAt":   isoTimestamp(i.CreatedAt),
		"updatedAt":   isoTimestamp(i.UpdatedAt),
	}
	if i.Channel == BucketEvents {
		out["location"] = i.Location
	} else {
		out["status"] = i.Status
		out["eventId"] = i.EventID
	}
	return json.Marshal(out)
}

// RangePayload is the aggregated response of a content-plan read.
type RangePayload struct {
	Range     DateRange `json:"range"`
	Events    []Item    `json:"events"`
	Instagram []Item    `json:"instagram"`
	Telegram  []Item    `json:"telegram"`
}

// Asset is the API rendering of a content asset row.
type Asset struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	URL       *string `json:"url"`
	Notes     *string `json:"notes"`
	Channel   string  `json:"channel"`
	ContentID int     `json:"contentId"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// AssetInput is a validated asset creation payload.
type AssetInput struct {
	Title string
	URL   *string
	Notes *string
}

// LinkedTask is a task document annotated with the moment it was linked to
// the publication.
type LinkedTask map[string]any

func isoTimestamp(ts *time.Time) *string {
	if ts == nil {
		return nil
	}
	value := ts.UTC().Format(time.RFC3339Nano)
	return &value
}
