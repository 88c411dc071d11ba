package contentplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamplan/planboard/internal/apperr"
)

func publicationSpec(t *testing.T) []FieldSpec {
	t.Helper()
	cfg := NewRegistry().Lookup("instagram")
	require.NotNil(t, cfg)
	return cfg.Fields
}

func eventSpec(t *testing.T) []FieldSpec {
	t.Helper()
	cfg := NewRegistry().Lookup("events")
	require.NotNil(t, cfg)
	return cfg.Fields
}

func TestNormalizePayloadCreateFillsOptionalFields(t *testing.T) {
	values, err := NormalizePayload(eventSpec(t), map[string]any{
		"title": "  Open Day  ",
		"date":  "2025-03-01",
		"type":  "offline",
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "Open Day", values["title"])
	assert.Equal(t, "2025-03-01", values["date"])
	assert.Equal(t, "offline", values["type"])

	// Optional fields are present as NULL so stored rows keep a stable
	// shape.
	for _, name := range []string{"description", "time", "location"} {
		got, ok := values[name]
		require.True(t, ok, "missing %s", name)
		assert.Nil(t, got)
	}
}

func TestNormalizePayloadIdempotent(t *testing.T) {
	first, err := NormalizePayload(publicationSpec(t), map[string]any{
		"title":  "Post",
		"date":   "2025-03-01",
		"time":   "10:30",
		"status": "draft",
	}, false)
	require.NoError(t, err)

	second, err := NormalizePayload(publicationSpec(t), first, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizePayloadMissingTitle(t *testing.T) {
	_, err := NormalizePayload(eventSpec(t), map[string]any{
		"date": "2025-03-01",
		"type": "offline",
	}, false)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, `field "title" is required`, apperr.Message(err))
}

func TestNormalizePayloadDateValidation(t *testing.T) {
	tests := []struct {
		name string
		date any
	}{
		{"missing", nil},
		{"wrong layout", "01-03-2025"},
		{"not a date", "soon"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := map[string]any{"title": "Open Day", "type": "offline"}
			if tc.date != nil {
				raw["date"] = tc.date
			}
			_, err := NormalizePayload(eventSpec(t), raw, false)
			require.Error(t, err)
			assert.Equal(t, "invalid date, expected YYYY-MM-DD format", apperr.Message(err))
		})
	}
}

func TestNormalizePayloadEventTimeAnyMinute(t *testing.T) {
	values, err := NormalizePayload(eventSpec(t), map[string]any{
		"title": "Open Day",
		"date":  "2025-03-01",
		"time":  "10:15",
		"type":  "offline",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "10:15", values["time"])
}

func TestNormalizePayloadPublicationTimeHalfHourOnly(t *testing.T) {
	base := map[string]any{"title": "Post", "date": "2025-03-01"}

	for _, good := range []string{"00:00", "10:30", "23:00"} {
		raw := map[string]any{"time": good}
		for k, v := range base {
			raw[k] = v
		}
		values, err := NormalizePayload(publicationSpec(t), raw, false)
		require.NoError(t, err, "time %s", good)
		assert.Equal(t, good, values["time"])
	}

	for _, bad := range []string{"10:15", "24:00", "9:30", "10:60"} {
		raw := map[string]any{"time": bad}
		for k, v := range base {
			raw[k] = v
		}
		_, err := NormalizePayload(publicationSpec(t), raw, false)
		require.Error(t, err, "time %s", bad)
		assert.Equal(t, "invalid time format, expected HH:MM", apperr.Message(err))
	}
}

func TestNormalizePayloadEmptyTimeClearsSlot(t *testing.T) {
	values, err := NormalizePayload(publicationSpec(t), map[string]any{"time": "  "}, true)
	require.NoError(t, err)
	got, ok := values["time"]
	require.True(t, ok)
	assert.Nil(t, got)
}

func TestNormalizePayloadEventRef(t *testing.T) {
	spec := publicationSpec(t)

	t.Run("camel case alias", func(t *testing.T) {
		values, err := NormalizePayload(spec, map[string]any{"eventId": float64(7)}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(7), values["event_id"])
	})

	t.Run("snake case wins alias", func(t *testing.T) {
		values, err := NormalizePayload(spec, map[string]any{
			"event_id": float64(3),
			"eventId":  float64(9),
		}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(3), values["event_id"])
	})

	t.Run("null clears the link", func(t *testing.T) {
		values, err := NormalizePayload(spec, map[string]any{"event_id": nil}, true)
		require.NoError(t, err)
		got, ok := values["event_id"]
		require.True(t, ok)
		assert.Nil(t, got)
	})

	t.Run("numeric string", func(t *testing.T) {
		values, err := NormalizePayload(spec, map[string]any{"event_id": "12"}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(12), values["event_id"])
	})

	for _, bad := range []any{float64(0), float64(-1), float64(2.5), "abc", true} {
		_, err := NormalizePayload(spec, map[string]any{"event_id": bad}, true)
		require.Error(t, err, "value %v", bad)
		assert.Equal(t, "invalid event link", apperr.Message(err))
	}
}

func TestNormalizePayloadPartial(t *testing.T) {
	t.Run("only supplied fields", func(t *testing.T) {
		values, err := NormalizePayload(publicationSpec(t), map[string]any{"status": "published"}, true)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"status": "published"}, values)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		_, err := NormalizePayload(publicationSpec(t), map[string]any{}, true)
		require.Error(t, err)
		assert.Equal(t, "nothing to update", apperr.Message(err))
	})

	t.Run("unknown fields ignored", func(t *testing.T) {
		_, err := NormalizePayload(publicationSpec(t), map[string]any{"color": "red"}, true)
		require.Error(t, err)
		assert.Equal(t, "nothing to update", apperr.Message(err))
	})
}
