package contentplan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/teamplan/planboard/internal/apperr"
)

var (
	timePattern         = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	halfHourTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):(00|30)$`)
)

// FieldKind selects the validation rule applied to a payload field.
type FieldKind int

const (
	// FieldText is free text, trimmed; empty optional text stores NULL.
	FieldText FieldKind = iota
	// FieldDate requires the canonical YYYY-MM-DD form.
	FieldDate
	// FieldTime requires HH:MM, optionally restricted to half-hour slots.
	FieldTime
	// FieldEventRef is a nullable positive-integer reference to an events
	// row. Existence is enforced by the foreign key, not here.
	FieldEventRef
)

// FieldSpec describes one column of a bucket: how to validate it and how it
// appears in payloads. The ordered spec list doubles as the column list for
// generic insert and update statements.
type FieldSpec struct {
	// Name is both the column name and the payload key.
	Name string
	Kind FieldKind
	// Aliases are alternate payload keys (eventId for event_id).
	Aliases  []string
	Required bool
	// HalfHour restricts FieldTime values to :00 and :30.
	HalfHour bool
}

// NormalizePayload validates raw input against fields and returns the
// canonical column map. In create mode every field is present in the result
// (optional ones as NULL) so stored rows keep a stable shape. In partial
// mode only supplied fields are returned, and an empty result is an error.
// Normalizing an already-normalized payload yields the same map.
func NormalizePayload(fields []FieldSpec, raw map[string]any, partial bool) (map[string]any, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	values := make(map[string]any, len(fields))
	for _, field := range fields {
		supplied, present := lookupField(raw, field)
		if partial && !present {
			continue
		}

		value, err := normalizeField(field, supplied)
		if err != nil {
			return nil, err
		}
		values[field.Name] = value
	}

	if partial && len(values) == 0 {
		return nil, apperr.Validation("nothing to update")
	}

	return values, nil
}

func lookupField(raw map[string]any, field FieldSpec) (any, bool) {
	if value, ok := raw[field.Name]; ok {
		return value, true
	}
	for _, alias := range field.Aliases {
		if value, ok := raw[alias]; ok {
			return value, true
		}
	}
	return nil, false
}

func normalizeField(field FieldSpec, value any) (any, error) {
	switch field.Kind {
	case FieldDate:
		date, ok := normalizeISODate(stringify(value))
		if !ok {
			return nil, apperr.Validation("invalid date, expected YYYY-MM-DD format")
		}
		return date, nil

	case FieldTime:
		raw := trim(stringify(value))
		if raw == "" {
			return nil, nil
		}
		pattern := timePattern
		if field.HalfHour {
			pattern = halfHourTimePattern
		}
		if !pattern.MatchString(raw) {
			return nil, apperr.Validation("invalid time format, expected HH:MM")
		}
		return raw, nil

	case FieldEventRef:
		return normalizeEventRef(value)

	default:
		text := trim(stringify(value))
		if text == "" {
			if field.Required {
				return nil, apperr.Validation("field %q is required", field.Name)
			}
			return nil, nil
		}
		return text, nil
	}
}

// normalizeEventRef maps empty input to NULL (clearing the link) and
// otherwise requires a positive integer.
func normalizeEventRef(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		if v <= 0 || v != float64(int64(v)) {
			return nil, apperr.Validation("invalid event link")
		}
		return int64(v), nil
	case int:
		if v <= 0 {
			return nil, apperr.Validation("invalid event link")
		}
		return int64(v), nil
	case int64:
		if v <= 0 {
			return nil, apperr.Validation("invalid event link")
		}
		return v, nil
	case string:
		raw := trim(v)
		if raw == "" {
			return nil, nil
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, apperr.Validation("invalid event link")
		}
		return id, nil
	default:
		return nil, apperr.Validation("invalid event link")
	}
}

// stringify renders scalar JSON values the way the payloads supply them.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func trim(value string) string {
	return strings.TrimSpace(value)
}
