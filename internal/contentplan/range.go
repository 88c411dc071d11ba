package contentplan

import (
	"regexp"
	"strconv"
	"time"

	"github.com/teamplan/planboard/internal/apperr"
)

var isoDatePattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)

// Layouts accepted for non-canonical date inputs, normalized to YYYY-MM-DD.
var looseDateLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02.01.2006",
}

// RangeQuery carries the raw query parameters of a content-plan read.
type RangeQuery struct {
	From  string
	To    string
	Month string
	Year  string
}

// DateRange is the inclusive [from, to] window used to filter reads. Never
// persisted; computed per request.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ResolveRange produces a validated date range from query parameters.
// Explicit from/to win; otherwise month/year select a calendar month;
// otherwise the current month of now is used. The inclusive span is capped
// at maxDays.
func ResolveRange(q RangeQuery, now time.Time, maxDays int) (DateRange, error) {
	from, fromOK := normalizeISODate(q.From)
	to, toOK := normalizeISODate(q.To)

	if (!fromOK || !toOK) && (q.Month != "" || q.Year != "") {
		monthFrom, monthTo, err := monthRange(q.Month, q.Year)
		if err != nil {
			return DateRange{}, err
		}
		from, to = monthFrom, monthTo
	} else if !fromOK || !toOK {
		from, to = currentMonthRange(now)
	}

	if from > to {
		return DateRange{}, apperr.Validation("start date after end date")
	}
	if daysBetween(from, to) > maxDays {
		return DateRange{}, apperr.Validation("date range too large, maximum %d days", maxDays)
	}

	return DateRange{From: from, To: to}, nil
}

// normalizeISODate returns the canonical YYYY-MM-DD form of value, accepting
// either the strict pattern or any of the loose layouts.
func normalizeISODate(value string) (string, bool) {
	trimmed := trim(value)
	if trimmed == "" {
		return "", false
	}
	if isoDatePattern.MatchString(trimmed) {
		return trimmed, true
	}
	for _, layout := range looseDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format("2006-01-02"), true
		}
	}
	return "", false
}

func monthRange(monthValue, yearValue string) (string, string, error) {
	month, monthErr := parseInt(monthValue)
	year, yearErr := parseInt(yearValue)
	if monthErr != nil || yearErr != nil || month < 1 || month > 12 || year < 1970 || year > 9999 {
		return "", "", apperr.Validation("invalid month or year")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start.Format("2006-01-02"), end.Format("2006-01-02"), nil
}

func currentMonthRange(now time.Time) (string, string) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, -1)
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}

// daysBetween counts inclusive days between two canonical dates using UTC
// epoch arithmetic, so DST transitions cannot skew the result.
func daysBetween(from, to string) int {
	start, startErr := time.Parse("2006-01-02", from)
	end, endErr := time.Parse("2006-01-02", to)
	if startErr != nil || endErr != nil {
		return int(^uint(0) >> 1)
	}
	return int(end.Sub(start).Hours()/24) + 1
}

func parseInt(value string) (int, error) {
	return strconv.Atoi(trim(value))
}
