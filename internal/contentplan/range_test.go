package contentplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamplan/planboard/internal/apperr"
)

func TestResolveRangeExplicitWindow(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	r, err := ResolveRange(RangeQuery{From: "2025-03-01", To: "2025-03-10"}, now, 93)
	require.NoError(t, err)
	assert.Equal(t, DateRange{From: "2025-03-01", To: "2025-03-10"}, r)
}

func TestResolveRangeNormalizesLooseDates(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		from string
		to   string
		want DateRange
	}{
		{
			name: "timestamps",
			from: "2025-03-01T10:30:00Z",
			to:   "2025-03-05T23:59:59",
			want: DateRange{From: "2025-03-01", To: "2025-03-05"},
		},
		{
			name: "slash and dot layouts",
			from: "2025/03/01",
			to:   "05.03.2025",
			want: DateRange{From: "2025-03-01", To: "2025-03-05"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := ResolveRange(RangeQuery{From: tc.from, To: tc.to}, now, 93)
			require.NoError(t, err)
			assert.Equal(t, tc.want, r)
		})
	}
}

func TestResolveRangeMonthYear(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		month string
		year  string
		want  DateRange
	}{
		{"february", "2", "2025", DateRange{From: "2025-02-01", To: "2025-02-28"}},
		{"leap february", "2", "2024", DateRange{From: "2024-02-01", To: "2024-02-29"}},
		{"december", "12", "2025", DateRange{From: "2025-12-01", To: "2025-12-31"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := ResolveRange(RangeQuery{Month: tc.month, Year: tc.year}, now, 93)
			require.NoError(t, err)
			assert.Equal(t, tc.want, r)
		})
	}
}

func TestResolveRangeMonthYearInvalid(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		month string
		year  string
	}{
		{"month out of range", "13", "2025"},
		{"zero month", "0", "2025"},
		{"year before epoch", "6", "1969"},
		{"garbage month", "abc", "2025"},
		{"trailing garbage", "6x", "2025"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveRange(RangeQuery{Month: tc.month, Year: tc.year}, now, 93)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, "invalid month or year", apperr.Message(err))
		})
	}
}

func TestResolveRangeDefaultsToCurrentMonth(t *testing.T) {
	now := time.Date(2025, time.February, 10, 9, 0, 0, 0, time.UTC)

	r, err := ResolveRange(RangeQuery{}, now, 93)
	require.NoError(t, err)
	assert.Equal(t, DateRange{From: "2025-02-01", To: "2025-02-28"}, r)
}

func TestResolveRangeInvalidDatesFallBackToCurrentMonth(t *testing.T) {
	now := time.Date(2025, time.April, 3, 9, 0, 0, 0, time.UTC)

	// An unparseable from/to pair with no month/year behaves like no
	// filter at all.
	r, err := ResolveRange(RangeQuery{From: "not-a-date", To: "also-bad"}, now, 93)
	require.NoError(t, err)
	assert.Equal(t, DateRange{From: "2025-04-01", To: "2025-04-30"}, r)
}

func TestResolveRangeStartAfterEnd(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	_, err := ResolveRange(RangeQuery{From: "2025-03-10", To: "2025-03-01"}, now, 93)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "start date after end date", apperr.Message(err))
}

func TestResolveRangeSpanCap(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	// 93 inclusive days is accepted, 94 is rejected.
	r, err := ResolveRange(RangeQuery{From: "2025-01-01", To: "2025-04-03"}, now, 93)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-03", r.To)

	_, err = ResolveRange(RangeQuery{From: "2025-01-01", To: "2025-04-04"}, now, 93)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "date range too large, maximum 93 days", apperr.Message(err))
}

func TestResolveRangeExplicitDatesWinOverMonth(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	r, err := ResolveRange(RangeQuery{
		From:  "2025-05-01",
		To:    "2025-05-10",
		Month: "2",
		Year:  "2025",
	}, now, 93)
	require.NoError(t, err)
	assert.Equal(t, DateRange{From: "2025-05-01", To: "2025-05-10"}, r)
}
