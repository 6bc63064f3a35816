package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodAll, p)

	for _, want := range Periods {
		got, err := ParsePeriod(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = ParsePeriod("yearly")
	assert.True(t, IsInvalidArgument(err))
}

func TestPeriodWindow(t *testing.T) {
	// Wednesday
	now := time.Date(2026, 12, 30, 17, 45, 0, 0, time.UTC)
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		period     Period
		start, end time.Time
	}{
		{PeriodDaily, day(2026, 12, 30), day(2026, 12, 31)},
		{PeriodWeekly, day(2026, 12, 28), day(2027, 1, 4)},
		{PeriodMonthly, day(2026, 12, 1), day(2027, 1, 1)},
	}
	for _, tt := range tests {
		start, end, ok := tt.period.Window(now)
		require.True(t, ok, tt.period)
		assert.True(t, tt.start.Equal(start), "%s start %v", tt.period, start)
		assert.True(t, tt.end.Equal(end), "%s end %v", tt.period, end)
	}

	_, _, ok := PeriodAll.Window(now)
	assert.False(t, ok)
}

func TestWeeklyWindowOnSunday(t *testing.T) {
	sunday := time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC)
	start, end, ok := PeriodWeekly.Window(sunday)
	require.True(t, ok)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.True(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC).Equal(start))
	assert.True(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC).Equal(end))
}

func TestWindowUsesUTC(t *testing.T) {
	// 01:30 on the 2nd in UTC+3 is still the 1st in UTC
	loc := time.FixedZone("UTC+3", 3*3600)
	start, _, ok := PeriodDaily.Window(time.Date(2026, 5, 2, 1, 30, 0, 0, loc))
	require.True(t, ok)
	assert.True(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC).Equal(start))
}
