package timeutil

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixNow pins the current instant used for offset lookups
func fixNow(t *testing.T, at time.Time) {
	original := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = original })
}

func TestAdjustTime(t *testing.T) {
	fixNow(t, time.Date(2024, 2, 9, 12, 0, 0, 0, time.UTC))
	base := time.Date(2024, 2, 9, 6, 0, 0, 0, time.UTC)

	local, err := AdjustTime(base, "Asia/Shanghai")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 9, 14, 0, 0, 0, time.UTC), local)

	utc, err := AdjustTimeToUTC(local, "Asia/Shanghai")
	require.NoError(t, err)
	assert.Equal(t, base, utc)
}

func TestAdjustTimestampToUTC(t *testing.T) {
	fixNow(t, time.Date(2024, 2, 9, 12, 0, 0, 0, time.UTC))

	ts, err := AdjustTimestampToUTC(1707494400, "Asia/Shanghai")
	require.NoError(t, err)
	assert.Equal(t, int64(1707494400-8*3600), ts)

	ts, err = AdjustTimestampToUTC(1707494400, "UTC")
	require.NoError(t, err)
	assert.Equal(t, int64(1707494400), ts)
}

func TestOffsetUsesCurrentInstant(t *testing.T) {
	// A winter timestamp adjusted in summer gets the summer offset
	winter := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	fixNow(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	summer, err := AdjustTime(winter, "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, winter.Add(-4*time.Hour), summer)

	fixNow(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	standard, err := AdjustTime(winter, "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, winter.Add(-5*time.Hour), standard)
}

func TestUnknownTimezone(t *testing.T) {
	_, err := AdjustTime(time.Now(), "Mars/Olympus_Mons")
	assert.Error(t, err)
	_, err = AdjustTimeToUTC(time.Now(), "Mars/Olympus_Mons")
	assert.Error(t, err)
	_, err = AdjustTimestampToUTC(0, "Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestToDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "Seconds",
			input:    "2024-02-09T16:00:00",
			expected: time.Date(2024, 2, 9, 16, 0, 0, 0, time.UTC),
		},
		{
			name:     "Microseconds",
			input:    "2024-02-09T16:00:00.123456",
			expected: time.Date(2024, 2, 9, 16, 0, 0, 123456000, time.UTC),
		},
		{
			name:     "Short fraction",
			input:    "2024-02-09T16:00:00.5",
			expected: time.Date(2024, 2, 9, 16, 0, 0, 500000000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ToDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestToDate_RoundTrip(t *testing.T) {
	for _, layout := range Layouts {
		want := time.Date(2023, 11, 5, 1, 30, 15, 250000000, time.UTC)
		if layout == Layouts[0] {
			want = want.Truncate(time.Second)
		}
		got, err := ToDate(want.Format(layout))
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "layout %s", layout)
	}
}

func TestToDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "2024-02-09", "2024-02-09 16:00:00", "09/02/2024 16:00", "2024-02-09T16:00:00Z",
		"2024-02-09T16:00:00.1234567", "2024-02-09T16:00:00.123456789", "2024-02-09T16:00:00,5", "2024-02-09T16:00:00.",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ToDate(input)
			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, input, pe.Value)
			assert.Contains(t, err.Error(), "cannot parse timestamp")
		})
	}
}
