package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCurrentWeek(t *testing.T) {
	loc := Location

	cases := []struct {
		now         time.Time
		expectStart time.Time
		expectStop  time.Time
	}{
		{
			now:         time.Date(2024, time.August, 26, 0, 0, 0, 0, loc),
			expectStart: time.Date(2024, time.August, 26, 0, 0, 0, 0, loc),
			expectStop:  time.Date(2024, time.September, 1, 0, 0, 0, 0, loc),
		},
		{
			now:         time.Date(2024, time.August, 25, 13, 30, 0, 0, loc),
			expectStart: time.Date(2024, time.August, 19, 0, 0, 0, 0, loc),
			expectStop:  time.Date(2024, time.August, 25, 0, 0, 0, 0, loc),
		},
		{
			now:         time.Date(2024, time.August, 31, 0, 0, 0, 0, loc),
			expectStart: time.Date(2024, time.August, 26, 0, 0, 0, 0, loc),
			expectStop:  time.Date(2024, time.September, 1, 0, 0, 0, 0, loc),
		},
		{
			now:         time.Date(2024, time.September, 3, 8, 0, 0, 0, loc),
			expectStart: time.Date(2024, time.September, 2, 0, 0, 0, 0, loc),
			expectStop:  time.Date(2024, time.September, 8, 0, 0, 0, 0, loc),
		},
	}

	for _, test := range cases {
		start, stop := CurrentWeek(test.now)
		require.Equal(t, test.expectStart, start)
		require.Equal(t, test.expectStop, stop)
	}
}

func TestStartOfDay(t *testing.T) {
	now := time.Date(2024, time.March, 12, 23, 59, 1, 5, Location)
	require.Equal(t, time.Date(2024, time.March, 12, 0, 0, 0, 0, Location), StartOfDay(now))
}
