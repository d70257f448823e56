package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
	"untis-scraper/lib/recordstore"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/timezone"

	"github.com/stretchr/testify/require"
)

const absencePage = `<html><body>
<table class="list">
  <tr class="header"><th>Datum</th><th>Grund</th><th>Status</th></tr>
  <tr><td>02.09.2024 08:00-09:30</td><td>K - krank</td><td>entschuldigt</td></tr>
  <tr><td>05.09.2024</td><td>Arzttermin</td><td>unentschuldigt</td></tr>
</table>
</body></html>`

func execute(t testing.TB, args ...string) string {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	require.NoError(t, err, out.String())
	return out.String()
}

func writePage(t testing.TB, contents string) string {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestParseJson(t *testing.T) {
	out := execute(t, "parse", "absences", writePage(t, absencePage), "--json=true")

	var absences []records.Absence
	require.NoError(t, json.Unmarshal([]byte(out), &absences))
	require.Len(t, absences, 2)

	require.Equal(t, "K", absences[0].ReasonCode)
	require.Equal(t, "krank", absences[0].Reason)
	require.Equal(t, "08:00", absences[0].StartTime)
	require.True(t, absences[0].IsExcused)
	require.False(t, absences[1].IsExcused)
	require.True(t, absences[1].StartDate.Equal(time.Date(2024, 9, 5, 0, 0, 0, 0, timezone.Location)))
}

func TestParseTable(t *testing.T) {
	out := execute(t, "parse", "absences", writePage(t, absencePage), "--json=false")
	require.Contains(t, out, "02.09.2024")
	require.Contains(t, out, "krank (K)")
	require.Contains(t, out, "Unexcused")
}

func TestParseUnknownKind(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"parse", "grades", writePage(t, absencePage)})
	err := rootCmd.ExecuteContext(context.Background())
	require.ErrorContains(t, err, "unknown record kind")
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	dbpath := filepath.Join(t.TempDir(), "records.db")

	store, err := recordstore.Open(ctx, recordstore.Config{File: dbpath})
	require.NoError(t, err)
	start := time.Date(2024, 9, 2, 0, 0, 0, 0, timezone.Location)
	runID, err := store.SaveScrape(ctx, recordstore.Scrape{
		School:     "demo-school",
		Username:   "student",
		Time:       start,
		RangeStart: start,
		RangeEnd:   start.AddDate(0, 0, 6),
		Absences: []records.Absence{{
			ID:        records.NewID(),
			StartDate: start,
			EndDate:   start,
			Reason:    "Arzttermin",
			IsExcused: true,
		}},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	out := execute(t, "runs", "--db", dbpath)
	require.Contains(t, out, runID)
	require.Contains(t, out, "demo-school")

	out = execute(t, "runs", runID, "--db", dbpath)
	require.Contains(t, out, "Arzttermin")
	require.Contains(t, out, "Excused")
}

func TestDateRange(t *testing.T) {
	// a wednesday
	now := time.Date(2024, 9, 4, 10, 0, 0, 0, timezone.Location)
	day := func(month time.Month, d int) time.Time {
		return time.Date(2024, month, d, 0, 0, 0, 0, timezone.Location)
	}

	start, end, err := dateRange("", "", now)
	require.NoError(t, err)
	require.Equal(t, day(9, 2), start)
	require.Equal(t, day(9, 8), end)

	start, end, err = dateRange("2024-09-16", "", now)
	require.NoError(t, err)
	require.Equal(t, day(9, 16), start)
	require.Equal(t, day(9, 22), end)

	start, end, err = dateRange("2024-09-16", "2024-10-01", now)
	require.NoError(t, err)
	require.Equal(t, day(9, 16), start)
	require.Equal(t, day(10, 1), end)

	_, _, err = dateRange("2024-09-16", "2024-09-01", now)
	require.Error(t, err)
	_, _, err = dateRange("16.09.2024", "", now)
	require.Error(t, err)
}
