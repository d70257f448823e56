package recordstore

import (
	"context"
	"testing"
	"time"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/telemetry"
	"untis-scraper/lib/timezone"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:recordstore")
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	store, err := Open(ctx, Config{File: ":memory:"})
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Empty(t, runs)

	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 0, 0, 0, 0, timezone.Location)
	}

	absences := []records.Absence{
		{
			ID:         records.NewID(),
			StartDate:  day(12),
			EndDate:    day(13),
			StartTime:  "08:00",
			Reason:     "krank",
			ReasonCode: "K",
			IsExcused:  true,
		},
		{
			ID:          records.NewID(),
			StartDate:   day(14),
			EndDate:     day(14),
			Reason:      "Found absence indicator: abwesen",
			Placeholder: true,
		},
	}

	first, err := store.SaveScrape(ctx, Scrape{
		School:     "demo",
		Username:   "max",
		Time:       time.Date(2024, 3, 15, 12, 0, 0, 0, timezone.Location),
		RangeStart: day(11),
		RangeEnd:   day(17),
		Absences:   absences,
		Exams: []records.Exam{{
			ID:        records.NewID(),
			Date:      day(14),
			StartTime: "08:00",
			EndTime:   "09:30",
			Subject:   "Mathematik",
			ExamType:  "exam",
			Duration:  90 * time.Minute,
			IsWritten: true,
		}},
		Homework: []records.Homework{{
			ID:          records.NewID(),
			Subject:     "Deutsch",
			DueDate:     day(18),
			Title:       "Aufsatz",
			Description: "Aufsatz",
			Attachments: []records.Attachment{{ID: records.NewID(), Name: "Blatt", URL: "/blatt.pdf"}},
			Priority:    records.PriorityNormal,
		}},
		Periods: []records.Period{
			{ID: records.NewID(), Date: day(12), StartTime: "08:00", EndTime: "08:45", Status: records.StatusNormal},
			{ID: records.NewID(), Date: day(12), StartTime: "08:50", EndTime: "09:35", Status: records.StatusCancelled},
		},
	})
	require.NoError(t, err)

	second, err := store.SaveScrape(ctx, Scrape{
		School:     "demo",
		Username:   "max",
		Time:       time.Date(2024, 3, 16, 12, 0, 0, 0, timezone.Location),
		RangeStart: day(11),
		RangeEnd:   day(17),
	})
	require.NoError(t, err)

	runs, err = store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	require.Equal(t, second, runs[0].ID)
	require.Equal(t, 0, runs[0].Absences)

	run := runs[1]
	require.Equal(t, first, run.ID)
	require.Equal(t, "demo", run.School)
	require.Equal(t, "max", run.Username)
	require.True(t, run.RangeStart.Equal(day(11)))
	require.True(t, run.RangeEnd.Equal(day(17)))
	require.Equal(t, 2, run.Absences)
	require.Equal(t, 1, run.Exams)
	require.Equal(t, 1, run.Homework)
	require.Equal(t, 2, run.Periods)

	saved, err := store.Absences(ctx, first)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(absences, saved))
}

func TestOpenWithoutFile(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	require.Error(t, err)
}
