package webuntis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
	"untis-scraper/lib/scrapers/webuntis/core"
	"untis-scraper/lib/scrapers/webuntis/extract"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/telemetry"
	"untis-scraper/lib/timezone"

	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	authenticated bool
	pages         map[records.Kind]string
	fetches       []records.Kind
	ranges        []*core.DateRange
}

func (s *fakeSession) Login(ctx context.Context, username, password string) (bool, error) {
	if password != "secret" {
		return false, nil
	}
	s.authenticated = true
	return true, nil
}

func (s *fakeSession) IsAuthenticated() bool {
	return s.authenticated
}

func (s *fakeSession) FetchPage(ctx context.Context, kind records.Kind, dates *core.DateRange) (string, error) {
	s.fetches = append(s.fetches, kind)
	s.ranges = append(s.ranges, dates)
	page, ok := s.pages[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s page", core.ErrPageNotFound, kind)
	}
	return page, nil
}

func (s *fakeSession) Logout(ctx context.Context) error {
	s.authenticated = false
	return nil
}

func newTestParser(t testing.TB, session Session) Parser {
	extractor, err := extract.New(extract.Config{})
	require.NoError(t, err)
	return New(session, extractor)
}

func TestParser(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:webuntis")
	defer cleanup()

	ctx := context.Background()
	session := &fakeSession{pages: map[records.Kind]string{
		records.KindAbsence: `<table class="list"><tr><td>12.03.2024</td><td>krank</td><td>entschuldigt</td></tr></table>`,
		records.KindExam:    `<table><tr class="exam-row"><td>14.03.2024</td><td>Mathematik</td></tr></table>`,
		records.KindPeriod:  `<div class="period">08:00 08:45 M entfällt</div>`,
	}}
	parser := newTestParser(t, session)

	ok, err := parser.Authenticate(ctx, "max", "wrong")
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, parser.IsAuthenticated())

	ok, err = parser.Authenticate(ctx, "max", "secret")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, parser.IsAuthenticated())

	start := time.Date(2024, 3, 11, 0, 0, 0, 0, timezone.Location)
	end := time.Date(2024, 3, 17, 0, 0, 0, 0, timezone.Location)

	absences, err := parser.Absences(ctx)
	require.NoError(t, err)
	require.Len(t, absences, 1)
	require.True(t, absences[0].IsExcused)

	exams, err := parser.Exams(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, exams, 1)
	require.Equal(t, "08:00", exams[0].StartTime)

	periods, err := parser.EnhancedTimetable(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	require.True(t, periods[0].IsCancelled())

	_, err = parser.Homework(ctx, start, end)
	require.True(t, errors.Is(err, ErrPageNotFound), err)

	require.Equal(t, []records.Kind{
		records.KindAbsence,
		records.KindExam,
		records.KindPeriod,
		records.KindHomework,
	}, session.fetches)
	require.Nil(t, session.ranges[0])
	require.Equal(t, &core.DateRange{Start: start, End: end}, session.ranges[1])

	require.NoError(t, parser.Logout(ctx))
	require.False(t, parser.IsAuthenticated())
}

func TestParserRequiresSession(t *testing.T) {
	ctx := context.Background()
	session := &fakeSession{pages: map[records.Kind]string{
		records.KindAbsence: `<p>abwesend</p>`,
	}}
	parser := newTestParser(t, session)
	now := timezone.Now()

	_, err := parser.Absences(ctx)
	require.True(t, errors.Is(err, ErrSessionExpired), err)
	_, err = parser.Exams(ctx, now, now)
	require.True(t, errors.Is(err, ErrSessionExpired), err)
	_, err = parser.Homework(ctx, now, now)
	require.True(t, errors.Is(err, ErrSessionExpired), err)
	_, err = parser.EnhancedTimetable(ctx, now, now)
	require.True(t, errors.Is(err, ErrSessionExpired), err)

	require.Empty(t, session.fetches)
}
