package extract

import (
	"context"
	"fmt"
	"regexp"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/textutil"
	"untis-scraper/lib/timezone"

	"github.com/PuerkitoBio/goquery"
)

const minAbsenceCells = 3

// "K - krank", "E: Arzttermin"
var reasonCodeRegex = regexp.MustCompile(`^([A-Z0-9]{1,4})\s*[-:]\s*(.+)$`)

// columns: date (or range), reason, status, comment (optional)
func parseAbsenceRow(ctx context.Context, row *goquery.Selection) (records.Absence, bool) {
	cells := cellTexts(row, minAbsenceCells)
	if cells == nil {
		return records.Absence{}, false
	}

	dates := findDates(cells[0])
	if len(dates) == 0 {
		return records.Absence{}, false
	}
	start := dates[0]
	end := start
	if len(dates) > 1 && !dates[1].Before(start) {
		end = dates[1]
	}

	absence := records.Absence{
		ID:        records.NewID(),
		StartDate: start,
		EndDate:   end,
	}

	times := findTimes(cells[0])
	if len(times) > 0 {
		absence.StartTime = times[0]
	}
	if len(times) > 1 {
		absence.EndTime = times[1]
	}

	absence.Reason = cells[1]
	groups := reasonCodeRegex.FindStringSubmatch(cells[1])
	if len(groups) == 3 {
		absence.ReasonCode = groups[1]
		absence.Reason = groups[2]
	}

	status := textutil.Normalize(cells[2])
	absence.IsExcused = isExcused(status)
	absence.IsApproved = isApproved(status)

	if len(cells) > 3 {
		absence.Comment = cells[3]
	}

	return absence, true
}

// "unentschuldigt" contains "entschuldigt", so the negative forms have to
// be checked first
func isExcused(status string) bool {
	if textutil.ContainsAny(status, "unentschuldigt", "nicht entschuldigt", "unexcused", "not excused") {
		return false
	}
	return textutil.ContainsAny(status, "entschuldigt", "excused")
}

func isApproved(status string) bool {
	if textutil.ContainsAny(status, "nicht genehmigt", "ungenehmigt", "not approved", "unapproved") {
		return false
	}
	return textutil.ContainsAny(status, "genehmigt", "approved")
}

func absenceFallback(keyword string) records.Absence {
	now := timezone.Now()
	return records.Absence{
		ID:          records.NewID(),
		StartDate:   now,
		EndDate:     now,
		Reason:      fmt.Sprintf("Found absence indicator: %s", keyword),
		Placeholder: true,
	}
}
