package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"untis-scraper/lib/htmlutil"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/textutil"
	"untis-scraper/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
)

// checked in order, so a period that is both cancelled and an exam is
// cancelled
var periodStatusKeywords = []struct {
	status   records.PeriodStatus
	keywords []string
}{
	{records.StatusAbsent, []string{"abwesen", "absent"}},
	{records.StatusCancelled, []string{"entfällt", "cancelled"}},
	{records.StatusExam, []string{"klausur", "exam"}},
	{records.StatusSubstituted, []string{"vertretung", "substitut"}},
	{records.StatusRescheduled, []string{"verlegt", "rescheduled"}},
}

var knownSubjects = []string{
	"Mathematik",
	"Deutsch",
	"Englisch",
	"Physik",
	"Chemie",
	"Biologie",
	"Geschichte",
	"Erdkunde",
	"Informatik",
	"Französisch",
	"Latein",
	"Spanisch",
	"Kunst",
	"Musik",
	"Sport",
	"Religion",
	"Ethik",
	"Politik",
}

const subjectMatchThreshold = 0.9

var (
	// \b only knows ascii word characters and would split "ÖKO"
	abbreviationWordRegex = regexp.MustCompile(`(?:^|[^\p{L}\d])([A-ZÄÖÜ]{1,4})(?:[^\p{L}\d]|$)`)
	roomRegex             = regexp.MustCompile(`(?i)\b(?:raum|room)\s*:?\s*([\p{L}\d.-]+)`)
	periodNumberRegex     = regexp.MustCompile(`(?i)\b(\d{1,2})\.\s*stunde`)
)

func parsePeriod(ctx context.Context, element *goquery.Selection) (records.Period, bool) {
	text := htmlutil.CleanText(element)
	times := findTimes(text)
	if len(times) < 2 {
		return records.Period{}, false
	}

	period := records.Period{
		ID:        records.NewID(),
		Date:      periodDate(element, text),
		StartTime: times[0],
		EndTime:   times[1],
		Status:    records.StatusNormal,
	}

	lower := textutil.Normalize(text)
	for _, s := range periodStatusKeywords {
		keyword, ok := textutil.FirstKeyword(lower, s.keywords)
		if ok {
			period.Status = s.status
			period.StatusText = keyword
			break
		}
	}
	examKeyword, ok := textutil.FirstKeyword(lower, []string{"klausur", "exam"})
	if ok {
		period.ExamInfo = examKeyword
	}
	if period.Status == records.StatusSubstituted {
		period.Substitution = &records.SubstitutionInfo{Note: text}
	}

	withoutDates := dateTokenRegex.ReplaceAllString(text, " ")
	// the abbreviation wins, the subject name is only matched without one
	if groups := abbreviationWordRegex.FindStringSubmatch(withoutDates); len(groups) == 2 {
		period.SubjectCode = groups[1]
		period.Subject = groups[1]
	} else {
		period.Subject = matchSubject(withoutDates)
	}

	groups := roomRegex.FindStringSubmatch(text)
	if len(groups) == 2 {
		period.Room = groups[1]
	}

	period.PeriodNumber = periodNumber(element, lower)

	return period, true
}

// matchSubject returns the known subject closest to one of the words in
// text, or "" if none are close enough.
func matchSubject(text string) string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	best := ""
	bestScore := subjectMatchThreshold
	for _, word := range words {
		if len([]rune(word)) < 4 {
			continue
		}
		word = strings.ToLower(word)
		for _, subject := range knownSubjects {
			score := matchr.JaroWinkler(word, strings.ToLower(subject), false)
			if score >= bestScore {
				best = subject
				bestScore = score
			}
		}
	}
	return best
}

// the date is taken from the text, then from a data-date attribute on the
// element or one of its parents, then it is assumed to be today
func periodDate(element *goquery.Selection, text string) time.Time {
	date, ok := FindDate(text)
	if ok {
		return date
	}
	attr, exists := element.Closest("[data-date]").Attr("data-date")
	if exists {
		date, ok := parseDataDate(attr)
		if ok {
			return date
		}
	}
	return timezone.Today()
}

func periodNumber(element *goquery.Selection, lower string) int {
	attr, exists := element.Closest("[data-period]").Attr("data-period")
	if exists {
		n, err := strconv.Atoi(strings.TrimSpace(attr))
		if err == nil && n > 0 {
			return n
		}
	}
	groups := periodNumberRegex.FindStringSubmatch(lower)
	if len(groups) == 2 {
		n, err := strconv.Atoi(groups[1])
		if err == nil {
			return n
		}
	}
	return 0
}
