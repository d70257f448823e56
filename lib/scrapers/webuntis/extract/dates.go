package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"untis-scraper/lib/timezone"
)

// layouts are tried in order, the first one that parses wins. single digit
// days and months are accepted by all of them.
var dateLayouts = []string{
	"2.1.2006",
	"2.1.06",
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
}

// ParseDate parses a date in one of the formats the portal is known to
// use. the date is interpreted in the portal's timezone.
func ParseDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		date, err := time.ParseInLocation(layout, text, timezone.Location)
		if err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}

var dateTokenRegex = regexp.MustCompile(`\d{4}-\d{1,2}-\d{1,2}|\d{1,2}[./]\d{1,2}[./]\d{2,4}`)

// FindDate returns the first date-like token in text that parses.
func FindDate(text string) (time.Time, bool) {
	dates := findDates(text)
	if len(dates) == 0 {
		return time.Time{}, false
	}
	return dates[0], true
}

func findDates(text string) []time.Time {
	var out []time.Time
	for _, token := range dateTokenRegex.FindAllString(text, -1) {
		date, ok := ParseDate(token)
		if ok {
			out = append(out, date)
		}
	}
	return out
}

// cellDate is ParseDate with FindDate as a second try, cells often carry a
// weekday or some other decoration next to the date.
func cellDate(text string) (time.Time, bool) {
	date, ok := ParseDate(text)
	if ok {
		return date, true
	}
	return FindDate(text)
}

var timeRegex = regexp.MustCompile(`\b(\d{1,2})[:.](\d{2})\b`)

// findTimes returns all "HH:MM" times in text. dates are removed first so
// that "12.03.2024" doesn't turn into "12:03".
func findTimes(text string) []string {
	text = dateTokenRegex.ReplaceAllString(text, " ")

	var out []string
	for _, groups := range timeRegex.FindAllStringSubmatch(text, -1) {
		hour, err := strconv.Atoi(groups[1])
		if err != nil || hour > 24 {
			continue
		}
		minute, err := strconv.Atoi(groups[2])
		if err != nil || minute > 59 {
			continue
		}
		out = append(out, fmt.Sprintf("%02d:%02d", hour, minute))
	}
	return out
}

// timeSpan returns how long it is from start to end, both in "HH:MM".
func timeSpan(start, end string) time.Duration {
	startTime, err := time.Parse("15:04", start)
	if err != nil {
		return 0
	}
	endTime, err := time.Parse("15:04", end)
	if err != nil {
		return 0
	}
	span := endTime.Sub(startTime)
	if span < 0 {
		return 0
	}
	return span
}

// data-date attributes are formatted yyyyMMdd
func parseDataDate(value string) (time.Time, bool) {
	date, err := time.ParseInLocation("20060102", strings.TrimSpace(value), timezone.Location)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
