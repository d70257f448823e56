package core

import (
	"fmt"
	"net/url"
	"time"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/timezone"
)

// DateRange limits the pages that support it to the days from Start to End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) query() string {
	return fmt.Sprintf(
		"startDate=%s&endDate=%s",
		r.Start.In(timezone.Location).Format("20060102"),
		r.End.In(timezone.Location).Format("20060102"),
	)
}

// page is where a kind of record can be found. the portal moved its pages
// around between versions, so there are several places to look and a page
// is only taken when it mentions one of the keywords.
type page struct {
	candidates []string
	// empty means any page is accepted
	keywords []string
}

func pageFor(kind records.Kind, school string, dates *DateRange) (page, error) {
	s := url.QueryEscape(school)
	if dates == nil {
		start, end := timezone.CurrentWeek(timezone.Now())
		dates = &DateRange{Start: start, End: end}
	}
	dateQuery := dates.query()

	switch kind {
	case records.KindAbsence:
		return page{
			candidates: []string{
				fmt.Sprintf("/WebUntis/main.do?school=%s#/basic/absences", s),
				fmt.Sprintf("/WebUntis/index.do?school=%s&method=absence", s),
				fmt.Sprintf("/WebUntis/classbook.do?school=%s&method=showAbsences", s),
				fmt.Sprintf("/WebUntis/studentabsences.do?school=%s", s),
			},
			keywords: []string{"abwesen", "absence", "Fehlzeit"},
		}, nil
	case records.KindExam:
		return page{
			candidates: []string{
				fmt.Sprintf("/WebUntis/main.do?school=%s#/basic/exams", s),
				fmt.Sprintf("/WebUntis/exams.do?school=%s&%s", s, dateQuery),
				fmt.Sprintf("/WebUntis/timetable.do?school=%s&%s", s, dateQuery),
			},
			keywords: []string{"exam", "Klausur", "Prüfung"},
		}, nil
	case records.KindHomework:
		return page{
			candidates: []string{
				fmt.Sprintf("/WebUntis/main.do?school=%s#/basic/homework", s),
				fmt.Sprintf("/WebUntis/homework.do?school=%s", s),
				fmt.Sprintf("/WebUntis/classbook.do?school=%s&method=showHomework", s),
			},
			keywords: []string{"homework", "Hausaufgabe", "Aufgabe"},
		}, nil
	case records.KindPeriod:
		return page{
			candidates: []string{
				fmt.Sprintf("/WebUntis/timetable.do?school=%s&%s", s, dateQuery),
			},
		}, nil
	}
	return page{}, fmt.Errorf("unknown page kind %q", kind)
}
