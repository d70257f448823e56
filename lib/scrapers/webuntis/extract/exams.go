package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"untis-scraper/lib/htmlutil"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/textutil"
	"untis-scraper/lib/timezone"

	"github.com/PuerkitoBio/goquery"
)

const minExamCells = 2

const defaultExamType = "exam"

// the length of the 08:00 to 09:30 placeholder, used when only the start
// time is known
const defaultExamMinutes = 90

// checked in order, the first type whose keywords occur in the row wins
var examTypeKeywords = []struct {
	examType records.ExamType
	keywords []string
}{
	{records.ExamOral, []string{"mündlich", "oral"}},
	{records.ExamPresentation, []string{"präsentation", "referat", "presentation"}},
	{records.ExamPractical, []string{"praktisch", "practical"}},
	{records.ExamProject, []string{"projekt", "project"}},
	{records.ExamQuiz, []string{"quiz"}},
	{records.ExamTest, []string{"test"}},
	{records.ExamWritten, []string{"schriftlich", "written"}},
}

// a cell holding nothing but a time, rooms like "R1.12" are not times
var timeOnlyRegex = regexp.MustCompile(`(?i)^\d{1,2}[:.]\d{2}(\s*uhr)?$`)

// columns: date, subject, then in any order the time (a "from - to" cell
// or a "from" and a "to" cell next to each other), teacher and room.
func parseExamRow(ctx context.Context, row *goquery.Selection) (records.Exam, bool) {
	cells := cellTexts(row, minExamCells)
	if cells == nil {
		return records.Exam{}, false
	}

	date, ok := cellDate(cells[0])
	if !ok {
		return records.Exam{}, false
	}

	exam := records.Exam{
		ID:          records.NewID(),
		Date:        date,
		StartTime:   records.DefaultExamStart,
		EndTime:     records.DefaultExamEnd,
		Subject:     cells[1],
		SubjectCode: subjectCode(cells[1]),
		ExamType:    defaultExamType,
		IsWritten:   true,
	}

	foundTime := false
	var rest []string
	for i := 2; i < len(cells); i++ {
		cell := cells[i]
		if cell == "" {
			continue
		}
		times := findTimes(cell)
		switch {
		case len(times) >= 2:
			if !foundTime {
				setExamTimes(&exam, times[0], times[1])
				foundTime = true
			}
			continue
		case len(times) == 1 && timeOnlyRegex.MatchString(cell):
			if foundTime {
				continue
			}
			// "Von" and "Bis" in their own columns
			var next []string
			if i+1 < len(cells) && timeOnlyRegex.MatchString(cells[i+1]) {
				next = findTimes(cells[i+1])
			}
			if len(next) == 1 {
				setExamTimes(&exam, times[0], next[0])
				i++
			} else {
				setExamTimes(&exam, times[0], addMinutes(times[0], defaultExamMinutes))
			}
			foundTime = true
			continue
		}
		switch {
		case exam.Teacher == "":
			exam.Teacher = cell
			exam.TeacherCode = subjectCode(cell)
		case exam.Room == "":
			exam.Room = cell
		default:
			rest = append(rest, cell)
		}
	}
	exam.Description = strings.Join(rest, " ")

	text := textutil.Normalize(htmlutil.CleanText(row))
	for _, t := range examTypeKeywords {
		if textutil.ContainsAny(text, t.keywords...) {
			exam.ExamType = string(t.examType)
			break
		}
	}
	if exam.ExamType == string(records.ExamOral) {
		exam.IsOral = true
		exam.IsWritten = false
	}

	return exam, true
}

func setExamTimes(exam *records.Exam, start, end string) {
	exam.StartTime = start
	exam.EndTime = end
	exam.Duration = timeSpan(start, end)
}

// addMinutes adds to a "HH:MM" time, the result stops at 23:59.
func addMinutes(clock string, minutes int) string {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return clock
	}
	end := t.Add(time.Duration(minutes) * time.Minute)
	if end.Day() != t.Day() {
		return "23:59"
	}
	return end.Format("15:04")
}

func examFallback(keyword string) records.Exam {
	return records.Exam{
		ID:          records.NewID(),
		Date:        timezone.Now(),
		StartTime:   records.DefaultExamStart,
		EndTime:     records.DefaultExamEnd,
		Subject:     fmt.Sprintf("Exam found: %s", keyword),
		ExamType:    keyword,
		IsWritten:   true,
		Placeholder: true,
	}
}
