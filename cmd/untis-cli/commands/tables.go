package commands

import (
	"fmt"
	"io"
	"strings"
	"time"
	"untis-scraper/lib/recordstore"
	"untis-scraper/lib/scrapers/webuntis/records"

	"github.com/jedib0t/go-pretty/v6/table"
)

const displayDate = "02.01.2006"

func newTable(out io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	t.SetOutputMirror(out)
	return t
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayDate)
}

func formatSpan(start, end string) string {
	if start == "" && end == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s", start, end)
}

func checkmark(value bool) string {
	if value {
		return "yes"
	}
	return ""
}

func renderAbsences(out io.Writer, absences []records.Absence) {
	t := newTable(out, "Absences")
	t.AppendHeader(table.Row{"From", "To", "Time", "Reason", "Status", "Comment"})
	for _, a := range absences {
		reason := a.Reason
		if a.ReasonCode != "" {
			reason = fmt.Sprintf("%s (%s)", reason, a.ReasonCode)
		}
		t.AppendRow(table.Row{
			formatDay(a.StartDate),
			formatDay(a.EndDate),
			formatSpan(a.StartTime, a.EndTime),
			reason,
			a.Status().DisplayName(),
			a.Comment,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", len(absences)})
	t.Render()
}

func renderExams(out io.Writer, exams []records.Exam) {
	t := newTable(out, "Exams")
	t.AppendHeader(table.Row{"Date", "Time", "Subject", "Type", "Teacher", "Room"})
	for _, e := range exams {
		t.AppendRow(table.Row{
			formatDay(e.Date),
			formatSpan(e.StartTime, e.EndTime),
			e.Subject,
			records.ExamType(e.ExamType).DisplayName(),
			e.Teacher,
			e.Room,
		})
	}
	t.Render()
}

func renderHomework(out io.Writer, homework []records.Homework) {
	t := newTable(out, "Homework")
	t.AppendHeader(table.Row{"Due", "Subject", "Title", "Priority", "Done", "Attachments"})
	for _, h := range homework {
		names := make([]string, len(h.Attachments))
		for i, a := range h.Attachments {
			names[i] = a.Name
		}
		t.AppendRow(table.Row{
			formatDay(h.DueDate),
			h.Subject,
			h.Title,
			h.Priority.DisplayName(),
			checkmark(h.IsCompleted),
			strings.Join(names, ", "),
		})
	}
	t.Render()
}

func renderPeriods(out io.Writer, periods []records.Period) {
	t := newTable(out, "Timetable")
	t.AppendHeader(table.Row{"Date", "#", "Time", "Subject", "Teacher", "Room", "Status"})
	for _, p := range periods {
		number := ""
		if p.PeriodNumber > 0 {
			number = fmt.Sprint(p.PeriodNumber)
		}
		status := p.Status.DisplayName()
		if p.Substitution != nil && p.Substitution.Note != "" {
			status = fmt.Sprintf("%s: %s", status, p.Substitution.Note)
		}
		t.AppendRow(table.Row{
			formatDay(p.Date),
			number,
			formatSpan(p.StartTime, p.EndTime),
			p.Subject,
			p.Teacher,
			p.Room,
			status,
		})
	}
	t.Render()
}

func renderRuns(out io.Writer, runs []recordstore.Run) {
	t := newTable(out, "Scrape runs")
	t.AppendHeader(table.Row{"Id", "Scraped at", "School", "User", "Range", "Absences", "Exams", "Homework", "Periods"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.Time.Format("02.01.2006 15:04"),
			r.School,
			r.Username,
			fmt.Sprintf("%s - %s", formatDay(r.RangeStart), formatDay(r.RangeEnd)),
			r.Absences,
			r.Exams,
			r.Homework,
			r.Periods,
		})
	}
	t.Render()
}
