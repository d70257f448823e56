// Package recordstore keeps the records of past scrapes in sqlite or
// libsql so they can be compared later.
package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const dateLayout = "2006-01-02"

type Store struct {
	db *sqlx.DB
}

func (s Store) Close() error {
	return s.db.Close()
}

// Scrape is everything fetched in one run of the scraper.
type Scrape struct {
	School     string
	Username   string
	Time       time.Time
	RangeStart time.Time
	RangeEnd   time.Time

	Absences []records.Absence
	Exams    []records.Exam
	Homework []records.Homework
	Periods  []records.Period
}

type absenceRow struct {
	ID          string `db:"id"`
	RunID       string `db:"run_id"`
	StartDate   string `db:"start_date"`
	EndDate     string `db:"end_date"`
	StartTime   string `db:"start_time"`
	EndTime     string `db:"end_time"`
	Reason      string `db:"reason"`
	ReasonCode  string `db:"reason_code"`
	IsExcused   bool   `db:"is_excused"`
	IsApproved  bool   `db:"is_approved"`
	Comment     string `db:"comment"`
	Placeholder bool   `db:"placeholder"`
}

type examRow struct {
	ID          string `db:"id"`
	RunID       string `db:"run_id"`
	Date        string `db:"date"`
	StartTime   string `db:"start_time"`
	EndTime     string `db:"end_time"`
	Subject     string `db:"subject"`
	Teacher     string `db:"teacher"`
	Room        string `db:"room"`
	ExamType    string `db:"exam_type"`
	Description string `db:"description"`
	Duration    int64  `db:"duration_minutes"`
	IsOral      bool   `db:"is_oral"`
	Placeholder bool   `db:"placeholder"`
}

type homeworkRow struct {
	ID           string `db:"id"`
	RunID        string `db:"run_id"`
	Subject      string `db:"subject"`
	Title        string `db:"title"`
	Description  string `db:"description"`
	AssignedDate string `db:"assigned_date"`
	DueDate      string `db:"due_date"`
	IsCompleted  bool   `db:"is_completed"`
	Priority     string `db:"priority"`
	Attachments  string `db:"attachments"`
	Placeholder  bool   `db:"placeholder"`
}

type periodRow struct {
	ID           string `db:"id"`
	RunID        string `db:"run_id"`
	Date         string `db:"date"`
	StartTime    string `db:"start_time"`
	EndTime      string `db:"end_time"`
	PeriodNumber int    `db:"period_number"`
	Subject      string `db:"subject"`
	SubjectCode  string `db:"subject_code"`
	Room         string `db:"room"`
	Status       string `db:"status"`
	StatusText   string `db:"status_text"`
	ExamInfo     string `db:"exam_info"`
}

func formatDate(t time.Time) string {
	return t.In(timezone.Location).Format(dateLayout)
}

// SaveScrape writes the run and all of its records in one transaction and
// returns the id of the run.
func (s Store) SaveScrape(ctx context.Context, scrape Scrape) (string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	runID := uuid.NewString()
	_, err = tx.ExecContext(
		ctx,
		`insert into scrape_run (id, school, username, scraped_at, range_start, range_end) values (?, ?, ?, ?, ?, ?)`,
		runID, scrape.School, scrape.Username, scrape.Time.Unix(),
		formatDate(scrape.RangeStart), formatDate(scrape.RangeEnd),
	)
	if err != nil {
		return "", fmt.Errorf("create scrape run: %w", err)
	}

	for _, a := range scrape.Absences {
		_, err = tx.NamedExecContext(ctx, `insert into absence (
			id, run_id, start_date, end_date, start_time, end_time, reason,
			reason_code, is_excused, is_approved, comment, placeholder
		) values (
			:id, :run_id, :start_date, :end_date, :start_time, :end_time, :reason,
			:reason_code, :is_excused, :is_approved, :comment, :placeholder
		)`, absenceRow{
			ID:          a.ID,
			RunID:       runID,
			StartDate:   formatDate(a.StartDate),
			EndDate:     formatDate(a.EndDate),
			StartTime:   a.StartTime,
			EndTime:     a.EndTime,
			Reason:      a.Reason,
			ReasonCode:  a.ReasonCode,
			IsExcused:   a.IsExcused,
			IsApproved:  a.IsApproved,
			Comment:     a.Comment,
			Placeholder: a.Placeholder,
		})
		if err != nil {
			return "", fmt.Errorf("save absence: %w", err)
		}
	}

	for _, e := range scrape.Exams {
		_, err = tx.NamedExecContext(ctx, `insert into exam (
			id, run_id, date, start_time, end_time, subject, teacher, room,
			exam_type, description, duration_minutes, is_oral, placeholder
		) values (
			:id, :run_id, :date, :start_time, :end_time, :subject, :teacher, :room,
			:exam_type, :description, :duration_minutes, :is_oral, :placeholder
		)`, examRow{
			ID:          e.ID,
			RunID:       runID,
			Date:        formatDate(e.Date),
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
			Subject:     e.Subject,
			Teacher:     e.Teacher,
			Room:        e.Room,
			ExamType:    e.ExamType,
			Description: e.Description,
			Duration:    int64(e.Duration / time.Minute),
			IsOral:      e.IsOral,
			Placeholder: e.Placeholder,
		})
		if err != nil {
			return "", fmt.Errorf("save exam: %w", err)
		}
	}

	for _, h := range scrape.Homework {
		attachments, err := json.Marshal(h.Attachments)
		if err != nil {
			return "", err
		}
		_, err = tx.NamedExecContext(ctx, `insert into homework (
			id, run_id, subject, title, description, assigned_date, due_date,
			is_completed, priority, attachments, placeholder
		) values (
			:id, :run_id, :subject, :title, :description, :assigned_date, :due_date,
			:is_completed, :priority, :attachments, :placeholder
		)`, homeworkRow{
			ID:           h.ID,
			RunID:        runID,
			Subject:      h.Subject,
			Title:        h.Title,
			Description:  h.Description,
			AssignedDate: formatDate(h.AssignedDate),
			DueDate:      formatDate(h.DueDate),
			IsCompleted:  h.IsCompleted,
			Priority:     string(h.Priority),
			Attachments:  string(attachments),
			Placeholder:  h.Placeholder,
		})
		if err != nil {
			return "", fmt.Errorf("save homework: %w", err)
		}
	}

	for _, p := range scrape.Periods {
		_, err = tx.NamedExecContext(ctx, `insert into period (
			id, run_id, date, start_time, end_time, period_number, subject,
			subject_code, room, status, status_text, exam_info
		) values (
			:id, :run_id, :date, :start_time, :end_time, :period_number, :subject,
			:subject_code, :room, :status, :status_text, :exam_info
		)`, periodRow{
			ID:           p.ID,
			RunID:        runID,
			Date:         formatDate(p.Date),
			StartTime:    p.StartTime,
			EndTime:      p.EndTime,
			PeriodNumber: p.PeriodNumber,
			Subject:      p.Subject,
			SubjectCode:  p.SubjectCode,
			Room:         p.Room,
			Status:       string(p.Status),
			StatusText:   p.StatusText,
			ExamInfo:     p.ExamInfo,
		})
		if err != nil {
			return "", fmt.Errorf("save period: %w", err)
		}
	}

	return runID, tx.Commit()
}

type Run struct {
	ID         string
	School     string
	Username   string
	Time       time.Time
	RangeStart time.Time
	RangeEnd   time.Time

	Absences int
	Exams    int
	Homework int
	Periods  int
}

type runRow struct {
	ID         string `db:"id"`
	School     string `db:"school"`
	Username   string `db:"username"`
	ScrapedAt  int64  `db:"scraped_at"`
	RangeStart string `db:"range_start"`
	RangeEnd   string `db:"range_end"`
	Absences   int    `db:"absences"`
	Exams      int    `db:"exams"`
	Homework   int    `db:"homework"`
	Periods    int    `db:"periods"`
}

// Runs lists all scrape runs, the newest first.
func (s Store) Runs(ctx context.Context) ([]Run, error) {
	var rows []runRow
	err := s.db.SelectContext(ctx, &rows, `
select
    r.id, r.school, r.username, r.scraped_at, r.range_start, r.range_end,
    (select count(*) from absence a where a.run_id = r.id) as absences,
    (select count(*) from exam e where e.run_id = r.id) as exams,
    (select count(*) from homework h where h.run_id = r.id) as homework,
    (select count(*) from period p where p.run_id = r.id) as periods
from scrape_run r
order by r.scraped_at desc, r.rowid desc`)
	if err != nil {
		return nil, fmt.Errorf("list scrape runs: %w", err)
	}

	runs := make([]Run, len(rows))
	for i, r := range rows {
		start, _ := time.ParseInLocation(dateLayout, r.RangeStart, timezone.Location)
		end, _ := time.ParseInLocation(dateLayout, r.RangeEnd, timezone.Location)
		runs[i] = Run{
			ID:         r.ID,
			School:     r.School,
			Username:   r.Username,
			Time:       time.Unix(r.ScrapedAt, 0).In(timezone.Location),
			RangeStart: start,
			RangeEnd:   end,
			Absences:   r.Absences,
			Exams:      r.Exams,
			Homework:   r.Homework,
			Periods:    r.Periods,
		}
	}
	return runs, nil
}

// Absences returns the absences saved with a run.
func (s Store) Absences(ctx context.Context, runID string) ([]records.Absence, error) {
	var rows []absenceRow
	err := s.db.SelectContext(ctx, &rows, `select * from absence where run_id = ? order by rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("list absences: %w", err)
	}

	out := make([]records.Absence, len(rows))
	for i, r := range rows {
		start, _ := time.ParseInLocation(dateLayout, r.StartDate, timezone.Location)
		end, _ := time.ParseInLocation(dateLayout, r.EndDate, timezone.Location)
		out[i] = records.Absence{
			ID:          r.ID,
			StartDate:   start,
			EndDate:     end,
			StartTime:   r.StartTime,
			EndTime:     r.EndTime,
			Reason:      r.Reason,
			ReasonCode:  r.ReasonCode,
			IsExcused:   r.IsExcused,
			IsApproved:  r.IsApproved,
			Comment:     r.Comment,
			Placeholder: r.Placeholder,
		}
	}
	return out, nil
}
