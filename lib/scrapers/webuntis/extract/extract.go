// Package extract turns portal pages into records.
//
// Every kind of record has an ordered list of selectors. The first selector
// matching any element hands its elements to the row parser of the kind,
// rows that are too short or are missing a required date are dropped.
// When no selector matches at all, the page source is scanned for keywords
// and at most one placeholder record is produced.
package extract

import (
	"context"
	"errors"
	"untis-scraper/lib/scrapers/webuntis/records"
)

// ErrParsing is returned when a page could not be parsed as html at all.
// pages that parse but contain nothing recognizable are not an error.
var ErrParsing = errors.New("failed to parse page")

// Extractor is safe for concurrent use, it holds nothing but its compiled
// rules.
type Extractor struct {
	absences  cascade[records.Absence]
	exams     cascade[records.Exam]
	homework  cascade[records.Homework]
	timetable cascade[records.Period]
}

// New creates an Extractor, rule lists left empty in config are taken from
// DefaultConfig.
func New(config Config) (Extractor, error) {
	config, err := withDefaults(config)
	if err != nil {
		return Extractor{}, err
	}
	return Extractor{
		absences:  newCascade(records.KindAbsence, config.Absences, parseAbsenceRow, absenceFallback),
		exams:     newCascade(records.KindExam, config.Exams, parseExamRow, examFallback),
		homework:  newCascade(records.KindHomework, config.Homework, parseHomeworkRow, homeworkFallback),
		timetable: newCascade[records.Period](records.KindPeriod, config.Timetable, parsePeriod, nil),
	}, nil
}

func (e Extractor) Absences(ctx context.Context, source string) ([]records.Absence, error) {
	return e.absences.extract(ctx, source)
}

func (e Extractor) Exams(ctx context.Context, source string) ([]records.Exam, error) {
	return e.exams.extract(ctx, source)
}

func (e Extractor) Homework(ctx context.Context, source string) ([]records.Homework, error) {
	return e.homework.extract(ctx, source)
}

// Timetable extracts the periods of a timetable page along with their
// status (cancelled, substituted, exam, ...).
func (e Extractor) Timetable(ctx context.Context, source string) ([]records.Period, error) {
	return e.timetable.extract(ctx, source)
}
