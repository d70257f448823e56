// Package webuntis reads absences, exams, homework and the timetable from
// the web interface of a WebUntis portal by scraping its html pages.
package webuntis

import (
	"context"
	"fmt"
	"time"
	"untis-scraper/lib/restyutil"
	"untis-scraper/lib/scrapers/webuntis/core"
	"untis-scraper/lib/scrapers/webuntis/extract"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/telemetry"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("untis.lib.scrapers.webuntis")

var (
	ErrAuthenticationFailed = core.ErrAuthenticationFailed
	ErrNetwork              = core.ErrNetwork
	ErrParsing              = extract.ErrParsing
	ErrSessionExpired       = core.ErrSessionExpired
	ErrPageNotFound         = core.ErrPageNotFound
	ErrUnsupportedVersion   = core.ErrUnsupportedVersion
)

// Session is what the Parser needs from a portal session, core.Client
// implements it.
type Session interface {
	Login(ctx context.Context, username, password string) (bool, error)
	IsAuthenticated() bool
	FetchPage(ctx context.Context, kind records.Kind, dates *core.DateRange) (string, error)
	Logout(ctx context.Context) error
}

// Parser fetches a page from the session and extracts its records, every
// call does this once and calls don't share any state besides the session.
type Parser struct {
	session   Session
	extractor extract.Extractor
}

func New(session Session, extractor extract.Extractor) Parser {
	return Parser{
		session:   session,
		extractor: extractor,
	}
}

type ParserOptions struct {
	BaseUrl string
	School  string
	// zero values use the defaults of core.ClientOptions
	Timeout       time.Duration
	Cache         *badger.DB
	CacheLifetime time.Duration

	Extract          extract.Config
	InstrumentOutput restyutil.InstrumentOutput
}

// NewParser creates a Parser with a new core.Client as its session.
func NewParser(ctx context.Context, opts ParserOptions) (Parser, error) {
	client, err := core.NewClient(ctx, core.ClientOptions{
		BaseUrl:          opts.BaseUrl,
		School:           opts.School,
		Timeout:          opts.Timeout,
		Cache:            opts.Cache,
		CacheLifetime:    opts.CacheLifetime,
		InstrumentOutput: opts.InstrumentOutput,
	})
	if err != nil {
		return Parser{}, err
	}
	extractor, err := extract.New(opts.Extract)
	if err != nil {
		return Parser{}, err
	}
	return New(client, extractor), nil
}

func (p Parser) Authenticate(ctx context.Context, username, password string) (bool, error) {
	return p.session.Login(ctx, username, password)
}

func (p Parser) IsAuthenticated() bool {
	return p.session.IsAuthenticated()
}

func (p Parser) Logout(ctx context.Context) error {
	return p.session.Logout(ctx)
}

func (p Parser) Absences(ctx context.Context) ([]records.Absence, error) {
	return fetchAndExtract(ctx, p, records.KindAbsence, nil, p.extractor.Absences)
}

func (p Parser) Exams(ctx context.Context, start, end time.Time) ([]records.Exam, error) {
	return fetchAndExtract(ctx, p, records.KindExam, &core.DateRange{Start: start, End: end}, p.extractor.Exams)
}

func (p Parser) Homework(ctx context.Context, start, end time.Time) ([]records.Homework, error) {
	return fetchAndExtract(ctx, p, records.KindHomework, &core.DateRange{Start: start, End: end}, p.extractor.Homework)
}

// EnhancedTimetable returns the periods from start to end along with their
// status, which includes absences and exams.
func (p Parser) EnhancedTimetable(ctx context.Context, start, end time.Time) ([]records.Period, error) {
	return fetchAndExtract(ctx, p, records.KindPeriod, &core.DateRange{Start: start, End: end}, p.extractor.Timetable)
}

func fetchAndExtract[T any](
	ctx context.Context,
	p Parser,
	kind records.Kind,
	dates *core.DateRange,
	extractFn func(ctx context.Context, source string) ([]T, error),
) ([]T, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("parser:%s", kind))
	defer span.End()

	if !p.session.IsAuthenticated() {
		span.SetStatus(codes.Error, ErrSessionExpired.Error())
		return nil, ErrSessionExpired
	}

	html, err := p.session.FetchPage(ctx, kind, dates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		return nil, fmt.Errorf("fetch %s page: %w", kind, err)
	}

	out, err := extractFn(ctx, html)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract records")
		return nil, err
	}
	return out, nil
}
