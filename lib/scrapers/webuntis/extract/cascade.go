package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type strategy struct {
	selector string
	matcher  cascadia.Selector
}

// compileStrategies compiles the selectors in order, selectors that do not
// compile are left out.
func compileStrategies(kind records.Kind, selectors []string) []strategy {
	out := make([]strategy, 0, len(selectors))
	for _, s := range selectors {
		matcher, err := cascadia.Compile(s)
		if err != nil {
			slog.Debug(
				"skipping selector that does not compile",
				"kind", kind,
				"selector", s,
				"err", err,
			)
			continue
		}
		out = append(out, strategy{
			selector: s,
			matcher:  matcher,
		})
	}
	return out
}

// cascade tries its strategies in order, the first one to match any element
// decides the result. when none of them match, the page source is scanned
// for the keywords and the first one found becomes a single placeholder
// record.
type cascade[T any] struct {
	kind       records.Kind
	strategies []strategy
	keywords   []string
	parseRow   func(ctx context.Context, row *goquery.Selection) (T, bool)
	// nil means there is no keyword fallback
	fallback func(keyword string) T
}

func newCascade[T any](
	kind records.Kind,
	rules Rules,
	parseRow func(ctx context.Context, row *goquery.Selection) (T, bool),
	fallback func(keyword string) T,
) cascade[T] {
	keywords := make([]string, len(rules.Keywords))
	for i, k := range rules.Keywords {
		keywords[i] = strings.ToLower(k)
	}
	return cascade[T]{
		kind:       kind,
		strategies: compileStrategies(kind, rules.Selectors),
		keywords:   keywords,
		parseRow:   parseRow,
		fallback:   fallback,
	}
}

func (c cascade[T]) extract(ctx context.Context, source string) ([]T, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("extract:%s", c.kind))
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, fmt.Errorf("%w: %s: %w", ErrParsing, c.kind, err)
	}

	out, matched := c.matchRows(ctx, span, doc)
	if !matched && c.fallback != nil {
		out = c.scanKeywords(ctx, span, source)
	}

	countRecords(ctx, c.kind, len(out))
	span.SetAttributes(attribute.Int("records", len(out)))
	return out, nil
}

func (c cascade[T]) matchRows(ctx context.Context, span trace.Span, doc *goquery.Document) ([]T, bool) {
	out := []T{}
	for _, s := range c.strategies {
		rows := doc.FindMatcher(s.matcher)
		if rows.Length() == 0 {
			continue
		}

		slog.DebugContext(
			ctx, "selector matched",
			"kind", c.kind,
			"selector", s.selector,
			"rows", rows.Length(),
		)
		span.AddEvent("selector matched", trace.WithAttributes(
			attribute.String("selector", s.selector),
			attribute.Int("rows", rows.Length()),
		))

		rows.Each(func(_ int, row *goquery.Selection) {
			record, ok := c.parseRow(ctx, row)
			if !ok {
				return
			}
			out = append(out, record)
		})

		// a selector that matched ends the cascade even if every row was
		// dropped, the keyword scan is not a second chance
		if len(out) == 0 {
			slog.WarnContext(
				ctx, "selector matched rows but none parsed",
				"kind", c.kind,
				"selector", s.selector,
				"rows", rows.Length(),
			)
		}
		return out, true
	}
	return out, false
}

func (c cascade[T]) scanKeywords(ctx context.Context, span trace.Span, source string) []T {
	keyword, ok := textutil.FirstKeyword(strings.ToLower(source), c.keywords)
	if !ok {
		return []T{}
	}

	slog.DebugContext(
		ctx, "no selector matched, falling back to keyword",
		"kind", c.kind,
		"keyword", keyword,
	)
	span.AddEvent("keyword fallback", trace.WithAttributes(
		attribute.String("keyword", keyword),
	))
	countFallback(ctx, c.kind)

	return []T{c.fallback(keyword)}
}
