package extract

import (
	"context"
	"untis-scraper/lib/scrapers/webuntis/records"
	"untis-scraper/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var tracer = telemetry.Tracer("untis.lib.scrapers.webuntis.extract")
var meter = telemetry.Meter("untis.lib.scrapers.webuntis.extract")

var recordCounter, _ = meter.Int64Counter(
	"webuntis.extract.records",
	metric.WithDescription("records extracted from portal pages"),
)

var fallbackCounter, _ = meter.Int64Counter(
	"webuntis.extract.fallbacks",
	metric.WithDescription("extractions that fell back to a keyword scan"),
)

func kindAttr(kind records.Kind) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("kind", string(kind)))
}

func countRecords(ctx context.Context, kind records.Kind, n int) {
	if n == 0 {
		return
	}
	recordCounter.Add(ctx, int64(n), kindAttr(kind))
}

func countFallback(ctx context.Context, kind records.Kind) {
	fallbackCounter.Add(ctx, 1, kindAttr(kind))
}
