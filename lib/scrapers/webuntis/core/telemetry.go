package core

import (
	"untis-scraper/lib/telemetry"
)

var tracer = telemetry.Tracer("untis.lib.scrapers.webuntis.core")
