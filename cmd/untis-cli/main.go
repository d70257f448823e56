package main

import (
	"context"
	"log/slog"
	"untis-scraper/cmd/untis-cli/commands"
	"untis-scraper/lib/serviceutil"
	"untis-scraper/lib/telemetry"
)

func main() {
	ctx, stop := serviceutil.SignalContext()
	defer stop()

	telemetry.InitSlog(false)
	tel, err := telemetry.SetupFromEnv(ctx, "untis-cli")
	if err == nil {
		defer tel.Shutdown(context.Background())
	} else {
		slog.Debug("telemetry is not set up", "err", err)
	}

	commands.ExecuteContext(ctx)
}
