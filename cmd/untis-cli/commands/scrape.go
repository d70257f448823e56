package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	devenv "untis-scraper/dev/env"
	"untis-scraper/lib/recordstore"
	"untis-scraper/lib/restyutil"
	"untis-scraper/lib/scrapers/webuntis"
	"untis-scraper/lib/serviceutil"
	"untis-scraper/lib/timezone"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"
)

const flagDate = "2006-01-02"

var (
	scrapeFrom   *string
	scrapeTo     *string
	scrapeDb     *string
	scrapeNoSave *bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Logs in, prints every kind of record and saves them to the database.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		config, err := readConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if config.BaseUrl == "" || config.Username == "" {
			serviceutil.Fatal("invalid config", errors.New("base_url and username must be set"))
		}
		if *scrapeDb != "" {
			config.Database = recordstore.Config{File: *scrapeDb}
		}

		start, end, err := dateRange(*scrapeFrom, *scrapeTo, timezone.Now())
		if err != nil {
			serviceutil.Fatal("invalid date range", err)
		}

		err = scrape(ctx, config, start, end, !*scrapeNoSave)
		if err != nil {
			serviceutil.Fatal("failed to scrape", err)
		}
	},
}

func init() {
	scrapeFrom = scrapeCmd.Flags().String("from", "", "The first day to scrape (yyyy-mm-dd), defaults to the monday of this week.")
	scrapeTo = scrapeCmd.Flags().String("to", "", "The last day to scrape (yyyy-mm-dd), defaults to the sunday after --from.")
	scrapeDb = scrapeCmd.Flags().String("db", "", "A sqlite file to save to, overrides the database in the config.")
	scrapeNoSave = scrapeCmd.Flags().Bool("no-save", false, "Only print the records.")
	rootCmd.AddCommand(scrapeCmd)
}

func dateRange(from, to string, now time.Time) (start, end time.Time, err error) {
	start, end = timezone.CurrentWeek(now)
	if from != "" {
		start, err = time.ParseInLocation(flagDate, from, timezone.Location)
		if err != nil {
			return start, end, fmt.Errorf("--from: %w", err)
		}
		end = start.AddDate(0, 0, 6)
	}
	if to != "" {
		end, err = time.ParseInLocation(flagDate, to, timezone.Location)
		if err != nil {
			return start, end, fmt.Errorf("--to: %w", err)
		}
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("%s is before %s", end.Format(flagDate), start.Format(flagDate))
	}
	return start, end, nil
}

func openCache(dir string) (*badger.DB, error) {
	if dir == "" {
		return nil, nil
	}
	dir, err := devenv.ResolvePath(dir)
	if err != nil {
		return nil, err
	}
	return badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
}

func scrape(ctx context.Context, config Config, start, end time.Time, save bool) error {
	cache, err := openCache(config.Cache)
	if err != nil {
		return fmt.Errorf("open page cache: %w", err)
	}
	if cache != nil {
		defer cache.Close()
	}

	var output restyutil.InstrumentOutput
	if *verbose && config.MessageDumps != "" {
		output, err = restyutil.NewFilesystemOutput(config.MessageDumps)
		if err != nil {
			return err
		}
	}

	parser, err := webuntis.NewParser(ctx, webuntis.ParserOptions{
		BaseUrl:          config.BaseUrl,
		School:           config.School,
		Timeout:          time.Duration(config.TimeoutSeconds) * time.Second,
		Cache:            cache,
		CacheLifetime:    time.Duration(config.CacheLifetimeMinutes) * time.Minute,
		Extract:          config.Extract,
		InstrumentOutput: output,
	})
	if err != nil {
		return err
	}

	ok, err := parser.Authenticate(ctx, config.Username, config.Password)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: the portal rejected the credentials", webuntis.ErrAuthenticationFailed)
	}
	defer func() {
		err := parser.Logout(context.WithoutCancel(ctx))
		if err != nil {
			slog.WarnContext(ctx, "failed to log out", "err", err)
		}
	}()

	result := recordstore.Scrape{
		School:     config.School,
		Username:   config.Username,
		Time:       timezone.Now(),
		RangeStart: start,
		RangeEnd:   end,
	}

	result.Absences, err = parser.Absences(ctx)
	if err = skipMissingPage(err); err != nil {
		return err
	}
	result.Exams, err = parser.Exams(ctx, start, end)
	if err = skipMissingPage(err); err != nil {
		return err
	}
	result.Homework, err = parser.Homework(ctx, start, end)
	if err = skipMissingPage(err); err != nil {
		return err
	}
	result.Periods, err = parser.EnhancedTimetable(ctx, start, end)
	if err = skipMissingPage(err); err != nil {
		return err
	}

	out := rootCmd.OutOrStdout()
	renderAbsences(out, result.Absences)
	renderExams(out, result.Exams)
	renderHomework(out, result.Homework)
	renderPeriods(out, result.Periods)

	if !save || (config.Database.File == "" && config.Database.Url == "") {
		return nil
	}
	store, err := recordstore.Open(ctx, config.Database)
	if err != nil {
		return err
	}
	defer store.Close()
	runID, err := store.SaveScrape(ctx, result)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "saved scrape", "run", runID)
	return nil
}

// portals differ in which pages they offer, a page that can't be found is
// reported and skipped.
func skipMissingPage(err error) error {
	if errors.Is(err, webuntis.ErrPageNotFound) {
		slog.Warn("skipping page", "err", err)
		return nil
	}
	return err
}
