package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"untis-scraper/lib/scrapers/webuntis/extract"

	"github.com/spf13/cobra"
)

var parseJson *bool

var parseCmd = &cobra.Command{
	Use:       "parse <absences|exams|homework|timetable> <file.html>",
	Short:     "Extracts records from a page saved from the portal.",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"absences", "exams", "homework", "timetable"},
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := readConfig(*configPath)
		if err != nil {
			return err
		}
		extractor, err := extract.New(config.Extract)
		if err != nil {
			return err
		}
		source, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		switch args[0] {
		case "absences":
			absences, err := extractor.Absences(ctx, string(source))
			if err != nil {
				return err
			}
			return printRecords(out, absences, renderAbsences)
		case "exams":
			exams, err := extractor.Exams(ctx, string(source))
			if err != nil {
				return err
			}
			return printRecords(out, exams, renderExams)
		case "homework":
			homework, err := extractor.Homework(ctx, string(source))
			if err != nil {
				return err
			}
			return printRecords(out, homework, renderHomework)
		case "timetable":
			periods, err := extractor.Timetable(ctx, string(source))
			if err != nil {
				return err
			}
			return printRecords(out, periods, renderPeriods)
		}
		return fmt.Errorf("unknown record kind '%s'", args[0])
	},
}

func printRecords[T any](out io.Writer, list []T, render func(io.Writer, []T)) error {
	if !*parseJson {
		render(out, list)
		return nil
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(list)
}

func init() {
	parseJson = parseCmd.Flags().Bool("json", false, "Print the records as json instead of a table.")
	rootCmd.AddCommand(parseCmd)
}
