package commands

import (
	"untis-scraper/lib/recordstore"

	"github.com/spf13/cobra"
)

var runsDb *string

var runsCmd = &cobra.Command{
	Use:   "runs [run id]",
	Short: "Lists saved scrape runs, or the absences saved with a single run.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := readConfig(*configPath)
		if err != nil {
			return err
		}
		if *runsDb != "" {
			config.Database = recordstore.Config{File: *runsDb}
		}

		ctx := cmd.Context()
		store, err := recordstore.Open(ctx, config.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		if len(args) == 1 {
			absences, err := store.Absences(ctx, args[0])
			if err != nil {
				return err
			}
			renderAbsences(cmd.OutOrStdout(), absences)
			return nil
		}

		runs, err := store.Runs(ctx)
		if err != nil {
			return err
		}
		renderRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	runsDb = runsCmd.Flags().String("db", "", "A sqlite file to read from, overrides the database in the config.")
	rootCmd.AddCommand(runsCmd)
}
