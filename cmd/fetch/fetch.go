package fetch

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallagher/wxjournal/internal/cli"
)

// NewFetchCommand creates the fetch command
func NewFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a day's weather into its journal note",
		Long: `Fetch the historical weather observation for yesterday (or an explicit
date) and merge the enabled properties into the matching journal note's
front matter. A note that already carries weather data is left untouched.

The date is resolved in this order: the --date flag, the specific_date
setting, yesterday relative to the current local date.`,
		Args: cobra.NoArgs,
		RunE: runFetch,
	}

	cmd.Flags().String("date", "", "Fetch for an explicit date (YYYY-MM-DD) instead of yesterday")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	settings, err := cli.LoadSettings(cmd)
	if err != nil {
		return err
	}

	log, err := cli.NewLogger(cmd, settings, false)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dateFlag, _ := cmd.Flags().GetString("date")
	if dateFlag == "" {
		dateFlag = settings.SpecificDate
	}

	date := time.Now().AddDate(0, 0, -1)
	if dateFlag != "" {
		date, err = time.ParseInLocation("2006-01-02", dateFlag, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", dateFlag, err)
		}
	}

	service := cli.NewService(settings, log)
	return service.FetchAndApply(cmd.Context(), date)
}
