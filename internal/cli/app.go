// Package cli holds the wiring shared by all subcommands: settings
// loading, logger construction, and error presentation.
package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dgallagher/wxjournal/internal/config"
	"github.com/dgallagher/wxjournal/internal/journal"
	"github.com/dgallagher/wxjournal/internal/logger"
	"github.com/dgallagher/wxjournal/internal/weather"
	"github.com/dgallagher/wxjournal/internal/wxerrors"
)

// LoadSettings loads settings honoring the root --config flag.
func LoadSettings(cmd *cobra.Command) (*config.Settings, error) {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	return config.Load(configPath)
}

// NewLogger builds a logger whose level follows --verbose and --quiet,
// falling back to the configured log level. The daemon sets structured.
func NewLogger(cmd *cobra.Command, settings *config.Settings, structured bool) (*logger.Logger, error) {
	level := settings.LogLevel
	if level == "" {
		level = "info"
	}
	if verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose"); verbose {
		level = "debug"
	}
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); quiet {
		level = "error"
	}
	return logger.New(level, structured)
}

// NewService assembles the full fetch pipeline over the OS filesystem.
func NewService(settings *config.Settings, log *logger.Logger) *journal.Service {
	client := weather.NewClient(settings.APIKey, log)
	writer := journal.NewWriter(afero.NewOsFs(), log)
	return journal.NewService(settings, client, writer, log)
}

// FormatError renders an error with its user-facing suggestion, when the
// taxonomy has one.
func FormatError(err error) string {
	if suggestion := wxerrors.Suggestion(err); suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", err, suggestion)
	}
	return err.Error()
}
