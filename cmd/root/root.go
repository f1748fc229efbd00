package root

import (
	"github.com/spf13/cobra"

	"github.com/dgallagher/wxjournal/cmd/daemon"
	"github.com/dgallagher/wxjournal/cmd/fetch"
	"github.com/dgallagher/wxjournal/cmd/path"
)

// NewRootCommand creates the root command for wxjournal
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wxjournal",
		Short: "Write historical weather into daily journal notes",
		Long: `wxjournal fetches a single day's historical weather observation from
the Visual Crossing API and merges the selected fields into the YAML
front matter of a date-named journal note, creating the note from a
template when it does not yet exist.`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.PersistentFlags().String("config", "", "Config file (default: .wxjournal.yaml)")
	cmd.PersistentFlags().Bool("verbose", false, "Detailed output; enables debug logging")
	cmd.PersistentFlags().Bool("quiet", false, "Suppress all output except errors; overrides --verbose")

	cmd.AddCommand(fetch.NewFetchCommand())
	cmd.AddCommand(daemon.NewDaemonCommand())
	cmd.AddCommand(path.NewPathCommand())

	return cmd
}
