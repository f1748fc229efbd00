package path

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallagher/wxjournal/internal/cli"
	"github.com/dgallagher/wxjournal/internal/note"
)

// NewPathCommand creates the path command
func NewPathCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the resolved note path for a date",
		Long: `Print the journal note path the configured naming formats produce for
a date, without touching the filesystem or the network. Useful for
checking subfolder and name formats before a fetch.`,
		Args: cobra.NoArgs,
		RunE: runPath,
	}

	cmd.Flags().String("date", "", "Resolve for an explicit date (YYYY-MM-DD) instead of yesterday")

	return cmd
}

func runPath(cmd *cobra.Command, args []string) error {
	settings, err := cli.LoadSettings(cmd)
	if err != nil {
		return err
	}

	date := time.Now().AddDate(0, 0, -1)
	if dateFlag, _ := cmd.Flags().GetString("date"); dateFlag != "" {
		date, err = time.ParseInLocation("2006-01-02", dateFlag, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", dateFlag, err)
		}
	}

	notePath, _ := note.ResolvePath(date, note.Naming{
		RootFolder: settings.JournalRoot,
		SubFolder:  settings.JournalSubdir,
		NameFormat: settings.JournalNameFormat,
	})
	cmd.Println(notePath)
	return nil
}
