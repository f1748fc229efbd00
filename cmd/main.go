package main

import (
	"fmt"
	"os"

	"github.com/dgallagher/wxjournal/cmd/root"
	"github.com/dgallagher/wxjournal/internal/cli"
)

// Build-time variables set by goreleaser
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := root.NewRootCommand()
	rootCmd.Version = buildVersion()

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", cli.FormatError(err))
		os.Exit(1)
	}
}

func buildVersion() string {
	if version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s\ncommit: %s\nbuilt at: %s", version, commit, date)
}
