package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/upec/tracklane/core"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tracklane.",
	Long: `Display the tracklane build together with the layout cache schema it reads.

Cached layouts written by a build with a different cache schema are
rebuilt on the next run, so include this output when reporting a layout
that differs between machines or after an upgrade.

Shows:
- Release version, commit and build timestamp
- Layout cache schema version
- Go runtime version`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("tracklane CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Cache:   v%d\n", core.CacheSchemaVersion())
		cmd.Printf("  Runtime: %s\n", runtime.Version())
	},
}
