package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped by -ldflags on release builds.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the kodama version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kodama %s\n", version)
	},
}
