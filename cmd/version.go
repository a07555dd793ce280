package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set via -ldflags "-X github.com/tranvh/hiregate/cmd.version=...".
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hiregate version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s\n", app, version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
