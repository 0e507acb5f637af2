package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/lambdo/internal/update"
)

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Show the lambdo version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lambdo %s (%s)\n", version, update.Platform())
	},
}

func init() {
	rootCmd.AddCommand(aboutCmd)
}
