package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/lambdo/internal/ui"
	"github.com/cameronsjo/lambdo/internal/update"
)

var upgradeCmd = &cobra.Command{
	Use:     "upgrade",
	Aliases: []string{"update", "selfupdate"},
	Short:   "Upgrade lambdo to the latest version",
	Long: `Upgrade lambdo to the latest version from GitHub releases.

This command will:
1. Check for a newer version on GitHub
2. Download the appropriate binary for your platform
3. Replace the current binary with the new version

Examples:
  lambdo upgrade           # Upgrade to latest version
  lambdo upgrade --check   # Check for updates without installing`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runUpgrade,
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().Bool("check", false, "Only check for updates, don't install")
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	checkOnly, _ := cmd.Flags().GetBool("check")

	ui.Blue.Printf("Current version: %s (%s)\n", version, update.Platform())
	ui.Blue.Println("Checking for updates...")

	if checkOnly {
		return checkForUpdate(cmd)
	}

	release, err := update.Apply(cmd.Context(), version)
	if err != nil {
		return err
	}
	if release == nil {
		ui.Success("You're running the latest version!")
		return nil
	}

	ui.Success("Upgraded to %s", release.Version)
	fmt.Printf("Release notes: %s\n", release.ReleaseURL)
	return nil
}

func checkForUpdate(cmd *cobra.Command) error {
	release, available, err := update.Check(cmd.Context(), version)
	if err != nil {
		return err
	}
	if !available {
		ui.Success("You're running the latest version!")
		return nil
	}

	ui.Success("New version available: %s (released %s)", release.Version, release.PublishedAt)
	fmt.Println()
	ui.Blue.Println("To upgrade, run: lambdo upgrade")

	lines, more := update.ChangelogPreview(release.Changelog, 10)
	if len(lines) > 0 {
		fmt.Println()
		ui.Yellow.Println("What's new:")
		for _, line := range lines {
			fmt.Printf("  %s\n", line)
		}
		if more > 0 {
			fmt.Printf("  ... (%d more lines)\n", more)
		}
	}
	return nil
}
