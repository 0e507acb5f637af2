package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/lambdo/internal/history"
	"github.com/cameronsjo/lambdo/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:     "history [n]",
	Aliases: []string{"log"},
	Short:   "Show recent deploy runs",
	Long: `Show the most recent runs that touched AWS from this project.

Runs are recorded in .lambdo/history next to the manifest; the newest
` + fmt.Sprint(history.MaxRuns) + ` are kept.

Examples:
  lambdo history      # Last 10 runs
  lambdo history 3    # Last 3 runs`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid count %q", args[0])
		}
		limit = n
	}

	cfg, _, err := setup(cmd)
	if err != nil {
		return err
	}

	runs, err := history.List(cfg.StateDir())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		ui.Info("No runs recorded yet")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, run := range runs[:min(limit, len(runs))] {
		status := ui.Green.Sprint("ok")
		if run.Failed() {
			status = ui.Red.Sprint("failed")
		}

		ref := ""
		if run.Commit != "" {
			ref = fmt.Sprintf(" %s@%.7s", run.Branch, run.Commit)
			if run.Dirty {
				ref += "+dirty"
			}
		}
		fmt.Fprintf(out, "%s %s%s %s\n", run.Started.Local().Format("2006-01-02 15:04:05"), status, ref, ui.Faint.Sprint(run.ID))

		for _, u := range run.Units {
			parts := []string{u.Name}
			if u.Action != "" {
				parts = append(parts, u.Action, ui.Size(u.Size))
			}
			if u.Version != "" {
				parts = append(parts, "v"+u.Version)
			}
			if u.Alias != "" {
				parts = append(parts, "→ "+u.Alias)
			}
			fmt.Fprintf(out, "  %s\n", strings.Join(parts, " "))
		}
		if run.Failed() {
			fmt.Fprintf(out, "  %s\n", ui.Red.Sprint(run.Error))
		}
	}
	return nil
}
