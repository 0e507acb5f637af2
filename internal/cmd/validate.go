package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/lambdo/internal/preflight"
	"github.com/cameronsjo/lambdo/internal/ui"
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate [names...]",
	Short: "Check the manifest without deploying",
	Long: `Validate the manifest without packaging or contacting AWS.

This command:
  1. Loads the manifest and expands its directives
  2. Resolves every placeholder
  3. Checks each selected function: required fields, limits,
     architectures, runtimes and include patterns

Problems fail the command; warnings do not.

Examples:
  lambdo validate             # Check every function
  lambdo validate api         # Check one function
  lambdo validate -c prod.yaml`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	ui.Header("=== lambdo validation ===")
	ui.Info("Manifest: %s", cfg.Manifest)

	doc, err := loadDocument(cfg.Manifest)
	if err != nil {
		return err
	}
	m, err := doc.Manifest()
	if err != nil {
		return err
	}
	selected := selectUnits(m, args)

	warnings, problems := preflight.CheckAll(selected)
	logger.Debug().Int("units", selected.Len()).Int("warnings", len(warnings)).Int("errors", len(problems)).Msg("preflight finished")

	for _, w := range warnings {
		ui.Warning("%s", w)
	}
	for _, p := range problems {
		ui.Error("%s", p)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%d problem(s) found in %d function(s)", len(problems), selected.Len())
	}

	ui.Success("%d function(s) ready to deploy", selected.Len())
	return nil
}
