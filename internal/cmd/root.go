// Package cmd provides the CLI commands for lambdo.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/lambdo/internal/config"
	"github.com/cameronsjo/lambdo/internal/deploy"
	"github.com/cameronsjo/lambdo/internal/gitinfo"
	"github.com/cameronsjo/lambdo/internal/lock"
	"github.com/cameronsjo/lambdo/internal/logging"
	"github.com/cameronsjo/lambdo/internal/manifest"
	"github.com/cameronsjo/lambdo/internal/ui"
	"github.com/cameronsjo/lambdo/internal/update"
)

// version is set by Execute from the build.
var version = update.DevVersion

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lambdo [names...]",
	Short: "Package and deploy AWS Lambda functions from a YAML manifest",
	Long: `lambdo - Lambda functions from a manifest

Reads lambdo.yaml (or lambdo.yml, deploy.yaml), expands !include and !env
directives, resolves ${dotted.path} placeholders, then packages and deploys
every function it declares. Top-level keys starting with "_" are templates
and are never deployed. Name functions as arguments to limit the run.

Examples:
  lambdo --print                 # Show the resolved manifest
  lambdo --dry-run               # Package everything, touch nothing
  lambdo -d api worker           # Deploy two functions
  lambdo -d -v -a live           # Deploy, publish and move the live alias
  lambdo -a staging --latest     # Point staging at $LATEST
  lambdo -o dist                 # Write archives to dist/<name>.zip
  lambdo validate                # Pre-flight checks without deploying`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute adds all child commands to the root command and runs it.
func Execute(buildVersion string) {
	if buildVersion != "" {
		version = buildVersion
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		ui.Fatal("%v", err)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("config", "c", "", "Manifest path (default: first of "+strings.Join(config.ManifestNames, ", ")+")")
	pf.String("log-level", config.DefaultLogLevel, "Diagnostic log level (trace, debug, info, warn, error, off)")
	pf.String("log-format", config.DefaultLogFormat, "Diagnostic log format (pretty, json)")

	f := rootCmd.Flags()
	f.BoolP("print", "p", false, "Print the resolved manifest and exit")
	f.BoolP("deploy", "d", false, "Package and deploy the selected functions")
	f.BoolP("dry-run", "n", false, "Package the selected functions without contacting AWS")
	f.BoolP("version", "v", false, "Publish a new version of each function")
	f.StringP("alias", "a", "", "Create or move this alias on each function")
	f.BoolP("latest", "l", false, "Point the alias at $LATEST instead of the newest version")
	f.StringP("output", "o", "", "Write each archive to <dir>/<name>.zip")
	f.String("bucket", "", "Upload archives to this S3 bucket before deploying")
	f.String("prefix", "", "Key prefix inside --bucket")
	f.String("region", "", "AWS region (default: from the AWS environment)")
	f.String("profile", "", "AWS shared config profile")
	f.String("description", "", "Version description template (default: "+deploy.DefaultDescription+")")
	f.BoolP("yes", "y", false, "Skip the confirmation prompt")
	f.String("notify-webhook", "", "Post a run summary to this Discord webhook")
	f.Duration("wait-timeout", config.DefaultWaitTimeout, "How long to wait for a function to become ready (0 disables)")
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	doc, err := loadDocument(cfg.Manifest)
	if err != nil {
		return err
	}

	if cfg.Print {
		data, err := doc.YAML()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	m, err := doc.Manifest()
	if err != nil {
		return err
	}
	selected := selectUnits(m, args)

	opts := deploy.Options{
		DryRun:      cfg.DryRun,
		Deploy:      cfg.Deploy,
		OutputDir:   cfg.Output,
		Publish:     cfg.Publish,
		Alias:       cfg.Alias,
		Latest:      cfg.Latest,
		Description: cfg.Description,
	}
	if err := selected.Check(opts.Requires()); err != nil {
		return err
	}

	if !opts.DryRun && !opts.Deploy && opts.OutputDir == "" && !opts.Publish && opts.Alias == "" {
		ui.Info("%d function(s) selected: %s", selected.Len(), strings.Join(selected.Names(), ", "))
		ui.Info("Nothing to do. Use --deploy, --dry-run, --output, --version or --alias.")
		return nil
	}

	if !cfg.Remote() {
		return runEngine(cmd.Context(), cfg, logger, selected, opts, nil, nil)
	}

	return lock.WithLock(cfg.LocksDir(), "deploy", func() error {
		if !cfg.Yes && ui.Interactive() {
			question := fmt.Sprintf("Apply changes to %d function(s) (%s)?", selected.Len(), strings.Join(selected.Names(), ", "))
			ok, err := ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), question)
			if err != nil {
				return err
			}
			if !ok {
				ui.Warning("Aborted")
				return nil
			}
		}

		platform, store, err := connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return runEngine(cmd.Context(), cfg, logger, selected, opts, platform, store)
	})
}

func runEngine(ctx context.Context, cfg *config.Config, logger *logging.Logger, m *manifest.Manifest, opts deploy.Options, platform deploy.Platform, store deploy.Store) error {
	git, err := gitinfo.Read(filepath.Dir(cfg.Manifest))
	if err != nil {
		logger.Warn().Err(err).Msg("git metadata unavailable")
	}

	engine := deploy.New(platform,
		deploy.WithStore(store),
		deploy.WithLogger(logger),
		deploy.WithGitInfo(git),
	)
	engine.Report = report

	started := time.Now()
	results, err := engine.Run(ctx, m, opts)
	if platform != nil {
		record(cfg, logger, engine.RunID(), started, git, results, err)
		announce(ctx, cfg, logger, engine.RunID(), git, results, err)
	}
	if err != nil {
		return err
	}
	if len(results) == 0 {
		ui.Warning("No functions selected")
	}
	return nil
}
