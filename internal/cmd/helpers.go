package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/cameronsjo/lambdo/internal/artifact"
	"github.com/cameronsjo/lambdo/internal/config"
	"github.com/cameronsjo/lambdo/internal/deploy"
	"github.com/cameronsjo/lambdo/internal/gitinfo"
	"github.com/cameronsjo/lambdo/internal/history"
	"github.com/cameronsjo/lambdo/internal/lambda"
	"github.com/cameronsjo/lambdo/internal/logging"
	"github.com/cameronsjo/lambdo/internal/manifest"
	"github.com/cameronsjo/lambdo/internal/notify"
	"github.com/cameronsjo/lambdo/internal/ui"
)

// connect builds the platform and, when a bucket is configured, the
// artifact store. Tests replace it.
var connect = func(ctx context.Context, cfg *config.Config) (deploy.Platform, deploy.Store, error) {
	awsCfg, err := lambda.LoadConfig(ctx, cfg.Region, cfg.Profile)
	if err != nil {
		return nil, nil, err
	}

	client := lambda.NewClient(awsCfg)
	client.SetWaitTimeout(cfg.WaitTimeout)

	var store deploy.Store
	if cfg.Bucket != "" {
		store = artifact.NewS3Store(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.Prefix)
	}
	return client, store, nil
}

// setup loads settings for cmd, locates the manifest and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("get working directory: %w", err)
	}
	if err := cfg.Resolve(cwd); err != nil {
		return nil, nil, err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	logger.Debug().Str("manifest", cfg.Manifest).Msg("settings loaded")
	return cfg, logger, nil
}

// loadDocument reads the manifest at path and resolves its placeholders.
func loadDocument(path string) (*manifest.Document, error) {
	doc, err := manifest.NewLoader().Load(path)
	if err != nil {
		return nil, err
	}
	return doc.Resolve()
}

// selectUnits narrows m to names, warning about names that match nothing.
func selectUnits(m *manifest.Manifest, names []string) *manifest.Manifest {
	for _, name := range m.Missing(names) {
		ui.Warning("No function named %q in manifest", name)
	}
	return m.Select(names)
}

// report prints the progress lines for one unit.
func report(r deploy.Result) {
	u := r.Unit
	switch u.Action {
	case deploy.ActionSkipped:
		ui.Packaged(u.Name, u.ArchiveSize)
	case deploy.ActionWritten:
		ui.Written(u.Name, u.Output, u.ArchiveSize)
	case deploy.ActionCreated, deploy.ActionUpdated:
		if u.Output != "" {
			ui.Written(u.Name, u.Output, u.ArchiveSize)
		}
		ui.Deployed(u.Name, u.Action == deploy.ActionCreated, u.ArchiveSize)
	}

	if r.Version != nil {
		ui.Published(r.Version.Name, r.Version.Version)
	}
	if r.Alias != nil {
		ui.Aliased(r.Alias.Name, r.Alias.Alias, r.Alias.Version, r.Alias.Action == deploy.ActionCreated)
	}
}

// record appends a run to the project history. Failures only warn.
func record(cfg *config.Config, logger *logging.Logger, runID string, started time.Time, git gitinfo.Info, results []deploy.Result, runErr error) {
	run := &history.Run{
		ID:       runID,
		Started:  started,
		Manifest: cfg.Manifest,
		Commit:   git.Commit,
		Branch:   git.Branch,
		Dirty:    git.Dirty,
	}
	for _, r := range results {
		u := history.Unit{
			Name:   r.Unit.Name,
			Action: string(r.Unit.Action),
			Size:   r.Unit.ArchiveSize,
			Digest: r.Unit.Digest,
		}
		if r.Version != nil {
			u.Version = r.Version.Version
		}
		if r.Alias != nil {
			u.Alias = r.Alias.Alias
		}
		run.Units = append(run.Units, u)
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	name, err := history.Record(cfg.StateDir(), run)
	if err != nil {
		logger.Warn().Err(err).Msg("record run history")
		return
	}
	logger.Debug().Str("record", name).Msg("run recorded")
}

// announce posts the run summary to the configured webhook. Failures only
// warn.
func announce(ctx context.Context, cfg *config.Config, logger *logging.Logger, runID string, git gitinfo.Info, results []deploy.Result, runErr error) {
	m := notify.NewManager(notify.NewDiscord(cfg.Notify))
	if !m.Enabled() {
		return
	}
	// The run context may already be cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := m.Send(ctx, notify.RunMessage(runID, git, results, runErr)); err != nil {
		logger.Warn().Err(err).Msg("send run notification")
	}
}
