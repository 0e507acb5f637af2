package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/lambdo/internal/config"
	"github.com/cameronsjo/lambdo/internal/deploy"
)

// resetFlags restores every flag of c and its subcommands to its default.
// Cobra commands are package globals, so values leak between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCmd executes the root command with the given args and returns the output.
// This handles proper state reset between test executions.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	// Important: Set args BEFORE setting output buffers
	rootCmd.SetArgs(args)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(new(bytes.Buffer))
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// project writes files into an empty working directory and isolates $HOME
// so no tool config leaks in.
func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)
	return dir
}

// useConnect replaces the platform factory for one test.
func useConnect(t *testing.T, platform deploy.Platform, store deploy.Store) {
	t.Helper()
	orig := connect
	connect = func(context.Context, *config.Config) (deploy.Platform, deploy.Store, error) {
		return platform, store, nil
	}
	t.Cleanup(func() { connect = orig })
}

const sampleManifest = `_base: &base
  role: arn:aws:iam::123456789012:role/lambda
  runtime: python3.12
  handler: app.handler

api:
  <<: *base
  includes:
    src: ["*.py"]
  env:
    STAGE: prod
    ROLE: ${_base.role}

worker:
  <<: *base
  handler: worker.handler
  includes:
    src: ["worker.py"]
`

func sampleProject(t *testing.T) string {
	t.Helper()
	return project(t, map[string]string{
		"lambdo.yaml":   sampleManifest,
		"src/app.py":    "def handler(event, context): pass\n",
		"src/worker.py": "def handler(event, context): pass\n",
	})
}
