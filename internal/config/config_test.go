package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronsjo/lambdo/internal/lambda"
)

// testFlags mirrors the flags of the root command.
func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("lambdo", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "")
	fs.BoolP("print", "p", false, "")
	fs.BoolP("deploy", "d", false, "")
	fs.BoolP("dry-run", "n", false, "")
	fs.BoolP("version", "v", false, "")
	fs.StringP("alias", "a", "", "")
	fs.BoolP("latest", "l", false, "")
	fs.StringP("output", "o", "", "")
	fs.String("bucket", "", "")
	fs.String("prefix", "", "")
	fs.String("region", "", "")
	fs.String("profile", "", "")
	fs.String("description", "", "")
	fs.String("notify-webhook", "", "")
	fs.BoolP("yes", "y", false, "")
	fs.String("log-level", DefaultLogLevel, "")
	fs.String("log-format", DefaultLogFormat, "")
	fs.Duration("wait-timeout", DefaultWaitTimeout, "")
	return fs
}

// isolate runs the test in an empty working directory and home.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(testFlags())
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, DefaultWaitTimeout, cfg.WaitTimeout)
	assert.Equal(t, lambda.DefaultWaitTimeout, cfg.WaitTimeout, "the flag default is the client default")
	assert.False(t, cfg.Deploy)
	assert.Empty(t, cfg.Manifest)
}

func TestLoad_Flags(t *testing.T) {
	isolate(t)
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"-d", "-v", "-a", "live", "-c", "functions.yaml", "--region", "eu-west-1"}))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.True(t, cfg.Deploy)
	assert.True(t, cfg.Publish)
	assert.Equal(t, "live", cfg.Alias)
	assert.Equal(t, "functions.yaml", cfg.Manifest)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.True(t, cfg.Remote())
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("LAMBDO_REGION", "us-east-2")
	t.Setenv("LAMBDO_DRY_RUN", "true")
	t.Setenv("LAMBDO_WAIT_TIMEOUT", "30s")

	cfg, err := Load(testFlags())
	require.NoError(t, err)

	assert.Equal(t, "us-east-2", cfg.Region)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, 30*time.Second, cfg.WaitTimeout)
}

func TestLoad_FlagBeatsEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("LAMBDO_REGION", "us-east-2")
	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--region", "ap-south-1"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", cfg.Region)
}

func TestLoad_ToolConfigFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lambdo.yaml"), []byte("bucket: artifacts\nprefix: builds\nlog-format: json\n"), 0644))

	cfg, err := Load(testFlags())
	require.NoError(t, err)

	assert.Equal(t, "artifacts", cfg.Bucket)
	assert.Equal(t, "builds", cfg.Prefix)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.Notify)
}

func TestLoad_NotifyWebhookFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("LAMBDO_NOTIFY_WEBHOOK", "https://discord.example/hook")

	cfg, err := Load(testFlags())
	require.NoError(t, err)
	assert.Equal(t, "https://discord.example/hook", cfg.Notify)
}

func TestLoad_MalformedToolConfig(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lambdo.yaml"), []byte("bucket: [unclosed\n"), 0644))

	_, err := Load(testFlags())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read tool config")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{LogFormat: "pretty"}},
		{name: "latest without alias", cfg: Config{LogFormat: "pretty", Latest: true}, wantErr: "--latest requires --alias"},
		{name: "prefix without bucket", cfg: Config{LogFormat: "json", Prefix: "p"}, wantErr: "--prefix requires --bucket"},
		{name: "unknown log format", cfg: Config{LogFormat: "xml"}, wantErr: "unknown log format"},
		{name: "negative wait", cfg: Config{LogFormat: "json", WaitTimeout: -time.Second}, wantErr: "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Remote(t *testing.T) {
	assert.False(t, (&Config{}).Remote())
	assert.False(t, (&Config{DryRun: true, Deploy: true}).Remote())
	assert.True(t, (&Config{Alias: "live"}).Remote())
	assert.True(t, (&Config{Publish: true}).Remote())
}

func TestFindManifest(t *testing.T) {
	t.Run("first known name wins", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "deploy.yaml"), nil, 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "lambdo.yml"), nil, 0644))

		got, err := FindManifest(dir, "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "lambdo.yml"), got)
	})

	t.Run("legacy deploy.yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "deploy.yaml"), nil, 0644))

		got, err := FindManifest(dir, "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "deploy.yaml"), got)
	})

	t.Run("directory named like a manifest is skipped", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "lambdo.yaml"), 0755))

		_, err := FindManifest(dir, "")
		assert.ErrorIs(t, err, ErrManifestNotFound)
	})

	t.Run("explicit path", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "functions.yaml")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		got, err := FindManifest(dir, path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := FindManifest(t.TempDir(), "nope.yaml")
		assert.ErrorIs(t, err, ErrManifestNotFound)
	})

	t.Run("nothing found", func(t *testing.T) {
		_, err := FindManifest(t.TempDir(), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrManifestNotFound)
		assert.Contains(t, err.Error(), "lambdo.yaml, lambdo.yml, deploy.yaml")
	})
}

func TestConfig_Resolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lambdo.yaml"), nil, 0644))

	cfg := &Config{}
	require.NoError(t, cfg.Resolve(dir))
	assert.Equal(t, filepath.Join(dir, "lambdo.yaml"), cfg.Manifest)
	assert.Equal(t, filepath.Join(dir, ".lambdo"), cfg.StateDir())
	assert.Equal(t, filepath.Join(dir, ".lambdo", "locks"), cfg.LocksDir())
}
