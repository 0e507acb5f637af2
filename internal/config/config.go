// Package config handles manifest discovery and tool settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cameronsjo/lambdo/internal/lambda"
)

// ManifestNames are tried in order when no manifest path is given.
var ManifestNames = []string{"lambdo.yaml", "lambdo.yml", "deploy.yaml"}

// EnvPrefix prefixes environment overrides (LAMBDO_REGION, LAMBDO_DRY_RUN).
const EnvPrefix = "LAMBDO"

// StateDirName is the per-project directory for lambdo state.
const StateDirName = ".lambdo"

// Defaults.
const (
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "pretty"
	DefaultWaitTimeout = lambda.DefaultWaitTimeout
)

// ErrManifestNotFound indicates no manifest exists in the searched directory.
var ErrManifestNotFound = errors.New("manifest not found")

// Config holds the settings of one lambdo invocation.
type Config struct {
	// Manifest is the manifest path. Empty until Resolve finds one.
	Manifest string `mapstructure:"config"`

	Print       bool          `mapstructure:"print"`
	Deploy      bool          `mapstructure:"deploy"`
	DryRun      bool          `mapstructure:"dry-run"`
	Publish     bool          `mapstructure:"version"`
	Alias       string        `mapstructure:"alias"`
	Latest      bool          `mapstructure:"latest"`
	Output      string        `mapstructure:"output"`
	Bucket      string        `mapstructure:"bucket"`
	Prefix      string        `mapstructure:"prefix"`
	Region      string        `mapstructure:"region"`
	Profile     string        `mapstructure:"profile"`
	Description string        `mapstructure:"description"`
	Notify      string        `mapstructure:"notify-webhook"`
	Yes         bool          `mapstructure:"yes"`
	LogLevel    string        `mapstructure:"log-level"`
	LogFormat   string        `mapstructure:"log-format"`
	WaitTimeout time.Duration `mapstructure:"wait-timeout"`
}

// Load merges defaults, the optional .lambdo.yaml tool config (working
// directory first, then $HOME), LAMBDO_* environment variables and flags.
// Flags set on the command line win.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(".lambdo")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read tool config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log-level", DefaultLogLevel)
	v.SetDefault("log-format", DefaultLogFormat)
	v.SetDefault("wait-timeout", DefaultWaitTimeout)
}

// Validate rejects contradictory settings.
func (c *Config) Validate() error {
	if c.Latest && c.Alias == "" {
		return errors.New("--latest requires --alias")
	}
	if c.Prefix != "" && c.Bucket == "" {
		return errors.New("--prefix requires --bucket")
	}
	switch c.LogFormat {
	case "pretty", "json":
	default:
		return fmt.Errorf("unknown log format %q (want pretty or json)", c.LogFormat)
	}
	if c.WaitTimeout < 0 {
		return errors.New("wait timeout must not be negative")
	}
	return nil
}

// Remote reports whether the run talks to the platform.
func (c *Config) Remote() bool {
	return !c.DryRun && (c.Deploy || c.Publish || c.Alias != "")
}

// Resolve fills in the manifest path, searching dir when none was given.
func (c *Config) Resolve(dir string) error {
	path, err := FindManifest(dir, c.Manifest)
	if err != nil {
		return err
	}
	c.Manifest = path
	return nil
}

// StateDir returns the lambdo state directory next to the manifest.
func (c *Config) StateDir() string {
	return filepath.Join(filepath.Dir(c.Manifest), StateDirName)
}

// LocksDir returns the directory holding run locks.
func (c *Config) LocksDir() string {
	return filepath.Join(c.StateDir(), "locks")
}

// FindManifest returns explicit when set, otherwise the first of
// ManifestNames present in dir.
func FindManifest(dir, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%s: %w", explicit, ErrManifestNotFound)
		}
		return explicit, nil
	}

	for _, name := range ManifestNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w in %s (tried %s)", ErrManifestNotFound, dir, strings.Join(ManifestNames, ", "))
}
