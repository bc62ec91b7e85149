// Package config provides configuration management for shaprbackup.
//
// Resolution order is flag > environment (SHAPRBACKUP_*) > config file >
// default. Components never read configuration ambiently; the resolved
// Config is passed into them explicitly so tests can run against fixture
// catalogs.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/looking-glass-station/shapr3d-backup/internal/errors"
	"github.com/looking-glass-station/shapr3d-backup/internal/util"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
	// ConfigDir is the per-user configuration directory.
	ConfigDir = ".shaprbackup"

	// EnvPrefix namespaces the tool's environment variables.
	EnvPrefix = "SHAPRBACKUP"
)

// Config is the resolved run configuration.
type Config struct {
	// ExportDir is the backup output root. Required.
	ExportDir string `yaml:"export_dir" mapstructure:"export_dir"`

	// IncludeTempState exports trashed projects too.
	IncludeTempState bool `yaml:"include_tempstate" mapstructure:"include_tempstate"`

	// AddRevision exports every historical revision, not just the
	// latest. On by default; turn off to save space.
	AddRevision bool `yaml:"add_revision" mapstructure:"add_revision"`

	// Jobs bounds concurrent exports. 1 means sequential.
	Jobs int `yaml:"jobs" mapstructure:"jobs"`

	// SourceRoot overrides Shapr3D package root discovery.
	SourceRoot string `yaml:"source_root,omitempty" mapstructure:"source_root"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AddRevision: true,
		Jobs:        1,
	}
}

// SetDefaults seeds a viper instance with the built-in values so file,
// env, and flag layers merge over them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("export_dir", d.ExportDir)
	v.SetDefault("include_tempstate", d.IncludeTempState)
	v.SetDefault("add_revision", d.AddRevision)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("source_root", d.SourceRoot)
}

// FromViper unmarshals the merged configuration layers.
func FromViper(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.ErrConfigInvalid("config", err.Error())
	}
	return c, nil
}

// Validate checks the configuration for an export run.
func (c Config) Validate() error {
	if c.ExportDir == "" {
		return errors.ErrConfigInvalid("export_dir", "an export directory is required")
	}
	if c.Jobs < 1 {
		return errors.ErrConfigInvalid("jobs", "must be at least 1")
	}
	return nil
}

// DefaultPath returns the per-user config file path.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFileName), nil
}

// WriteDefault writes a starter config file with the built-in values.
// Existing files are left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.ErrConfigInvalid("config", "config file already exists at "+path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(path, data, 0644)
}
