// Package config loads the journal configuration file. Every field has a
// default; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values.
const (
	DefaultEditor     = "vim"
	DefaultVolumeName = "JournalVault"
	DefaultImageSize  = "100m"
	DefaultBaseDir    = ".journal"
	FileName          = "config.yaml"
)

// Config is the journal configuration, read from ~/.journal/config.yaml.
type Config struct {
	// Editor opens entries; the EDITOR environment variable overrides it.
	Editor string `yaml:"editor"`

	// VolumeName names the encrypted volume; the mount point derives from it.
	VolumeName string `yaml:"volume_name"`

	// ImageSize is the size passed to the image creation tool, e.g. "100m".
	ImageSize string `yaml:"image_size"`

	// BaseDir holds the container image, plaintext entries, config and audit
	// log. Relative paths are resolved under the home directory.
	BaseDir string `yaml:"base_dir"`
}

// Load reads the config for the current user, merging file values over
// defaults. A missing file yields pure defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("config: failed to get user home directory: %w", err)
	}
	return LoadFrom(home)
}

// LoadFrom is Load with an explicit home directory, for tests.
func LoadFrom(home string) (*Config, error) {
	cfg := &Config{
		Editor:     DefaultEditor,
		VolumeName: DefaultVolumeName,
		ImageSize:  DefaultImageSize,
		BaseDir:    DefaultBaseDir,
	}

	data, err := os.ReadFile(filepath.Join(home, DefaultBaseDir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.resolve(home)
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: invalid config file: %w", err)
	}
	// Re-apply defaults for fields the file left empty.
	if cfg.Editor == "" {
		cfg.Editor = DefaultEditor
	}
	if cfg.VolumeName == "" {
		cfg.VolumeName = DefaultVolumeName
	}
	if cfg.ImageSize == "" {
		cfg.ImageSize = DefaultImageSize
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = DefaultBaseDir
	}
	cfg.resolve(home)
	return cfg, nil
}

func (c *Config) resolve(home string) {
	if !filepath.IsAbs(c.BaseDir) {
		c.BaseDir = filepath.Join(home, c.BaseDir)
	}
}

// EditorCommand returns the editor to launch: $EDITOR when set, otherwise the
// configured editor.
func (c *Config) EditorCommand() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	return c.Editor
}

// EntriesDir is the plaintext entries directory used before a vault exists
// and as the migration source.
func (c *Config) EntriesDir() string {
	return filepath.Join(c.BaseDir, "entries")
}

// AuditDir is the audit log directory.
func (c *Config) AuditDir() string {
	return filepath.Join(c.BaseDir, "audit")
}
