// Package config handles configuration parsing for boxsync.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kestrelbio/boxsync/internal/ports"
)

// DefaultConfigPath returns the default config file path:
// $XDG_CONFIG_HOME/boxsync/config.yaml or ~/.config/boxsync/config.yaml
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "boxsync", "config.yaml")
}

// Config represents the top-level configuration.
type Config struct {
	Remote  RemoteConfig  `yaml:"remote"`
	Sync    SyncConfig    `yaml:"sync"`
	Logging LoggingConfig `yaml:"logging"`
}

// RemoteConfig defines the FTPS endpoint and credentials. The password is
// never stored in the file; PasswordEnv names the environment variable
// holding it.
type RemoteConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	User        string        `yaml:"user"`
	PasswordEnv string        `yaml:"password_env"`
	Timeout     time.Duration `yaml:"timeout"`

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// DisableTLS dials plain FTP; for local test servers only.
	DisableTLS bool `yaml:"disable_tls"`
}

// SyncConfig defines what to mirror and how.
type SyncConfig struct {
	Direction  string        `yaml:"direction"` // "pull" or "push"
	LocalRoot  string        `yaml:"local_root"`
	RemoteRoot string        `yaml:"remote_root"`
	Overwrite  bool          `yaml:"overwrite"`
	DryRun     bool          `yaml:"dry_run"`
	Verbose    bool          `yaml:"verbose"`
	Filetypes  []string      `yaml:"filetypes"`
	Exclusions []string      `yaml:"exclusions"`
	Interval   time.Duration `yaml:"interval"` // 0 means one-shot
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`    // "debug", "info", "warn", "error"
	Sanitize bool   `yaml:"sanitize"` // redact credentials from logs
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Remote: RemoteConfig{
			Port:        21,
			PasswordEnv: "BOXSYNC_PASSWORD",
			Timeout:     30 * time.Second,
		},
		Sync: SyncConfig{
			Direction: "pull",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Sanitize: true,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. An optional FileSystem can be passed for testing; if omitted,
// the real OS is used.
func Load(path string, fsys ...ports.FileSystem) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	var data []byte
	var err error
	if len(fsys) > 0 && fsys[0] != nil {
		data, err = fsys[0].ReadFile(path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Remote.Host == "" {
		return fmt.Errorf("remote.host is required")
	}
	if c.Remote.User == "" {
		return fmt.Errorf("remote.user is required")
	}
	if c.Remote.Port <= 0 || c.Remote.Port > 65535 {
		return fmt.Errorf("remote.port %d is out of range", c.Remote.Port)
	}
	switch c.Sync.Direction {
	case "pull", "push":
	default:
		return fmt.Errorf("sync.direction must be \"pull\" or \"push\", got %q", c.Sync.Direction)
	}
	if c.Sync.LocalRoot == "" {
		return fmt.Errorf("sync.local_root is required")
	}
	if c.Sync.RemoteRoot == "" {
		return fmt.Errorf("sync.remote_root is required")
	}
	if c.Sync.Interval < 0 {
		return fmt.Errorf("sync.interval must not be negative")
	}
	return nil
}

// Password resolves the remote password from the environment variable
// named by remote.password_env.
func (c *Config) Password() (string, error) {
	if c.Remote.PasswordEnv == "" {
		return "", fmt.Errorf("remote.password_env is not set")
	}
	password, ok := os.LookupEnv(c.Remote.PasswordEnv)
	if !ok {
		return "", fmt.Errorf("environment variable %s is not set", c.Remote.PasswordEnv)
	}
	return password, nil
}
