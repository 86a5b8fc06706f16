// Package config loads the daemon's resolved configuration: defaults,
// layered with an optional YAML file, layered with MEMRI_* environment
// variables, loaded with spf13/viper and hot-reloadable via viper's
// fsnotify-backed watch.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the resolved configuration the capture pipeline and its
// ambient surfaces (archive, metrics, HTTP) consume.
type Config struct {
	MonitorID               int      `mapstructure:"monitor_id"`
	MonitorIDs              []int    `mapstructure:"monitor_ids"`
	CaptureIntervalMs       int      `mapstructure:"capture_interval_ms"`
	CaptureMaxIntervalMs    int      `mapstructure:"capture_max_interval_ms"`
	CaptureUnfocusedWindows bool     `mapstructure:"capture_unfocused_windows"`
	Languages               []string `mapstructure:"languages"`
	DatabaseURL             string   `mapstructure:"database_url"`
	WindowInclude           []string `mapstructure:"window_include"`
	WindowIgnore            []string `mapstructure:"window_ignore"`
	RetentionDays           int      `mapstructure:"retention_days"`
	MaxCaptures             int      `mapstructure:"max_captures"`
	ImageDir                string   `mapstructure:"image_dir"`

	// ArchiveDir selects the archive backend by scheme: "" disables it,
	// "file://..." or a bare path selects Local, "s3://bucket/prefix"
	// selects S3.
	ArchiveDir  string `mapstructure:"archive_dir"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	HTTPAddr    string `mapstructure:"http_addr"`

	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`

	// configFile is the path viper actually read, or "" when none was
	// found (pure defaults/env). Unexported and untagged, so Unmarshal
	// never touches it; Load sets it directly from viper.ConfigFileUsed.
	configFile string
}

// ConfigFile returns the path this Config was read from, or "" if none was
// found (defaults/environment only). WatchReload needs a concrete path, so
// callers should skip hot-reload when this is empty.
func (c *Config) ConfigFile() string {
	return c.configFile
}

// defaults mirrors spec.md §6's bracketed defaults plus the ambient fields
// the expanded spec adds.
func defaults() *Config {
	return &Config{
		MonitorID:               0,
		CaptureIntervalMs:       2000,
		CaptureMaxIntervalMs:    0, // resolved to 4x interval below when unset
		CaptureUnfocusedWindows: false,
		Languages:               []string{"en"},
		DatabaseURL:             "sqlite://memri.db",
		RetentionDays:           30,
		MaxCaptures:             5000,
		ImageDir:                "images",
		MetricsAddr:             ":9090",
		HTTPAddr:                ":7417",
		LogLevel:                "info",
	}
}

// Load resolves configuration from defaults, an optional YAML file at path
// (or, if path is empty, $MEMRI_CONFIG or ~/.config/memri/config.yaml), and
// MEMRI_*-prefixed environment variables, in that precedence order.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, defaults())

	v.SetConfigType("yaml")
	if path == "" {
		path = os.Getenv("MEMRI_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "memri"))
		}
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MEMRI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
		found = false
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	resolveDerived(cfg)
	if found {
		cfg.configFile = v.ConfigFileUsed()
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("monitor_id", d.MonitorID)
	v.SetDefault("monitor_ids", d.MonitorIDs)
	v.SetDefault("capture_interval_ms", d.CaptureIntervalMs)
	v.SetDefault("capture_max_interval_ms", d.CaptureMaxIntervalMs)
	v.SetDefault("capture_unfocused_windows", d.CaptureUnfocusedWindows)
	v.SetDefault("languages", d.Languages)
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("window_include", d.WindowInclude)
	v.SetDefault("window_ignore", d.WindowIgnore)
	v.SetDefault("retention_days", d.RetentionDays)
	v.SetDefault("max_captures", d.MaxCaptures)
	v.SetDefault("image_dir", d.ImageDir)
	v.SetDefault("archive_dir", d.ArchiveDir)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("http_addr", d.HTTPAddr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
}

// resolveDerived fills in defaults that depend on another already-resolved
// field (capture_max_interval_ms defaults to 4x the interval per spec.md §6).
func resolveDerived(c *Config) {
	if c.CaptureMaxIntervalMs <= 0 {
		c.CaptureMaxIntervalMs = c.CaptureIntervalMs * 4
	}
	if len(c.MonitorIDs) == 0 {
		c.MonitorIDs = []int{c.MonitorID}
	}
}

// IntervalDuration returns CaptureIntervalMs as a time.Duration.
func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.CaptureIntervalMs) * time.Millisecond
}

// MaxIntervalDuration returns CaptureMaxIntervalMs as a time.Duration.
func (c *Config) MaxIntervalDuration() time.Duration {
	return time.Duration(c.CaptureMaxIntervalMs) * time.Millisecond
}

// SQLiteDSN strips the "sqlite://" scheme DatabaseURL carries for
// human-friendliness; modernc.org/sqlite's driver takes a bare path/DSN.
func (c *Config) SQLiteDSN() string {
	return strings.TrimPrefix(c.DatabaseURL, "sqlite://")
}

// WatchReload re-resolves configuration on every file-system change to the
// YAML file at path and invokes onChange with the new Config. Built on
// viper's own fsnotify-backed WatchConfig/OnConfigChange hook; a reload
// that fails to parse is reported via onErr rather than crashing the
// watcher or touching the last-good Config.
func WatchReload(path string, onChange func(*Config), onErr func(error)) error {
	v := viper.New()
	setDefaults(v, defaults())
	v.SetConfigFile(path)
	v.SetEnvPrefix("MEMRI")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg := &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			onErr(fmt.Errorf("config: reload: %w", err))
			return
		}
		resolveDerived(cfg)
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}
