// Package config loads client settings.
//
// Priority (lowest to highest): built-in defaults, YAML file,
// CASHBOOK_* environment variables, command-line flags. Flags are
// applied by the CLI on top of the loaded Config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "CASHBOOK_"

// Config holds the client settings.
type Config struct {
	DBPath        string        `yaml:"db"`
	RemoteDBPath  string        `yaml:"remote_db"`
	OfflineMarker string        `yaml:"offline_marker"`
	LogFile       string        `yaml:"log_file"`
	LogLevel      string        `yaml:"log_level"`
	RemoteTimeout time.Duration `yaml:"remote_timeout"`
	RetryBase     time.Duration `yaml:"retry_base"`
	RetryCap      time.Duration `yaml:"retry_cap"`
	ProbeInterval time.Duration `yaml:"probe_interval"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DBPath:        "cashbook.db",
		RemoteDBPath:  "cashbook-remote.db",
		OfflineMarker: "cashbook.offline",
		LogLevel:      "info",
		RemoteTimeout: 10 * time.Second,
		RetryBase:     time.Second,
		RetryCap:      5 * time.Minute,
		ProbeInterval: 15 * time.Second,
	}
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment. A missing file is not an error unless required is set.
func Load(path string, required bool, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) || required {
				return nil, err
			}
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.loadEnv(getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile накладывает значения из YAML поверх текущих
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // опечатки в ключах - ошибка
	if err := decoder.Decode(c); err != nil {
		// Пустой файл допустим
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv(getenv func(string) string) error {
	texts := map[string]*string{
		"DB":             &c.DBPath,
		"REMOTE_DB":      &c.RemoteDBPath,
		"OFFLINE_MARKER": &c.OfflineMarker,
		"LOG_FILE":       &c.LogFile,
		"LOG_LEVEL":      &c.LogLevel,
	}
	for name, dst := range texts {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"REMOTE_TIMEOUT": &c.RemoteTimeout,
		"RETRY_BASE":     &c.RetryBase,
		"RETRY_CAP":      &c.RetryCap,
		"PROBE_INTERVAL": &c.ProbeInterval,
	}
	for name, dst := range durations {
		v := getenv(EnvPrefix + name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
	}
	return nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db path is required")
	}
	if c.RemoteDBPath == "" {
		return errors.New("remote db path is required")
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("remote timeout must be positive, got %s", c.RemoteTimeout)
	}
	if c.RetryBase <= 0 || c.RetryCap < c.RetryBase {
		return fmt.Errorf("retry base %s and cap %s are inconsistent", c.RetryBase, c.RetryCap)
	}
	if c.ProbeInterval <= 0 {
		return fmt.Errorf("probe interval must be positive, got %s", c.ProbeInterval)
	}
	return nil
}
