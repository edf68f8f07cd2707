// Package config provides configuration loading and structs for the dialname server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DIALNAME_"

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug" toml:"debug"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Search  SearchConfig  `yaml:"search" toml:"search"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories" toml:"directories"`
	Extensions  []string `yaml:"extensions" toml:"extensions"`
	Recursive   *bool    `yaml:"recursive" toml:"recursive,omitempty"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

// StorageConfig holds paths for the contact database and keyword index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path" toml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path" toml:"bleve_index_path"`
}

// SearchConfig holds contact matching settings.
type SearchConfig struct {
	DefaultThreshold float64 `yaml:"default_threshold" toml:"default_threshold"`
	DefaultLimit     int     `yaml:"default_limit" toml:"default_limit"`
	MaxLimit         int     `yaml:"max_limit" toml:"max_limit"`
	NameBoost        float64 `yaml:"name_boost" toml:"name_boost"`
	Suggestions      int     `yaml:"suggestions" toml:"suggestions"`
	// Spelling suggestions only use name terms within this edit distance that
	// appear in at least SuggestionMinFrequency contacts.
	SuggestionMaxDistance  int `yaml:"suggestion_max_distance" toml:"suggestion_max_distance"`
	SuggestionMinFrequency int `yaml:"suggestion_min_frequency" toml:"suggestion_min_frequency"`
	// CacheTTLSeconds bounds how long a built contact directory is reused.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" toml:"cache_ttl_seconds"`
}

// isTOML reports whether path should be read and written as TOML.
func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads and parses the config file at path (YAML, or TOML for *.toml),
// applies environment overrides, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Default returns a config built from defaults and environment overrides only.
func Default() (*Config, error) {
	var cfg Config
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyEnv overrides cfg from DIALNAME_* variables found by lookup:
// HOST, PORT, DB_PATH, INDEX_PATH and DEBUG.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "HOST"); ok && v != "" {
		cfg.Server.Host = v
	}
	if v, ok := lookup(EnvPrefix + "PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %sPORT %q", EnvPrefix, v)
		}
		cfg.Server.Port = port
	}
	if v, ok := lookup(EnvPrefix + "DB_PATH"); ok && v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v, ok := lookup(EnvPrefix + "INDEX_PATH"); ok && v != "" {
		cfg.Storage.BleveIndexPath = v
	}
	if v, ok := lookup(EnvPrefix + "DEBUG"); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sDEBUG %q", EnvPrefix, v)
		}
		cfg.Debug = debug
	}
	return nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
