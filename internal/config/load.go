package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tsp/internal/shard"
)

// Environment variables read by Load
const (
	EnvShards         = "TSP_SHARDS"
	EnvAlgorithm      = "TSP_ALGORITHM"
	EnvMaxShards      = "TSP_MAX_SHARDS"
	EnvShardIndex     = "TSP_SHARD_INDEX"
	EnvCINodeIndex    = "CI_NODE_INDEX"
	EnvUseHistory     = "TSP_USE_HISTORY"
	EnvHistoryBackend = "TSP_HISTORY_BACKEND"
	EnvHistoryFile    = "TSP_HISTORY_FILE"
	EnvHistoryDSN     = "TSP_HISTORY_DSN"
)

// Load builds the configuration: defaults, then the YAML file, then the
// environment (after loading the project's .env), then flags.
func Load(flags Flags, getenv func(string) string) (*Config, error) {
	cfg := New()
	if flags.ProjectPath != "" {
		cfg.ProjectPath = flags.ProjectPath
	}
	cfg.Flags = flags

	if err := LoadEnv(cfg.ProjectPath); err != nil {
		return nil, err
	}

	if err := cfg.LoadFile(cfg.GetConfigFile(), flags.ConfigFile != ""); err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	cfg.ApplyFlags(flags)
	return cfg, nil
}

// LoadEnv loads projectPath/.env into the process environment without
// overriding variables that are already set. A missing file is ignored.
func LoadEnv(projectPath string) error {
	envPath := filepath.Join(projectPath, DefaultEnvFile)
	if err := godotenv.Load(envPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", envPath, err)
	}
	return nil
}

// LoadFile overlays the YAML file at path onto c. A missing file is an error
// only when required is set.
func (c *Config) LoadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return c.parseYAML(data, path)
}

func (c *Config) parseYAML(data []byte, name string) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", name, err)
	}
	return nil
}

// ApplyEnv overrides c with TSP_* variables. The shard index falls back to
// CI_NODE_INDEX when TSP_SHARD_INDEX is unset.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		return nil
	}

	if v := getenv(EnvShards); v != "" {
		c.ShardCount = v
	}
	if v := getenv(EnvAlgorithm); v != "" {
		c.Algorithm = v
	}
	if v := getenv(EnvHistoryBackend); v != "" {
		c.HistoryBackend = v
	}
	if v := getenv(EnvHistoryFile); v != "" {
		c.HistoryFile = v
	}
	if v := getenv(EnvHistoryDSN); v != "" {
		c.HistoryDSN = v
	}

	if v := getenv(EnvMaxShards); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return &shard.ConfigError{Field: EnvMaxShards, Value: v, Reason: "must be a non-negative integer"}
		}
		c.MaxShards = n
	}

	if v := getenv(EnvUseHistory); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return &shard.ConfigError{Field: EnvUseHistory, Value: v, Reason: "must be a boolean"}
		}
		c.UseHistory = b
	}

	for _, key := range []string{EnvShardIndex, EnvCINodeIndex} {
		v := getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 {
			return &shard.ConfigError{Field: key, Value: v, Reason: "must be a positive integer"}
		}
		c.ShardIndex = n
		break
	}
	return nil
}
