package config

import (
	"path/filepath"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `yaml:"project_path"`
	TestPath    string `yaml:"test_path"`

	// Discovery settings
	Patterns      []string `yaml:"patterns"`
	PathsToIgnore []string `yaml:"ignore"`

	// Sharding settings
	ShardCount string `yaml:"shards"`
	Algorithm  string `yaml:"algorithm"`
	MaxShards  int    `yaml:"max_shards"`
	// ShardIndex is per runner, so it only comes from the environment or flags
	ShardIndex int `yaml:"-"`

	// Estimation settings
	BaseDir     string `yaml:"base_dir"`
	Concurrency int    `yaml:"concurrency"`

	// History settings
	UseHistory     bool    `yaml:"use_history"`
	HistoryBackend string  `yaml:"history_backend"`
	HistoryFile    string  `yaml:"history_file"`
	HistoryDSN     string  `yaml:"history_dsn"`
	BlendAlpha     float64 `yaml:"blend_alpha"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Flags holds command-line flags. Zero values (and -1 for MaxShards) mean
// "not given".
type Flags struct {
	ConfigFile     string
	ProjectPath    string
	TestPath       string
	NameFilter     string
	Shards         string
	Algorithm      string
	ShardIndex     int
	MaxShards      int
	UseHistory     bool
	HistorySet     bool // UseHistory was given explicitly, so false counts too
	HistoryBackend string
	HistoryFile    string
	HistoryDSN     string
	BaseDir        string
	Concurrency    int
	JSON           bool
	Verbose        bool
	TestCases      bool
	Scores         bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		TestPath:       DefaultTestPath,
		ShardCount:     DefaultShardCount,
		Algorithm:      DefaultAlgorithm,
		MaxShards:      DefaultMaxShards,
		ShardIndex:     1,
		HistoryBackend: BackendJSON,
		HistoryFile:    DefaultHistoryFile,
		BlendAlpha:     DefaultBlendAlpha,
		Flags:          Flags{MaxShards: -1},
	}
	cfg.Patterns = append([]string(nil), DefaultPatterns...)
	cfg.PathsToIgnore = append([]string(nil), DefaultPathsToIgnore...)
	return cfg
}

// ApplyFlags overrides the configuration with every flag that was given
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags

	if flags.ProjectPath != "" {
		c.ProjectPath = flags.ProjectPath
	}
	if flags.Shards != "" {
		c.ShardCount = flags.Shards
	}
	if flags.Algorithm != "" {
		c.Algorithm = flags.Algorithm
	}
	if flags.ShardIndex > 0 {
		c.ShardIndex = flags.ShardIndex
	}
	if flags.MaxShards >= 0 {
		c.MaxShards = flags.MaxShards
	}
	if flags.HistorySet || flags.UseHistory {
		c.UseHistory = flags.UseHistory
	}
	if flags.HistoryBackend != "" {
		c.HistoryBackend = flags.HistoryBackend
	}
	if flags.HistoryFile != "" {
		c.HistoryFile = flags.HistoryFile
	}
	if flags.HistoryDSN != "" {
		c.HistoryDSN = flags.HistoryDSN
		if flags.HistoryBackend == "" {
			c.HistoryBackend = BackendMySQL
		}
	}
	if flags.BaseDir != "" {
		c.BaseDir = flags.BaseDir
	}
	if flags.Concurrency > 0 {
		c.Concurrency = flags.Concurrency
	}
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		// If TestPath is provided, make it relative to ProjectPath if it's not absolute
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}

	// Default: combine project path and test path
	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetHistoryPath returns the JSON history file, resolved against the project
func (c *Config) GetHistoryPath() string {
	if filepath.IsAbs(c.HistoryFile) {
		return c.HistoryFile
	}
	return filepath.Join(c.ProjectPath, c.HistoryFile)
}

// GetBaseDir returns the directory complexity estimation may read from
func (c *Config) GetBaseDir() string {
	if c.BaseDir == "" {
		return c.ProjectPath
	}
	if filepath.IsAbs(c.BaseDir) {
		return c.BaseDir
	}
	return filepath.Join(c.ProjectPath, c.BaseDir)
}

// GetConfigFile returns the YAML config file to read
func (c *Config) GetConfigFile() string {
	if c.Flags.ConfigFile != "" {
		return c.Flags.ConfigFile
	}
	return filepath.Join(c.ProjectPath, DefaultConfigFile)
}
