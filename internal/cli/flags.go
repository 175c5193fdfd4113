package cli

import "tsp/internal/config"

// Flags holds command-line flags
type Flags struct {
	ConfigFile     string
	ProjectPath    string
	Verbose        bool
	TestPath       string
	NameFilter     string
	Shards         string
	Algorithm      string
	ShardIndex     int
	MaxShards      int
	UseHistory     bool
	HistorySet     bool
	HistoryBackend string
	HistoryFile    string
	HistoryDSN     string
	BaseDir        string
	Concurrency    int
	JSON           bool
	TestCases      bool
	Scores         bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ConfigFile:     f.ConfigFile,
		ProjectPath:    f.ProjectPath,
		TestPath:       f.TestPath,
		NameFilter:     f.NameFilter,
		Shards:         f.Shards,
		Algorithm:      f.Algorithm,
		ShardIndex:     f.ShardIndex,
		MaxShards:      f.MaxShards,
		UseHistory:     f.UseHistory,
		HistorySet:     f.HistorySet,
		HistoryBackend: f.HistoryBackend,
		HistoryFile:    f.HistoryFile,
		HistoryDSN:     f.HistoryDSN,
		BaseDir:        f.BaseDir,
		Concurrency:    f.Concurrency,
		JSON:           f.JSON,
		Verbose:        f.Verbose,
		TestCases:      f.TestCases,
		Scores:         f.Scores,
	}
}
