package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default test path, relative to the project
	DefaultTestPath = "."
	// DefaultShardCount asks the planner to recommend a shard count
	DefaultShardCount = "auto"
	// DefaultAlgorithm is the default partitioning algorithm
	DefaultAlgorithm = "round-robin"
	// DefaultMaxShards caps explicit shard counts
	DefaultMaxShards = 100
	// DefaultHistoryFile is the default JSON history location, relative to the project
	DefaultHistoryFile = ".tsp/history.json"
	// DefaultBlendAlpha replaces recorded durations with each new observation
	DefaultBlendAlpha = 1.0
	// DefaultConfigFile is looked up in the project path when no --config is given
	DefaultConfigFile = ".tsp.yaml"
	// DefaultEnvFile is loaded from the project path before reading TSP_* variables
	DefaultEnvFile = ".env"
)

// History backends
const (
	BackendJSON  = "json"
	BackendMySQL = "mysql"
)

// DefaultPatterns match test file names across common toolchains
var DefaultPatterns = []string{
	"*Test.scala",
	"*Spec.scala",
	"*Suite.scala",
	"*_test.go",
	"*.test.ts",
	"*.spec.ts",
	"*.test.js",
	"*.spec.js",
	"*Test.php",
}

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"target",
	"build",
	"dist",
	"out",
	"project",
}
