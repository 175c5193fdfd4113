package shard

import (
	"sort"
	"strings"

	"tsp/internal/domain"
)

// Algorithm names accepted by Lookup
const (
	AlgorithmRoundRobin = "round-robin"
	AlgorithmComplexity = "complexity"
)

// Weigher returns the resolved weight of a test file
type Weigher interface {
	Weight(path string) float64
}

// WeigherFunc adapts a function to the Weigher interface
type WeigherFunc func(path string) float64

// Weight calls f(path)
func (f WeigherFunc) Weight(path string) float64 {
	return f(path)
}

// Strategy distributes test files across shards
type Strategy interface {
	// Name returns the algorithm name the strategy is registered under
	Name() string
	// Weighted reports whether the strategy consults file weights
	Weighted() bool
	// Partition splits files into min(shardCount, len(files)) shards.
	// Every file lands in exactly one shard; an empty input yields no shards.
	Partition(files []string, shardCount int, w Weigher) domain.ShardSet
}

// Lookup returns the strategy registered under name
func Lookup(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case AlgorithmRoundRobin, "roundrobin", "even":
		return NewRoundRobin(), nil
	case AlgorithmComplexity, "bin-packing", "weighted":
		return NewWeighted(), nil
	}
	return nil, &ConfigError{Field: "algorithm", Value: name, Reason: "unknown algorithm (want round-robin or complexity)"}
}

// actualShards is min(requested, fileCount), and at least 1 when there are files
func actualShards(fileCount, requested int) int {
	if fileCount == 0 {
		return 0
	}
	if requested < 1 {
		requested = 1
	}
	return min(requested, fileCount)
}

func newShardSet(count int) domain.ShardSet {
	set := make(domain.ShardSet, count)
	for i := range set {
		set[i] = domain.Shard{Index: i + 1, Files: make([]string, 0)}
	}
	return set
}

// RoundRobin distributes files evenly across shards, ignoring weight
type RoundRobin struct{}

// NewRoundRobin creates a new RoundRobin strategy
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

func (s *RoundRobin) Name() string   { return AlgorithmRoundRobin }
func (s *RoundRobin) Weighted() bool { return false }

// Partition assigns the file at index i to shard i mod shardCount. The input
// order is kept, so sorted input always yields the same shards.
func (s *RoundRobin) Partition(files []string, shardCount int, _ Weigher) domain.ShardSet {
	count := actualShards(len(files), shardCount)
	distribution := newShardSet(count)

	for i, file := range files {
		shardIndex := i % count
		distribution[shardIndex].Files = append(distribution[shardIndex].Files, file)
	}

	return distribution
}

// Weighted balances aggregate weight across shards with greedy
// longest-processing-time-first bin packing.
type Weighted struct{}

// NewWeighted creates a new Weighted strategy
func NewWeighted() *Weighted {
	return &Weighted{}
}

func (s *Weighted) Name() string   { return AlgorithmComplexity }
func (s *Weighted) Weighted() bool { return true }

// Partition places files heaviest first, each onto the shard with the lowest
// running total. Ties on weight keep the input order; ties on running total go
// to the lowest shard index. A nil Weigher weighs every file as 1.
func (s *Weighted) Partition(files []string, shardCount int, w Weigher) domain.ShardSet {
	count := actualShards(len(files), shardCount)
	distribution := newShardSet(count)
	if count == 0 {
		return distribution
	}

	type weighted struct {
		path   string
		weight float64
	}
	items := make([]weighted, len(files))
	for i, file := range files {
		weight := 1.0
		if w != nil {
			weight = w.Weight(file)
		}
		items[i] = weighted{path: file, weight: weight}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].weight > items[j].weight
	})

	for _, item := range items {
		lightest := 0
		for i := 1; i < count; i++ {
			if distribution[i].Weight < distribution[lightest].Weight {
				lightest = i
			}
		}
		distribution[lightest].Files = append(distribution[lightest].Files, item.path)
		distribution[lightest].Weight += item.weight
	}

	return distribution
}
