package shard

import (
	"strconv"
	"strings"
)

// Auto is the shard count value that asks for Recommend
const Auto = "auto"

// DefaultMaxShards is the default ceiling on an explicit shard count
const DefaultMaxShards = 100

// Recommend returns a shard count for fileCount files when none is configured:
// one shard up to 5 files, one per 5 files up to 20, then one per 10 files
// capped at 10 shards.
func Recommend(fileCount int) int {
	switch {
	case fileCount <= 5:
		return 1
	case fileCount <= 20:
		return ceilDiv(fileCount, 5)
	default:
		return min(ceilDiv(fileCount, 10), 10)
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// ParseCount parses an explicit shard count. value "auto" returns auto=true.
// maxShards caps explicit counts; 0 or less disables the cap.
func ParseCount(value string, maxShards int) (count int, auto bool, err error) {
	v := strings.TrimSpace(value)
	if strings.EqualFold(v, Auto) {
		return 0, true, nil
	}
	if v == "" {
		return 0, false, &ConfigError{Field: "shard count", Reason: "is required (a positive integer or \"auto\")"}
	}

	n, convErr := strconv.Atoi(v)
	if convErr != nil {
		return 0, false, &ConfigError{Field: "shard count", Value: value, Reason: "is not an integer"}
	}
	if n < 1 {
		return 0, false, &ConfigError{Field: "shard count", Value: value, Reason: "must be positive"}
	}
	if maxShards > 0 && n > maxShards {
		return 0, false, &ConfigError{Field: "shard count", Value: value, Reason: "exceeds the maximum of " + strconv.Itoa(maxShards)}
	}
	return n, false, nil
}
