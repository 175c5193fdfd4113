package domain

// Shard is one parallel execution group of test files
type Shard struct {
	Index  int      `json:"index"`  // 1-based position within the ShardSet
	Files  []string `json:"files"`  // Test file paths in assignment order
	Weight float64  `json:"weight"` // Sum of the members' resolved weights (0 for round-robin)
}

// ShardSet is the ordered result of a partitioning run
type ShardSet []Shard

// Files returns the file lists of every shard, in shard order
func (s ShardSet) Files() [][]string {
	out := make([][]string, len(s))
	for i, sh := range s {
		out[i] = sh.Files
	}
	return out
}

// TotalFiles returns the number of files across all shards
func (s ShardSet) TotalFiles() int {
	total := 0
	for _, sh := range s {
		total += len(sh.Files)
	}
	return total
}

// Pick returns the shard for a 1-based index. Indexes below 1 select the first
// shard and indexes past the end select the last one. ok is false only when
// the set is empty.
func (s ShardSet) Pick(index int) (Shard, int, bool) {
	if len(s) == 0 {
		return Shard{}, 0, false
	}
	if index < 1 {
		index = 1
	}
	if index > len(s) {
		index = len(s)
	}
	return s[index-1], index, true
}
