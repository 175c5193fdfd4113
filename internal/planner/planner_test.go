package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"tsp/internal/complexity"
	"tsp/internal/domain"
	"tsp/internal/shard"
	"tsp/internal/weight"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newPlanner(t *testing.T) (*Planner, string) {
	t.Helper()
	dir := t.TempDir()
	return New(complexity.NewEstimator(dir, zap.NewNop()), zap.NewNop(), 4), dir
}

func messages(diags []domain.Diagnostic) string {
	var b strings.Builder
	for _, d := range diags {
		b.WriteString(d.String())
		b.WriteString("\n")
	}
	return b.String()
}

func TestPlan_RoundRobin(t *testing.T) {
	p, _ := newPlanner(t)
	files := []string{"a/Test1.scala", "a/Test2.scala", "a/Test3.scala", "a/Test4.scala"}

	plan, err := p.Plan(context.Background(), Options{ShardCount: "2", Algorithm: "round-robin", CurrentShard: 2}, files, nil)

	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"a/Test1.scala", "a/Test3.scala"},
		{"a/Test2.scala", "a/Test4.scala"},
	}, plan.Shards.Files())
	require.Equal(t, 2, plan.Current)
	require.Equal(t, []string{"a/Test2.scala", "a/Test4.scala"}, plan.Selected)
	require.False(t, plan.Weighted)
	require.Empty(t, plan.Unit)
	require.Contains(t, messages(plan.Diagnostics), "Shard 1: 2 file(s)")
	require.Contains(t, messages(plan.Diagnostics), "Current shard 2 of 2: a/Test2.scala, a/Test4.scala")
}

func TestPlan_ComplexitySeparatesWeightedFiles(t *testing.T) {
	p, _ := newPlanner(t)

	plan, err := p.Plan(context.Background(), Options{ShardCount: "2", Algorithm: "complexity"}, []string{"Simple.scala", "PropertyTest.scala"}, nil)

	require.NoError(t, err)
	require.Len(t, plan.Shards, 2)
	require.Equal(t, []string{"PropertyTest.scala"}, plan.Shards[0].Files)
	require.Equal(t, []string{"Simple.scala"}, plan.Shards[1].Files)
	require.Equal(t, 4.0, plan.Shards[0].Weight)
	require.Equal(t, 1.0, plan.Shards[1].Weight)
	require.Equal(t, domain.UnitScore, plan.Unit)
	require.Equal(t, 1, plan.Current)

	// Neither file exists, so both are estimated from their paths
	require.Len(t, plan.Warnings(), 2)
}

func TestPlan_ComplexityReadsContent(t *testing.T) {
	p, dir := newPlanner(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.scala"), []byte("@Container"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B.scala"), []byte("plain"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "C.scala"), []byte("plain"), 0644))

	plan, err := p.Plan(context.Background(), Options{ShardCount: "2", Algorithm: "complexity"}, []string{"A.scala", "B.scala", "C.scala"}, nil)

	require.NoError(t, err)
	require.Empty(t, plan.Warnings())
	require.Equal(t, []string{"A.scala"}, plan.Shards[0].Files)
	require.Equal(t, []string{"B.scala", "C.scala"}, plan.Shards[1].Files)
}

func TestPlan_HistoryWithPartialCoverage(t *testing.T) {
	p, _ := newPlanner(t)
	history := weight.History{"t.scala": 50.5, "u.scala": 2}

	plan, err := p.Plan(context.Background(), Options{ShardCount: "2", Algorithm: "complexity"},
		[]string{"t.scala", "u.scala", "IntegrationSpec.scala"}, history)

	require.NoError(t, err)
	require.Equal(t, domain.UnitSeconds, plan.Unit)
	require.Equal(t, []string{"t.scala"}, plan.Shards[0].Files)
	require.Equal(t, []string{"IntegrationSpec.scala", "u.scala"}, plan.Shards[1].Files)
	require.InDelta(t, 50.5, plan.Shards[0].Weight, 1e-9)
	require.InDelta(t, 7.0, plan.Shards[1].Weight, 1e-9)

	out := messages(plan.Diagnostics)
	require.Contains(t, out, "Historical data covers 2 of 3 file(s)")
	require.Contains(t, out, "weight 50.50s")
	require.Len(t, plan.Warnings(), 1)
}

func TestPlan_RoundRobinIgnoresHistory(t *testing.T) {
	p, _ := newPlanner(t)

	plan, err := p.Plan(context.Background(), Options{ShardCount: "1", Algorithm: "round-robin"}, []string{"a", "b"}, weight.History{"a": 3})

	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, plan.Selected)
	require.Contains(t, messages(plan.Diagnostics), "Historical data ignored")
}

func TestPlan_AutoShardCount(t *testing.T) {
	p, _ := newPlanner(t)
	files := make([]string, 12)
	for i := range files {
		files[i] = fmt.Sprintf("Test%02d.scala", i)
	}

	plan, err := p.Plan(context.Background(), Options{ShardCount: "auto", Algorithm: "round-robin"}, files, nil)

	require.NoError(t, err)
	require.True(t, plan.AutoShards)
	require.Len(t, plan.Shards, 3)
	require.Contains(t, messages(plan.Diagnostics), "Auto-computed 3 shard(s) for 12 file(s)")
}

func TestPlan_EmptyInput(t *testing.T) {
	p, _ := newPlanner(t)

	// The algorithm is never consulted for an empty input
	plan, err := p.Plan(context.Background(), Options{ShardCount: "3", Algorithm: "nonsense"}, nil, nil)

	require.NoError(t, err)
	require.Equal(t, domain.ShardSet{{Index: 1, Files: []string{}}}, plan.Shards)
	require.Equal(t, 1, plan.Current)
	require.Empty(t, plan.Selected)
	require.Len(t, plan.Warnings(), 1)
	require.Contains(t, plan.Warnings()[0].Message, "No test files")
}

func TestPlan_ConfigErrors(t *testing.T) {
	p, _ := newPlanner(t)
	files := []string{"a", "b"}

	tests := []struct {
		name string
		opts Options
	}{
		{name: "missing shard count", opts: Options{Algorithm: "round-robin"}},
		{name: "zero shards", opts: Options{ShardCount: "0", Algorithm: "round-robin"}},
		{name: "non numeric", opts: Options{ShardCount: "many", Algorithm: "round-robin"}},
		{name: "above ceiling", opts: Options{ShardCount: "101", Algorithm: "round-robin", MaxShards: shard.DefaultMaxShards}},
		{name: "unknown algorithm", opts: Options{ShardCount: "2", Algorithm: "random"}},
		{name: "empty input still validates count", opts: Options{ShardCount: "-1", Algorithm: "round-robin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := files
			if strings.HasPrefix(tt.name, "empty") {
				in = nil
			}
			plan, err := p.Plan(context.Background(), tt.opts, in, nil)
			require.ErrorIs(t, err, shard.ErrInvalidConfig)
			require.Nil(t, plan)
		})
	}

	t.Run("ceiling disabled", func(t *testing.T) {
		plan, err := p.Plan(context.Background(), Options{ShardCount: "500", Algorithm: "round-robin"}, files, nil)
		require.NoError(t, err)
		require.Len(t, plan.Shards, 2)
	})
}

func TestPlan_CurrentShardClamped(t *testing.T) {
	p, _ := newPlanner(t)

	plan, err := p.Plan(context.Background(), Options{ShardCount: "2", Algorithm: "round-robin", CurrentShard: 7}, []string{"a", "b", "c"}, nil)

	require.NoError(t, err)
	require.Equal(t, 2, plan.Current)
	require.Equal(t, []string{"b"}, plan.Selected)
	require.Contains(t, messages(plan.Warnings()), "Shard index 7 out of range; using shard 2")
}

func TestPlan_NormalizesInput(t *testing.T) {
	p, _ := newPlanner(t)

	plan, err := p.Plan(context.Background(), Options{ShardCount: "2", Algorithm: "round-robin"}, []string{"d", "b", "a", "b", "c"}, nil)

	require.NoError(t, err)
	require.Equal(t, [][]string{{"a", "c"}, {"b", "d"}}, plan.Shards.Files())
	require.Contains(t, messages(plan.Warnings()), "Dropped 1 duplicate file(s)")
}

func TestPlan_Progress(t *testing.T) {
	p, _ := newPlanner(t)
	var mu sync.Mutex
	var calls, last int
	totals := map[int]bool{}
	p.SetProgress(func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		last = max(last, done)
		totals[total] = true
	})

	_, err := p.Plan(context.Background(), Options{ShardCount: "2", Algorithm: "complexity"}, []string{"a", "b", "c", "d", "e"}, nil)

	require.NoError(t, err)
	require.Equal(t, 5, calls)
	require.Equal(t, 5, last)
	require.Equal(t, map[int]bool{5: true}, totals)
}

func TestPlan_Cancelled(t *testing.T) {
	p, _ := newPlanner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Plan(ctx, Options{ShardCount: "2", Algorithm: "complexity"}, []string{"a", "b"}, nil)

	require.ErrorIs(t, err, context.Canceled)
}
