package shard

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"tsp/internal/domain"
)

func strategies() []Strategy {
	return []Strategy{NewRoundRobin(), NewWeighted()}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"round-robin", "Round-Robin", "roundrobin"} {
		s, err := Lookup(name)
		require.NoError(t, err)
		require.Equal(t, AlgorithmRoundRobin, s.Name())
		require.False(t, s.Weighted())
	}
	for _, name := range []string{"complexity", "bin-packing", "weighted"} {
		s, err := Lookup(name)
		require.NoError(t, err)
		require.Equal(t, AlgorithmComplexity, s.Name())
		require.True(t, s.Weighted())
	}

	_, err := Lookup("random")
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.Contains(t, err.Error(), "random")
}

func TestRoundRobin_Partition(t *testing.T) {
	files := []string{"a/Test1.scala", "a/Test2.scala", "a/Test3.scala", "a/Test4.scala"}

	got := NewRoundRobin().Partition(files, 2, nil)

	want := domain.ShardSet{
		{Index: 1, Files: []string{"a/Test1.scala", "a/Test3.scala"}},
		{Index: 2, Files: []string{"a/Test2.scala", "a/Test4.scala"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected shards (-want +got):\n%s", diff)
	}
}

func TestRoundRobin_UnevenAndRepeatable(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e"}
	s := NewRoundRobin()

	first := s.Partition(files, 2, nil)
	require.Len(t, first, 2)
	require.Equal(t, []string{"a", "c", "e"}, first[0].Files)
	require.Equal(t, []string{"b", "d"}, first[1].Files)

	for i := 0; i < 5; i++ {
		require.Equal(t, first, s.Partition(files, 2, nil))
	}
}

func TestWeighted_SeparatesHeavyAndLight(t *testing.T) {
	weights := map[string]float64{"Simple.scala": 1, "PropertyTest.scala": 4}
	w := WeigherFunc(func(p string) float64 { return weights[p] })

	got := NewWeighted().Partition([]string{"Simple.scala", "PropertyTest.scala"}, 2, w)

	want := domain.ShardSet{
		{Index: 1, Files: []string{"PropertyTest.scala"}, Weight: 4},
		{Index: 2, Files: []string{"Simple.scala"}, Weight: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected shards (-want +got):\n%s", diff)
	}
}

func TestWeighted_Greedy(t *testing.T) {
	weights := map[string]float64{"a": 5, "b": 4, "c": 3, "d": 3, "e": 1}
	w := WeigherFunc(func(p string) float64 { return weights[p] })

	got := NewWeighted().Partition([]string{"a", "b", "c", "d", "e"}, 2, w)

	// a->1 (5), b->2 (4), c->2 (7), d->1 (8), e->2 (8)
	require.Equal(t, []string{"a", "d"}, got[0].Files)
	require.Equal(t, []string{"b", "c", "e"}, got[1].Files)
	require.Equal(t, 8.0, got[0].Weight)
	require.Equal(t, 8.0, got[1].Weight)
}

func TestWeighted_TieBreaks(t *testing.T) {
	t.Run("equal weights keep input order and fill lowest index first", func(t *testing.T) {
		got := NewWeighted().Partition([]string{"a", "b", "c", "d"}, 3, nil)
		require.Equal(t, []string{"a", "d"}, got[0].Files)
		require.Equal(t, []string{"b"}, got[1].Files)
		require.Equal(t, []string{"c"}, got[2].Files)
	})

	t.Run("mixed historical seconds and integer scores", func(t *testing.T) {
		weights := map[string]float64{"slow": 50.5, "x": 3, "y": 3, "z": 2.5}
		w := WeigherFunc(func(p string) float64 { return weights[p] })
		got := NewWeighted().Partition([]string{"x", "y", "z", "slow"}, 2, w)
		require.Equal(t, []string{"slow"}, got[0].Files)
		require.Equal(t, []string{"x", "y", "z"}, got[1].Files)
		require.InDelta(t, 8.5, got[1].Weight, 1e-9)
	})
}

func TestPartition_EmptyInput(t *testing.T) {
	for _, s := range strategies() {
		for _, n := range []int{1, 3, 100} {
			got := s.Partition(nil, n, nil)
			require.Empty(t, got, "%s with %d shards", s.Name(), n)
		}
	}
}

func TestPartition_ShardCountBounds(t *testing.T) {
	files := []string{"a", "b", "c"}
	for _, s := range strategies() {
		t.Run(s.Name(), func(t *testing.T) {
			require.Len(t, s.Partition(files, 10, nil), 3)
			require.Len(t, s.Partition(files, 2, nil), 2)
			require.Len(t, s.Partition(files, 0, nil), 1)
			for i, sh := range s.Partition(files, 3, nil) {
				require.Equal(t, i+1, sh.Index)
			}
		})
	}
}

func TestPartition_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		n := rng.Intn(60) + 1
		requested := rng.Intn(15) + 1
		files := make([]string, n)
		weights := make(map[string]float64, n)
		for i := range files {
			files[i] = fmt.Sprintf("pkg/Test%03d.scala", i)
			if rng.Intn(2) == 0 {
				weights[files[i]] = float64(rng.Intn(10) + 1)
			} else {
				weights[files[i]] = rng.Float64()*100 + 0.1
			}
		}
		w := WeigherFunc(func(p string) float64 { return weights[p] })

		for _, s := range strategies() {
			set := s.Partition(files, requested, w)
			require.Len(t, set, min(requested, n))

			var all []string
			for _, sh := range set {
				all = append(all, sh.Files...)
			}
			sort.Strings(all)
			require.Equal(t, files, all, "%s lost or duplicated files", s.Name())

			if !s.Weighted() {
				continue
			}
			var sum, largest, heaviest float64
			for _, f := range files {
				sum += weights[f]
				largest = max(largest, weights[f])
			}
			for _, sh := range set {
				heaviest = max(heaviest, sh.Weight)
			}
			require.LessOrEqual(t, heaviest, sum/float64(len(set))+largest+1e-9)
		}
	}
}
