// Package planner turns a list of test files into a balanced shard plan.
//
// Planning resolves the shard count, picks a partitioning strategy, weighs
// every file (recorded durations first, complexity scores otherwise) and
// narrates the result. Only configuration problems fail a plan; unreadable or
// suspicious files just lower the fidelity of their own estimate.
package planner

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tsp/internal/complexity"
	"tsp/internal/domain"
	"tsp/internal/shard"
	"tsp/internal/weight"
)

// Estimator scores a single test file
type Estimator interface {
	Estimate(path string) complexity.Estimate
}

// Options selects how a plan is built
type Options struct {
	ShardCount   string // positive integer or "auto"
	Algorithm    string // round-robin or complexity
	CurrentShard int    // 1-based; clamped into range
	MaxShards    int    // ceiling on explicit counts; 0 disables it
}

// ProgressFunc is called once per weighed file. It may be called from
// several goroutines at once.
type ProgressFunc func(done, total int)

// Planner builds shard plans
type Planner struct {
	estimator   Estimator
	logger      *zap.Logger
	concurrency int
	progress    ProgressFunc
}

// New creates a Planner. concurrency bounds parallel weight estimation;
// values below 1 use GOMAXPROCS.
func New(estimator Estimator, logger *zap.Logger, concurrency int) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Planner{
		estimator:   estimator,
		logger:      logger,
		concurrency: concurrency,
	}
}

// SetProgress sets the callback reporting weight estimation progress
func (p *Planner) SetProgress(progress ProgressFunc) {
	p.progress = progress
}

// resolved is the weight of one file and where it came from
type resolved struct {
	weight     float64
	historical bool
	estimate   complexity.Estimate
}

// narration collects diagnostics and mirrors them to the logger
type narration struct {
	logger *zap.Logger
	lines  []domain.Diagnostic
}

func (n *narration) info(format string, args ...any) {
	d := domain.Infof(format, args...)
	n.logger.Debug(d.Message)
	n.lines = append(n.lines, d)
}

func (n *narration) warn(format string, args ...any) {
	d := domain.Warnf(format, args...)
	n.logger.Debug(d.Message, zap.Bool("warning", true))
	n.lines = append(n.lines, d)
}

// Plan assigns files to shards. history is nil when no historical data was
// requested; files missing from it fall back to their complexity score.
// The only errors are configuration errors (shard.ErrInvalidConfig) and
// context cancellation.
func (p *Planner) Plan(ctx context.Context, opts Options, files []string, history weight.History) (*domain.Plan, error) {
	n := &narration{logger: p.logger}
	files = p.normalize(files, n)

	requested, auto, err := shard.ParseCount(opts.ShardCount, opts.MaxShards)
	if err != nil {
		return nil, err
	}
	if auto {
		requested = shard.Recommend(len(files))
		n.info("Auto-computed %d shard(s) for %d file(s)", requested, len(files))
	}

	if len(files) == 0 {
		n.warn("No test files to shard; producing a single empty shard")
		return &domain.Plan{
			Algorithm:   opts.Algorithm,
			AutoShards:  auto,
			Shards:      domain.ShardSet{{Index: 1, Files: []string{}}},
			Current:     1,
			Selected:    []string{},
			Diagnostics: n.lines,
		}, nil
	}

	strategy, err := shard.Lookup(opts.Algorithm)
	if err != nil {
		return nil, err
	}

	plan := &domain.Plan{
		Algorithm:  strategy.Name(),
		AutoShards: auto,
		Weighted:   strategy.Weighted(),
	}

	var weigher shard.Weigher
	if strategy.Weighted() {
		weights, err := p.weigh(ctx, files, history, n)
		if err != nil {
			return nil, err
		}
		weigher = shard.WeigherFunc(func(path string) float64 { return weights[path] })
		plan.Weights = weights
		plan.Unit = domain.UnitScore
		if history.Coverage(files) > 0 {
			plan.Unit = domain.UnitSeconds
		}
	} else if history != nil {
		n.info("Historical data ignored by %s distribution", strategy.Name())
	}

	plan.Shards = strategy.Partition(files, requested, weigher)

	current, index, _ := plan.Shards.Pick(opts.CurrentShard)
	if opts.CurrentShard > len(plan.Shards) {
		n.warn("Shard index %d out of range; using shard %d", opts.CurrentShard, index)
	}
	plan.Current = index
	plan.Selected = current.Files

	p.narrate(plan, requested, n)
	plan.Diagnostics = n.lines

	p.logger.Info("shard plan ready",
		zap.String("algorithm", plan.Algorithm),
		zap.Int("files", len(files)),
		zap.Int("shards", len(plan.Shards)),
		zap.Int("current", plan.Current),
	)
	return plan, nil
}

// normalize sorts and deduplicates files so equal inputs shard identically
func (p *Planner) normalize(files []string, n *narration) []string {
	out := make([]string, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	if dup := len(files) - len(out); dup > 0 {
		n.warn("Dropped %d duplicate file(s)", dup)
	}
	sort.Strings(out)
	return out
}

// weigh resolves every file's weight concurrently. Estimation of one file
// never affects another; only the partitioning that follows is sequential.
func (p *Planner) weigh(ctx context.Context, files []string, history weight.History, n *narration) (map[string]float64, error) {
	results := make([]resolved, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	var done atomic.Int64
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.resolve(file, history)
			if p.progress != nil {
				p.progress(int(done.Add(1)), len(files))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("weigh test files: %w", err)
	}

	weights := make(map[string]float64, len(files))
	recorded := 0
	for i, file := range files {
		r := results[i]
		weights[file] = r.weight
		if r.historical {
			recorded++
			continue
		}
		if r.estimate.Degraded() {
			n.warn("Estimated %s from its path only: %s", file, r.estimate.Read)
		}
	}

	if history != nil {
		n.info("Historical data covers %d of %d file(s)", recorded, len(files))
		if recorded > 0 && recorded < len(files) {
			n.info("Weights mix %d recorded duration(s) with %d complexity score(s)", recorded, len(files)-recorded)
		}
	}
	return weights, nil
}

func (p *Planner) resolve(file string, history weight.History) resolved {
	if v, ok := history.Lookup(file); ok {
		return resolved{weight: v, historical: true}
	}
	est := p.estimator.Estimate(file)
	return resolved{
		weight:   weight.Resolve(file, history, float64(est.Score)),
		estimate: est,
	}
}

func (p *Planner) narrate(plan *domain.Plan, requested int, n *narration) {
	if len(plan.Shards) < requested {
		n.info("Requested %d shard(s); only %d file(s) available", requested, plan.Shards.TotalFiles())
	}
	n.info("Distributing %d file(s) across %d shard(s) using %s", plan.Shards.TotalFiles(), len(plan.Shards), plan.Algorithm)

	for _, sh := range plan.Shards {
		if plan.Weighted {
			n.info("Shard %d: %d file(s), weight %s", sh.Index, len(sh.Files), FormatWeight(sh.Weight, plan.Unit))
		} else {
			n.info("Shard %d: %d file(s)", sh.Index, len(sh.Files))
		}
	}

	n.info("Current shard %d of %d: %s", plan.Current, len(plan.Shards), strings.Join(plan.Selected, ", "))
}

// FormatWeight renders an aggregate weight in its unit
func FormatWeight(w float64, unit string) string {
	if unit == domain.UnitSeconds {
		return fmt.Sprintf("%.2fs", w)
	}
	return fmt.Sprintf("%g", w)
}
