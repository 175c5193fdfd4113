// Package report reads test-runner reports and turns their timings into
// per-file durations for the history store.
package report

import (
	"path"
	"path/filepath"
	"strings"
)

// Case is one executed test case taken from a report
type Case struct {
	Suite     string
	ClassName string
	Name      string
	File      string // as written in the report; may be empty
	Seconds   float64
}

// Parser reads test cases from a report file
type Parser interface {
	ParseFile(path string) ([]Case, error)
}

// Aggregator sums case durations per test file. Cases are matched to files
// by their file attribute first, then by class name against known files.
type Aggregator struct {
	baseDir string
	known   map[string]struct{}
	byClass map[string][]string // lower-cased slash path without extension
	byStem  map[string][]string // lower-cased base name without extension
}

// NewAggregator creates an Aggregator resolving report paths against
// baseDir. known lists the test files (relative to baseDir) that class
// names may map to.
func NewAggregator(baseDir string, known []string) *Aggregator {
	a := &Aggregator{
		baseDir: baseDir,
		known:   make(map[string]struct{}, len(known)),
		byClass: make(map[string][]string),
		byStem:  make(map[string][]string),
	}
	if abs, err := filepath.Abs(baseDir); err == nil {
		a.baseDir = abs
	}
	for _, f := range known {
		f = filepath.ToSlash(f)
		a.known[f] = struct{}{}
		trimmed := strings.ToLower(strings.TrimSuffix(f, path.Ext(f)))
		a.byClass[trimmed] = append(a.byClass[trimmed], f)
		stem := path.Base(trimmed)
		a.byStem[stem] = append(a.byStem[stem], f)
	}
	return a
}

// Totals returns the summed duration of each matched file and the number of
// cases that could not be attributed to any file
func (a *Aggregator) Totals(cases []Case) (map[string]float64, int) {
	totals := make(map[string]float64)
	unmatched := 0
	for _, c := range cases {
		file, ok := a.Resolve(c)
		if !ok {
			unmatched++
			continue
		}
		totals[file] += c.Seconds
	}
	return totals, unmatched
}

// Resolve maps a case to a test file path relative to the base directory
func (a *Aggregator) Resolve(c Case) (string, bool) {
	if c.File != "" {
		return a.relative(c.File), true
	}
	if c.ClassName == "" {
		return "", false
	}

	// Tests\Feature\UserTest and com.acme.OrderSpec name their file by path
	class := strings.ToLower(c.ClassName)
	class = strings.NewReplacer("\\", "/", ".", "/").Replace(class)
	if files := a.byClass[class]; len(files) == 1 {
		return files[0], true
	}
	var candidates []string
	for trimmed, files := range a.byClass {
		if strings.HasSuffix(trimmed, "/"+class) {
			candidates = append(candidates, files...)
		}
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}

	if files := a.byStem[path.Base(class)]; len(files) == 1 {
		return files[0], true
	}
	return "", false
}

func (a *Aggregator) relative(file string) string {
	if filepath.IsAbs(file) {
		if rel, err := filepath.Rel(a.baseDir, file); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			file = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(file))
}
