package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner scans for test files in a directory
type Scanner struct {
	skipDirs map[string]bool
	patterns []string
}

// NewScanner creates a new Scanner matching file names against patterns
// (filepath.Match syntax) and skipping the given directory names.
func NewScanner(skipDirs []string, patterns []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, patterns: patterns}
}

// Scan finds all test files under root. Paths are returned relative to base
// (or as walked when base is empty), slash-separated, deduplicated and sorted.
func (s *Scanner) Scan(root, base string) ([]string, error) {
	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	seen := make(map[string]struct{})
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories (starting with .)
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}

			if s.skipDirs[name] {
				return filepath.SkipDir
			}

			return nil
		}

		if !s.Matches(d.Name()) {
			return nil
		}

		seen[s.relative(path, base)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	testfiles := make([]string, 0, len(seen))
	for f := range seen {
		testfiles = append(testfiles, f)
	}
	sort.Strings(testfiles)
	return testfiles, nil
}

// Matches reports whether a file name matches any of the scanner's patterns
func (s *Scanner) Matches(name string) bool {
	for _, pattern := range s.patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *Scanner) relative(path, base string) string {
	if base != "" {
		if rel, err := filepath.Rel(base, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// Normalize deduplicates and sorts an explicit list of test files
func Normalize(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		f = filepath.ToSlash(filepath.Clean(strings.TrimSpace(f)))
		if f == "." || f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
