package complexity

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MaxContentSize is the largest file, in bytes, whose content is analyzed
const MaxContentSize int64 = 10 << 20

// Reason explains why content analysis was skipped for a file
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonOutsideBase Reason = "path escapes base directory"
	ReasonNotFound    Reason = "file not found"
	ReasonNotRegular  Reason = "not a regular file"
	ReasonTooLarge    Reason = "file exceeds size limit"
	ReasonUnreadable  Reason = "file could not be read"
)

// ReadResult is the outcome of a best-effort content read: either the
// content, or the reason it is unavailable.
type ReadResult struct {
	Content string
	Reason  Reason
	Err     error // underlying cause, if any
}

// OK reports whether the content was read
func (r ReadResult) OK() bool {
	return r.Reason == ReasonNone
}

func (r ReadResult) String() string {
	if r.OK() {
		return "ok"
	}
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Reason, r.Err)
	}
	return string(r.Reason)
}

func degraded(reason Reason, err error) ReadResult {
	return ReadResult{Reason: reason, Err: err}
}

// contentReader reads test files confined to a base directory. The base is
// kept both as written (made absolute) and with symlinks resolved, since
// callers may name files through either form.
type contentReader struct {
	baseDir string // absolute, as given
	realDir string // absolute, symlinks resolved
	maxSize int64
}

func newContentReader(baseDir string, maxSize int64) *contentReader {
	if baseDir == "" {
		baseDir = "."
	}
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	realDir := baseDir
	if real, err := filepath.EvalSymlinks(baseDir); err == nil {
		realDir = real
	}
	if maxSize <= 0 {
		maxSize = MaxContentSize
	}
	return &contentReader{baseDir: baseDir, realDir: realDir, maxSize: maxSize}
}

// resolve joins path onto the base directory and reports whether the result
// stays inside it. An existing target is judged by its real location against
// the real base; a missing one lexically against the base as given.
func (r *contentReader) resolve(path string) (string, bool) {
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(r.baseDir, target)
	}
	target = filepath.Clean(target)

	if real, err := filepath.EvalSymlinks(target); err == nil {
		return real, contains(r.realDir, real)
	}
	return target, contains(r.baseDir, target) || contains(r.realDir, target)
}

func contains(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// read never returns an error; failures are folded into the ReadResult
func (r *contentReader) read(path string) ReadResult {
	target, ok := r.resolve(path)
	if !ok {
		return degraded(ReasonOutsideBase, nil)
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return degraded(ReasonNotFound, nil)
		}
		return degraded(ReasonUnreadable, err)
	}
	if !info.Mode().IsRegular() {
		return degraded(ReasonNotRegular, nil)
	}
	if info.Size() > r.maxSize {
		return degraded(ReasonTooLarge, fmt.Errorf("%d bytes > %d", info.Size(), r.maxSize))
	}

	f, err := os.Open(target)
	if err != nil {
		return degraded(ReasonUnreadable, err)
	}
	defer f.Close()

	// The file may have grown since Stat
	data, err := io.ReadAll(io.LimitReader(f, r.maxSize+1))
	if err != nil {
		return degraded(ReasonUnreadable, err)
	}
	if int64(len(data)) > r.maxSize {
		return degraded(ReasonTooLarge, fmt.Errorf("more than %d bytes", r.maxSize))
	}
	return ReadResult{Content: string(data)}
}
