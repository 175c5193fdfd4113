package complexity

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Estimate is the complexity score of one test file together with the
// outcome of its content read.
type Estimate struct {
	Path  string
	Score int
	Read  ReadResult
}

// Degraded reports whether the score was computed from the path alone
func (e Estimate) Degraded() bool {
	return !e.Read.OK()
}

// testDeclaration matches test(, it( and describe( call sites
var testDeclaration = regexp.MustCompile(`\b(?:test|it|describe)\(`)

// Estimator scores test files by naming and content signals. It is a
// heuristic, not a parser.
type Estimator struct {
	reader *contentReader
	logger *zap.Logger
}

// NewEstimator creates an Estimator that only reads files inside baseDir
func NewEstimator(baseDir string, logger *zap.Logger) *Estimator {
	return NewEstimatorWithLimit(baseDir, MaxContentSize, logger)
}

// NewEstimatorWithLimit is NewEstimator with a custom content size ceiling
func NewEstimatorWithLimit(baseDir string, maxSize int64, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		reader: newContentReader(baseDir, maxSize),
		logger: logger,
	}
}

// Score returns the complexity score of path, always at least 1
func (e *Estimator) Score(path string) int {
	return e.Estimate(path).Score
}

// Estimate scores path and reports whether content analysis was possible
func (e *Estimator) Estimate(path string) Estimate {
	score := 1 + pathPoints(path)

	read := e.reader.read(path)
	if read.OK() {
		score += contentPoints(read.Content)
	} else {
		e.logger.Debug("content analysis skipped",
			zap.String("path", path),
			zap.String("reason", string(read.Reason)),
			zap.Error(read.Err),
		)
	}

	return Estimate{Path: path, Score: max(score, 1), Read: read}
}

// PathScore returns the score derived from the file path alone
func PathScore(path string) int {
	return max(1+pathPoints(path), 1)
}

func pathPoints(path string) int {
	p := strings.ToLower(path)
	points := 0
	if containsAny(p, "property", "proptest", "propertytest") {
		points += 3
	}
	if containsAny(p, "integration", "container", "e2e", "endtoend") {
		points += 4
	}
	if containsAny(p, "unit", "unittest") {
		points--
	}
	return points
}

func contentPoints(content string) int {
	c := strings.ToLower(content)
	points := 0
	if containsAny(c, "property", "proptest") {
		points += 2
	}
	if containsAny(c, "container", "@container") {
		points += 3
	}
	if containsAny(c, "integration", "@integration") {
		points += 2
	}

	switch n := len(testDeclaration.FindAllStringIndex(c, -1)); {
	case n > 20:
		points += 2
	case n > 10:
		points++
	}

	if utf8.RuneCountInString(content) > 5000 {
		points++
	}
	return points
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
