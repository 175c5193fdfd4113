package discovery

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"

	"tsp/internal/complexity"
)

// Parser parses test files to extract test cases
type Parser struct {
	maxSize int64
}

// NewParser creates a new Parser that skips files larger than the content
// ceiling the complexity estimator uses
func NewParser() *Parser {
	return NewParserWithLimit(complexity.MaxContentSize)
}

// NewParserWithLimit is NewParser with a custom size ceiling in bytes
func NewParserWithLimit(maxSize int64) *Parser {
	if maxSize <= 0 {
		maxSize = complexity.MaxContentSize
	}
	return &Parser{maxSize: maxSize}
}

var testCasePatterns = []*regexp.Regexp{
	// test("..."), it('...'), describe(`...`) in Scala, JS and TS suites
	regexp.MustCompile("\\b(?:test|it|describe)\\s*\\(\\s*(?:\"([^\"]*)\"|'([^']*)'|`([^`]*)`)"),
	// func TestSomething(t *testing.T)
	regexp.MustCompile(`(?m)^func\s+(Test\w+)\s*\(`),
	// public function testCreateUser()
	regexp.MustCompile(`(?m)^\s*(?:(?:public|protected|private|static|final)\s+)*function\s+(test\w+)\s*\(`),
}

// FindTestCases finds all test cases in a test file
func (p *Parser) FindTestCases(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	defer f.Close()

	// Read one byte past the ceiling to tell "at the limit" from "over it"
	content, err := io.ReadAll(io.LimitReader(f, p.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	if int64(len(content)) > p.maxSize {
		return nil, fmt.Errorf("error reading file %s: larger than %d bytes", filePath, p.maxSize)
	}

	return ParseTestCases(string(content)), nil
}

// ParseTestCases extracts test case names from source text, sorted and unique
func ParseTestCases(content string) []string {
	testCasesMap := make(map[string]bool) // Use map to avoid duplicates

	for _, pattern := range testCasePatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			for _, group := range match[1:] {
				if group != "" {
					testCasesMap[group] = true
					break
				}
			}
		}
	}

	testCases := make([]string, 0, len(testCasesMap))
	for testCase := range testCasesMap {
		testCases = append(testCases, testCase)
	}

	// Sort for consistent output
	sort.Strings(testCases)

	return testCases
}
