package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// JUnitParser reads JUnit XML reports as written by PHPUnit, ScalaTest,
// jest-junit and go-junit-report
type JUnitParser struct{}

// NewJUnitParser creates a new JUnitParser
func NewJUnitParser() *JUnitParser {
	return &JUnitParser{}
}

var _ Parser = (*JUnitParser)(nil)

type junitSuite struct {
	XMLName xml.Name
	Name    string       `xml:"name,attr"`
	File    string       `xml:"file,attr"`
	Suites  []junitSuite `xml:"testsuite"`
	Cases   []junitCase  `xml:"testcase"`
}

type junitCase struct {
	Name      string `xml:"name,attr"`
	ClassName string `xml:"classname,attr"`
	Class     string `xml:"class,attr"`
	File      string `xml:"file,attr"`
	Time      string `xml:"time,attr"`
}

// ParseFile parses the report at path
func (p *JUnitParser) ParseFile(path string) ([]Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	cases, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return cases, nil
}

// Parse reads a <testsuites> or <testsuite> document. Cases without a time
// attribute count as zero seconds.
func (p *JUnitParser) Parse(r io.Reader) ([]Case, error) {
	var root junitSuite
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, err
	}
	switch root.XMLName.Local {
	case "testsuites", "testsuite":
	default:
		return nil, fmt.Errorf("unexpected root element <%s>", root.XMLName.Local)
	}

	var cases []Case
	if err := collect(root, "", &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// collect walks nested suites. A suite's file attribute applies to every case
// below it that does not name its own file.
func collect(suite junitSuite, file string, out *[]Case) error {
	if suite.File != "" {
		file = suite.File
	}
	for _, tc := range suite.Cases {
		seconds, err := parseTime(tc.Time)
		if err != nil {
			return fmt.Errorf("testcase %q: %w", tc.Name, err)
		}
		c := Case{
			Suite:     suite.Name,
			ClassName: tc.ClassName,
			Name:      tc.Name,
			File:      tc.File,
			Seconds:   seconds,
		}
		if c.ClassName == "" {
			c.ClassName = tc.Class
		}
		if c.File == "" {
			c.File = file
		}
		*out = append(*out, c)
	}
	for _, child := range suite.Suites {
		if err := collect(child, file, out); err != nil {
			return err
		}
	}
	return nil
}

func parseTime(value string) (float64, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return 0, nil
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	return seconds, nil
}
