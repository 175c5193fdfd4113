package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"tsp/internal/complexity"
	"tsp/internal/discovery"
	"tsp/internal/domain"
	"tsp/internal/planner"
)

// Formatter formats and displays output. Narration goes to the diagnostic
// writer; machine-readable results go to the output writer.
type Formatter struct {
	out    io.Writer
	diag   io.Writer
	parser *discovery.Parser
}

// NewFormatter creates a new Formatter
func NewFormatter(out, diag io.Writer, parser *discovery.Parser) *Formatter {
	return &Formatter{
		out:    out,
		diag:   diag,
		parser: parser,
	}
}

var (
	headerColor = color.New(color.FgCyan)
	warnColor   = color.New(color.FgYellow)
	fileColor   = color.New(color.FgWhite)
	weightColor = color.New(color.FgGreen)
	errorColor  = color.New(color.FgRed)
)

// PrintPlan narrates a plan: diagnostics, then a table of shards
func (f *Formatter) PrintPlan(plan *domain.Plan) {
	fmt.Fprintln(f.diag)
	headerColor.Fprintln(f.diag, "╔═══════════════════════════════════════════════════════════════╗")
	headerColor.Fprintln(f.diag, "║                       Test Shard Plan                         ║")
	headerColor.Fprintln(f.diag, "╚═══════════════════════════════════════════════════════════════╝")

	for _, d := range plan.Diagnostics {
		if d.Level == domain.LevelWarn {
			warnColor.Fprintf(f.diag, "! %s\n", d.Message)
			continue
		}
		fmt.Fprintf(f.diag, "  %s\n", d.Message)
	}
	fmt.Fprintln(f.diag)

	fmt.Fprintln(f.diag, "┌───────┬───────┬───────────────────┐")
	fmt.Fprintf(f.diag, "│ %-5s │ %-5s │ %-17s │\n", "Shard", "Files", "Weight")
	fmt.Fprintln(f.diag, "├───────┼───────┼───────────────────┤")
	for _, sh := range plan.Shards {
		marker := " "
		if sh.Index == plan.Current {
			marker = "*"
		}
		w := "-"
		if plan.Weighted {
			w = planner.FormatWeight(sh.Weight, plan.Unit)
		}
		fmt.Fprintf(f.diag, "│ %s%-4d │ %-5d │ ", marker, sh.Index, len(sh.Files))
		weightColor.Fprintf(f.diag, "%-17s", w)
		fmt.Fprintln(f.diag, " │")
	}
	fmt.Fprintln(f.diag, "└───────┴───────┴───────────────────┘")

	headerColor.Fprintf(f.diag, "\nShard %d of %d:\n", plan.Current, len(plan.Shards))
	if len(plan.Selected) == 0 {
		warnColor.Fprintln(f.diag, "  (no test files)")
	}
	for _, file := range plan.Selected {
		fileColor.Fprintf(f.diag, "  %s\n", file)
	}
}

// PrintSelected writes the selected shard's files to the output, one per line
func (f *Formatter) PrintSelected(plan *domain.Plan) error {
	if len(plan.Selected) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(f.out, strings.Join(plan.Selected, "\n"))
	return err
}

// PrintJSON writes the whole plan as indented JSON to the output
func (f *Formatter) PrintJSON(plan *domain.Plan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	_, err = fmt.Fprintln(f.out, string(data))
	return err
}

// PrintTestList prints a tree of test files, relative to baseDir. With scores,
// each file shows its complexity estimate; with showTestCases, its declared
// test cases.
func (f *Formatter) PrintTestList(baseDir string, tests []string, showTestCases bool, scores map[string]complexity.Estimate) error {
	color.New(color.FgGreen).Fprintf(f.out, "Found %d test file(s):\n\n", len(tests))

	for i, test := range tests {
		isLastFile := i == len(tests)-1
		branch, indent := "├── ", "│   "
		if isLastFile {
			branch, indent = "└── ", "    "
		}

		label := test
		if est, ok := scores[test]; ok {
			label = fmt.Sprintf("%s %s", test, weightColor.Sprintf("[%d]", est.Score))
			if est.Degraded() {
				label += " " + warnColor.Sprintf("(path only: %s)", est.Read.Reason)
			}
		}
		headerColor.Fprintf(f.out, "%s", branch)
		fmt.Fprintln(f.out, label)

		if !showTestCases {
			continue
		}

		testCases, err := f.parser.FindTestCases(filepath.Join(baseDir, filepath.FromSlash(test)))
		if err != nil {
			errorColor.Fprintf(f.out, "%s└── error reading test file: %v\n", indent, err)
			continue
		}
		if len(testCases) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", indent, errorColor.Sprint("(no test cases found)"))
			continue
		}
		for j, testCase := range testCases {
			prefix := indent + "├── "
			if j == len(testCases)-1 {
				prefix = indent + "└── "
			}
			fmt.Fprintf(f.out, "%s%s\n", prefix, warnColor.Sprint(testCase))
		}
	}

	return nil
}
