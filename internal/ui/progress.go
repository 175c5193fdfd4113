package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar creates and manages progress bars
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a new progress bar for weighing count files
func NewProgressBar(count int, w io.Writer) *ProgressBar {
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(color.CyanString("Weighing tests: ")+"[0/"+fmt.Sprint(count)+"]"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

// Update moves the bar to done of total files. Safe for concurrent use.
func (p *ProgressBar) Update(done, total int) {
	p.bar.Set(done)
	p.bar.Describe(color.CyanString("Weighing tests: ") + fmt.Sprintf("[%d/%d]", done, total))
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}
