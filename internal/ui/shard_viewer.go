package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"tsp/internal/domain"
	"tsp/internal/planner"
)

// ShardViewer displays a shard plan in an interactive TUI
type ShardViewer struct{}

// NewShardViewer creates a new ShardViewer
func NewShardViewer() *ShardViewer {
	return &ShardViewer{}
}

// View shows the shard list next to the files of the highlighted shard.
// The current shard is preselected.
func (sv *ShardViewer) View(plan *domain.Plan) error {
	if plan.Shards.TotalFiles() == 0 {
		color.Yellow("No test files to show")
		return nil
	}

	app := tview.NewApplication()

	shards := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i := range plan.Shards {
		shards.AddItem(sv.formatListItem(plan, i), "", 0, nil)
	}
	shards.SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)
	shards.SetBorder(true).SetTitle(" Shards ")

	stats := tview.NewTextView().SetDynamicColors(true)
	files := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	files.SetBorder(true).SetTitle(" Files ")

	details := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(stats, 2, 0, false).
		AddItem(files, 0, 1, false)

	body := tview.NewFlex().
		AddItem(shards, 0, 1, true).
		AddItem(details, 0, 2, false)

	title := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(fmt.Sprintf("[::b]%s plan: %d shard(s), %d file(s)[::-]  ↑↓ select  → files  ← back  q quit",
			plan.Algorithm, len(plan.Shards), plan.Shards.TotalFiles()))

	show := func(index int) {
		if index < 0 || index >= len(plan.Shards) {
			return
		}
		stats.SetText(sv.formatShardStats(plan, index))
		files.SetText(sv.formatShardFiles(plan, index)).ScrollToBeginning()
	}
	shards.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		show(index)
	})

	shards.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEnter, event.Key() == tcell.KeyRight:
			app.SetFocus(files)
		case event.Key() == tcell.KeyEsc, event.Key() == tcell.KeyCtrlC, event.Key() == tcell.KeyRune && event.Rune() == 'q':
			app.Stop()
		default:
			return event
		}
		return nil
	})
	files.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(shards)
		case tcell.KeyCtrlC:
			app.Stop()
		default:
			return event
		}
		return nil
	})

	shards.SetCurrentItem(plan.Current - 1)
	show(plan.Current - 1)

	root := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(title, 1, 0, false).
		AddItem(body, 0, 1, true)

	if err := app.SetRoot(root, true).SetFocus(shards).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// formatListItem renders one shard as a list entry using tview color tags
func (sv *ShardViewer) formatListItem(plan *domain.Plan, index int) string {
	sh := plan.Shards[index]
	marker := " "
	if sh.Index == plan.Current {
		marker = "[green]*[white]"
	}
	text := fmt.Sprintf("%s[yellow]%d.[white] %d file(s)", marker, sh.Index, len(sh.Files))
	if plan.Weighted {
		text += fmt.Sprintf(" [gray]%s[white]", planner.FormatWeight(sh.Weight, plan.Unit))
	}
	return text
}

// formatShardStats formats the stats header for a shard
func (sv *ShardViewer) formatShardStats(plan *domain.Plan, index int) string {
	sh := plan.Shards[index]
	line := fmt.Sprintf("[cyan]shard:[white] [yellow]%d/%d[white]  [cyan]files:[white] %d", sh.Index, len(plan.Shards), len(sh.Files))
	if plan.Weighted {
		line += fmt.Sprintf("  [cyan]weight:[white] %s", planner.FormatWeight(sh.Weight, plan.Unit))
	}
	return line + "\n"
}

// formatShardFiles lists a shard's files with their individual weights
func (sv *ShardViewer) formatShardFiles(plan *domain.Plan, index int) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	for _, file := range plan.Shards[index].Files {
		if plan.Weighted {
			fmt.Fprintf(w, "[white]%s\t[gray]%s[white]\n", file, planner.FormatWeight(plan.Weights[file], plan.Unit))
			continue
		}
		fmt.Fprintf(w, "[white]%s\n", file)
	}

	w.Flush()
	return builder.String()
}
