package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"mvmtest/internal/domain"
	"mvmtest/internal/storage"
)

// FailureViewer browses the failures of a stored run in a TUI
type FailureViewer struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewFailureViewer creates a new FailureViewer. Resolved marks are written
// back through st.
func NewFailureViewer(st storage.Storage, logger *slog.Logger) *FailureViewer {
	return &FailureViewer{
		storage: st,
		logger:  logger,
	}
}

// View runs the TUI until the user quits
func (fv *FailureViewer) View(record *domain.RunRecord) error {
	if len(record.Failures) == 0 {
		color.Green("✓ No failures in the last run!")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i := range record.Failures {
		list.AddItem(listItemText(record.Failures[i], i), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(false)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(
			" Failures of run %s (%d total, %d unresolved) | ↑↓ navigate, [yellow]R[white] mark resolved, → details, ← back, Ctrl+C exit ",
			shortID(record.ID), len(record.Failures), countUnresolved(record.Failures)))
	}

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(record.Failures) {
			return
		}
		statsView.SetText(formatFailureStats(record, index))
		detailsView.SetText(formatFailureDetails(record.Failures[index])).ScrollToBeginning()
	}

	toggleResolved := func(index int) {
		record.Failures[index].Resolved = !record.Failures[index].Resolved
		list.SetItemText(index, listItemText(record.Failures[index], index), "")
		updateHeader()
		if err := fv.storage.Save(record); err != nil {
			fv.logger.Warn("could not save resolved mark", "case", record.Failures[index].Name, "error", err)
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				if index := list.GetCurrentItem(); index >= 0 && index < len(record.Failures) {
					toggleResolved(index)
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})

	updateHeader()
	updateDetails()

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(body, 0, 1, true)

	if err := app.SetRoot(layout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func countUnresolved(failures []domain.CaseFailure) int {
	n := 0
	for _, f := range failures {
		if !f.Resolved {
			n++
		}
	}
	return n
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func listItemText(f domain.CaseFailure, index int) string {
	name := tview.Escape(f.Name)
	if f.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s [red](%s)[white]", index+1, name, f.Verdict)
}

// formatFailureStats renders the header above the details pane
func formatFailureStats(record *domain.RunRecord, index int) string {
	f := record.Failures[index]
	return fmt.Sprintf("[cyan]case:[white] [yellow]%s[white]  [cyan]input:[white] %s\n[cyan]strategy:[white] %s  [cyan]run:[white] %s\n",
		tview.Escape(f.Name), tview.Escape(f.InputPath), record.Strategy, record.StartedAt.Format("2006-01-02 15:04:05"))
}

// formatFailureDetails renders one failure using tview color tags. Output of
// the binary is escaped so that brackets in it are shown literally.
func formatFailureDetails(f domain.CaseFailure) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ %s: %s[white]\n\n", tview.Escape(f.Name), f.Verdict)
	if f.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n\n", tview.Escape(f.Message))
	}

	if f.Diff != "" {
		b.WriteString("[yellow]Diff:[white]\n")
		for _, line := range strings.SplitAfter(f.Diff, "\n") {
			if line == "" {
				continue
			}
			escaped := tview.Escape(line)
			switch {
			case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "@@"):
				b.WriteString("[cyan]" + escaped + "[white]")
			case strings.HasPrefix(line, "-"):
				b.WriteString("[red]" + escaped + "[white]")
			case strings.HasPrefix(line, "+"):
				b.WriteString("[green]" + escaped + "[white]")
			default:
				b.WriteString(escaped)
			}
		}
		b.WriteString("\n")
	}

	if len(f.ScratchPaths) > 0 {
		b.WriteString("[yellow]Scratch files:[white]\n")
		for _, p := range f.ScratchPaths {
			fmt.Fprintf(&b, "  %s\n", tview.Escape(p))
		}
	}
	return b.String()
}
