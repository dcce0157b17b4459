package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"sweepdu/internal/domain"
	"sweepdu/internal/state"
)

const barWidth = 12

type uiStyles struct {
	headerStyle lipgloss.Style
	mutedStyle  lipgloss.Style
	statusStyle lipgloss.Style
	warnStyle   lipgloss.Style
	cursorStyle lipgloss.Style
	markedStyle lipgloss.Style
	sizeStyle   lipgloss.Style
	panelBorder lipgloss.Style
}

func stylesFor(theme string) uiStyles {
	if strings.ToLower(theme) == "light" {
		return uiStyles{
			headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("235")),
			mutedStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
			statusStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("25")).Bold(true),
			warnStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("124")).Bold(true),
			cursorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("90")).Bold(true),
			markedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
			sizeStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
			panelBorder: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		}
	}
	return uiStyles{
		headerStyle: lipgloss.NewStyle().Bold(true),
		mutedStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		statusStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true),
		warnStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Bold(true),
		cursorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		markedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		sizeStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		panelBorder: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func (model Model) View() string {
	if model.state.Mode() == state.Exiting {
		return ""
	}
	styles := stylesFor(model.theme)
	display := state.Render(model.state)
	if display.Mode == state.HelpOverlay {
		return renderHelpView(model, display, styles)
	}
	if display.Progress != nil {
		return renderScanning(display, styles)
	}

	header := renderHeader(model, display, styles)
	lines := strings.Split(header, "\n")
	var pane []string
	if display.Confirm != nil {
		room := display.Height - len(lines) - 2
		lines = append(lines, strings.Split(renderConfirmPanel(display, styles, room), "\n")...)
	} else {
		lines = append(lines, renderRows(display, styles)...)
		if display.Marked != nil {
			pane = strings.Split(renderMarkedPane(display, styles), "\n")
		}
	}
	for len(lines) < display.Height-2-len(pane) {
		lines = append(lines, "")
	}
	lines = append(lines, pane...)
	lines = append(lines, renderFooter(display, styles)...)
	return strings.Join(lines, "\n")
}

func renderHeader(model Model, display state.DisplayModel, styles uiStyles) string {
	header := display.Header
	left := styles.headerStyle.Render("sweepdu") + "  " + breadcrumbs(header.Path)
	right := fmt.Sprintf("%s  %d items  sort: %s", display.Format.Display(header.Total), header.Items, header.Sort)
	if header.MarkedCount > 0 {
		right = fmt.Sprintf("%s  marked: %d (%s)", right, header.MarkedCount, display.Format.Display(header.MarkedBytes))
	}
	if header.Truncated {
		right += "  " + styles.warnStyle.Render("INCOMPLETE")
	}
	line := padLine(left, styles.statusStyle.Render(right), display.Width)
	if model.volume == nil {
		return line
	}
	volume := fmt.Sprintf("%s: %s free of %s (%.1f%% used)",
		model.volume.Fstype,
		display.Format.Display(int64(model.volume.Free)),
		display.Format.Display(int64(model.volume.Total)),
		model.volume.UsedPercent,
	)
	return line + "\n" + styles.mutedStyle.Render(volume)
}

func renderRows(display state.DisplayModel, styles uiStyles) []string {
	if len(display.Rows) == 0 {
		return []string{styles.mutedStyle.Render("  (empty)")}
	}
	width := display.Format.Width()
	lines := make([]string, 0, len(display.Rows))
	for _, row := range display.Rows {
		marker := "  "
		if row.Marked {
			marker = styles.markedStyle.Render("* ")
		}
		size := styles.sizeStyle.Render(fmt.Sprintf("%*s", width, display.Format.Display(row.Size)))
		line := fmt.Sprintf("%s%s %s %5.1f%% %s", marker, size, usageBar(row.Percentage, barWidth), row.Percentage*100, rowName(row))
		if row.Cursor {
			line = styles.cursorStyle.Render(line)
		} else if row.Err != nil {
			line = styles.warnStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func rowName(row state.Row) string {
	name := row.Name
	if row.Kind == domain.KindDir {
		name += "/"
	}
	if row.Kind == domain.KindSymlink {
		name += "@"
	}
	var notes []string
	if row.Err != nil {
		notes = append(notes, "error")
	}
	if row.Duplicate {
		notes = append(notes, "hardlink")
	}
	if row.Incomplete {
		notes = append(notes, "incomplete")
	}
	if row.Unsupported {
		notes = append(notes, "special file")
	}
	if len(notes) > 0 {
		name += "  <" + strings.Join(notes, ", ") + ">"
	}
	return name
}

func renderFooter(display state.DisplayModel, styles uiStyles) []string {
	statusStyle := styles.mutedStyle
	lower := strings.ToLower(display.Status)
	if strings.Contains(lower, "error") || strings.Contains(lower, "failed") || strings.Contains(lower, "incomplete") {
		statusStyle = styles.warnStyle
	}
	status := statusStyle.Render(trimStatus(display.Status, display.Width))
	keys := "↑/↓ move  → open  ← up  space mark  d delete  s/n/c/m sort  ? help  q quit"
	if display.Confirm != nil {
		status = styles.warnStyle.Render(trimStatus(confirmPrompt(display), display.Width))
		keys = "y confirm  n cancel"
	}
	return []string{status, styles.mutedStyle.Render(keys)}
}

func confirmPrompt(display state.DisplayModel) string {
	confirm := display.Confirm
	target := fmt.Sprintf("%d entries", len(confirm.Entries))
	if len(confirm.Entries) == 1 {
		target = confirm.Entries[0].Path
	}
	return fmt.Sprintf("Delete %s (%s)? y/n", target, display.Format.Display(confirm.Bytes))
}

// renderMarkedPane draws the marked entries in the order they were marked.
func renderMarkedPane(display state.DisplayModel, styles uiStyles) string {
	pane := display.Marked
	title := styles.markedStyle.Render(fmt.Sprintf("%d marked (%s)", pane.Count, display.Format.Display(pane.Bytes)))
	lines := append([]string{title}, entryLines(display, styles, pane.Entries)...)
	if pane.Hidden > 0 {
		lines = append(lines, styles.mutedStyle.Render(fmt.Sprintf("… and %d more", pane.Hidden)))
	}
	return styles.panelBorder.Width(panelWidth(display)).Render(strings.Join(lines, "\n"))
}

// renderConfirmPanel lists every path a confirmed delete removes, fitting the
// list into room lines.
func renderConfirmPanel(display state.DisplayModel, styles uiStyles, room int) string {
	confirm := display.Confirm
	noun := "entries"
	if len(confirm.Entries) == 1 {
		noun = "entry"
	}
	title := styles.warnStyle.Render(fmt.Sprintf("Delete %d %s (%s)?", len(confirm.Entries), noun, display.Format.Display(confirm.Bytes)))
	entries := confirm.Entries
	hidden := 0
	if fit := maxInt(room-3, 1); len(entries) > fit {
		fit = maxInt(fit-1, 1)
		hidden = len(entries) - fit
		entries = entries[:fit]
	}
	lines := append([]string{title}, entryLines(display, styles, entries)...)
	if hidden > 0 {
		lines = append(lines, styles.mutedStyle.Render(fmt.Sprintf("… and %d more", hidden)))
	}
	return styles.panelBorder.Width(panelWidth(display)).Render(strings.Join(lines, "\n"))
}

func entryLines(display state.DisplayModel, styles uiStyles, entries []state.MarkedEntry) []string {
	width := display.Format.Width()
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		size := styles.sizeStyle.Render(fmt.Sprintf("%*s", width, display.Format.Display(entry.Size)))
		lines = append(lines, size+"  "+trimStatus(entry.Path, panelWidth(display)-width-4))
	}
	return lines
}

func panelWidth(display state.DisplayModel) int {
	width := display.Width
	if width <= 0 {
		width = 80
	}
	return maxInt(width-2, 10)
}

func renderScanning(display state.DisplayModel, styles uiStyles) string {
	progress := display.Progress
	lines := []string{
		styles.headerStyle.Render("sweepdu") + "  " + styles.statusStyle.Render("SCANNING"),
		"",
		fmt.Sprintf("Files   : %d", progress.Files),
		fmt.Sprintf("Folders : %d", progress.Dirs),
		fmt.Sprintf("Entries : %d", progress.Entries),
		fmt.Sprintf("Size    : %s", display.Format.Display(progress.Bytes)),
	}
	if progress.Failures > 0 {
		lines = append(lines, styles.warnStyle.Render(fmt.Sprintf("Errors  : %d", progress.Failures)))
	}
	lines = append(lines,
		"",
		progressBar(progress.Entries, 18)+" "+styles.mutedStyle.Render(trimStatus(progress.CurrentPath, display.Width-22)),
		"",
		styles.mutedStyle.Render(trimStatus(display.Status, display.Width)),
		styles.mutedStyle.Render("← cancel scan  ? help  q quit"),
	)
	return strings.Join(lines, "\n")
}

func renderHelpView(model Model, display state.DisplayModel, styles uiStyles) string {
	lines := []string{styles.headerStyle.Render("sweepdu help"), ""}
	for _, help := range display.Help {
		labels := []string{}
		for _, binding := range model.keys.bindingsFor(help.Event) {
			labels = append(labels, bindingLabel(binding))
		}
		lines = append(lines, fmt.Sprintf("%-28s %s", strings.Join(labels, " "), help.Description))
	}
	lines = append(lines, "", "Press ? to close help")
	return styles.panelBorder.Width(panelWidth(display)).Render(strings.Join(lines, "\n"))
}

func bindingLabel(binding key.Binding) string {
	if help := binding.Help().Key; help != "" {
		return help
	}
	return strings.Join(binding.Keys(), ",")
}

func breadcrumbs(path string) string {
	if path == "" {
		return "."
	}
	parts := strings.Split(path, "/")
	if parts[0] == "" {
		parts[0] = "/"
	}
	return strings.Join(parts, " › ")
}

func usageBar(fraction float64, width int) string {
	filled := int(fraction*float64(width) + 0.5)
	filled = clamp(filled, 0, width)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func padLine(left, right string, width int) string {
	if width <= 0 {
		return left
	}
	space := width - lipgloss.Width(left) - lipgloss.Width(right)
	if space < 1 {
		return left + " " + right
	}
	return left + strings.Repeat(" ", space) + right
}

func progressBar(count int64, width int) string {
	if width <= 0 {
		return ""
	}
	pos := int(count % int64(width))
	filled := strings.Repeat("█", pos)
	gap := strings.Repeat("░", width-pos)
	return fmt.Sprintf("[%s%s]", filled, gap)
}

// trimStatus shortens message to fit width terminal cells.
func trimStatus(message string, width int) string {
	if width <= 0 || lipgloss.Width(message) <= width {
		return message
	}
	if width <= 4 {
		return truncate.String(message, uint(width))
	}
	return truncate.StringWithTail(message, uint(width), "...")
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
