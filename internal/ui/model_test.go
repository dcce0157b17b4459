package ui

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sweepdu/internal/domain"
	"sweepdu/internal/services"
	"sweepdu/internal/state"
)

type fakeScanner struct {
	tree      *domain.Tree
	cancelled atomic.Int64
}

func (scanner *fakeScanner) Scan(ctx context.Context, req services.ScanRequest) (services.ScanResult, error) {
	return services.ScanResult{Tree: scanner.tree}, nil
}

func (scanner *fakeScanner) Progress() domain.ScanStats {
	return domain.ScanStats{Files: 3}
}

func (scanner *fakeScanner) Cancel() {
	scanner.cancelled.Add(1)
}

type fakeActions struct {
	removed []string
}

func (actions *fakeActions) Remove(path string, kind domain.EntryKind) error {
	actions.removed = append(actions.removed, path)
	return nil
}

func sampleTree() *domain.Tree {
	tree := domain.NewTree(domain.RetainEmptyDirs)
	root := tree.AddRoot(domain.Entry{Name: "/data", Kind: domain.KindDir})
	logs := tree.InsertChild(root, domain.Entry{Name: "logs", Kind: domain.KindDir})
	tree.InsertChild(logs, domain.Entry{Name: "big.log", Kind: domain.KindFile, Size: 3000})
	tree.InsertChild(root, domain.Entry{Name: "notes.txt", Kind: domain.KindFile, Size: 1000})
	return tree
}

func newTestModel(scanner *fakeScanner, actions *fakeActions) Model {
	return NewModel(context.Background(), state.NewState(state.Preferences{}), scanner, actions,
		services.ScanRequest{Roots: []string{"/data"}}, Options{})
}

func runes(value string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(value)}
}

func update(t *testing.T, model Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := model.Update(msg)
		model = next.(Model)
	}
	return model
}

func TestEventForModes(t *testing.T) {
	keys := DefaultKeyMap()
	cases := []struct {
		name string
		mode state.Mode
		msg  tea.KeyMsg
		want state.Event
	}{
		{"down arrow", state.Ready, tea.KeyMsg{Type: tea.KeyDown}, state.Key(state.EventDown)},
		{"vim up", state.Ready, runes("k"), state.Key(state.EventUp)},
		{"page down", state.Ready, tea.KeyMsg{Type: tea.KeyPgDown}, state.Key(state.EventPageDown)},
		{"enter", state.Ready, tea.KeyMsg{Type: tea.KeyEnter}, state.Key(state.EventEnter)},
		{"backspace", state.Ready, tea.KeyMsg{Type: tea.KeyBackspace}, state.Key(state.EventBack)},
		{"mark", state.Ready, runes(" "), state.Key(state.EventToggleMark)},
		{"sort name", state.Ready, runes("n"), state.ChangeSort(domain.SortByName)},
		{"sort mtime", state.Ready, runes("m"), state.ChangeSort(domain.SortByMod)},
		{"decline", state.ConfirmDelete, runes("n"), state.Key(state.EventConfirmNo)},
		{"accept", state.ConfirmDelete, runes("y"), state.Key(state.EventConfirmYes)},
		{"quit while confirming", state.ConfirmDelete, tea.KeyMsg{Type: tea.KeyCtrlC}, state.Key(state.EventQuit)},
		{"help", state.Scanning, runes("?"), state.Key(state.EventToggleHelp)},
	}
	for _, tc := range cases {
		got, ok := keys.EventFor(tc.mode, tc.msg)
		if !ok {
			t.Errorf("%s: no event", tc.name)
			continue
		}
		if got.Kind != tc.want.Kind || got.Sort != tc.want.Sort {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
	if _, ok := keys.EventFor(state.ConfirmDelete, runes("j")); ok {
		t.Errorf("navigation keys should be ignored while confirming")
	}
	if _, ok := keys.EventFor(state.Ready, runes("z")); ok {
		t.Errorf("unbound key produced an event")
	}
}

func TestModelScanLifecycle(t *testing.T) {
	scanner := &fakeScanner{tree: sampleTree()}
	model := newTestModel(scanner, &fakeActions{})
	if model.Init() == nil {
		t.Fatalf("init should start the scan")
	}

	model = update(t, model, tea.WindowSizeMsg{Width: 100, Height: 20}, scanTickMsg{stats: domain.ScanStats{Files: 3, Entries: 4}})
	if view := model.View(); !strings.Contains(view, "SCANNING") || !strings.Contains(view, "Files   : 3") {
		t.Fatalf("scanning view:\n%s", view)
	}

	result, _ := scanner.Scan(context.Background(), services.ScanRequest{})
	model = update(t, model, scanResultMsg{result: result})
	if model.State().Mode() != state.Ready {
		t.Fatalf("mode = %v", model.State().Mode())
	}
	view := model.View()
	for _, want := range []string{"logs/", "notes.txt", "4.0 kB", "75.0%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	if _, cmd := model.Update(scanTickMsg{}); cmd != nil {
		t.Fatalf("ticks should stop once the scan is done")
	}
}

func TestModelCancelScan(t *testing.T) {
	scanner := &fakeScanner{tree: sampleTree()}
	model := update(t, newTestModel(scanner, &fakeActions{}), tea.KeyMsg{Type: tea.KeyLeft})
	if !model.State().CancelRequested() || scanner.cancelled.Load() == 0 {
		t.Fatalf("back during scan should cancel the scanner")
	}
}

func TestModelDeleteFlow(t *testing.T) {
	scanner := &fakeScanner{tree: sampleTree()}
	actions := &fakeActions{}
	result, _ := scanner.Scan(context.Background(), services.ScanRequest{})
	model := update(t, newTestModel(scanner, actions),
		tea.WindowSizeMsg{Width: 100, Height: 20},
		scanResultMsg{result: result},
		runes("d"),
	)
	if !strings.Contains(model.View(), "Delete /data/logs") {
		t.Fatalf("confirm prompt missing:\n%s", model.View())
	}
	model = update(t, model, runes("y"))
	if len(actions.removed) != 2 || actions.removed[1] != "/data/logs" {
		t.Fatalf("removed = %v", actions.removed)
	}
	if got := scanner.tree.Total(); got != 1000 {
		t.Fatalf("total = %d", got)
	}
}

func TestModelQuit(t *testing.T) {
	scanner := &fakeScanner{tree: sampleTree()}
	next, cmd := newTestModel(scanner, &fakeActions{}).Update(runes("q"))
	if cmd == nil {
		t.Fatalf("quit should return a command")
	}
	if next.(Model).State().Mode() != state.Exiting || scanner.cancelled.Load() == 0 {
		t.Fatalf("quit should exit and stop the scan")
	}
}

func TestHelpViewListsBindings(t *testing.T) {
	scanner := &fakeScanner{tree: sampleTree()}
	result, _ := scanner.Scan(context.Background(), services.ScanRequest{})
	model := update(t, newTestModel(scanner, &fakeActions{}), scanResultMsg{result: result}, runes("?"))
	view := model.View()
	for _, want := range []string{"sweepdu help", "space", "sort by size", "toggle help"} {
		if !strings.Contains(view, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestUsageBar(t *testing.T) {
	if got := usageBar(0.5, 4); got != "[██░░]" {
		t.Fatalf("half bar = %q", got)
	}
	if got := usageBar(2, 4); got != "[████]" {
		t.Fatalf("overfull bar = %q", got)
	}
}

func TestMarkedPaneAndConfirmListPaths(t *testing.T) {
	scanner := &fakeScanner{tree: sampleTree()}
	result, _ := scanner.Scan(context.Background(), services.ScanRequest{})
	model := update(t, newTestModel(scanner, &fakeActions{}),
		tea.WindowSizeMsg{Width: 100, Height: 24},
		scanResultMsg{result: result},
		runes(" "), runes(" "),
	)

	view := model.View()
	if !strings.Contains(view, "2 marked (4.0 kB)") {
		t.Fatalf("marked pane title missing:\n%s", view)
	}
	logs, notes := strings.Index(view, "/data/logs"), strings.Index(view, "/data/notes.txt")
	if logs < 0 || notes < 0 || logs > notes {
		t.Fatalf("marked pane should list paths in marking order:\n%s", view)
	}

	confirm := update(t, model, runes("d")).View()
	for _, want := range []string{"Delete 2 entries (4.0 kB)?", "/data/logs", "/data/notes.txt", "y confirm"} {
		if !strings.Contains(confirm, want) {
			t.Errorf("confirm view missing %q:\n%s", want, confirm)
		}
	}
}

func TestRowNameNotes(t *testing.T) {
	cases := []struct {
		row  state.Row
		want string
	}{
		{state.Row{Name: "fifo", Kind: domain.KindOther, Unsupported: true}, "fifo  <special file>"},
		{state.Row{Name: "copy", Kind: domain.KindFile, Duplicate: true}, "copy  <hardlink>"},
		{state.Row{Name: "src", Kind: domain.KindDir, Incomplete: true}, "src/  <incomplete>"},
	}
	for _, tc := range cases {
		if got := rowName(tc.row); got != tc.want {
			t.Errorf("rowName = %q, want %q", got, tc.want)
		}
	}
}

func TestTrimStatusKeepsRunesWhole(t *testing.T) {
	message := "scanning… /home/ünïcode › ÿ"
	for width := 1; width < len(message)+2; width++ {
		got := trimStatus(message, width)
		if !utf8.ValidString(got) {
			t.Fatalf("width %d produced invalid UTF-8: %q", width, got)
		}
		if w := lipgloss.Width(got); w > width {
			t.Fatalf("width %d produced %d cells: %q", width, w, got)
		}
	}
	if got := trimStatus("short", 80); got != "short" {
		t.Fatalf("short message changed: %q", got)
	}
}
