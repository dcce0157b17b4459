package ui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sweepdu/internal/services"
	"sweepdu/internal/state"
)

const tickInterval = 100 * time.Millisecond

type Options struct {
	Theme  string
	Logger *slog.Logger
}

// Model adapts the browser state machine to bubbletea. It owns no browsing
// logic itself: key presses become events and View draws state.Render.
type Model struct {
	ctx       context.Context
	state     state.State
	scanner   services.Scanner
	progress  services.ProgressProvider
	canceller services.Canceller
	request   services.ScanRequest
	env       state.Env
	keys      KeyMap
	theme     string
	logger    *slog.Logger
	volume    *services.VolumeInfo
	err       error
}

func NewModel(ctx context.Context, appState state.State, scanner services.Scanner, actions services.Actions, request services.ScanRequest, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	progress, _ := scanner.(services.ProgressProvider)
	canceller, _ := scanner.(services.Canceller)
	return Model{
		ctx:       ctx,
		state:     appState,
		scanner:   scanner,
		progress:  progress,
		canceller: canceller,
		request:   request,
		env:       state.Env{Remover: actions, Logger: logger},
		keys:      DefaultKeyMap(),
		theme:     opts.Theme,
		logger:    logger,
	}
}

// Err is the fatal error that ended the program, if any.
func (model Model) Err() error {
	return model.err
}

func (model Model) State() state.State {
	return model.state
}

func (model Model) Init() tea.Cmd {
	return tea.Batch(model.scanCmd(), model.tickCmd(), model.volumeCmd())
}

func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return model.handleKey(typed)
	case tea.WindowSizeMsg:
		return model.apply(state.Resize(typed.Width, typed.Height))
	case scanTickMsg:
		if !model.state.IsScanning() {
			return model, nil
		}
		model.state = state.Apply(model.state, state.ScanProgress(typed.stats), model.env)
		return model, model.tickCmd()
	case scanResultMsg:
		if typed.err != nil {
			model.err = typed.err
			model.logger.Error("scan failed", "err", typed.err)
			return model, tea.Quit
		}
		return model.apply(state.ScanDone(typed.result.Tree, typed.result.Stats))
	case volumeMsg:
		if typed.err != nil {
			model.logger.Debug("volume info unavailable", "err", typed.err)
			return model, nil
		}
		info := typed.info
		model.volume = &info
		return model, nil
	}
	return model, nil
}

func (model Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ev, ok := model.keys.EventFor(model.state.Mode(), msg)
	if !ok {
		return model, nil
	}
	return model.apply(ev)
}

func (model Model) apply(ev state.Event) (tea.Model, tea.Cmd) {
	model.state = state.Apply(model.state, ev, model.env)
	if model.state.CancelRequested() && model.canceller != nil {
		model.canceller.Cancel()
	}
	if model.state.Mode() == state.Exiting {
		if model.canceller != nil {
			model.canceller.Cancel()
		}
		return model, tea.Quit
	}
	return model, nil
}

func (model Model) scanCmd() tea.Cmd {
	ctx := model.ctx
	scanner := model.scanner
	request := model.request
	return func() tea.Msg {
		result, err := scanner.Scan(ctx, request)
		return scanResultMsg{result: result, err: err}
	}
}

func (model Model) tickCmd() tea.Cmd {
	if model.progress == nil {
		return nil
	}
	progress := model.progress
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return scanTickMsg{stats: progress.Progress()}
	})
}

func (model Model) volumeCmd() tea.Cmd {
	if len(model.request.Roots) == 0 {
		return nil
	}
	root := model.request.Roots[0]
	return func() tea.Msg {
		info, err := services.VolumeFor(root)
		return volumeMsg{info: info, err: err}
	}
}
