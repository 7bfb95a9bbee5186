package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"kitbag/internal/api"
	"kitbag/internal/config"
	"kitbag/internal/notify"
	"kitbag/internal/prefs"
	"kitbag/internal/service"
	"kitbag/internal/session"
)

// tickInterval drives toast expiry and header refresh.
const tickInterval = 500 * time.Millisecond

// Options configures the UI.
type Options struct {
	Context      context.Context
	Orchestrator *service.Orchestrator
	Session      *session.Store
	Notices      *notify.Queue
	Client       *api.Client
	Config       *config.Config
	Logger       zerolog.Logger
	ThemeName    string
	Prefs        prefs.Prefs
	PrefsPath    string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	orch      *service.Orchestrator
	store     *session.Store
	notices   *notify.Queue
	client    *api.Client
	config    *config.Config
	logger    zerolog.Logger
	prefsPath string
	userPrefs prefs.Prefs

	// UI state
	theme  Theme
	keys   keyMap
	width  int
	height int
	ready  bool

	// Tool forms, keyed by service; discarded when a modal closes
	forms map[service.ID]*form

	// Loading spinner
	spin spinner.Model

	// Help overlay
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		ctx:       ctx,
		orch:      opts.Orchestrator,
		store:     opts.Session,
		notices:   opts.Notices,
		client:    opts.Client,
		config:    opts.Config,
		logger:    opts.Logger,
		prefsPath: prefsPath,
		userPrefs: opts.Prefs,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		forms:     make(map[service.ID]*form),
		spin:      spin,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(),
		m.spin.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		// Expired toasts fall out of notices.Active() on the next render.
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case resultMsg:
		m.orch.Finish(service.Result(msg))
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key closes the help overlay.
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	active := service.ID(m.store.ActiveModal())
	if active != "" {
		return m.handleModalKey(msg, active)
	}
	return m.handleDashboardKey(msg)
}

// handleDashboardKey processes input while no tool modal is open.
func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.Dismiss):
		m.notices.DismissOldest()
	case key.Matches(msg, m.keys.OpenVideo):
		m.openTool(service.Video)
	case key.Matches(msg, m.keys.OpenQR):
		m.openTool(service.QR)
	case key.Matches(msg, m.keys.OpenSpeech):
		m.openTool(service.Speech)
	case key.Matches(msg, m.keys.OpenCutout):
		m.openTool(service.Cutout)
	case msg.String() == "q":
		return m, tea.Quit
	}
	return m, nil
}

// handleModalKey processes input for the open tool modal based on its phase.
func (m Model) handleModalKey(msg tea.KeyMsg, id service.ID) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) {
		m.closeTool(id)
		return m, nil
	}

	switch m.orch.Phase(id) {
	case service.PhaseIdle:
		return m.handleFormKey(msg, id)

	case service.PhaseLoading:
		// The request is in flight; only the globals work.
		switch {
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.CycleTheme):
			m.cycleTheme()
		}
		return m, nil

	case service.PhaseRendered:
		switch {
		case key.Matches(msg, m.keys.Save):
			if _, err := m.orch.Save(id); err != nil {
				m.notices.Error(err.Error())
			}
		case key.Matches(msg, m.keys.DoAgain):
			m.orch.Reset(id)
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.CycleTheme):
			m.cycleTheme()
		case key.Matches(msg, m.keys.Dismiss):
			m.notices.DismissOldest()
		}
		return m, nil

	default: // PhaseErrorRendered
		switch {
		case key.Matches(msg, m.keys.DoAgain):
			// Back to the form with its values intact.
			m.orch.Reset(id)
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
		case key.Matches(msg, m.keys.CycleTheme):
			m.cycleTheme()
		}
		return m, nil
	}
}

// handleFormKey processes input while a tool form is editable. Printable
// keys belong to the focused field, so the global bindings are limited to
// the few that never collide with typing.
func (m Model) handleFormKey(msg tea.KeyMsg, id service.ID) (tea.Model, tea.Cmd) {
	f := m.forms[id]
	if f == nil {
		f = newForm(id, m.userPrefs)
		m.forms[id] = f
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit(id, f)
	case key.Matches(msg, m.keys.NextField):
		f.next()
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		f.prev()
		return m, nil
	}

	return m, f.handleKey(msg)
}

// openTool activates a tool modal. Opening a tool while another is open
// closes the first and resets its state.
func (m *Model) openTool(id service.ID) {
	prior := m.store.ActiveModal()
	if prior == string(id) {
		return
	}
	m.store.OpenModal(string(id))
	if prior != "" {
		delete(m.forms, service.ID(prior))
	}
	if m.forms[id] == nil {
		m.forms[id] = newForm(id, m.userPrefs)
	}
}

// closeTool dismisses the active modal and drops its form.
func (m *Model) closeTool(id service.ID) {
	m.store.CloseActive()
	delete(m.forms, id)
}

// submit validates and dispatches the form. The round trip runs as a
// command off the UI goroutine; its result comes back as a resultMsg.
func (m *Model) submit(id service.ID, f *form) tea.Cmd {
	in, err := f.input()
	if err != nil {
		m.notices.Error(err.Error())
		return nil
	}

	dispatch := m.orch.Submit(m.ctx, id, in)
	if dispatch == nil {
		return nil
	}

	m.rememberChoices(id, in)

	return tea.Batch(
		m.spin.Tick,
		func() tea.Msg { return resultMsg(dispatch()) },
	)
}

// rememberChoices persists the enum picks worth carrying into the next run.
func (m *Model) rememberChoices(id service.ID, in service.Input) {
	changed := false
	switch id {
	case service.Video:
		if in.Quality != "" && in.Quality != m.userPrefs.Quality {
			m.userPrefs.Quality = in.Quality
			changed = true
		}
	case service.Speech:
		if in.Language != "" && in.Language != m.userPrefs.Language {
			m.userPrefs.Language = in.Language
			changed = true
		}
	}
	if changed {
		if err := prefs.Save(m.prefsPath, m.userPrefs); err != nil {
			m.logger.Debug().Err(err).Msg("preferences not saved")
		}
	}
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.userPrefs.Theme = m.theme.Name
	if m.prefsPath != "" {
		_ = prefs.Save(m.prefsPath, m.userPrefs)
	}
}

// Messages

type tickMsg time.Time

type resultMsg service.Result

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		// Cancellation (ctrl+c at the signal level) is a clean shutdown.
		return nil
	}
	return err
}
