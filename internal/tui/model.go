package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/PabloGalante/studybuddy/internal/app/conversation"
	"github.com/PabloGalante/studybuddy/internal/app/sessions"
	"github.com/PabloGalante/studybuddy/internal/domain"
	"github.com/PabloGalante/studybuddy/internal/observability"
)

// Preferences is the preference state the UI shows and toggles.
type Preferences interface {
	SaveHistory() bool
	ShareLogs() bool
	OnSavePreferenceChanged(ctx context.Context, enabled bool) error
	OnLoggingPreferenceChanged(ctx context.Context, enabled bool) error
}

type Deps struct {
	Service  *conversation.Service
	Sessions *sessions.Store
	Prefs    Preferences
}

// Model is the chat screen.
type Model struct {
	svc      *conversation.Service
	sessions *sessions.Store
	prefs    Preferences

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	ctx    context.Context
	cancel context.CancelFunc

	streaming   bool
	streamCh    chan tea.Msg
	showSources bool
	err         error

	ready  bool
	width  int
	height int
}

func New(ctx context.Context, deps Deps) Model {
	in := textinput.New()
	in.Placeholder = "Ask about visas, housing, insurance..."
	in.CharLimit = 2000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(ctx)
	return Model{
		svc:      deps.Service,
		sessions: deps.Sessions,
		prefs:    deps.Prefs,
		input:    in,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		m.refresh(true)

	case streamUpdateMsg:
		m.refresh(m.isActive(msg.Update.SessionID))
		cmds = append(cmds, waitForStream(m.streamCh))

	case streamDoneMsg:
		m.streaming = false
		m.streamCh = nil
		m.input.Focus()
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		m.refresh(true)

	case spinner.TickMsg:
		if m.streaming {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.cancel()
		return tea.Quit, true

	case "enter":
		return m.submit(m.input.Value()), true

	case "ctrl+n":
		m.sessions.SelectNone()
		m.err = nil
		m.refresh(true)
		return nil, true

	case "tab":
		m.cycle(1)
		return nil, true

	case "shift+tab":
		m.cycle(-1)
		return nil, true

	case "ctrl+d":
		if id, ok := m.sessions.ActiveID(); ok {
			m.sessions.DeleteSession(id)
			m.refresh(true)
		}
		return nil, true

	case "ctrl+s":
		m.togglePref(m.prefs.SaveHistory(), m.prefs.OnSavePreferenceChanged)
		return nil, true

	case "ctrl+l":
		m.togglePref(m.prefs.ShareLogs(), m.prefs.OnLoggingPreferenceChanged)
		return nil, true

	case "ctrl+o":
		m.showSources = !m.showSources
		m.refresh(false)
		return nil, true

	case "pgup":
		m.viewport.ViewUp()
		return nil, true

	case "pgdown":
		m.viewport.ViewDown()
		return nil, true

	case "alt+1", "alt+2", "alt+3":
		if m.input.Value() != "" || m.streaming {
			return nil, true
		}
		topic := conversation.QuickPrompts[msg.Runes[0]-'1']
		return m.submit(conversation.QuickPrompt(topic)), true
	}
	return nil, false
}

// submit starts streaming query on a background goroutine. Its progress comes
// back as streamUpdateMsg and streamDoneMsg through streamCh.
func (m *Model) submit(query string) tea.Cmd {
	if m.streaming {
		return nil
	}
	if strings.TrimSpace(query) == "" {
		return nil
	}

	ch := make(chan tea.Msg, 1)
	m.streamCh = ch
	m.streaming = true
	m.err = nil
	m.input.SetValue("")
	m.input.Blur()

	ctx := m.ctx
	svc := m.svc
	go func() {
		defer close(ch)
		send := func(msg tea.Msg) {
			select {
			case ch <- msg:
			case <-ctx.Done():
			}
		}
		res, err := svc.Submit(ctx, query, func(u conversation.Update) {
			send(streamUpdateMsg{Update: u})
		})
		send(streamDoneMsg{Result: res, Err: err})
	}()

	m.refresh(true)
	return tea.Batch(m.spinner.Tick, waitForStream(ch))
}

// cycle moves the active session by step through the newest-first list.
func (m *Model) cycle(step int) {
	list := m.sessions.Sessions()
	if len(list) == 0 {
		return
	}
	idx := -1
	if id, ok := m.sessions.ActiveID(); ok {
		for i, s := range list {
			if s.ID == id {
				idx = i
				break
			}
		}
	}
	switch {
	case idx < 0 && step > 0:
		idx = 0
	case idx < 0:
		idx = len(list) - 1
	default:
		idx = (idx + step + len(list)) % len(list)
	}
	m.sessions.SelectSession(list[idx].ID)
	m.err = nil
	m.refresh(true)
}

func (m *Model) togglePref(current bool, set func(context.Context, bool) error) {
	if err := set(m.ctx, !current); err != nil {
		observability.Logger().Warn("failed to persist preference", "error", err)
		m.err = err
	}
}

func (m *Model) isActive(id domain.SessionID) bool {
	active, ok := m.sessions.ActiveID()
	return ok && active == id
}

func (m *Model) resize() {
	mainWidth := m.width - sidebarWidth - 3
	if mainWidth < 20 {
		mainWidth = 20
	}
	// header, error line, input, footer
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	m.viewport.Width = mainWidth
	m.viewport.Height = h
	m.input.Width = mainWidth - 4
}

// refresh re-renders the conversation; follow scrolls to the newest line.
func (m *Model) refresh(follow bool) {
	m.viewport.SetContent(m.renderConversation(m.viewport.Width))
	if follow {
		m.viewport.GotoBottom()
	}
}

// Close cancels a running stream.
func (m Model) Close() {
	m.cancel()
}
