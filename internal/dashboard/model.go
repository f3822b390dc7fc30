// Package dashboard is the terminal view of the chart workflow: a chart
// picker, the JSON editor, the email field and the load/save actions.
package dashboard

import (
	"context"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jgoulah/callcharts/internal/workflow"
	"github.com/jgoulah/callcharts/pkg/models"
)

type focusArea int

const (
	focusEmail focusArea = iota
	focusEditor
)

type loadDoneMsg struct {
	out workflow.LoadOutcome
	err error
}

type saveDoneMsg struct {
	out workflow.SaveOutcome
	err error
}

// Model is the bubbletea model for the dashboard
type Model struct {
	ctx    context.Context
	wf     *workflow.Workflow
	logger *zap.Logger

	email  textinput.Model
	editor textarea.Model
	focus  focusArea

	// inFlight is set when an operation is dispatched, before the workflow
	// itself reports busy
	inFlight   bool
	confirming bool
	pendingOld models.Series

	width  int
	height int
	styles Styles
}

// New creates the dashboard over wf
func New(ctx context.Context, wf *workflow.Workflow, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	ei := textinput.New()
	ei.Placeholder = "you@example.com"
	ei.Prompt = "Email: "
	ei.CharLimit = 254
	ei.Width = 40
	ei.SetValue(wf.Email())
	ei.Focus()

	ed := textarea.New()
	ed.Placeholder = `[{"name":"00:00","quality":72}, {"name":"04:00","quality":75}]`
	ed.ShowLineNumbers = false
	ed.CharLimit = 0
	ed.SetWidth(60)
	ed.SetHeight(10)
	ed.SetValue(wf.Buffer())

	return Model{
		ctx:    ctx,
		wf:     wf,
		logger: logger,
		email:  ei,
		editor: ed,
		focus:  focusEmail,
		styles: DefaultStyles(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// busy reports whether load/save must be disabled
func (m Model) busy() bool {
	return m.inFlight || m.confirming || m.wf.Snapshot().Busy
}

func (m Model) canRun() bool {
	return !m.busy() && m.wf.EmailValid()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 10 {
			m.editor.SetWidth(min(msg.Width-4, 100))
		}
		return m, nil

	case loadDoneMsg:
		m.inFlight = false
		if msg.err != nil {
			m.logger.Debug("Load finished with error", zap.Error(msg.err))
		}
		m.pullBuffer()
		return m, nil

	case saveDoneMsg:
		m.inFlight = false
		if msg.err != nil {
			m.logger.Debug("Save finished with error", zap.Error(msg.err))
		}
		if msg.out.Result == workflow.SaveAwaitingConfirmation {
			m.confirming = true
			m.pendingOld = msg.out.Previous
		} else {
			m.confirming = false
			m.pendingOld = nil
		}
		m.pullBuffer()
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg)
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.wf.Select(m.wf.Selected().Next())
			m.pullBuffer()
			return m, nil
		case "shift+tab":
			return m, m.toggleFocus()
		case "ctrl+r":
			m.wf.Reset(m.wf.Selected())
			m.pullBuffer()
			return m, nil
		case "ctrl+p":
			m.wf.ApplyPrevious()
			m.pullBuffer()
			return m, nil
		case "ctrl+l":
			if !m.canRun() {
				return m, nil
			}
			m.inFlight = true
			return m, m.loadCmd(m.wf.Email(), m.wf.Selected())
		case "ctrl+s":
			if !m.canRun() {
				return m, nil
			}
			m.inFlight = true
			return m, m.saveCmd(m.wf.Email(), m.wf.Selected(), m.wf.Buffer())
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusEmail:
		m.email, cmd = m.email.Update(msg)
		m.wf.SetEmail(m.email.Value())
		cmds = append(cmds, cmd)
	case focusEditor:
		if !m.wf.EmailValid() {
			// Editing is disabled until the email is valid
			m.focus = focusEmail
			m.editor.Blur()
			cmds = append(cmds, m.email.Focus())
			break
		}
		m.editor, cmd = m.editor.Update(msg)
		m.wf.EditBuffer(m.editor.Value())
		cmds = append(cmds, cmd)
	}

	m.pullBuffer()
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirming = false
		m.inFlight = true
		return m, m.confirmCmd(true)
	case "n", "N", "esc":
		m.confirming = false
		m.inFlight = true
		return m, m.confirmCmd(false)
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusEmail {
		if !m.wf.EmailValid() {
			return nil
		}
		m.focus = focusEditor
		m.email.Blur()
		return m.editor.Focus()
	}
	m.focus = focusEmail
	m.editor.Blur()
	return m.email.Focus()
}

// pullBuffer copies the workflow's edit buffer into the editor when the
// workflow re-derived it.
func (m *Model) pullBuffer() {
	if buf := m.wf.Buffer(); buf != m.editor.Value() {
		m.editor.SetValue(buf)
	}
}

func (m Model) loadCmd(email string, chart models.ChartID) tea.Cmd {
	ctx, wf := m.ctx, m.wf
	return func() tea.Msg {
		out, err := wf.LoadPrevious(ctx, email, chart)
		return loadDoneMsg{out: out, err: err}
	}
}

func (m Model) saveCmd(email string, chart models.ChartID, text string) tea.Cmd {
	ctx, wf := m.ctx, m.wf
	return func() tea.Msg {
		out, err := wf.Save(ctx, email, chart, text)
		return saveDoneMsg{out: out, err: err}
	}
}

func (m Model) confirmCmd(overwrite bool) tea.Cmd {
	ctx, wf := m.ctx, m.wf
	return func() tea.Msg {
		out, err := wf.Confirm(ctx, overwrite)
		return saveDoneMsg{out: out, err: err}
	}
}

// Run starts the dashboard program and blocks until the user quits
func Run(ctx context.Context, wf *workflow.Workflow, logger *zap.Logger) error {
	p := tea.NewProgram(New(ctx, wf, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
