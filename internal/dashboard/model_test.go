package dashboard

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/callcharts/internal/workflow"
	"github.com/jgoulah/callcharts/pkg/models"
)

func newTestModel(t *testing.T, store *workflow.MemoryStore, email string) Model {
	t.Helper()
	wf := workflow.New(store, workflow.WithEmail(email))
	return New(context.Background(), wf, nil)
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

// run executes an operation command and feeds its result back
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	return m
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_InitialState(t *testing.T) {
	m := newTestModel(t, workflow.NewMemoryStore(), "")
	view := m.View()

	assert.Contains(t, view, "Voice Agent Analytics Dashboard")
	assert.Contains(t, view, "00:00")
	assert.Contains(t, view, "enter a valid email")
	assert.Contains(t, view, "●")
}

func TestTabSwitchesChartAndBuffer(t *testing.T) {
	m := newTestModel(t, workflow.NewMemoryStore(), "a@b.com")

	m, _ = send(t, m, key(tea.KeyTab))
	assert.Equal(t, models.CallVolume, m.wf.Selected())
	assert.Contains(t, m.editor.Value(), `"calls": 120`)
	assert.Contains(t, m.View(), "█")
}

func TestActionsDisabledWithoutValidEmail(t *testing.T) {
	store := workflow.NewMemoryStore()
	m := newTestModel(t, store, "not-an-email")

	m, cmd := send(t, m, key(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	m, cmd = send(t, m, key(tea.KeyCtrlL))
	assert.Nil(t, cmd)
	assert.Equal(t, 0, store.Calls())

	// editor cannot take focus either
	m, _ = send(t, m, key(tea.KeyShiftTab))
	assert.Equal(t, focusEmail, m.focus)
}

func TestTypingEmailEnablesEditor(t *testing.T) {
	m := newTestModel(t, workflow.NewMemoryStore(), "")

	m, _ = send(t, m, runes("a@b.com"))
	assert.Equal(t, "a@b.com", m.wf.Email())
	assert.True(t, m.wf.EmailValid())

	m, _ = send(t, m, key(tea.KeyShiftTab))
	assert.Equal(t, focusEditor, m.focus)
}

func TestSaveFlowWithConfirmation(t *testing.T) {
	store := workflow.NewMemoryStore()
	m := newTestModel(t, store, "a@b.com")

	m.wf.EditBuffer(`[{"name":"00:00","quality":99}]`)
	m, cmd := send(t, m, key(tea.KeyCtrlS))
	assert.True(t, m.inFlight)

	// second save while in flight is ignored
	_, second := send(t, m, key(tea.KeyCtrlS))
	assert.Nil(t, second)

	m = run(t, m, cmd)
	assert.False(t, m.inFlight)
	assert.Equal(t, workflow.StatusSaved, m.wf.Snapshot().Status)
	assert.Contains(t, m.editor.Value(), `"quality": 99`)

	m.wf.EditBuffer(`[{"name":"00:00","quality":50}]`)
	m, cmd = send(t, m, key(tea.KeyCtrlS))
	m = run(t, m, cmd)
	require.True(t, m.confirming)
	assert.Contains(t, m.View(), workflow.StatusConfirm)

	// other keys are swallowed while confirming
	m, cmd = send(t, m, key(tea.KeyCtrlR))
	assert.Nil(t, cmd)
	assert.True(t, m.confirming)

	m, cmd = send(t, m, runes("n"))
	m = run(t, m, cmd)
	assert.False(t, m.confirming)
	assert.Equal(t, workflow.StatusCancelled, m.wf.Snapshot().Status)

	entry, err := store.Get(context.Background(), "a@b.com", models.VoiceQuality)
	require.NoError(t, err)
	n, _ := entry.Values[0].Number("quality")
	assert.Equal(t, 99.0, n)
}

func TestLoadShowsPreviousValues(t *testing.T) {
	store := workflow.NewMemoryStore()
	require.NoError(t, store.Upsert(context.Background(), &models.SavedEntry{
		Email:   "a@b.com",
		ChartID: models.VoiceQuality,
		Values:  models.Series{{{Key: "name", Value: "00:00"}, {Key: "quality", Value: 12.0}}},
	}))
	m := newTestModel(t, store, "a@b.com")

	m, cmd := send(t, m, key(tea.KeyCtrlL))
	m = run(t, m, cmd)

	view := m.View()
	assert.Contains(t, view, workflow.StatusLoaded)
	assert.Contains(t, view, "Previous values (Voice Quality)")
	assert.Contains(t, view, `"quality": 12`)

	m, _ = send(t, m, key(tea.KeyCtrlP))
	assert.Equal(t, workflow.StatusApplied, m.wf.Snapshot().Status)
	assert.True(t, strings.Contains(m.editor.Value(), `"quality": 12`))
}

func TestResetKey(t *testing.T) {
	m := newTestModel(t, workflow.NewMemoryStore(), "a@b.com")
	m.wf.EditBuffer("junk")

	m, _ = send(t, m, key(tea.KeyCtrlR))
	assert.Equal(t, workflow.StatusReset, m.wf.Snapshot().Status)
	assert.Contains(t, m.editor.Value(), `"quality": 72`)
}

func TestRenderChartEmpty(t *testing.T) {
	m := newTestModel(t, workflow.NewMemoryStore(), "")
	assert.Contains(t, m.renderChart(models.CallVolume, nil), "no data")
}
