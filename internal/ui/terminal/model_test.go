package terminal

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/internal/core/cycle"
	"pomodoro/internal/core/model"
)

type fakeTimer struct {
	calls    []string
	snapshot cycle.Snapshot
	catalog  model.Catalog
	err      error
}

func newFakeTimer() *fakeTimer {
	catalog := model.DefaultCatalog()
	standard := catalog[1]
	return &fakeTimer{
		catalog: catalog,
		snapshot: cycle.Snapshot{
			CycleState:       cycle.CycleIdle,
			RunStatus:        cycle.StatusIdle,
			SecondsRemaining: 1500,
			TotalSeconds:     1500,
			ActiveTemplate:   &standard,
		},
	}
}

func (timer *fakeTimer) Unlock(context.Context) { timer.calls = append(timer.calls, "unlock") }

func (timer *fakeTimer) Toggle() error {
	timer.calls = append(timer.calls, "toggle")
	timer.snapshot.CycleState = cycle.CycleFocus
	timer.snapshot.RunStatus = cycle.StatusRunning
	return timer.err
}

func (timer *fakeTimer) Reset() error {
	timer.calls = append(timer.calls, "reset")
	return timer.err
}

func (timer *fakeTimer) ToggleMute() bool {
	timer.calls = append(timer.calls, "mute")
	timer.snapshot.MusicMuted = !timer.snapshot.MusicMuted
	return timer.snapshot.MusicMuted
}

func (timer *fakeTimer) SelectTemplateAt(index int) error {
	timer.calls = append(timer.calls, "select:"+timer.catalog[index].ID)
	template := timer.catalog[index]
	timer.snapshot.ActiveTemplate = &template
	return nil
}

func (timer *fakeTimer) SetCustomDurations(focusMinutes, breakMinutes int) (model.Template, error) {
	timer.calls = append(timer.calls, "custom")
	template := model.CustomTemplate(focusMinutes, breakMinutes)
	timer.snapshot.ActiveTemplate = &template
	return template, nil
}

func (timer *fakeTimer) Snapshot() cycle.Snapshot { return timer.snapshot }

func runes(value string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(value)}
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next, cmd
}

func TestModel_KeysUnlockBeforeActing(t *testing.T) {
	timer := newFakeTimer()
	m := New(context.Background(), timer, timer.catalog, model.DefaultAssetSet(), nil)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m, _ = press(t, m, runes("m"))
	m, _ = press(t, m, runes("r"))

	assert.Equal(t, []string{"unlock", "toggle", "unlock", "mute", "unlock", "reset"}, timer.calls)
	assert.Equal(t, cycle.CycleFocus, m.snapshot.CycleState)
	assert.True(t, m.snapshot.MusicMuted)
}

func TestModel_TemplateCycling(t *testing.T) {
	timer := newFakeTimer()
	m := New(context.Background(), timer, timer.catalog, model.DefaultAssetSet(), nil)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "extended", m.snapshot.ActiveTemplate.ID)
	m, _ = press(t, m, runes("p"))
	m, _ = press(t, m, runes("p"))
	assert.Equal(t, "short-focus", m.snapshot.ActiveTemplate.ID)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, "ultra", m.snapshot.ActiveTemplate.ID, "cycling wraps")
}

func TestModel_CustomDurations(t *testing.T) {
	timer := newFakeTimer()
	m := New(context.Background(), timer, timer.catalog, model.DefaultAssetSet(), nil)

	m, _ = press(t, m, runes("c"))
	require.True(t, m.editing)
	m, _ = press(t, m, runes("10/2"))
	assert.Equal(t, "10/2", m.input.Value())
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.editing)
	require.NotNil(t, m.snapshot.ActiveTemplate)
	assert.Equal(t, model.CustomTemplateID, m.snapshot.ActiveTemplate.ID)
	assert.Equal(t, 10, m.snapshot.ActiveTemplate.FocusMinutes)
	assert.Contains(t, timer.calls, "custom")
	assert.Contains(t, m.View(), "Custom 10/2 selected")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "short-focus", m.snapshot.ActiveTemplate.ID, "custom sits before the first template")
}

func TestModel_CustomDurationsInvalid(t *testing.T) {
	timer := newFakeTimer()
	m := New(context.Background(), timer, timer.catalog, model.DefaultAssetSet(), nil)

	m, _ = press(t, m, runes("c"))
	m, _ = press(t, m, runes("25"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, m.editing, "invalid input keeps the prompt open")
	assert.ErrorIs(t, m.err, model.ErrInvalidDuration)
	assert.NotContains(t, timer.calls, "custom")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.editing)
}

func TestModel_ShowsOperationError(t *testing.T) {
	timer := newFakeTimer()
	timer.err = errors.New("invalid transition: reset while idle")
	m := New(context.Background(), timer, timer.catalog, model.DefaultAssetSet(), nil)

	m, _ = press(t, m, runes("r"))
	assert.Contains(t, m.View(), "reset while idle")
}

func TestModel_Events(t *testing.T) {
	timer := newFakeTimer()
	events := make(chan cycle.Event, 1)
	m := New(context.Background(), timer, timer.catalog, model.DefaultAssetSet(), events)

	breakState := cycle.Snapshot{CycleState: cycle.CycleBreak, RunStatus: cycle.StatusRunning, SecondsRemaining: 300, TotalSeconds: 300, SessionsCompleted: 1}
	m, cmd := press(t, m, EventMsg{Event: cycle.Event{Type: cycle.EventPhaseComplete, Completed: cycle.CycleFocus, Snapshot: breakState}})
	require.NotNil(t, cmd)
	assert.Equal(t, breakState, m.snapshot)
	assert.Contains(t, m.View(), "Focus complete")
	assert.Contains(t, m.View(), "05:00")

	events <- cycle.Event{Type: cycle.EventProgress, Snapshot: breakState}
	msg := cmd()
	assert.IsType(t, EventMsg{}, msg)

	close(events)
	assert.Equal(t, tea.Quit(), waitForEvent(events)())
}

func TestModel_Quit(t *testing.T) {
	timer := newFakeTimer()
	m := New(context.Background(), timer, timer.catalog, model.DefaultAssetSet(), nil)

	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_NowPlaying(t *testing.T) {
	timer := newFakeTimer()
	m := New(context.Background(), timer, timer.catalog, model.DefaultAssetSet(), nil)
	assert.NotContains(t, m.View(), "Now Playing", "hidden while idle")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Contains(t, m.View(), "Now Playing: Focus Music / Jason Lewis - Mind Amend")
	assert.Contains(t, m.View(), "https://www.youtube.com/watch?v=jvM9AfAzoSo")

	m, _ = press(t, m, runes("m"))
	assert.Contains(t, m.View(), "Muted: Focus Music")
	assert.NotContains(t, m.View(), "Now Playing")
}
