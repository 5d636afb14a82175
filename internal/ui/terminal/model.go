package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pomodoro/internal/core/cycle"
	"pomodoro/internal/core/model"
	"pomodoro/internal/ui/display"
)

// Timer is the part of a session the terminal drives.
type Timer interface {
	Unlock(ctx context.Context)
	Toggle() error
	Reset() error
	ToggleMute() bool
	SelectTemplateAt(index int) error
	SetCustomDurations(focusMinutes, breakMinutes int) (model.Template, error)
	Snapshot() cycle.Snapshot
}

// Model renders the timer and maps keys to controller operations. Every key
// press counts as a user gesture for audio unlock.
type Model struct {
	ctx      context.Context
	timer    Timer
	catalog  model.Catalog
	assets   model.AssetSet
	events   <-chan cycle.Event
	snapshot cycle.Snapshot
	keys     keyMap
	help     help.Model
	progress progress.Model
	input    textinput.Model
	editing  bool
	note     string
	err      error
	width    int
}

// New constructs a terminal model for timer and its event stream.
func New(ctx context.Context, timer Timer, catalog model.Catalog, assets model.AssetSet, events <-chan cycle.Event) Model {
	input := textinput.New()
	input.Prompt = "focus/break: "
	input.Placeholder = "25/5"
	input.CharLimit = 7
	input.Width = 12

	return Model{
		ctx:      ctx,
		timer:    timer,
		catalog:  catalog,
		assets:   assets,
		events:   events,
		snapshot: timer.Snapshot(),
		keys:     defaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		input:    input,
	}
}

// EventMsg wraps a controller event for Bubble Tea.
type EventMsg struct {
	Event cycle.Event
}

// Init waits for the first controller event.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update consumes controller events and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.help.Width = typed.Width
		m.progress.Width = min(max(typed.Width-8, 10), 60)
		return m, nil
	case EventMsg:
		m.snapshot = typed.Event.Snapshot
		if typed.Event.Type == cycle.EventPhaseComplete {
			m.note = completionNote(typed.Event.Completed, m.snapshot)
		}
		return m, waitForEvent(m.events)
	case tea.KeyMsg:
		m.timer.Unlock(m.ctx)
		if m.editing {
			return m.updateEditing(typed)
		}
		return m.updateKeys(typed)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		m.err = m.timer.Toggle()
	case key.Matches(msg, m.keys.Reset):
		m.err = m.timer.Reset()
	case key.Matches(msg, m.keys.Mute):
		m.timer.ToggleMute()
	case key.Matches(msg, m.keys.Next):
		m.err = m.timer.SelectTemplateAt(m.step(1))
	case key.Matches(msg, m.keys.Prev):
		m.err = m.timer.SelectTemplateAt(m.step(-1))
	case key.Matches(msg, m.keys.Custom):
		m.editing = true
		m.input.SetValue("")
		return m, m.input.Focus()
	default:
		return m, nil
	}
	m.snapshot = m.timer.Snapshot()
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		focusMinutes, breakMinutes, err := model.ParseCustomPair(m.input.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		template, err := m.timer.SetCustomDurations(focusMinutes, breakMinutes)
		m.err = err
		m.editing = false
		m.input.Blur()
		if err == nil {
			m.note = fmt.Sprintf("Custom %d/%d selected", template.FocusMinutes, template.BreakMinutes)
		}
		m.snapshot = m.timer.Snapshot()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// step returns the catalog index offset from the active template. A custom
// template counts as sitting before the first entry.
func (m Model) step(offset int) int {
	if len(m.catalog) == 0 {
		return -1
	}
	index := -1
	if m.snapshot.ActiveTemplate != nil {
		index = m.catalog.IndexOf(m.snapshot.ActiveTemplate.ID)
	}
	if index < 0 {
		if offset > 0 {
			return 0
		}
		return len(m.catalog) - 1
	}
	return (index + offset + len(m.catalog)) % len(m.catalog)
}

// View renders the timer.
func (m Model) View() string {
	snapshot := m.snapshot
	title := titleStyle(snapshot.CycleState).Render(display.PhaseTitle(snapshot))
	status := ""
	if snapshot.RunStatus == cycle.StatusPaused {
		status = detailStyle.Render(" paused")
	}
	if snapshot.MusicMuted {
		status += detailStyle.Render(" · music muted")
	}

	lines := []string{
		title + status,
		clockStyle.Render(display.Clock(snapshot.Remaining())),
		m.progress.ViewAs(snapshot.Progress()),
		detailStyle.Render(templateLine(snapshot)),
		detailStyle.Render(display.Sessions(snapshot)),
	}
	if playing, visible := display.NowPlaying(snapshot, m.assets); visible {
		lines = append(lines, playingStyle.Render(playing.Line()))
		if playing.Track.URL != "" {
			lines = append(lines, detailStyle.Render(playing.Track.URL))
		}
	}
	if m.note != "" {
		lines = append(lines, noteStyle.Render(m.note))
	}
	if m.err != nil {
		lines = append(lines, errorStyle.Render(m.err.Error()))
	}
	if m.editing {
		lines = append(lines, m.input.View())
	}

	body := frameStyle.BorderForeground(phaseColor(snapshot.CycleState)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.JoinVertical(lipgloss.Left, body, m.help.View(m.keys))
}

// waitForEvent blocks until a controller event is available.
func waitForEvent(events <-chan cycle.Event) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		event, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return EventMsg{Event: event}
	}
}

func templateLine(snapshot cycle.Snapshot) string {
	if snapshot.ActiveTemplate == nil {
		return display.TemplateName(snapshot)
	}
	template := snapshot.ActiveTemplate
	return fmt.Sprintf("%s  %s focus / %s break", template.Name,
		display.Clock(time.Duration(template.FocusSeconds())*time.Second),
		display.Clock(time.Duration(template.BreakSeconds())*time.Second))
}

func completionNote(completed cycle.CycleState, snapshot cycle.Snapshot) string {
	if completed == cycle.CycleFocus {
		return fmt.Sprintf("Focus complete. %s.", display.Sessions(snapshot))
	}
	return "Break over. Back to focus."
}
