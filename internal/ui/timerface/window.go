package timerface

import (
	"image/color"
	"net/url"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"pomodoro/internal/core/cycle"
	"pomodoro/internal/core/model"
	"pomodoro/internal/ui/display"
)

// Callbacks defines timer window action handlers. OnInteract runs before
// every other handler.
type Callbacks struct {
	OnInteract func()
	OnToggle   func()
	OnReset    func()
	OnMute     func()
	OnSelect   func(index int)
	OnCustom   func()
}

// Window manages the main timer UI.
type Window struct {
	window        fyne.Window
	callbacks     Callbacks
	catalog       model.Catalog
	assets        model.AssetSet
	phaseLabel    *canvas.Text
	timerLabel    *canvas.Text
	templateLabel *widget.Label
	sessionsLabel *widget.Label
	playingLabel  *widget.Label
	trackLink     *widget.Hyperlink
	progress      *widget.ProgressBar
	toggleButton  *widget.Button
	resetButton   *widget.Button
	muteButton    *widget.Button
	picker        *widget.Select
	background    *canvas.Rectangle
	// syncing suppresses OnSelect while the picker follows the controller.
	syncing bool
}

var (
	focusColor = color.NRGBA{R: 214, G: 69, B: 65, A: 255}
	breakColor = color.NRGBA{R: 67, G: 160, B: 71, A: 255}
	idleColor  = color.NRGBA{R: 120, G: 120, B: 120, A: 255}
)

// New creates the timer window for catalog. assets credits the music shown
// while a phase runs.
func New(app fyne.App, catalog model.Catalog, assets model.AssetSet, callbacks Callbacks) *Window {
	window := app.NewWindow("Pomodoro")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	phaseLabel := canvas.NewText("Ready", idleColor)
	phaseLabel.Alignment = fyne.TextAlignCenter
	phaseLabel.TextStyle = fyne.TextStyle{Bold: true}
	phaseLabel.TextSize = 21

	timerLabel := canvas.NewText("--:--", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 56

	background := canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: 200})

	face := &Window{
		window:        window,
		callbacks:     callbacks,
		catalog:       catalog,
		assets:        assets,
		phaseLabel:    phaseLabel,
		timerLabel:    timerLabel,
		templateLabel: widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		sessionsLabel: widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{}),
		playingLabel:  widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{}),
		trackLink:     widget.NewHyperlink("", nil),
		progress:      widget.NewProgressBar(),
		background:    background,
	}
	face.progress.TextFormatter = func() string { return "" }
	face.trackLink.Alignment = fyne.TextAlignCenter
	face.playingLabel.Hide()
	face.trackLink.Hide()

	face.toggleButton = widget.NewButton("Start", face.interact(callbacks.OnToggle))
	face.toggleButton.Importance = widget.HighImportance
	face.resetButton = widget.NewButton("Reset", face.interact(callbacks.OnReset))
	face.muteButton = widget.NewButton("Mute music", face.interact(callbacks.OnMute))
	customButton := widget.NewButton("Custom...", face.interact(callbacks.OnCustom))

	face.picker = widget.NewSelect(catalog.Names(), func(name string) {
		if face.syncing {
			return
		}
		index := indexOfName(face.catalog, name)
		if index < 0 || callbacks.OnSelect == nil {
			return
		}
		if callbacks.OnInteract != nil {
			callbacks.OnInteract()
		}
		callbacks.OnSelect(index)
	})
	face.picker.PlaceHolder = "Choose a template"

	header := container.NewVBox(phaseLabel, timerLabel, face.progress)
	details := container.NewVBox(face.templateLabel, face.sessionsLabel, face.playingLabel, face.trackLink)
	controls := container.NewHBox(layout.NewSpacer(), face.toggleButton, face.resetButton, face.muteButton, layout.NewSpacer())
	picker := container.NewBorder(nil, nil, nil, customButton, face.picker)
	content := container.NewVBox(header, details, controls, picker)
	window.SetContent(container.NewStack(background, container.NewPadded(content)))
	window.Resize(fyne.NewSize(380, 380))

	return face
}

// Show displays the window.
func (face *Window) Show() {
	face.window.Show()
	face.window.RequestFocus()
}

// Hide hides the window without closing the app.
func (face *Window) Hide() {
	face.window.Hide()
}

// SetCloseIntercept replaces the close button behaviour.
func (face *Window) SetCloseIntercept(handler func()) {
	face.window.SetCloseIntercept(handler)
}

// Update renders snapshot. It must run on the fyne goroutine.
func (face *Window) Update(snapshot cycle.Snapshot) {
	face.phaseLabel.Text = display.PhaseTitle(snapshot)
	face.phaseLabel.Color = phaseColor(snapshot.CycleState)
	face.phaseLabel.Refresh()

	face.timerLabel.Text = display.Clock(snapshot.Remaining())
	face.timerLabel.Refresh()
	face.progress.SetValue(snapshot.Progress())

	face.templateLabel.SetText(templateLine(snapshot))
	face.sessionsLabel.SetText(display.Sessions(snapshot))
	face.updateNowPlaying(snapshot)
	face.toggleButton.SetText(display.ToggleLabel(snapshot))
	face.muteButton.SetText(display.MuteLabel(snapshot))
	if snapshot.CycleState == cycle.CycleIdle {
		face.resetButton.Disable()
	} else {
		face.resetButton.Enable()
	}
	if snapshot.ActiveTemplate == nil {
		face.toggleButton.Disable()
	} else {
		face.toggleButton.Enable()
	}

	face.syncing = true
	if snapshot.ActiveTemplate != nil && !snapshot.ActiveTemplate.IsCustom() {
		face.picker.SetSelected(snapshot.ActiveTemplate.Name)
	} else {
		face.picker.ClearSelected()
	}
	face.syncing = false

	face.window.SetTitle("Pomodoro - " + display.Status(snapshot))
}

func (face *Window) updateNowPlaying(snapshot cycle.Snapshot) {
	playing, visible := display.NowPlaying(snapshot, face.assets)
	if !visible {
		face.playingLabel.Hide()
		face.trackLink.Hide()
		return
	}
	face.playingLabel.SetText(playing.Line())
	face.playingLabel.Show()

	link, err := url.Parse(playing.Track.URL)
	if playing.Track.URL == "" || err != nil {
		face.trackLink.Hide()
		return
	}
	face.trackLink.SetText("Listen to the source")
	face.trackLink.SetURL(link)
	face.trackLink.Show()
}

func (face *Window) interact(handler func()) func() {
	return func() {
		if face.callbacks.OnInteract != nil {
			face.callbacks.OnInteract()
		}
		if handler != nil {
			handler()
		}
	}
}

func templateLine(snapshot cycle.Snapshot) string {
	if snapshot.ActiveTemplate == nil {
		return display.TemplateName(snapshot)
	}
	template := snapshot.ActiveTemplate
	return template.Name + " · " + display.Clock(secondsToDuration(template.FocusSeconds())) + " / " + display.Clock(secondsToDuration(template.BreakSeconds()))
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func phaseColor(state cycle.CycleState) color.Color {
	switch state {
	case cycle.CycleFocus:
		return focusColor
	case cycle.CycleBreak:
		return breakColor
	default:
		return idleColor
	}
}

func indexOfName(catalog model.Catalog, name string) int {
	for index, template := range catalog {
		if template.Name == name {
			return index
		}
	}
	return -1
}
