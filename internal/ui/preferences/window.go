package preferences

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"pomodoro/internal/core/model"
)

// Callbacks defines preferences window handlers. OnInteract runs before every
// other handler.
type Callbacks struct {
	OnInteract func()
	OnCustom   func(focusMinutes, breakMinutes int)
	OnSave     func(Settings)
}

// Window handles the custom durations and preferences UI.
type Window struct {
	window      fyne.Window
	settings    Settings
	callbacks   Callbacks
	focusEntry  *widget.Entry
	breakEntry  *widget.Entry
	errorLabel  *widget.Label
	startMuted  *widget.Check
	musicVolume *widget.Slider
	cueVolume   *widget.Slider
	defaultPick *widget.Select
	launchNote  *widget.Label
}

// LaunchNote tells the user which saved preferences wait for a restart.
const LaunchNote = "Volumes apply on save. Default template and start muted apply on next launch."

// New creates a preferences window.
func New(app fyne.App, settings Settings, callbacks Callbacks) *Window {
	window := app.NewWindow("Pomodoro Settings")

	focusEntry := widget.NewEntry()
	breakEntry := widget.NewEntry()
	focusEntry.SetPlaceHolder(fmt.Sprintf("%d-%d", model.MinFocusMinutes, model.MaxFocusMinutes))
	breakEntry.SetPlaceHolder(fmt.Sprintf("%d-%d", model.MinBreakMinutes, model.MaxBreakMinutes))

	errorLabel := widget.NewLabel("")
	errorLabel.Importance = widget.DangerImportance

	startMuted := widget.NewCheck("Start with music muted", nil)

	musicVolume := widget.NewSlider(0, 1)
	musicVolume.Step = 0.05
	cueVolume := widget.NewSlider(0, 1)
	cueVolume.Step = 0.05

	defaultPick := widget.NewSelect(settings.Catalog().Names(), nil)

	prefs := &Window{
		window:      window,
		callbacks:   callbacks,
		focusEntry:  focusEntry,
		breakEntry:  breakEntry,
		errorLabel:  errorLabel,
		startMuted:  startMuted,
		musicVolume: musicVolume,
		cueVolume:   cueVolume,
		defaultPick: defaultPick,
		launchNote:  widget.NewLabelWithStyle(LaunchNote, fyne.TextAlignLeading, fyne.TextStyle{Italic: true}),
	}
	prefs.launchNote.Wrapping = fyne.TextWrapWord
	prefs.UpdateSettings(settings)

	applyButton := widget.NewButton("Apply", prefs.interact(prefs.handleCustom))
	applyButton.Importance = widget.HighImportance

	custom := container.NewVBox(
		widget.NewLabelWithStyle("Custom session", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Focus"), focusEntry, widget.NewLabel("min")),
		container.NewHBox(widget.NewLabel("Break"), breakEntry, widget.NewLabel("min")),
		container.NewHBox(applyButton, errorLabel),
	)

	general := container.NewVBox(
		widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Default template"), defaultPick),
		startMuted,
		widget.NewLabel("Music volume"),
		musicVolume,
		widget.NewLabel("Cue volume"),
		cueVolume,
		prefs.launchNote,
	)

	saveButton := widget.NewButton("Save", prefs.interact(prefs.handleSave))
	cancelButton := widget.NewButton("Close", prefs.interact(window.Hide))
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, container.NewVBox(custom, widget.NewSeparator(), general))
	window.SetContent(content)
	window.Resize(fyne.NewSize(420, 460))
	window.SetCloseIntercept(window.Hide)

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.startMuted.SetChecked(settings.StartMuted)
	prefs.musicVolume.SetValue(settings.MusicVolume)
	prefs.cueVolume.SetValue(settings.CueVolume)
	prefs.defaultPick.SetSelected(settings.DefaultTemplate().Name)
}

// SetCustomDurations prefills the custom session fields.
func (prefs *Window) SetCustomDurations(template model.Template) {
	prefs.focusEntry.SetText(strconv.Itoa(template.FocusMinutes))
	prefs.breakEntry.SetText(strconv.Itoa(template.BreakMinutes))
	prefs.errorLabel.SetText("")
}

func (prefs *Window) handleCustom() {
	focusMinutes, breakMinutes, err := model.ParseCustomDurations(prefs.focusEntry.Text, prefs.breakEntry.Text)
	if err != nil {
		prefs.errorLabel.SetText(err.Error())
		return
	}
	prefs.errorLabel.SetText("")
	if prefs.callbacks.OnCustom != nil {
		prefs.callbacks.OnCustom(focusMinutes, breakMinutes)
	}
}

func (prefs *Window) handleSave() {
	settings := prefs.settings
	settings.StartMuted = prefs.startMuted.Checked
	settings.MusicVolume = prefs.musicVolume.Value
	settings.CueVolume = prefs.cueVolume.Value
	if index := prefs.defaultPick.SelectedIndex(); index >= 0 {
		settings.DefaultTemplateID = settings.Catalog()[index].ID
	}

	prefs.settings = settings
	if prefs.callbacks.OnSave != nil {
		prefs.callbacks.OnSave(settings)
	}
	prefs.window.Hide()
}

func (prefs *Window) interact(handler func()) func() {
	return func() {
		if prefs.callbacks.OnInteract != nil {
			prefs.callbacks.OnInteract()
		}
		handler()
	}
}
