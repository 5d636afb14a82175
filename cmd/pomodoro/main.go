package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"

	"pomodoro/internal/core/cycle"
	"pomodoro/internal/platform"
	"pomodoro/internal/session"
	"pomodoro/internal/storage"
	"pomodoro/internal/ui/display"
	"pomodoro/internal/ui/preferences"
	"pomodoro/internal/ui/timerface"
	"pomodoro/internal/ui/tray"
)

const appName = "Pomodoro"

func main() {
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	flag.Parse()

	logger, err := platform.NewLogger(os.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			if activateErr := platform.ActivateRunning(appName); activateErr != nil {
				logger.Warn("could not reach running instance", "error", activateErr)
			}
		}
		logger.Info("single instance", "error", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	settings, err := storage.LoadOrCreateSettings(appName)
	if err != nil {
		logger.Warn("settings unavailable, using defaults", "error", err)
	}

	sess, err := session.New(session.Options{Settings: settings, Logger: logger})
	if err != nil {
		logger.Error("start session", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("close session", "error", err)
		}
	}()

	fyneApp := app.NewWithID("com.pomodoro.app")
	fyneApp.SetIcon(theme.MediaPlayIcon())

	ctx := context.Background()
	// Audio may only start from a user interaction, so every UI handler
	// unlocks first.
	interact := func() {
		sess.Unlock(ctx)
	}
	report := func(action string, err error) {
		if err != nil {
			logger.Debug("operation rejected", "action", action, "error", err)
		}
	}

	var prefsWindow *preferences.Window
	showCustom := func() {
		if snapshot := sess.Snapshot(); snapshot.ActiveTemplate != nil {
			prefsWindow.SetCustomDurations(*snapshot.ActiveTemplate)
		}
		prefsWindow.Show()
	}
	actions := struct {
		toggle func()
		reset  func()
		mute   func()
		choose func(int)
	}{
		toggle: func() { report("toggle", sess.Toggle()) },
		reset:  func() { report("reset", sess.Reset()) },
		mute:   func() { sess.ToggleMute() },
		choose: func(index int) { report("select", sess.SelectTemplateAt(index)) },
	}

	timerWindow := timerface.New(fyneApp, sess.Catalog, sess.Assets, timerface.Callbacks{
		OnInteract: interact,
		OnToggle:   actions.toggle,
		OnReset:    actions.reset,
		OnMute:     actions.mute,
		OnSelect:   actions.choose,
		OnCustom:   showCustom,
	})

	prefsWindow = preferences.New(fyneApp, settings, preferences.Callbacks{
		OnInteract: interact,
		OnCustom: func(focusMinutes, breakMinutes int) {
			template, err := sess.SetCustomDurations(focusMinutes, breakMinutes)
			report("custom", err)
			if err == nil {
				logger.Info("custom durations applied", "focus_minutes", template.FocusMinutes, "break_minutes", template.BreakMinutes)
			}
		},
		OnSave: func(updated preferences.Settings) {
			settings = updated
			sess.ApplySettings(settings)
			if err := storage.SaveSettings(appName, settings); err != nil {
				logger.Warn("save settings", "error", err)
			}
		},
	})

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, sess.Catalog, sess.Assets, tray.Callbacks{
			OnInteract: interact,
			OnShow:     timerWindow.Show,
			OnToggle:   actions.toggle,
			OnReset:    actions.reset,
			OnMute:     actions.mute,
			OnSelect:   actions.choose,
			OnCustom:   showCustom,
			OnQuit:     fyneApp.Quit,
		})
		desktopApp.SetSystemTrayIcon(theme.MediaPlayIcon())
		timerWindow.SetCloseIntercept(timerWindow.Hide)
	} else {
		logger.Info("system tray unsupported on this platform")
	}

	render := func(snapshot cycle.Snapshot) {
		timerWindow.Update(snapshot)
		if trayManager != nil {
			trayManager.Update(snapshot)
		}
	}
	render(sess.Snapshot())

	guard.OnActivate(func() {
		fyne.Do(timerWindow.Show)
	})

	events := sess.Controller.Subscribe(16)
	go func() {
		for event := range events {
			fyne.Do(func() {
				render(event.Snapshot)
			})
			if event.Type == cycle.EventPhaseComplete {
				fyneApp.SendNotification(completionNotification(event))
			}
		}
	}()

	timerWindow.Show()
	fyneApp.Run()
}

func completionNotification(event cycle.Event) *fyne.Notification {
	if event.Completed == cycle.CycleFocus {
		return fyne.NewNotification("Focus complete", fmt.Sprintf("Time for a break. %s.", display.Sessions(event.Snapshot)))
	}
	return fyne.NewNotification("Break over", "Back to focus.")
}
