package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"pomodoro/internal/platform"
	"pomodoro/internal/session"
	"pomodoro/internal/storage"
	"pomodoro/internal/ui/terminal"
)

const appName = "Pomodoro"

func main() {
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	logFile := flag.String("log-file", defaultLogPath(), "log destination; empty discards logs")
	flag.Parse()

	var logOutput io.Writer = io.Discard
	if *logFile != "" {
		if err := os.MkdirAll(filepath.Dir(*logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating log directory: %v\n", err)
			os.Exit(1)
		}
		file, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		logOutput = file
	}

	logger, err := platform.NewLogger(logOutput, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		logger.Warn("settings unavailable, using defaults", "error", err)
	}

	sess, err := session.New(session.Options{Settings: settings, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting session: %v\n", err)
		os.Exit(1)
	}

	model := terminal.New(context.Background(), sess, sess.Catalog, sess.Assets, sess.Controller.Subscribe(64))
	program := tea.NewProgram(model, tea.WithAltScreen())

	_, runErr := program.Run()
	if err := sess.Close(); err != nil {
		logger.Warn("close session", "error", err)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", runErr)
		os.Exit(1)
	}
}

func defaultLogPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(cacheDir, appName, "pomodoro-tui.log")
}
