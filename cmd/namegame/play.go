package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/namegame/internal/config"
	"github.com/vovakirdan/namegame/internal/game"
	"github.com/vovakirdan/namegame/internal/platform/tui"
)

var flagMode string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in your terminal",
	Long: `Start the name game in the current terminal.

Controls:
  1-6 / Arrows+Enter  - Pick a face
  Tab                 - Browse all profiles (menu)
  Esc                 - Back to the menu
  Q/Ctrl+C            - Quit

Logs go to the file configured under log.file (default: ~/.namegame/namegame.log)
so they do not tear the screen.

Examples:
  namegame play
  namegame play --mode practice
  namegame play --mode timed --seed 42
  namegame play --profiles-file ./profiles.json`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMode, "mode", "", "Start straight into a mode: practice, timed")
}

func runPlay(cmd *cobra.Command, _ []string) {
	var startMode *game.Mode
	if flagMode != "" {
		mode, ok := game.ParseMode(flagMode)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown mode %q (expected practice or timed)\n", flagMode)
			os.Exit(1)
		}
		startMode = &mode
	}

	// Exit only after play's deferred cleanup has run
	if err := play(cmd.Context(), startMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func play(ctx context.Context, startMode *game.Mode) error {
	fileLogger, closeLog, err := openLogFile(appConfig.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	source, closeSource := openSource(appConfig, fileLogger)
	defer closeSource()

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	engine := game.NewEngine(game.Options{
		Seed:   flagSeed,
		Logger: fileLogger.WithPrefix("engine"),
	})
	defer engine.Close()

	return tui.Run(tui.Options{
		Context:   ctx,
		Source:    source,
		Engine:    engine,
		Username:  os.Getenv("USER"),
		Width:     width,
		Height:    height,
		StartMode: startMode,
	})
}

// openLogFile points a logger at path so the TUI owns the terminal.
// An empty path discards logs.
func openLogFile(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard), func() {}, nil
	}

	path = config.ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}

	l := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "namegame",
		Level:           appConfig.LogLevel(),
	})
	return l, func() { _ = f.Close() }, nil
}
