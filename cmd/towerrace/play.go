package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tower-race/internal/bot"
	"github.com/vovakirdan/tower-race/internal/config"
	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/levels"
	"github.com/vovakirdan/tower-race/internal/platform/tui"
	"github.com/vovakirdan/tower-race/internal/race"
	"github.com/vovakirdan/tower-race/internal/storage"
)

var (
	flagBot       bool
	flagBotScript string
	flagWatch     bool
	flagLogFile   string
)

var playCmd = &cobra.Command{
	Use:   "play [level]",
	Short: "Race on one keyboard",
	Long: `Start a race on the given level (or --level).

Controls:
  W/A/D       - Player 1 jump/left/right
  Arrow keys  - Player 2 jump/left/right
  P           - Pause
  R           - Restart the round
  ?           - Show all controls
  Q/Esc       - Quit

Terminals only report key presses, so a key counts as held for a few
ticks after each press (controls.hold_ticks in the config). Hold keys
down to use auto-repeat.

With --bot, Player 2 is driven by a tengo script: the built-in climber,
or the file given with --bot-script.

With --watch, edits to files under --levels-dir reload the level.

Examples:
  towerrace play
  towerrace play ladder
  towerrace play --bot --preset floaty
  towerrace play my-level --levels-dir ./levels --watch`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&flagBot, "bot", false, "Let the CPU drive Player 2")
	playCmd.Flags().StringVar(&flagBotScript, "bot-script", "", "tengo script for the CPU racer (implies --bot)")
	playCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload the level when level files change")
	playCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file (the terminal is busy)")
}

func runPlay(_ *cobra.Command, args []string) {
	levelID := flagLevel
	if len(args) == 1 {
		levelID = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}

	lvl, err := levels.Resolve(levelID, flagLevelsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'towerrace levels' to see available levels.")
		os.Exit(1)
	}

	logger, closeLog := playLogger()
	defer closeLog()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	opts := raceOptions(cfg, lvl.Level, store, logger)
	if flagBot || flagBotScript != "" {
		factory, err := botFactory(flagBotScript)
		if err != nil {
			fatalf("%v", err)
		}
		opts.Bot = factory
	}

	if flagWatch {
		watcher, err := levels.NewWatcher(flagLevelsDir)
		if err != nil {
			fatalf("cannot watch %s: %v", flagLevelsDir, err)
		}
		defer watcher.Close()
		go logWatchErrors(logger, watcher.Errors)

		opts.Changes = watcher.Events
		opts.Reload = func() (race.Level, error) {
			l, err := levels.Resolve(levelID, flagLevelsDir)
			return l.Level, err
		}
	}

	if err := tui.Run(opts); err != nil {
		fatalf("running race: %v", err)
	}
}

// raceOptions builds the common TUI options for a level.
func raceOptions(cfg config.RaceConfig, lvl race.Level, store *storage.Store, logger *log.Logger) tui.Options {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}

	opts := tui.Options{
		Config:   cfg,
		Level:    lvl,
		TickRate: flagFPS,
		Width:    width,
		Height:   height,
		Logger:   logger,
	}
	// A nil *storage.Store must not become a non-nil interface.
	if store != nil {
		opts.Store = store
	}
	return opts
}

// botFactory returns a factory for the CPU racer in Player 2's seat.
func botFactory(scriptPath string) (tui.BotFactory, error) {
	src := []byte(bot.DefaultScript)
	if scriptPath != "" {
		var err error
		src, err = bot.LoadScript(scriptPath)
		if err != nil {
			return nil, err
		}
	}
	return func(l race.Level) (*bot.Bot, error) {
		return bot.New(src, core.Player2, l)
	}, nil
}

// playLogger logs to --log-file, or nowhere while the TUI owns the terminal.
func playLogger() (*log.Logger, func()) {
	if flagLogFile == "" {
		return log.New(io.Discard), func() {}
	}
	f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fatalf("cannot open log file: %v", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "towerrace",
	})
	if level, err := log.ParseLevel(flagLogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger, func() { f.Close() }
}

// openStore opens the results database. Racing works without it.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open results database", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

func logWatchErrors(logger *log.Logger, errs <-chan error) {
	for err := range errs {
		logger.Warn("level watcher", "error", err)
	}
}
