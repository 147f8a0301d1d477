package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tower-race/internal/levels"
	"github.com/vovakirdan/tower-race/internal/multiplayer"
	"github.com/vovakirdan/tower-race/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a level and mode interactively",
	Long: `Show the level picker.

Use the arrow keys to choose a level, M to switch between a local race and
a race against the CPU, and Tab to browse recorded results.
Press Enter to race, Esc to quit.`,
	Run: runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagBotScript, "bot-script", "", "tengo script for the CPU racer")
	menuCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file (the terminal is busy)")
}

func runMenu(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}

	logger, closeLog := playLogger()
	defer closeLog()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	for {
		catalog, err := levels.Catalog(flagLevelsDir)
		if err != nil {
			fatalf("listing levels: %v", err)
		}
		items := menuItems(catalog)

		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}

		choice, err := tui.RunMenu(items, width, height)
		if err != nil {
			fatalf("running menu: %v", err)
		}
		if choice.Quit {
			return
		}

		if choice.WantsResults {
			if store == nil {
				fmt.Fprintln(os.Stderr, "Results are unavailable: the database could not be opened.")
				return
			}
			back, err := tui.RunResults(store, items, width, height)
			if err != nil {
				fatalf("showing results: %v", err)
			}
			if !back {
				return
			}
			continue
		}

		lvl, err := levels.Resolve(choice.LevelID, flagLevelsDir)
		if err != nil {
			fatalf("%v", err)
		}

		opts := raceOptions(cfg, lvl.Level, store, logger)
		if choice.Mode == multiplayer.MatchModeVsBot {
			factory, err := botFactory(flagBotScript)
			if err != nil {
				fatalf("%v", err)
			}
			opts.Bot = factory
		}

		if err := tui.Run(opts); err != nil {
			fatalf("running race: %v", err)
		}
	}
}

func menuItems(catalog []levels.Level) []tui.MenuItem {
	items := make([]tui.MenuItem, 0, len(catalog))
	for _, lvl := range catalog {
		items = append(items, tui.MenuItem{
			LevelID: lvl.ID,
			Name:    lvl.Name,
			Source:  lvl.Source(),
		})
	}
	return items
}
