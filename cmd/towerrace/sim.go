package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tower-race/internal/bot"
	"github.com/vovakirdan/tower-race/internal/core"
	"github.com/vovakirdan/tower-race/internal/levels"
	"github.com/vovakirdan/tower-race/internal/multiplayer"
	"github.com/vovakirdan/tower-race/internal/race"
	"github.com/vovakirdan/tower-race/internal/storage"
)

var (
	flagSimRounds   int
	flagSimMaxTicks int
	flagSimRealtime bool
	flagSimP1Script string
	flagSimP2Script string
	flagSimSave     bool
)

var simCmd = &cobra.Command{
	Use:   "sim [level]",
	Short: "Race two CPU racers without a terminal",
	Long: `Run a headless race between two scripted racers and log each win.

By default frames run back to back as fast as possible; --realtime paces
them at --fps. A round that takes longer than --max-ticks ends the run.

Examples:
  towerrace sim
  towerrace sim ladder --rounds 10
  towerrace sim --p1-script ./bots/greedy.tengo --save`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSim,
}

func init() {
	simCmd.Flags().IntVar(&flagSimRounds, "rounds", 5, "Rounds to race")
	simCmd.Flags().IntVar(&flagSimMaxTicks, "max-ticks", 3600, "Give up when a round lasts this many ticks")
	simCmd.Flags().BoolVar(&flagSimRealtime, "realtime", false, "Pace frames at --fps instead of running flat out")
	simCmd.Flags().StringVar(&flagSimP1Script, "p1-script", "", "tengo script for Player 1 (built-in climber if empty)")
	simCmd.Flags().StringVar(&flagSimP2Script, "p2-script", "", "tengo script for Player 2 (built-in climber if empty)")
	simCmd.Flags().BoolVar(&flagSimSave, "save", false, "Record the rounds in the results database")
}

func runSim(_ *cobra.Command, args []string) {
	levelID := flagLevel
	if len(args) == 1 {
		levelID = args[0]
	}
	if flagSimRounds <= 0 {
		fatalf("--rounds must be positive")
	}

	logger := newLogger("sim")

	cfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}

	resolved, err := levels.Resolve(levelID, flagLevelsDir)
	if err != nil {
		fatalf("%v", err)
	}
	lvl := cfg.ApplyLevel(resolved.Level)

	opts := cfg.MatchOptions()
	opts.Names = [2]string{"CPU 1", "CPU 2"}
	opts.Announcer = race.AnnouncerFunc(func(evt race.WinEvent) {
		logger.Info(evt.Message(), "tick", evt.Tick)
	})
	match, err := race.New(lvl, opts)
	if err != nil {
		fatalf("level %s: %v", lvl.ID, err)
	}

	var bots [2]*bot.Bot
	for i, path := range []string{flagSimP1Script, flagSimP2Script} {
		src := []byte(bot.DefaultScript)
		if path != "" {
			if src, err = bot.LoadScript(path); err != nil {
				fatalf("%v", err)
			}
		}
		if bots[i], err = bot.New(src, core.Players[i], lvl); err != nil {
			fatalf("%v", err)
		}
	}

	var store *storage.Store
	if flagSimSave {
		store, err = storage.Open(flagDBPath)
		if err != nil {
			fatalf("opening results database: %v", err)
		}
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sched race.Scheduler = race.StepScheduler{MaxFrames: flagSimRounds * flagSimMaxTicks}
	if flagSimRealtime {
		sched = race.TickerScheduler{Rate: flagFPS}
	}

	matchID := fmt.Sprintf("sim-%d", time.Now().UnixNano())
	var (
		rounds     int
		roundStart uint64
		scriptErr  error
		timedOut   bool
	)

	frame := func() bool {
		snap := match.Snapshot()
		in := core.NewInputState()
		for _, b := range bots {
			if err := b.Step(snap, in); err != nil {
				scriptErr = err
				return false
			}
		}

		res := match.Tick(in)
		if res.Winner == core.PlayerNone {
			if res.Tick-roundStart >= uint64(flagSimMaxTicks) {
				timedOut = true
				return false
			}
			return true
		}

		ticks := res.Tick - roundStart
		roundStart = res.Tick
		rounds++

		if store != nil {
			r := match.Racer(res.Winner)
			_, err := store.SaveResult(storage.RaceResult{
				MatchID:    matchID,
				LevelID:    lvl.ID,
				Mode:       multiplayer.MatchModeHeadless.Key(),
				Winner:     res.Winner,
				WinnerName: r.Name,
				Ticks:      ticks,
			})
			if err != nil {
				logger.Error("could not save result", "error", err)
			}
		}
		return rounds < flagSimRounds
	}

	start := time.Now()
	if err := sched.Run(ctx, frame); err != nil && ctx.Err() == nil {
		fatalf("simulation: %v", err)
	}
	if scriptErr != nil {
		fatalf("bot script: %v", scriptErr)
	}
	if timedOut {
		logger.Warn("round timed out", "max_ticks", flagSimMaxTicks)
	}

	racers := match.Racers()
	logger.Info("simulation finished",
		"level", lvl.ID,
		"rounds", rounds,
		"ticks", match.TickCount(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	fmt.Printf("%s %d - %d %s\n", racers[0].Name, racers[0].Wins, racers[1].Wins, racers[1].Name)
}
