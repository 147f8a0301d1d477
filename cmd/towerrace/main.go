// towerrace is a two-player platform race to the top of the towers, played
// in the terminal, over SSH, or headless between scripted racers.
//
// Usage:
//
//	towerrace play [level]     - Race on one keyboard (or against the CPU)
//	towerrace menu             - Pick levels interactively
//	towerrace levels           - List built-in and file levels
//	towerrace validate [files] - Check level files
//	towerrace sim              - Run a headless race between bots
//	towerrace serve            - Start the SSH server for online races
//	towerrace results          - Show recorded rounds
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--config <path>       - Race config YAML
//	--preset <name>       - Tuning preset: classic, floaty, slick
//	--level <id>          - Level to race on (default: towers)
//	--levels-dir <path>   - Directory with level files (default: ./levels)
//	--db <path>           - Results database (default: ~/.towerrace/results.db)
//	--log-level <level>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tower-race/internal/config"
)

var (
	// Global flags
	flagFPS       int
	flagConfig    string
	flagPreset    string
	flagLevel     string
	flagLevelsDir string
	flagDBPath    string
	flagLogLevel  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "towerrace",
	Short: "Tower Race - a two-player platform race in your terminal",
	Long: `Tower Race is a two-player platformer: both racers start at the bottom
of a tower level and the first to touch the goal at the top wins the round.

Available commands:
  play      - Race on one keyboard, or against the CPU
  menu      - Interactive level picker
  levels    - Show all available levels
  validate  - Check level files
  sim       - Headless race between scripted racers
  serve     - Start SSH server for online races
  results   - View recorded rounds

Examples:
  towerrace play
  towerrace play ladder --bot
  towerrace validate levels/ --watch
  towerrace sim --rounds 5
  towerrace serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to race config YAML")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Tuning preset: classic, floaty, slick")
	rootCmd.PersistentFlags().StringVar(&flagLevel, "level", "towers", "Level ID")
	rootCmd.PersistentFlags().StringVar(&flagLevelsDir, "levels-dir", "levels", "Directory with level files")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.towerrace/results.db", "Path to results database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resultsCmd)
}

// newLogger creates the structured logger used by commands.
func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// loadConfig loads the race config and applies the --preset flag.
func loadConfig() (config.RaceConfig, error) {
	cfg, err := config.LoadRace(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagPreset != "" {
		preset, err := config.ParsePreset(flagPreset)
		if err != nil {
			return cfg, err
		}
		config.ApplyPreset(&cfg, preset)
	}
	return cfg, nil
}

// fatalf prints an error and exits.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
