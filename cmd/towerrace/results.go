package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tower-race/internal/storage"
)

var (
	flagResultsAll     bool
	flagResultsOnline  bool
	flagResultsFastest bool
	flagResultsClear   bool
	flagResultsLimit   int
)

var resultsCmd = &cobra.Command{
	Use:   "results [level]",
	Short: "Show recorded race results",
	Long: `Display recent rounds and win counts for a level (default --level).

Examples:
  towerrace results
  towerrace results ladder --fastest
  towerrace results --all
  towerrace results --online
  towerrace results ladder --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runResults,
}

func init() {
	resultsCmd.Flags().BoolVar(&flagResultsAll, "all", false, "Show rounds from every level")
	resultsCmd.Flags().BoolVar(&flagResultsOnline, "online", false, "Show online match summaries")
	resultsCmd.Flags().BoolVar(&flagResultsFastest, "fastest", false, "Order rounds by fewest ticks")
	resultsCmd.Flags().BoolVar(&flagResultsClear, "clear", false, "Delete the level's recorded rounds")
	resultsCmd.Flags().IntVar(&flagResultsLimit, "limit", 10, "Number of rows to show")
}

func runResults(_ *cobra.Command, args []string) {
	levelID := flagLevel
	if len(args) == 1 {
		levelID = args[0]
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case flagResultsClear:
		if err := store.ClearResults(levelID); err != nil {
			fatalf("clearing results: %v", err)
		}
		fmt.Printf("Cleared results for %s.\n", levelID)
	case flagResultsOnline:
		printOnlineMatches(store)
	case flagResultsAll:
		rounds, err := store.RecentResults(flagResultsLimit)
		if err != nil {
			fatalf("retrieving results: %v", err)
		}
		fmt.Println("Recent rounds - all levels")
		fmt.Println()
		printRounds(rounds, true)
		printWinCounts(store, "")
	default:
		printLevelResults(store, levelID)
	}
}

func printLevelResults(store *storage.Store, levelID string) {
	var (
		rounds []storage.RaceResult
		err    error
	)
	if flagResultsFastest {
		rounds, err = store.FastestWins(levelID, flagResultsLimit)
	} else {
		rounds, err = store.ResultsByLevel(levelID, flagResultsLimit)
	}
	if err != nil {
		fatalf("retrieving results: %v", err)
	}

	fmt.Printf("Results - %s\n", levelID)
	fmt.Println()

	if len(rounds) == 0 {
		fmt.Println("No rounds recorded yet.")
		fmt.Println()
		fmt.Printf("Race with 'towerrace play %s' to record the first win!\n", levelID)
		return
	}

	printRounds(rounds, false)
	printWinCounts(store, levelID)

	stats, err := store.GetLevelStats(levelID)
	if err != nil {
		fatalf("retrieving stats: %v", err)
	}
	fmt.Println()
	fmt.Printf("Rounds: %d  Fastest: %d ticks  Average: %.0f ticks\n",
		stats.Rounds, stats.FastestTicks, stats.AvgTicks)
}

func printRounds(rounds []storage.RaceResult, withLevel bool) {
	if withLevel {
		fmt.Printf("  %-4s  %-12s  %-12s  %-6s  %-6s  %s\n", "#", "Level", "Winner", "Ticks", "Mode", "Date")
		fmt.Printf("  %-4s  %-12s  %-12s  %-6s  %-6s  %s\n", "-", "-----", "------", "-----", "----", "----")
	} else {
		fmt.Printf("  %-4s  %-12s  %-6s  %-6s  %s\n", "#", "Winner", "Ticks", "Mode", "Date")
		fmt.Printf("  %-4s  %-12s  %-6s  %-6s  %s\n", "-", "------", "-----", "----", "----")
	}

	for i, r := range rounds {
		date := r.CreatedAt.Format("2006-01-02 15:04")
		if withLevel {
			fmt.Printf("  %-4d  %-12s  %-12s  %-6d  %-6s  %s\n", i+1, r.LevelID, r.WinnerName, r.Ticks, r.Mode, date)
		} else {
			fmt.Printf("  %-4d  %-12s  %-6d  %-6s  %s\n", i+1, r.WinnerName, r.Ticks, r.Mode, date)
		}
	}
}

func printWinCounts(store *storage.Store, levelID string) {
	counts, err := store.WinCounts(levelID)
	if err != nil {
		fatalf("retrieving win counts: %v", err)
	}
	if len(counts) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("Wins:")
	for _, c := range counts {
		fmt.Printf("  %-12s  %d\n", c.Name, c.Wins)
	}
}

func printOnlineMatches(store *storage.Store) {
	matches, err := store.RecentOnlineMatches(flagResultsLimit)
	if err != nil {
		fatalf("retrieving online matches: %v", err)
	}

	fmt.Println("Recent online matches")
	fmt.Println()

	if len(matches) == 0 {
		fmt.Println("No online matches recorded yet.")
		return
	}

	for _, m := range matches {
		fmt.Printf("  %s  %-10s  %s %d - %d %s  (%s, %ds)\n",
			m.CreatedAt.Format("2006-01-02 15:04"),
			m.LevelID,
			m.Player1Name, m.Wins1, m.Wins2, m.Player2Name,
			m.EndReason, m.Duration,
		)
	}
}
