package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tower-race/internal/levels"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List all available levels",
	Long: `Shows the built-in levels and the valid level files under --levels-dir.
A file whose ID matches a built-in level replaces it when racing.`,
	Run: runLevels,
}

func runLevels(_ *cobra.Command, _ []string) {
	catalog, err := levels.Catalog(flagLevelsDir)
	if err != nil {
		fatalf("listing levels: %v", err)
	}

	if len(catalog) == 0 {
		fmt.Println("No levels available.")
		return
	}

	fmt.Println("Available levels:")
	fmt.Println()

	maxIDLen, maxNameLen := 2, 4 // "ID", "Name"
	for _, l := range catalog {
		maxIDLen = max(maxIDLen, len(l.ID))
		maxNameLen = max(maxNameLen, len(l.Name))
	}

	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "ID", maxNameLen, "Name", "Source")
	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "--", maxNameLen, "----", "------")

	for _, l := range catalog {
		fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, l.ID, maxNameLen, l.Name, l.Source())
	}

	fmt.Println()
	fmt.Println("Run 'towerrace play <id>' to race on a level.")
}
