package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tower-race/internal/levels"
)

var flagValidateWatch bool

var validateCmd = &cobra.Command{
	Use:   "validate [path...]",
	Short: "Check level files",
	Long: `Load and validate level files. Each path is a level file or a
directory searched recursively; with no paths, --levels-dir is checked.

Exits with status 1 if any file is invalid. With --watch, files are
checked again whenever they change, until Ctrl+C.

Examples:
  towerrace validate
  towerrace validate levels/ladder.yaml
  towerrace validate ./levels --watch`,
	Run: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&flagValidateWatch, "watch", false, "Re-validate when files change")
}

func runValidate(_ *cobra.Command, args []string) {
	paths := args
	if len(paths) == 0 {
		paths = []string{flagLevelsDir}
	}

	failed := validatePaths(paths)
	if !flagValidateWatch {
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	dirs := watchDirs(paths)
	watcher, err := levels.NewWatcher(dirs...)
	if err != nil {
		fatalf("cannot watch: %v", err)
	}
	defer watcher.Close()

	logger := newLogger("validate")
	logger.Info("watching for changes", "dirs", dirs)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sig:
			return
		case path, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !levels.IsLevelFile(path) {
				continue
			}
			fmt.Println()
			validateFile(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher", "error", err)
		}
	}
}

// validatePaths checks every path and returns the number of invalid files.
func validatePaths(paths []string) int {
	failed, total := 0, 0
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Printf("FAIL  %s: %v\n", path, err)
			failed++
			continue
		}

		if !info.IsDir() {
			total++
			if !validateFile(path) {
				failed++
			}
			continue
		}

		reports, err := levels.NewLoader(path).Check()
		if err != nil {
			fmt.Printf("FAIL  %s: %v\n", path, err)
			failed++
			continue
		}
		for _, r := range reports {
			total++
			printReport(r)
			if r.Err != nil {
				failed++
			}
		}
	}

	fmt.Printf("\n%d file(s) checked, %d invalid\n", total, failed)
	return failed
}

func validateFile(path string) bool {
	lvl, err := levels.NewLoader(filepath.Dir(path)).LoadFile(path)
	r := levels.FileReport{Path: path, ID: lvl.ID, Err: err}
	printReport(r)
	return err == nil
}

func printReport(r levels.FileReport) {
	if r.Err != nil {
		fmt.Printf("FAIL  %s: %v\n", r.Path, r.Err)
		return
	}
	fmt.Printf("ok    %s (%s)\n", r.Path, r.ID)
}

// watchDirs returns the directories to watch for the given paths.
func watchDirs(paths []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, path := range paths {
		dir := path
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			dir = filepath.Dir(path)
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
