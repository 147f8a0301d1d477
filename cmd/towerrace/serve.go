package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tower-race/internal/config"
	"github.com/vovakirdan/tower-race/internal/levels"
	"github.com/vovakirdan/tower-race/internal/platform/tui"
	"github.com/vovakirdan/tower-race/internal/race"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Tower Race SSH server",
	Long: `Start an SSH server where players race each other online.

Each SSH connection can join the quick-match queue, host a private lobby
or join one with a 6-character code. Matches are first to
online.rounds_to_win rounds; results go to the shared database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.towerrace/host_key

Examples:
  towerrace serve                           # Listen on :23234 with auto-generated key
  towerrace serve --ssh :2222               # Listen on port 2222
  towerrace serve --host-key ./my_host_key  # Use specific host key
  towerrace serve --level ladder            # Race on the ladder level

Players connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	raceCfg, err := loadConfig()
	if err != nil {
		fatalf("%v", err)
	}
	if _, err := levels.Resolve(flagLevel, flagLevelsDir); err != nil {
		fatalf("%v", err)
	}

	cfg := sshServerConfig(raceCfg)
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = flagDBPath
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute

	resolve := func(id string) (race.Level, error) {
		lvl, err := levels.Resolve(id, flagLevelsDir)
		if err != nil {
			return race.Level{}, err
		}
		return raceCfg.ApplyLevel(lvl.Level), nil
	}

	server, err := tui.NewSSHServer(cfg, resolve, newLogger("towerrace-ssh"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting Tower Race SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with:", connectHint(cfg.Address))
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// sshServerConfig derives the server and match settings from the race
// config. A rounds_to_win of 0 is kept: the match never ends on its own.
func sshServerConfig(raceCfg config.RaceConfig) tui.SSHServerConfig {
	cfg := tui.DefaultSSHServerConfig()
	cfg.LevelID = flagLevel
	if raceCfg.Announce.BannerTicks > 0 {
		cfg.BannerTicks = raceCfg.Announce.BannerTicks
	}

	cfg.Coordinator.DefaultLevel = flagLevel
	cfg.Coordinator.Options = raceCfg.MatchOptions()
	cfg.Coordinator.Match.RoundsToWin = raceCfg.Online.RoundsToWin
	if raceCfg.Online.TickRate > 0 {
		cfg.Coordinator.Match.TickRate = raceCfg.Online.TickRate
	}
	if raceCfg.Controls.HoldTicks > 0 {
		cfg.Coordinator.Match.HoldTicks = raceCfg.Controls.HoldTicks
	}
	return cfg
}

// connectHint returns the ssh command for reaching a server listening on addr.
func connectHint(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "ssh " + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	if port == "22" {
		return "ssh " + host
	}
	return fmt.Sprintf("ssh %s -p %s", host, port)
}
