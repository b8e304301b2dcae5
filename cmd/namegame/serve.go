package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/namegame/internal/config"
	"github.com/vovakirdan/namegame/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the name game SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own game session. Profiles are fetched once
and shared by every session.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.namegame/host_key

Examples:
  namegame serve                           # Listen on :23235 with auto-generated key
  namegame serve --ssh :2222               # Listen on port 2222
  namegame serve --host-key ./my_host_key  # Use specific host key
  namegame serve --idle-timeout 10m

Users can connect with:
  ssh localhost -p 23235`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting (default from config)")
}

func runServe(_ *cobra.Command, _ []string) {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve() error {
	source, closeSource := openSource(appConfig, logger)
	defer closeSource()

	cfg := tui.SSHServerConfig{
		Address:     appConfig.SSH.Address,
		HostKeyPath: appConfig.SSH.HostKey,
		IdleTimeout: appConfig.SSH.IdleTimeout,
		Seed:        flagSeed,
	}
	if cfg.HostKeyPath != "" {
		cfg.HostKeyPath = config.ExpandHome(cfg.HostKeyPath)
	}

	server, err := tui.NewSSHServer(cfg, source, logger.WithPrefix("ssh"))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting name game SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
