package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/namegame/internal/platform/web"
)

var (
	flagBind      string
	flagPort      int
	flagPublicURL string
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the browser front end",
	Long: `Serve the name game over HTTP. Each browser tab plays its own game over
a WebSocket.

Endpoints:
  /              - The game page
  /qr            - QR code linking to the public URL
  /api/profiles  - Profile count and whether a game can start
  /healthz       - Health check
  /version       - Build version

Examples:
  namegame web
  namegame web --port 9000
  namegame web --bind 127.0.0.1 --public-url https://quiz.example.com`,
	Args: cobra.NoArgs,
	Run:  runWeb,
}

func init() {
	webCmd.Flags().StringVar(&flagBind, "bind", "", "Bind address (default from config)")
	webCmd.Flags().IntVar(&flagPort, "port", 0, "Port to listen on (default from config)")
	webCmd.Flags().StringVar(&flagPublicURL, "public-url", "", "URL encoded in the QR code")
}

func runWeb(_ *cobra.Command, _ []string) {
	if err := serveWeb(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveWeb() error {
	source, closeSource := openSource(appConfig, logger)
	defer closeSource()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(web.Config{
		Addr:      appConfig.Web.Addr(),
		PublicURL: appConfig.Web.PublicURL,
		Version:   version,
		Seed:      flagSeed,
	}, source, logger.WithPrefix("web"))

	fmt.Printf("Serving the name game at %s\n", appConfig.Web.URL())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
