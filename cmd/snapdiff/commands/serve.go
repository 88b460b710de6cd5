package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/ternarybob/snapdiff/internal/app"
	"github.com/ternarybob/snapdiff/internal/common"
	"github.com/ternarybob/snapdiff/internal/server"
)

var (
	configFiles []string
	serverPort  int
	serverHost  string
)

// RegisterServeFlags attaches the serve flags to a command so the bare root
// invocation behaves like `serve`.
func RegisterServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&configFiles, "config", "c", nil, "Configuration file path (can be specified multiple times, later files override earlier ones)")
	cmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides config)")
	cmd.Flags().StringVar(&serverHost, "host", "", "Server host (overrides config)")
}

// NewServeCommand builds the serve subcommand.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE:  RunServe,
	}
	RegisterServeFlags(cmd)
	return cmd
}

// RunServe loads configuration, wires the application and runs the HTTP
// server until interrupted.
func RunServe(cmd *cobra.Command, args []string) error {
	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> files -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	paths := configFiles
	if len(paths) == 0 {
		if _, err := os.Stat("snapdiff.toml"); err == nil {
			paths = append(paths, "snapdiff.toml")
		}
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		return err
	}

	common.ApplyFlagOverrides(config, serverPort, serverHost)

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	application, err := app.New(config, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	srv := server.New(application)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return nil
}
