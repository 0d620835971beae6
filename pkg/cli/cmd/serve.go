package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	runtime "github.com/devantler-tech/msail/pkg/di"
	"github.com/devantler-tech/msail/pkg/scoring/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command that runs the in-container scoring server.
func NewServeCmd(_ *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP scoring server",
		Long: `Run the HTTP scoring server. This is the entrypoint of scoring images and
reads its configuration from MSAIL_* environment variables baked into the
image at build time.`,
		SilenceUsage: true,
		RunE:         handleServeRunE,
	}

	return cmd
}

// handleServeRunE loads the server configuration from the environment and
// serves until the process receives an interrupt or termination signal.
func handleServeRunE(cmd *cobra.Command, _ []string) error {
	config, err := server.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(cmd.OutOrStdout())
	logger.SetFormatter(&logrus.JSONFormatter{})

	srv, err := server.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to create scoring server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = srv.Serve(ctx)
	if err != nil {
		return fmt.Errorf("scoring server failed: %w", err)
	}

	return nil
}
