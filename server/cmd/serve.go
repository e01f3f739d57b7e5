package cmd

import (
	"context"
	"fmt"

	"github.com/phambaophuc/dali/internal/config"
	"github.com/phambaophuc/dali/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewServeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("config-path")
			mode, _ := cmd.Flags().GetString("mode")

			cfg, err := config.Load(dir, mode)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger, err := logging.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			app, err := NewApp(cfg, logger)
			if err != nil {
				logger.Error("Failed to initialize application", zap.Error(err))
				return err
			}
			return app.Run(ctx)
		},
	}
	pf := cmd.PersistentFlags()
	pf.String("config-path", "", "directory holding default.yaml and <mode>.yaml (default $CONFIG_PATH or ./config)")
	pf.String("mode", "", "config overlay to load (default $RUN_MODE or development)")
	return cmd
}
