package main

import (
	"fmt"

	"github.com/feedasfor-cyber/expense-management-app/internal/appcontext"
	"github.com/feedasfor-cyber/expense-management-app/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "expense-api",
	Short: "Expense report intake service",
	Long:  "Accepts expense CSV uploads, stores their rows and serves filtered queries and CSV exports.",
	RunE:  runServe,

	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(deleteDatasetCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
}

// initContext builds the application context from the environment. The
// returned cleanup flushes the logger and closes the database.
func initContext() (*config.Config, *appcontext.Context, func(), error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, err := config.InitContext(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize context: %w", err)
	}

	sqlDB, err := ctx.DB.DB()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get underlying SQL DB from GORM DB: %w", err)
	}

	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			ctx.Logger.Error("Failed to close database connection", zap.Error(err))
		}
		if err := ctx.Logger.Sync(); err != nil {
			fmt.Printf("Failed to sync logger: %v\n", err)
		}
	}
	return cfg, ctx, cleanup, nil
}
