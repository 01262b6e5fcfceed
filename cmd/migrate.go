package main

import (
	"fmt"
	"os"

	"github.com/feedasfor-cyber/expense-management-app/internal/config"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  "Open DATABASE_URL, run the schema migration and exit. Credentials are not required.",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	config.LoadDotEnv()

	db, err := config.InitDB(os.Getenv("DATABASE_URL"))
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database\n", db.Dialector.Name())
	return nil
}
