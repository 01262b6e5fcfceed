package main

import (
	"fmt"
	"strconv"

	"github.com/feedasfor-cyber/expense-management-app/internal/services"
	"github.com/spf13/cobra"
)

var deleteDatasetCmd = &cobra.Command{
	Use:   "delete-dataset <id>",
	Short: "Delete a dataset, its rows and its original file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteDataset,
}

func runDeleteDataset(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid dataset id %q", args[0])
	}

	_, ctx, cleanup, err := initContext()
	if err != nil {
		return err
	}
	defer cleanup()

	ds, err := services.NewExpenseService(ctx).DeleteDataset(cmd.Context(), uint(id))
	if err != nil {
		return fmt.Errorf("failed to delete dataset %d: %w", id, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted dataset %d (%s, %d rows)\n", ds.ID, ds.FileName, ds.RowCount)
	return nil
}
