package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/feedasfor-cyber/expense-management-app/internal/services"
	"github.com/spf13/cobra"
)

var (
	seedDatasets int
	seedRows     int
	seedYear     int
	seedRandSeed uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upload generated dummy expense datasets",
	Long:  "Generate dummy expense CSVs and push each one through the regular upload pipeline.",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedDatasets, "datasets", 100, "number of datasets to upload")
	seedCmd.Flags().IntVar(&seedRows, "rows", 10, "rows per dataset")
	seedCmd.Flags().IntVar(&seedYear, "year", time.Now().Year(), "year of the generated periods")
	seedCmd.Flags().Uint64Var(&seedRandSeed, "seed", 0, "random seed (0 picks one from the clock)")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	_, ctx, cleanup, err := initContext()
	if err != nil {
		return err
	}
	defer cleanup()

	seed := seedRandSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	result, err := services.NewExpenseService(ctx).Seed(cmd.Context(), rng, seedDatasets, seedRows, seedYear)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d datasets (%d rows each, %d rows total)\n", result.Datasets, seedRows, result.Rows)
	return nil
}
