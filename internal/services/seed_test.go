package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/feedasfor-cyber/expense-management-app/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateExpenseCSVPassesValidation(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	content, err := GenerateExpenseCSV(rng, "福岡支店", "2025-02", 25)
	require.NoError(t, err)

	parsed, err := utils.ValidateCSV(content, "seed.csv")
	require.NoError(t, err)
	assert.Equal(t, SeedHeader, parsed.Header)
	require.Len(t, parsed.Rows, 25)

	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	for _, record := range records[1:] {
		assert.Regexp(t, `^2025-02-\d{2}$`, record[0])
		assert.Equal(t, "福岡支店 経理部", record[1])
		amount, err := strconv.Atoi(record[3])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, amount, 1000)
		assert.LessOrEqual(t, amount, 50000)
	}

	_, err = GenerateExpenseCSV(rng, "福岡支店", "2025-13", 1)
	assert.Error(t, err)
}

func TestSeedUsesUploadPipeline(t *testing.T) {
	svc, app := newService(t)
	ctx := context.Background()

	result, err := svc.Seed(ctx, rand.New(rand.NewPCG(7, 7)), 3, 5, 2025)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Datasets)
	assert.Equal(t, 15, result.Rows)

	datasets, err := svc.ListDatasets(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, datasets, 3)
	for _, ds := range datasets {
		assert.Equal(t, "seed", ds.Uploader)
		assert.Equal(t, 5, ds.RowCount)
		assert.Regexp(t, `^2025-(0[1-9]|1[0-2])$`, ds.Period)
	}
	assert.Len(t, uploadedFiles(t, app), 3)
}
