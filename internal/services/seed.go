package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"
)

var (
	seedBranches  = []string{"東京支店", "大阪支店", "名古屋支店", "福岡支店"}
	seedAccounts  = []string{"旅費交通費", "会議費", "交際費", "消耗品費", "通信費"}
	seedEmployees = []string{"山田太郎", "佐藤花子", "田中一郎", "高橋次郎", "鈴木美咲"}

	SeedHeader = []string{"日付", "部署", "社員名", "金額", "勘定科目", "備考"}
)

// GenerateExpenseCSV renders rows of dummy expenses for branch in period
// (YYYY-MM).
func GenerateExpenseCSV(rng *rand.Rand, branch, period string, rows int) ([]byte, error) {
	month, err := time.Parse("2006-01", period)
	if err != nil {
		return nil, fmt.Errorf("invalid period %q: %w", period, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(SeedHeader); err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		day := month.AddDate(0, 0, rng.IntN(28))
		record := []string{
			day.Format("2006-01-02"),
			branch + " 経理部",
			seedEmployees[rng.IntN(len(seedEmployees))],
			strconv.Itoa(1000 + rng.IntN(49001)),
			seedAccounts[rng.IntN(len(seedAccounts))],
			fmt.Sprintf("テストデータ%d", i+1),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

type SeedResult struct {
	Datasets int
	Rows     int
}

// Seed uploads generated datasets through the regular upload path.
func (s *ExpenseService) Seed(ctx context.Context, rng *rand.Rand, datasets, rows, year int) (*SeedResult, error) {
	if rows < 1 {
		return nil, errors.New("rows per dataset must be positive")
	}

	result := &SeedResult{}
	for i := 0; i < datasets; i++ {
		branch := seedBranches[rng.IntN(len(seedBranches))]
		period := fmt.Sprintf("%04d-%02d", year, 1+rng.IntN(12))

		content, err := GenerateExpenseCSV(rng, branch, period, rows)
		if err != nil {
			return result, err
		}

		summary, err := s.Upload(ctx, UploadInput{
			Filename:   fmt.Sprintf("dummy_%d.csv", i+1),
			Content:    content,
			BranchName: branch,
			Period:     period,
			Uploader:   "seed",
		})
		if err != nil {
			return result, fmt.Errorf("failed to seed dataset %d: %w", i+1, err)
		}
		result.Datasets++
		result.Rows += summary.RowCount
	}
	return result, nil
}
