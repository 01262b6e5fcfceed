package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
	"github.com/feedasfor-cyber/expense-management-app/internal/entity"
	"github.com/feedasfor-cyber/expense-management-app/internal/filter"
	"github.com/feedasfor-cyber/expense-management-app/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var header = []string{"日付", "科目", "金額", "メモ"}

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(testutil.NewContext(t).DB)
}

func rows(records ...[]string) []entity.RowData {
	out := make([]entity.RowData, len(records))
	for i, r := range records {
		out[i] = entity.NewRowData(header, r)
	}
	return out
}

func seed(t *testing.T, s *Store, branch, period string, data []entity.RowData) *entity.ExpenseDataset {
	t.Helper()
	ds := &entity.ExpenseDataset{
		FileName:   "20250101_000000_" + branch + ".csv",
		Uploader:   "admin",
		BranchName: branch,
		Period:     period,
	}
	require.NoError(t, s.CreateDataset(context.Background(), ds, header, data, nil))
	return ds
}

func sampleRows() []entity.RowData {
	return rows(
		[]string{"2025-04-01", "交通費", "1200", "Taxi to client"},
		[]string{"2025-04-10", "会議費", "3500", "Lunch meeting"},
		[]string{"2025-04-20", "交通費", "800", "Train 50% off"},
		[]string{"2025-05-02", "消耗品費", "15000", "Printer toner"},
	)
}

func TestCreateDatasetStoresRows(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ds := seed(t, s, "tokyo", "2025-04", sampleRows())
	require.NotZero(t, ds.ID)
	assert.Equal(t, 4, ds.RowCount)
	assert.False(t, ds.UploadedAt.IsZero())

	n, err := s.CountRows(ctx, ds.ID)
	require.NoError(t, err)
	assert.EqualValues(t, ds.RowCount, n)

	got, err := s.GetDataset(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "tokyo", got.BranchName)
	assert.Equal(t, 4, got.RowCount)
}

func TestCreateDatasetRejectsMismatchedRow(t *testing.T) {
	s := newStore(t)
	bad := []entity.RowData{entity.NewRowData([]string{"日付", "金額"}, []string{"2025-04-01", "100"})}

	err := s.CreateDataset(context.Background(), &entity.ExpenseDataset{FileName: "x.csv"}, header, bad, nil)
	assert.Equal(t, apperror.CodeColumnCountMismatch, apperror.CodeOf(err))

	datasets, err := s.ListDatasets(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, datasets)
}

func TestCreateDatasetRollsBackWhenBeforeCommitFails(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ds := &entity.ExpenseDataset{FileName: "x.csv", BranchName: "osaka", Period: "2025-04"}
	err := s.CreateDataset(ctx, ds, header, sampleRows(), func() error {
		return errors.New("disk full")
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodePersistence, apperror.CodeOf(err))
	assert.ErrorContains(t, err, "disk full")

	datasets, err := s.ListDatasets(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, datasets)

	total, err := s.CountRows(ctx, ds.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestListDatasetsNewestFirstWithFilters(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	first := seed(t, s, "tokyo", "2025-04", sampleRows())
	time.Sleep(10 * time.Millisecond)
	second := seed(t, s, "osaka", "2025-04", sampleRows())
	time.Sleep(10 * time.Millisecond)
	third := seed(t, s, "tokyo", "2025-05", sampleRows())

	all, err := s.ListDatasets(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{third.ID, second.ID, first.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})

	tokyo, err := s.ListDatasets(ctx, "tokyo", "")
	require.NoError(t, err)
	require.Len(t, tokyo, 2)
	assert.Equal(t, third.ID, tokyo[0].ID)

	april, err := s.ListDatasets(ctx, "tokyo", "2025-04")
	require.NoError(t, err)
	require.Len(t, april, 1)
	assert.Equal(t, first.ID, april[0].ID)

	none, err := s.ListDatasets(ctx, "nagoya", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetDatasetNotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.GetDataset(context.Background(), 404)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestPageRows(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ds := seed(t, s, "tokyo", "2025-04", sampleRows())

	page1, total, err := s.PageRows(ctx, RowQuery{DatasetID: ds.ID}, 1, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page1, 3)
	memo, _ := page1[0].RowData.Get("メモ")
	assert.Equal(t, "Taxi to client", memo)
	assert.Equal(t, header, page1[0].RowData.Keys())

	page2, total, err := s.PageRows(ctx, RowQuery{DatasetID: ds.ID}, 2, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page2, 1)
	amount, _ := page2[0].RowData.Get("金額")
	assert.Equal(t, "15000", amount)

	beyond, total, err := s.PageRows(ctx, RowQuery{DatasetID: ds.ID}, 5, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Empty(t, beyond)
}

func TestPageRowsWithFilters(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ds := seed(t, s, "tokyo", "2025-04", sampleRows())

	tests := []struct {
		name  string
		set   filter.Set
		memos []string
	}{
		{
			name:  "string contains any",
			set:   filter.Set{Strings: []filter.StringFilter{{Column: "科目", Value: "交通費"}}},
			memos: []string{"Taxi to client", "Train 50% off"},
		},
		{
			name:  "string is case insensitive",
			set:   filter.Set{Strings: []filter.StringFilter{{Column: "メモ", Value: "LUNCH, printer"}}},
			memos: []string{"Lunch meeting", "Printer toner"},
		},
		{
			name:  "percent is literal",
			set:   filter.Set{Strings: []filter.StringFilter{{Column: "メモ", Value: "50%"}}},
			memos: []string{"Train 50% off"},
		},
		{
			name:  "numeric between",
			set:   filter.Set{Numerics: []filter.NumericFilter{{Column: "金額", Op: filter.OpBetween, Value: "1000,5000"}}},
			memos: []string{"Taxi to client", "Lunch meeting"},
		},
		{
			name:  "numeric compares as numbers",
			set:   filter.Set{Numerics: []filter.NumericFilter{{Column: "金額", Op: filter.OpGT, Value: "9000"}}},
			memos: []string{"Printer toner"},
		},
		{
			name:  "date range",
			set:   filter.Set{Dates: []filter.DateFilter{{Column: "日付", From: "2025-04-05", To: "2025-04-30"}}},
			memos: []string{"Lunch meeting", "Train 50% off"},
		},
		{
			name:  "open ended date",
			set:   filter.Set{Dates: []filter.DateFilter{{Column: "日付", From: "2025-05-01"}}},
			memos: []string{"Printer toner"},
		},
		{
			name: "groups are anded",
			set: filter.Set{
				Strings:  []filter.StringFilter{{Column: "科目", Value: "交通費"}},
				Numerics: []filter.NumericFilter{{Column: "金額", Op: filter.OpLT, Value: "1000"}},
			},
			memos: []string{"Train 50% off"},
		},
		{
			name:  "whole row search",
			set:   filter.Set{Search: "toner"},
			memos: []string{"Printer toner"},
		},
		{
			name:  "unknown column matches nothing",
			set:   filter.Set{Strings: []filter.StringFilter{{Column: "部署", Value: "x"}}},
			memos: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pred, err := filter.Build(tc.set, s.Dialect())
			require.NoError(t, err)

			got, total, err := s.PageRows(ctx, RowQuery{DatasetID: ds.ID, Predicate: pred}, 1, 100)
			require.NoError(t, err)
			assert.EqualValues(t, len(tc.memos), total)

			var memos []string
			for _, r := range got {
				memo, _ := r.RowData.Get("メモ")
				memos = append(memos, memo)
			}
			assert.Equal(t, tc.memos, memos)
		})
	}
}

func TestSearchMatchesValuesOnly(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ds := seed(t, s, "tokyo", "2025-04", rows(
		[]string{"2025-04-01", "交通費", "1200", `He said "taxi"`},
		[]string{"2025-04-02", "消耗品費", "300", `C:\receipts\0402`},
		[]string{"2025-04-03", "会議費", "900", "Coffee"},
	))

	tests := []struct {
		search string
		memos  []string
	}{
		{"メモ", nil},
		{"科目", nil},
		{`"taxi"`, []string{`He said "taxi"`}},
		{`\receipts\`, []string{`C:\receipts\0402`}},
		{"COFFEE", []string{"Coffee"}},
		{"会議", []string{"Coffee"}},
	}
	for _, tc := range tests {
		t.Run(tc.search, func(t *testing.T) {
			pred, err := filter.Build(filter.Set{Search: tc.search}, s.Dialect())
			require.NoError(t, err)

			got, total, err := s.PageRows(ctx, RowQuery{DatasetID: ds.ID, Predicate: pred}, 1, 100)
			require.NoError(t, err)
			assert.EqualValues(t, len(tc.memos), total)

			var memos []string
			for _, r := range got {
				memo, _ := r.RowData.Get("メモ")
				memos = append(memos, memo)
			}
			assert.Equal(t, tc.memos, memos)
		})
	}
}

func TestPageRowsAcrossDatasets(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seed(t, s, "tokyo", "2025-04", sampleRows())
	seed(t, s, "osaka", "2025-04", sampleRows()[:2])
	seed(t, s, "osaka", "2025-05", sampleRows()[:1])

	_, total, err := s.PageRows(ctx, RowQuery{}, 1, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 7, total)

	_, total, err = s.PageRows(ctx, RowQuery{Branch: "osaka"}, 1, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	_, total, err = s.PageRows(ctx, RowQuery{Branch: "osaka", Period: "2025-04"}, 1, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestOpenRowsStreamsInOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ds := seed(t, s, "tokyo", "2025-04", sampleRows())
	seed(t, s, "osaka", "2025-04", sampleRows())

	cur, err := s.OpenRows(ctx, RowQuery{DatasetID: ds.ID})
	require.NoError(t, err)
	defer cur.Close()

	var amounts []string
	for cur.Next() {
		row := cur.Row()
		assert.Equal(t, ds.ID, row.DatasetID)
		amount, _ := row.RowData.Get("金額")
		amounts = append(amounts, amount)
	}
	require.NoError(t, cur.Err())
	assert.Equal(t, []string{"1200", "3500", "800", "15000"}, amounts)
}

func TestOpenRowsWithJoinAndPredicate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	seed(t, s, "tokyo", "2025-04", sampleRows())
	seed(t, s, "osaka", "2025-04", sampleRows())

	pred, err := filter.Build(filter.Set{Strings: []filter.StringFilter{{Column: "科目", Value: "会議費"}}}, s.Dialect())
	require.NoError(t, err)

	cur, err := s.OpenRows(ctx, RowQuery{Branch: "osaka", Predicate: pred})
	require.NoError(t, err)
	defer cur.Close()

	var n int
	for cur.Next() {
		n++
		memo, _ := cur.Row().RowData.Get("メモ")
		assert.Equal(t, "Lunch meeting", memo)
	}
	require.NoError(t, cur.Err())
	assert.Equal(t, 1, n)
}

func TestDeleteDatasetRemovesRows(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ds := seed(t, s, "tokyo", "2025-04", sampleRows())
	other := seed(t, s, "osaka", "2025-04", sampleRows())

	deleted, err := s.DeleteDataset(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.FileName, deleted.FileName)

	_, err = s.GetDataset(ctx, ds.ID)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	n, err := s.CountRows(ctx, ds.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.CountRows(ctx, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	_, err = s.DeleteDataset(ctx, ds.ID)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestStatistics(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	empty, err := s.Statistics(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, empty.TotalDatasetCount)
	assert.Zero(t, empty.TotalRowCount)
	assert.Empty(t, empty.Branches)

	seed(t, s, "tokyo", "2025-04", sampleRows())
	seed(t, s, "tokyo", "2025-05", sampleRows()[:1])
	seed(t, s, "osaka", "2025-04", sampleRows()[:2])

	stats, err := s.Statistics(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalDatasetCount)
	assert.EqualValues(t, 7, stats.TotalRowCount)
	assert.EqualValues(t, 3, stats.CurrentMonthDatasetCount)
	assert.Zero(t, stats.PastMonthDatasetCount)

	assert.Equal(t, []BranchTotal{
		{BranchName: "osaka", DatasetCount: 1, RowCount: 2},
		{BranchName: "tokyo", DatasetCount: 2, RowCount: 5},
	}, stats.Branches)
	assert.Equal(t, []PeriodTotal{
		{Period: "2025-05", DatasetCount: 1, RowCount: 1},
		{Period: "2025-04", DatasetCount: 2, RowCount: 6},
	}, stats.Periods)

	nextYear, err := s.Statistics(ctx, time.Now().AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Zero(t, nextYear.CurrentMonthDatasetCount)
	assert.EqualValues(t, 3, nextYear.TotalDatasetCount)
}
