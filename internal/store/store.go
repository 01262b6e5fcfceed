// Package store persists expense datasets and their rows through GORM.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
	"github.com/feedasfor-cyber/expense-management-app/internal/entity"
	"github.com/feedasfor-cyber/expense-management-app/internal/filter"
	"github.com/feedasfor-cyber/expense-management-app/internal/utils"
	"gorm.io/gorm"
)

const insertBatchSize = 500

type Store struct {
	db      *gorm.DB
	dialect filter.Dialect
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:      db,
		dialect: filter.DialectFor(db.Dialector.Name()),
	}
}

func (s *Store) Dialect() filter.Dialect {
	return s.dialect
}

// RowQuery selects rows. A zero DatasetID spans all datasets; Branch and
// Period narrow by exact dataset metadata.
type RowQuery struct {
	DatasetID uint
	Branch    string
	Period    string
	Predicate filter.Predicate
}

// CreateDataset inserts ds and its rows in one transaction. beforeCommit, if
// set, runs last inside the transaction; an error from it rolls everything
// back.
func (s *Store) CreateDataset(ctx context.Context, ds *entity.ExpenseDataset, header []string, rows []entity.RowData, beforeCommit func() error) error {
	for i, row := range rows {
		if !row.MatchesHeader(header) {
			return apperror.New(apperror.CodeColumnCountMismatch, fmt.Sprintf("Data row %d does not match the header", i+1))
		}
	}

	ds.RowCount = len(rows)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ds).Error; err != nil {
			return fmt.Errorf("failed to insert dataset: %w", err)
		}

		if len(rows) > 0 {
			records := make([]entity.ExpenseRow, len(rows))
			for i, row := range rows {
				records[i] = entity.ExpenseRow{DatasetID: ds.ID, RowData: row}
			}
			if err := tx.CreateInBatches(records, insertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to insert rows: %w", err)
			}
		}

		if beforeCommit != nil {
			if err := beforeCommit(); err != nil {
				return fmt.Errorf("failed to finalize upload: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return apperror.Wrap(apperror.CodePersistence, "Failed to save dataset", err)
	}
	return nil
}

func (s *Store) ListDatasets(ctx context.Context, branch, period string) ([]entity.ExpenseDataset, error) {
	q := s.db.WithContext(ctx).Model(&entity.ExpenseDataset{})
	if branch != "" {
		q = q.Where("branch_name = ?", branch)
	}
	if period != "" {
		q = q.Where("period = ?", period)
	}

	var datasets []entity.ExpenseDataset
	if err := q.Order("uploaded_at DESC").Order("id DESC").Find(&datasets).Error; err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	return datasets, nil
}

func (s *Store) GetDataset(ctx context.Context, id uint) (*entity.ExpenseDataset, error) {
	var ds entity.ExpenseDataset
	if err := s.db.WithContext(ctx).First(&ds, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.CodeNotFound, "Dataset not found")
		}
		return nil, fmt.Errorf("failed to get dataset %d: %w", id, err)
	}
	return &ds, nil
}

func (s *Store) CountRows(ctx context.Context, datasetID uint) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&entity.ExpenseRow{}).Where("dataset_id = ?", datasetID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

// PageRows returns one page of matching rows, ordered by insertion, and the
// total number of matches.
func (s *Store) PageRows(ctx context.Context, q RowQuery, page, size int) ([]entity.ExpenseRow, int64, error) {
	var total int64
	if err := s.rowScope(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rows: %w", err)
	}

	var rows []entity.ExpenseRow
	err := s.rowScope(ctx, q).
		Select("expense_rows.*").
		Order("expense_rows.id").
		Offset(utils.Offset(page, size)).
		Limit(size).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch rows: %w", err)
	}
	return rows, total, nil
}

// OpenRows starts a forward-only read over every matching row. The caller
// must Close the cursor.
func (s *Store) OpenRows(ctx context.Context, q RowQuery) (*RowCursor, error) {
	db := s.rowScope(ctx, q).Select("expense_rows.*").Order("expense_rows.id")
	rows, err := db.Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	return &RowCursor{db: db, rows: rows}, nil
}

// DeleteDataset removes a dataset and all of its rows.
func (s *Store) DeleteDataset(ctx context.Context, id uint) (*entity.ExpenseDataset, error) {
	var ds entity.ExpenseDataset
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ds, id).Error; err != nil {
			return err
		}
		if err := tx.Where("dataset_id = ?", id).Delete(&entity.ExpenseRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete rows: %w", err)
		}
		if err := tx.Delete(&ds).Error; err != nil {
			return fmt.Errorf("failed to delete dataset: %w", err)
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.New(apperror.CodeNotFound, "Dataset not found")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.CodePersistence, "Failed to delete dataset", err)
	}
	return &ds, nil
}

func (s *Store) rowScope(ctx context.Context, q RowQuery) *gorm.DB {
	db := s.db.WithContext(ctx).Model(&entity.ExpenseRow{})
	if q.Branch != "" || q.Period != "" {
		db = db.Joins("JOIN expense_datasets ON expense_datasets.id = expense_rows.dataset_id")
		if q.Branch != "" {
			db = db.Where("expense_datasets.branch_name = ?", q.Branch)
		}
		if q.Period != "" {
			db = db.Where("expense_datasets.period = ?", q.Period)
		}
	}
	if q.DatasetID != 0 {
		db = db.Where("expense_rows.dataset_id = ?", q.DatasetID)
	}
	if !q.Predicate.IsEmpty() {
		db = db.Where(q.Predicate.SQL, q.Predicate.Args...)
	}
	return db
}

// RowCursor yields matching rows one at a time.
type RowCursor struct {
	db   *gorm.DB
	rows *sql.Rows
	cur  entity.ExpenseRow
	err  error
}

func (c *RowCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	c.cur = entity.ExpenseRow{}
	if err := c.db.ScanRows(c.rows, &c.cur); err != nil {
		c.err = fmt.Errorf("failed to scan row: %w", err)
		return false
	}
	return true
}

func (c *RowCursor) Row() entity.ExpenseRow {
	return c.cur
}

func (c *RowCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *RowCursor) Close() error {
	return c.rows.Close()
}

type BranchTotal struct {
	BranchName   string `json:"branch_name"`
	DatasetCount int64  `json:"dataset_count"`
	RowCount     int64  `json:"row_count"`
}

type PeriodTotal struct {
	Period       string `json:"period"`
	DatasetCount int64  `json:"dataset_count"`
	RowCount     int64  `json:"row_count"`
}

type Statistics struct {
	TotalDatasetCount        int64         `json:"total_dataset_count"`
	TotalRowCount            int64         `json:"total_row_count"`
	CurrentMonthDatasetCount int64         `json:"current_month_dataset_count"`
	PastMonthDatasetCount    int64         `json:"past_month_dataset_count"`
	Branches                 []BranchTotal `json:"branches"`
	Periods                  []PeriodTotal `json:"periods"`
}

// Statistics aggregates stored row_count values. Month boundaries are taken
// from now's location.
func (s *Store) Statistics(ctx context.Context, now time.Time) (*Statistics, error) {
	currentMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	pastMonthStart := currentMonthStart.AddDate(0, -1, 0)

	db := s.db.WithContext(ctx)
	stats := &Statistics{}

	var totals struct {
		DatasetTotal int64
		RowTotal     int64
	}
	if err := db.Model(&entity.ExpenseDataset{}).
		Select("COUNT(*) AS dataset_total, COALESCE(SUM(row_count), 0) AS row_total").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to count datasets: %w", err)
	}
	stats.TotalDatasetCount, stats.TotalRowCount = totals.DatasetTotal, totals.RowTotal

	if err := db.Model(&entity.ExpenseDataset{}).
		Where("uploaded_at >= ?", currentMonthStart).
		Count(&stats.CurrentMonthDatasetCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count current month datasets: %w", err)
	}
	if err := db.Model(&entity.ExpenseDataset{}).
		Where("uploaded_at >= ? AND uploaded_at < ?", pastMonthStart, currentMonthStart).
		Count(&stats.PastMonthDatasetCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count past month datasets: %w", err)
	}

	stats.Branches = []BranchTotal{}
	if err := db.Model(&entity.ExpenseDataset{}).
		Select("branch_name, COUNT(*) AS dataset_count, COALESCE(SUM(row_count), 0) AS row_count").
		Group("branch_name").
		Order("branch_name").
		Scan(&stats.Branches).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate branches: %w", err)
	}

	stats.Periods = []PeriodTotal{}
	if err := db.Model(&entity.ExpenseDataset{}).
		Select("period, COUNT(*) AS dataset_count, COALESCE(SUM(row_count), 0) AS row_count").
		Group("period").
		Order("period DESC").
		Scan(&stats.Periods).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate periods: %w", err)
	}

	return stats, nil
}
