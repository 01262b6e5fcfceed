package services

import (
	"context"
	"io"

	"github.com/feedasfor-cyber/expense-management-app/internal/entity"
	"github.com/feedasfor-cyber/expense-management-app/internal/utils"
	"go.uber.org/zap"
)

type OriginalFile struct {
	Name string
	Size int64
	Body io.ReadCloser
}

// OpenOriginal opens the bytes preserved at upload time. Name has the
// timestamp prefix removed.
func (s *ExpenseService) OpenOriginal(ctx context.Context, id uint) (*OriginalFile, error) {
	ds, err := s.store.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}

	body, size, err := s.app.Files.Open(ctx, ds.OriginalPath)
	if err != nil {
		return nil, err
	}

	return &OriginalFile{
		Name: utils.OriginalFilename(ds.FileName),
		Size: size,
		Body: body,
	}, nil
}

// DeleteDataset removes a dataset with its rows, then its original file. A
// file that cannot be removed is logged and left behind.
func (s *ExpenseService) DeleteDataset(ctx context.Context, id uint) (*entity.ExpenseDataset, error) {
	ds, err := s.store.DeleteDataset(ctx, id)
	if err != nil {
		return nil, err
	}

	if ds.OriginalPath != "" {
		if err := s.app.Files.Remove(ctx, ds.OriginalPath); err != nil {
			s.app.Logger.Warn("Failed to remove original file",
				zap.Uint("dataset_id", ds.ID), zap.String("path", ds.OriginalPath), zap.Error(err))
		}
	}

	s.app.Logger.Info("Expense dataset deleted",
		zap.Uint("dataset_id", ds.ID), zap.String("file", ds.FileName), zap.Int("rows", ds.RowCount))
	return ds, nil
}
