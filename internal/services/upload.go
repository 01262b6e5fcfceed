package services

import (
	"context"
	"strings"
	"time"

	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
	"github.com/feedasfor-cyber/expense-management-app/internal/entity"
	"github.com/feedasfor-cyber/expense-management-app/internal/utils"
	"go.uber.org/zap"
)

type UploadInput struct {
	Filename   string
	Content    []byte
	BranchName string
	Period     string
	Uploader   string
}

type DatasetSummary struct {
	Status     string    `json:"status"`
	DatasetID  uint      `json:"dataset_id"`
	BranchName string    `json:"branch_name"`
	Period     string    `json:"period"`
	UploadedAt time.Time `json:"uploaded_at"`
	RowCount   int       `json:"row_count"`
	File       string    `json:"file"`
	SavedPath  string    `json:"saved_path"`
}

// Upload validates a CSV and stores it as a new dataset. The original bytes
// reach the uploads location only if the dataset commits.
func (s *ExpenseService) Upload(ctx context.Context, in UploadInput) (summary *DatasetSummary, err error) {
	defer func() {
		if err != nil {
			s.app.Metrics.UploadFailed(string(apperror.CodeOf(err)))
		}
	}()

	branch := strings.TrimSpace(in.BranchName)
	if branch == "" {
		return nil, apperror.New(apperror.CodeMissingField, "branch_name is required")
	}
	if err := utils.ValidatePeriod(in.Period); err != nil {
		return nil, err
	}

	parsed, err := utils.ValidateCSV(in.Content, in.Filename)
	if err != nil {
		return nil, err
	}

	staged, err := s.app.Files.Stage(ctx, utils.StoredFilename(in.Filename, s.now()), in.Content)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodePersistence, "Failed to save uploaded file", err)
	}

	ds := &entity.ExpenseDataset{
		FileName:     staged.Name(),
		Uploader:     in.Uploader,
		OriginalPath: staged.Location(),
		BranchName:   branch,
		Period:       in.Period,
	}
	err = s.store.CreateDataset(ctx, ds, parsed.Header, parsed.Rows, func() error {
		return staged.Commit(ctx)
	})
	if err != nil {
		if discardErr := staged.Discard(context.WithoutCancel(ctx)); discardErr != nil {
			s.app.Logger.Warn("Failed to discard staged upload",
				zap.String("file", staged.Name()), zap.Error(discardErr))
		}
		return nil, err
	}

	s.app.Metrics.UploadSucceeded(ds.RowCount)
	s.app.Logger.Info("Expense dataset uploaded",
		zap.String("user", in.Uploader),
		zap.String("file", ds.FileName),
		zap.String("branch", ds.BranchName),
		zap.String("period", ds.Period),
		zap.Int("rows", ds.RowCount),
	)

	return &DatasetSummary{
		Status:     "success",
		DatasetID:  ds.ID,
		BranchName: ds.BranchName,
		Period:     ds.Period,
		UploadedAt: ds.UploadedAt,
		RowCount:   ds.RowCount,
		File:       ds.FileName,
		SavedPath:  ds.OriginalPath,
	}, nil
}
