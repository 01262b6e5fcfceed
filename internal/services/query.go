package services

import (
	"context"
	"strings"
	"time"

	"github.com/feedasfor-cyber/expense-management-app/internal/entity"
	"github.com/feedasfor-cyber/expense-management-app/internal/filter"
	"github.com/feedasfor-cyber/expense-management-app/internal/store"
	"github.com/feedasfor-cyber/expense-management-app/internal/utils"
)

// Scope selects the rows of a preview or export. A zero DatasetID spans every
// dataset, narrowed by exact Branch and Period when set.
type Scope struct {
	DatasetID uint
	Branch    string
	Period    string
	Filters   filter.Set
}

// PageRequest carries raw page and size query values.
type PageRequest struct {
	Page string
	Size string
}

type DetailRequest struct {
	PageRequest
	FilterColumn string
	FilterValue  string
}

type DetailMeta struct {
	ID         uint      `json:"id"`
	FileName   string    `json:"file_name"`
	BranchName string    `json:"branch_name"`
	Period     string    `json:"period"`
	RowCount   int       `json:"row_count"`
	UploadedAt time.Time `json:"uploaded_at"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Size       int       `json:"size"`
}

type DatasetDetail struct {
	Meta DetailMeta       `json:"meta"`
	Data []entity.RowData `json:"data"`
}

type PageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

type RowPage struct {
	Meta PageMeta         `json:"meta"`
	Data []entity.RowData `json:"data"`
}

func (s *ExpenseService) ListDatasets(ctx context.Context, branch, period string) ([]entity.ExpenseDataset, error) {
	datasets, err := s.store.ListDatasets(ctx, strings.TrimSpace(branch), strings.TrimSpace(period))
	if err != nil {
		return nil, err
	}
	if datasets == nil {
		datasets = []entity.ExpenseDataset{}
	}
	return datasets, nil
}

// DatasetDetail pages through one dataset. A filter value with a column is a
// substring match on that column; without one it searches the whole row.
func (s *ExpenseService) DatasetDetail(ctx context.Context, id uint, req DetailRequest) (*DatasetDetail, error) {
	page, size, err := utils.ParsePage(req.Page, req.Size, defaultDetailPageSize, s.app.DetailMaxPageSize)
	if err != nil {
		return nil, err
	}

	ds, err := s.store.GetDataset(ctx, id)
	if err != nil {
		return nil, err
	}

	var set filter.Set
	column, value := strings.TrimSpace(req.FilterColumn), strings.TrimSpace(req.FilterValue)
	switch {
	case value == "":
	case column != "":
		set.Strings = []filter.StringFilter{{Column: column, Value: value}}
	default:
		set.Search = value
	}
	pred, err := s.predicate(set)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.store.PageRows(ctx, store.RowQuery{DatasetID: ds.ID, Predicate: pred}, page, size)
	if err != nil {
		return nil, err
	}

	return &DatasetDetail{
		Meta: DetailMeta{
			ID:         ds.ID,
			FileName:   ds.FileName,
			BranchName: ds.BranchName,
			Period:     ds.Period,
			RowCount:   ds.RowCount,
			UploadedAt: ds.UploadedAt,
			Total:      total,
			Page:       page,
			Size:       size,
		},
		Data: payloads(rows),
	}, nil
}

// Preview pages through rows across datasets.
func (s *ExpenseService) Preview(ctx context.Context, scope Scope, req PageRequest) (*RowPage, error) {
	page, size, err := utils.ParsePage(req.Page, req.Size, defaultPreviewPageSize, s.app.PreviewMaxPageSize)
	if err != nil {
		return nil, err
	}

	q, err := s.rowQuery(scope)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.store.PageRows(ctx, q, page, size)
	if err != nil {
		return nil, err
	}

	return &RowPage{
		Meta: PageMeta{Total: total, Page: page, Size: size},
		Data: payloads(rows),
	}, nil
}

func (s *ExpenseService) rowQuery(scope Scope) (store.RowQuery, error) {
	pred, err := s.predicate(scope.Filters)
	if err != nil {
		return store.RowQuery{}, err
	}
	return store.RowQuery{
		DatasetID: scope.DatasetID,
		Branch:    strings.TrimSpace(scope.Branch),
		Period:    strings.TrimSpace(scope.Period),
		Predicate: pred,
	}, nil
}

func (s *ExpenseService) predicate(set filter.Set) (filter.Predicate, error) {
	return filter.Build(set, s.store.Dialect())
}

func payloads(rows []entity.ExpenseRow) []entity.RowData {
	out := make([]entity.RowData, len(rows))
	for i, r := range rows {
		out[i] = r.RowData
	}
	return out
}

// Statistics summarizes stored uploads by branch and period.
func (s *ExpenseService) Statistics(ctx context.Context) (*store.Statistics, error) {
	return s.store.Statistics(ctx, s.now())
}
