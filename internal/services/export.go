package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"

	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
	"github.com/feedasfor-cyber/expense-management-app/internal/entity"
	"github.com/feedasfor-cyber/expense-management-app/internal/metrics"
	"github.com/feedasfor-cyber/expense-management-app/internal/store"
	"github.com/feedasfor-cyber/expense-management-app/internal/utils"
)

// Export is an open CSV export. The caller must Close it.
type Export struct {
	Filename string
	Header   []string

	cursor  *store.RowCursor
	first   entity.RowData
	scope   string
	metrics *metrics.Recorder
}

// Export opens a cursor over the rows of scope. It fails with NoMatchingData
// before anything is written when no row matches.
func (s *ExpenseService) Export(ctx context.Context, scope Scope) (*Export, error) {
	ts := utils.TimestampPrefix(s.now())
	filename := fmt.Sprintf("filtered_%s.csv", ts)
	metricScope := metrics.ScopeAll
	if scope.DatasetID != 0 {
		if _, err := s.store.GetDataset(ctx, scope.DatasetID); err != nil {
			return nil, err
		}
		filename = fmt.Sprintf("dataset_%d_%s.csv", scope.DatasetID, ts)
		metricScope = metrics.ScopeDataset
	}

	q, err := s.rowQuery(scope)
	if err != nil {
		return nil, err
	}

	cursor, err := s.store.OpenRows(ctx, q)
	if err != nil {
		return nil, err
	}
	if !cursor.Next() {
		err := cursor.Err()
		cursor.Close()
		if err != nil {
			return nil, err
		}
		return nil, apperror.New(apperror.CodeNoMatchingData, "No matching data")
	}

	first := cursor.Row().RowData
	return &Export{
		Filename: filename,
		Header:   first.Keys(),
		cursor:   cursor,
		first:    first,
		scope:    metricScope,
		metrics:  s.app.Metrics,
	}, nil
}

// WriteCSV writes the header and every row to w, flushing after each line
// when w is an http.Flusher. It returns the number of data rows written.
func (e *Export) WriteCSV(w io.Writer) (int, error) {
	flusher, _ := w.(http.Flusher)
	cw := csv.NewWriter(w)

	writeLine := func(record []string) error {
		if err := cw.Write(record); err != nil {
			return err
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	if err := writeLine(e.Header); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	n := 0
	defer func() { e.metrics.RowsExported(e.scope, n) }()

	record := make([]string, len(e.Header))
	row := e.first
	for {
		for i, key := range e.Header {
			record[i], _ = row.Get(key)
		}
		if err := writeLine(record); err != nil {
			return n, fmt.Errorf("failed to write CSV row: %w", err)
		}
		n++

		if !e.cursor.Next() {
			break
		}
		row = e.cursor.Row().RowData
	}
	if err := e.cursor.Err(); err != nil {
		return n, err
	}
	return n, nil
}

func (e *Export) Close() error {
	return e.cursor.Close()
}
