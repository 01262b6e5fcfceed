package utils

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
	"github.com/feedasfor-cyber/expense-management-app/internal/entity"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const MaxCSVSize = 10 * 1024 * 1024

type ParsedCSV struct {
	Header []string
	Rows   []entity.RowData
}

// ValidateCSV parses an uploaded CSV into its header and header-zipped rows.
// filename may be empty when the caller has no claimed name.
func ValidateCSV(content []byte, filename string) (*ParsedCSV, error) {
	if filename != "" && !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return nil, apperror.New(apperror.CodeInvalidExtension, "Only .csv files can be uploaded")
	}
	if len(content) > MaxCSVSize {
		return nil, apperror.New(apperror.CodeOversizedInput, "File size exceeds 10MB")
	}
	if len(content) == 0 {
		return nil, apperror.New(apperror.CodeEmptyInput, "CSV is empty")
	}

	text, err := decodeUTF8(content)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperror.Wrap(apperror.CodeMalformedCSV, "Failed to parse CSV", err)
		}
		records = append(records, record)
	}

	if len(records) < 2 {
		return nil, apperror.New(apperror.CodeEmptyInput, "CSV has no data rows")
	}

	header := records[0]
	seen := make(map[string]struct{}, len(header))
	for _, name := range header {
		if _, dup := seen[name]; dup {
			return nil, apperror.New(apperror.CodeDuplicateHeader, fmt.Sprintf("Duplicate header %q", name))
		}
		seen[name] = struct{}{}
	}

	rows := make([]entity.RowData, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, apperror.New(apperror.CodeColumnCountMismatch,
				fmt.Sprintf("Data row %d has %d columns, header has %d", i+1, len(record), len(header)))
		}
		rows = append(rows, entity.NewRowData(header, record))
	}

	return &ParsedCSV{Header: header, Rows: rows}, nil
}

// decodeUTF8 accepts UTF-8 with or without a byte-order mark and returns the
// text with the mark removed.
func decodeUTF8(content []byte) ([]byte, error) {
	if !utf8.Valid(content) {
		return nil, apperror.New(apperror.CodeDecodeError, "File cannot be read as UTF-8")
	}
	text, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), content)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeDecodeError, "File cannot be read as UTF-8", err)
	}
	return text, nil
}
