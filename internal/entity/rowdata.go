package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
)

// RowData is one CSV data line keyed by column name. Key order follows the
// header it was built from and survives JSON encoding, so exports can rebuild
// the header from a stored row.
type RowData struct {
	keys   []string
	values map[string]string
}

// NewRowData zips header with fields. Missing trailing fields become "".
func NewRowData(header, fields []string) RowData {
	r := RowData{
		keys:   make([]string, 0, len(header)),
		values: make(map[string]string, len(header)),
	}
	for i, key := range header {
		value := ""
		if i < len(fields) {
			value = fields[i]
		}
		r.Set(key, value)
	}
	return r
}

// Set assigns value to key, appending key if it is new.
func (r *RowData) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r RowData) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r RowData) Keys() []string {
	return slices.Clone(r.keys)
}

func (r RowData) Len() int {
	return len(r.keys)
}

// MatchesHeader reports whether r holds exactly the columns of header, in
// header order.
func (r RowData) MatchesHeader(header []string) bool {
	return slices.Equal(r.keys, header)
}

func (r RowData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	encode := func(s string) ([]byte, error) {
		buf.Reset()
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
		return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
	}

	out := []byte{'{'}
	for i, key := range r.keys {
		if i > 0 {
			out = append(out, ',')
		}
		k, err := encode(key)
		if err != nil {
			return nil, err
		}
		out = append(out, k...)
		out = append(out, ':')
		v, err := encode(r.values[key])
		if err != nil {
			return nil, err
		}
		out = append(out, v...)
	}
	return append(out, '}'), nil
}

func (r *RowData) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("row data: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row data: expected a JSON object")
	}

	*r = RowData{values: make(map[string]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("row data: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("row data: unexpected key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("row data: value for %q: %w", key, err)
		}
		r.Set(key, rawString(raw))
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("row data: %w", err)
	}
	return nil
}

// rawString renders a JSON value as the cell text. Non-string values keep
// their JSON spelling; null becomes "".
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

func (RowData) GormDataType() string {
	return "text"
}

func (r RowData) Value() (driver.Value, error) {
	b, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *RowData) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalJSON([]byte(v))
	case []byte:
		return r.UnmarshalJSON(v)
	case nil:
		*r = RowData{}
		return nil
	default:
		return fmt.Errorf("row data: unsupported scan type %T", src)
	}
}
