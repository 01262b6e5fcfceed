package filter

import (
	"fmt"
	"strings"
)

// PayloadColumn is the qualified JSON text column every clause reads from.
const PayloadColumn = "expense_rows.row_data"

// Dialect describes how one database extracts and casts a JSON field.
type Dialect struct {
	Name        string
	fieldExpr   string
	numericCast string
	dateCast    string
	valueSearch string
	keyArg      func(column string) interface{}
}

var Postgres = Dialect{
	Name:        "postgres",
	fieldExpr:   "(" + PayloadColumn + "::jsonb ->> ?)",
	numericCast: "CAST(%s AS NUMERIC)",
	dateCast:    "CAST(%s AS DATE)",
	valueSearch: "EXISTS (SELECT 1 FROM jsonb_each_text(" + PayloadColumn + "::jsonb) AS kv(key, value) " +
		"WHERE LOWER(kv.value) LIKE LOWER(?) ESCAPE '\\')",
	keyArg: func(column string) interface{} { return column },
}

var SQLite = Dialect{
	Name:        "sqlite",
	fieldExpr:   "json_extract(" + PayloadColumn + ", ?)",
	numericCast: "CAST(%s AS REAL)",
	dateCast:    "date(%s)",
	valueSearch: "EXISTS (SELECT 1 FROM json_each(" + PayloadColumn + ") AS kv " +
		"WHERE LOWER(kv.value) LIKE LOWER(?) ESCAPE '\\')",
	keyArg: func(column string) interface{} {
		return `$."` + strings.ReplaceAll(column, `"`, `\"`) + `"`
	},
}

// DialectFor picks the dialect for a GORM dialector name.
func DialectFor(name string) Dialect {
	if name == Postgres.Name {
		return Postgres
	}
	return SQLite
}

func (d Dialect) field() string {
	return d.fieldExpr
}

func (d Dialect) key(column string) interface{} {
	return d.keyArg(column)
}

// search matches one bound LIKE pattern against every value of the row,
// never against its column names.
func (d Dialect) search() string {
	return d.valueSearch
}

func (d Dialect) numeric(expr string) string {
	return fmt.Sprintf(d.numericCast, expr)
}

func (d Dialect) date(expr string) string {
	return fmt.Sprintf(d.dateCast, expr)
}
