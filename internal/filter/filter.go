// Package filter turns expense query parameters into a parameterized SQL
// predicate over the JSON row payload of expense_rows.
//
// Three groups are supported and ANDed together:
//
//   - string:  column contains any of a comma-separated list of values
//     (case-insensitive)
//   - numeric: column compared with gt, lt, ge, le, eq or between min,max
//   - date:    column within an inclusive from/to range, either bound optional
//
// Every literal, column names included, is bound as an argument. Predicate
// text never contains caller input.
package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
)

type Operator string

const (
	OpGT      Operator = "gt"
	OpLT      Operator = "lt"
	OpGE      Operator = "ge"
	OpLE      Operator = "le"
	OpEQ      Operator = "eq"
	OpBetween Operator = "between"
)

var comparators = map[Operator]string{
	OpGT: ">",
	OpLT: "<",
	OpGE: ">=",
	OpLE: "<=",
	OpEQ: "=",
}

const dateLayout = "2006-01-02"

type StringFilter struct {
	Column string
	Value  string
}

type NumericFilter struct {
	Column string
	Op     Operator
	Value  string
}

type DateFilter struct {
	Column string
	From   string
	To     string
}

// Set is the full filter input of one query. Search, when set, keeps rows
// where any value contains it, case-insensitively. Column names are not
// searched.
type Set struct {
	Strings  []StringFilter
	Numerics []NumericFilter
	Dates    []DateFilter
	Search   string
}

type Predicate struct {
	SQL  string
	Args []interface{}
}

func (p Predicate) IsEmpty() bool {
	return p.SQL == ""
}

// Build renders set as one conjunctive predicate for dialect d. Filters with a
// missing column or value emit no clause.
func Build(set Set, d Dialect) (Predicate, error) {
	var conds sq.And

	for _, f := range set.Strings {
		if c := stringClause(f, d); c != nil {
			conds = append(conds, c)
		}
	}
	for _, f := range set.Numerics {
		c, err := numericClause(f, d)
		if err != nil {
			return Predicate{}, err
		}
		if c != nil {
			conds = append(conds, c)
		}
	}
	for _, f := range set.Dates {
		c, err := dateClause(f, d)
		if err != nil {
			return Predicate{}, err
		}
		if c != nil {
			conds = append(conds, c)
		}
	}
	if search := strings.TrimSpace(set.Search); search != "" {
		conds = append(conds, sq.Expr(d.search(), containsPattern(search)))
	}

	if len(conds) == 0 {
		return Predicate{}, nil
	}

	sql, args, err := conds.ToSql()
	if err != nil {
		return Predicate{}, fmt.Errorf("failed to render filter predicate: %w", err)
	}
	return Predicate{SQL: sql, Args: args}, nil
}

func stringClause(f StringFilter, d Dialect) sq.Sqlizer {
	if f.Column == "" {
		return nil
	}
	var alternatives sq.Or
	for _, v := range strings.Split(f.Value, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		alternatives = append(alternatives, sq.Expr(
			"LOWER("+d.field()+") LIKE LOWER(?) ESCAPE '\\'",
			d.key(f.Column), containsPattern(v),
		))
	}
	if len(alternatives) == 0 {
		return nil
	}
	return alternatives
}

func numericClause(f NumericFilter, d Dialect) (sq.Sqlizer, error) {
	op := Operator(strings.ToLower(strings.TrimSpace(string(f.Op))))
	if f.Column == "" || op == "" {
		return nil, nil
	}
	if _, ok := comparators[op]; !ok && op != OpBetween {
		return nil, apperror.New(apperror.CodeInvalidOperator, fmt.Sprintf("Unsupported numeric operator %q", f.Op))
	}
	value := strings.TrimSpace(f.Value)
	if value == "" {
		return nil, nil
	}

	field := d.numeric(d.field())
	if op == OpBetween {
		bounds := strings.Split(value, ",")
		if len(bounds) != 2 {
			return nil, apperror.New(apperror.CodeInvalidFilterValue, fmt.Sprintf("between on %q needs min,max", f.Column))
		}
		lo, err := parseNumber(f.Column, bounds[0])
		if err != nil {
			return nil, err
		}
		hi, err := parseNumber(f.Column, bounds[1])
		if err != nil {
			return nil, err
		}
		return sq.Expr(field+" BETWEEN ? AND ?", d.key(f.Column), lo, hi), nil
	}

	n, err := parseNumber(f.Column, value)
	if err != nil {
		return nil, err
	}
	return sq.Expr(field+" "+comparators[op]+" ?", d.key(f.Column), n), nil
}

func dateClause(f DateFilter, d Dialect) (sq.Sqlizer, error) {
	from, to := strings.TrimSpace(f.From), strings.TrimSpace(f.To)
	if f.Column == "" || (from == "" && to == "") {
		return nil, nil
	}
	for _, bound := range []string{from, to} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, bound); err != nil {
			return nil, apperror.New(apperror.CodeInvalidFilterValue,
				fmt.Sprintf("Date bound %q on %q must be YYYY-MM-DD", bound, f.Column))
		}
	}

	field := d.date(d.field())
	bound := d.date("?")
	switch {
	case from != "" && to != "":
		return sq.Expr(field+" BETWEEN "+bound+" AND "+bound, d.key(f.Column), from, to), nil
	case from != "":
		return sq.Expr(field+" >= "+bound, d.key(f.Column), from), nil
	default:
		return sq.Expr(field+" <= "+bound, d.key(f.Column), to), nil
	}
}

func parseNumber(column, raw string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, apperror.New(apperror.CodeInvalidFilterValue, fmt.Sprintf("Value %q on %q is not a number", raw, column))
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(v string) string {
	return "%" + likeEscaper.Replace(v) + "%"
}
