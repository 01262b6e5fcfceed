package filter

import (
	"net/url"
)

// Query parameter names. Each is repeatable; the lists of one group are read
// position by position.
const (
	ParamStringColumn  = "filter_col"
	ParamStringValue   = "filter_val"
	ParamNumericColumn = "num_col"
	ParamNumericOp     = "num_op"
	ParamNumericValue  = "num_val"
	ParamDateColumn    = "date_col"
	ParamDateFrom      = "date_from"
	ParamDateTo        = "date_to"
)

// FromQuery reads the three filter groups from query values. When the lists
// of a group differ in length, positions missing from the shorter list are
// dropped instead of rejected.
func FromQuery(values url.Values) Set {
	var set Set

	cols, vals := values[ParamStringColumn], values[ParamStringValue]
	for i := 0; i < min(len(cols), len(vals)); i++ {
		set.Strings = append(set.Strings, StringFilter{Column: cols[i], Value: vals[i]})
	}

	cols, ops, vals := values[ParamNumericColumn], values[ParamNumericOp], values[ParamNumericValue]
	for i := 0; i < min(len(cols), len(ops), len(vals)); i++ {
		set.Numerics = append(set.Numerics, NumericFilter{Column: cols[i], Op: Operator(ops[i]), Value: vals[i]})
	}

	cols, froms, tos := values[ParamDateColumn], values[ParamDateFrom], values[ParamDateTo]
	for i, col := range cols {
		f := DateFilter{Column: col, From: at(froms, i), To: at(tos, i)}
		if f.From == "" && f.To == "" {
			continue
		}
		set.Dates = append(set.Dates, f)
	}

	return set
}

func at(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return ""
}
