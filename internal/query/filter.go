package query

import (
	"fmt"
	"strings"
)

// Operator identifies a single comparison inside a filter condition.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNotEq    Operator = "neq"
	OpIn       Operator = "in"
	OpContains Operator = "contains"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
)

// Condition is one field constraint. A condition with multiple values and
// OpIn matches any of them (OR within the field); conditions in a Filter are
// combined with AND.
type Condition struct {
	Column string        `json:"column"`
	Op     Operator      `json:"op"`
	Values []interface{} `json:"values"`
}

// Filter is the structured replacement for hand-built predicate strings:
// every value travels as a bind argument, never as concatenated SQL.
type Filter struct {
	Conditions []Condition `json:"conditions"`
}

// Eq returns a single-value equality condition.
func Eq(column string, value interface{}) Condition {
	return Condition{Column: column, Op: OpEq, Values: []interface{}{value}}
}

// In returns a multi-select condition matching any of the given values.
func In(column string, values ...interface{}) Condition {
	return Condition{Column: column, Op: OpIn, Values: values}
}

// Contains returns a case-insensitive substring condition.
func Contains(column string, value string) Condition {
	return Condition{Column: column, Op: OpContains, Values: []interface{}{value}}
}

// Gte returns a lower-bound condition (inclusive).
func Gte(column string, value interface{}) Condition {
	return Condition{Column: column, Op: OpGte, Values: []interface{}{value}}
}

// Lte returns an upper-bound condition (inclusive).
func Lte(column string, value interface{}) Condition {
	return Condition{Column: column, Op: OpLte, Values: []interface{}{value}}
}

// Build translates the filter into a parameterized SQL fragment and its bind
// arguments. Columns are resolved through the allowed map (logical key ->
// physical column); an unknown column or operator is an error, not a silently
// dropped constraint. An empty filter yields an empty clause.
func (f Filter) Build(allowed map[string]string) (string, []interface{}, error) {
	if len(f.Conditions) == 0 {
		return "", nil, nil
	}

	parts := make([]string, 0, len(f.Conditions))
	args := make([]interface{}, 0, len(f.Conditions))

	for _, cond := range f.Conditions {
		column, ok := allowed[cond.Column]
		if !ok {
			return "", nil, fmt.Errorf("filter column %q is not allowed for this view", cond.Column)
		}
		if len(cond.Values) == 0 {
			return "", nil, fmt.Errorf("filter column %q has no values", cond.Column)
		}

		switch cond.Op {
		case OpEq:
			parts = append(parts, column+" = ?")
			args = append(args, cond.Values[0])
		case OpNotEq:
			parts = append(parts, column+" <> ?")
			args = append(args, cond.Values[0])
		case OpIn:
			parts = append(parts, column+" IN ?")
			args = append(args, cond.Values)
		case OpContains:
			s, ok := cond.Values[0].(string)
			if !ok {
				return "", nil, fmt.Errorf("filter column %q: contains requires a string value", cond.Column)
			}
			parts = append(parts, column+" ILIKE ?")
			args = append(args, "%"+escapeLike(s)+"%")
		case OpGte:
			parts = append(parts, column+" >= ?")
			args = append(args, cond.Values[0])
		case OpLte:
			parts = append(parts, column+" <= ?")
			args = append(args, cond.Values[0])
		default:
			return "", nil, fmt.Errorf("filter column %q: unknown operator %q", cond.Column, cond.Op)
		}
	}

	return strings.Join(parts, " AND "), args, nil
}

// escapeLike neutralizes LIKE wildcards inside user-supplied search text so a
// search for "100%" does not match everything.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
