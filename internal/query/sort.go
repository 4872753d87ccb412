package query

import "fmt"

// Direction is a sort direction, "asc" or "desc".
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort describes the active sort key of a list view.
type Sort struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// Toggle returns the sort that results from clicking a column header:
// clicking the active column flips its direction, clicking a new column
// sorts by it descending.
func Toggle(current Sort, column string) Sort {
	if current.Column == column {
		if current.Direction == Desc {
			return Sort{Column: column, Direction: Asc}
		}
		return Sort{Column: column, Direction: Desc}
	}
	return Sort{Column: column, Direction: Desc}
}

// OrderClause resolves the sort into an ORDER BY fragment, validating the
// column against the view's whitelist. A zero Sort falls back to the given
// default clause.
func (s Sort) OrderClause(allowed map[string]string, fallback string) (string, error) {
	if s.Column == "" {
		return fallback, nil
	}
	column, ok := allowed[s.Column]
	if !ok {
		return "", fmt.Errorf("sort column %q is not allowed for this view", s.Column)
	}
	dir := s.Direction
	if dir != Asc && dir != Desc {
		dir = Desc
	}
	return column + " " + string(dir), nil
}
