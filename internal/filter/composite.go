package filter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidQuery is returned for malformed query expressions and unknown
// logic operators.
var ErrInvalidQuery = errors.New("invalid query expression")

// Predicate decides whether one row passes. The row is given as one string
// per column, aligned with columnNames.
type Predicate interface {
	Evaluate(row []string, columnNames []string) (bool, error)
	Description() string
}

// LogicOp represents a logical operator for combining filters.
type LogicOp int

const (
	// LogicAND requires all filters to pass.
	LogicAND LogicOp = iota
	// LogicOR requires at least one filter to pass.
	LogicOR
)

// String returns the string representation of a LogicOp.
func (op LogicOp) String() string {
	switch op {
	case LogicAND:
		return "AND"
	case LogicOR:
		return "OR"
	default:
		return fmt.Sprintf("unknown(%d)", op)
	}
}

// CompositeFilter combines multiple predicates with AND or OR logic.
type CompositeFilter struct {
	Filters []Predicate
	Logic   LogicOp
}

// Evaluate implements Predicate. An empty composite passes every row.
func (f *CompositeFilter) Evaluate(row []string, columnNames []string) (bool, error) {
	if len(f.Filters) == 0 {
		return true, nil
	}

	switch f.Logic {
	case LogicAND:
		for _, p := range f.Filters {
			passes, err := p.Evaluate(row, columnNames)
			if err != nil {
				return false, err
			}
			if !passes {
				return false, nil
			}
		}
		return true, nil

	case LogicOR:
		for _, p := range f.Filters {
			passes, err := p.Evaluate(row, columnNames)
			if err != nil {
				return false, err
			}
			if passes {
				return true, nil
			}
		}
		return false, nil

	default:
		return false, fmt.Errorf("%w: unknown logic operator %d", ErrInvalidQuery, f.Logic)
	}
}

// Description implements Predicate.
func (f *CompositeFilter) Description() string {
	if len(f.Filters) == 0 {
		return "empty filter"
	}

	descriptions := make([]string, len(f.Filters))
	for i, p := range f.Filters {
		descriptions[i] = p.Description()
	}
	return "(" + strings.Join(descriptions, " "+f.Logic.String()+" ") + ")"
}
