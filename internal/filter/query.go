// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// CompOp is a comparison operator of a query expression.
type CompOp int

const (
	OpEqual CompOp = iota
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
	OpContains
)

var opSymbols = []struct {
	op     CompOp
	symbol string
}{
	// Longer symbols first so ">=" is not read as ">".
	{OpGreaterEqual, ">="},
	{OpLessEqual, "<="},
	{OpNotEqual, "!="},
	{OpEqual, "="},
	{OpGreater, ">"},
	{OpLess, "<"},
	{OpContains, "~"},
}

func (op CompOp) String() string {
	for _, s := range opSymbols {
		if s.op == op {
			return s.symbol
		}
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Comparison tests one column against a literal. An empty Column means
// "any column contains Value".
type Comparison struct {
	Column   string
	Operator CompOp
	Value    string
}

// Evaluate implements Predicate.
func (c *Comparison) Evaluate(row []string, columnNames []string) (bool, error) {
	if c.Column == "" {
		needle := strings.ToLower(c.Value)
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell), needle) {
				return true, nil
			}
		}
		return false, nil
	}

	idx := columnIndex(columnNames, c.Column)
	if idx < 0 || idx >= len(row) {
		return false, nil
	}
	cell := row[idx]

	switch c.Operator {
	case OpEqual:
		return strings.EqualFold(cell, c.Value), nil
	case OpNotEqual:
		return !strings.EqualFold(cell, c.Value), nil
	case OpContains:
		return strings.Contains(strings.ToLower(cell), strings.ToLower(c.Value)), nil
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		return compare(cell, c.Value, c.Operator), nil
	default:
		return false, fmt.Errorf("%w: unknown operator %d", ErrInvalidQuery, c.Operator)
	}
}

// Description implements Predicate.
func (c *Comparison) Description() string {
	if c.Column == "" {
		return fmt.Sprintf("any ~ %q", c.Value)
	}
	return fmt.Sprintf("%s %s %q", c.Column, c.Operator, c.Value)
}

// ParseQuery parses expressions such as `age >= 30 AND name ~ bo OR city = Oslo`
// into a predicate. AND binds tighter than OR. A bare word without an
// operator matches any column containing it. An empty query yields nil.
func ParseQuery(query string, columnNames []string) (Predicate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	words := splitLogic(query)
	or := &CompositeFilter{Logic: LogicOR}
	and := &CompositeFilter{Logic: LogicAND}
	expectExpr := true

	for _, w := range words {
		if w.op {
			if expectExpr {
				return nil, fmt.Errorf("%w: %s without a left operand", ErrInvalidQuery, w.text)
			}
			if w.text == "OR" {
				or.Filters = append(or.Filters, and)
				and = &CompositeFilter{Logic: LogicAND}
			}
			expectExpr = true
			continue
		}
		if !expectExpr {
			return nil, fmt.Errorf("%w: missing AND/OR before %q", ErrInvalidQuery, w.text)
		}
		cmp, err := parseComparison(w.text, columnNames)
		if err != nil {
			return nil, err
		}
		and.Filters = append(and.Filters, cmp)
		expectExpr = false
	}
	if expectExpr {
		return nil, fmt.Errorf("%w: dangling operator", ErrInvalidQuery)
	}
	or.Filters = append(or.Filters, and)

	return simplify(or), nil
}

func simplify(p Predicate) Predicate {
	c, ok := p.(*CompositeFilter)
	if !ok {
		return p
	}
	for i, f := range c.Filters {
		c.Filters[i] = simplify(f)
	}
	if len(c.Filters) == 1 {
		return c.Filters[0]
	}
	return c
}

func parseComparison(expr string, columnNames []string) (*Comparison, error) {
	for _, s := range opSymbols {
		idx := strings.Index(expr, s.symbol)
		if idx <= 0 {
			continue
		}
		col := strings.TrimSpace(expr[:idx])
		if columnIndex(columnNames, col) < 0 {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidQuery, col)
		}
		return &Comparison{
			Column:   col,
			Operator: s.op,
			Value:    strings.Trim(strings.TrimSpace(expr[idx+len(s.symbol):]), "\"'"),
		}, nil
	}
	return &Comparison{Operator: OpContains, Value: strings.Trim(expr, "\"'")}, nil
}

type word struct {
	text string
	op   bool
}

// splitLogic splits on whitespace-delimited AND/OR keywords, case-insensitive.
func splitLogic(query string) []word {
	var out []word
	var cur []string
	flush := func() {
		if len(cur) > 0 {
			out = append(out, word{text: strings.Join(cur, " ")})
			cur = cur[:0]
		}
	}
	for _, f := range strings.Fields(query) {
		switch u := strings.ToUpper(f); u {
		case "AND", "OR":
			flush()
			out = append(out, word{text: u, op: true})
		default:
			cur = append(cur, f)
		}
	}
	flush()
	return out
}

func columnIndex(columnNames []string, name string) int {
	for i, c := range columnNames {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

func compare(cell, value string, op CompOp) bool {
	a, err1 := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	b, err2 := strconv.ParseFloat(strings.TrimSpace(value), 64)
	var cmp int
	if err1 != nil || err2 != nil {
		cmp = strings.Compare(strings.ToLower(cell), strings.ToLower(value))
	} else {
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	}

	switch op {
	case OpGreater:
		return cmp > 0
	case OpLess:
		return cmp < 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpLessEqual:
		return cmp <= 0
	}
	return false
}
