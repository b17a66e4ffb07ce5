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

package datatable

import (
	"fmt"
	"strings"

	strip "github.com/grokify/html-strip-tags-go"
)

// sortValue is the comparable form of a cell for its column type.
type sortValue struct {
	null bool
	num  float64
	str  string
}

// cell caches the derived representations of one cell.
type cell struct {
	raw     any
	present bool
	display any
	search  string
	sort    sortValue
}

// Row is one record: the caller's backing object plus one cached cell per
// column, in column order.
type Row struct {
	Data  any
	cells []cell
}

// Store is the ordered set of rows of one table.
type Store struct {
	columns   []*Column
	rows      []Row
	detectors []TypeDetector
}

// NewStore returns an empty store over the given columns. A nil detector
// list selects DefaultTypeDetectors.
func NewStore(columns []*Column, detectors []TypeDetector) *Store {
	if detectors == nil {
		detectors = DefaultTypeDetectors()
	}
	return &Store{columns: columns, detectors: detectors}
}

// Len returns the number of rows.
func (s *Store) Len() int { return len(s.rows) }

// Columns returns the column descriptors.
func (s *Store) Columns() []*Column { return s.columns }

// Column returns the descriptor at idx.
func (s *Store) Column(idx int) (*Column, error) {
	if idx < 0 || idx >= len(s.columns) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColumn, idx)
	}
	return s.columns[idx], nil
}

// Data returns the backing object of a row.
func (s *Store) Data(row int) (any, error) {
	if row < 0 || row >= len(s.rows) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	return s.rows[row].Data, nil
}

// AddRow appends a row and returns its index.
func (s *Store) AddRow(data any) int {
	idx := len(s.rows)
	s.rows = append(s.rows, Row{Data: data, cells: make([]cell, len(s.columns))})
	for c := range s.columns {
		s.refreshCell(idx, c)
	}
	return idx
}

// AddRows appends rows in order and returns their indexes.
func (s *Store) AddRows(data []any) []int {
	out := make([]int, len(data))
	for i, d := range data {
		out[i] = s.AddRow(d)
	}
	return out
}

// Replace drops every row and loads data in its place. Detected column types
// are kept.
func (s *Store) Replace(data []any) {
	s.rows = s.rows[:0]
	s.AddRows(data)
}

// Clear removes every row.
func (s *Store) Clear() {
	s.rows = nil
}

// SetCell writes v into the backing object of one cell and refreshes the
// cached representations of that cell. A non-string written into a
// []string or map[string]string row widens it to []any or map[string]any.
func (s *Store) SetCell(row, col int, v any) error {
	if row < 0 || row >= len(s.rows) {
		return fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	if col < 0 || col >= len(s.columns) {
		return fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	data, err := s.columns[col].accessor.Set(s.rows[row].Data, v)
	if err != nil {
		return fmt.Errorf("set cell %d,%d: %w", row, col, err)
	}
	s.rows[row].Data = data
	// Other columns may read through the same object (e.g. render
	// functions looking at the whole row), so refresh the full row.
	for c := range s.columns {
		s.refreshCell(row, c)
	}
	return nil
}

// Invalidate recomputes the cache of a row after its backing object was
// changed by the caller.
func (s *Store) Invalidate(row int) error {
	if row < 0 || row >= len(s.rows) {
		return fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	for c := range s.columns {
		s.refreshCell(row, c)
	}
	return nil
}

// GetCell returns one representation of a cell. ModeRaw returns nil for an
// unresolvable cell, ModeSearch the empty string and ModeSort nil.
func (s *Store) GetCell(row, col int, mode CellMode) (any, error) {
	if row < 0 || row >= len(s.rows) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	if col < 0 || col >= len(s.columns) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	c := &s.rows[row].cells[col]
	switch mode {
	case ModeRaw, ModeType:
		return c.raw, nil
	case ModeDisplay:
		return c.display, nil
	case ModeSearch:
		return c.search, nil
	case ModeSort:
		if c.sort.null {
			return nil, nil
		}
		if s.columns[col].Type == TypeNumeric || s.columns[col].Type == TypeDate {
			return c.sort.num, nil
		}
		return c.sort.str, nil
	default:
		return nil, fmt.Errorf("unknown cell mode %d", mode)
	}
}

// Value returns a cell as a typed Value with its display string.
func (s *Store) Value(row, col int) (Value, error) {
	if _, err := s.GetCell(row, col, ModeRaw); err != nil {
		return Value{}, err
	}
	c := &s.rows[row].cells[col]
	t := s.columns[col].Type
	if !c.present {
		v := NewNullValue(t)
		v.Formatted = displayString(c.display)
		return v, nil
	}
	v := NewValue(c.raw, t)
	v.Formatted = displayString(c.display)
	return v, nil
}

// DisplayString returns the rendered display text of a cell, or "" when the
// row or column is out of range.
func (s *Store) DisplayString(row, col int) string {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.columns) {
		return ""
	}
	return displayString(s.rows[row].cells[col].display)
}

// columnNames returns the name of each column, or its title when unnamed.
func (s *Store) columnNames() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Name
		if out[i] == "" {
			out[i] = c.Title
		}
	}
	return out
}

// searchText joins the search forms of the searchable columns of a row.
func (s *Store) searchText(row int) string {
	var b strings.Builder
	for i, c := range s.columns {
		if !c.Searchable {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("  ")
		}
		b.WriteString(s.rows[row].cells[i].search)
	}
	return b.String()
}

func (s *Store) refreshCell(row, col int) {
	column := s.columns[col]
	r := &s.rows[row]
	raw, ok := column.accessor.Get(r.Data)

	c := cell{raw: raw, present: ok}
	switch {
	case ok && column.render != nil:
		c.display = column.render(raw, ModeDisplay, r.Data)
		c.search = normalizeSearch(formatValue(column.render(raw, ModeSearch, r.Data)))
	case ok:
		c.display = raw
		c.search = normalizeSearch(formatValue(raw))
	case column.DefaultContent != nil:
		c.display = *column.DefaultContent
		c.search = normalizeSearch(*column.DefaultContent)
	default:
		c.display = ""
		c.search = ""
	}
	r.cells[col] = c

	if ok && column.AutoType() {
		if str := strings.TrimSpace(formatValue(raw)); str != "" {
			column.Type = detectRaw(s.detectors, raw)
			column.autoType = false
			for i := range s.rows {
				s.rows[i].cells[col].sort = sortKeyFor(column.Type, s.rows[i].cells[col])
			}
			return
		}
	}
	r.cells[col].sort = sortKeyFor(column.Type, c)
}

// sortKeyFor derives the comparable key of a cell for a column type.
func sortKeyFor(t DataType, c cell) sortValue {
	if !c.present {
		return sortValue{null: true}
	}
	switch t {
	case TypeNumeric:
		if f, ok := toNumber(c.raw); ok {
			return sortValue{num: f}
		}
		return sortValue{null: true}
	case TypeDate:
		if ts, ok := toTime(c.raw); ok {
			return sortValue{num: float64(ts.UnixNano())}
		}
		return sortValue{null: true}
	default:
		return sortValue{str: stripMarkup(formatValue(c.raw))}
	}
}

// normalizeSearch produces the search form: markup removed, whitespace
// collapsed to single spaces and trimmed.
func normalizeSearch(s string) string {
	return strings.Join(strings.Fields(stripMarkup(s)), " ")
}

func stripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	return strip.StripTags(s)
}

func displayString(v any) string {
	return formatValue(v)
}
