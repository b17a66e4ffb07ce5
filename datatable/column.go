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
	"slices"
	"strings"

	"dtb/internal/script"
)

// RenderFunc produces the representation of a cell for the given mode.
// data is the value resolved by the column accessor, row the backing object.
type RenderFunc func(data any, mode CellMode, row any) any

// Column is the static description of one column. Everything except the
// visibility flag is fixed once the table is set up.
type Column struct {
	Index      int
	Name       string
	Title      string
	ClassName  string
	Type       DataType
	Visible    bool
	Sortable   bool
	Searchable bool

	// SortDirections is the cycle applied when the column header is toggled.
	SortDirections []SortDirection

	// DataSort lists the columns whose values are compared when this
	// column is sorted. It defaults to the column itself.
	DataSort []int

	// DefaultContent is shown when the accessor cannot resolve a value.
	DefaultContent *string

	accessor   Accessor
	customData bool
	render     RenderFunc
	autoType   bool
}

// NewColumn returns a column with the default flags, reading element idx.
func NewColumn(idx int) *Column {
	return &Column{
		Index:          idx,
		Visible:        true,
		Sortable:       true,
		Searchable:     true,
		SortDirections: []SortDirection{SortAscending, SortDescending},
		DataSort:       []int{idx},
		accessor:       ByIndex(idx),
		autoType:       true,
	}
}

// Accessor returns the resolved data accessor.
func (c *Column) Accessor() Accessor { return c.accessor }

// HasRender reports whether a render transform is configured.
func (c *Column) HasRender() bool { return c.render != nil }

// AutoType reports whether the column type is still being detected.
func (c *Column) AutoType() bool { return c.autoType && c.Type == TypeUnset }

// SetAccessor replaces the accessor. Only meaningful before rows are added.
func (c *Column) SetAccessor(a Accessor) {
	c.accessor = a
	c.customData = true
}

// SetRender replaces the render transform.
func (c *Column) SetRender(fn RenderFunc) { c.render = fn }

// NextDirection returns the direction following cur in the column cycle.
func (c *Column) NextDirection(cur SortDirection) SortDirection {
	if len(c.SortDirections) == 0 {
		return SortNone
	}
	i := slices.Index(c.SortDirections, cur)
	if i < 0 || i == len(c.SortDirections)-1 {
		return c.SortDirections[0]
	}
	return c.SortDirections[i+1]
}

// applyOptions overlays the set fields of o onto the column.
func (c *Column) applyOptions(o ColumnOptions) error {
	if o.Title != nil {
		c.Title = *o.Title
	}
	if o.Name != nil {
		c.Name = *o.Name
	}
	if o.ClassName != nil {
		c.ClassName = *o.ClassName
	}
	if o.Type != nil {
		t, ok := ParseDataType(*o.Type)
		if !ok {
			return fmt.Errorf("%w: unknown column type %q", ErrInvalidConfig, *o.Type)
		}
		c.Type = t
		c.autoType = t == TypeUnset
	}
	if o.Visible != nil {
		c.Visible = *o.Visible
	}
	if o.Orderable != nil {
		c.Sortable = *o.Orderable
	}
	if o.Searchable != nil {
		c.Searchable = *o.Searchable
	}
	if o.OrderSequence != nil {
		dirs := make([]SortDirection, 0, len(o.OrderSequence))
		for _, s := range o.OrderSequence {
			if d := ParseSortDirection(s); d != SortNone {
				dirs = append(dirs, d)
			}
		}
		c.SortDirections = dirs
	}
	if o.OrderData != nil {
		c.DataSort = slices.Clone(o.OrderData)
	}
	if o.DefaultContent != nil {
		s := *o.DefaultContent
		c.DefaultContent = &s
	}
	if o.Data != nil {
		a, err := AccessorFromOption(o.Data, c.Index)
		if err != nil {
			return err
		}
		c.accessor = a
		c.customData = true
	}
	if o.DataScript != "" {
		get, err := script.CompileGetter(o.DataScript)
		if err != nil {
			return fmt.Errorf("%w: column %d data script: %w", ErrInvalidConfig, c.Index, err)
		}
		c.accessor = ByFunc(func(row any) (any, bool) {
			v := get(row)
			return v, v != nil
		}, nil)
		c.customData = true
	}
	if o.Render != nil {
		path, ok := o.Render.(string)
		if !ok {
			return fmt.Errorf("%w: render must be a key path, got %T", ErrInvalidConfig, o.Render)
		}
		inner := ByKeyPath(path)
		c.render = func(data any, _ CellMode, _ any) any {
			v, _ := inner.Get(data)
			return v
		}
	}
	if o.RenderScript != "" {
		fn, err := CompileRenderScript(o.RenderScript)
		if err != nil {
			return fmt.Errorf("%w: column %d render script: %w", ErrInvalidConfig, c.Index, err)
		}
		c.render = fn
	}
	return nil
}

// CompileRenderScript compiles the body of a Go render function. The body
// sees data, mode ("display", "filter", "sort" or "type") and row.
func CompileRenderScript(body string) (RenderFunc, error) {
	fn, err := script.CompileRender(body)
	if err != nil {
		return nil, err
	}
	return func(data any, mode CellMode, row any) any {
		return fn(data, mode.String(), row)
	}, nil
}

// buildColumns creates the column set from the column defaults, the column
// definitions and the per-column options, in increasing priority. names
// supplies titles for columns that have none, typically from the data source.
func buildColumns(cfg Config, names []string, log *Logger) ([]*Column, error) {
	n := max(len(cfg.Columns), len(names))
	cols := make([]*Column, 0, n)
	add := func() *Column {
		c := NewColumn(len(cols))
		if err := c.applyOptions(cfg.Column); err != nil {
			log.Warn("column defaults rejected", "error", err)
		}
		cols = append(cols, c)
		return c
	}
	for range n {
		add()
	}
	for i, name := range names {
		if cols[i].Title == "" {
			cols[i].Title = name
		}
		if cols[i].Name == "" {
			cols[i].Name = name
		}
	}

	// Names and classes are known before the definitions are matched
	// against them.
	for i, o := range cfg.Columns {
		if o.Name != nil {
			cols[i].Name = *o.Name
		}
		if o.ClassName != nil {
			cols[i].ClassName = *o.ClassName
		}
	}

	// Walk the definitions backwards so the first definition targeting a
	// column is applied last and wins.
	for i := len(cfg.ColumnDefs) - 1; i >= 0; i-- {
		def := cfg.ColumnDefs[i]
		targets, ok := targetList(def.Targets)
		if !ok {
			log.Warn("targets must be a list of targets", "definition", i, "got", fmt.Sprintf("%T", def.Targets))
			continue
		}
		for _, t := range targets {
			for _, idx := range resolveTarget(t, &cols, add) {
				if err := cols[idx].applyOptions(def.ColumnOptions); err != nil {
					return nil, err
				}
			}
		}
	}

	for i, o := range cfg.Columns {
		if err := cols[i].applyOptions(o); err != nil {
			return nil, err
		}
	}

	if !cfg.Ordering {
		for _, c := range cols {
			c.Sortable = false
		}
	}
	for _, c := range cols {
		c.DataSort = slices.DeleteFunc(c.DataSort, func(d int) bool { return d < 0 || d >= len(cols) })
	}
	return cols, nil
}

// resolveTarget maps one target to column indexes. Non-negative numbers
// beyond the current column count add columns; negative numbers count from
// the right; strings match "_all", a column name or a class name.
func resolveTarget(t any, cols *[]*Column, add func() *Column) []int {
	switch v := t.(type) {
	case float64:
		return resolveTarget(int(v), cols, add)
	case int64:
		return resolveTarget(int(v), cols, add)
	case int:
		if v >= 0 {
			for len(*cols) <= v {
				add()
			}
			return []int{v}
		}
		if i := len(*cols) + v; i >= 0 {
			return []int{i}
		}
		return nil
	case string:
		var out []int
		for i, c := range *cols {
			if v == "_all" || c.Name == v || slices.Contains(strings.Fields(c.ClassName), v) {
				out = append(out, i)
			}
		}
		return out
	default:
		return nil
	}
}

func targetList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []int:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}
