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
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"dtb/internal/filter"
)

// Page actions accepted by Table.Page.
const (
	PageFirst    = "first"
	PagePrevious = "previous"
	PageNext     = "next"
	PageLast     = "last"
)

// Table is one table instance: its configuration, column set, rows and
// interaction state. A Table is not safe for concurrent use.
type Table struct {
	id       string
	cfg      Config
	opts     tableOptions
	store    *Store
	settings *Settings
	log      *Logger
	loaded   bool
}

// New creates a table from a configuration. Columns named by the
// configuration exist immediately; the first Load may add columns for the
// data source.
func New(cfg Config, opts ...Option) (*Table, error) {
	o := tableOptions{
		logger: NoopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	t := &Table{
		id:   o.id,
		cfg:  cfg,
		opts: o,
		log:  o.logger.WithTable(o.id),
	}
	if err := t.setup(nil, nil); err != nil {
		return nil, err
	}
	return t, nil
}

// Open creates a table and loads its rows from ds.
func Open(ctx context.Context, cfg Config, ds DataSource, opts ...Option) (*Table, error) {
	t, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := t.Load(ctx, ds); err != nil {
		return nil, err
	}
	return t, nil
}

// setup (re)builds the column set and the interaction state.
func (t *Table) setup(names []string, ds DataSource) error {
	cols, err := buildColumns(t.cfg, names, t.log)
	if err != nil {
		return err
	}
	for i, a := range t.opts.accessors {
		if i >= 0 && i < len(cols) {
			cols[i].SetAccessor(a)
		}
	}
	for i, fn := range t.opts.renders {
		if i >= 0 && i < len(cols) {
			cols[i].SetRender(fn)
		}
	}

	if ks, ok := ds.(interface{ KeyedByName() bool }); ok && ks.KeyedByName() {
		for i, c := range cols {
			if !c.customData && i < len(names) {
				c.accessor = ByKey(names[i])
			}
		}
	}
	if ts, ok := ds.(TypedSource); ok {
		for i, c := range cols {
			if !c.AutoType() {
				continue
			}
			if dt, err := ts.ColumnType(i); err == nil && dt != TypeUnset {
				c.Type = dt
				c.autoType = false
			}
		}
	}

	t.store = NewStore(cols, t.opts.detectors)
	t.settings = newSettings(t.cfg, len(cols))
	return nil
}

// ID returns the instance id.
func (t *Table) ID() string { return t.id }

// Config returns the configuration the table was built from.
func (t *Table) Config() Config { return t.cfg }

// Store returns the row store.
func (t *Table) Store() *Store { return t.store }

// Settings returns the live interaction state.
func (t *Table) Settings() *Settings { return t.settings }

// Columns returns the column descriptors.
func (t *Table) Columns() []*Column { return t.store.columns }

// Logger returns the table's logger.
func (t *Table) Logger() *Logger { return t.log }

// Log reports a problem through the table's logging channel.
func (t *Table) Log(level LogLevel, msg string, args ...any) {
	t.log.Log(context.Background(), level.slog(), msg, args...)
}

// Load replaces every row with the rows of ds. The first load also takes
// the column set from the source.
func (t *Table) Load(ctx context.Context, ds DataSource) error {
	if ds == nil {
		return ErrNoDataSource
	}
	rows, err := ds.Rows(ctx)
	if err != nil {
		err = fmt.Errorf("load rows: %w", err)
		t.log.LogLoad(ctx, 0, 0, err)
		return err
	}
	if !t.loaded {
		if err := t.setup(ds.ColumnNames(), ds); err != nil {
			t.log.LogLoad(ctx, 0, 0, err)
			return err
		}
		t.loaded = true
	}
	t.store.Replace(rows)
	t.log.LogLoad(ctx, len(rows), len(t.store.columns), nil)
	return nil
}

// AddRow appends one row and returns its index.
func (t *Table) AddRow(data any) int { return t.store.AddRow(data) }

// AddRows appends rows and returns their indexes.
func (t *Table) AddRows(data []any) []int { return t.store.AddRows(data) }

// SetCell overwrites one cell of a row's backing data.
func (t *Table) SetCell(row, col int, v any) error {
	if err := t.store.SetCell(row, col, v); err != nil {
		t.Log(LogWarn, "cell not written", "row", row, "column", col, "error", err)
		return err
	}
	return nil
}

// GetCell returns one representation of a cell.
func (t *Table) GetCell(row, col int, mode CellMode) (any, error) {
	return t.store.GetCell(row, col, mode)
}

// Search sets the global search term, keeping the matching flags, and
// returns to the first page.
func (t *Table) Search(term string) {
	t.settings.Search.Term = term
	t.settings.Start = 0
}

// SetSearch replaces the global search including its flags.
func (t *Table) SetSearch(s Search) {
	t.settings.Search = s
	t.settings.Start = 0
}

// SearchColumn sets the search term of one column.
func (t *Table) SearchColumn(col int, term string) error {
	if col < 0 || col >= len(t.store.columns) {
		return fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	t.settings.ensureColumns(len(t.store.columns))
	t.settings.ColumnSearch[col].Term = term
	t.settings.Start = 0
	return nil
}

// SetQuery sets the expression filter, for example "age >= 30 AND city = Oslo".
// An empty query removes it.
func (t *Table) SetQuery(q string) error {
	if _, err := filter.ParseQuery(q, t.store.columnNames()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	t.settings.Query = q
	t.settings.Start = 0
	return nil
}

// Order replaces the sort spec.
func (t *Table) Order(spec SortSpec) {
	t.settings.Order = append(SortSpec(nil), spec...)
}

// ToggleSort applies a header activation on col. Without multi the column
// becomes the only sort key, its direction cycling when it already was.
// With multi the column is appended to the spec, or its direction cycled
// when present.
func (t *Table) ToggleSort(col int, multi bool) error {
	c, err := t.store.Column(col)
	if err != nil {
		return err
	}
	if !c.Sortable || len(c.SortDirections) == 0 {
		t.Log(LogWarn, "column is not sortable", "column", col)
		return fmt.Errorf("%w: %d", ErrInvalidSortColumn, col)
	}

	spec := t.settings.Order
	i := spec.IndexOf(col)
	switch {
	case multi && i >= 0:
		spec[i].Direction = c.NextDirection(spec[i].Direction)
	case multi:
		spec = append(spec, SortKey{Column: col, Direction: c.SortDirections[0]})
	case len(spec) == 1 && i == 0:
		spec[0].Direction = c.NextDirection(spec[0].Direction)
	default:
		spec = SortSpec{{Column: col, Direction: c.SortDirections[0]}}
	}
	t.settings.Order = spec
	return nil
}

// Page moves to another page: "first", "previous", "next", "last" or a
// zero-based page number.
func (t *Table) Page(action string) error {
	v := t.Draw()
	if v.Length == ShowAll {
		t.settings.Start = 0
		return nil
	}
	last := (v.PageCount() - 1) * v.Length
	switch action {
	case PageFirst:
		t.settings.Start = 0
	case PagePrevious:
		t.settings.Start = max(v.Start-v.Length, 0)
	case PageNext:
		t.settings.Start = min(v.Start+v.Length, last)
	case PageLast:
		t.settings.Start = last
	default:
		n, err := strconv.Atoi(action)
		if err != nil || n < 0 {
			t.Log(LogWarn, "unknown paging action", "action", action)
			return fmt.Errorf("unknown paging action %q", action)
		}
		t.settings.Start = min(n*v.Length, last)
	}
	return nil
}

// SetPageLength changes the page size, keeping the first shown row on the
// new page. ShowAll disables paging.
func (t *Table) SetPageLength(n int) {
	if n <= 0 {
		n = ShowAll
	}
	t.settings.Length = n
	if n == ShowAll {
		t.settings.Start = 0
		return
	}
	t.settings.Start = t.settings.Start / n * n
}

// SetRender replaces the renderer of a column and recomputes every row.
// A nil fn removes it.
func (t *Table) SetRender(col int, fn RenderFunc) error {
	c, err := t.store.Column(col)
	if err != nil {
		return err
	}
	c.SetRender(fn)
	for row := range t.store.Len() {
		if err := t.store.Invalidate(row); err != nil {
			return err
		}
	}
	return nil
}

// SetVisible shows or hides a column.
func (t *Table) SetVisible(col int, visible bool) error {
	c, err := t.store.Column(col)
	if err != nil {
		return err
	}
	c.Visible = visible
	return nil
}

// VisibleColumns returns the indexes of the visible columns.
func (t *Table) VisibleColumns() []int {
	out := make([]int, 0, len(t.store.columns))
	for i, c := range t.store.columns {
		if c.Visible {
			out = append(out, i)
		}
	}
	return out
}

// Draw runs the pipeline over the current settings.
func (t *Table) Draw() View {
	v := Compute(t.store, t.settings, t.log)
	t.settings.Start = v.Start
	t.log.LogDraw(context.Background(), v)
	return v
}

// Cells returns the display strings of the visible columns for each row of
// the view's page.
func (t *Table) Cells(v View) [][]string {
	visible := t.VisibleColumns()
	out := make([][]string, len(v.Page))
	for i, r := range v.Page {
		row := make([]string, len(visible))
		for j, c := range visible {
			row[j] = t.store.DisplayString(r, c)
		}
		out[i] = row
	}
	return out
}

// Info returns the status line for a view.
func (t *Table) Info(v View) string {
	return InfoText(t.settings.Language, v)
}

// EmptyMessage returns the placeholder text for a view with no rows.
func (t *Table) EmptyMessage(v View) string {
	return EmptyMessage(t.settings.Language, v)
}

func (t *Table) now() time.Time { return t.opts.now() }
