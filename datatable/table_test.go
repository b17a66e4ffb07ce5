package datatable

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// peopleTable builds the three row scenario table: name in column 0, age in
// column 1.
func peopleTable(t *testing.T, opts ...Option) *Table {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Columns = []ColumnOptions{
		{Data: "n", Title: strPtr("Name")},
		{Data: "age", Title: strPtr("Age")},
	}
	cfg.Order = nil

	tbl, err := New(cfg, opts...)
	require.NoError(t, err)
	tbl.AddRows([]any{
		map[string]any{"n": "Bob", "age": 30},
		map[string]any{"n": "Al", "age": 25},
		map[string]any{"n": "Cy", "age": 25},
	})
	return tbl
}

func names(t *Table, rows []int) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = t.Store().DisplayString(r, 0)
	}
	return out
}

func TestEmptySearchMatchesAll(t *testing.T) {
	tbl := peopleTable(t)
	tbl.Search("")
	v := tbl.Draw()
	assert.Len(t, v.Filtered, tbl.Store().Len())
}

func TestSortAgeThenName(t *testing.T) {
	tbl := peopleTable(t)
	tbl.Order(SortSpec{{Column: 1, Direction: SortAscending}, {Column: 0, Direction: SortAscending}})

	v := tbl.Draw()
	assert.Equal(t, []string{"Al", "Cy", "Bob"}, names(tbl, v.Filtered))
}

func TestSmartSearchBo(t *testing.T) {
	tbl := peopleTable(t)
	tbl.Search("bo")

	v := tbl.Draw()
	assert.Equal(t, []string{"Bob"}, names(tbl, v.Filtered))
}

func TestPagination(t *testing.T) {
	tbl := peopleTable(t)
	tbl.Order(SortSpec{{Column: 1, Direction: SortAscending}, {Column: 0, Direction: SortAscending}})
	tbl.SetPageLength(2)

	v := tbl.Draw()
	assert.Equal(t, []string{"Al", "Cy"}, names(tbl, v.Page))
	assert.Equal(t, 0, v.PageIndex())
	assert.Equal(t, 2, v.PageCount())

	require.NoError(t, tbl.Page(PageNext))
	v = tbl.Draw()
	assert.Equal(t, []string{"Bob"}, names(tbl, v.Page))
	assert.Equal(t, 1, v.PageIndex())

	// Next on the last page stays there.
	require.NoError(t, tbl.Page(PageNext))
	assert.Equal(t, 2, tbl.Draw().Start)

	require.NoError(t, tbl.Page(PagePrevious))
	assert.Equal(t, 0, tbl.Draw().Start)

	require.NoError(t, tbl.Page(PageLast))
	assert.Equal(t, 2, tbl.Draw().Start)

	require.NoError(t, tbl.Page("0"))
	assert.Equal(t, 0, tbl.Draw().Start)

	assert.Error(t, tbl.Page("sideways"))

	tbl.SetPageLength(ShowAll)
	v = tbl.Draw()
	assert.Len(t, v.Page, 3)
	assert.Equal(t, 1, v.PageCount())
}

func TestSmartSearchIsAnd(t *testing.T) {
	tbl, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, tbl.Load(context.Background(), FromRecords(
		[]string{"item", "colour"},
		[][]string{
			{"shirt", "red"},
			{"shirt", "blue"},
			{"scarf", "red"},
			{"red shirt", "green"},
		},
	)))

	tbl.Order(nil)

	match := func(term string) []int {
		tbl.Search(term)
		return tbl.Draw().Filtered
	}

	both := match("red shirt")
	red := match("red")
	shirt := match("shirt")

	var want []int
	for _, r := range red {
		for _, s := range shirt {
			if r == s {
				want = append(want, r)
			}
		}
	}
	assert.Equal(t, want, both)
	assert.Equal(t, []int{0, 3}, both)
}

func TestSearchFlags(t *testing.T) {
	tbl, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, tbl.Load(context.Background(), FromRecords(
		[]string{"word"},
		[][]string{{"Alpha"}, {"beta"}, {"alphabet"}, {"gamma ray"}},
	)))
	tbl.Order(nil)

	tests := []struct {
		name   string
		search Search
		want   []int
	}{
		{"SmartCaseless", Search{Term: "ALPHA", Smart: true, CaseInsensitive: true}, []int{0, 2}},
		{"SmartCaseSensitive", Search{Term: "alpha", Smart: true}, []int{2}},
		{"Regex", Search{Term: "^a", Regex: true, CaseInsensitive: true}, []int{0, 2}},
		{"SmartRegex", Search{Term: "^g ray$", Regex: true, Smart: true}, []int{3}},
		{"Substring", Search{Term: "a r", CaseInsensitive: true}, []int{3}},
		{"QuotedPhrase", Search{Term: `"gamma ray"`, Smart: true}, []int{3}},
		{"LiteralMeta", Search{Term: "a.p", Smart: true}, nil},
		{"InvalidRegexIgnored", Search{Term: "(", Regex: true}, []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl.SetSearch(tt.search)
			got := tbl.Draw().Filtered
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnSearchIntersects(t *testing.T) {
	tbl := peopleTable(t)
	require.NoError(t, tbl.SearchColumn(1, "25"))
	assert.Equal(t, []string{"Al", "Cy"}, names(tbl, tbl.Draw().Filtered))

	tbl.Search("c")
	assert.Equal(t, []string{"Cy"}, names(tbl, tbl.Draw().Filtered))

	assert.ErrorIs(t, tbl.SearchColumn(7, "x"), ErrInvalidColumn)
}

func TestUnsearchableColumn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Columns = []ColumnOptions{{}, {Searchable: boolPtr(false)}}
	tbl, err := New(cfg)
	require.NoError(t, err)
	tbl.AddRows([]any{[]any{"a", "secret"}, []any{"secret", "b"}})

	tbl.Search("secret")
	assert.Equal(t, []int{1}, tbl.Draw().Filtered)
}

func TestQueryFilter(t *testing.T) {
	tbl := peopleTable(t)
	require.NoError(t, tbl.SetQuery("age < 30 AND name != al"))
	assert.Equal(t, []string{"Cy"}, names(tbl, tbl.Draw().Filtered))

	assert.ErrorIs(t, tbl.SetQuery("height > 3"), ErrInvalidFilter)
	require.NoError(t, tbl.SetQuery(""))
	assert.Len(t, tbl.Draw().Filtered, 3)
}

func TestSortStable(t *testing.T) {
	tbl, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, tbl.Load(context.Background(), FromRecords(
		[]string{"group", "id"},
		[][]string{{"b", "1"}, {"a", "2"}, {"b", "3"}, {"a", "4"}, {"b", "5"}},
	)))

	for _, dir := range []SortDirection{SortAscending, SortDescending} {
		tbl.Order(SortSpec{{Column: 0, Direction: dir}})
		v := tbl.Draw()

		var as, bs []int
		for _, r := range v.Filtered {
			if tbl.Store().DisplayString(r, 0) == "a" {
				as = append(as, r)
			} else {
				bs = append(bs, r)
			}
		}
		assert.Equal(t, []int{1, 3}, as, dir.String())
		assert.Equal(t, []int{0, 2, 4}, bs, dir.String())
	}
}

func TestNullsSortLast(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Columns = []ColumnOptions{{Data: "v"}}
	tbl, err := New(cfg)
	require.NoError(t, err)
	tbl.AddRows([]any{
		map[string]any{"v": 5},
		map[string]any{},
		map[string]any{"v": 1},
		map[string]any{"v": nil},
		map[string]any{"v": 3},
	})
	require.Equal(t, TypeNumeric, tbl.Columns()[0].Type)

	tbl.Order(SortSpec{{Column: 0, Direction: SortAscending}})
	assert.Equal(t, []int{2, 4, 0, 1, 3}, tbl.Draw().Filtered)

	tbl.Order(SortSpec{{Column: 0, Direction: SortDescending}})
	assert.Equal(t, []int{0, 4, 2, 1, 3}, tbl.Draw().Filtered)
}

func TestSortDates(t *testing.T) {
	tbl, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, tbl.Load(context.Background(), FromRecords(
		[]string{"when"},
		[][]string{{"2024-05-01"}, {"2023-12-31"}, {"2024-01-15"}},
	)))
	require.Equal(t, TypeDate, tbl.Columns()[0].Type)

	tbl.Order(SortSpec{{Column: 0, Direction: SortAscending}})
	assert.Equal(t, []int{1, 2, 0}, tbl.Draw().Filtered)
}

func TestSortCollation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Locale = "sv"
	tbl, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, tbl.Load(context.Background(), FromRecords(
		[]string{"word"},
		[][]string{{"öl"}, {"Zebra"}, {"apa"}, {"Äpple"}},
	)))

	tbl.Order(SortSpec{{Column: 0, Direction: SortAscending}})
	// Swedish sorts å, ä and ö after z; case is ignored.
	assert.Equal(t, []string{"apa", "Zebra", "Äpple", "öl"}, names(tbl, tbl.Draw().Filtered))
}

func TestDataSort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Columns = []ColumnOptions{{OrderData: []int{1, 0}}, {}}
	tbl, err := New(cfg)
	require.NoError(t, err)
	tbl.AddRows([]any{
		[]any{"b", 1},
		[]any{"a", 2},
		[]any{"a", 1},
	})

	tbl.Order(SortSpec{{Column: 0, Direction: SortAscending}})
	assert.Equal(t, []int{2, 0, 1}, tbl.Draw().Filtered)
}

func TestUnsortableColumnIgnored(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, nil))

	cfg := DefaultConfig()
	cfg.Columns = []ColumnOptions{{Orderable: boolPtr(false)}}
	tbl, err := New(cfg, WithLogger(logger))
	require.NoError(t, err)
	tbl.AddRows([]any{[]any{"b"}, []any{"a"}})

	tbl.Order(SortSpec{{Column: 0, Direction: SortAscending}, {Column: 9, Direction: SortAscending}})
	assert.Equal(t, []int{0, 1}, tbl.Draw().Filtered)
	assert.Contains(t, buf.String(), "sort column is not sortable")
	assert.Contains(t, buf.String(), "sort column does not exist")

	assert.ErrorIs(t, tbl.ToggleSort(0, false), ErrInvalidSortColumn)
}

func TestToggleSort(t *testing.T) {
	tbl := peopleTable(t)

	require.NoError(t, tbl.ToggleSort(0, false))
	assert.Equal(t, SortSpec{{Column: 0, Direction: SortAscending}}, tbl.Settings().Order)

	require.NoError(t, tbl.ToggleSort(0, false))
	assert.Equal(t, SortSpec{{Column: 0, Direction: SortDescending}}, tbl.Settings().Order)

	require.NoError(t, tbl.ToggleSort(1, true))
	assert.Equal(t, SortSpec{{Column: 0, Direction: SortDescending}, {Column: 1, Direction: SortAscending}}, tbl.Settings().Order)

	require.NoError(t, tbl.ToggleSort(1, true))
	assert.Equal(t, SortSpec{{Column: 0, Direction: SortDescending}, {Column: 1, Direction: SortDescending}}, tbl.Settings().Order)

	require.NoError(t, tbl.ToggleSort(1, false))
	assert.Equal(t, SortSpec{{Column: 1, Direction: SortAscending}}, tbl.Settings().Order)

	assert.ErrorIs(t, tbl.ToggleSort(5, false), ErrInvalidColumn)
}

func TestFeatureSwitches(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Searching = false
	cfg.Paging = false
	cfg.Ordering = false
	cfg.Columns = []ColumnOptions{{Data: "n"}, {Data: "age"}}
	cfg.Order = []OrderOption{{Column: 0, Dir: "desc"}}

	tbl, err := New(cfg)
	require.NoError(t, err)
	tbl.AddRows([]any{map[string]any{"n": "a"}, map[string]any{"n": "b"}})
	tbl.Search("zzz")

	v := tbl.Draw()
	assert.Equal(t, []int{0, 1}, v.Filtered)
	assert.Equal(t, []int{0, 1}, v.Page)
	assert.False(t, tbl.Columns()[0].Sortable)
}

func TestSetCellReadOnly(t *testing.T) {
	var buf bytes.Buffer
	tbl, err := New(DefaultConfig(),
		WithLogger(NewLogger(slog.NewTextHandler(&buf, nil))),
		WithAccessor(0, ByFunc(func(r any) (any, bool) { return r, true }, nil)),
	)
	require.NoError(t, err)
	require.NoError(t, tbl.Load(context.Background(), NewSliceSource([]string{"v"}, []any{"x"})))

	assert.ErrorIs(t, tbl.SetCell(0, 0, "y"), ErrReadOnlyAccessor)
	assert.Contains(t, buf.String(), "cell not written")
}

func TestCellsAndVisibility(t *testing.T) {
	tbl := peopleTable(t, WithRender(1, func(data any, mode CellMode, _ any) any {
		if mode == ModeDisplay {
			return strings.Repeat("*", data.(int)/10)
		}
		return data
	}))
	tbl.Order(SortSpec{{Column: 0, Direction: SortAscending}})

	v := tbl.Draw()
	assert.Equal(t, [][]string{{"Al", "**"}, {"Bob", "***"}, {"Cy", "**"}}, tbl.Cells(v))

	require.NoError(t, tbl.SetVisible(1, false))
	assert.Equal(t, []int{0}, tbl.VisibleColumns())
	assert.Equal(t, [][]string{{"Al"}, {"Bob"}, {"Cy"}}, tbl.Cells(v))
	assert.ErrorIs(t, tbl.SetVisible(4, true), ErrInvalidColumn)
}

func TestLoadKeyedSource(t *testing.T) {
	ds := FromMaps(nil, []map[string]any{
		{"city": "Oslo", "pop": 700000},
		{"city": "Bergen"},
	})
	tbl, err := Open(context.Background(), DefaultConfig(), ds)
	require.NoError(t, err)

	cols := tbl.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, "city", cols[0].Title)
	assert.Equal(t, "pop", cols[1].Name)
	assert.Equal(t, "700000", tbl.Store().DisplayString(0, 1))
	assert.Equal(t, "", tbl.Store().DisplayString(1, 1))

	// Later loads keep the columns and replace the rows.
	require.NoError(t, tbl.Load(context.Background(), FromMaps([]string{"city", "pop"}, []map[string]any{{"city": "Tromsø"}})))
	assert.Equal(t, 1, tbl.Store().Len())
	assert.Equal(t, "Tromsø", tbl.Store().DisplayString(0, 0))

	assert.ErrorIs(t, tbl.Load(context.Background(), nil), ErrNoDataSource)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tbl, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.ErrorIs(t, tbl.Load(ctx, FromRecords(nil, nil)), context.Canceled)
}

func TestTableID(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)
	b, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	c, err := New(DefaultConfig(), WithID("orders"))
	require.NoError(t, err)
	assert.Equal(t, "orders", c.ID())
}

func TestSetRenderRecomputes(t *testing.T) {
	tbl := peopleTable(t)
	fn, err := CompileRenderScript(`if mode == "display" { return fmt.Sprint(data, " yrs") }; return data`)
	require.NoError(t, err)
	require.NoError(t, tbl.SetRender(1, fn))

	assert.Equal(t, "30 yrs", tbl.Store().DisplayString(0, 1))
	tbl.Search("yrs")
	assert.Empty(t, tbl.Draw().Filtered)

	require.NoError(t, tbl.SetRender(1, nil))
	assert.Equal(t, "30", tbl.Store().DisplayString(0, 1))
	assert.ErrorIs(t, tbl.SetRender(5, nil), ErrInvalidColumn)

	_, err = CompileRenderScript(`return nope`)
	assert.Error(t, err)
}
