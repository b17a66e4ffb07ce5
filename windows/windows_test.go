package windows

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtb/adapters/filesrc"
	"dtb/datatable"
)

var cities = [][]string{
	{"Oslo", "709000"},
	{"Bergen", "291000"},
	{"Trondheim", "212000"},
	{"Stavanger", "146000"},
	{"Tromso", "77000"},
}

func citySource() *datatable.SliceSource {
	return datatable.FromRecords([]string{"city", "population"}, cities)
}

func cityTable(t *testing.T) *datatable.Table {
	t.Helper()
	tbl, err := datatable.Open(context.Background(), datatable.DefaultConfig(), citySource())
	require.NoError(t, err)
	return tbl
}

func testWindow(t *testing.T) fyne.Window {
	t.Helper()
	a := test.NewTempApp(t)
	w := a.NewWindow("test")
	t.Cleanup(w.Close)
	return w
}

func firstColumn(cells [][]string) []string {
	out := make([]string, len(cells))
	for i, row := range cells {
		out[i] = row[0]
	}
	return out
}

func TestTableViewSortAndHeaders(t *testing.T) {
	v := NewTableView(cityTable(t), testWindow(t))

	assert.Equal(t, []string{"Bergen", "Oslo", "Stavanger", "Tromso", "Trondheim"}, firstColumn(v.Cells()))
	assert.Equal(t, "Showing 1 to 5 of 5 entries", v.InfoText())
	assert.Equal(t, "city ↑", v.HeaderText(0))
	assert.Equal(t, "population", v.HeaderText(1))

	v.SortColumn(1, false)
	assert.Equal(t, "Tromso", v.Cells()[0][0])
	v.SortColumn(1, false)
	assert.Equal(t, "Oslo", v.Cells()[0][0])
	assert.Equal(t, "population ↓", v.HeaderText(1))

	v.SortColumn(0, true)
	assert.Equal(t, "population ↓1", v.HeaderText(1))
	assert.Equal(t, "city ↑2", v.HeaderText(0))
	assert.Equal(t, "Table cities (2 columns x 5 rows) | Sorted: population ↓1, city ↑2", v.Status("cities"))
}

func TestTableViewSearchAndQuery(t *testing.T) {
	v := NewTableView(cityTable(t), testWindow(t))

	v.search.SetText("tr")
	assert.Equal(t, []string{"Tromso", "Trondheim"}, firstColumn(v.Cells()))
	assert.Contains(t, v.Status("cities"), "2/5 rows")
	assert.Contains(t, v.InfoText(), "filtered from 5 total entries")

	v.search.SetText("")
	require.NoError(t, v.ApplyQuery("population > 200000"))
	assert.Equal(t, []string{"Bergen", "Oslo", "Trondheim"}, firstColumn(v.Cells()))

	assert.Error(t, v.ApplyQuery("height > 3"))
	assert.Len(t, v.Cells(), 3, "an invalid query keeps the previous one")

	require.NoError(t, v.ApplyQuery("population > 10000000"))
	assert.Empty(t, v.Cells())
	assert.True(t, v.empty.Visible())
	assert.Equal(t, v.Table().EmptyMessage(v.View()), v.empty.Text)
}

func TestTableViewPaging(t *testing.T) {
	v := NewTableView(cityTable(t), testWindow(t))
	v.Table().SetPageLength(2)
	v.Redraw()

	assert.True(t, v.prev.Disabled())
	assert.Equal(t, "1 / 3", v.page.Text)

	v.Page(datatable.PageNext)
	assert.Equal(t, 2, v.View().Start)
	assert.Equal(t, []string{"Stavanger", "Tromso"}, firstColumn(v.Cells()))

	v.Page(datatable.PageLast)
	assert.Equal(t, 4, v.View().Start)
	assert.Equal(t, "3 / 3", v.page.Text)
	assert.True(t, v.next.Disabled())
	assert.False(t, v.first.Disabled())

	v.length.SetSelected("100")
	assert.Len(t, v.Cells(), 5)
	assert.Equal(t, "1 / 1", v.page.Text)
	assert.True(t, v.first.Disabled())
	assert.True(t, v.last.Disabled())
}

func TestTableViewColumnVisibility(t *testing.T) {
	v := NewTableView(cityTable(t), testWindow(t))
	v.SetColumnVisible(1, false)

	require.Len(t, v.Cells(), 5)
	assert.Len(t, v.Cells()[0], 1)
	assert.Contains(t, v.Status("cities"), "showing 1/2 columns")

	v.SetColumnVisible(1, true)
	assert.Len(t, v.Cells()[0], 2)
}

func TestDataBrowser(t *testing.T) {
	w := testWindow(t)
	var status string
	b := NewDataBrowser(w, func(s string) { status = s })

	b.Add("a", cityTable(t), citySource())
	b.Add("b", cityTable(t), citySource())
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, "b", b.Selected().name)
	assert.Contains(t, status, "Table b")

	b.Add("a", cityTable(t), citySource())
	assert.Equal(t, 2, b.Len(), "a tab with the same name is replaced")
	assert.Equal(t, "a", b.Selected().name)

	view := b.Selected().view
	view.search.SetText("berg")
	assert.Contains(t, status, "1/5 rows")

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, b.ExportTo(path))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "city,population", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Bergen,"))

	require.NoError(t, b.Refresh(context.Background()))
	assert.Equal(t, 5, view.View().Total)

	b.CloseAll()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, "Ready", status)
	assert.ErrorIs(t, b.Refresh(context.Background()), ErrNoTable)
	assert.ErrorIs(t, b.ExportTo(path), ErrNoTable)
}

func TestScriptEditor(t *testing.T) {
	w := testWindow(t)
	b := NewDataBrowser(w, nil)
	se := NewScriptEditor(w, b)
	assert.ErrorIs(t, se.Apply(1, "return data"), ErrNoTable)

	view := b.Add("cities", cityTable(t), citySource())
	require.NoError(t, se.Apply(1, `if mode == "display" { return fmt.Sprint(data) + " people" }; return data`))
	assert.Equal(t, []string{"Bergen", "291000 people"}, view.Cells()[0])

	assert.Error(t, se.Apply(1, "return data +"))
	assert.ErrorIs(t, se.Apply(5, "return data"), datatable.ErrInvalidColumn)

	require.NoError(t, se.Reset(1))
	assert.Equal(t, []string{"Bergen", "291000"}, view.Cells()[0])
	assert.Equal(t, defaultRenderScript, se.preview.Text())
}

func TestQueryOptionsDialog(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "age", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
	qod := NewQueryOptionsDialog(testWindow(t), schema, nil)

	opts, err := qod.Options()
	require.NoError(t, err)
	assert.Empty(t, opts.SelectedColumns)
	assert.EqualValues(t, 1000, opts.Limit)

	qod.columnChecks["name"].SetChecked(false)
	qod.predicateEntry.SetText("age > 25")
	qod.limitEntry.SetText("")
	opts, err = qod.Options()
	require.NoError(t, err)
	assert.Equal(t, []string{"age"}, opts.SelectedColumns)
	assert.Equal(t, "age > 25", opts.Predicate)
	assert.EqualValues(t, -1, opts.Limit)

	qod.setAll(false)
	_, err = qod.Options()
	assert.Error(t, err)

	qod.setAll(true)
	qod.limitEntry.SetText("ten")
	_, err = qod.Options()
	assert.Error(t, err)
}

func TestMainWindowLoadDataFile(t *testing.T) {
	a := test.NewTempApp(t)
	m := NewMainWindow(a, datatable.DefaultConfig(), nil)
	t.Cleanup(m.Window().Close)

	dir := t.TempDir()
	path := filepath.Join(dir, "cities.csv")
	require.NoError(t, os.WriteFile(path, []byte("city;population\nOslo;709000\nBergen;291000\n"), 0o644))

	require.NoError(t, m.LoadDataFile(context.Background(), path))
	assert.Equal(t, 1, m.Browser().Len())
	assert.Equal(t, "Loaded CSV file: cities.csv (2 rows, 2 columns, separator: semicolon)", m.StatusText())
	assert.Equal(t, [][]string{{"Bergen", "291000"}, {"Oslo", "709000"}}, m.Browser().Selected().view.Cells())

	other := filepath.Join(dir, "notes.xyz")
	require.NoError(t, os.WriteFile(other, []byte("hello"), 0o644))
	assert.ErrorIs(t, m.LoadDataFile(context.Background(), other), filesrc.ErrUnsupported)
	assert.Error(t, m.LoadDataFile(context.Background(), filepath.Join(dir, "missing.csv")))
	assert.Equal(t, 1, m.Browser().Len())
}

func TestTokenizeLine(t *testing.T) {
	tests := []struct {
		line string
		want []Token
	}{
		{
			line: "return data // done",
			want: []Token{
				{TokenKeyword, "return"}, {TokenPlain, " "}, {TokenParameter, "data"},
				{TokenPlain, " "}, {TokenComment, "// done"},
			},
		},
		{
			line: `x := "a\"b" + 12`,
			want: []Token{
				{TokenIdentifier, "x"}, {TokenPlain, " "}, {TokenOperator, ":"}, {TokenOperator, "="},
				{TokenPlain, " "}, {TokenString, `"a\"b"`}, {TokenPlain, " "}, {TokenOperator, "+"},
				{TokenPlain, " "}, {TokenNumber, "12"},
			},
		},
		{
			line: "/* c */ int",
			want: []Token{{TokenComment, "/* c */"}, {TokenPlain, " "}, {TokenBuiltinType, "int"}},
		},
		{
			line: "s := `raw",
			want: []Token{
				{TokenIdentifier, "s"}, {TokenPlain, " "}, {TokenOperator, ":"}, {TokenOperator, "="},
				{TokenPlain, " "}, {TokenString, "`raw"},
			},
		},
		{line: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := TokenizeLine(tt.line)
			assert.Equal(t, tt.want, got)

			var joined strings.Builder
			for _, tok := range got {
				joined.WriteString(tok.Text)
			}
			assert.Equal(t, tt.line, joined.String())
		})
	}
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.parquet", "notes.md", ".hidden.csv", "data.json.gz", "profile.share"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))

	entries, err := listDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, []dirEntry{
		{name: "sub", dir: true},
		{name: "a.parquet"},
		{name: "b.csv"},
		{name: "data.json.gz"},
		{name: "profile.share"},
	}, entries)

	_, err = listDirectory(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "my_table_v2", cleanFilename("my table (v2)"))
	assert.Equal(t, "export", cleanFilename("***"))

	assert.Equal(t, []string{"10", "25", "All"}, lengthOptions([]int{10, 25, -1}))
	assert.Equal(t, []string{"10", "25", "50", "100"}, lengthOptions(nil))

	assert.True(t, isDataFile("x.tsv"))
	assert.True(t, isDataFile("x.csv.zst"))
	assert.False(t, isDataFile("x.xlsx"))
}

func TestBrowserTheme(t *testing.T) {
	th := BrowserTheme{}
	assert.Equal(t, lightPalette[theme.ColorNamePrimary], th.Color(theme.ColorNamePrimary, theme.VariantLight))
	assert.Equal(t, darkPalette[theme.ColorNamePrimary], th.Color(theme.ColorNamePrimary, theme.VariantDark))
	assert.Equal(t, theme.DefaultTheme().Color(theme.ColorNameError, theme.VariantDark),
		th.Color(theme.ColorNameError, theme.VariantDark))

	assert.EqualValues(t, 8, th.Size(theme.SizeNamePadding))
	assert.EqualValues(t, 4, BrowserTheme{Compact: true}.Size(theme.SizeNamePadding))
}
