package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberTable(t *testing.T, n int) *Table {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Columns = []ColumnOptions{{}}
	tbl, err := New(cfg)
	require.NoError(t, err)
	for i := range n {
		tbl.AddRow([]any{i})
	}
	return tbl
}

func TestComputeClampsStart(t *testing.T) {
	tbl := numberTable(t, 25)
	s := tbl.Settings().Clone()
	s.Start = 100

	v := Compute(tbl.Store(), s, nil)
	assert.Equal(t, 20, v.Start)
	assert.Len(t, v.Page, 5)
	assert.Equal(t, 3, v.PageCount())
	assert.Equal(t, 2, v.PageIndex())
	assert.Equal(t, 25, v.End())
}

func TestComputeShowAll(t *testing.T) {
	tbl := numberTable(t, 25)
	s := tbl.Settings().Clone()
	s.Length = ShowAll
	s.Start = 10

	v := Compute(tbl.Store(), s, nil)
	assert.Equal(t, ShowAll, v.Length)
	assert.Len(t, v.Page, 25)
	assert.Equal(t, 1, v.PageCount())
}

func TestComputeEmpty(t *testing.T) {
	tbl := numberTable(t, 0)
	v := tbl.Draw()
	assert.Equal(t, 0, v.Total)
	assert.Empty(t, v.Page)
	assert.Equal(t, 0, v.Start)
}

func TestSettingsClone(t *testing.T) {
	tbl := peopleTable(t)
	tbl.Order(SortSpec{{Column: 1, Direction: SortDescending}})
	require.NoError(t, tbl.SearchColumn(0, "b"))

	c := tbl.Settings().Clone()
	c.Order[0].Direction = SortAscending
	c.ColumnSearch[0].Term = "x"

	assert.Equal(t, SortDescending, tbl.Settings().Order[0].Direction)
	assert.Equal(t, "b", tbl.Settings().ColumnSearch[0].Term)
	assert.Equal(t, tbl.Settings().Length, c.Length)
}

func TestPageNavigation(t *testing.T) {
	tbl := numberTable(t, 35)

	require.NoError(t, tbl.Page(PageLast))
	assert.Equal(t, 30, tbl.Draw().Start)
	require.NoError(t, tbl.Page(PageNext))
	assert.Equal(t, 30, tbl.Draw().Start)
	require.NoError(t, tbl.Page(PagePrevious))
	assert.Equal(t, 20, tbl.Draw().Start)
	require.NoError(t, tbl.Page("1"))
	assert.Equal(t, 10, tbl.Draw().Start)
	require.NoError(t, tbl.Page("99"))
	assert.Equal(t, 30, tbl.Draw().Start)
	assert.Error(t, tbl.Page("sideways"))

	tbl.SetPageLength(25)
	assert.Equal(t, 25, tbl.Draw().Start)
	tbl.SetPageLength(0)
	assert.Len(t, tbl.Draw().Page, 35)
}
