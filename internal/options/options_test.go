package options

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasTable(t *testing.T) {
	tests := []struct {
		group     Group
		legacy    string
		canonical string
	}{
		{GroupTop, "iDisplayLength", "pageLength"},
		{GroupTop, "bPaginate", "paging"},
		{GroupTop, "bFilter", "searching"},
		{GroupTop, "bSort", "ordering"},
		{GroupTop, "aaSorting", "order"},
		{GroupTop, "aoColumns", "columns"},
		{GroupTop, "aoColumnDefs", "columnDefs"},
		{GroupTop, "oLanguage", "language"},
		{GroupTop, "iDisplayStart", "displayStart"},
		{GroupLanguage, "sZeroRecords", "zeroRecords"},
		{GroupLanguage, "sInfoThousands", "thousands"},
		{GroupPaginate, "sNext", "next"},
		{GroupSearch, "bCaseInsensitive", "caseInsensitive"},
		{GroupColumn, "mData", "data"},
		{GroupColumn, "mDataProp", "data"},
		{GroupColumn, "sClass", "className"},
		{GroupColumn, "aTargets", "targets"},
		{GroupResponse, "sEcho", "draw"},
		{GroupResponse, "aaData", "data"},
	}

	for _, tt := range tests {
		t.Run(tt.legacy, func(t *testing.T) {
			c, ok := Canonical(tt.group, tt.legacy)
			require.True(t, ok)
			assert.Equal(t, tt.canonical, c)
		})
	}

	// Reverse lookups pick the strong legacy name.
	l, ok := ToLegacy(GroupColumn, "data")
	require.True(t, ok)
	assert.Equal(t, "mData", l)

	l, ok = ToLegacy(GroupResponse, "recordsFiltered")
	require.True(t, ok)
	assert.Equal(t, "iTotalDisplayRecords", l)

	_, ok = ToLegacy(GroupTop, "noSuchOption")
	assert.False(t, ok)
}

func TestStripPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"sTitle", "title", true},
		{"fnRender", "render", true},
		{"aoData", "data", true},
		{"title", "", false},
		{"Title", "", false},
		{"xFoo", "", false},
		{"nFoo", "", false},
	}

	for _, tt := range tests {
		got, ok := stripPrefix(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestCanonicalizeConflict(t *testing.T) {
	user := Tree{"iDisplayLength": 25, "pageLength": 50}

	assert.Equal(t, Tree{"pageLength": 50}, Canonicalize(GroupTop, user, false))
	assert.Equal(t, Tree{"pageLength": 25}, Canonicalize(GroupTop, user, true))

	// The input is left untouched.
	assert.Len(t, user, 2)
}

func TestCanonicalizeNested(t *testing.T) {
	user := Tree{
		"oLanguage": Tree{
			"sZeroRecords": "Nothing",
			"oPaginate":    Tree{"sNext": ">"},
		},
		"aoColumns": []any{
			Tree{"mDataProp": "name", "bSortable": false},
			nil,
			Tree{"mData": "age", "mDataProp": "ignored", "iDataSort": 0},
		},
		"aoColumnDefs": []any{
			Tree{"aTargets": []any{0}, "bVisible": false},
		},
	}

	got := Canonicalize(GroupTop, user, false)
	assert.Equal(t, Tree{
		"language": Tree{
			"zeroRecords": "Nothing",
			"paginate":    Tree{"next": ">"},
		},
		"columns": []any{
			Tree{"data": "name", "orderable": false},
			nil,
			Tree{"data": "age", "orderData": []any{0}},
		},
		"columnDefs": []any{
			Tree{"targets": []any{0}, "visible": false},
		},
	}, got)
}

func TestMerge(t *testing.T) {
	defaults := Tree{
		"a":    1,
		"list": []any{1, 2},
		"sub":  Tree{"x": 1, "y": 2},
	}
	user := Tree{
		"list": []any{9},
		"sub":  Tree{"y": 3},
		"new":  true,
	}

	got := Merge(defaults, user)
	assert.Equal(t, Tree{
		"a":    1,
		"list": []any{9},
		"sub":  Tree{"x": 1, "y": 3},
		"new":  true,
	}, got)

	got["sub"].(Tree)["x"] = 100
	assert.Equal(t, 1, defaults["sub"].(Tree)["x"])
}

func TestLanguageCompat(t *testing.T) {
	defaults := Defaults()["language"].(Tree)

	t.Run("CopiesZeroRecords", func(t *testing.T) {
		lang := Tree{"zeroRecords": "Nada"}
		LanguageCompat(lang, defaults)
		assert.Equal(t, "Nada", lang["emptyTable"])
		assert.Equal(t, "Nada", lang["loadingRecords"])
	})

	t.Run("KeepsExplicitValues", func(t *testing.T) {
		lang := Tree{"zeroRecords": "Nada", "emptyTable": "Empty"}
		LanguageCompat(lang, defaults)
		assert.Equal(t, "Empty", lang["emptyTable"])
		assert.Equal(t, "Nada", lang["loadingRecords"])
	})

	t.Run("CustomDefaults", func(t *testing.T) {
		custom := Tree{"emptyTable": "Leer", "loadingRecords": DefaultLoadingRecords}
		lang := Tree{"zeroRecords": "Nada"}
		LanguageCompat(lang, custom)
		assert.NotContains(t, lang, "emptyTable")
		assert.Equal(t, "Nada", lang["loadingRecords"])
	})

	t.Run("NoZeroRecords", func(t *testing.T) {
		lang := Tree{}
		LanguageCompat(lang, defaults)
		assert.Empty(t, lang)
	})
}

func TestNormalize(t *testing.T) {
	user := Tree{
		"iDisplayLength": 25,
		"bFilter":        false,
		"oLanguage":      Tree{"sZeroRecords": "Nothing here"},
	}

	got := Normalize(Defaults(), user, false)
	assert.Equal(t, 25, got["pageLength"])
	assert.Equal(t, false, got["searching"])
	assert.Equal(t, true, got["paging"])

	lang := got["language"].(Tree)
	assert.Equal(t, "Nothing here", lang["zeroRecords"])
	assert.Equal(t, "Nothing here", lang["emptyTable"])
	assert.Equal(t, "Search:", lang["search"])

	assert.NotContains(t, got, "iDisplayLength")
	assert.Equal(t, DefaultEmptyTable, Defaults()["language"].(Tree)["emptyTable"])
}

func TestLoad(t *testing.T) {
	yamlDoc := `
iDisplayLength: 5
language:
  zeroRecords: none
columnDefs:
  - targets: [0, "_all"]
    visible: false
`
	tree, err := Load(strings.NewReader(yamlDoc))
	require.NoError(t, err)
	assert.Equal(t, 5, tree["iDisplayLength"])
	assert.Equal(t, Tree{"zeroRecords": "none"}, tree["language"])

	defs := tree["columnDefs"].([]any)
	require.Len(t, defs, 1)
	assert.Equal(t, []any{0, "_all"}, defs[0].(Tree)["targets"])

	tree, err = Load(strings.NewReader(`{"pageLength": 50, "paging": false}`))
	require.NoError(t, err)
	assert.Equal(t, Tree{"pageLength": 50, "paging": false}, tree)

	tree, err = Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tree)

	_, err = Load(strings.NewReader("a: [1, 2"))
	assert.Error(t, err)
}
