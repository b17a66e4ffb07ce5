package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int
		sep  string
		want string
	}{
		{0, ",", "0"},
		{999, ",", "999"},
		{1000, ",", "1,000"},
		{1234567, ".", "1.234.567"},
		{-45000, ",", "-45,000"},
		{123456, "", "123456"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.n, tt.sep))
	}
}

func TestInfoText(t *testing.T) {
	lang := DefaultConfig().Language

	tests := []struct {
		name string
		v    View
		want string
	}{
		{
			"Paged",
			View{Total: 1200, Filtered: make([]int, 1200), Start: 10, Length: 10, Page: make([]int, 10)},
			"Showing 11 to 20 of 1,200 entries",
		},
		{
			"Filtered",
			View{Total: 57, Filtered: make([]int, 3), Length: 10, Page: make([]int, 3)},
			"Showing 1 to 3 of 3 entries (filtered from 57 total entries)",
		},
		{
			"Empty",
			View{Total: 0, Length: 10},
			"Showing 0 to 0 of 0 entries",
		},
		{
			"NoMatches",
			View{Total: 4, Length: 10},
			"Showing 0 to 0 of 0 entries (filtered from 4 total entries)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InfoText(lang, tt.v))
		})
	}
}

func TestInfoPageMacros(t *testing.T) {
	lang := Language{Info: "Page _PAGE_ of _PAGES_", Thousands: ","}
	v := View{Total: 25, Filtered: make([]int, 25), Start: 20, Length: 10, Page: make([]int, 5)}
	assert.Equal(t, "Page 3 of 3", InfoText(lang, v))
}

func TestEmptyMessage(t *testing.T) {
	lang := DefaultConfig().Language

	assert.Equal(t, lang.EmptyTable, EmptyMessage(lang, View{}))
	assert.Equal(t, lang.ZeroRecords, EmptyMessage(lang, View{Total: 3}))
	assert.Equal(t, "", EmptyMessage(lang, View{Total: 3, Filtered: []int{1}}))
}

func TestLengthMenuText(t *testing.T) {
	lang := DefaultConfig().Language
	assert.Equal(t, "Show 25 entries", LengthMenuText(lang, "25"))
}
