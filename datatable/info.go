package datatable

import (
	"strconv"
	"strings"
)

// FormatNumber renders n with the thousands separator sep between groups
// of three digits.
func FormatNumber(n int, sep string) string {
	s := strconv.Itoa(n)
	if sep == "" {
		return s
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(s[:head])
	for i := head; i < len(s); i += 3 {
		b.WriteString(sep)
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// InfoText builds the status line for a view: "Showing 1 to 10 of 57
// entries", with the filtered note appended when a filter is active.
func InfoText(lang Language, v View) string {
	var out string
	if len(v.Filtered) == 0 {
		out = lang.InfoEmpty
	} else {
		out = lang.Info
	}
	if len(v.Filtered) != v.Total {
		out += " " + lang.InfoFiltered
	}
	out += lang.InfoPostFix
	return expandMacros(out, lang.Thousands, v)
}

// EmptyMessage returns the text shown in place of rows, or "" when the
// view has rows.
func EmptyMessage(lang Language, v View) string {
	switch {
	case v.Total == 0:
		return lang.EmptyTable
	case len(v.Filtered) == 0:
		return lang.ZeroRecords
	default:
		return ""
	}
}

// LengthMenuText substitutes the page length selector into the lengthMenu
// string; the _MENU_ macro is replaced with menu.
func LengthMenuText(lang Language, menu string) string {
	return strings.ReplaceAll(lang.LengthMenu, "_MENU_", menu)
}

func expandMacros(s, sep string, v View) string {
	start := 0
	if len(v.Filtered) > 0 {
		start = v.Start + 1
	}
	r := strings.NewReplacer(
		"_START_", FormatNumber(start, sep),
		"_END_", FormatNumber(v.End(), sep),
		"_TOTAL_", FormatNumber(len(v.Filtered), sep),
		"_MAX_", FormatNumber(v.Total, sep),
		"_PAGE_", FormatNumber(v.PageIndex()+1, sep),
		"_PAGES_", FormatNumber(v.PageCount(), sep),
	)
	return r.Replace(s)
}
