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
	"dtb/internal/filter"
)

// ShowAll is the page length that disables slicing.
const ShowAll = -1

// View is the result of one pipeline run.
type View struct {
	// Total is the number of rows in the store.
	Total int
	// Filtered holds the row indexes passing every filter, in display order.
	Filtered []int
	// Page is the slice of Filtered shown on the current page.
	Page []int
	// Start is the position of Page[0] within Filtered.
	Start int
	// Length is the page size, or ShowAll.
	Length int
}

// End returns the position one past the last shown row.
func (v View) End() int { return v.Start + len(v.Page) }

// PageIndex returns the zero-based index of the current page.
func (v View) PageIndex() int {
	if v.Length <= 0 {
		return 0
	}
	return v.Start / v.Length
}

// PageCount returns the number of pages, at least one.
func (v View) PageCount() int {
	if v.Length <= 0 || len(v.Filtered) == 0 {
		return 1
	}
	return (len(v.Filtered) + v.Length - 1) / v.Length
}

// Compute runs filter, sort and paginate over the store. It never fails:
// invalid searches, queries or sort entries are logged and skipped.
func Compute(store *Store, s *Settings, log *Logger) View {
	warn := func(msg string, args ...any) {
		if log != nil {
			log.Warn(msg, args...)
		}
	}

	var rows []int
	if s.Features.Searching {
		var custom filter.Predicate
		if s.Query != "" {
			p, err := filter.ParseQuery(s.Query, store.columnNames())
			if err != nil {
				warn("query ignored", "query", s.Query, "error", err)
			} else {
				custom = p
			}
		}
		rows = filterRows(store, s.Search, s.ColumnSearch, custom, warn)
	} else {
		rows = make([]int, store.Len())
		for i := range rows {
			rows[i] = i
		}
	}

	if s.Features.Ordering {
		sortRows(store, rows, resolveSort(store, s.Order, warn), newCollator(s.Locale))
	}

	v := View{Total: store.Len(), Filtered: rows, Length: s.Length}
	if !s.Features.Paging || s.Length == ShowAll || s.Length <= 0 {
		v.Length = ShowAll
		v.Page = rows
		return v
	}

	start := max(s.Start, 0)
	if start >= len(rows) {
		// Past the end, for example after a filter shrank the set: show the
		// last page.
		start = max(0, (len(rows)-1)/s.Length*s.Length)
	}
	v.Start = start
	v.Page = rows[start:min(start+s.Length, len(rows))]
	return v
}
