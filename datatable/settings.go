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
	"github.com/jinzhu/copier"
)

// Features switches whole pipeline stages on or off.
type Features struct {
	Paging    bool
	Searching bool
	Ordering  bool
}

// Settings is the interaction state of one table: what is searched, how it
// is sorted and which page is shown. The column set and the rows live in
// the Store.
type Settings struct {
	Search       Search
	ColumnSearch []Search

	// Query is an optional expression such as "age > 30 AND city = Oslo"
	// applied on top of the searches.
	Query string

	Order SortSpec

	// Start is the index of the first filtered row shown; Length the page
	// size, or -1 for all rows.
	Start  int
	Length int

	Features Features
	Language Language
	Locale   string
}

// newSettings builds the initial interaction state from a configuration.
func newSettings(cfg Config, columns int) *Settings {
	s := &Settings{
		Search:       cfg.Search.toSearch(),
		ColumnSearch: make([]Search, columns),
		Order:        cfg.sortSpec(),
		Start:        max(cfg.DisplayStart, 0),
		Length:       cfg.PageLength,
		Features: Features{
			Paging:    cfg.Paging,
			Searching: cfg.Searching,
			Ordering:  cfg.Ordering,
		},
		Language: cfg.Language,
		Locale:   cfg.Locale,
	}
	for i := range s.ColumnSearch {
		// Column searches inherit the matching flags of the global search.
		s.ColumnSearch[i] = Search{Smart: s.Search.Smart, CaseInsensitive: s.Search.CaseInsensitive}
		if i < len(cfg.SearchCols) {
			s.ColumnSearch[i] = cfg.SearchCols[i].toSearch()
		}
	}
	if s.Length == 0 {
		s.Length = 10
	}
	return s
}

// Clone returns a deep copy that shares nothing with s.
func (s *Settings) Clone() *Settings {
	out := &Settings{}
	if err := copier.CopyWithOption(out, s, copier.Option{DeepCopy: true}); err != nil {
		// Settings holds only plain values; fall back to a manual copy.
		*out = *s
		out.ColumnSearch = append([]Search(nil), s.ColumnSearch...)
		out.Order = append(SortSpec(nil), s.Order...)
	}
	return out
}

// ensureColumns grows the per-column search list to n entries.
func (s *Settings) ensureColumns(n int) {
	for len(s.ColumnSearch) < n {
		s.ColumnSearch = append(s.ColumnSearch, Search{Smart: s.Search.Smart, CaseInsensitive: s.Search.CaseInsensitive})
	}
}
