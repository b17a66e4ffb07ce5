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
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dlclark/regexp2"

	"dtb/internal/filter"
)

// matchTimeout bounds a single regex evaluation so a pathological user
// pattern cannot stall a draw.
const matchTimeout = 250 * time.Millisecond

// Search is the state of one search box.
type Search struct {
	Term            string `json:"search"`
	Regex           bool   `json:"regex"`
	Smart           bool   `json:"smart"`
	CaseInsensitive bool   `json:"caseInsensitive"`
}

// Active reports whether the search restricts anything.
func (s Search) Active() bool { return s.Term != "" }

// Matcher tests normalized search text against one compiled search.
type Matcher struct {
	re *regexp2.Regexp
}

// Compile builds the matcher for a search.
//
// Smart matching splits the term into whitespace separated tokens (double
// quoted phrases stay whole) and requires every token to occur somewhere in
// the text, in any order. Regex matching uses the term as a pattern. With
// neither, the whole term must occur as a substring.
func (s Search) Compile() (*Matcher, error) {
	opts := regexp2.None
	if s.CaseInsensitive {
		opts |= regexp2.IgnoreCase
	}

	var pattern string
	switch {
	case s.Smart:
		tokens := filter.Tokenize(s.Term)
		var b strings.Builder
		b.WriteString("^")
		for _, tok := range tokens {
			if !s.Regex {
				tok = regexp2.Escape(tok)
			}
			b.WriteString("(?=.*?")
			b.WriteString(tok)
			b.WriteString(")")
		}
		b.WriteString(".*$")
		pattern = b.String()
	case s.Regex:
		pattern = s.Term
	default:
		pattern = regexp2.Escape(s.Term)
	}

	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidFilter, s.Term, err)
	}
	re.MatchTimeout = matchTimeout
	return &Matcher{re: re}, nil
}

// Match reports whether text satisfies the search. A timed out evaluation
// counts as no match.
func (m *Matcher) Match(text string) bool {
	ok, err := m.re.MatchString(text)
	return err == nil && ok
}

// filterRows returns the indexes of the rows passing the global search,
// every active column search and the custom predicate, in insertion order.
// Searches that fail to compile are reported through warn and skipped.
func filterRows(store *Store, global Search, columns []Search, custom filter.Predicate, warn func(msg string, args ...any)) []int {
	n := store.Len()
	sets := make([]*roaring.Bitmap, 0, len(columns)+2)

	if global.Active() {
		if m, err := global.Compile(); err != nil {
			warn("global search ignored", "error", err)
		} else {
			bm := roaring.New()
			for r := range n {
				if m.Match(store.searchText(r)) {
					bm.Add(uint32(r))
				}
			}
			sets = append(sets, bm)
		}
	}

	for col, cs := range columns {
		if !cs.Active() || col >= len(store.columns) {
			continue
		}
		m, err := cs.Compile()
		if err != nil {
			warn("column search ignored", "column", col, "error", err)
			continue
		}
		bm := roaring.New()
		for r := range n {
			if m.Match(store.rows[r].cells[col].search) {
				bm.Add(uint32(r))
			}
		}
		sets = append(sets, bm)
	}

	if custom != nil {
		names := store.columnNames()
		bm := roaring.New()
		row := make([]string, len(store.columns))
		for r := range n {
			for c := range store.columns {
				row[c] = store.rows[r].cells[c].search
			}
			ok, err := custom.Evaluate(row, names)
			if err != nil {
				warn("custom filter ignored", "error", err)
				bm = nil
				break
			}
			if ok {
				bm.Add(uint32(r))
			}
		}
		if bm != nil {
			sets = append(sets, bm)
		}
	}

	if len(sets) == 0 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}

	hits := filter.Intersect(sets...)
	out := make([]int, 0, hits.GetCardinality())
	it := hits.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
