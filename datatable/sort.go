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
	"bytes"
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sortStep is one resolved comparison: a data column and its direction.
type sortStep struct {
	col  int
	desc bool
	text bool
}

// newCollator returns a case-insensitive collator for a BCP 47 tag,
// falling back to the root locale for unparsable tags.
func newCollator(locale string) *collate.Collator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return collate.New(tag, collate.IgnoreCase)
}

// resolveSort expands a sort spec through each column's DataSort list.
// Entries naming unknown or unsortable columns are dropped and reported.
func resolveSort(store *Store, spec SortSpec, warn func(msg string, args ...any)) []sortStep {
	steps := make([]sortStep, 0, len(spec))
	for _, key := range spec {
		if key.Column < 0 || key.Column >= len(store.columns) {
			warn("sort column does not exist", "column", key.Column)
			continue
		}
		col := store.columns[key.Column]
		if !col.Sortable {
			warn("sort column is not sortable", "column", key.Column)
			continue
		}
		if key.Direction == SortNone {
			continue
		}
		for _, d := range col.DataSort {
			t := store.columns[d].Type
			steps = append(steps, sortStep{
				col:  d,
				desc: key.Direction == SortDescending,
				text: t != TypeNumeric && t != TypeDate,
			})
		}
	}
	return steps
}

// sortRows orders rows in place by the given steps. The sort is stable, so
// rows with equal keys keep their relative input order; since the input is
// in insertion order, ties fall back to insertion order.
func sortRows(store *Store, rows []int, steps []sortStep, coll *collate.Collator) {
	if len(steps) == 0 {
		return
	}
	var buf collate.Buffer
	keys := make(map[int][]byte)
	textKey := func(row, col int) []byte {
		// Keys are cached per (row, col) for the length of one sort.
		id := row*len(store.columns) + col
		if k, ok := keys[id]; ok {
			return k
		}
		k := slices.Clone(coll.KeyFromString(&buf, store.rows[row].cells[col].sort.str))
		buf.Reset()
		keys[id] = k
		return k
	}

	slices.SortStableFunc(rows, func(a, b int) int {
		for _, s := range steps {
			ka := store.rows[a].cells[s.col].sort
			kb := store.rows[b].cells[s.col].sort

			// Missing values go last whatever the direction.
			switch {
			case ka.null && kb.null:
				continue
			case ka.null:
				return 1
			case kb.null:
				return -1
			}

			var c int
			if s.text {
				c = bytes.Compare(textKey(a, s.col), textKey(b, s.col))
			} else {
				c = cmp.Compare(ka.num, kb.num)
			}
			if c == 0 {
				continue
			}
			if s.desc {
				return -c
			}
			return c
		}
		return 0
	})
}
