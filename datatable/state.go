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
	"io"
	"time"

	json "github.com/goccy/go-json"
)

// ColumnState is the saved state of one column.
type ColumnState struct {
	Visible bool   `json:"visible"`
	Search  Search `json:"search"`
}

// State is the saved interaction state of a table.
type State struct {
	Time    int64         `json:"time"`
	Start   int           `json:"start"`
	Length  int           `json:"length"`
	Order   SortSpec      `json:"order"`
	Search  Search        `json:"search"`
	Query   string        `json:"query,omitempty"`
	Columns []ColumnState `json:"columns"`
}

// SaveState writes the current state as JSON.
func (t *Table) SaveState(w io.Writer) error {
	st := State{
		Time:    t.now().UnixMilli(),
		Start:   t.settings.Start,
		Length:  t.settings.Length,
		Order:   append(SortSpec(nil), t.settings.Order...),
		Search:  t.settings.Search,
		Query:   t.settings.Query,
		Columns: make([]ColumnState, len(t.store.columns)),
	}
	for i, c := range t.store.columns {
		st.Columns[i] = ColumnState{Visible: c.Visible, Search: t.settings.ColumnSearch[i]}
	}
	if err := json.NewEncoder(w).Encode(st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadState restores state written by SaveState. State older than the
// configured duration, or saved for a different column count, is rejected
// and leaves the table unchanged. A duration of zero never expires.
func (t *Table) LoadState(r io.Reader) error {
	var st State
	if err := json.NewDecoder(r).Decode(&st); err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if d := t.cfg.StateDuration; d > 0 {
		saved := time.UnixMilli(st.Time)
		if t.now().Sub(saved) > time.Duration(d)*time.Second {
			return fmt.Errorf("%w: saved %s", ErrStateExpired, saved.Format(time.RFC3339))
		}
	}
	if len(st.Columns) != len(t.store.columns) {
		return fmt.Errorf("%w: state has %d columns, table has %d", ErrStateMismatch, len(st.Columns), len(t.store.columns))
	}

	t.settings.Start = max(st.Start, 0)
	if st.Length != 0 {
		t.settings.Length = st.Length
	}
	t.settings.Order = st.Order
	t.settings.Search = st.Search
	t.settings.Query = st.Query
	for i, c := range st.Columns {
		t.store.columns[i].Visible = c.Visible
		t.settings.ColumnSearch[i] = c.Search
	}
	return nil
}
