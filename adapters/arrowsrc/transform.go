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

package arrowsrc

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ErrNoColumns is returned when a column selection matches nothing.
var ErrNoColumns = errors.New("no matching columns found")

// SelectColumns returns a table holding the named columns, in schema order.
// An empty selection returns table itself, retained.
func SelectColumns(table arrow.Table, names []string) (arrow.Table, error) {
	if len(names) == 0 {
		table.Retain()
		return table, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	schema := table.Schema()
	var fields []arrow.Field
	var columns []arrow.Column
	for i, field := range schema.Fields() {
		if want[field.Name] {
			fields = append(fields, field)
			columns = append(columns, *table.Column(i))
		}
	}
	if len(fields) == 0 {
		return nil, ErrNoColumns
	}
	return array.NewTable(arrow.NewSchema(fields, nil), columns, table.NumRows()), nil
}

// Limit returns the first n rows of table. A non-positive n, or one not
// below the row count, returns table itself, retained.
func Limit(table arrow.Table, n int64) arrow.Table {
	if n <= 0 || n >= table.NumRows() {
		table.Retain()
		return table
	}

	numCols := int(table.NumCols())
	columns := make([]arrow.Column, numCols)
	for i := range numCols {
		col := table.Column(i)
		var chunks []arrow.Array
		var rowCount int64
		for _, chunk := range col.Data().Chunks() {
			if rowCount >= n {
				break
			}
			remaining := n - rowCount
			if int64(chunk.Len()) <= remaining {
				chunk.Retain()
				chunks = append(chunks, chunk)
				rowCount += int64(chunk.Len())
			} else {
				chunks = append(chunks, array.NewSlice(chunk, 0, remaining))
				rowCount += remaining
			}
		}
		chunked := arrow.NewChunked(col.DataType(), chunks)
		for _, c := range chunks {
			c.Release()
		}
		columns[i] = *arrow.NewColumn(col.Field(), chunked)
		chunked.Release()
	}

	out := array.NewTable(table.Schema(), columns, n)
	for i := range columns {
		columns[i].Release()
	}
	return out
}

// Take returns the rows of table at the given positions, in that order.
func Take(table arrow.Table, rows []int) (arrow.Table, error) {
	src, err := FromTable(table)
	if err != nil {
		return nil, err
	}
	defer src.Release()

	mem := memory.NewGoAllocator()
	schema := table.Schema()
	columns := make([]arrow.Column, len(src.cols))
	for i, col := range src.cols {
		arr, err := copyRows(mem, col, rows)
		if err != nil {
			for j := range i {
				columns[j].Release()
			}
			return nil, fmt.Errorf("take column %s: %w", schema.Field(i).Name, err)
		}
		chunked := arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
		arr.Release()
		columns[i] = *arrow.NewColumn(schema.Field(i), chunked)
		chunked.Release()
	}

	out := array.NewTable(schema, columns, int64(len(rows)))
	for i := range columns {
		columns[i].Release()
	}
	return out, nil
}

// Concat appends tables sharing one schema into a single table.
func Concat(tables []arrow.Table) (arrow.Table, error) {
	if len(tables) == 0 {
		return nil, errors.New("no tables to concatenate")
	}
	schema := tables[0].Schema()
	var rows int64
	for _, t := range tables {
		if !t.Schema().Equal(schema) {
			return nil, fmt.Errorf("schema mismatch: %s", t.Schema())
		}
		rows += t.NumRows()
	}

	columns := make([]arrow.Column, len(schema.Fields()))
	for i, field := range schema.Fields() {
		var chunks []arrow.Array
		for _, t := range tables {
			chunks = append(chunks, t.Column(i).Data().Chunks()...)
		}
		chunked := arrow.NewChunked(field.Type, chunks)
		columns[i] = *arrow.NewColumn(field, chunked)
		chunked.Release()
	}

	out := array.NewTable(schema, columns, rows)
	for i := range columns {
		columns[i].Release()
	}
	return out, nil
}
