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

// Package arrowsrc feeds Apache Arrow tables and Parquet files into a
// datatable, and writes table views back out as Parquet, CSV or JSON.
package arrowsrc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"dtb/datatable"
)

// Source is a datatable.DataSource over an arrow.Table. Each column is
// flattened into a single array so rows can be addressed by position.
type Source struct {
	table arrow.Table
	names []string
	cols  []arrow.Array
	meta  datatable.Metadata
}

// FromTable wraps tbl. The table is retained until Release is called.
func FromTable(tbl arrow.Table) (*Source, error) {
	if tbl == nil {
		return nil, datatable.ErrNoDataSource
	}
	mem := memory.NewGoAllocator()
	schema := tbl.Schema()

	s := &Source{
		table: tbl,
		names: make([]string, schema.NumFields()),
		cols:  make([]arrow.Array, schema.NumFields()),
		meta:  datatable.Metadata{"rows": tbl.NumRows()},
	}
	tbl.Retain()
	for i, f := range schema.Fields() {
		s.names[i] = f.Name
		chunks := tbl.Column(i).Data().Chunks()
		switch len(chunks) {
		case 0:
			s.cols[i] = array.MakeArrayOfNull(mem, f.Type, 0)
		case 1:
			chunks[0].Retain()
			s.cols[i] = chunks[0]
		default:
			arr, err := array.Concatenate(chunks, mem)
			if err != nil {
				s.Release()
				return nil, fmt.Errorf("flatten column %s: %w", f.Name, err)
			}
			s.cols[i] = arr
		}
	}
	if md := schema.Metadata(); md.Len() > 0 {
		for i, k := range md.Keys() {
			s.meta[k] = md.Values()[i]
		}
	}
	return s, nil
}

// Release frees the wrapped table.
func (s *Source) Release() {
	for _, c := range s.cols {
		if c != nil {
			c.Release()
		}
	}
	s.cols = nil
	if s.table != nil {
		s.table.Release()
		s.table = nil
	}
}

// Table returns the wrapped table.
func (s *Source) Table() arrow.Table { return s.table }

// Schema returns the schema of the wrapped table.
func (s *Source) Schema() *arrow.Schema { return s.table.Schema() }

// ColumnNames implements datatable.DataSource.
func (s *Source) ColumnNames() []string { return s.names }

// ColumnType implements datatable.TypedSource.
func (s *Source) ColumnType(col int) (datatable.DataType, error) {
	if col < 0 || col >= len(s.cols) {
		return datatable.TypeUnset, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
	}
	return dataType(s.cols[col].DataType()), nil
}

// Metadata implements datatable.MetadataSource.
func (s *Source) Metadata() datatable.Metadata { return s.meta }

// KeyedByName reports that rows are maps keyed by field name.
func (s *Source) KeyedByName() bool { return true }

// Rows implements datatable.DataSource. Each row is a map from field name
// to a Go value; nulls are omitted so they read as missing.
func (s *Source) Rows(ctx context.Context) ([]any, error) {
	n := int(s.table.NumRows())
	rows := make([]any, n)
	for r := range n {
		if r%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := make(map[string]any, len(s.cols))
		for c, col := range s.cols {
			if v := goValue(col, r); v != nil {
				row[s.names[c]] = v
			}
		}
		rows[r] = row
	}
	return rows, nil
}

// Strings returns every row formatted as strings, in column order.
func (s *Source) Strings() [][]string {
	n := int(s.table.NumRows())
	out := make([][]string, n)
	for r := range n {
		row := make([]string, len(s.cols))
		for c, col := range s.cols {
			row[c] = formatValue(col, r)
		}
		out[r] = row
	}
	return out
}

// ReadParquet reads a whole Parquet stream into an arrow table.
func ReadParquet(ctx context.Context, r parquet.ReaderAtSeeker) (arrow.Table, error) {
	mem := memory.NewGoAllocator()
	pf, err := file.NewParquetReader(r, file.WithReadProps(parquet.NewReaderProperties(mem)))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}
	table, err := reader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	return table, nil
}

// ReadParquetFile opens path and wraps its contents as a Source.
func ReadParquetFile(ctx context.Context, path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer f.Close()

	return readSource(ctx, f)
}

func readSource(ctx context.Context, r parquet.ReaderAtSeeker) (*Source, error) {
	table, err := ReadParquet(ctx, r)
	if err != nil {
		return nil, err
	}
	defer table.Release()
	return FromTable(table)
}

// ReadParquetStream buffers a non-seekable stream, such as a decompressed
// file, and reads it as Parquet.
func ReadParquetStream(ctx context.Context, r io.Reader) (*Source, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet stream: %w", err)
	}
	return readSource(ctx, bytes.NewReader(b))
}

// dataType maps an arrow type onto the datatable type used for ordering.
func dataType(t arrow.DataType) datatable.DataType {
	switch t.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64,
		arrow.DECIMAL128, arrow.DECIMAL256:
		return datatable.TypeNumeric
	case arrow.DATE32, arrow.DATE64, arrow.TIMESTAMP:
		return datatable.TypeDate
	default:
		return datatable.TypeString
	}
}
