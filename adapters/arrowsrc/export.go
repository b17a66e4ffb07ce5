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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	json "github.com/goccy/go-json"

	"dtb/datatable"
)

// Format is an export file format.
type Format int

const (
	FormatParquet Format = iota
	FormatCSV
	FormatJSON
)

// ErrNoRows is returned when a view with no rows is exported.
var ErrNoRows = errors.New("no data to export")

// Ext returns the file extension of the format, with the dot.
func (f Format) Ext() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ".parquet"
	}
}

func (f Format) String() string { return strings.TrimPrefix(f.Ext(), ".") }

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return FormatParquet, nil
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

// ViewTable builds an arrow table holding the visible columns of the rows
// in v, in display order. When src is the source tbl was loaded from, the
// columns it backs keep their arrow type; other columns are built from the
// cell values as float64, timestamp or string.
func ViewTable(tbl *datatable.Table, v datatable.View, src *Source) (arrow.Table, error) {
	rows := v.Filtered
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	if src != nil && int(src.table.NumRows()) != tbl.Store().Len() {
		// Rows were added after the load; positions no longer line up.
		src = nil
	}

	mem := memory.NewGoAllocator()
	visible := tbl.VisibleColumns()
	fields := make([]arrow.Field, len(visible))
	columns := make([]arrow.Column, len(visible))
	defer func() {
		for i := range columns {
			if columns[i].Data() != nil {
				columns[i].Release()
			}
		}
	}()

	for i, c := range visible {
		var arr arrow.Array
		var err error
		if src != nil && c < len(src.cols) {
			fields[i] = src.Schema().Field(c)
			arr, err = copyRows(mem, src.cols[c], rows)
		} else {
			fields[i], arr, err = buildColumn(mem, tbl, c, rows)
		}
		if err != nil {
			return nil, err
		}
		chunked := arrow.NewChunked(fields[i].Type, []arrow.Array{arr})
		arr.Release()
		columns[i] = *arrow.NewColumn(fields[i], chunked)
		chunked.Release()
	}

	schema := arrow.NewSchema(fields, nil)
	// NewTable retains the columns; the deferred release drops ours.
	return array.NewTable(schema, columns, int64(len(rows))), nil
}

func copyRows(mem memory.Allocator, col arrow.Array, rows []int) (arrow.Array, error) {
	b := array.NewBuilder(mem, col.DataType())
	defer b.Release()
	for _, r := range rows {
		if err := appendValue(b, col, r); err != nil {
			return nil, err
		}
	}
	return b.NewArray(), nil
}

func buildColumn(mem memory.Allocator, tbl *datatable.Table, col int, rows []int) (arrow.Field, arrow.Array, error) {
	c := tbl.Columns()[col]
	name := c.Title
	if name == "" {
		name = c.Name
	}
	if name == "" {
		name = fmt.Sprintf("column_%d", col)
	}
	store := tbl.Store()

	switch c.Type {
	case datatable.TypeNumeric:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for _, r := range rows {
			v, err := store.GetCell(r, col, datatable.ModeSort)
			if err != nil {
				return arrow.Field{}, nil, err
			}
			if f, ok := v.(float64); ok {
				b.Append(f)
			} else {
				b.AppendNull()
			}
		}
		return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}, b.NewArray(), nil

	case datatable.TypeDate:
		typ := arrow.FixedWidthTypes.Timestamp_ns.(*arrow.TimestampType)
		b := array.NewTimestampBuilder(mem, typ)
		defer b.Release()
		for _, r := range rows {
			v, err := store.GetCell(r, col, datatable.ModeSort)
			if err != nil {
				return arrow.Field{}, nil, err
			}
			if f, ok := v.(float64); ok {
				b.Append(arrow.Timestamp(int64(f)))
			} else {
				b.AppendNull()
			}
		}
		return arrow.Field{Name: name, Type: typ, Nullable: true}, b.NewArray(), nil

	default:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for _, r := range rows {
			v, err := store.Value(r, col)
			if err != nil {
				return arrow.Field{}, nil, err
			}
			if v.IsNull && v.Formatted == "" {
				b.AppendNull()
				continue
			}
			s, _ := store.GetCell(r, col, datatable.ModeSearch)
			b.Append(s.(string))
		}
		return arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}, b.NewArray(), nil
	}
}

// WriteParquet writes table as Snappy-compressed Parquet.
func WriteParquet(w io.Writer, table arrow.Table) error {
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(table.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.WriteTable(table, max(table.NumRows(), 1)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// WriteCSV writes table as CSV with a header line of field names.
func WriteCSV(w io.Writer, table arrow.Table) error {
	cols, release, err := flatten(table)
	if err != nil {
		return err
	}
	defer release()

	writer := csv.NewWriter(w)
	schema := table.Schema()
	headers := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		headers[i] = field.Name
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(cols))
	for r := range int(table.NumRows()) {
		for c, col := range cols {
			row[c] = formatValue(col, r)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON writes table as an indented JSON array of objects.
func WriteJSON(w io.Writer, table arrow.Table) error {
	cols, release, err := flatten(table)
	if err != nil {
		return err
	}
	defer release()

	schema := table.Schema()
	records := make([]map[string]any, table.NumRows())
	for r := range records {
		record := make(map[string]any, len(cols))
		for c, col := range cols {
			record[schema.Field(c).Name] = jsonValue(col, r)
		}
		records[r] = record
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func jsonValue(col arrow.Array, pos int) any {
	switch col.(type) {
	case *array.Date32, *array.Date64:
		if col.IsNull(pos) {
			return nil
		}
		return formatValue(col, pos)
	case *array.Timestamp:
		if col.IsNull(pos) {
			return nil
		}
		return goValue(col, pos).(time.Time).UTC().Format(time.RFC3339Nano)
	default:
		return goValue(col, pos)
	}
}

// flatten returns one array per column.
func flatten(table arrow.Table) ([]arrow.Array, func(), error) {
	s, err := FromTable(table)
	if err != nil {
		return nil, nil, err
	}
	return s.cols, s.Release, nil
}

// Export writes the visible columns of the filtered and sorted rows of v.
func Export(w io.Writer, format Format, tbl *datatable.Table, v datatable.View, src *Source) error {
	table, err := ViewTable(tbl, v, src)
	if err != nil {
		return fmt.Errorf("failed to prepare filtered data: %w", err)
	}
	defer table.Release()

	switch format {
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatJSON:
		return WriteJSON(w, table)
	default:
		return WriteParquet(w, table)
	}
}

// ExportFile exports to path, choosing the format from its extension.
func ExportFile(path string, tbl *datatable.Table, v datatable.View, src *Source) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s file: %w", format, err)
	}
	if err := Export(f, format, tbl, v, src); err != nil {
		f.Close()
		return err
	}
	// The parquet writer closes the file itself.
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}
