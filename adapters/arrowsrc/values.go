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
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	json "github.com/goccy/go-json"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05.999999999"
)

// goValue returns the Go value of one element: integers and floats keep
// their width, dates and timestamps become time.Time, nested values are
// decoded from their JSON form. Nulls return nil.
func goValue(col arrow.Array, pos int) any {
	if col.IsNull(pos) {
		return nil
	}

	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.LargeString:
		return c.Value(pos)
	case *array.Binary:
		return string(c.Value(pos))
	case *array.Boolean:
		return c.Value(pos)
	case *array.Int8:
		return c.Value(pos)
	case *array.Int16:
		return c.Value(pos)
	case *array.Int32:
		return c.Value(pos)
	case *array.Int64:
		return c.Value(pos)
	case *array.Uint8:
		return c.Value(pos)
	case *array.Uint16:
		return c.Value(pos)
	case *array.Uint32:
		return c.Value(pos)
	case *array.Uint64:
		return c.Value(pos)
	case *array.Float16:
		return c.Value(pos).Float32()
	case *array.Float32:
		return c.Value(pos)
	case *array.Float64:
		return c.Value(pos)
	case *array.Date32:
		return c.Value(pos).ToTime()
	case *array.Date64:
		return c.Value(pos).ToTime()
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(pos).ToTime(unit)
	case *array.Decimal128, *array.Decimal256:
		f, err := strconv.ParseFloat(col.ValueStr(pos), 64)
		if err != nil {
			return col.ValueStr(pos)
		}
		return f
	case *array.Struct, *array.List, *array.LargeList, *array.Map:
		var v any
		if err := json.Unmarshal([]byte(col.ValueStr(pos)), &v); err != nil {
			return col.ValueStr(pos)
		}
		return v
	default:
		return col.ValueStr(pos)
	}
}

// formatValue converts one element to its export string. Nulls are empty.
func formatValue(col arrow.Array, pos int) string {
	if col.IsNull(pos) {
		return ""
	}

	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.Binary:
		return string(c.Value(pos))
	case *array.Float32:
		return strconv.FormatFloat(float64(c.Value(pos)), 'f', -1, 32)
	case *array.Float64:
		return strconv.FormatFloat(c.Value(pos), 'f', -1, 64)
	case *array.Date32:
		return c.Value(pos).ToTime().Format(dateLayout)
	case *array.Date64:
		return c.Value(pos).ToTime().Format(dateLayout)
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(pos).ToTime(unit).Format(timestampLayout)
	default:
		return col.ValueStr(pos)
	}
}

// appendValue copies element pos of col into b, which must have been built
// for the same type.
func appendValue(b array.Builder, col arrow.Array, pos int) error {
	if col.IsNull(pos) {
		b.AppendNull()
		return nil
	}

	switch c := col.(type) {
	case *array.String:
		b.(*array.StringBuilder).Append(c.Value(pos))
	case *array.Binary:
		b.(*array.BinaryBuilder).Append(c.Value(pos))
	case *array.Boolean:
		b.(*array.BooleanBuilder).Append(c.Value(pos))
	case *array.Int8:
		b.(*array.Int8Builder).Append(c.Value(pos))
	case *array.Int16:
		b.(*array.Int16Builder).Append(c.Value(pos))
	case *array.Int32:
		b.(*array.Int32Builder).Append(c.Value(pos))
	case *array.Int64:
		b.(*array.Int64Builder).Append(c.Value(pos))
	case *array.Uint8:
		b.(*array.Uint8Builder).Append(c.Value(pos))
	case *array.Uint16:
		b.(*array.Uint16Builder).Append(c.Value(pos))
	case *array.Uint32:
		b.(*array.Uint32Builder).Append(c.Value(pos))
	case *array.Uint64:
		b.(*array.Uint64Builder).Append(c.Value(pos))
	case *array.Float32:
		b.(*array.Float32Builder).Append(c.Value(pos))
	case *array.Float64:
		b.(*array.Float64Builder).Append(c.Value(pos))
	case *array.Date32:
		b.(*array.Date32Builder).Append(c.Value(pos))
	case *array.Date64:
		b.(*array.Date64Builder).Append(c.Value(pos))
	case *array.Timestamp:
		b.(*array.TimestampBuilder).Append(c.Value(pos))
	case *array.Decimal128:
		b.(*array.Decimal128Builder).Append(c.Value(pos))
	case *array.Struct:
		sb := b.(*array.StructBuilder)
		sb.Append(true)
		for i := range c.NumField() {
			if err := appendValue(sb.FieldBuilder(i), c.Field(i), pos); err != nil {
				return err
			}
		}
	case *array.List:
		lb := b.(*array.ListBuilder)
		lb.Append(true)
		start, end := c.ValueOffsets(pos)
		for i := start; i < end; i++ {
			if err := appendValue(lb.ValueBuilder(), c.ListValues(), int(i)); err != nil {
				return err
			}
		}
	default:
		if err := b.AppendValueFromString(col.ValueStr(pos)); err != nil {
			return fmt.Errorf("copy %s value: %w", col.DataType(), err)
		}
	}
	return nil
}
