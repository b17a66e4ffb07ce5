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

// Package datatable implements paging, searching and ordering over an
// in-memory set of rows. It computes which rows to show and in which order;
// drawing them is left to a presentation layer.
package datatable

import (
	"fmt"
	"strings"
)

// DataType represents the type of data in a column.
type DataType int

const (
	// TypeUnset means the type has not been declared and will be detected
	// from the first non-empty value.
	TypeUnset DataType = iota
	// TypeString represents string data.
	TypeString
	// TypeNumeric represents numeric data (integers and floats).
	TypeNumeric
	// TypeDate represents date or timestamp data.
	TypeDate
	// TypeHTML represents string data carrying markup.
	TypeHTML
)

// String returns the string representation of a DataType.
func (dt DataType) String() string {
	switch dt {
	case TypeUnset:
		return "unset"
	case TypeString:
		return "string"
	case TypeNumeric:
		return "numeric"
	case TypeDate:
		return "date"
	case TypeHTML:
		return "html"
	default:
		return fmt.Sprintf("unknown(%d)", dt)
	}
}

// ParseDataType maps a configured type name to a DataType.
// Unknown names return TypeUnset and false.
func ParseDataType(s string) (DataType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return TypeUnset, true
	case "string":
		return TypeString, true
	case "numeric", "num", "number":
		return TypeNumeric, true
	case "date":
		return TypeDate, true
	case "html":
		return TypeHTML, true
	default:
		return TypeUnset, false
	}
}

// Value is a typed container for cell values.
// It holds the raw value, type information, and a pre-formatted string for display.
type Value struct {
	// Raw holds the value resolved by the column accessor.
	Raw any

	// Type is the column type at the time the value was read.
	Type DataType

	// IsNull indicates the accessor could not resolve a value.
	IsNull bool

	// Formatted is the rendered display string.
	Formatted string
}

// NewValue creates a new Value from a raw value and type.
func NewValue(raw any, dataType DataType) Value {
	if raw == nil {
		return NewNullValue(dataType)
	}

	return Value{
		Raw:       raw,
		Type:      dataType,
		IsNull:    false,
		Formatted: formatValue(raw),
	}
}

// NewNullValue creates a null value of the specified type.
func NewNullValue(dataType DataType) Value {
	return Value{
		Raw:       nil,
		Type:      dataType,
		IsNull:    true,
		Formatted: "",
	}
}

// formatValue converts a raw value to a display string.
func formatValue(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", raw)
	}
}

// Metadata holds optional metadata about a data source.
type Metadata map[string]any

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// SortNone indicates no sorting.
	SortNone SortDirection = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the configuration name of a SortDirection.
func (sd SortDirection) String() string {
	switch sd {
	case SortNone:
		return ""
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return fmt.Sprintf("unknown(%d)", sd)
	}
}

// ParseSortDirection maps "asc"/"desc" (any case) to a SortDirection.
func ParseSortDirection(s string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return SortAscending
	case "desc", "descending":
		return SortDescending
	default:
		return SortNone
	}
}

// SortKey is one entry of a sort specification.
type SortKey struct {
	// Column is the index of the sorted column.
	Column int `json:"column"`
	// Direction is the sort direction.
	Direction SortDirection `json:"dir"`
}

// SortSpec is an ordered list of sort keys; the first key is the primary one.
type SortSpec []SortKey

// IsSorted returns true if the spec orders by at least one column.
func (s SortSpec) IsSorted() bool {
	for _, k := range s {
		if k.Column >= 0 && k.Direction != SortNone {
			return true
		}
	}
	return false
}

// IndexOf returns the position of col in the spec, or -1.
func (s SortSpec) IndexOf(col int) int {
	for i, k := range s {
		if k.Column == col {
			return i
		}
	}
	return -1
}

// CellMode selects which representation of a cell is requested.
type CellMode int

const (
	// ModeRaw is the value resolved by the accessor, before rendering.
	ModeRaw CellMode = iota
	// ModeDisplay is the rendered value shown to the user.
	ModeDisplay
	// ModeSearch is the normalized string used for matching.
	ModeSearch
	// ModeSort is the value handed to the comparators.
	ModeSort
	// ModeType is the value used for type detection.
	ModeType
)

// String returns the mode name passed to render functions.
func (m CellMode) String() string {
	switch m {
	case ModeRaw:
		return ""
	case ModeDisplay:
		return "display"
	case ModeSearch:
		return "filter"
	case ModeSort:
		return "sort"
	case ModeType:
		return "type"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}
