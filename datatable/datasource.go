package datatable

import (
	"context"
	"maps"
	"slices"
)

// DataSource provides the rows of a table.
// Implementations should return errors rather than panic.
type DataSource interface {
	// ColumnNames returns the source's column names. They become the
	// titles and names of columns the configuration leaves untitled.
	ColumnNames() []string

	// Rows returns the backing object of every row, in order.
	// Each object must be readable by the column accessors.
	Rows(ctx context.Context) ([]any, error)
}

// TypedSource is a DataSource that knows its column types. Declared types
// take precedence over detection for columns with no configured type.
type TypedSource interface {
	DataSource

	// ColumnType returns the data type of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnType(col int) (DataType, error)
}

// MetadataSource is a DataSource carrying descriptive metadata.
type MetadataSource interface {
	DataSource

	// Metadata returns optional metadata about the data source.
	// Returns an empty Metadata map if no metadata is available.
	Metadata() Metadata
}

// SliceSource is an in-memory DataSource.
type SliceSource struct {
	names []string
	rows  []any
}

// NewSliceSource returns a source over arbitrary backing objects.
func NewSliceSource(names []string, rows []any) *SliceSource {
	return &SliceSource{names: names, rows: rows}
}

// FromRecords returns a source over string records, such as rows read from
// markup or CSV. Each record becomes a []any row read by index.
func FromRecords(names []string, records [][]string) *SliceSource {
	rows := make([]any, len(records))
	for i, rec := range records {
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		rows[i] = row
	}
	return &SliceSource{names: names, rows: rows}
}

// FromMaps returns a source over keyed rows. With no names, the sorted
// union of all keys is used.
func FromMaps(names []string, records []map[string]any) *SliceSource {
	if names == nil {
		seen := make(map[string]struct{})
		for _, rec := range records {
			for k := range rec {
				seen[k] = struct{}{}
			}
		}
		names = slices.Sorted(maps.Keys(seen))
	}
	rows := make([]any, len(records))
	for i, rec := range records {
		rows[i] = rec
	}
	return &SliceSource{names: names, rows: rows}
}

// ColumnNames implements DataSource.
func (s *SliceSource) ColumnNames() []string { return s.names }

// Rows implements DataSource.
func (s *SliceSource) Rows(ctx context.Context) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.rows, nil
}

// KeyedByName reports whether rows are maps, whose columns must be read by
// key rather than by position.
func (s *SliceSource) KeyedByName() bool {
	for _, r := range s.rows {
		switch r.(type) {
		case map[string]any, map[string]string:
			return true
		}
		return false
	}
	return false
}
