package datatable

import "errors"

// Common errors returned by the datatable package.
var (
	// ErrInvalidColumn is returned when a column index is out of range.
	ErrInvalidColumn = errors.New("invalid column index")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrInvalidFilter is returned when a filter expression is invalid.
	ErrInvalidFilter = errors.New("invalid filter expression")

	// ErrNoDataSource is returned when a required data source is nil.
	ErrNoDataSource = errors.New("data source is nil")

	// ErrInvalidSortColumn is returned when trying to sort by an invalid column.
	ErrInvalidSortColumn = errors.New("invalid sort column")

	// ErrReadOnlyAccessor is returned when writing through an accessor
	// that has no setter.
	ErrReadOnlyAccessor = errors.New("accessor is read-only")

	// ErrUnsupportedRow is returned when a backing row has a shape the
	// accessor cannot write into.
	ErrUnsupportedRow = errors.New("unsupported row shape")

	// ErrInvalidConfig is returned when a configuration tree cannot be decoded.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStateExpired is returned when a saved state is older than the
	// configured state duration.
	ErrStateExpired = errors.New("saved state expired")

	// ErrStateMismatch is returned when a saved state does not fit the table.
	ErrStateMismatch = errors.New("saved state does not match table")
)
