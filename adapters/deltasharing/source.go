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

package deltasharing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"golang.org/x/sync/errgroup"

	"dtb/adapters/arrowsrc"
	"dtb/datatable"
	"dtb/internal/filter"
)

// ErrNoFiles is returned for a table without data files.
var ErrNoFiles = errors.New("no files available for table")

// QueryOptions narrows what is loaded from a shared table.
type QueryOptions struct {
	// SelectedColumns keeps only the named columns; empty keeps all.
	SelectedColumns []string
	// Predicate is a filter expression such as "age > 25 AND city = Oslo"
	// evaluated against each loaded row.
	Predicate string
	// Limit caps the number of rows; zero or negative means no limit.
	Limit int64
	// Files restricts the load to these file ids; empty loads every file.
	Files []string
}

// ParseQueryOptions builds options from form input: a comma-separated
// column list, a predicate and a row limit, each of which may be empty.
func ParseQueryOptions(columns, predicate, limit string) (*QueryOptions, error) {
	opts := &QueryOptions{Predicate: strings.TrimSpace(predicate), Limit: -1}
	for _, col := range strings.Split(columns, ",") {
		if trimmed := strings.TrimSpace(col); trimmed != "" {
			opts.SelectedColumns = append(opts.SelectedColumns, trimmed)
		}
	}
	if limit = strings.TrimSpace(limit); limit != "" {
		n, err := strconv.ParseInt(limit, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid limit: must be a positive number")
		}
		opts.Limit = n
	}
	return opts, nil
}

// Source is a datatable.DataSource over a shared table. Every call to Rows
// fetches the table's current files, so loading it again refreshes the
// data.
type Source struct {
	client      Client
	table       Table
	opts        QueryOptions
	timeout     time.Duration
	concurrency int
	log         *datatable.Logger

	mu   sync.Mutex
	data *arrowsrc.Source
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithTimeout bounds each API call and file download.
func WithTimeout(d time.Duration) SourceOption {
	return func(s *Source) { s.timeout = d }
}

// WithConcurrency sets how many files are downloaded at once.
func WithConcurrency(n int) SourceOption {
	return func(s *Source) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger used for load progress.
func WithLogger(l *datatable.Logger) SourceOption {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSource returns a source for table. opts may be nil.
func NewSource(client Client, table Table, opts *QueryOptions, options ...SourceOption) *Source {
	s := &Source{
		client:      client,
		table:       table,
		timeout:     DefaultTimeout,
		concurrency: 4,
		log:         datatable.NoopLogger(),
	}
	if opts != nil {
		s.opts = *opts
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Name returns the shared table's name.
func (s *Source) Name() string { return s.table.Name }

// Rows implements datatable.DataSource.
func (s *Source) Rows(ctx context.Context) ([]any, error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return data.Rows(ctx)
}

// ColumnNames implements datatable.DataSource. It is empty until the first
// fetch.
func (s *Source) ColumnNames() []string {
	if d := s.Arrow(); d != nil {
		return d.ColumnNames()
	}
	return nil
}

// ColumnType implements datatable.TypedSource.
func (s *Source) ColumnType(col int) (datatable.DataType, error) {
	if d := s.Arrow(); d != nil {
		return d.ColumnType(col)
	}
	return datatable.TypeUnset, fmt.Errorf("%w: %d", datatable.ErrInvalidColumn, col)
}

// Metadata implements datatable.MetadataSource.
func (s *Source) Metadata() datatable.Metadata {
	md := datatable.Metadata{"share": s.table.Share, "schema": s.table.Schema, "table": s.table.Name}
	if d := s.Arrow(); d != nil {
		for k, v := range d.Metadata() {
			md[k] = v
		}
	}
	return md
}

// KeyedByName reports that rows are maps keyed by field name.
func (s *Source) KeyedByName() bool { return true }

// Arrow returns the data of the last fetch, or nil.
func (s *Source) Arrow() *arrowsrc.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Release frees the fetched data.
func (s *Source) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data != nil {
		s.data.Release()
		s.data = nil
	}
}

// Schema loads the first file of the table and returns its schema, for
// choosing columns before a full load.
func (s *Source) Schema(ctx context.Context) (*arrow.Schema, error) {
	ids, err := s.files(ctx)
	if err != nil {
		return nil, err
	}
	fctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	tbl, err := s.client.LoadFile(fctx, s.table, ids[0])
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	defer tbl.Release()
	return tbl.Schema(), nil
}

func (s *Source) files(ctx context.Context) ([]string, error) {
	lctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	ids, err := s.client.ListFiles(lctx, s.table)
	if err != nil {
		return nil, err
	}
	if len(s.opts.Files) > 0 {
		ids = slices.DeleteFunc(ids, func(id string) bool { return !slices.Contains(s.opts.Files, id) })
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFiles, s.table.Name)
	}
	return ids, nil
}

// fetch downloads the files concurrently, joins them in file order and
// applies the query options.
func (s *Source) fetch(ctx context.Context) (*arrowsrc.Source, error) {
	ids, err := s.files(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]arrow.Table, len(ids))
	defer func() {
		for _, t := range tables {
			if t != nil {
				t.Release()
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			fctx, cancel := withTimeout(gctx, s.timeout)
			defer cancel()
			tbl, err := s.client.LoadFile(fctx, s.table, id)
			if err != nil {
				return fmt.Errorf("load file %s: %w", id, err)
			}
			tables[i] = tbl
			s.log.DebugContext(ctx, "file loaded", "table", s.table.Name, "file", id, "rows", tbl.NumRows())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	joined, err := arrowsrc.Concat(tables)
	if err != nil {
		return nil, err
	}
	defer joined.Release()

	result, err := s.apply(joined)
	if err != nil {
		return nil, fmt.Errorf("failed to apply query options: %w", err)
	}
	defer result.Release()

	data, err := arrowsrc.FromTable(result)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.data != nil {
		s.data.Release()
	}
	s.data = data
	s.mu.Unlock()

	s.log.InfoContext(ctx, "shared table fetched", "table", s.table.Name, "files", len(ids), "rows", result.NumRows())
	return data, nil
}

// apply runs column selection, the predicate and the row limit, in that
// order.
func (s *Source) apply(table arrow.Table) (arrow.Table, error) {
	selected, err := arrowsrc.SelectColumns(table, s.opts.SelectedColumns)
	if err != nil {
		return nil, err
	}

	if s.opts.Predicate != "" {
		filtered, err := s.where(selected)
		selected.Release()
		if err != nil {
			return nil, err
		}
		selected = filtered
	}

	limited := arrowsrc.Limit(selected, s.opts.Limit)
	selected.Release()
	return limited, nil
}

func (s *Source) where(table arrow.Table) (arrow.Table, error) {
	src, err := arrowsrc.FromTable(table)
	if err != nil {
		return nil, err
	}
	defer src.Release()

	pred, err := filter.ParseQuery(s.opts.Predicate, src.ColumnNames())
	if err != nil {
		return nil, err
	}

	var keep []int
	for i, row := range src.Strings() {
		ok, err := pred.Evaluate(row, src.ColumnNames())
		if err != nil {
			return nil, err
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return arrowsrc.Take(table, keep)
}
