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

// Package filesrc opens local data files (CSV, JSON, Parquet, optionally
// gzip or zstd compressed) as datatable sources.
package filesrc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"dtb/adapters/arrowsrc"
	"dtb/datatable"
)

// FileType represents the type of data file
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeParquet
	FileTypeJSON
	FileTypeDeltaSharingProfile
)

func (f FileType) String() string {
	switch f {
	case FileTypeCSV:
		return "CSV"
	case FileTypeParquet:
		return "Parquet"
	case FileTypeJSON:
		return "JSON"
	case FileTypeDeltaSharingProfile:
		return "Delta Sharing profile"
	default:
		return "unknown"
	}
}

var (
	// ErrUnsupported is returned for files of an unknown type.
	ErrUnsupported = errors.New("unsupported file type")

	// ErrProfile is returned by Open for Delta Sharing profiles, which
	// describe a remote catalog rather than rows.
	ErrProfile = errors.New("file is a Delta Sharing profile")

	// ErrEmpty is returned for files without records.
	ErrEmpty = errors.New("file has no records")
)

// Loaded describes an opened file.
type Loaded struct {
	Path      string
	Type      FileType
	Rows      int
	Columns   int
	Separator rune
	Size      int64
}

// Summary is a one-line status message for the load.
func (l Loaded) Summary() string {
	name := filepath.Base(l.Path)
	switch l.Type {
	case FileTypeCSV:
		return fmt.Sprintf("Loaded CSV file: %s (%d rows, %d columns, separator: %s)",
			name, l.Rows, l.Columns, SeparatorName(l.Separator))
	case FileTypeParquet:
		return fmt.Sprintf("Loaded Parquet file: %s (%d rows, %d columns, %.2f MB)",
			name, l.Rows, l.Columns, float64(l.Size)/(1024*1024))
	default:
		return fmt.Sprintf("Loaded %s file: %s (%d rows, %d columns)", l.Type, name, l.Rows, l.Columns)
	}
}

// compressionExt returns the compression suffix of path, if any.
func compressionExt(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gz", ".zst":
		return ext
	default:
		return ""
	}
}

// DetectFileType determines the type of file based on extension and content.
// A .gz or .zst suffix is looked through.
func DetectFileType(filePath string, content string) FileType {
	if c := compressionExt(filePath); c != "" {
		filePath = strings.TrimSuffix(filePath, filePath[len(filePath)-len(c):])
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv", ".tsv":
		return FileTypeCSV
	case ".parquet":
		return FileTypeParquet
	case ".json", ".share", ".txt":
		if IsDeltaSharingProfile(content) {
			return FileTypeDeltaSharingProfile
		}
		return FileTypeJSON
	default:
		return FileTypeUnknown
	}
}

// IsDeltaSharingProfile checks if the content looks like a Delta Sharing
// profile: shareCredentialsVersion, endpoint and bearerToken are present.
func IsDeltaSharingProfile(content string) bool {
	var profile map[string]any
	if err := json.Unmarshal([]byte(content), &profile); err != nil {
		return false
	}
	_, hasVersion := profile["shareCredentialsVersion"]
	_, hasEndpoint := profile["endpoint"]
	_, hasBearerToken := profile["bearerToken"]
	return hasVersion && hasEndpoint && hasBearerToken
}

// DetectSeparator picks the most frequent of , ; tab and | on the first
// line, defaulting to a comma.
func DetectSeparator(firstLine string) rune {
	detected, most := ',', 0
	for _, sep := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(firstLine, string(sep)); n > most {
			detected, most = sep, n
		}
	}
	return detected
}

// SeparatorName returns a human-readable name for the separator
func SeparatorName(sep rune) string {
	switch sep {
	case ',':
		return "comma"
	case ';':
		return "semicolon"
	case '\t':
		return "tab"
	case '|':
		return "pipe"
	default:
		return string(sep)
	}
}

// decompress wraps r according to the compression suffix of path.
func decompress(path string, r io.Reader) (io.ReadCloser, error) {
	switch compressionExt(path) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return zr, nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

// Open loads path as a data source. Parquet sources are *arrowsrc.Source
// and must be released by the caller.
func Open(ctx context.Context, path string) (datatable.DataSource, Loaded, error) {
	info := Loaded{Path: path}

	f, err := os.Open(path)
	if err != nil {
		return nil, info, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	if st, err := f.Stat(); err == nil {
		info.Size = st.Size()
	}

	r, err := decompress(path, f)
	if err != nil {
		return nil, info, err
	}
	defer r.Close()

	var head string
	br := bufio.NewReader(r)
	if b, err := br.Peek(4096); len(b) > 0 {
		head = string(b)
	} else if err != nil && !errors.Is(err, io.EOF) {
		return nil, info, fmt.Errorf("failed to read file: %w", err)
	}
	info.Type = DetectFileType(path, head)

	var ds datatable.DataSource
	switch info.Type {
	case FileTypeCSV:
		var src *datatable.SliceSource
		src, info.Separator, err = ReadCSV(br)
		ds = src
	case FileTypeJSON:
		ds, err = ReadJSON(br)
	case FileTypeParquet:
		if compressionExt(path) == "" {
			ds, err = arrowsrc.ReadParquetFile(ctx, path)
		} else {
			ds, err = arrowsrc.ReadParquetStream(ctx, br)
		}
	case FileTypeDeltaSharingProfile:
		return nil, info, ErrProfile
	default:
		return nil, info, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}
	if err != nil {
		return nil, info, err
	}

	rows, err := ds.Rows(ctx)
	if err != nil {
		return nil, info, err
	}
	info.Rows = len(rows)
	info.Columns = len(ds.ColumnNames())
	return ds, info, nil
}

// ReadCSV reads a CSV stream whose first line holds the headers. The
// separator is detected from that line.
func ReadCSV(r io.Reader) (*datatable.SliceSource, rune, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, ',', fmt.Errorf("failed to read CSV header: %w", err)
	}
	sep := DetectSeparator(strings.TrimRight(first, "\r\n"))

	cr := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, sep, fmt.Errorf("failed to load CSV file: %w", err)
	}
	if len(records) == 0 {
		return nil, sep, ErrEmpty
	}

	headers := records[0]
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return datatable.FromRecords(headers, records[1:]), sep, nil
}

// ReadJSON reads an array of objects, or a single object, as keyed rows.
func ReadJSON(r io.Reader) (*datatable.SliceSource, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}

	var data []map[string]any
	if err := json.Unmarshal(content, &data); err != nil {
		var single map[string]any
		if err := json.Unmarshal(content, &single); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		data = []map[string]any{single}
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return datatable.FromMaps(keyOrder(content), data), nil
}

// keyOrder lists the keys of the records in the order they first appear in
// the document. It returns nil when the document cannot be walked, which
// leaves the sorted key order.
func keyOrder(content []byte) []string {
	var raws []json.RawMessage
	if err := json.Unmarshal(content, &raws); err != nil {
		raws = []json.RawMessage{content}
	}

	seen := make(map[string]bool)
	var names []string
	for _, raw := range raws {
		dec := json.NewDecoder(bytes.NewReader(raw))
		if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
			return nil
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil
			}
			key, ok := tok.(string)
			if !ok {
				return nil
			}
			if !seen[key] {
				seen[key] = true
				names = append(names, key)
			}
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil
			}
		}
	}
	return names
}
