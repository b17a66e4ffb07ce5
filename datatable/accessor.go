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
	"strconv"
	"strings"
)

// AccessorKind identifies which variant an Accessor is.
type AccessorKind int

const (
	// AccessIndex reads a positional element of a slice row.
	AccessIndex AccessorKind = iota
	// AccessKeyPath reads a dotted path through maps and slices.
	AccessKeyPath
	// AccessFunc delegates to caller supplied functions.
	AccessFunc
)

// GetterFunc resolves a cell value from a backing row.
type GetterFunc func(row any) (any, bool)

// SetterFunc writes a cell value into a backing row and returns the row,
// which may be a new object.
type SetterFunc func(row any, v any) (any, error)

// Accessor resolves and writes one column's value in a backing row.
// It is resolved once per column and reused for every cell.
type Accessor struct {
	kind  AccessorKind
	index int
	path  []string
	get   GetterFunc
	set   SetterFunc
}

// ByIndex returns an accessor reading element i of a slice row.
func ByIndex(i int) Accessor {
	return Accessor{kind: AccessIndex, index: i}
}

// ByKeyPath returns an accessor walking a dotted path, e.g. "user.emails.0".
// Numeric segments index into slices.
func ByKeyPath(path string) Accessor {
	return Accessor{kind: AccessKeyPath, path: strings.Split(path, ".")}
}

// ByKey returns a key path accessor of a single key, which may itself
// contain dots.
func ByKey(key string) Accessor {
	return Accessor{kind: AccessKeyPath, path: []string{key}}
}

// ByFunc returns an accessor backed by functions. set may be nil, in which
// case writes fail with ErrReadOnlyAccessor.
func ByFunc(get GetterFunc, set SetterFunc) Accessor {
	return Accessor{kind: AccessFunc, get: get, set: set}
}

// AccessorFromOption builds an accessor from a configuration value:
// a number selects an index, a string a key path, nil the column's own index.
func AccessorFromOption(v any, col int) (Accessor, error) {
	switch t := v.(type) {
	case nil:
		return ByIndex(col), nil
	case int:
		return ByIndex(t), nil
	case int64:
		return ByIndex(int(t)), nil
	case float64:
		return ByIndex(int(t)), nil
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return ByIndex(n), nil
		}
		return ByKeyPath(t), nil
	case Accessor:
		return t, nil
	default:
		return Accessor{}, fmt.Errorf("%w: unsupported data option %T", ErrInvalidConfig, v)
	}
}

// Kind reports the accessor variant.
func (a Accessor) Kind() AccessorKind { return a.kind }

// String describes the accessor for logs.
func (a Accessor) String() string {
	switch a.kind {
	case AccessIndex:
		return fmt.Sprintf("index(%d)", a.index)
	case AccessKeyPath:
		return fmt.Sprintf("path(%s)", strings.Join(a.path, "."))
	default:
		return "func"
	}
}

// Get resolves the value. ok is false when the row has no such value.
func (a Accessor) Get(row any) (any, bool) {
	switch a.kind {
	case AccessIndex:
		return indexGet(row, a.index)
	case AccessKeyPath:
		cur := row
		for _, seg := range a.path {
			v, ok := segmentGet(cur, seg)
			if !ok {
				return nil, false
			}
			cur = v
		}
		return cur, cur != nil
	default:
		if a.get == nil {
			return nil, false
		}
		return a.get(row)
	}
}

// Set writes v and returns the updated row.
func (a Accessor) Set(row any, v any) (any, error) {
	switch a.kind {
	case AccessIndex:
		return indexSet(row, a.index, v)
	case AccessKeyPath:
		return pathSet(row, a.path, v)
	default:
		if a.set == nil {
			return row, ErrReadOnlyAccessor
		}
		return a.set(row, v)
	}
}

func indexGet(row any, i int) (any, bool) {
	if i < 0 {
		return nil, false
	}
	switch r := row.(type) {
	case []any:
		if i >= len(r) || r[i] == nil {
			return nil, false
		}
		return r[i], true
	case []string:
		if i >= len(r) {
			return nil, false
		}
		return r[i], true
	default:
		return nil, false
	}
}

func indexSet(row any, i int, v any) (any, error) {
	if i < 0 {
		return row, fmt.Errorf("%w: negative index %d", ErrInvalidColumn, i)
	}
	switch r := row.(type) {
	case nil:
		out := make([]any, i+1)
		out[i] = v
		return out, nil
	case []any:
		for len(r) <= i {
			r = append(r, nil)
		}
		r[i] = v
		return r, nil
	case []string:
		str, ok := v.(string)
		if !ok {
			// A non-string value turns the row into []any so it reads back raw.
			return indexSet(widenSlice(r), i, v)
		}
		for len(r) <= i {
			r = append(r, "")
		}
		r[i] = str
		return r, nil
	default:
		return row, fmt.Errorf("%w: %T by index", ErrUnsupportedRow, row)
	}
}

func segmentGet(cur any, seg string) (any, bool) {
	switch c := cur.(type) {
	case map[string]any:
		v, ok := c[seg]
		return v, ok
	case map[string]string:
		v, ok := c[seg]
		return v, ok
	case []any, []string:
		n, err := strconv.Atoi(seg)
		if err != nil {
			return nil, false
		}
		return indexGet(c, n)
	default:
		return nil, false
	}
}

func pathSet(row any, path []string, v any) (any, error) {
	if len(path) == 0 {
		return v, nil
	}
	seg, rest := path[0], path[1:]

	switch r := row.(type) {
	case nil:
		if n, err := strconv.Atoi(seg); err == nil {
			child, err := pathSet(nil, rest, v)
			if err != nil {
				return row, err
			}
			return indexSet(nil, n, child)
		}
		child, err := pathSet(nil, rest, v)
		if err != nil {
			return row, err
		}
		return map[string]any{seg: child}, nil
	case map[string]any:
		child, err := pathSet(r[seg], rest, v)
		if err != nil {
			return row, err
		}
		r[seg] = child
		return r, nil
	case map[string]string:
		str, ok := v.(string)
		if len(rest) > 0 || !ok {
			return pathSet(widenMap(r), path, v)
		}
		r[seg] = str
		return r, nil
	case []any, []string:
		n, err := strconv.Atoi(seg)
		if err != nil {
			return row, fmt.Errorf("%w: non-numeric segment %q on slice", ErrUnsupportedRow, seg)
		}
		var existing any
		if e, ok := indexGet(r, n); ok {
			existing = e
		}
		child, err := pathSet(existing, rest, v)
		if err != nil {
			return row, err
		}
		return indexSet(r, n, child)
	default:
		return row, fmt.Errorf("%w: %T by key path", ErrUnsupportedRow, row)
	}
}

func widenSlice(r []string) []any {
	out := make([]any, len(r))
	for i, v := range r {
		out[i] = v
	}
	return out
}

func widenMap(r map[string]string) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
