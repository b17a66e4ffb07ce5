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
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"

	"dtb/internal/options"
)

// Config is the canonical, fully merged configuration of a table.
// Build it with ConfigFromTree or DefaultConfig.
type Config struct {
	Paging        bool                  `json:"paging"`
	Searching     bool                  `json:"searching"`
	Ordering      bool                  `json:"ordering"`
	PageLength    int                   `json:"pageLength"`
	DisplayStart  int                   `json:"displayStart"`
	Order         []OrderOption         `json:"order"`
	Search        SearchOptions         `json:"search"`
	SearchCols    []ColumnSearchOptions `json:"searchCols"`
	Column        ColumnOptions         `json:"column"`
	Columns       []ColumnOptions       `json:"columns"`
	ColumnDefs    []ColumnDef           `json:"columnDefs"`
	Language      Language              `json:"language"`
	Locale        string                `json:"locale"`
	StateSave     bool                  `json:"stateSave"`
	StateDuration int                   `json:"stateDuration"`
	LengthMenu    []int                 `json:"lengthMenu"`
}

// ColumnOptions holds per-column settings. Nil fields are left unchanged
// when the options are applied to a column.
type ColumnOptions struct {
	Title          *string  `json:"title,omitempty"`
	Name           *string  `json:"name,omitempty"`
	ClassName      *string  `json:"className,omitempty"`
	Type           *string  `json:"type,omitempty"`
	Visible        *bool    `json:"visible,omitempty"`
	Orderable      *bool    `json:"orderable,omitempty"`
	Searchable     *bool    `json:"searchable,omitempty"`
	OrderSequence  []string `json:"orderSequence,omitempty"`
	OrderData      []int    `json:"orderData,omitempty"`
	DefaultContent *string  `json:"defaultContent,omitempty"`
	Data           any      `json:"data,omitempty"`
	Render         any      `json:"render,omitempty"`
	DataScript     string   `json:"dataScript,omitempty"`
	RenderScript   string   `json:"renderScript,omitempty"`
}

// ColumnDef applies ColumnOptions to every column selected by Targets.
// Targets must be a list; see resolveTarget for the accepted entries.
type ColumnDef struct {
	ColumnOptions
	Targets any `json:"targets"`
}

// SearchOptions is the configured state of one search box.
type SearchOptions struct {
	Search          string `json:"search"`
	Regex           bool   `json:"regex"`
	Smart           bool   `json:"smart"`
	CaseInsensitive bool   `json:"caseInsensitive"`
}

// Search converts the options to a search value.
func (o SearchOptions) toSearch() Search {
	return Search{Term: o.Search, Regex: o.Regex, Smart: o.Smart, CaseInsensitive: o.CaseInsensitive}
}

// ColumnSearchOptions is one searchCols entry. Flags the entry leaves
// out are true; a null entry gets the plain search defaults.
type ColumnSearchOptions struct {
	SearchOptions
}

// UnmarshalJSON presets the omitted flags before decoding.
func (o *ColumnSearchOptions) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		o.SearchOptions = SearchOptions{Smart: true, CaseInsensitive: true}
		return nil
	}
	p := SearchOptions{Regex: true, Smart: true, CaseInsensitive: true}
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("%w: searchCols entry: %w", ErrInvalidConfig, err)
	}
	o.SearchOptions = p
	return nil
}

// Paginate holds the pager button labels.
type Paginate struct {
	First    string `json:"first"`
	Previous string `json:"previous"`
	Next     string `json:"next"`
	Last     string `json:"last"`
}

// Language holds the display strings.
type Language struct {
	EmptyTable     string   `json:"emptyTable"`
	Info           string   `json:"info"`
	InfoEmpty      string   `json:"infoEmpty"`
	InfoFiltered   string   `json:"infoFiltered"`
	InfoPostFix    string   `json:"infoPostFix"`
	Thousands      string   `json:"thousands"`
	LengthMenu     string   `json:"lengthMenu"`
	LoadingRecords string   `json:"loadingRecords"`
	Processing     string   `json:"processing"`
	Search         string   `json:"search"`
	ZeroRecords    string   `json:"zeroRecords"`
	Paginate       Paginate `json:"paginate"`
}

// OrderOption is one initial sort entry. It decodes from either
// [column, "asc"] or {"column": 0, "dir": "asc"}.
type OrderOption struct {
	Column int    `json:"column"`
	Dir    string `json:"dir"`
}

// UnmarshalJSON accepts the pair and object forms.
func (o *OrderOption) UnmarshalJSON(b []byte) error {
	var pair []any
	if err := json.Unmarshal(b, &pair); err == nil {
		if len(pair) < 2 {
			return fmt.Errorf("%w: order entry needs a column and a direction", ErrInvalidConfig)
		}
		col, ok := pair[0].(float64)
		if !ok {
			return fmt.Errorf("%w: order column must be a number", ErrInvalidConfig)
		}
		dir, _ := pair[1].(string)
		o.Column, o.Dir = int(col), dir
		return nil
	}
	type plain OrderOption
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("%w: order entry: %w", ErrInvalidConfig, err)
	}
	*o = OrderOption(p)
	return nil
}

// DefaultConfig returns the configuration produced by the default option tree.
func DefaultConfig() Config {
	cfg, err := ConfigFromTree(options.Defaults())
	if err != nil {
		// The default tree is static; failing to decode it is a programming error.
		panic(err)
	}
	return cfg
}

// ConfigFromTree decodes a canonical option tree, normally the output of
// options.Normalize.
func ConfigFromTree(tree map[string]any) (Config, error) {
	b, err := json.Marshal(tree)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// NormalizeConfig merges a user option tree in either naming convention over
// the defaults and decodes the result.
func NormalizeConfig(user map[string]any, force bool) (Config, error) {
	return ConfigFromTree(options.Normalize(options.Defaults(), user, force))
}

func (cfg Config) sortSpec() SortSpec {
	spec := make(SortSpec, 0, len(cfg.Order))
	for _, o := range cfg.Order {
		d := ParseSortDirection(o.Dir)
		if d == SortNone {
			d = SortAscending
		}
		spec = append(spec, SortKey{Column: o.Column, Direction: d})
	}
	return spec
}
