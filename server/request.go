// Package server answers server-side processing requests for one table
// over HTTP. Both parameter conventions are accepted: the legacy Hungarian
// names (sEcho, iDisplayStart, iSortCol_0, ...) and the modern bracketed
// names (draw, start, order[0][column], ...). The reply uses the naming of
// the request.
package server

import (
	"fmt"
	"net/url"
	"strconv"

	"dtb/datatable"
)

// Request is one decoded draw request.
type Request struct {
	// Legacy is set when the request used the Hungarian parameter names.
	Legacy bool
	Draw   int
	Start  int
	// Length is the page size; -1 asks for every filtered row.
	Length  int
	Search  *datatable.Search
	Order   datatable.SortSpec
	Columns map[int]datatable.Search
}

// ParseRequest decodes form values. Parameters that are absent leave the
// table's settings in place; malformed numbers are errors.
func ParseRequest(form url.Values, columns int) (*Request, error) {
	req := &Request{Length: -2, Start: -1, Columns: make(map[int]datatable.Search)}
	_, req.Legacy = form["sEcho"]
	if !req.Legacy {
		_, req.Legacy = form["iDisplayStart"]
	}

	p := modernParams
	if req.Legacy {
		p = legacyParams
	}

	var err error
	if req.Draw, err = intParam(form, p.draw, 0); err != nil {
		return nil, err
	}
	if req.Start, err = intParam(form, p.start, -1); err != nil {
		return nil, err
	}
	if req.Length, err = intParam(form, p.length, -2); err != nil {
		return nil, err
	}
	if req.Draw < 0 {
		req.Draw = 0
	}

	if term, ok := lookup(form, p.search); ok {
		req.Search = &datatable.Search{Term: term, Regex: boolParam(form, p.regex)}
	}

	for i := range columns {
		if term, ok := lookup(form, p.columnSearch(i)); ok {
			req.Columns[i] = datatable.Search{Term: term, Regex: boolParam(form, p.columnRegex(i))}
		}
	}

	if req.Order, err = p.order(form, columns); err != nil {
		return nil, err
	}
	return req, nil
}

// params names the request parameters of one convention.
type params struct {
	draw, start, length, search, regex string
	columnSearch, columnRegex          func(i int) string
	order                              func(form url.Values, columns int) (datatable.SortSpec, error)
}

var legacyParams = params{
	draw:         "sEcho",
	start:        "iDisplayStart",
	length:       "iDisplayLength",
	search:       "sSearch",
	regex:        "bRegex",
	columnSearch: func(i int) string { return fmt.Sprintf("sSearch_%d", i) },
	columnRegex:  func(i int) string { return fmt.Sprintf("bRegex_%d", i) },
	order:        legacyOrder,
}

var modernParams = params{
	draw:         "draw",
	start:        "start",
	length:       "length",
	search:       "search[value]",
	regex:        "search[regex]",
	columnSearch: func(i int) string { return fmt.Sprintf("columns[%d][search][value]", i) },
	columnRegex:  func(i int) string { return fmt.Sprintf("columns[%d][search][regex]", i) },
	order:        modernOrder,
}

// legacyOrder reads iSortingCols pairs of iSortCol_N and sSortDir_N.
func legacyOrder(form url.Values, columns int) (datatable.SortSpec, error) {
	n, err := intParam(form, "iSortingCols", -1)
	if err != nil || n < 0 {
		return nil, err
	}
	// Each sort key needs its own iSortCol_N field.
	n = min(n, len(form))
	spec := datatable.SortSpec{}
	for i := range n {
		col, err := intParam(form, fmt.Sprintf("iSortCol_%d", i), -1)
		if err != nil {
			return nil, err
		}
		if col < 0 || col >= columns {
			continue
		}
		spec = append(spec, datatable.SortKey{Column: col, Direction: direction(form.Get(fmt.Sprintf("sSortDir_%d", i)))})
	}
	return spec, nil
}

// modernOrder reads order[N][column] and order[N][dir] until the first gap.
func modernOrder(form url.Values, columns int) (datatable.SortSpec, error) {
	if _, ok := form["order[0][column]"]; !ok {
		return nil, nil
	}
	spec := datatable.SortSpec{}
	for i := 0; ; i++ {
		key := fmt.Sprintf("order[%d][column]", i)
		if _, ok := form[key]; !ok {
			break
		}
		col, err := intParam(form, key, -1)
		if err != nil {
			return nil, err
		}
		if col < 0 || col >= columns {
			continue
		}
		spec = append(spec, datatable.SortKey{Column: col, Direction: direction(form.Get(fmt.Sprintf("order[%d][dir]", i)))})
	}
	return spec, nil
}

func direction(s string) datatable.SortDirection {
	if d := datatable.ParseSortDirection(s); d != datatable.SortNone {
		return d
	}
	return datatable.SortAscending
}

func lookup(form url.Values, key string) (string, bool) {
	v, ok := form[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func intParam(form url.Values, key string, def int) (int, error) {
	s, ok := lookup(form, key)
	if !ok || s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func boolParam(form url.Values, key string) bool {
	s, _ := lookup(form, key)
	b, _ := strconv.ParseBool(s)
	return b
}

// apply writes the request into a copy of the table settings.
func (r *Request) apply(s *datatable.Settings) {
	if r.Start >= 0 {
		s.Start = r.Start
	}
	switch {
	case r.Length == -1:
		s.Length = datatable.ShowAll
	case r.Length > 0:
		s.Length = r.Length
	}
	if r.Search != nil {
		s.Search.Term = r.Search.Term
		s.Search.Regex = r.Search.Regex
	}
	for i, cs := range r.Columns {
		if i < len(s.ColumnSearch) {
			s.ColumnSearch[i].Term = cs.Term
			s.ColumnSearch[i].Regex = cs.Regex
		}
	}
	if r.Order != nil {
		s.Order = r.Order
	}
}
