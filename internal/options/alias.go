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

package options

import (
	"slices"
	"strings"
	"unicode"
)

// Group names a level of the option tree. Keys are only aliased within
// their own group.
type Group string

const (
	GroupTop      Group = ""
	GroupLanguage Group = "language"
	GroupPaginate Group = "language.paginate"
	GroupSearch   Group = "search"
	GroupColumn   Group = "column"
	GroupResponse Group = "response"
)

// legacyNames are the option names of the Hungarian notation API, per group.
var legacyNames = map[Group][]string{
	GroupTop: {
		"bPaginate", "bLengthChange", "bFilter", "bSort", "bInfo", "bAutoWidth",
		"bProcessing", "bServerSide", "bStateSave", "bDeferRender", "bSortClasses",
		"iDisplayLength", "iDisplayStart", "iStateDuration", "iDeferLoading",
		"aaSorting", "aaSortingFixed", "aoColumns", "aoColumnDefs", "aoSearchCols",
		"aLengthMenu", "oSearch", "oLanguage",
		"sAjaxSource", "sAjaxDataProp", "sPaginationType", "sDom",
	},
	GroupLanguage: {
		"sEmptyTable", "sInfo", "sInfoEmpty", "sInfoFiltered", "sInfoPostFix",
		"sInfoThousands", "sLengthMenu", "sLoadingRecords", "sProcessing",
		"sSearch", "sZeroRecords", "sUrl", "oPaginate",
	},
	GroupPaginate: {"sFirst", "sPrevious", "sNext", "sLast"},
	GroupSearch:   {"sSearch", "bRegex", "bSmart", "bCaseInsensitive"},
	GroupColumn: {
		"sTitle", "sName", "sClass", "sType", "sWidth", "sCellType",
		"bVisible", "bSortable", "bSearchable", "asSorting", "aDataSort",
		"iDataSort", "sDefaultContent", "mData", "mDataProp", "mRender",
		"aTargets",
	},
	GroupResponse: {"sEcho", "iTotalRecords", "iTotalDisplayRecords", "aaData", "sError"},
}

// renames override the prefix rule where the modern name is not simply the
// legacy name without its type prefix.
var renames = map[Group]map[string]string{
	GroupTop: {
		"bPaginate":      "paging",
		"bFilter":        "searching",
		"bSort":          "ordering",
		"bSortClasses":   "orderClasses",
		"aaSorting":      "order",
		"aaSortingFixed": "orderFixed",
		"iDisplayLength": "pageLength",
		"sDom":           "dom",
	},
	GroupLanguage: {
		"sInfoThousands": "thousands",
	},
	GroupColumn: {
		"sClass":    "className",
		"bSortable": "orderable",
		"asSorting": "orderSequence",
		"aDataSort": "orderData",
		"iDataSort": "orderData",
		"mData":     "data",
		"mDataProp": "data",
		"mRender":   "render",
	},
	GroupResponse: {
		"sEcho":                "draw",
		"iTotalRecords":        "recordsTotal",
		"iTotalDisplayRecords": "recordsFiltered",
		"sError":               "error",
	},
}

// weak legacy keys only fill a canonical option nothing else has set.
var weak = map[Group]map[string]bool{
	GroupColumn: {"mDataProp": true, "iDataSort": true},
}

// scalarToList legacy keys carry a single value where the canonical option
// takes a list.
var scalarToList = map[Group]map[string]bool{
	GroupColumn: {"iDataSort": true},
}

// nested maps a canonical key to the group of its value.
var nested = map[Group]map[string]Group{
	GroupTop: {
		"language":   GroupLanguage,
		"search":     GroupSearch,
		"searchCols": GroupSearch,
		"column":     GroupColumn,
		"columns":    GroupColumn,
		"columnDefs": GroupColumn,
	},
	GroupLanguage: {"paginate": GroupPaginate},
}

const hungarianPrefixes = "a aa ao as b fn i m o s "

var (
	toCanonical map[Group]map[string]string
	toLegacy    map[Group]map[string]string
)

func init() {
	toCanonical = make(map[Group]map[string]string, len(legacyNames))
	toLegacy = make(map[Group]map[string]string, len(legacyNames))
	for g, names := range legacyNames {
		fwd := make(map[string]string, len(names))
		rev := make(map[string]string, len(names))
		for _, legacy := range names {
			canonical, ok := renames[g][legacy]
			if !ok {
				canonical, ok = stripPrefix(legacy)
			}
			if !ok {
				continue
			}
			fwd[legacy] = canonical
			// First strong name wins the reverse direction.
			if _, taken := rev[canonical]; !taken && !weak[g][legacy] {
				rev[canonical] = legacy
			}
		}
		toCanonical[g] = fwd
		toLegacy[g] = rev
	}
}

// stripPrefix applies the Hungarian prefix rule: a lower-case type prefix
// from the known set followed by an upper-case letter is removed and the
// letter lower-cased.
func stripPrefix(key string) (string, bool) {
	for i, r := range key {
		if !unicode.IsUpper(r) {
			continue
		}
		if i == 0 {
			return "", false
		}
		if !slices.Contains(strings.Fields(hungarianPrefixes), key[:i]) {
			return "", false
		}
		return string(unicode.ToLower(r)) + key[i+1:], true
	}
	return "", false
}

// Canonical returns the canonical name of a legacy key in a group.
func Canonical(g Group, legacy string) (string, bool) {
	c, ok := toCanonical[g][legacy]
	return c, ok
}

// ToLegacy returns the legacy name of a canonical key in a group.
func ToLegacy(g Group, canonical string) (string, bool) {
	l, ok := toLegacy[g][canonical]
	return l, ok
}
