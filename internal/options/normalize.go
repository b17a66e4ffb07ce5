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

// Package options merges user option trees, written with either legacy
// Hungarian keys (iDisplayLength, oLanguage.sZeroRecords) or modern camelCase
// keys (pageLength, language.zeroRecords), over a canonical default tree.
package options

import (
	"maps"
	"slices"
)

// Tree is a nested option tree as decoded from JSON or YAML.
type Tree = map[string]any

// Canonicalize returns a copy of tree with every legacy key of group g
// rewritten to its canonical name, recursing into nested groups and lists
// of column or search objects. When a canonical key is also present
// explicitly, it wins unless force is set. Unknown keys are kept as is.
func Canonicalize(g Group, tree Tree, force bool) Tree {
	if tree == nil {
		return nil
	}
	out := make(Tree, len(tree))
	fromLegacy := make(map[string]bool)

	// Canonical keys first, then strong legacy keys, then weak ones, each in
	// key order so the result does not depend on map iteration.
	keys := slices.Sorted(maps.Keys(tree))
	for _, k := range keys {
		if _, legacy := toCanonical[g][k]; !legacy {
			out[k] = tree[k]
		}
	}
	for _, pass := range []bool{false, true} {
		for _, k := range keys {
			c, legacy := toCanonical[g][k]
			if !legacy || weak[g][k] != pass {
				continue
			}
			_, set := out[c]
			switch {
			case !set:
			case pass:
				// Weak keys never override.
				continue
			case !force && !fromLegacy[c]:
				continue
			}
			v := tree[k]
			if scalarToList[g][k] {
				v = []any{v}
			}
			out[c] = v
			fromLegacy[c] = true
		}
	}

	for k, v := range out {
		if sub, ok := nested[g][k]; ok {
			out[k] = canonicalizeValue(sub, v, force)
		}
	}
	return out
}

func canonicalizeValue(g Group, v any, force bool) any {
	switch t := v.(type) {
	case Tree:
		return Canonicalize(g, t, force)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonicalizeValue(g, e, force)
		}
		return out
	default:
		return v
	}
}

// Merge returns defaults overlaid with user. Nested trees merge
// recursively; every other value, lists included, is replaced. Neither input
// is modified.
func Merge(defaults, user Tree) Tree {
	out := Clone(defaults)
	if out == nil {
		out = make(Tree, len(user))
	}
	for k, uv := range user {
		ut, uok := uv.(Tree)
		dt, dok := out[k].(Tree)
		if uok && dok {
			out[k] = Merge(dt, ut)
			continue
		}
		out[k] = cloneValue(uv)
	}
	return out
}

// LanguageCompat copies the user zeroRecords text into emptyTable and
// loadingRecords when the user left those unset and the defaults still
// carry their stock English text. The condition is kept exactly as older
// language files expect it.
func LanguageCompat(language, defaults Tree) {
	if language == nil {
		return
	}
	zero, _ := language["zeroRecords"].(string)
	if zero == "" {
		return
	}
	if isUnset(language["emptyTable"]) && defaults["emptyTable"] == DefaultEmptyTable {
		language["emptyTable"] = zero
	}
	if isUnset(language["loadingRecords"]) && defaults["loadingRecords"] == DefaultLoadingRecords {
		language["loadingRecords"] = zero
	}
}

func isUnset(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// Normalize produces the canonical option tree for a user tree in either
// naming convention: the user tree is canonicalized, the language fallback
// is applied and the result merged over a copy of defaults.
func Normalize(defaults, user Tree, force bool) Tree {
	canon := Canonicalize(GroupTop, user, force)
	if lang, ok := canon["language"].(Tree); ok {
		dl, _ := defaults["language"].(Tree)
		LanguageCompat(lang, dl)
	}
	return Merge(defaults, canon)
}

// Clone deep-copies a tree. Only trees and lists are copied; leaf values
// are shared.
func Clone(t Tree) Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Tree:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
