package filter

import (
	"strings"
	"unicode"

	"github.com/RoaringBitmap/roaring/v2"
)

// Tokenize splits a smart search term into tokens. Whitespace separates
// tokens; a double quoted phrase is kept as one token without its quotes.
// Empty tokens are dropped.
func Tokenize(term string) []string {
	var (
		out    []string
		b      strings.Builder
		quoted bool
	)
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	for _, r := range term {
		switch {
		case r == '"':
			flush()
			quoted = !quoted
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}

// Intersect returns the rows present in every bitmap. With no bitmaps it
// returns an empty bitmap.
func Intersect(sets ...*roaring.Bitmap) *roaring.Bitmap {
	if len(sets) == 0 {
		return roaring.New()
	}
	if len(sets) == 1 {
		return sets[0].Clone()
	}
	return roaring.FastAnd(sets...)
}
