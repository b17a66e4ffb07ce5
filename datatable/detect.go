package datatable

import (
	"strconv"
	"strings"
	"time"

	strip "github.com/grokify/html-strip-tags-go"
)

// TypeDetector inspects a non-empty cell value and returns the detected type,
// or TypeUnset to let the next detector try.
type TypeDetector func(s string) DataType

// DateLayouts are the layouts accepted by the date detector and parser, in
// the order they are tried.
var DateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// DefaultTypeDetectors returns the detectors tried for columns without a
// declared type: numeric, date, html. A column matching none is a string.
func DefaultTypeDetectors() []TypeDetector {
	return []TypeDetector{DetectNumeric, DetectDate, DetectHTML}
}

// DetectNumeric accepts decimal integers and floats with optional sign and
// exponent.
func DetectNumeric(s string) DataType {
	if _, ok := parseNumber(s); ok {
		return TypeNumeric
	}
	return TypeUnset
}

// DetectDate accepts values parseable by one of DateLayouts.
func DetectDate(s string) DataType {
	if _, ok := parseDate(s); ok {
		return TypeDate
	}
	return TypeUnset
}

// DetectHTML accepts strings that contain markup.
func DetectHTML(s string) DataType {
	if strip.StripTags(s) != s {
		return TypeHTML
	}
	return TypeUnset
}

// detectType runs the detectors in order and falls back to string.
func detectType(detectors []TypeDetector, s string) DataType {
	for _, d := range detectors {
		if t := d(s); t != TypeUnset {
			return t
		}
	}
	return TypeString
}

// detectRaw short-circuits detection for already typed raw values.
func detectRaw(detectors []TypeDetector, raw any) DataType {
	switch v := raw.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return TypeNumeric
	case time.Time:
		return TypeDate
	case string:
		return detectType(detectors, strings.TrimSpace(v))
	default:
		return detectType(detectors, strings.TrimSpace(formatValue(raw)))
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat also accepts "Inf", "NaN" and hex floats; the
	// column types only cover plain decimals.
	for _, r := range s {
		if (r < '0' || r > '9') && !strings.ContainsRune("+-.eE", r) {
			return 0, false
		}
	}
	return f, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toNumber converts a raw cell value into a float64 sort key.
func toNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		return parseNumber(stripMarkup(v))
	default:
		return parseNumber(formatValue(raw))
	}
}

// toTime converts a raw cell value into a timestamp sort key.
func toTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case string:
		return parseDate(stripMarkup(v))
	default:
		return parseDate(formatValue(raw))
	}
}
