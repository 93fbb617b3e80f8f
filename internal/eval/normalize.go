package eval

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// NormalizeText canonicalizes free text for comparison: lowercase, strip
// every rune that is neither alphanumeric nor whitespace, collapse whitespace
// runs to a single space, trim.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// dateLayouts is the ordered list of accepted date formats. Day-first slash
// comes before month-first, so ambiguous dates like 03/04/2024 resolve
// day-first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	"2 Jan 2006",
	"2 January 2006",
}

// NormalizeDate rewrites a date string to YYYY-MM-DD using the first layout
// that parses. Unparseable input is returned unchanged rather than discarded:
// a present-but-odd date string can still be compared by equality downstream,
// which fails a match instead of losing the field. Empty input returns "".
func NormalizeDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return raw
}

// NormalizeAmount coerces a numeric or string amount into a signed float.
// Strings are stripped of everything except digits, the decimal point and
// minus signs before parsing, which discards currency symbols, thousands
// separators and whitespace. No locale-aware separator disambiguation is
// attempted: "1.234" always parses as 1.234. ok is false for nil input and
// unparseable strings.
func NormalizeAmount(raw any) (amount float64, ok bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			return -1
		}, v)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
