// Package amount parses the decimal-formatted amount strings carried on
// rows and services. Parsing is deliberately forgiving: classification and
// balancing treat an unreadable amount as zero, never as a fatal error.
package amount

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts an amount string to a decimal, returning zero when the
// value is blank or unreadable. A leading dollar sign and thousands
// separators are tolerated.
func Parse(s string) decimal.Decimal {
	d, _ := ParseOK(s)
	return d
}

// ParseOK is Parse with an explicit success flag, for callers that must
// distinguish a real zero from an unreadable value.
func ParseOK(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Replace(s, "$", "", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Equal reports whether two amount strings are numerically equal. An
// unreadable value on either side never compares equal.
func Equal(a, b string) bool {
	da, oka := ParseOK(a)
	db, okb := ParseOK(b)
	return oka && okb && da.Equal(db)
}

// NonZero reports whether an amount string parses to a non-zero value.
func NonZero(s string) bool {
	d, ok := ParseOK(s)
	return ok && !d.IsZero()
}

// Sum totals a list of amount strings, skipping unreadable values.
func Sum(values []string) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(Parse(v))
	}
	return total
}
