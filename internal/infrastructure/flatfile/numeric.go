package flatfile

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses a decimal value tolerantly: a comma decimal
// separator is accepted and malformed values yield zero with ok=false,
// never an error. Row-level number faults are counted by callers, not
// raised.
func ParseDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseInt parses an integer value tolerantly; malformed values default
// to 0 with ok=false.
func ParseInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Some extracts carry integer quantities as "5.0" or "5,0".
		d, derr := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
		if derr != nil || !d.IsInteger() {
			return 0, false
		}
		return int(d.IntPart()), true
	}
	return n, true
}
