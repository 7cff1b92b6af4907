package catalog

import "strings"

// RejectReason classifies why a raw product code could not be
// normalized to EAN-13.
type RejectReason string

const (
	RejectNone          RejectReason = ""
	RejectMissing       RejectReason = "missing"
	RejectNonNumeric    RejectReason = "non-numeric"
	RejectInvalidLength RejectReason = "invalid length"
)

// NormalizeEAN normalizes a raw product code to a 13-digit identifier:
// internal whitespace and hyphens are stripped, 12-digit codes gain a
// leading zero, 14-digit codes with a leading zero lose it. The
// operation is idempotent on its own output.
func NormalizeEAN(raw string) (string, RejectReason) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case ' ', '\t', '-':
			continue
		}
		b.WriteRune(r)
	}
	code := b.String()

	if code == "" {
		return "", RejectMissing
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", RejectNonNumeric
		}
	}

	switch len(code) {
	case 12:
		return "0" + code, RejectNone
	case 13:
		return code, RejectNone
	case 14:
		if code[0] == '0' {
			return code[1:], RejectNone
		}
		return "", RejectInvalidLength
	default:
		return "", RejectInvalidLength
	}
}
