package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEAN(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		reason RejectReason
	}{
		{"12 digits left-padded", "123456789012", "0123456789012", RejectNone},
		{"13 digits accepted", "4006381333931", "4006381333931", RejectNone},
		{"14 digits leading zero stripped", "04006381333931", "4006381333931", RejectNone},
		{"14 digits no leading zero", "14006381333931", "", RejectInvalidLength},
		{"empty", "", "", RejectMissing},
		{"whitespace only", "  ", "", RejectMissing},
		{"hyphens stripped", "4006381-333931", "4006381333931", RejectNone},
		{"internal spaces stripped", "4006 381 333931", "4006381333931", RejectNone},
		{"non-numeric", "ABC4006381333", "", RejectNonNumeric},
		{"too short", "12345", "", RejectInvalidLength},
		{"too long", "123456789012345", "", RejectInvalidLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := NormalizeEAN(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestNormalizeEANIdempotent(t *testing.T) {
	first, reason := NormalizeEAN("123456789012")
	assert.Equal(t, RejectNone, reason)
	assert.Equal(t, "0123456789012", first)

	second, reason := NormalizeEAN(first)
	assert.Equal(t, RejectNone, reason)
	assert.Equal(t, first, second)
}
