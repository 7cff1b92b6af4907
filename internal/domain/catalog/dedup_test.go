package catalog

import (
	"testing"

	"github.com/catalogsync/backend/internal/domain/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(key string, cents pricing.Cents) *ProductRecord {
	return &ProductRecord{
		Key:               key,
		FinalPriceCents:   cents,
		FinalPriceDisplay: cents.Display(),
	}
}

func TestDeduplicatorKeepsHighestPrice(t *testing.T) {
	d := NewDeduplicator()
	d.Add("0123456789012", record("A1", 1099))
	d.Add("0123456789012", record("A2", 1299))

	entries := d.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "A2", entries[0].Key)
	assert.Equal(t, pricing.Cents(1299), entries[0].FinalPriceCents)
	assert.Equal(t, "0123456789012", entries[0].ProductCode)

	discarded := d.Discarded()
	require.Len(t, discarded, 1)
	assert.Equal(t, "A1", discarded[0].Key)
	assert.Equal(t, "10,99", discarded[0].PriceDisplay)
}

func TestDeduplicatorLaterCandidateWinsTies(t *testing.T) {
	d := NewDeduplicator()
	d.Add("0123456789012", record("A1", 1299))
	d.Add("0123456789012", record("A2", 1299))

	entries := d.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "A2", entries[0].Key)

	discarded := d.Discarded()
	require.Len(t, discarded, 1)
	assert.Equal(t, "A1", discarded[0].Key)
}

func TestDeduplicatorLowerLaterCandidateLoses(t *testing.T) {
	d := NewDeduplicator()
	d.Add("0123456789012", record("A1", 1299))
	d.Add("0123456789012", record("A2", 1099))

	entries := d.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "A1", entries[0].Key)

	discarded := d.Discarded()
	require.Len(t, discarded, 1)
	assert.Equal(t, "A2", discarded[0].Key)
	assert.Equal(t, "10,99", discarded[0].PriceDisplay)
}

func TestDeduplicatorPreservesFirstSeenOrder(t *testing.T) {
	d := NewDeduplicator()
	d.Add("1111111111111", record("B1", 500))
	d.Add("2222222222222", record("B2", 600))
	d.Add("1111111111111", record("B3", 700))

	entries := d.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "1111111111111", entries[0].ProductCode)
	assert.Equal(t, "B3", entries[0].Key)
	assert.Equal(t, "2222222222222", entries[1].ProductCode)
	assert.Equal(t, 2, d.Len())
}
