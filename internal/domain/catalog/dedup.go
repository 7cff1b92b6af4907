package catalog

// DiscardedEntry records a candidate that lost a deduplication contest,
// for the discard report.
type DiscardedEntry struct {
	Code         string
	Key          string
	PriceDisplay string
}

// Deduplicator groups product records by normalized EAN, keeping at most
// one entry per code: the candidate with the greatest final sale price,
// ties won by the later-seen candidate.
type Deduplicator struct {
	entries   map[string]*ProductRecord
	order     []string
	discarded []DiscardedEntry
}

// NewDeduplicator creates an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		entries: make(map[string]*ProductRecord),
	}
}

// Add offers a candidate record under its normalized code. The losing
// record of a duplicate pair is appended to the discard report.
func (d *Deduplicator) Add(code string, rec *ProductRecord) {
	existing, ok := d.entries[code]
	if !ok {
		d.entries[code] = rec
		d.order = append(d.order, code)
		return
	}

	// Later candidate wins ties.
	if rec.FinalPriceCents >= existing.FinalPriceCents {
		d.entries[code] = rec
		d.discarded = append(d.discarded, DiscardedEntry{
			Code:         code,
			Key:          existing.Key,
			PriceDisplay: existing.FinalPriceDisplay,
		})
		return
	}

	d.discarded = append(d.discarded, DiscardedEntry{
		Code:         code,
		Key:          rec.Key,
		PriceDisplay: rec.FinalPriceDisplay,
	})
}

// Entries returns the retained records in first-seen code order, each
// with its ProductCode set to the normalized code it was grouped under.
func (d *Deduplicator) Entries() []*ProductRecord {
	out := make([]*ProductRecord, 0, len(d.order))
	for _, code := range d.order {
		rec := d.entries[code]
		rec.ProductCode = code
		out = append(out, rec)
	}
	return out
}

// Discarded returns the discard report entries in the order the losses
// occurred.
func (d *Deduplicator) Discarded() []DiscardedEntry {
	return d.discarded
}

// Len returns the number of retained entries.
func (d *Deduplicator) Len() int {
	return len(d.entries)
}
