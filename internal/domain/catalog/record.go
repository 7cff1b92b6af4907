// Package catalog holds the product row model shared by the pipeline
// steps, EAN-13 normalization, and best-price deduplication.
package catalog

import (
	"github.com/catalogsync/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// ProductRecord is one row of the intermediate pipeline table. A record
// exists only if it survived every join filter; monetary source fields
// stay decimal at rest while all computation runs on integer cents.
type ProductRecord struct {
	Key              string
	ManufacturerCode string
	ProductCode      string
	Description      string
	Stock            int
	ListPrice        decimal.Decimal
	BestPrice        decimal.Decimal
	Surcharge        decimal.Decimal

	// Populated by the pricing step.
	FinalPriceDisplay string
	FinalPriceCents   pricing.Cents
	ListPriceWithFee  pricing.Cents
	HasListWithFee    bool
}

// HasFinalPrice reports whether the pricing step produced a sale price
// for this record.
func (r *ProductRecord) HasFinalPrice() bool {
	return r.FinalPriceCents > 0
}
