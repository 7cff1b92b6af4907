// Package sync implements the catalog pipeline: the step orchestrator
// and the six pipeline steps, each reading the prior step's persisted
// artifact and fully replacing its own output.
package sync

import (
	"github.com/catalogsync/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// StepConfig carries the caller-supplied pricing and export parameters
// for one step invocation. The fee multipliers are trusted as-is; only
// their shape is validated at the HTTP boundary.
type StepConfig struct {
	ShippingCost    decimal.Decimal
	FeeA            decimal.Decimal
	FeeB            decimal.Decimal
	PreparationDays int
}

// FeeConfig converts the step configuration into the pricing engine's
// cent-based fee parameters.
func (c StepConfig) FeeConfig() pricing.FeeConfig {
	return pricing.FeeConfig{
		ShippingCents: pricing.CentsFromDecimal(c.ShippingCost),
		FeeA:          c.FeeA,
		FeeB:          c.FeeB,
	}
}
