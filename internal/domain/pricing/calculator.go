// Package pricing implements the channel sale-price computation in
// integer minor-currency units (cents). All chained multiplications are
// rounded half-up to whole cents so repeated runs over the same input
// are bit-for-bit reproducible, with no binary floating-point drift.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents represents a monetary amount in whole minor currency units.
type Cents int64

// VATMultiplier is the value-added-tax factor applied to every sale price.
var VATMultiplier = decimal.RequireFromString("1.22")

// overrideBaseFactor inflates the best price when the list price cannot
// serve as the compare-at base.
var overrideBaseFactor = decimal.RequireFromString("1.25")

// FeeConfig carries the per-invocation pricing parameters. The fee
// multipliers are caller-supplied and trusted; the engine does not
// enforce that they are >= 1.00.
type FeeConfig struct {
	ShippingCents Cents
	FeeA          decimal.Decimal
	FeeB          decimal.Decimal
}

// CentsFromDecimal converts a decimal currency amount to whole cents,
// rounding half-up.
func CentsFromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// Decimal converts a cent amount back to decimal currency units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c)).Div(decimal.NewFromInt(100))
}

// Display formats a cent amount with a comma decimal separator, the
// form the channel exports expect (13299 -> "132,99").
func (c Cents) Display() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d,%02d", sign, v/100, v%100)
}

// mulHalfUp multiplies a cent amount by a decimal factor and rounds the
// result half-up to whole cents.
func mulHalfUp(c Cents, factor decimal.Decimal) Cents {
	return Cents(decimal.NewFromInt(int64(c)).Mul(factor).Round(0).IntPart())
}

// BasePrice selects the pricing base: best price plus surcharge when the
// best price is positive, otherwise the list price when positive,
// otherwise zero.
func BasePrice(list, best, surcharge Cents) Cents {
	if best > 0 {
		return best + surcharge
	}
	if list > 0 {
		return list
	}
	return 0
}

// SalePrice computes the final channel sale price from a base amount:
// shipping is added, then VAT and both fee multipliers are applied with
// half-up rounding after every multiplication, and the result is forced
// to end in ",99" without ever dropping below the pre-forcing amount.
func SalePrice(base Cents, cfg FeeConfig) Cents {
	c := base + cfg.ShippingCents
	c = mulHalfUp(c, VATMultiplier)
	c = mulHalfUp(c, cfg.FeeA)
	c = mulHalfUp(c, cfg.FeeB)
	return ForceNinetyNine(c)
}

// ForceNinetyNine returns the smallest amount ending in 99 cents that is
// greater than or equal to c.
func ForceNinetyNine(c Cents) Cents {
	euros := c / 100
	candidate := euros*100 + 99
	if c > candidate {
		candidate += 100
	}
	return candidate
}

// ListPriceWithFee computes the compare-at price. The normal route runs
// the shipping/VAT/fee chain over the list price without intermediate
// cent rounding and takes the ceiling to whole currency units. The
// override route applies when the list price is unusable (zero/negative,
// or below a positive best price): a synthetic base of bestPrice*1.25 is
// run through the same chain and the result is floored at
// ceil(finalSalePrice*1.25). When neither price is valid the second
// return value is false and no compare-at price is emitted.
func ListPriceWithFee(list, best, finalSale Cents, cfg FeeConfig) (Cents, bool) {
	if list <= 0 && best <= 0 {
		return 0, false
	}

	if list > 0 && (best <= 0 || list >= best) {
		return ceilChain(list.Decimal(), cfg), true
	}

	// Override route: list missing or below the best price.
	synthetic := best.Decimal().Mul(overrideBaseFactor)
	withFee := ceilChain(synthetic, cfg)
	floor := Cents(finalSale.Decimal().Mul(overrideBaseFactor).Ceil().IntPart() * 100)
	if floor > withFee {
		return floor, true
	}
	return withFee, true
}

// ceilChain runs the shipping/VAT/fee chain over a decimal base amount
// and returns the ceiling in whole currency units, expressed in cents.
func ceilChain(base decimal.Decimal, cfg FeeConfig) Cents {
	v := base.Add(cfg.ShippingCents.Decimal()).
		Mul(VATMultiplier).
		Mul(cfg.FeeA).
		Mul(cfg.FeeB)
	return Cents(v.Ceil().IntPart() * 100)
}
