// Package credit converts raw USD execution cost into billable credits.
// The conversion is applied only at presentation and billing boundaries;
// the stored USD cost is never mutated.
package credit

import "math"

// Pricing holds the billing conversion constants. Both values are
// configuration, overridable from the config file and flags.
type Pricing struct {
	MarginMultiplier float64 `yaml:"margin_multiplier"`
	CreditUnitPrice  float64 `yaml:"credit_unit_price"`
}

// DefaultPricing returns the standard margin and credit unit price.
func DefaultPricing() Pricing {
	return Pricing{MarginMultiplier: 1.75, CreditUnitPrice: 0.005}
}

// Credits returns the billable credit count for a total USD cost:
// ceil(cost * margin / unit). Non-positive costs bill zero credits.
func (p Pricing) Credits(totalCostUSD float64) int64 {
	if totalCostUSD <= 0 {
		return 0
	}
	unit := p.CreditUnitPrice
	if unit <= 0 {
		unit = DefaultPricing().CreditUnitPrice
	}
	return int64(math.Ceil(totalCostUSD * p.MarginMultiplier / unit))
}
