package calculation

import (
	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
)

// TaxResult is the outcome of running a gross monthly amount through the
// progressive bracket table.
type TaxResult struct {
	GrossMonthly  decimal.Decimal `json:"grossMonthly"`
	TaxMonthly    decimal.Decimal `json:"taxMonthly"`
	NetMonthly    decimal.Decimal `json:"netMonthly"`
	EffectiveRate decimal.Decimal `json:"effectiveRate"`
}

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// normalizeRate converts a whole-percent rate to a fraction. Bracket
// tables may arrive from uncontrolled external producers with rates like
// 35 instead of 0.35.
func normalizeRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(one) {
		return rate.Div(hundred)
	}
	return rate
}

// ApplyProgressiveTax walks the brackets in ascending-limit order, taxing
// the slice of income that falls within each band at that band's marginal
// rate. The unbounded top bracket absorbs whatever remains. Negative
// gross yields zero tax rather than an error. Pure: no state, no side
// effects.
func ApplyProgressiveTax(grossMonthly decimal.Decimal, brackets []domain.TaxBracket) TaxResult {
	if grossMonthly.LessThanOrEqual(decimal.Zero) {
		gross := grossMonthly
		if gross.IsNegative() {
			gross = decimal.Zero
		}
		return TaxResult{GrossMonthly: gross, NetMonthly: gross}
	}

	var tax decimal.Decimal
	previousLimit := decimal.Zero
	remaining := grossMonthly

	for _, bracket := range brackets {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		rate := normalizeRate(bracket.Rate)

		var inBracket decimal.Decimal
		if bracket.Unbounded() {
			inBracket = remaining
		} else {
			width := bracket.UpperLimit.Sub(previousLimit)
			inBracket = decimal.Min(remaining, width)
			previousLimit = *bracket.UpperLimit
		}
		if inBracket.GreaterThan(decimal.Zero) {
			tax = tax.Add(inBracket.Mul(rate))
			remaining = remaining.Sub(inBracket)
		}
	}

	result := TaxResult{
		GrossMonthly: grossMonthly,
		TaxMonthly:   tax,
		NetMonthly:   grossMonthly.Sub(tax),
	}
	if grossMonthly.GreaterThan(decimal.Zero) {
		result.EffectiveRate = tax.Div(grossMonthly)
	}
	return result
}
