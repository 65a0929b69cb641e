package calculation

import (
	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
)

// IncomeAtAge aggregates all recurring income active at the given age.
// A source counts when age >= startAge and (endAge is nil or age <
// endAge) and it is enabled; lump sums are one-time capital injections
// and never part of the recurring total. Taxable sources are taxed as
// one combined gross through the progressive table; non-taxable income
// is added back untouched. Pure and deterministic.
func IncomeAtAge(sources []domain.IncomeSource, age float64, brackets []domain.TaxBracket) domain.IncomeAtAge {
	result := domain.IncomeAtAge{Age: age}

	for i := range sources {
		s := &sources[i]
		if !s.ActiveAt(age) {
			continue
		}
		result.ActiveSourceIDs = append(result.ActiveSourceIDs, s.ID)
		result.TotalGross = result.TotalGross.Add(s.GrossMonthlyAmount)
		if s.IsTaxable {
			result.TaxableGross = result.TaxableGross.Add(s.GrossMonthlyAmount)
		} else {
			result.NonTaxableIncome = result.NonTaxableIncome.Add(s.GrossMonthlyAmount)
		}
	}

	taxed := ApplyProgressiveTax(result.TaxableGross, brackets)
	result.Tax = taxed.TaxMonthly
	result.TotalNet = taxed.NetMonthly.Add(result.NonTaxableIncome)
	if result.TotalGross.GreaterThan(decimal.Zero) {
		result.EffectiveTaxRate = result.Tax.Div(result.TotalGross)
	}
	return result
}

// LumpSumsAt returns the total of enabled lump-sum sources scheduled at
// the given age. Ages are compared at month resolution to absorb
// fractional-age noise.
func LumpSumsAt(sources []domain.IncomeSource, age float64) decimal.Decimal {
	var total decimal.Decimal
	for i := range sources {
		s := &sources[i]
		if !s.Enabled || !s.IsLumpSum {
			continue
		}
		if sameMonthAge(s.StartAge, age) {
			total = total.Add(s.GrossMonthlyAmount)
		}
	}
	return total
}

// sameMonthAge reports whether two fractional ages land on the same
// month.
func sameMonthAge(a, b float64) bool {
	return monthsOf(a) == monthsOf(b)
}

func monthsOf(age float64) int {
	return int(decimal.NewFromFloat(age * 12).Round(0).IntPart())
}
