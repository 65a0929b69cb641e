package calculation

import (
	"sort"

	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
)

// depletionHorizonMonths caps the per-milestone depletion search at one
// hundred years.
const depletionHorizonMonths = 100 * 12

// SummaryInput feeds the retirement income summary projector.
type SummaryInput struct {
	Sources            []domain.IncomeSource
	RetirementStartAge float64
	RetirementEndAge   float64
	Capital            decimal.Decimal
	MonthlyExpenses    decimal.Decimal
	// CapitalReturnRate is the annual nominal return in whole percent.
	CapitalReturnRate decimal.Decimal
	Fiscal            domain.FiscalParameters
}

// CalculateRetirementIncomeSummary walks the milestone ages at which any
// income source starts or ends, carrying capital forward month by month
// between them.
//
// The walk anchors at RetirementEndAge, where the input capital is taken
// as known. Each gap is bridged with the income picture as it was at the
// previous milestone; the new milestone's income only takes effect from
// its own age forward. Lump sums land exactly at their milestone age.
// The running capital is allowed to go negative so depletion math sees
// the true trajectory; DisplayedCapital is floored at zero for
// presentation. Pure: identical inputs yield identical milestone arrays.
func CalculateRetirementIncomeSummary(in SummaryInput) domain.RetirementIncomeSummary {
	monthlyRate := in.CapitalReturnRate.Div(hundred).Div(decimal.NewFromInt(12))
	ages := milestoneAges(in.Sources, in.RetirementEndAge)

	summary := domain.RetirementIncomeSummary{
		Capital:            in.Capital,
		MonthlyExpenses:    in.MonthlyExpenses,
		RetirementStartAge: in.RetirementStartAge,
		RetirementEndAge:   in.RetirementEndAge,
	}

	capital := in.Capital
	previousAge := in.RetirementEndAge

	for _, age := range ages {
		months := monthsBetween(previousAge, age)
		if months > 0 {
			previousIncome := IncomeAtAge(in.Sources, previousAge, in.Fiscal.TaxBrackets)
			previousDeficit := in.MonthlyExpenses.Sub(previousIncome.TotalNet)
			for m := 0; m < months; m++ {
				capital = capital.Mul(one.Add(monthlyRate)).Sub(previousDeficit)
			}
		}

		capital = capital.Add(LumpSumsAt(in.Sources, age))

		income := IncomeAtAge(in.Sources, age, in.Fiscal.TaxBrackets)
		deficit := in.MonthlyExpenses.Sub(income.TotalNet)

		milestone := domain.MilestoneSummary{
			Age:                age,
			Income:             income,
			AccumulatedCapital: capital,
			DisplayedCapital:   decimal.Max(capital, decimal.Zero),
			MonthlyDeficit:     deficit,
			AgeAtDepletion:     depletionAge(age, capital, deficit, monthlyRate),
		}
		summary.Milestones = append(summary.Milestones, milestone)
		previousAge = age
	}

	return summary
}

// milestoneAges collects the distinct activation ages of enabled sources
// at or past the baseline anchor, plus the anchor itself, sorted
// ascending. Duplicate ages collapse at month resolution.
func milestoneAges(sources []domain.IncomeSource, baselineAge float64) []float64 {
	seen := map[int]float64{monthsOf(baselineAge): baselineAge}
	add := func(age float64) {
		if age < baselineAge {
			return
		}
		key := monthsOf(age)
		if _, ok := seen[key]; !ok {
			seen[key] = age
		}
	}
	for i := range sources {
		s := &sources[i]
		if !s.Enabled {
			continue
		}
		add(s.StartAge)
		if !s.IsLumpSum && s.EndAge != nil {
			add(*s.EndAge)
		}
	}

	ages := make([]float64, 0, len(seen))
	for _, age := range seen {
		ages = append(ages, age)
	}
	sort.Float64s(ages)
	return ages
}

// monthsBetween converts a fractional-year gap to whole months, rounding
// to nearest to avoid the systematic bias a floor or ceil would carry
// across many milestones.
func monthsBetween(fromAge, toAge float64) int {
	if toAge <= fromAge {
		return 0
	}
	return int(decimal.NewFromFloat((toAge - fromAge) * 12).Round(0).IntPart())
}

// depletionAge simulates forward from a milestone's own capital and
// deficit until the capital crosses zero, returning the fractional age
// at which it does. A non-positive deficit means the capital never
// depletes; a horizon past one hundred years is reported the same way.
func depletionAge(age float64, capital, monthlyDeficit, monthlyRate decimal.Decimal) *float64 {
	if monthlyDeficit.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	if capital.LessThanOrEqual(decimal.Zero) {
		depleted := age
		return &depleted
	}
	growth := one.Add(monthlyRate)
	for m := 1; m <= depletionHorizonMonths; m++ {
		capital = capital.Mul(growth).Sub(monthlyDeficit)
		if capital.LessThanOrEqual(decimal.Zero) {
			depleted := age + float64(m)/12
			return &depleted
		}
	}
	return nil
}
