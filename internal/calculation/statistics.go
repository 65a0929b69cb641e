package calculation

import (
	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
)

// DeriveStatistics fills the post-simulation summary scalars on the
// result in place. All formulas branch explicitly on degenerate rates;
// no division ever runs against a zero or negative denominator.
func DeriveStatistics(result *domain.SimulationResult, p *domain.FinancialProfile) {
	monthlyRate := p.AnnualReturnRate.Div(hundred).Div(twelve)
	taxFrac := p.TaxRateFraction()
	effectiveMonthlyRate := monthlyRate.Mul(one.Sub(taxFrac))

	// Perpetuity capital is undefined when the after-tax monthly rate is
	// not positive; report the sentinel instead of dividing.
	if effectiveMonthlyRate.GreaterThan(decimal.Zero) {
		result.RequiredCapitalForPerpetuity = p.MonthlyNetIncomeDesired.Div(effectiveMonthlyRate)
		result.PerpetuityFeasible = true
	} else {
		result.RequiredCapitalForPerpetuity = decimal.Zero
		result.PerpetuityFeasible = false
	}

	monthsToRetirement := monthsBetween(p.CurrentAge, p.RetirementStartAge)

	result.PVOfDeficit = decimal.Zero
	if result.PerpetuityFeasible && result.BalanceAtRetirement.LessThan(result.RequiredCapitalForPerpetuity) {
		shortfall := result.RequiredCapitalForPerpetuity.Sub(result.BalanceAtRetirement)
		result.PVOfDeficit = discount(shortfall, monthlyRate, monthsToRetirement)
	}

	result.PVOfCapitalPreservation = pvOfCapitalPreservation(
		result.RequiredCapitalForPerpetuity, p.MonthlyContribution, monthlyRate, monthsToRetirement)

	retirementMonths := 0
	var totalGross, totalNet decimal.Decimal
	for i := range result.Monthly {
		flow := &result.Monthly[i]
		if flow.GrossWithdrawal.GreaterThan(decimal.Zero) || flow.Age >= p.RetirementStartAge {
			retirementMonths++
			totalGross = totalGross.Add(flow.GrossWithdrawal)
			totalNet = totalNet.Add(flow.NetWithdrawal)
		}
	}
	if retirementMonths > 0 {
		months := decimal.NewFromInt(int64(retirementMonths))
		result.AverageGrossWithdrawal = totalGross.Div(months)
		result.AverageNetWithdrawal = totalNet.Div(months)
	}
}

// discount brings a future amount back over n months of monthly
// compounding. A zero rate passes the amount through unchanged.
func discount(amount, monthlyRate decimal.Decimal, months int) decimal.Decimal {
	if monthlyRate.IsZero() || months <= 0 {
		return amount
	}
	factor := one.Add(monthlyRate).Pow(decimal.NewFromInt(int64(months)))
	return amount.Div(factor)
}

// pvOfCapitalPreservation discounts the gap between the perpetuity
// capital target and the future value of the scheduled contributions.
// The zero-rate case uses linear arithmetic: the contribution annuity
// formula divides by the rate and must not run.
func pvOfCapitalPreservation(requiredCapital, monthlyContribution, monthlyRate decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Max(requiredCapital, decimal.Zero)
	}
	n := decimal.NewFromInt(int64(months))

	var fvContributions decimal.Decimal
	if monthlyRate.IsZero() {
		fvContributions = monthlyContribution.Mul(n)
	} else {
		factor := one.Add(monthlyRate).Pow(n)
		fvContributions = monthlyContribution.Mul(factor.Sub(one)).Div(monthlyRate)
	}

	gap := requiredCapital.Sub(fvContributions)
	if gap.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return discount(gap, monthlyRate, months)
}
