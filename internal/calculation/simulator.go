package calculation

import (
	"math"

	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
)

var twelve = decimal.NewFromInt(12)

// ValidateProfile rejects profiles the simulator must not run. On
// failure the caller receives the error and no result of any kind.
func ValidateProfile(p *domain.FinancialProfile) error {
	ages := []struct {
		name  string
		value float64
	}{
		{"current_age", p.CurrentAge},
		{"retirement_start_age", p.RetirementStartAge},
		{"retirement_end_age", p.RetirementEndAge},
	}
	for _, a := range ages {
		if math.IsNaN(a.value) || a.value < 0 || a.value > 120 {
			return domain.NewValidationError(a.name, "must be a number between 0 and 120, got %v", a.value)
		}
	}
	if p.CurrentAge <= 0 {
		return domain.NewValidationError("current_age", "must be positive")
	}
	if p.RetirementStartAge <= p.CurrentAge {
		return domain.NewValidationError("retirement_start_age", "must be greater than current age %v", p.CurrentAge)
	}
	if p.RetirementEndAge <= p.RetirementStartAge {
		return domain.NewValidationError("retirement_end_age", "must be greater than retirement start age %v", p.RetirementStartAge)
	}
	if p.CurrentSavings.IsNegative() {
		return domain.NewValidationError("current_savings", "cannot be negative")
	}
	if p.MonthlyContribution.IsNegative() {
		return domain.NewValidationError("monthly_contribution", "cannot be negative")
	}
	if p.MonthlyNetIncomeDesired.IsNegative() {
		return domain.NewValidationError("monthly_net_income_desired", "cannot be negative")
	}
	if p.AnnualReturnRate.Abs().GreaterThan(hundred) {
		return domain.NewValidationError("annual_return_rate", "must be between -100%% and 100%%")
	}
	if p.TaxRate.Abs().GreaterThan(hundred) {
		return domain.NewValidationError("tax_rate", "must be between -100%% and 100%%")
	}
	if p.WithdrawalStrategy != "" && !p.WithdrawalStrategy.IsValid() {
		return domain.NewValidationError("withdrawal_strategy", "unknown strategy %q", p.WithdrawalStrategy)
	}
	return nil
}

// YearSpans segments the simulation horizon into calendar-aligned years.
//
// The first year holds 12 minus the as-of calendar month index, so a
// simulation started in October contributes three months before its
// first year boundary. The final year's length comes from the birth
// month against the fractional end age: age 65.5 with a February birth
// ends in August, an eight-month final year. Without a birth date the
// final year runs a full twelve months (to December).
func YearSpans(p *domain.FinancialProfile) []int {
	firstMonths := 12
	if !p.AsOf.IsZero() {
		firstMonths = 12 - (int(p.AsOf.Month()) - 1)
	}

	endMonths := 12
	if !p.BirthDate.IsZero() {
		frac := p.RetirementEndAge - math.Floor(p.RetirementEndAge)
		birthIdx := int(p.BirthDate.Month()) - 1
		endIdx := int(math.Floor(math.Mod(float64(birthIdx)+frac*12, 12)))
		endMonths = endIdx + 1
	}

	horizon := monthsBetween(p.CurrentAge, p.RetirementEndAge)
	if horizon <= firstMonths {
		return []int{horizon}
	}

	middle := int(math.Round(float64(horizon-firstMonths-endMonths) / 12.0))
	if middle < 0 {
		middle = 0
	}
	spans := make([]int, 0, middle+2)
	spans = append(spans, firstMonths)
	for i := 0; i < middle; i++ {
		spans = append(spans, 12)
	}
	spans = append(spans, endMonths)
	return spans
}

// Simulate runs the month-by-month two-phase projection. Each month of
// the accumulation phase applies growth first and then the contribution;
// each decumulation month applies growth first and then the withdrawal.
// This ordering is fixed for reproducibility. The balance is clamped at
// zero once withdrawals exhaust it, and the first month that happens is
// recorded as the depletion age. The input profile is never mutated.
func Simulate(p *domain.FinancialProfile) (*domain.SimulationResult, error) {
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}

	spans := YearSpans(p)
	totalMonths := 0
	for _, m := range spans {
		totalMonths += m
	}

	taxFrac := p.TaxRateFraction()
	result := &domain.SimulationResult{}
	balance := p.CurrentSavings
	monthIdx := 0
	retired := false

	for yearIdx, months := range spans {
		year := yearIdx + 1
		monthlyRate := p.ReturnRateForYear(year).Div(hundred).Div(twelve)
		contribution := p.ContributionForYear(year)

		yearly := domain.YearlyFlow{Year: year, Months: months, BalanceStart: balance}

		for m := 0; m < months; m++ {
			ageAtStart := p.CurrentAge + float64(monthIdx)/12
			flow := domain.MonthlyFlow{
				PeriodIndex:  monthIdx,
				Age:          ageAtStart,
				BalanceStart: balance,
			}

			growth := balance.Mul(monthlyRate)
			balance = balance.Add(growth)
			flow.Growth = growth

			if ageAtStart < p.RetirementStartAge {
				balance = balance.Add(contribution)
				flow.Contribution = contribution
			} else {
				if !retired {
					retired = true
					result.BalanceAtRetirement = flow.BalanceStart
				}
				gross, net := withdrawalFor(p, balance, taxFrac, totalMonths-monthIdx)
				if gross.GreaterThan(balance) {
					// Balance exhausted: take what remains and flag the
					// depletion age.
					scale := decimal.Zero
					if gross.GreaterThan(decimal.Zero) {
						scale = balance.Div(gross)
					}
					gross = balance
					net = net.Mul(scale)
					if result.DepletionAge == nil {
						depleted := ageAtStart
						result.DepletionAge = &depleted
					}
				}
				balance = balance.Sub(gross)
				flow.GrossWithdrawal = gross
				flow.NetWithdrawal = net
				flow.Tax = gross.Sub(net)
				if result.InitialGrossWithdrawal.IsZero() && gross.GreaterThan(decimal.Zero) {
					result.InitialGrossWithdrawal = gross
					result.InitialNetWithdrawal = net
				}
			}

			flow.BalanceEnd = balance
			result.Monthly = append(result.Monthly, flow)

			yearly.Contributions = yearly.Contributions.Add(flow.Contribution)
			yearly.Growth = yearly.Growth.Add(flow.Growth)
			yearly.GrossWithdrawals = yearly.GrossWithdrawals.Add(flow.GrossWithdrawal)
			yearly.Tax = yearly.Tax.Add(flow.Tax)
			yearly.NetWithdrawals = yearly.NetWithdrawals.Add(flow.NetWithdrawal)
			monthIdx++
		}

		yearly.BalanceEnd = balance
		yearly.AgeAtYearEnd = p.CurrentAge + float64(monthIdx)/12
		result.Yearly = append(result.Yearly, yearly)
	}

	if !retired {
		// Horizon ended before the retirement start age was reached.
		result.BalanceAtRetirement = balance
	}
	result.BalanceAtEnd = balance
	return result, nil
}

// withdrawalFor sizes one month's withdrawal under the profile's
// strategy. Returns gross and net amounts, both non-negative.
func withdrawalFor(p *domain.FinancialProfile, balance, taxFrac decimal.Decimal, monthsRemaining int) (gross, net decimal.Decimal) {
	switch p.WithdrawalStrategy {
	case domain.WithdrawalPercentage:
		gross = balance.Mul(p.WithdrawalRate.Div(hundred)).Div(twelve)
		net = gross.Mul(one.Sub(taxFrac))
	case domain.WithdrawalDynamic:
		if monthsRemaining < 1 {
			monthsRemaining = 1
		}
		gross = balance.Div(decimal.NewFromInt(int64(monthsRemaining)))
		net = gross.Mul(one.Sub(taxFrac))
	default: // fixed
		net = p.MonthlyNetIncomeDesired
		keep := one.Sub(taxFrac)
		if keep.LessThanOrEqual(decimal.Zero) {
			// A confiscatory flat rate would make the gross-up divide by
			// zero; fall back to paying the net amount untaxed.
			gross = net
		} else {
			gross = net.Div(keep)
		}
	}
	if gross.IsNegative() {
		gross, net = decimal.Zero, decimal.Zero
	}
	return gross, net
}
