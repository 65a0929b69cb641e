// Package breakeven searches the simulator for financially neutral
// points: the sustainable income solver finds the constant net
// withdrawal that exhausts capital exactly at the end of the horizon.
package breakeven

import (
	"github.com/penplan/penplan/internal/calculation"
	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
)

const maxIterations = 100

// Solution is the outcome of a sustainable-income search.
type Solution struct {
	// MonthlyNetIncome is the constant net withdrawal that depletes the
	// balance at the retirement end age.
	MonthlyNetIncome decimal.Decimal `json:"monthlyNetIncome"`
	// EndingBalance is the residual at the horizon under that income,
	// ideally near zero.
	EndingBalance decimal.Decimal `json:"endingBalance"`
	Iterations    int             `json:"iterations"`
	Converged     bool            `json:"converged"`
}

// SolveSustainableIncome binary-searches the fixed-strategy simulator
// for the monthly net income whose ending balance lands within tolerance
// of zero. The profile's desired income is ignored; everything else
// (ages, savings, contributions, rates, tax) is honored. The best
// bracket midpoint is returned even when the tolerance is not met within
// the iteration cap.
func SolveSustainableIncome(p *domain.FinancialProfile, tolerance decimal.Decimal) (*Solution, error) {
	if tolerance.LessThanOrEqual(decimal.Zero) {
		tolerance = decimal.NewFromInt(1)
	}

	// A zero-withdrawal run bounds the search: all capital at the end of
	// the horizon, annuitized over the retirement months, doubled for
	// growth headroom.
	baseline := *p
	baseline.WithdrawalStrategy = domain.WithdrawalFixed
	baseline.MonthlyNetIncomeDesired = decimal.Zero
	baselineResult, err := calculation.Simulate(&baseline)
	if err != nil {
		return nil, err
	}

	retirementMonths := int64((p.RetirementEndAge - p.RetirementStartAge) * 12)
	if retirementMonths < 1 {
		retirementMonths = 1
	}
	low := decimal.Zero
	high := baselineResult.BalanceAtEnd.Div(decimal.NewFromInt(retirementMonths)).Mul(decimal.NewFromInt(2))
	if high.LessThanOrEqual(decimal.Zero) {
		return &Solution{Converged: true}, nil
	}

	best := &Solution{EndingBalance: baselineResult.BalanceAtEnd}
	bestGap := baselineResult.BalanceAtEnd.Abs()

	for i := 1; i <= maxIterations; i++ {
		mid := low.Add(high).Div(decimal.NewFromInt(2))
		trial := baseline
		trial.MonthlyNetIncomeDesired = mid

		result, err := calculation.Simulate(&trial)
		if err != nil {
			return nil, err
		}

		gap := result.BalanceAtEnd.Abs()
		if gap.LessThan(bestGap) {
			bestGap = gap
			best = &Solution{MonthlyNetIncome: mid, EndingBalance: result.BalanceAtEnd, Iterations: i}
		}
		if gap.LessThanOrEqual(tolerance) {
			best.Converged = true
			return best, nil
		}

		if result.BalanceAtEnd.GreaterThan(decimal.Zero) && result.DepletionAge == nil {
			low = mid
		} else {
			high = mid
		}
	}
	return best, nil
}
