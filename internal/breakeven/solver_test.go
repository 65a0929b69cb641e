package breakeven

import (
	"testing"
	"time"

	"github.com/penplan/penplan/internal/calculation"
	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solverProfile() *domain.FinancialProfile {
	return &domain.FinancialProfile{
		CurrentAge:          55,
		RetirementStartAge:  65,
		RetirementEndAge:    85,
		CurrentSavings:      decimal.NewFromInt(800000),
		MonthlyContribution: decimal.NewFromInt(3000),
		AnnualReturnRate:    decimal.NewFromInt(4),
		TaxRate:             decimal.NewFromInt(15),
		WithdrawalStrategy:  domain.WithdrawalFixed,
		FamilyStatus:        domain.FamilySingle,
		AsOf:                time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSolveSustainableIncomeConverges(t *testing.T) {
	profile := solverProfile()
	tolerance := decimal.NewFromInt(100)

	solution, err := SolveSustainableIncome(profile, tolerance)
	require.NoError(t, err)
	require.True(t, solution.Converged)
	assert.True(t, solution.MonthlyNetIncome.GreaterThan(decimal.Zero))
	assert.True(t, solution.EndingBalance.Abs().LessThanOrEqual(tolerance))
	assert.Greater(t, solution.Iterations, 0)
}

func TestSolveSustainableIncomeLandsAtZeroEnd(t *testing.T) {
	profile := solverProfile()
	solution, err := SolveSustainableIncome(profile, decimal.NewFromInt(100))
	require.NoError(t, err)

	// Re-running the simulator at the solved income must reproduce the
	// near-zero ending balance.
	check := *profile
	check.MonthlyNetIncomeDesired = solution.MonthlyNetIncome
	result, err := calculation.Simulate(&check)
	require.NoError(t, err)
	assert.True(t, result.BalanceAtEnd.Sub(solution.EndingBalance).Abs().LessThan(decimal.NewFromInt(1)))
}

func TestSolveSustainableIncomeIgnoresDesiredIncome(t *testing.T) {
	profile := solverProfile()
	profile.MonthlyNetIncomeDesired = decimal.NewFromInt(999999)

	solution, err := SolveSustainableIncome(profile, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, solution.Converged)
	assert.True(t, solution.MonthlyNetIncome.LessThan(decimal.NewFromInt(999999)))
}

func TestSolveSustainableIncomeWithNoCapital(t *testing.T) {
	profile := solverProfile()
	profile.CurrentSavings = decimal.Zero
	profile.MonthlyContribution = decimal.Zero

	solution, err := SolveSustainableIncome(profile, decimal.NewFromInt(1))
	require.NoError(t, err)
	assert.True(t, solution.Converged)
	assert.True(t, solution.MonthlyNetIncome.IsZero(),
		"no capital supports no withdrawal")
}

func TestSolveSustainableIncomeInvalidProfile(t *testing.T) {
	profile := solverProfile()
	profile.RetirementEndAge = 60

	_, err := SolveSustainableIncome(profile, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
}

func TestSolveSustainableIncomeDefaultsNonPositiveTolerance(t *testing.T) {
	solution, err := SolveSustainableIncome(solverProfile(), decimal.Zero)
	require.NoError(t, err)
	assert.NotNil(t, solution)
}
