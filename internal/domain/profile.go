package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStrategy selects how the decumulation phase sizes each
// monthly withdrawal.
type WithdrawalStrategy string

const (
	// WithdrawalFixed withdraws a constant net amount every month.
	WithdrawalFixed WithdrawalStrategy = "fixed"
	// WithdrawalDynamic recalculates the withdrawal from live simulation
	// state: the remaining balance is amortized over the months left in
	// the horizon.
	WithdrawalDynamic WithdrawalStrategy = "dynamic"
	// WithdrawalPercentage withdraws a fixed annual percentage of the
	// remaining balance, paid monthly.
	WithdrawalPercentage WithdrawalStrategy = "percentage"
)

// IsValid reports whether the strategy is one of the supported values.
func (ws WithdrawalStrategy) IsValid() bool {
	switch ws {
	case WithdrawalFixed, WithdrawalDynamic, WithdrawalPercentage:
		return true
	}
	return false
}

// FamilyStatus is the household composition used for national insurance
// base-rate and means-test threshold lookups.
type FamilyStatus string

const (
	FamilySingle      FamilyStatus = "single"
	FamilySingleChild FamilyStatus = "single_child"
	FamilyCouple      FamilyStatus = "couple"
	FamilyCoupleChild FamilyStatus = "couple_child"
)

// SimulationType selects the projection mode.
type SimulationType string

const (
	SimulationDeterministic SimulationType = "deterministic"
	SimulationMonteCarlo    SimulationType = "monte_carlo"
)

// YearlyOverride overrides the profile-level return rate and/or monthly
// contribution for a single simulation year. Year is 1-based: year 1 is
// the (possibly partial) first simulated year.
type YearlyOverride struct {
	Year                int              `yaml:"year" json:"year"`
	AnnualReturnRate    *decimal.Decimal `yaml:"annual_return_rate,omitempty" json:"annualReturnRate,omitempty"`
	MonthlyContribution *decimal.Decimal `yaml:"monthly_contribution,omitempty" json:"monthlyContribution,omitempty"`
}

// FinancialProfile is the complete input to a projection run. It is
// immutable for the duration of a run; the engine never writes to it and
// holds no state between invocations.
type FinancialProfile struct {
	CurrentAge         float64 `yaml:"current_age" json:"currentAge"`
	RetirementStartAge float64 `yaml:"retirement_start_age" json:"retirementStartAge"`
	RetirementEndAge   float64 `yaml:"retirement_end_age" json:"retirementEndAge"`

	CurrentSavings          decimal.Decimal `yaml:"current_savings" json:"currentSavings"`
	MonthlyContribution     decimal.Decimal `yaml:"monthly_contribution" json:"monthlyContribution"`
	MonthlyNetIncomeDesired decimal.Decimal `yaml:"monthly_net_income_desired" json:"monthlyNetIncomeDesired"`

	// AnnualReturnRate and TaxRate are whole percentages (5 means 5%).
	AnnualReturnRate decimal.Decimal `yaml:"annual_return_rate" json:"annualReturnRate"`
	TaxRate          decimal.Decimal `yaml:"tax_rate" json:"taxRate"`

	WithdrawalStrategy WithdrawalStrategy `yaml:"withdrawal_strategy" json:"withdrawalStrategy"`
	// WithdrawalRate is the annual percentage of balance withdrawn under
	// the percentage strategy. Ignored by the other strategies.
	WithdrawalRate decimal.Decimal `yaml:"withdrawal_rate,omitempty" json:"withdrawalRate,omitempty"`

	// BirthDate resolves fractional end ages to an exact calendar month.
	// Optional; when zero the final simulated year runs to December.
	BirthDate time.Time `yaml:"birth_date,omitempty" json:"birthDate,omitempty"`

	// AsOf anchors the partial first calendar year. The CLI and server
	// fill it with the current date when absent; the engine itself never
	// reads the wall clock.
	AsOf time.Time `yaml:"as_of,omitempty" json:"asOf,omitempty"`

	// ContributionYears feeds the national insurance seniority bonus.
	ContributionYears int          `yaml:"contribution_years,omitempty" json:"contributionYears,omitempty"`
	FamilyStatus      FamilyStatus `yaml:"family_status,omitempty" json:"familyStatus,omitempty"`

	VariableRatesEnabled bool             `yaml:"variable_rates_enabled,omitempty" json:"variableRatesEnabled,omitempty"`
	VariableRates        []YearlyOverride `yaml:"variable_rates,omitempty" json:"variableRates,omitempty"`

	// PensionIncomeSources may be absent in older saved profiles; a nil
	// slice is treated as no sources.
	PensionIncomeSources []IncomeSource `yaml:"pension_income_sources,omitempty" json:"pensionIncomeSources,omitempty"`
}

// OverrideForYear returns the variable-rate override for a 1-based
// simulation year, or nil when none applies or the feature is disabled.
func (fp *FinancialProfile) OverrideForYear(year int) *YearlyOverride {
	if !fp.VariableRatesEnabled {
		return nil
	}
	for i := range fp.VariableRates {
		if fp.VariableRates[i].Year == year {
			return &fp.VariableRates[i]
		}
	}
	return nil
}

// ReturnRateForYear resolves the annual return rate (whole percent) for a
// 1-based simulation year, honoring variable-rate overrides.
func (fp *FinancialProfile) ReturnRateForYear(year int) decimal.Decimal {
	if ov := fp.OverrideForYear(year); ov != nil && ov.AnnualReturnRate != nil {
		return *ov.AnnualReturnRate
	}
	return fp.AnnualReturnRate
}

// ContributionForYear resolves the monthly contribution for a 1-based
// simulation year, honoring variable-rate overrides.
func (fp *FinancialProfile) ContributionForYear(year int) decimal.Decimal {
	if ov := fp.OverrideForYear(year); ov != nil && ov.MonthlyContribution != nil {
		return *ov.MonthlyContribution
	}
	return fp.MonthlyContribution
}

// TaxRateFraction returns the flat tax rate as a decimal fraction.
func (fp *FinancialProfile) TaxRateFraction() decimal.Decimal {
	return fp.TaxRate.Div(decimal.NewFromInt(100))
}
