package domain

import (
	"github.com/shopspring/decimal"
)

// IncomeSourceType classifies an income stream.
type IncomeSourceType string

const (
	IncomePension           IncomeSourceType = "pension"
	IncomeNationalInsurance IncomeSourceType = "national_insurance"
	IncomeRent              IncomeSourceType = "rent"
	IncomeCapital           IncomeSourceType = "capital"
	IncomeOther             IncomeSourceType = "other"
)

// IncomeSource is a named income stream with an activation age window.
// A lump-sum source pays its amount once at StartAge instead of monthly.
type IncomeSource struct {
	ID   string           `yaml:"id" json:"id"`
	Name string           `yaml:"name,omitempty" json:"name,omitempty"`
	Type IncomeSourceType `yaml:"type" json:"type"`

	GrossMonthlyAmount decimal.Decimal `yaml:"gross_monthly_amount" json:"grossMonthlyAmount"`

	StartAge float64 `yaml:"start_age" json:"startAge"`
	// EndAge nil means the source pays for life.
	EndAge *float64 `yaml:"end_age,omitempty" json:"endAge,omitempty"`

	IsTaxable bool `yaml:"is_taxable" json:"isTaxable"`
	IsLumpSum bool `yaml:"is_lump_sum,omitempty" json:"isLumpSum,omitempty"`
	Enabled   bool `yaml:"enabled" json:"enabled"`
}

// ActiveAt reports whether a recurring source pays at the given age.
// Lump sums are never "active" in the recurring sense.
func (s *IncomeSource) ActiveAt(age float64) bool {
	if !s.Enabled || s.IsLumpSum {
		return false
	}
	if age < s.StartAge {
		return false
	}
	if s.EndAge != nil && age >= *s.EndAge {
		return false
	}
	return true
}

// IncomeAtAge is the aggregated income picture at a single age.
type IncomeAtAge struct {
	Age              float64         `json:"age"`
	ActiveSourceIDs  []string        `json:"activeSourceIds"`
	TotalGross       decimal.Decimal `json:"totalGross"`
	TaxableGross     decimal.Decimal `json:"taxableGross"`
	NonTaxableIncome decimal.Decimal `json:"nonTaxableIncome"`
	Tax              decimal.Decimal `json:"tax"`
	TotalNet         decimal.Decimal `json:"totalNet"`
	EffectiveTaxRate decimal.Decimal `json:"effectiveTaxRate"`
}

// NationalInsuranceBenefit is the monthly old-age benefit breakdown.
type NationalInsuranceBenefit struct {
	BasePension           decimal.Decimal  `json:"basePension"`
	SeniorityBonus        decimal.Decimal  `json:"seniorityBonus"`
	SeniorityBonusPercent decimal.Decimal  `json:"seniorityBonusPercent"`
	DeferralBonus         decimal.Decimal  `json:"deferralBonus"`
	DeferralBonusPercent  decimal.Decimal  `json:"deferralBonusPercent"`
	TotalMonthly          decimal.Decimal  `json:"totalMonthly"`
	IncomeTest            IncomeTestResult `json:"incomeTest"`
}

// IncomeTestResult records whether and how the means test reduced the
// benefit.
type IncomeTestResult struct {
	Applied   bool            `json:"applied"`
	Threshold decimal.Decimal `json:"threshold"`
	Excess    decimal.Decimal `json:"excess"`
	Reduction decimal.Decimal `json:"reduction"`
}
