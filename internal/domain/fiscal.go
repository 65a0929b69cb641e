package domain

import (
	"github.com/shopspring/decimal"
)

// TaxBracket is one step of a progressive marginal-rate table. A nil
// UpperLimit marks the unbounded top bracket. Rate is a fraction (0.35,
// not 35).
type TaxBracket struct {
	UpperLimit *decimal.Decimal `yaml:"upper_limit" json:"upperLimit"`
	Rate       decimal.Decimal  `yaml:"rate" json:"rate"`
}

// Unbounded reports whether the bracket absorbs all remaining income.
func (b TaxBracket) Unbounded() bool { return b.UpperLimit == nil }

// NationalInsuranceParams are the regulatory inputs to the old-age
// benefit calculation.
type NationalInsuranceParams struct {
	// BaseRates is the monthly base benefit per family status.
	BaseRates map[FamilyStatus]decimal.Decimal `yaml:"base_rates" json:"baseRates"`
	// SeniorityBonusPerYear is the whole-percent increment per qualifying
	// contribution year beyond the first ten (2 means 2%).
	SeniorityBonusPerYear decimal.Decimal `yaml:"seniority_bonus_per_year" json:"seniorityBonusPerYear"`
	// DeferralBonusPerYear is the whole-percent annual increment for each
	// year the claim is deferred past the entitlement age.
	DeferralBonusPerYear decimal.Decimal `yaml:"deferral_bonus_per_year" json:"deferralBonusPerYear"`
	// IncomeTestThresholds is the monthly other-income ceiling per family
	// status; income above it reduces the benefit before age 70.
	IncomeTestThresholds map[FamilyStatus]decimal.Decimal `yaml:"income_test_thresholds" json:"incomeTestThresholds"`
}

// FiscalParameters bundles all regulatory data the engine consumes. It
// is passed in at call time; the engine holds no persistent copy.
type FiscalParameters struct {
	NationalInsurance NationalInsuranceParams `yaml:"national_insurance" json:"nationalInsurance"`
	TaxBrackets       []TaxBracket            `yaml:"tax_brackets" json:"taxBrackets"`
}

// National insurance entitlement constants. The entitlement age is 67;
// deferral credit accrues for at most three years, to age 70, which is
// also the age past which the income means test no longer applies. A
// five-year deferral window appears in some published material but the
// three-year cap is the rule implemented here.
const (
	EntitlementAge       = 67.0
	MaxDeferralYears     = 3.0
	MeansTestCutoffAge   = 70.0
	SeniorityExcludedYrs = 10
	SeniorityMaxYears    = 25
)

// dec is a brevity helper for package-level defaults.
func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func limit(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// DefaultFiscalParameters returns the built-in regulatory baseline:
// monthly progressive tax brackets and current national insurance rates.
// Callers may replace it wholesale with a normalized external override.
func DefaultFiscalParameters() FiscalParameters {
	return FiscalParameters{
		NationalInsurance: NationalInsuranceParams{
			BaseRates: map[FamilyStatus]decimal.Decimal{
				FamilySingle:      dec(1795),
				FamilySingleChild: dec(2387),
				FamilyCouple:      dec(2697),
				FamilyCoupleChild: dec(3289),
			},
			SeniorityBonusPerYear: dec(2),
			DeferralBonusPerYear:  dec(5),
			IncomeTestThresholds: map[FamilyStatus]decimal.Decimal{
				FamilySingle:      dec(3679),
				FamilySingleChild: dec(4906),
				FamilyCouple:      dec(4906),
				FamilyCoupleChild: dec(5518),
			},
		},
		TaxBrackets: []TaxBracket{
			{UpperLimit: limit(7010), Rate: dec(0.10)},
			{UpperLimit: limit(10060), Rate: dec(0.14)},
			{UpperLimit: limit(16150), Rate: dec(0.20)},
			{UpperLimit: limit(22440), Rate: dec(0.31)},
			{UpperLimit: limit(46690), Rate: dec(0.35)},
			{UpperLimit: limit(60130), Rate: dec(0.47)},
			{UpperLimit: nil, Rate: dec(0.50)},
		},
	}
}

// BaseRateFor returns the base benefit for a family status, falling back
// to single when the status is missing from the table.
func (p NationalInsuranceParams) BaseRateFor(status FamilyStatus) decimal.Decimal {
	if rate, ok := p.BaseRates[status]; ok {
		return rate
	}
	return p.BaseRates[FamilySingle]
}

// ThresholdFor returns the means-test threshold for a family status,
// falling back to single.
func (p NationalInsuranceParams) ThresholdFor(status FamilyStatus) decimal.Decimal {
	if th, ok := p.IncomeTestThresholds[status]; ok {
		return th
	}
	return p.IncomeTestThresholds[FamilySingle]
}
