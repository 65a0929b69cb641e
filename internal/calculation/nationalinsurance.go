package calculation

import (
	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Means-test reduction: each unit of other income above the threshold
// reduces the benefit by sixty percent of the excess.
var meansTestReductionRate = decimal.NewFromFloat(0.60)

// CalculateNationalInsurance computes the monthly old-age benefit for a
// claimant.
//
// The base tier is selected by family status alone; age affects only the
// deferral bonus and the means test. Seniority credit accrues for
// contribution years beyond the first ten, capped at twenty-five
// qualifying years (a maximum bonus of 50% at the default 2%/year rate).
// Deferral credit accrues only past the entitlement age of 67 and caps
// at three years. Below age 70, other income above the family-status
// threshold reduces the benefit; at 70 and beyond the test never
// applies. All monetary outputs are rounded to the nearest whole
// currency unit.
func CalculateNationalInsurance(age float64, contributionYears int, params domain.NationalInsuranceParams, status domain.FamilyStatus, otherIncome decimal.Decimal) domain.NationalInsuranceBenefit {
	base := params.BaseRateFor(status)

	qualifyingYears := contributionYears - domain.SeniorityExcludedYrs
	if qualifyingYears < 0 {
		qualifyingYears = 0
	}
	if qualifyingYears > domain.SeniorityMaxYears {
		qualifyingYears = domain.SeniorityMaxYears
	}
	seniorityPercent := params.SeniorityBonusPerYear.Mul(decimal.NewFromInt(int64(qualifyingYears)))
	seniorityBonus := base.Mul(seniorityPercent).Div(hundred)

	var deferralPercent, deferralBonus decimal.Decimal
	if age > domain.EntitlementAge {
		deferralYears := age - domain.EntitlementAge
		if deferralYears > domain.MaxDeferralYears {
			deferralYears = domain.MaxDeferralYears
		}
		// DeferralBonusPerYear is already the annual-equivalent percent;
		// no per-month conversion.
		deferralPercent = params.DeferralBonusPerYear.Mul(decimal.NewFromFloat(deferralYears))
		deferralBonus = base.Mul(deferralPercent).Div(hundred)
	}

	total := base.Add(seniorityBonus).Add(deferralBonus)

	test := domain.IncomeTestResult{Threshold: params.ThresholdFor(status)}
	if age < domain.MeansTestCutoffAge && otherIncome.GreaterThan(test.Threshold) {
		test.Applied = true
		test.Excess = otherIncome.Sub(test.Threshold)
		test.Reduction = decimal.Min(test.Excess.Mul(meansTestReductionRate), total)
		total = total.Sub(test.Reduction)
	}

	return domain.NationalInsuranceBenefit{
		BasePension:           base.Round(0),
		SeniorityBonus:        seniorityBonus.Round(0),
		SeniorityBonusPercent: seniorityPercent,
		DeferralBonus:         deferralBonus.Round(0),
		DeferralBonusPercent:  deferralPercent,
		TotalMonthly:          total.Round(0),
		IncomeTest:            test,
	}
}

// SynthesizeNationalInsuranceSource rebuilds the system-managed national
// insurance income source from the claimant's situation and the other
// enabled sources. Other recurring income active at the claim age feeds
// the means test. The source claims at the entitlement age or the
// claimant's current age, whichever is later.
func SynthesizeNationalInsuranceSource(profile *domain.FinancialProfile, fiscal domain.FiscalParameters) domain.IncomeSource {
	claimAge := domain.EntitlementAge
	if profile.CurrentAge > claimAge {
		claimAge = profile.CurrentAge
	}

	var otherIncome decimal.Decimal
	for i := range profile.PensionIncomeSources {
		s := &profile.PensionIncomeSources[i]
		if s.Type == domain.IncomeNationalInsurance {
			continue
		}
		if s.ActiveAt(claimAge) {
			otherIncome = otherIncome.Add(s.GrossMonthlyAmount)
		}
	}

	status := profile.FamilyStatus
	if status == "" {
		status = domain.FamilySingle
	}
	benefit := CalculateNationalInsurance(claimAge, profile.ContributionYears, fiscal.NationalInsurance, status, otherIncome)

	return domain.IncomeSource{
		ID:                 "national-insurance",
		Name:               "National insurance old-age pension",
		Type:               domain.IncomeNationalInsurance,
		GrossMonthlyAmount: benefit.TotalMonthly,
		StartAge:           claimAge,
		EndAge:             nil,
		IsTaxable:          false,
		Enabled:            true,
	}
}
