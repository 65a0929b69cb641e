package calculation

import (
	"testing"

	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func agePtr(f float64) *float64 { return &f }

func TestIncomeAtAgeActivationWindow(t *testing.T) {
	sources := []domain.IncomeSource{
		{ID: "lifetime", Type: domain.IncomePension, GrossMonthlyAmount: decimal.NewFromInt(5000), StartAge: 67, EndAge: nil, IsTaxable: true, Enabled: true},
	}
	brackets := testBrackets()

	tests := []struct {
		name     string
		age      float64
		included bool
	}{
		{"just before start", 66.999, false},
		{"exactly at start", 67, true},
		{"long after start", 90, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IncomeAtAge(sources, tt.age, brackets)
			if tt.included {
				assert.Contains(t, result.ActiveSourceIDs, "lifetime")
				assert.True(t, result.TotalGross.Equal(decimal.NewFromInt(5000)))
			} else {
				assert.Empty(t, result.ActiveSourceIDs)
				assert.True(t, result.TotalGross.IsZero())
			}
		})
	}
}

func TestIncomeAtAgeEndAgeIsExclusive(t *testing.T) {
	sources := []domain.IncomeSource{
		{ID: "bridge", Type: domain.IncomeOther, GrossMonthlyAmount: decimal.NewFromInt(2000), StartAge: 60, EndAge: agePtr(67), IsTaxable: false, Enabled: true},
	}

	assert.True(t, IncomeAtAge(sources, 66.9, testBrackets()).TotalGross.GreaterThan(decimal.Zero))
	assert.True(t, IncomeAtAge(sources, 67, testBrackets()).TotalGross.IsZero(),
		"source must stop paying at its end age")
}

func TestIncomeAtAgeMixesTaxableAndNonTaxable(t *testing.T) {
	sources := []domain.IncomeSource{
		{ID: "pension", Type: domain.IncomePension, GrossMonthlyAmount: decimal.NewFromInt(8000), StartAge: 67, IsTaxable: true, Enabled: true},
		{ID: "ni", Type: domain.IncomeNationalInsurance, GrossMonthlyAmount: decimal.NewFromInt(2693), StartAge: 67, IsTaxable: false, Enabled: true},
	}

	result := IncomeAtAge(sources, 70, testBrackets())

	taxed := ApplyProgressiveTax(decimal.NewFromInt(8000), testBrackets())
	assert.True(t, result.TaxableGross.Equal(decimal.NewFromInt(8000)))
	assert.True(t, result.NonTaxableIncome.Equal(decimal.NewFromInt(2693)))
	assert.True(t, result.Tax.Equal(taxed.TaxMonthly))
	assert.True(t, result.TotalNet.Equal(taxed.NetMonthly.Add(decimal.NewFromInt(2693))),
		"non-taxable income must be added back untaxed")
}

func TestIncomeAtAgeExcludesDisabledAndLumpSums(t *testing.T) {
	sources := []domain.IncomeSource{
		{ID: "disabled", GrossMonthlyAmount: decimal.NewFromInt(1000), StartAge: 60, IsTaxable: true, Enabled: false},
		{ID: "severance", GrossMonthlyAmount: decimal.NewFromInt(200000), StartAge: 67, IsLumpSum: true, Enabled: true},
		{ID: "rent", Type: domain.IncomeRent, GrossMonthlyAmount: decimal.NewFromInt(3000), StartAge: 60, IsTaxable: true, Enabled: true},
	}

	result := IncomeAtAge(sources, 67, testBrackets())
	assert.Equal(t, []string{"rent"}, result.ActiveSourceIDs,
		"disabled and lump-sum sources must not aggregate")
	assert.True(t, result.TotalGross.Equal(decimal.NewFromInt(3000)))
}

func TestLumpSumsAt(t *testing.T) {
	sources := []domain.IncomeSource{
		{ID: "severance", GrossMonthlyAmount: decimal.NewFromInt(200000), StartAge: 67, IsLumpSum: true, Enabled: true},
		{ID: "bonus", GrossMonthlyAmount: decimal.NewFromInt(50000), StartAge: 67, IsLumpSum: true, Enabled: true},
		{ID: "later", GrossMonthlyAmount: decimal.NewFromInt(10000), StartAge: 70, IsLumpSum: true, Enabled: true},
		{ID: "recurring", GrossMonthlyAmount: decimal.NewFromInt(100), StartAge: 67, Enabled: true},
	}

	assert.True(t, LumpSumsAt(sources, 67).Equal(decimal.NewFromInt(250000)))
	assert.True(t, LumpSumsAt(sources, 68).IsZero())
	// Month-resolution matching absorbs fractional-age noise.
	assert.True(t, LumpSumsAt(sources, 67.01).Equal(decimal.NewFromInt(250000)))
}
