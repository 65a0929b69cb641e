package fiscal

import (
	"testing"

	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBracketUnitsAndGrouping(t *testing.T) {
	payload := []byte(`{
		"taxBrackets": [
			{"limit": "7,010", "rate": 10},
			{"limit": "60,130", "rate": 35},
			{"limit": "Infinity", "rate": 0.50}
		]
	}`)

	params, err := NewNormalizer(nil).Normalize(payload)
	require.NoError(t, err)
	require.Len(t, params.TaxBrackets, 3)

	first := params.TaxBrackets[0]
	require.NotNil(t, first.UpperLimit)
	assert.True(t, first.UpperLimit.Equal(decimal.NewFromInt(7010)),
		"comma grouping must be stripped, got %s", first.UpperLimit)
	assert.True(t, first.Rate.Equal(decimal.NewFromFloat(0.10)),
		"whole-percent rate must become a fraction, got %s", first.Rate)

	second := params.TaxBrackets[1]
	assert.True(t, second.UpperLimit.Equal(decimal.NewFromInt(60130)))
	assert.True(t, second.Rate.Equal(decimal.NewFromFloat(0.35)))

	last := params.TaxBrackets[2]
	assert.Nil(t, last.UpperLimit, `"Infinity" must parse to the unbounded sentinel`)
	assert.True(t, last.Rate.Equal(decimal.NewFromFloat(0.50)))
}

func TestNormalizeSynthesizesTerminalBracket(t *testing.T) {
	payload := []byte(`{
		"taxBrackets": [
			{"limit": 10000, "rate": 0.10},
			{"limit": 60130, "rate": 0.47}
		]
	}`)

	params, err := NewNormalizer(nil).Normalize(payload)
	require.NoError(t, err)
	require.Len(t, params.TaxBrackets, 3)

	last := params.TaxBrackets[2]
	assert.Nil(t, last.UpperLimit)
	assert.True(t, last.Rate.Equal(decimal.NewFromFloat(0.47)),
		"synthesized terminal bracket carries the top explicit rate")
}

func TestNormalizeSortsAndDropsNonIncreasingLimits(t *testing.T) {
	payload := []byte(`{
		"taxBrackets": [
			{"limit": null, "rate": 0.50},
			{"limit": 60130, "rate": 0.47},
			{"limit": 10000, "rate": 0.10},
			{"limit": 10000, "rate": 0.14}
		]
	}`)

	params, err := NewNormalizer(nil).Normalize(payload)
	require.NoError(t, err)
	require.Len(t, params.TaxBrackets, 3)
	assert.True(t, params.TaxBrackets[0].UpperLimit.Equal(decimal.NewFromInt(10000)))
	assert.True(t, params.TaxBrackets[1].UpperLimit.Equal(decimal.NewFromInt(60130)))
	assert.Nil(t, params.TaxBrackets[2].UpperLimit)
}

func TestNormalizeStaleBaseRateCorrection(t *testing.T) {
	payload := []byte(`{
		"nationalInsurance": {
			"baseRates": {"single": 1756}
		}
	}`)

	t.Run("corrected when the rule is enabled", func(t *testing.T) {
		params, err := NewNormalizer(nil).Normalize(payload)
		require.NoError(t, err)
		assert.True(t, params.NationalInsurance.BaseRates[domain.FamilySingle].Equal(decimal.NewFromInt(1795)),
			"stale 1756 must be corrected to the current baseline")
	})

	t.Run("kept verbatim when the rule is disabled", func(t *testing.T) {
		n := NewNormalizer(nil)
		n.CorrectStaleRates = false
		params, err := n.Normalize(payload)
		require.NoError(t, err)
		assert.True(t, params.NationalInsurance.BaseRates[domain.FamilySingle].Equal(decimal.NewFromInt(1756)))
	})
}

func TestNormalizeNationalInsuranceFields(t *testing.T) {
	payload := []byte(`{
		"nationalInsurance": {
			"baseRates": {"couple": "2,697", "single": "garbage"},
			"seniorityBonusPerYear": 2,
			"deferralBonusPerMonth": 5,
			"incomeTestThreshold": {"single": "3,679"}
		}
	}`)

	params, err := NewNormalizer(nil).Normalize(payload)
	require.NoError(t, err)

	ni := params.NationalInsurance
	assert.True(t, ni.BaseRates[domain.FamilyCouple].Equal(decimal.NewFromInt(2697)))
	// The unparseable single rate falls back to the default, not zero.
	assert.True(t, ni.BaseRates[domain.FamilySingle].Equal(domain.DefaultFiscalParameters().NationalInsurance.BaseRates[domain.FamilySingle]))
	assert.True(t, ni.SeniorityBonusPerYear.Equal(decimal.NewFromInt(2)))
	assert.True(t, ni.DeferralBonusPerYear.Equal(decimal.NewFromInt(5)),
		"the per-month wire name maps to the annual-equivalent percent without conversion")
	assert.True(t, ni.IncomeTestThresholds[domain.FamilySingle].Equal(decimal.NewFromInt(3679)))
}

func TestNormalizeMissingSectionsKeepDefaults(t *testing.T) {
	params, err := NewNormalizer(nil).Normalize([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFiscalParameters(), params)
}

func TestNormalizeRejectsUnparseableDocument(t *testing.T) {
	_, err := NewNormalizer(nil).Normalize([]byte(`{"taxBrackets": [`))
	assert.Error(t, err)
}

func TestNormalizeAllGarbageBracketsKeepDefaults(t *testing.T) {
	payload := []byte(`{"taxBrackets": [{"limit": "whatever", "rate": "nope"}]}`)
	params, err := NewNormalizer(nil).Normalize(payload)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFiscalParameters().TaxBrackets, params.TaxBrackets)
}
