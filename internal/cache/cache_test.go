package cache

import (
	"context"
	"testing"
	"time"

	"github.com/penplan/penplan/internal/calculation"
	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() *domain.FinancialProfile {
	return &domain.FinancialProfile{
		CurrentAge:              40,
		RetirementStartAge:      67,
		RetirementEndAge:        90,
		CurrentSavings:          decimal.NewFromInt(100000),
		MonthlyContribution:     decimal.NewFromInt(2000),
		MonthlyNetIncomeDesired: decimal.NewFromInt(10000),
		AnnualReturnRate:        decimal.NewFromInt(5),
		TaxRate:                 decimal.NewFromInt(15),
		WithdrawalStrategy:      domain.WithdrawalFixed,
		FamilyStatus:            domain.FamilySingle,
		AsOf:                    time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestProfileKeyStableAndDiscriminating(t *testing.T) {
	first, err := ProfileKey(testProfile())
	require.NoError(t, err)
	second, err := ProfileKey(testProfile())
	require.NoError(t, err)
	assert.Equal(t, first, second, "equal profiles must hash to the same key")
	assert.Contains(t, first, "penplan:projection:")

	changed := testProfile()
	changed.MonthlyContribution = decimal.NewFromInt(2001)
	third, err := ProfileKey(changed)
	require.NoError(t, err)
	assert.NotEqual(t, first, third, "any field change must produce a new key")
}

func TestProfileKeyIgnoresSubMonthAsOfDetail(t *testing.T) {
	// Only the calendar month of AsOf feeds the simulation, so two
	// requests stamped with different wall-clock instants in the same
	// month must share one cache entry.
	morning := testProfile()
	morning.AsOf = time.Date(2026, time.March, 3, 9, 15, 42, 123456789, time.UTC)
	evening := testProfile()
	evening.AsOf = time.Date(2026, time.March, 28, 23, 59, 59, 0, time.UTC)

	first, err := ProfileKey(morning)
	require.NoError(t, err)
	second, err := ProfileKey(evening)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	nextMonth := testProfile()
	nextMonth.AsOf = time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	third, err := ProfileKey(nextMonth)
	require.NoError(t, err)
	assert.NotEqual(t, first, third, "a different as-of month changes the projection")
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok := store.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	value, ok := store.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}

func TestCachedEngineMemoizes(t *testing.T) {
	engine := calculation.NewEngine(domain.DefaultFiscalParameters(), nil)
	store := NewMemoryStore()
	cached := NewCachedEngine(engine, store)
	ctx := context.Background()

	profile := testProfile()
	first, err := cached.CalculateRetirementProjection(ctx, profile)
	require.NoError(t, err)

	key, err := ProfileKey(profile)
	require.NoError(t, err)
	_, ok := store.Get(ctx, key)
	assert.True(t, ok, "result must be stored after the first run")

	second, err := cached.CalculateRetirementProjection(ctx, profile)
	require.NoError(t, err)
	assert.True(t, first.BalanceAtRetirement.Equal(second.BalanceAtRetirement))
	assert.True(t, first.BalanceAtEnd.Equal(second.BalanceAtEnd))
	assert.Equal(t, len(first.Yearly), len(second.Yearly))
}

// A store whose reads and writes always fail. The memoizer must fall
// through to the engine instead of surfacing store errors.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (brokenStore) Set(context.Context, string, []byte) error {
	return assert.AnError
}

func TestCachedEngineDegradesOnStoreFailure(t *testing.T) {
	engine := calculation.NewEngine(domain.DefaultFiscalParameters(), nil)
	cached := NewCachedEngine(engine, brokenStore{})

	result, err := cached.CalculateRetirementProjection(context.Background(), testProfile())
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestCachedEnginePropagatesEngineErrors(t *testing.T) {
	engine := calculation.NewEngine(domain.DefaultFiscalParameters(), nil)
	cached := NewCachedEngine(engine, NewMemoryStore())

	invalid := testProfile()
	invalid.RetirementStartAge = 30

	_, err := cached.CalculateRetirementProjection(context.Background(), invalid)
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)
}
