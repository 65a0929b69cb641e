package calculation

import (
	"math/rand"
	"sort"

	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
)

// MonteCarloConfig holds the randomized-projection settings.
type MonteCarloConfig struct {
	NumPaths int
	Seed     int64
	// ReturnStdDev is the standard deviation of the annual return draw,
	// in whole percentage points.
	ReturnStdDev decimal.Decimal
}

// DefaultMonteCarloConfig mirrors common planning practice: a thousand
// paths with a 12-point annual return deviation. The fixed seed keeps
// repeated runs comparable; callers wanting fresh draws supply their
// own.
func DefaultMonteCarloConfig() MonteCarloConfig {
	return MonteCarloConfig{
		NumPaths:     1000,
		Seed:         42,
		ReturnStdDev: decimal.NewFromInt(12),
	}
}

// RunMonteCarlo reruns the deterministic simulator across NumPaths
// randomized return sequences. Each path draws one annual return per
// simulated year from a normal distribution centered on the profile's
// rate and injects it through the variable-rate override mechanism, so
// the monthly mechanics stay identical to the deterministic run. A path
// succeeds when it reaches the horizon without depleting.
// Deterministic for a given seed.
func RunMonteCarlo(p *domain.FinancialProfile, cfg MonteCarloConfig) (*domain.MonteCarloResult, error) {
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}
	if cfg.NumPaths <= 0 {
		cfg.NumPaths = DefaultMonteCarloConfig().NumPaths
	}
	if cfg.ReturnStdDev.IsZero() {
		cfg.ReturnStdDev = DefaultMonteCarloConfig().ReturnStdDev
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	years := len(YearSpans(p))
	mean, _ := p.AnnualReturnRate.Float64()
	stdDev, _ := cfg.ReturnStdDev.Float64()

	endingBalances := make([]decimal.Decimal, 0, cfg.NumPaths)
	var depletionAges []float64
	successes := 0

	for path := 0; path < cfg.NumPaths; path++ {
		trial := *p
		trial.VariableRatesEnabled = true
		trial.VariableRates = make([]domain.YearlyOverride, years)
		for y := 0; y < years; y++ {
			drawn := mean + stdDev*rng.NormFloat64()
			if drawn < -100 {
				drawn = -100
			}
			if drawn > 100 {
				drawn = 100
			}
			rate := decimal.NewFromFloat(drawn)
			trial.VariableRates[y] = domain.YearlyOverride{Year: y + 1, AnnualReturnRate: &rate}
		}

		result, err := Simulate(&trial)
		if err != nil {
			return nil, err
		}
		endingBalances = append(endingBalances, result.BalanceAtEnd)
		// Reaching the horizon without depleting is success. The dynamic
		// strategy amortizes to exactly zero at the horizon, so a
		// positive-balance check would mark every one of its paths failed.
		if result.DepletionAge == nil {
			successes++
		}
		if result.DepletionAge != nil {
			depletionAges = append(depletionAges, *result.DepletionAge)
		}
	}

	sort.Slice(endingBalances, func(i, j int) bool {
		return endingBalances[i].LessThan(endingBalances[j])
	})

	mc := &domain.MonteCarloResult{
		NumPaths:            cfg.NumPaths,
		Seed:                cfg.Seed,
		SuccessRate:         decimal.NewFromInt(int64(successes)).Div(decimal.NewFromInt(int64(cfg.NumPaths))),
		MedianEndingBalance: percentile(endingBalances, 50),
		Percentiles: domain.PercentileRange{
			P10: percentile(endingBalances, 10),
			P25: percentile(endingBalances, 25),
			P50: percentile(endingBalances, 50),
			P75: percentile(endingBalances, 75),
			P90: percentile(endingBalances, 90),
		},
	}

	// Median depletion age only exists when at least half the paths
	// deplete.
	if len(depletionAges)*2 >= cfg.NumPaths && len(depletionAges) > 0 {
		sort.Float64s(depletionAges)
		median := depletionAges[len(depletionAges)/2]
		mc.MedianDepletionAge = &median
	}
	return mc, nil
}

// percentile picks the pth percentile from an ascending-sorted slice
// with nearest-rank selection.
func percentile(sorted []decimal.Decimal, pct int) decimal.Decimal {
	if len(sorted) == 0 {
		return decimal.Zero
	}
	idx := (pct*len(sorted) + 50) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
