package domain

import (
	"github.com/shopspring/decimal"
)

// MonthlyFlow is one simulated month. BalanceEnd of month N equals
// BalanceStart of month N+1.
type MonthlyFlow struct {
	PeriodIndex     int             `json:"periodIndex"`
	Age             float64         `json:"age"`
	BalanceStart    decimal.Decimal `json:"balanceStart"`
	Contribution    decimal.Decimal `json:"contribution"`
	Growth          decimal.Decimal `json:"growth"`
	GrossWithdrawal decimal.Decimal `json:"grossWithdrawal"`
	Tax             decimal.Decimal `json:"tax"`
	NetWithdrawal   decimal.Decimal `json:"netWithdrawal"`
	BalanceEnd      decimal.Decimal `json:"balanceEnd"`
}

// YearlyFlow rolls a calendar year of monthly flows up into one row.
// Months may be fewer than twelve for the partial first and final years.
type YearlyFlow struct {
	Year             int             `json:"year"`
	Months           int             `json:"months"`
	AgeAtYearEnd     float64         `json:"ageAtYearEnd"`
	BalanceStart     decimal.Decimal `json:"balanceStart"`
	Contributions    decimal.Decimal `json:"contributions"`
	Growth           decimal.Decimal `json:"growth"`
	GrossWithdrawals decimal.Decimal `json:"grossWithdrawals"`
	Tax              decimal.Decimal `json:"tax"`
	NetWithdrawals   decimal.Decimal `json:"netWithdrawals"`
	BalanceEnd       decimal.Decimal `json:"balanceEnd"`
}

// SimulationResult is the full output of a projection run.
type SimulationResult struct {
	Monthly []MonthlyFlow `json:"monthly,omitempty"`
	Yearly  []YearlyFlow  `json:"yearly"`

	BalanceAtRetirement    decimal.Decimal `json:"balanceAtRetirement"`
	BalanceAtEnd           decimal.Decimal `json:"balanceAtEnd"`
	InitialGrossWithdrawal decimal.Decimal `json:"initialGrossWithdrawal"`
	InitialNetWithdrawal   decimal.Decimal `json:"initialNetWithdrawal"`

	// RequiredCapitalForPerpetuity is zero with PerpetuityFeasible false
	// when the after-tax monthly rate is not positive; the division is
	// never attempted in that case.
	RequiredCapitalForPerpetuity decimal.Decimal `json:"requiredCapitalForPerpetuity"`
	PerpetuityFeasible           bool            `json:"perpetuityFeasible"`

	PVOfDeficit             decimal.Decimal `json:"pvOfDeficit"`
	PVOfCapitalPreservation decimal.Decimal `json:"pvOfCapitalPreservation"`

	AverageGrossWithdrawal decimal.Decimal `json:"averageGrossWithdrawal"`
	AverageNetWithdrawal   decimal.Decimal `json:"averageNetWithdrawal"`

	// DepletionAge is the fractional age at which the balance first
	// reached zero during decumulation, nil if it never did.
	DepletionAge *float64 `json:"depletionAge,omitempty"`
}

// MilestoneSummary is one checkpoint of the retirement income summary:
// an age at which some income source starts or ends.
type MilestoneSummary struct {
	Age                float64         `json:"age"`
	Income             IncomeAtAge     `json:"income"`
	AccumulatedCapital decimal.Decimal `json:"accumulatedCapital"`
	// DisplayedCapital is the accumulated capital floored at zero; the
	// unfloored value above feeds the depletion math.
	DisplayedCapital decimal.Decimal `json:"displayedCapital"`
	// MonthlyDeficit is expenses minus net income; negative means
	// surplus.
	MonthlyDeficit decimal.Decimal `json:"monthlyDeficit"`
	// AgeAtDepletion is nil when the capital never depletes (surplus or
	// beyond the 100-year horizon).
	AgeAtDepletion *float64 `json:"ageAtDepletion,omitempty"`
}

// RetirementIncomeSummary is the output of the depletion projector.
type RetirementIncomeSummary struct {
	Milestones         []MilestoneSummary `json:"milestones"`
	Capital            decimal.Decimal    `json:"capital"`
	MonthlyExpenses    decimal.Decimal    `json:"monthlyExpenses"`
	RetirementStartAge float64            `json:"retirementStartAge"`
	RetirementEndAge   float64            `json:"retirementEndAge"`
}

// MonteCarloResult summarizes an N-path randomized projection.
type MonteCarloResult struct {
	NumPaths            int             `json:"numPaths"`
	Seed                int64           `json:"seed"`
	SuccessRate         decimal.Decimal `json:"successRate"`
	MedianEndingBalance decimal.Decimal `json:"medianEndingBalance"`
	Percentiles         PercentileRange `json:"percentiles"`
	// MedianDepletionAge is nil when at least half the paths never
	// deplete.
	MedianDepletionAge *float64 `json:"medianDepletionAge,omitempty"`
}

// PercentileRange holds ending-balance percentiles across paths.
type PercentileRange struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}
