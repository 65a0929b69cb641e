package calculation

import (
	"fmt"
	"log/slog"

	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
)

// Engine orchestrates projection runs against one set of fiscal
// parameters. It holds no mutable state: every call is independent and
// re-entrant, and memoization is left to callers.
type Engine struct {
	fiscal domain.FiscalParameters
	logger *slog.Logger
}

// NewEngine builds an engine. A nil logger falls back to slog.Default().
func NewEngine(fiscal domain.FiscalParameters, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{fiscal: fiscal, logger: logger}
}

// Fiscal returns the parameters the engine was built with.
func (e *Engine) Fiscal() domain.FiscalParameters { return e.fiscal }

// ProjectionOutput carries whichever projection mode ran.
type ProjectionOutput struct {
	Result     *domain.SimulationResult `json:"result,omitempty"`
	MonteCarlo *domain.MonteCarloResult `json:"monteCarlo,omitempty"`
}

// CalculateRetirementProjection validates the profile, runs the
// deterministic month-by-month simulation, and derives the summary
// statistics. On validation failure no result is returned: callers must
// treat the error as "no result available", not as a zero-valued run.
func (e *Engine) CalculateRetirementProjection(p *domain.FinancialProfile) (*domain.SimulationResult, error) {
	result, err := Simulate(p)
	if err != nil {
		return nil, err
	}
	DeriveStatistics(result, p)
	return result, nil
}

// CalculateSimulation dispatches on the simulation type. A dynamic
// withdrawal strategy always takes the full simulation path; there is no
// closed-form shortcut for state-dependent withdrawals.
func (e *Engine) CalculateSimulation(p *domain.FinancialProfile, simType domain.SimulationType) (*ProjectionOutput, error) {
	switch simType {
	case domain.SimulationMonteCarlo:
		mc, err := RunMonteCarlo(p, DefaultMonteCarloConfig())
		if err != nil {
			return nil, err
		}
		return &ProjectionOutput{MonteCarlo: mc}, nil
	case domain.SimulationDeterministic, "":
		result, err := e.CalculateRetirementProjection(p)
		if err != nil {
			return nil, err
		}
		return &ProjectionOutput{Result: result}, nil
	default:
		return nil, fmt.Errorf("unknown simulation type %q", simType)
	}
}

// EffectiveSources returns the profile's income sources with the
// system-managed national insurance source synthesized in. Any
// user-supplied national insurance entry is replaced: its amount is not
// independently editable.
func (e *Engine) EffectiveSources(p *domain.FinancialProfile) []domain.IncomeSource {
	sources := make([]domain.IncomeSource, 0, len(p.PensionIncomeSources)+1)
	for i := range p.PensionIncomeSources {
		if p.PensionIncomeSources[i].Type == domain.IncomeNationalInsurance {
			continue
		}
		sources = append(sources, p.PensionIncomeSources[i])
	}
	sources = append(sources, SynthesizeNationalInsuranceSource(p, e.fiscal))
	return sources
}

// RetirementIncomeSummary runs the depletion projector for a profile,
// using the given capital as the balance known at the retirement end
// age. When capital is nil the deterministic simulation supplies it.
func (e *Engine) RetirementIncomeSummary(p *domain.FinancialProfile, capital *decimal.Decimal) (*domain.RetirementIncomeSummary, error) {
	if err := ValidateProfile(p); err != nil {
		return nil, err
	}

	var capitalAtEnd decimal.Decimal
	if capital != nil {
		capitalAtEnd = *capital
	} else {
		result, err := e.CalculateRetirementProjection(p)
		if err != nil {
			return nil, err
		}
		capitalAtEnd = result.BalanceAtEnd
	}

	summary := CalculateRetirementIncomeSummary(SummaryInput{
		Sources:            e.EffectiveSources(p),
		RetirementStartAge: p.RetirementStartAge,
		RetirementEndAge:   p.RetirementEndAge,
		Capital:            capitalAtEnd,
		MonthlyExpenses:    p.MonthlyNetIncomeDesired,
		CapitalReturnRate:  p.AnnualReturnRate,
		Fiscal:             e.fiscal,
	})
	return &summary, nil
}
