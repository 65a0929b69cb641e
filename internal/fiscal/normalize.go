// Package fiscal hardens externally supplied fiscal parameters. The
// producer is an unconstrained text-generation service, so every number
// is treated as hostile: percent/fraction unit mismatches, comma
// grouping, "Infinity" strings, and stale baseline values are all
// corrected here before anything reaches the engine.
package fiscal

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
)

// rawOverride mirrors the external JSON shape with deliberately loose
// field types: limits and rates may arrive as numbers, grouped strings,
// or null.
type rawOverride struct {
	NationalInsurance *rawNationalInsurance `json:"nationalInsurance"`
	TaxBrackets       []rawBracket          `json:"taxBrackets"`
}

type rawNationalInsurance struct {
	BaseRates             map[string]json.RawMessage `json:"baseRates"`
	SeniorityBonusPerYear json.RawMessage            `json:"seniorityBonusPerYear"`
	DeferralBonusPerMonth json.RawMessage            `json:"deferralBonusPerMonth"`
	IncomeTestThreshold   map[string]json.RawMessage `json:"incomeTestThreshold"`
}

type rawBracket struct {
	Limit json.RawMessage `json:"limit"`
	Rate  json.RawMessage `json:"rate"`
}

// Normalizer parses and corrects an external fiscal override.
type Normalizer struct {
	logger *slog.Logger
	// CorrectStaleRates rewrites known out-of-date baseline amounts to
	// their current values.
	CorrectStaleRates bool
	// staleBaseRates maps a known stale amount to its replacement.
	staleBaseRates map[string]decimal.Decimal
}

// NewNormalizer builds a normalizer with the stale-value correction rule
// enabled. A nil logger falls back to slog.Default(); corrections are
// logged at Warn so they stay auditable without being fatal.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		logger:            logger,
		CorrectStaleRates: true,
		staleBaseRates: map[string]decimal.Decimal{
			"1756": decimal.NewFromInt(1795),
			"2361": decimal.NewFromInt(2387),
		},
	}
}

// Normalize parses the override JSON and merges it over the built-in
// defaults. Missing sections keep their default values; malformed
// individual entries are dropped with a warning rather than failing the
// whole override. Only a syntactically unparseable document is an error.
func (n *Normalizer) Normalize(raw []byte) (domain.FiscalParameters, error) {
	params := domain.DefaultFiscalParameters()

	var override rawOverride
	if err := json.Unmarshal(raw, &override); err != nil {
		return params, fmt.Errorf("failed to parse fiscal override: %w", err)
	}

	if override.NationalInsurance != nil {
		n.applyNationalInsurance(&params.NationalInsurance, override.NationalInsurance)
	}
	if len(override.TaxBrackets) > 0 {
		if brackets := n.normalizeBrackets(override.TaxBrackets); len(brackets) > 0 {
			params.TaxBrackets = brackets
		}
	}
	return params, nil
}

func (n *Normalizer) applyNationalInsurance(params *domain.NationalInsuranceParams, raw *rawNationalInsurance) {
	for status, value := range raw.BaseRates {
		amount, ok := n.parseAmount(value)
		if !ok || amount == nil {
			n.logger.Warn("dropping unparseable national insurance base rate",
				"family_status", status, "value", string(value))
			continue
		}
		corrected := n.correctStale(*amount, status)
		params.BaseRates[domain.FamilyStatus(status)] = corrected
	}
	for status, value := range raw.IncomeTestThreshold {
		amount, ok := n.parseAmount(value)
		if !ok || amount == nil {
			n.logger.Warn("dropping unparseable income test threshold",
				"family_status", status, "value", string(value))
			continue
		}
		params.IncomeTestThresholds[domain.FamilyStatus(status)] = *amount
	}
	if len(raw.SeniorityBonusPerYear) > 0 {
		if amount, ok := n.parseAmount(raw.SeniorityBonusPerYear); ok && amount != nil {
			params.SeniorityBonusPerYear = *amount
		}
	}
	// The wire name says "per month" but the value is the
	// annual-equivalent percent; it maps straight through without a
	// twelve-fold conversion.
	if len(raw.DeferralBonusPerMonth) > 0 {
		if amount, ok := n.parseAmount(raw.DeferralBonusPerMonth); ok && amount != nil {
			params.DeferralBonusPerYear = *amount
		}
	}
}

// correctStale swaps a known out-of-date base amount for the current
// baseline when the correction rule is enabled.
func (n *Normalizer) correctStale(amount decimal.Decimal, status string) decimal.Decimal {
	if !n.CorrectStaleRates {
		return amount
	}
	if current, ok := n.staleBaseRates[amount.String()]; ok {
		n.logger.Warn("corrected stale national insurance base rate",
			"family_status", status,
			"stale", amount.String(),
			"current", current.String())
		return current
	}
	return amount
}

// normalizeBrackets converts the loose external bracket list into a
// valid ascending marginal table. Rates above 1 are treated as whole
// percents. The table is sorted by limit, the unbounded bracket forced
// to the end, and a terminal unbounded bracket synthesized from the top
// explicit rate when the producer omitted it.
func (n *Normalizer) normalizeBrackets(raw []rawBracket) []domain.TaxBracket {
	brackets := make([]domain.TaxBracket, 0, len(raw))
	for i, rb := range raw {
		rate, ok := n.parseAmount(rb.Rate)
		if !ok || rate == nil {
			n.logger.Warn("dropping tax bracket with unparseable rate", "index", i, "value", string(rb.Rate))
			continue
		}
		normalizedRate := *rate
		if normalizedRate.GreaterThan(decimal.NewFromInt(1)) {
			n.logger.Warn("normalized whole-percent tax rate to fraction", "index", i, "rate", normalizedRate.String())
			normalizedRate = normalizedRate.Div(decimal.NewFromInt(100))
		}

		limit, ok := n.parseAmount(rb.Limit)
		if !ok {
			n.logger.Warn("dropping tax bracket with unparseable limit", "index", i, "value", string(rb.Limit))
			continue
		}
		brackets = append(brackets, domain.TaxBracket{UpperLimit: limit, Rate: normalizedRate})
	}
	if len(brackets) == 0 {
		return nil
	}

	sort.SliceStable(brackets, func(i, j int) bool {
		if brackets[i].UpperLimit == nil {
			return false
		}
		if brackets[j].UpperLimit == nil {
			return true
		}
		return brackets[i].UpperLimit.LessThan(*brackets[j].UpperLimit)
	})

	// Drop non-increasing limits: the walk in the tax engine requires a
	// strictly ascending table.
	deduped := make([]domain.TaxBracket, 0, len(brackets))
	deduped = append(deduped, brackets[0])
	for _, b := range brackets[1:] {
		prev := deduped[len(deduped)-1]
		if b.UpperLimit != nil && prev.UpperLimit != nil && !b.UpperLimit.GreaterThan(*prev.UpperLimit) {
			n.logger.Warn("dropping tax bracket with non-increasing limit", "limit", b.UpperLimit.String())
			continue
		}
		deduped = append(deduped, b)
	}

	if last := deduped[len(deduped)-1]; last.UpperLimit != nil {
		n.logger.Warn("synthesized terminal unbounded tax bracket", "rate", last.Rate.String())
		deduped = append(deduped, domain.TaxBracket{UpperLimit: nil, Rate: last.Rate})
	}
	return deduped
}

// parseAmount decodes one loose JSON scalar. Returns (nil, true) for the
// null/Infinity family of unbounded markers, (value, true) for anything
// numeric after comma-grouping cleanup, and (nil, false) when the value
// is garbage.
func (n *Normalizer) parseAmount(raw json.RawMessage) (*decimal.Decimal, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return nil, true
	}

	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		s = strings.TrimSpace(s)
		switch strings.ToLower(s) {
		case "", "null", "infinity", "+infinity", "inf", "none":
			return nil, true
		}
		s = strings.ReplaceAll(s, ",", "")
		value, err := decimal.NewFromString(s)
		if err != nil {
			return nil, false
		}
		return &value, true
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err != nil {
		return nil, false
	}
	value := decimal.NewFromFloat(num)
	return &value, true
}
