// Package research asks an external text-generation service for current
// fiscal parameters. The service is a black box behind the Generator
// capability; its output is raw text that must survive the fiscal
// normalizer before anything trusts it. Provider and model identity
// never leave this package.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/penplan/penplan/internal/domain"
	"github.com/penplan/penplan/internal/fiscal"
)

// ErrDisabled is returned when no generation backend is configured.
var ErrDisabled = errors.New("fiscal research is disabled: no generator configured")

// Generator is the capability the researcher needs: text in, text out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const fiscalPrompt = `Return the current national insurance old-age pension rates and the
progressive monthly income tax brackets as a single JSON object, with no
surrounding prose, in exactly this shape:

{
  "nationalInsurance": {
    "baseRates": {"single": 0, "single_child": 0, "couple": 0, "couple_child": 0},
    "seniorityBonusPerYear": 0,
    "deferralBonusPerMonth": 0,
    "incomeTestThreshold": {"single": 0, "couple": 0}
  },
  "taxBrackets": [{"limit": 0, "rate": 0}]
}

Rates may be fractions or whole percents. Use null for the unbounded top
bracket limit.`

// Researcher fetches and normalizes fiscal parameters.
type Researcher struct {
	generator  Generator
	normalizer *fiscal.Normalizer
}

// NewResearcher wires a generator to the normalizer. A nil generator
// yields a researcher that always reports ErrDisabled, letting callers
// fall back to the built-in defaults.
func NewResearcher(generator Generator, normalizer *fiscal.Normalizer) *Researcher {
	if normalizer == nil {
		normalizer = fiscal.NewNormalizer(nil)
	}
	return &Researcher{generator: generator, normalizer: normalizer}
}

// FetchFiscalParameters asks the generator for current rates and runs
// the reply through normalization. The reply may wrap its JSON in
// markdown fences or prose; only the outermost object is parsed.
func (r *Researcher) FetchFiscalParameters(ctx context.Context) (domain.FiscalParameters, error) {
	if r.generator == nil {
		return domain.DefaultFiscalParameters(), ErrDisabled
	}

	reply, err := r.generator.Generate(ctx, fiscalPrompt)
	if err != nil {
		return domain.DefaultFiscalParameters(), fmt.Errorf("fiscal research request failed: %w", err)
	}

	payload := extractJSONObject(reply)
	if payload == "" {
		return domain.DefaultFiscalParameters(), fmt.Errorf("fiscal research reply contained no JSON object")
	}
	return r.normalizer.Normalize([]byte(payload))
}

// extractJSONObject returns the outermost {...} span of the reply, or
// empty when none exists.
func extractJSONObject(reply string) string {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return ""
	}
	return reply[start : end+1]
}
