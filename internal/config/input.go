// Package config loads financial profiles and fiscal parameter files.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/penplan/penplan/internal/calculation"
	"github.com/penplan/penplan/internal/domain"
	"gopkg.in/yaml.v3"
)

// ProfileFile is the on-disk profile document. Fiscal is optional; when
// absent the built-in defaults apply. Older saved profiles may omit
// pension income sources and variable rates entirely, which parse to
// their zero values and mean "none"/"disabled".
type ProfileFile struct {
	Profile domain.FinancialProfile  `yaml:"profile"`
	Fiscal  *domain.FiscalParameters `yaml:"fiscal,omitempty"`
}

// InputParser handles parsing of input configuration files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a profile document from a YAML file, anchors the
// as-of date when the file omitted it, and validates the profile.
func (ip *InputParser) LoadFromFile(filename string) (*ProfileFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var file ProfileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if file.Profile.AsOf.IsZero() {
		file.Profile.AsOf = time.Now()
	}
	if file.Profile.WithdrawalStrategy == "" {
		file.Profile.WithdrawalStrategy = domain.WithdrawalFixed
	}

	if err := ip.ValidateProfileFile(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ValidateProfileFile validates the profile and the income sources
// attached to it.
func (ip *InputParser) ValidateProfileFile(file *ProfileFile) error {
	if err := calculation.ValidateProfile(&file.Profile); err != nil {
		return err
	}
	for i, source := range file.Profile.PensionIncomeSources {
		if err := ip.validateIncomeSource(&source); err != nil {
			return fmt.Errorf("income source %d (%s) validation failed: %w", i, source.ID, err)
		}
	}
	if file.Fiscal != nil {
		if err := ip.validateFiscal(file.Fiscal); err != nil {
			return fmt.Errorf("fiscal parameters validation failed: %w", err)
		}
	}
	return nil
}

func (ip *InputParser) validateIncomeSource(source *domain.IncomeSource) error {
	if source.ID == "" {
		return fmt.Errorf("id is required")
	}
	if source.GrossMonthlyAmount.IsNegative() {
		return fmt.Errorf("gross monthly amount cannot be negative")
	}
	if source.StartAge < 0 || source.StartAge > 120 {
		return fmt.Errorf("start age must be between 0 and 120")
	}
	if source.EndAge != nil && *source.EndAge <= source.StartAge {
		return fmt.Errorf("end age must be greater than start age")
	}
	if source.IsLumpSum && source.EndAge != nil {
		return fmt.Errorf("lump sum sources cannot have an end age")
	}
	return nil
}

func (ip *InputParser) validateFiscal(fiscal *domain.FiscalParameters) error {
	if len(fiscal.TaxBrackets) == 0 {
		return fmt.Errorf("at least one tax bracket is required")
	}
	var previous *domain.TaxBracket
	for i := range fiscal.TaxBrackets {
		bracket := &fiscal.TaxBrackets[i]
		if bracket.UpperLimit == nil {
			if i != len(fiscal.TaxBrackets)-1 {
				return fmt.Errorf("only the final bracket may be unbounded")
			}
			continue
		}
		if previous != nil && previous.UpperLimit != nil && !bracket.UpperLimit.GreaterThan(*previous.UpperLimit) {
			return fmt.Errorf("bracket limits must be strictly increasing")
		}
		previous = bracket
	}
	if last := fiscal.TaxBrackets[len(fiscal.TaxBrackets)-1]; last.UpperLimit != nil {
		return fmt.Errorf("the final bracket must be unbounded")
	}
	return nil
}
