// Package output renders projection results for the CLI.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
)

var decimalHundred = decimal.NewFromInt(100)

// Formatter renders a projection result to bytes.
type Formatter interface {
	Name() string
	Format(result *domain.SimulationResult) ([]byte, error)
}

// ByName returns the formatter for a CLI format flag.
func ByName(name string) (Formatter, error) {
	switch name {
	case "console", "":
		return ConsoleFormatter{}, nil
	case "csv":
		return CSVFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (expected console, csv, or json)", name)
}

// ConsoleFormatter renders the summary scalars and the yearly table.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (ConsoleFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Balance at retirement:  %s\n", result.BalanceAtRetirement.StringFixed(0))
	fmt.Fprintf(&b, "Balance at end:         %s\n", result.BalanceAtEnd.StringFixed(0))
	fmt.Fprintf(&b, "Initial withdrawal:     %s gross / %s net\n",
		result.InitialGrossWithdrawal.StringFixed(0), result.InitialNetWithdrawal.StringFixed(0))
	if result.PerpetuityFeasible {
		fmt.Fprintf(&b, "Perpetuity capital:     %s\n", result.RequiredCapitalForPerpetuity.StringFixed(0))
	} else {
		fmt.Fprintf(&b, "Perpetuity capital:     not applicable (non-positive after-tax rate)\n")
	}
	fmt.Fprintf(&b, "PV of deficit:          %s\n", result.PVOfDeficit.StringFixed(0))
	fmt.Fprintf(&b, "Average withdrawal:     %s gross / %s net\n",
		result.AverageGrossWithdrawal.StringFixed(0), result.AverageNetWithdrawal.StringFixed(0))
	if result.DepletionAge != nil {
		fmt.Fprintf(&b, "Capital depletes at age %.1f\n", *result.DepletionAge)
	}

	fmt.Fprintf(&b, "\n%4s %6s %14s %12s %12s %12s %14s\n",
		"Year", "Months", "Start", "Contrib", "Growth", "Net WD", "End")
	for _, y := range result.Yearly {
		fmt.Fprintf(&b, "%4d %6d %14s %12s %12s %12s %14s\n",
			y.Year, y.Months,
			y.BalanceStart.StringFixed(0),
			y.Contributions.StringFixed(0),
			y.Growth.StringFixed(0),
			y.NetWithdrawals.StringFixed(0),
			y.BalanceEnd.StringFixed(0))
	}
	return []byte(b.String()), nil
}

// CSVFormatter emits one row per simulated year.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "Months", "AgeAtYearEnd", "BalanceStart", "Contributions", "Growth", "GrossWithdrawals", "Tax", "NetWithdrawals", "BalanceEnd"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, y := range result.Yearly {
		row := []string{
			strconv.Itoa(y.Year),
			strconv.Itoa(y.Months),
			strconv.FormatFloat(y.AgeAtYearEnd, 'f', 2, 64),
			y.BalanceStart.StringFixed(2),
			y.Contributions.StringFixed(2),
			y.Growth.StringFixed(2),
			y.GrossWithdrawals.StringFixed(2),
			y.Tax.StringFixed(2),
			y.NetWithdrawals.StringFixed(2),
			y.BalanceEnd.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// JSONFormatter emits the full result, monthly rows included.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// FormatSummary renders the retirement income summary milestones.
func FormatSummary(summary *domain.RetirementIncomeSummary) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Retirement income summary (capital %s at age %.1f, expenses %s/month)\n\n",
		summary.Capital.StringFixed(0), summary.RetirementEndAge, summary.MonthlyExpenses.StringFixed(0))
	fmt.Fprintf(&b, "%6s %12s %12s %12s %14s %12s\n",
		"Age", "Net income", "Deficit", "Capital", "Displayed", "Depletes at")
	for _, m := range summary.Milestones {
		depletes := "never"
		if m.AgeAtDepletion != nil {
			depletes = fmt.Sprintf("%.1f", *m.AgeAtDepletion)
		}
		fmt.Fprintf(&b, "%6.1f %12s %12s %12s %14s %12s\n",
			m.Age,
			m.Income.TotalNet.StringFixed(0),
			m.MonthlyDeficit.StringFixed(0),
			m.AccumulatedCapital.StringFixed(0),
			m.DisplayedCapital.StringFixed(0),
			depletes)
	}
	return []byte(b.String())
}

// FormatMonteCarlo renders the randomized-projection summary.
func FormatMonteCarlo(mc *domain.MonteCarloResult) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Monte Carlo: %d paths (seed %d)\n", mc.NumPaths, mc.Seed)
	fmt.Fprintf(&b, "Success rate:           %s%%\n", mc.SuccessRate.Mul(decimalHundred).StringFixed(1))
	fmt.Fprintf(&b, "Median ending balance:  %s\n", mc.MedianEndingBalance.StringFixed(0))
	fmt.Fprintf(&b, "Ending balance P10/P90: %s / %s\n",
		mc.Percentiles.P10.StringFixed(0), mc.Percentiles.P90.StringFixed(0))
	if mc.MedianDepletionAge != nil {
		fmt.Fprintf(&b, "Median depletion age:   %.1f\n", *mc.MedianDepletionAge)
	}
	return []byte(b.String())
}
