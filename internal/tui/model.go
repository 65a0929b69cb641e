// Package tui is an interactive parameter explorer: every adjustment
// re-runs the projection engine against the modified profile.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/penplan/penplan/internal/calculation"
	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
)

// parameter is one adjustable profile field with its step size.
type parameter struct {
	label string
	value func(p *domain.FinancialProfile) string
	bump  func(p *domain.FinancialProfile, direction int)
}

// Model holds the explorer state: the working profile, the latest
// projection, and the parameter cursor.
type Model struct {
	engine  *calculation.Engine
	profile domain.FinancialProfile

	params   []parameter
	selected int

	result *domain.SimulationResult
	err    error

	width  int
	height int
	keys   keyMap
}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Decrease key.Binding
	Increase key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),
		Decrease: key.NewBinding(key.WithKeys("left", "h")),
		Increase: key.NewBinding(key.WithKeys("right", "l")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
	}
}

// NewModel builds the explorer around an engine and a starting profile.
func NewModel(engine *calculation.Engine, profile domain.FinancialProfile) Model {
	m := Model{
		engine:  engine,
		profile: profile,
		keys:    defaultKeyMap(),
		params:  buildParameters(),
	}
	m.recalculate()
	return m
}

func buildParameters() []parameter {
	bumpAge := func(field *float64, direction int) {
		*field += float64(direction)
		if *field < 1 {
			*field = 1
		}
		if *field > 120 {
			*field = 120
		}
	}
	bumpMoney := func(field *decimal.Decimal, direction int, step int64) {
		next := field.Add(decimal.NewFromInt(step * int64(direction)))
		if next.IsNegative() {
			next = decimal.Zero
		}
		*field = next
	}
	return []parameter{
		{
			label: "Current age",
			value: func(p *domain.FinancialProfile) string { return fmt.Sprintf("%.0f", p.CurrentAge) },
			bump:  func(p *domain.FinancialProfile, d int) { bumpAge(&p.CurrentAge, d) },
		},
		{
			label: "Retirement start age",
			value: func(p *domain.FinancialProfile) string { return fmt.Sprintf("%.0f", p.RetirementStartAge) },
			bump:  func(p *domain.FinancialProfile, d int) { bumpAge(&p.RetirementStartAge, d) },
		},
		{
			label: "Retirement end age",
			value: func(p *domain.FinancialProfile) string { return fmt.Sprintf("%.0f", p.RetirementEndAge) },
			bump:  func(p *domain.FinancialProfile, d int) { bumpAge(&p.RetirementEndAge, d) },
		},
		{
			label: "Current savings",
			value: func(p *domain.FinancialProfile) string { return p.CurrentSavings.StringFixed(0) },
			bump:  func(p *domain.FinancialProfile, d int) { bumpMoney(&p.CurrentSavings, d, 10000) },
		},
		{
			label: "Monthly contribution",
			value: func(p *domain.FinancialProfile) string { return p.MonthlyContribution.StringFixed(0) },
			bump:  func(p *domain.FinancialProfile, d int) { bumpMoney(&p.MonthlyContribution, d, 100) },
		},
		{
			label: "Desired net income",
			value: func(p *domain.FinancialProfile) string { return p.MonthlyNetIncomeDesired.StringFixed(0) },
			bump:  func(p *domain.FinancialProfile, d int) { bumpMoney(&p.MonthlyNetIncomeDesired, d, 250) },
		},
		{
			label: "Annual return rate %",
			value: func(p *domain.FinancialProfile) string { return p.AnnualReturnRate.StringFixed(1) },
			bump: func(p *domain.FinancialProfile, d int) {
				p.AnnualReturnRate = p.AnnualReturnRate.Add(decimal.NewFromFloat(0.5 * float64(d)))
			},
		},
		{
			label: "Tax rate %",
			value: func(p *domain.FinancialProfile) string { return p.TaxRate.StringFixed(1) },
			bump: func(p *domain.FinancialProfile, d int) {
				next := p.TaxRate.Add(decimal.NewFromInt(int64(d)))
				if next.IsNegative() {
					next = decimal.Zero
				}
				p.TaxRate = next
			},
		},
	}
}

// recalculate re-runs the projection for the working profile. A
// validation error keeps the previous result visible alongside the
// message.
func (m *Model) recalculate() {
	result, err := m.engine.CalculateRetirementProjection(&m.profile)
	m.err = err
	if err == nil {
		m.result = result
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.params)-1 {
				m.selected++
			}
		case key.Matches(msg, m.keys.Decrease):
			m.params[m.selected].bump(&m.profile, -1)
			m.recalculate()
		case key.Matches(msg, m.keys.Increase):
			m.params[m.selected].bump(&m.profile, +1)
			m.recalculate()
		}
	}
	return m, nil
}
