package projection

import "fmt"

// SimulationConfig holds the financial parameters of a Help-to-Buy purchase.
// All currency amounts are in pounds; the mortgage rate is an annual decimal.
type SimulationConfig struct {
	MortgageRate      float64 `yaml:"mortgage_rate"`
	MortgageTermYears int     `yaml:"mortgage_term_years"`
	EquityLoanAmount  float64 `yaml:"equity_loan_amount"`
	MortgageAmount    float64 `yaml:"mortgage_amount"`
	InitialEquity     float64 `yaml:"initial_equity"`
}

// DefaultConfig returns the reference purchase: a £520k flat bought with a
// 2% mortgage over 35 years, a £240k equity loan and £20k deposit.
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		MortgageRate:      0.02,
		MortgageTermYears: 35,
		EquityLoanAmount:  240000,
		MortgageAmount:    260000,
		InitialEquity:     20000,
	}
}

// InitialPropertyValue is the purchase price: equity loan + mortgage + deposit.
func (c SimulationConfig) InitialPropertyValue() float64 {
	return c.EquityLoanAmount + c.MortgageAmount + c.InitialEquity
}

// EquityPercentage is the government's share of the property.
func (c SimulationConfig) EquityPercentage() float64 {
	return c.EquityLoanAmount / c.InitialPropertyValue()
}

// Validate rejects configurations that would break the projection invariants.
func (c SimulationConfig) Validate() error {
	if c.EquityLoanAmount <= 0 {
		return fmt.Errorf("equity_loan_amount must be positive, got %v", c.EquityLoanAmount)
	}
	if c.MortgageAmount <= 0 {
		return fmt.Errorf("mortgage_amount must be positive, got %v", c.MortgageAmount)
	}
	if c.InitialEquity <= 0 {
		return fmt.Errorf("initial_equity must be positive, got %v", c.InitialEquity)
	}
	if c.MortgageTermYears <= 0 {
		return fmt.Errorf("mortgage_term_years must be positive, got %d", c.MortgageTermYears)
	}
	if c.MortgageRate < 0 {
		return fmt.Errorf("mortgage_rate must not be negative, got %v", c.MortgageRate)
	}
	if pct := c.EquityPercentage(); pct <= 0 || pct >= 1 {
		return fmt.Errorf("equity percentage %v outside (0, 1)", pct)
	}
	return nil
}
