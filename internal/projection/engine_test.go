package projection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htb-forecast/internal/histdata"
)

func testConfig() SimulationConfig {
	return SimulationConfig{
		MortgageRate:      0.02,
		MortgageTermYears: 10,
		EquityLoanAmount:  240000,
		MortgageAmount:    260000,
		InitialEquity:     20000,
	}
}

// fallbackEngine projects against an empty store, exercising the uniform
// fallback distribution.
func fallbackEngine(t *testing.T, cfg SimulationConfig) *Engine {
	t.Helper()
	return NewEngine(cfg, histdata.NewSampler(histdata.NewStore(t.TempDir(), 0)))
}

// historicalEngine projects against small fixed change pools.
func historicalEngine(t *testing.T, cfg SimulationConfig) *Engine {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	write("uk_cpi_monthly_changes.csv", "monthly_change\n0.0005\n-0.0003\n0.0001\n")
	write("uk_property_monthly_changes.csv", "monthly_change\n0.004\n-0.002\n0.001\n")
	write("uk_mortgage_monthly_changes.csv", "monthly_change\n0.002\n-0.001\n0.0\n")
	return NewEngine(cfg, histdata.NewSampler(histdata.NewStore(dir, 0)))
}

func TestConfig_DerivedValues(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 520000.0, cfg.InitialPropertyValue())
	assert.InDelta(t, 0.4615, cfg.EquityPercentage(), 0.0001)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_ValidateRejectsBadInputs(t *testing.T) {
	bad := testConfig()
	bad.EquityLoanAmount = 0
	assert.Error(t, bad.Validate())

	bad = testConfig()
	bad.MortgageTermYears = 0
	assert.Error(t, bad.Validate())

	bad = testConfig()
	bad.InitialEquity = -1
	assert.Error(t, bad.Validate())
}

func TestProject_Deterministic(t *testing.T) {
	engine := historicalEngine(t, testConfig())

	first := engine.Project(6, 1234)
	second := engine.Project(6, 1234)
	require.Equal(t, first, second)
}

func TestProject_SeedChangesOutcome(t *testing.T) {
	engine := historicalEngine(t, testConfig())

	first := engine.Project(6, 1)
	second := engine.Project(6, 2)
	assert.NotEqual(t, first.FinalPNL, second.FinalPNL)
}

func TestProject_ArrayLengths(t *testing.T) {
	cfg := testConfig()
	engine := fallbackEngine(t, cfg)

	// Horizon is max(term, repaymentYear+1) years of months, inclusive.
	res := engine.Project(3, 7)
	wantLen := cfg.MortgageTermYears*12 + 1
	assert.Len(t, res.TimeMonths, wantLen)
	assert.Len(t, res.PropertyValues, wantLen)
	assert.Len(t, res.MortgageBalance, wantLen)

	res = engine.Project(14, 7)
	assert.Len(t, res.TimeMonths, 15*12+1)
}

func TestProject_PropertyFloor(t *testing.T) {
	cfg := testConfig()
	engine := fallbackEngine(t, cfg)
	res := engine.Project(6, 99)

	floor := cfg.InitialPropertyValue() * 0.3
	for m, v := range res.PropertyValues {
		if v < floor {
			t.Fatalf("property value %f below floor %f at month %d", v, floor, m)
		}
	}
}

func TestProject_CPINonNegative(t *testing.T) {
	engine := fallbackEngine(t, testConfig())
	res := engine.Project(6, 5)

	for m, v := range res.MonthlyCPIRates {
		if v < 0 {
			t.Fatalf("CPI rate %f negative at month %d", v, m)
		}
	}
}

func TestProject_MarketRateMovesOnlyAtLockBoundaries(t *testing.T) {
	engine := historicalEngine(t, testConfig())
	res := engine.Project(6, 11)

	for m := 1; m < len(res.MonthlyMortgageRates); m++ {
		if m%60 != 0 && res.MonthlyMortgageRates[m] != res.MonthlyMortgageRates[m-1] {
			t.Fatalf("market rate moved at month %d outside a lock boundary", m)
		}
	}
}

func TestProject_LoanZeroFromRepaymentMonth(t *testing.T) {
	engine := fallbackEngine(t, testConfig())
	res := engine.Project(6, 21)

	repaymentMonth := 6 * 12
	for m := 0; m < repaymentMonth; m++ {
		assert.Greater(t, res.CurrentLoanValue[m], 0.0, "month %d", m)
	}
	for m := repaymentMonth; m < len(res.CurrentLoanValue); m++ {
		assert.Zero(t, res.CurrentLoanValue[m], "month %d", m)
	}
}

func TestProject_MortgageBalanceInvariants(t *testing.T) {
	cfg := testConfig()
	engine := fallbackEngine(t, cfg)
	repaymentMonth := 6 * 12
	res := engine.Project(6, 33)

	for m := 1; m < len(res.MortgageBalance); m++ {
		b := res.MortgageBalance[m]
		require.GreaterOrEqual(t, b, 0.0, "month %d", m)
		// Net of the one-time payoff injection the balance never grows.
		if m != repaymentMonth {
			assert.LessOrEqual(t, b, res.MortgageBalance[m-1], "month %d", m)
		}
	}
}

func TestProject_BeyondTermBalance(t *testing.T) {
	cfg := testConfig()
	engine := fallbackEngine(t, cfg)

	// Repayment in year 12 stretches the horizon past the 10-year term: the
	// amortized balance is zero beyond the term until the payoff injection
	// lands at month 144.
	repaymentMonth := 12 * 12
	termMonths := cfg.MortgageTermYears * 12
	res := engine.Project(12, 33)

	for m := termMonths + 1; m < len(res.MortgageBalance); m++ {
		assert.Zero(t, res.MonthlyPayments[m], "month %d beyond term", m)
		if m < repaymentMonth {
			assert.Zero(t, res.MortgageBalance[m], "month %d beyond term", m)
		}
	}
	// The injected payoff equals the loan value the month before repayment.
	want := res.PropertyValues[repaymentMonth-1] * cfg.EquityPercentage()
	for m := repaymentMonth; m < len(res.MortgageBalance); m++ {
		assert.InDelta(t, want, res.MortgageBalance[m], 1e-9, "month %d", m)
	}
}

func TestProject_PaymentConstantWithinLockPeriod(t *testing.T) {
	cfg := testConfig()
	engine := historicalEngine(t, cfg)
	res := engine.Project(6, 8)

	termMonths := cfg.MortgageTermYears * 12
	assert.Zero(t, res.MonthlyPayments[0])
	for m := 2; m <= termMonths; m++ {
		if m%60 != 1 {
			assert.Equal(t, res.MonthlyPayments[m-1], res.MonthlyPayments[m], "month %d", m)
		}
	}
}

func TestProject_HTBRateDeferredForFiveYears(t *testing.T) {
	engine := fallbackEngine(t, testConfig())
	res := engine.Project(8, 4)

	// First reprice happens in the April of year 5 (month 63).
	for m := 0; m < 63; m++ {
		assert.Equal(t, 0.0175, res.AnnualHTBRates[m], "month %d", m)
	}
	assert.Greater(t, res.AnnualHTBRates[63], 0.0175)
}

func TestProject_InterestAccrualWindow(t *testing.T) {
	engine := fallbackEngine(t, testConfig())
	repaymentMonth := 8 * 12
	res := engine.Project(8, 4)

	for m := 0; m < 60; m++ {
		assert.Zero(t, res.CumulativeInterest[m], "month %d", m)
	}
	for m := 1; m < len(res.CumulativeInterest); m++ {
		assert.GreaterOrEqual(t, res.CumulativeInterest[m], res.CumulativeInterest[m-1], "month %d", m)
		if m >= repaymentMonth {
			assert.Equal(t, res.CumulativeInterest[repaymentMonth], res.CumulativeInterest[m], "month %d", m)
		}
	}
	assert.Greater(t, res.CumulativeInterest[repaymentMonth], 0.0)
}

func TestProject_RepaymentAtYearZero(t *testing.T) {
	cfg := testConfig()
	engine := fallbackEngine(t, cfg)
	res := engine.Project(0, 17)

	assert.Zero(t, res.CurrentLoanValue[0])
	assert.Zero(t, res.RepaymentLoanValue)
	assert.Zero(t, res.RepaymentInterest)
	assert.Equal(t, res.TotalRepayment-240000, res.TotalLoss)

	// The look-back at month 0 uses the original principal, refinanced onto
	// the balance from the very first month.
	assert.Equal(t, cfg.MortgageAmount+cfg.EquityLoanAmount, res.MortgageBalance[0])
}

func TestProject_ScalarIdentities(t *testing.T) {
	cfg := testConfig()
	engine := historicalEngine(t, cfg)
	res := engine.Project(7, 91)

	totalPayments := 0.0
	for m := 0; m < cfg.MortgageTermYears*12; m++ {
		totalPayments += res.MonthlyPayments[m]
	}
	assert.InDelta(t, res.RepaymentInterest+totalPayments, res.TotalExpenditure, 1e-9)

	finalMonth := cfg.MortgageTermYears * 12
	wantEquity := res.PropertyValues[finalMonth] - res.MortgageBalance[finalMonth]
	assert.InDelta(t, wantEquity, res.FinalEquity, 1e-9)
	assert.InDelta(t, res.FinalEquity-res.TotalExpenditure, res.FinalPNL, 1e-9)
}
