package projection

import (
	"math"
	"math/rand"

	"htb-forecast/internal/histdata"
)

const (
	monthsPerYear = 12

	// rateLockMonths is the remortgage interval: sampled rates hold for a
	// whole 5-year period before moving again.
	rateLockMonths = 60

	// htbDeferralYears is the interest-free head start of the scheme.
	htbDeferralYears = 5

	// aprilIndex is the calendar month (0 = Jan) at which the HTB rate is
	// repriced each year.
	aprilIndex = 3

	baseCPIRate           = 0.02
	initialHTBRate        = 0.0175
	htbMarginOverCPI      = 0.02
	minMortgageRate       = 0.005
	propertyFloorFraction = 0.3
)

// Seed offsets decorrelate the per-variable random streams while keeping a
// whole scenario reproducible from one integer.
const (
	mortgageSeedOffset = 1000
	propertySeedOffset = 2000
)

// Engine produces stochastic Help-to-Buy trajectories for one purchase
// configuration. It is safe for concurrent use: every Project call owns its
// own generators and the sampler's pools are read-only.
type Engine struct {
	cfg     SimulationConfig
	sampler *histdata.Sampler
}

func NewEngine(cfg SimulationConfig, sampler *histdata.Sampler) *Engine {
	return &Engine{cfg: cfg, sampler: sampler}
}

// Project simulates one scenario at monthly granularity: the equity loan is
// paid off in full at the start of repaymentYear, refinanced onto the
// mortgage. Identical (repaymentYear, seed) pairs produce identical results.
func (e *Engine) Project(repaymentYear int, seed int64) Result {
	years := e.cfg.MortgageTermYears
	if repaymentYear+1 > years {
		years = repaymentYear + 1
	}
	totalMonths := years * monthsPerYear
	n := totalMonths + 1

	timeMonths := make([]int, n)
	for m := range timeMonths {
		timeMonths[m] = m
	}

	initialValue := e.cfg.InitialPropertyValue()

	// Property value: historical bootstrap walk with a floor at 30% of the
	// purchase price.
	propertyRng := rand.New(rand.NewSource(seed + propertySeedOffset))
	propertyValues := make([]float64, n)
	propertyFloor := initialValue * propertyFloorFraction
	currentValue := initialValue
	propertyValues[0] = currentValue
	for m := 1; m < n; m++ {
		change := e.sampler.Sample(histdata.KindProperty, propertyRng)
		currentValue = max(propertyFloor, currentValue*(1+change))
		propertyValues[m] = currentValue
	}

	// CPI: additive historical walk from the 2% base, floored at zero.
	cpiRng := rand.New(rand.NewSource(seed))
	cpiRates := make([]float64, n)
	currentCPI := baseCPIRate
	cpiRates[0] = currentCPI
	for m := 1; m < n; m++ {
		change := e.sampler.Sample(histdata.KindCPI, cpiRng)
		currentCPI = max(0, currentCPI+change)
		cpiRates[m] = currentCPI
	}

	// Mortgage market rate: moves only at 5-year remortgage boundaries.
	mortgageRng := rand.New(rand.NewSource(seed + mortgageSeedOffset))
	marketRates := make([]float64, n)
	currentRate := e.cfg.MortgageRate
	marketRates[0] = currentRate
	for m := 1; m < n; m++ {
		if m%rateLockMonths == 0 {
			change := e.sampler.Sample(histdata.KindMortgage, mortgageRng)
			currentRate = max(minMortgageRate, currentRate+change)
		}
		marketRates[m] = currentRate
	}

	// HTB scheme rate: 1.75% until the deferral ends, then compounded by
	// CPI+2% each April and held between reprices.
	htbRates := make([]float64, n)
	lockedHTBRate := initialHTBRate
	for m := 0; m < n; m++ {
		year := m / monthsPerYear
		monthInYear := m % monthsPerYear
		if monthInYear == aprilIndex && year >= htbDeferralYears {
			lockedHTBRate *= 1 + cpiRates[m] + htbMarginOverCPI
		}
		htbRates[m] = lockedHTBRate
	}

	// Equity loan tracks the government's share of the property until it is
	// extinguished at the repayment month.
	equityPct := e.cfg.EquityPercentage()
	loanValues := make([]float64, n)
	for m := range loanValues {
		loanValues[m] = propertyValues[m] * equityPct
	}
	repaymentMonth := repaymentYear * monthsPerYear
	for m := repaymentMonth; m < n; m++ {
		loanValues[m] = 0
	}

	// Amortization rate is locked at each boundary. The locked series lags
	// the market series by one read: the market rate sampled at a boundary
	// is picked up for amortization at that same boundary, so the two only
	// differ over the first partial period.
	mortgageMonths := e.cfg.MortgageTermYears * monthsPerYear
	lockedRates := make([]float64, n)
	lockedRate := e.cfg.MortgageRate
	for m := 0; m < n; m++ {
		if m%rateLockMonths == 0 {
			lockedRate = marketRates[m]
		}
		lockedRates[m] = lockedRate
	}

	// Fixed-payment annuity amortization, payment recomputed from the
	// remaining balance and term in the month after each relock.
	balance := make([]float64, n)
	payments := make([]float64, n)
	balance[0] = e.cfg.MortgageAmount
	payment := 0.0
	for m := 1; m < n; m++ {
		if m > mortgageMonths {
			break // balance and payments stay zero beyond the term
		}
		if m%rateLockMonths == 1 {
			remainingMonths := mortgageMonths - m + 1
			payment = annuityPayment(balance[m-1], lockedRates[m]/monthsPerYear, remainingMonths)
		}
		payments[m] = payment

		monthlyRate := lockedRates[m] / monthsPerYear
		interest := balance[m-1] * monthlyRate
		principal := max(0, payment-interest)
		balance[m] = max(0, balance[m-1]-principal)
	}

	// The payoff is refinanced onto the mortgage from the repayment month
	// forward. Repayment at month 0 has no prior loan value to look back
	// at, so the original principal is used.
	if repaymentMonth < n {
		equityRepayment := e.cfg.EquityLoanAmount
		if repaymentMonth > 0 {
			equityRepayment = loanValues[repaymentMonth-1]
		}
		for m := repaymentMonth; m < n; m++ {
			balance[m] += equityRepayment
		}
	}

	// HTB interest accrues monthly from year 5 until repayment, then the
	// cumulative total is held flat.
	cumulativeInterest := make([]float64, n)
	for m := 0; m < n; m++ {
		year := m / monthsPerYear
		switch {
		case year >= htbDeferralYears && m < repaymentMonth:
			monthlyInterest := e.cfg.EquityLoanAmount * htbRates[m] / monthsPerYear
			if m > 0 {
				cumulativeInterest[m] = cumulativeInterest[m-1] + monthlyInterest
			}
		case m > 0 && m >= repaymentMonth:
			cumulativeInterest[m] = cumulativeInterest[m-1]
		}
	}

	// Scalar outcomes. The loan series is already zero at the repayment
	// month; the payoff cost itself is carried by the balance injection
	// above, so the captured repayment value reflects the extinguished loan.
	var totalLoss, totalRepayment, repaymentLoanValue, repaymentInterest float64
	if repaymentMonth < n {
		repaymentLoanValue = loanValues[repaymentMonth]
		repaymentInterest = cumulativeInterest[repaymentMonth]
		totalRepayment = repaymentLoanValue + repaymentInterest
		totalLoss = totalRepayment - e.cfg.EquityLoanAmount
	}

	totalMortgagePayments := 0.0
	for m := 0; m < mortgageMonths && m < n; m++ {
		totalMortgagePayments += payments[m]
	}
	totalExpenditure := repaymentInterest + totalMortgagePayments

	finalMonth := min(totalMonths, mortgageMonths)
	finalEquity := propertyValues[finalMonth] - balance[finalMonth]
	finalPNL := finalEquity - totalExpenditure

	return Result{
		TimeMonths:           timeMonths,
		CurrentLoanValue:     loanValues,
		CumulativeInterest:   cumulativeInterest,
		PropertyValues:       propertyValues,
		MortgageBalance:      balance,
		MonthlyPayments:      payments,
		MonthlyCPIRates:      cpiRates,
		AnnualHTBRates:       htbRates,
		MonthlyMortgageRates: marketRates,
		LockedMortgageRates:  lockedRates,
		RepaymentYear:        repaymentYear,
		TotalLoss:            totalLoss,
		TotalRepayment:       totalRepayment,
		RepaymentLoanValue:   repaymentLoanValue,
		RepaymentInterest:    repaymentInterest,
		TotalExpenditure:     totalExpenditure,
		FinalEquity:          finalEquity,
		FinalPNL:             finalPNL,
	}
}

// annuityPayment is the standard fixed monthly payment for the remaining
// balance and term, degrading to straight-line repayment at a zero rate.
func annuityPayment(balance, monthlyRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	if monthlyRate <= 0 {
		return balance / float64(months)
	}
	factor := math.Pow(1+monthlyRate, float64(months))
	return balance * monthlyRate * factor / (factor - 1)
}
