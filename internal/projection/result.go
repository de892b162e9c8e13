package projection

// Result holds one scenario's full trajectory. All series are indexed by
// month 0..totalMonths inclusive and are owned exclusively by the scenario
// that produced them; nothing mutates a Result after Project returns it.
type Result struct {
	TimeMonths []int

	CurrentLoanValue     []float64
	CumulativeInterest   []float64
	PropertyValues       []float64
	MortgageBalance      []float64
	MonthlyPayments      []float64
	MonthlyCPIRates      []float64
	AnnualHTBRates       []float64
	MonthlyMortgageRates []float64
	LockedMortgageRates  []float64

	RepaymentYear      int
	TotalLoss          float64
	TotalRepayment     float64
	RepaymentLoanValue float64
	RepaymentInterest  float64
	TotalExpenditure   float64
	FinalEquity        float64
	FinalPNL           float64
}
