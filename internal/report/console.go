package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"htb-forecast/internal/montecarlo"
	"htb-forecast/internal/projection"
)

// Console writes run summaries to stdout. Logging stays on stderr so the
// report remains pipeable.
type Console struct {
	out io.Writer
}

func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter creates a reporter for tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// PrintRunHeader prints the purchase breakdown and run parameters before the
// simulation starts.
func (c *Console) PrintRunHeader(cfg projection.SimulationConfig, numScenarios, maxYear, lookbackYears int) {
	total := cfg.InitialPropertyValue()
	fmt.Fprintf(c.out, "Initial property value: %s\n", FormatGBP(total))
	fmt.Fprintf(c.out, "Equity loan: %s (%.1f%%)\n", FormatGBP(cfg.EquityLoanAmount), cfg.EquityLoanAmount/total*100)
	fmt.Fprintf(c.out, "Mortgage: %s (%.1f%%)\n", FormatGBP(cfg.MortgageAmount), cfg.MortgageAmount/total*100)
	fmt.Fprintf(c.out, "Initial equity: %s (%.1f%%)\n", FormatGBP(cfg.InitialEquity), cfg.InitialEquity/total*100)

	fmt.Fprintf(c.out, "\nRunning Monte Carlo analysis...\n")
	fmt.Fprintf(c.out, "Scenarios per year: %s\n", groupThousands(int64(numScenarios)))
	fmt.Fprintf(c.out, "Repayment years: 0-%d\n", maxYear)
	fmt.Fprintf(c.out, "Total scenarios: %s\n", groupThousands(int64(numScenarios*(maxYear+1))))
	if lookbackYears > 0 {
		fmt.Fprintf(c.out, "Historical data lookback: %d years (from %d onwards)\n",
			lookbackYears, time.Now().Year()-lookbackYears)
	} else {
		fmt.Fprintln(c.out, "Historical data lookback: full history (all available data)")
	}
}

// PrintRankings prints the primary deliverable: repayment years ranked by
// median P&L, best first.
func (c *Console) PrintRankings(summaries []montecarlo.YearSummary) {
	fmt.Fprintf(c.out, "\nYear rankings by median P&L:\n")

	table := tablewriter.NewWriter(c.out)
	table.Header("Rank", "Repayment year", "Median P&L", "Scenarios")
	for i, ys := range summaries {
		if i >= 10 {
			break
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", ys.Year),
			FormatGBP(ys.MedianPNL),
			fmt.Sprintf("%d", ys.NumScenarios),
		)
	}
	table.Render()
}

// PrintResults prints the best scenario, the top five overall and the
// distribution of scenarios across payoff years.
func (c *Console) PrintResults(scenarios []montecarlo.Scenario, best montecarlo.Scenario) {
	fmt.Fprintf(c.out, "\nResults summary:\n")
	fmt.Fprintf(c.out, "Best scenario: ID %d, year %d\n", best.ID, best.Year)
	fmt.Fprintf(c.out, "Best final P&L: %s\n", FormatGBP(best.FinalPNL))

	sorted := make([]montecarlo.Scenario, len(scenarios))
	copy(sorted, scenarios)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FinalPNL > sorted[j].FinalPNL
	})

	fmt.Fprintf(c.out, "\nTop 5 scenarios:\n")
	table := tablewriter.NewWriter(c.out)
	table.Header("Rank", "ID", "Year", "Final P&L")
	for i, s := range sorted {
		if i >= 5 {
			break
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", s.ID),
			fmt.Sprintf("%d", s.Year),
			FormatGBP(s.FinalPNL),
		)
	}
	table.Render()

	counts := make(map[int]int)
	years := make([]int, 0)
	for _, s := range scenarios {
		if counts[s.Year] == 0 {
			years = append(years, s.Year)
		}
		counts[s.Year]++
	}
	sort.Ints(years)

	fmt.Fprintf(c.out, "\nPayoff year distribution:\n")
	for _, year := range years {
		count := counts[year]
		fmt.Fprintf(c.out, "Year %d: %d scenarios (%.1f%%)\n",
			year, count, float64(count)/float64(len(scenarios))*100)
	}
}

// FormatGBP renders a currency amount rounded to whole pounds with grouped
// thousands, e.g. £1,234,567 or -£12,000.
func FormatGBP(amount float64) string {
	rounded := int64(math.Round(amount))
	if rounded < 0 {
		return "-£" + groupThousands(-rounded)
	}
	return "£" + groupThousands(rounded)
}

func groupThousands(v int64) string {
	digits := fmt.Sprintf("%d", v)
	if len(digits) <= 3 {
		return digits
	}

	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
