package montecarlo

import (
	"sort"

	"htb-forecast/internal/stats"
)

// buildYearSummaries turns per-year scenario slices (indexed by year) into
// ranked summaries. Years without a single successful scenario get no
// summary at all rather than an empty one.
func buildYearSummaries(byYear [][]Scenario) []YearSummary {
	summaries := make([]YearSummary, 0, len(byYear))
	for year, scenarios := range byYear {
		if len(scenarios) == 0 {
			continue
		}
		pnls := make([]float64, len(scenarios))
		for i, s := range scenarios {
			pnls[i] = s.FinalPNL
		}
		summaries = append(summaries, YearSummary{
			Year:         year,
			MedianPNL:    stats.Median(pnls),
			Scenarios:    scenarios,
			NumScenarios: len(scenarios),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].MedianPNL > summaries[j].MedianPNL
	})
	return summaries
}

// FindBestScenario returns the scenario with the globally maximal final P&L,
// or false when there is nothing to rank.
func FindBestScenario(scenarios []Scenario) (Scenario, bool) {
	if len(scenarios) == 0 {
		return Scenario{}, false
	}
	best := scenarios[0]
	for _, s := range scenarios[1:] {
		if s.FinalPNL > best.FinalPNL {
			best = s
		}
	}
	return best, true
}

// MedianScenario picks the representative scenario: the element at the
// lower-median position of the set sorted ascending by final P&L.
func MedianScenario(scenarios []Scenario) (Scenario, bool) {
	if len(scenarios) == 0 {
		return Scenario{}, false
	}
	sorted := make([]Scenario, len(scenarios))
	copy(sorted, scenarios)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FinalPNL < sorted[j].FinalPNL
	})
	return sorted[stats.LowerMedianIndex(len(sorted))], true
}
