package visuals

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"htb-forecast/internal/montecarlo"
)

// MedianPNLChart creates a Mermaid xychart-beta of median P&L per repayment
// year, year-ascending regardless of ranking order. Returns "" when there is
// nothing to chart.
func MedianPNLChart(summaries []montecarlo.YearSummary) string {
	if len(summaries) == 0 {
		return ""
	}

	sorted := make([]montecarlo.YearSummary, len(summaries))
	copy(sorted, summaries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Year < sorted[j].Year
	})

	var labels []string
	var values []string
	minY, maxY := sorted[0].MedianPNL, sorted[0].MedianPNL
	for _, ys := range sorted {
		labels = append(labels, fmt.Sprintf("%d", ys.Year))
		values = append(values, fmt.Sprintf("%.0f", ys.MedianPNL))
		minY = math.Min(minY, ys.MedianPNL)
		maxY = math.Max(maxY, ys.MedianPNL)
	}

	// Give the extremes breathing room; a flat series still needs a
	// non-degenerate axis.
	span := maxY - minY
	if span == 0 {
		span = math.Max(math.Abs(maxY), 1)
	}
	lo := int(math.Floor(minY - span*0.1))
	hi := int(math.Ceil(maxY + span*0.1))

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Median P&L by repayment year\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Median P&L (GBP)\" %d --> %d\n", lo, hi))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}
