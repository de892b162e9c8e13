package visuals

import (
	"strings"
	"testing"

	"htb-forecast/internal/montecarlo"
)

func TestMedianPNLChart_Empty(t *testing.T) {
	if got := MedianPNLChart(nil); got != "" {
		t.Errorf("Expected empty chart for no summaries, got %q", got)
	}
}

func TestMedianPNLChart_YearAscending(t *testing.T) {
	chart := MedianPNLChart([]montecarlo.YearSummary{
		{Year: 2, MedianPNL: 300},
		{Year: 0, MedianPNL: 100},
		{Year: 1, MedianPNL: 200},
	})

	if !strings.Contains(chart, "x-axis [0, 1, 2]") {
		t.Errorf("Expected year-ascending x-axis, got:\n%s", chart)
	}
	if !strings.Contains(chart, "bar [100, 200, 300]") {
		t.Errorf("Expected values in year order, got:\n%s", chart)
	}
	if !strings.Contains(chart, "xychart-beta") {
		t.Errorf("Expected an xychart, got:\n%s", chart)
	}
}
