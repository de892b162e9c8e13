package histdata

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Kind identifies one of the three historical economic series.
type Kind string

const (
	KindCPI      Kind = "cpi"
	KindProperty Kind = "property"
	KindMortgage Kind = "mortgage"
)

// propertyRegion is the only region whose price deltas feed the pool; other
// regions are tracked purely to keep their "previous price" state correct.
const propertyRegion = "South East"

const hoursPerYear = 365.25 * 24

// sources maps a series kind to its dated detailed file and its
// changes-only fallback file.
var sources = map[Kind]struct {
	complete string
	changes  string
}{
	KindCPI:      {"uk_cpi_historical_complete.csv", "uk_cpi_monthly_changes.csv"},
	KindProperty: {"uk_property_prices_complete.csv", "uk_property_monthly_changes.csv"},
	KindMortgage: {"uk_mortgage_rates_complete.csv", "uk_mortgage_monthly_changes.csv"},
}

// Store lazily loads and caches the historical monthly-change pools that the
// sampler bootstraps from. A single Store may be shared by all worker
// goroutines: loads are mutex-guarded and the cached slices are never
// mutated after first load.
type Store struct {
	dir      string
	lookback int // years; 0 means full history
	now      func() time.Time

	mu     sync.Mutex
	series map[Kind][]float64
	loaded map[Kind]bool
	warned map[Kind]bool
}

// NewStore creates a store reading dataset files from dir. A non-zero
// lookbackYears restricts the pools to records newer than
// now - lookbackYears*365.25 days; it must be chosen before the first load.
func NewStore(dir string, lookbackYears int) *Store {
	return &Store{
		dir:      dir,
		lookback: lookbackYears,
		now:      time.Now,
		series:   make(map[Kind][]float64),
		loaded:   make(map[Kind]bool),
		warned:   make(map[Kind]bool),
	}
}

// Warm pre-loads all three series so parallel workers start against a hot
// cache and the "no data" warning fires at most once per kind.
func (s *Store) Warm() {
	s.Load(KindCPI)
	s.Load(KindProperty)
	s.Load(KindMortgage)
}

// Load returns the cached monthly-change pool for the given kind, loading it
// on first use. A nil result means no historical data is available; callers
// are expected to fall back to a synthetic distribution.
func (s *Store) Load(kind Kind) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded[kind] {
		return s.series[kind]
	}

	changes, err := s.loadLocked(kind)
	if err != nil {
		if !s.warned[kind] {
			log.Warn().Str("series", string(kind)).Err(err).
				Msg("No historical data available, falling back to uniform random changes")
			s.warned[kind] = true
		}
		changes = nil
	} else {
		lookbackMsg := "full history"
		if s.lookback > 0 {
			lookbackMsg = fmt.Sprintf("last %d years", s.lookback)
		}
		log.Info().Str("series", string(kind)).
			Int("changes", len(changes)).
			Str("window", lookbackMsg).
			Float64("mean_pct", mean(changes)*100).
			Float64("std_pct", stddev(changes)*100).
			Msg("Loaded historical monthly changes")
	}

	s.series[kind] = changes
	s.loaded[kind] = true
	return changes
}

func (s *Store) loadLocked(kind Kind) ([]float64, error) {
	src := sources[kind]

	path := filepath.Join(s.dir, src.complete)
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(s.dir, src.changes)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("no data files found for %s series in %s", kind, s.dir)
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s holds no data rows", path)
	}

	header := records[0]
	rows := records[1:]

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	if _, dated := cols["date"]; !dated {
		return parseChangesOnly(rows, path)
	}

	var cutoff time.Time
	if s.lookback > 0 {
		cutoff = s.now().Add(-time.Duration(float64(s.lookback) * hoursPerYear * float64(time.Hour)))
	}

	switch kind {
	case KindCPI:
		return deriveCPIChanges(rows, cols, cutoff, path)
	case KindProperty:
		return derivePropertyChanges(rows, cols, cutoff, path)
	case KindMortgage:
		return deriveMortgageChanges(rows, cols, cutoff, path)
	}
	return nil, fmt.Errorf("unknown series kind %q", kind)
}

// parseChangesOnly reads the pre-differenced fallback schema: a single
// monthly_change column.
func parseChangesOnly(rows [][]string, path string) ([]float64, error) {
	changes := make([]float64, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		changes = append(changes, v)
	}
	return changes, nil
}

// deriveCPIChanges converts annual CPI rate percentages into monthly rate
// deltas: (current - previous) / 12, both as decimals.
func deriveCPIChanges(rows [][]string, cols map[string]int, cutoff time.Time, path string) ([]float64, error) {
	dateCol, ok := cols["date"]
	if !ok {
		return nil, fmt.Errorf("%s: missing date column", path)
	}
	rateCol, ok := cols["annual_rate"]
	if !ok {
		return nil, fmt.Errorf("%s: missing annual_rate column", path)
	}

	var changes []float64
	var previous float64
	havePrevious := false

	for i, row := range rows {
		date, rate, err := parseDatedValue(row, dateCol, rateCol)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		current := rate / 100

		// Pre-cutoff records still seed "previous" so the first retained
		// point reflects a genuine step, not a discontinuity.
		if !cutoff.IsZero() && date.Before(cutoff) {
			previous = current
			havePrevious = true
			continue
		}

		if havePrevious {
			changes = append(changes, (current-previous)/12)
		}
		previous = current
		havePrevious = true
	}
	return changes, nil
}

// derivePropertyChanges converts regional flat price levels into relative
// monthly deltas for the designated region.
func derivePropertyChanges(rows [][]string, cols map[string]int, cutoff time.Time, path string) ([]float64, error) {
	dateCol, ok := cols["date"]
	if !ok {
		return nil, fmt.Errorf("%s: missing date column", path)
	}
	regionCol, ok := cols["region"]
	if !ok {
		return nil, fmt.Errorf("%s: missing region column", path)
	}
	priceCol, ok := cols["flat_price"]
	if !ok {
		return nil, fmt.Errorf("%s: missing flat_price column", path)
	}

	var changes []float64
	previousPrices := make(map[string]float64)

	for i, row := range rows {
		if len(row) <= regionCol {
			return nil, fmt.Errorf("%s row %d: truncated row", path, i+2)
		}
		region := row[regionCol]
		date, price, err := parseDatedValue(row, dateCol, priceCol)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}

		if !cutoff.IsZero() && date.Before(cutoff) {
			previousPrices[region] = price
			continue
		}

		if region == propertyRegion {
			if previous, ok := previousPrices[region]; ok && previous > 0 {
				changes = append(changes, (price-previous)/previous)
			}
		}
		previousPrices[region] = price
	}
	return changes, nil
}

// deriveMortgageChanges converts mortgage rate levels into absolute monthly
// deltas: current - previous.
func deriveMortgageChanges(rows [][]string, cols map[string]int, cutoff time.Time, path string) ([]float64, error) {
	dateCol, ok := cols["date"]
	if !ok {
		return nil, fmt.Errorf("%s: missing date column", path)
	}
	rateCol, ok := cols["mortgage_rate"]
	if !ok {
		return nil, fmt.Errorf("%s: missing mortgage_rate column", path)
	}

	var changes []float64
	var previous float64
	havePrevious := false

	for i, row := range rows {
		date, current, err := parseDatedValue(row, dateCol, rateCol)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}

		if !cutoff.IsZero() && date.Before(cutoff) {
			previous = current
			havePrevious = true
			continue
		}

		if havePrevious {
			changes = append(changes, current-previous)
		}
		previous = current
		havePrevious = true
	}
	return changes, nil
}

func parseDatedValue(row []string, dateCol, valueCol int) (time.Time, float64, error) {
	if len(row) <= dateCol || len(row) <= valueCol {
		return time.Time{}, 0, fmt.Errorf("truncated row")
	}
	date, err := time.Parse("2006-01-02", row[dateCol])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("bad date %q: %w", row[dateCol], err)
	}
	value, err := strconv.ParseFloat(row[valueCol], 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("bad value %q: %w", row[valueCol], err)
	}
	return date, value, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}
