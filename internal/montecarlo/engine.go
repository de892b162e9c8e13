package montecarlo

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"htb-forecast/internal/histdata"
	"htb-forecast/internal/projection"
)

const (
	// scenarioSeedStride spaces the per-year seed blocks so every (year,
	// index) pair gets a distinct, reproducible scenario seed.
	scenarioSeedStride = 10000

	// taskOrderSeed fixes the dispatch order of year tasks. Outcomes do not
	// depend on it: scenario randomness comes only from the per-scenario
	// seeds.
	taskOrderSeed = 123

	// progressThreshold is the scenarios-per-year count above which
	// per-task progress is reported.
	progressThreshold = 1000
)

// Scenario is one simulated trajectory with its scalar score.
type Scenario struct {
	ID       int
	Year     int
	FinalPNL float64
	Result   projection.Result
}

// YearSummary aggregates all successful scenarios of one repayment year.
type YearSummary struct {
	Year         int
	MedianPNL    float64
	Scenarios    []Scenario
	NumScenarios int
}

// Engine fans projection scenarios out across repayment years and ranks the
// years by median P&L.
type Engine struct {
	projector *projection.Engine
	store     *histdata.Store
	workers   int
}

func NewEngine(cfg projection.SimulationConfig, sampler *histdata.Sampler) *Engine {
	return &Engine{
		projector: projection.NewEngine(cfg, sampler),
		store:     sampler.Store(),
		workers:   runtime.NumCPU(),
	}
}

// SetWorkers caps the number of concurrently running year tasks.
func (e *Engine) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// Run simulates numScenarios scenarios for every repayment year in
// [0, maxYear]. It returns all successful scenarios in year-ascending order
// and one summary per year with at least one success, ranked by median P&L
// descending. Individual scenario failures are logged and skipped; a failing
// year task aborts the whole run.
func (e *Engine) Run(ctx context.Context, numScenarios, maxYear int) ([]Scenario, []YearSummary, error) {
	if numScenarios <= 0 {
		return nil, nil, fmt.Errorf("scenario count must be positive, got %d", numScenarios)
	}
	if maxYear < 0 {
		return nil, nil, fmt.Errorf("max repayment year must not be negative, got %d", maxYear)
	}

	// Warm the historical pools before dispatch so workers start against a
	// hot cache and the "no data" warning fires at most once.
	e.store.Warm()

	numTasks := maxYear + 1
	workers := e.workers
	if workers > numTasks {
		workers = numTasks
	}
	totalScenarios := numScenarios * numTasks
	showProgress := numScenarios > progressThreshold

	log.Info().
		Int("scenarios_per_year", numScenarios).
		Int("max_year", maxYear).
		Int("total_scenarios", totalScenarios).
		Int("workers", workers).
		Msg("Running Monte Carlo scenarios")

	// Dispatch order is a fixed-seed permutation of the years; completion
	// order is arbitrary either way and results are re-indexed by year.
	order := rand.New(rand.NewSource(taskOrderSeed)).Perm(numTasks)

	byYear := make([][]Scenario, numTasks)
	var completedTasks atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, year := range order {
		year := year
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			scenarios := make([]Scenario, 0, numScenarios)
			for i := 0; i < numScenarios; i++ {
				if s, ok := e.runScenario(year, i, numScenarios); ok {
					scenarios = append(scenarios, s)
				}
			}
			byYear[year] = scenarios

			done := completedTasks.Add(1)
			if showProgress {
				log.Info().
					Int("year", year).
					Int("scenarios", len(scenarios)).
					Int64("years_done", done).
					Int("years_total", numTasks).
					Int64("scenarios_done", done*int64(numScenarios)).
					Int("scenarios_total", totalScenarios).
					Msg("Year task complete")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	allScenarios := make([]Scenario, 0, totalScenarios)
	for _, scenarios := range byYear {
		allScenarios = append(allScenarios, scenarios...)
	}
	summaries := buildYearSummaries(byYear)

	log.Info().
		Int("scenarios", len(allScenarios)).
		Int("year_summaries", len(summaries)).
		Msg("Monte Carlo run complete")

	return allScenarios, summaries, nil
}

// runScenario projects a single scenario, converting a panic during the
// projection into a logged skip so sibling scenarios keep running.
func (e *Engine) runScenario(year, index, numScenarios int) (s Scenario, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int("year", year).
				Int("scenario", index).
				Interface("panic", r).
				Msg("Scenario failed, skipping")
			ok = false
		}
	}()

	seed := int64(year*scenarioSeedStride + index)
	result := e.projector.Project(year, seed)
	return Scenario{
		ID:       year*numScenarios + index,
		Year:     year,
		FinalPNL: result.FinalPNL,
		Result:   result,
	}, true
}
