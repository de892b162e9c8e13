package storage

// sqlite.go — optional persistence of run outcomes.
//
// One row per run, one row per ranked year, and the scalar outcome of every
// scenario. Full time series stay in memory only: at 10k scenarios per year
// they would dwarf the database for no reporting value.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"htb-forecast/internal/montecarlo"
	"htb-forecast/internal/projection"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id                 TEXT PRIMARY KEY,
    created_at         DATETIME NOT NULL,
    scenarios_per_year INTEGER  NOT NULL,
    max_year           INTEGER  NOT NULL,
    lookback_years     INTEGER  NOT NULL DEFAULT 0,
    mortgage_rate      REAL     NOT NULL,
    mortgage_term      INTEGER  NOT NULL,
    equity_loan        REAL     NOT NULL,
    mortgage_amount    REAL     NOT NULL,
    initial_equity     REAL     NOT NULL,
    best_scenario_id   INTEGER,
    best_year          INTEGER,
    best_final_pnl     REAL
);

CREATE TABLE IF NOT EXISTS year_summaries (
    run_id        TEXT    NOT NULL REFERENCES runs(id),
    rank          INTEGER NOT NULL,
    year          INTEGER NOT NULL,
    median_pnl    REAL    NOT NULL,
    num_scenarios INTEGER NOT NULL,
    PRIMARY KEY (run_id, year)
);

CREATE TABLE IF NOT EXISTS scenarios (
    run_id            TEXT    NOT NULL REFERENCES runs(id),
    scenario_id       INTEGER NOT NULL,
    year              INTEGER NOT NULL,
    final_pnl         REAL    NOT NULL,
    total_loss        REAL    NOT NULL,
    total_repayment   REAL    NOT NULL,
    total_expenditure REAL    NOT NULL,
    final_equity      REAL    NOT NULL,
    PRIMARY KEY (run_id, scenario_id)
);

CREATE INDEX IF NOT EXISTS idx_scenarios_year ON scenarios(run_id, year);
`

// Run captures everything worth persisting about one completed run.
type Run struct {
	ScenariosPerYear int
	MaxYear          int
	LookbackYears    int
	Config           projection.SimulationConfig
	Scenarios        []montecarlo.Scenario
	Summaries        []montecarlo.YearSummary
	Best             montecarlo.Scenario
}

// SQLiteStore persists run outcomes to a SQLite database (pure Go driver,
// no CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the
// schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun writes the run, its rankings and all scenario scalars in a single
// transaction and returns the generated run id.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, created_at, scenarios_per_year, max_year, lookback_years,
			mortgage_rate, mortgage_term, equity_loan, mortgage_amount,
			initial_equity, best_scenario_id, best_year, best_final_pnl
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC(), run.ScenariosPerYear, run.MaxYear,
		run.LookbackYears, run.Config.MortgageRate, run.Config.MortgageTermYears,
		run.Config.EquityLoanAmount, run.Config.MortgageAmount,
		run.Config.InitialEquity, run.Best.ID, run.Best.Year, run.Best.FinalPNL)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	summaryStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO year_summaries (run_id, rank, year, median_pnl, num_scenarios)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: prepare summaries: %w", err)
	}
	defer summaryStmt.Close()
	for rank, ys := range run.Summaries {
		if _, err := summaryStmt.ExecContext(ctx, runID, rank+1, ys.Year, ys.MedianPNL, ys.NumScenarios); err != nil {
			return "", fmt.Errorf("storage.SaveRun: insert summary year %d: %w", ys.Year, err)
		}
	}

	scenarioStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO scenarios (
			run_id, scenario_id, year, final_pnl, total_loss,
			total_repayment, total_expenditure, final_equity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("storage.SaveRun: prepare scenarios: %w", err)
	}
	defer scenarioStmt.Close()
	for _, sc := range run.Scenarios {
		_, err := scenarioStmt.ExecContext(ctx, runID, sc.ID, sc.Year, sc.FinalPNL,
			sc.Result.TotalLoss, sc.Result.TotalRepayment,
			sc.Result.TotalExpenditure, sc.Result.FinalEquity)
		if err != nil {
			return "", fmt.Errorf("storage.SaveRun: insert scenario %d: %w", sc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return runID, nil
}
