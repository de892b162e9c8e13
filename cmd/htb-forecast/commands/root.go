package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"htb-forecast/internal/config"
	"htb-forecast/internal/histdata"
	"htb-forecast/internal/logging"
	"htb-forecast/internal/montecarlo"
	"htb-forecast/internal/report"
	"htb-forecast/internal/storage"
	"htb-forecast/internal/visuals"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose       bool
	numScenarios  int
	maxYear       int
	lookbackYears int
	configPath    string
	dataDir       string
	savePath      string
	showChart     bool
	workers       int
)

var rootCmd = &cobra.Command{
	Use:   "htb-forecast",
	Short: "Monte Carlo forecaster for Help-to-Buy equity loan repayment",
	Long: `Simulates UK Help-to-Buy equity-loan outcomes under stochastic economic
conditions (historical bootstrap resampling of CPI, property prices and
mortgage rates) and ranks candidate repayment years by median P&L.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)
		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("htb-forecast starting")
	},
	RunE: runForecast,
}

func runForecast(cmd *cobra.Command, args []string) error {
	// Structural parameter errors are fatal before any simulation starts.
	if numScenarios <= 0 {
		return fmt.Errorf("--scenarios must be positive, got %d", numScenarios)
	}
	if maxYear < 0 || maxYear > 30 {
		return fmt.Errorf("--max-year must be between 0 and 30, got %d", maxYear)
	}
	if lookbackYears != 0 && (lookbackYears < 1 || lookbackYears > 100) {
		return fmt.Errorf("--lookback must be between 1 and 100, got %d", lookbackYears)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	store := histdata.NewStore(cfg.DataDir, lookbackYears)
	sampler := histdata.NewSampler(store)
	engine := montecarlo.NewEngine(cfg.Simulation, sampler)
	engine.SetWorkers(workers)

	console := report.NewConsole()
	console.PrintRunHeader(cfg.Simulation, numScenarios, maxYear, lookbackYears)

	scenarios, summaries, err := engine.Run(cmd.Context(), numScenarios, maxYear)
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		fmt.Println("No scenarios could be run successfully.")
		return nil
	}

	best, _ := montecarlo.FindBestScenario(scenarios)
	console.PrintRankings(summaries)
	console.PrintResults(scenarios, best)

	if showChart {
		fmt.Println()
		fmt.Println(visuals.MedianPNLChart(summaries))
	}

	if savePath != "" {
		db, err := storage.NewSQLiteStore(savePath)
		if err != nil {
			return err
		}
		defer db.Close()

		runID, err := db.SaveRun(cmd.Context(), storage.Run{
			ScenariosPerYear: numScenarios,
			MaxYear:          maxYear,
			LookbackYears:    lookbackYears,
			Config:           cfg.Simulation,
			Scenarios:        scenarios,
			Summaries:        summaries,
			Best:             best,
		})
		if err != nil {
			return err
		}
		log.Info().Str("run_id", runID).Str("path", savePath).Msg("Run persisted")
	}

	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Flags().IntVarP(&numScenarios, "scenarios", "n", 1000, "scenarios per repayment year")
	rootCmd.Flags().IntVar(&maxYear, "max-year", 25, "latest repayment year to evaluate (0-30)")
	rootCmd.Flags().IntVar(&lookbackYears, "lookback", 0, "restrict historical data to the last N years (1-100, 0 = full history)")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML simulation config")
	rootCmd.Flags().StringVar(&dataDir, "data", "", "directory holding the historical dataset CSVs")
	rootCmd.Flags().StringVar(&savePath, "save", "", "persist run outcomes to this SQLite database")
	rootCmd.Flags().BoolVar(&showChart, "chart", false, "print a Mermaid chart of median P&L by year")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "max concurrent year tasks (0 = all CPUs)")

	rootCmd.SilenceUsage = true
}
