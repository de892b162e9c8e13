package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"htb-forecast/internal/projection"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	// DataDir is where the historical dataset CSVs live.
	DataDir string `yaml:"data_dir"`
	// Simulation parameterizes every projection of the run.
	Simulation projection.SimulationConfig `yaml:"simulation"`
}

// Load layers configuration: built-in defaults, then an optional YAML file,
// then environment variables (including any .env next to the binary or in
// the working directory).
func Load(path string) (*AppConfig, error) {
	// .env in the binary directory takes priority for installed copies;
	// fall back to the working directory for development runs.
	if exePath, err := os.Executable(); err == nil {
		envPath := filepath.Join(filepath.Dir(exePath), ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables")
	}

	cfg := &AppConfig{
		DataDir:    "datasets",
		Simulation: projection.DefaultConfig(),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("Loaded simulation config file")
	}

	if v := os.Getenv("DATA_PATH"); v != "" {
		cfg.DataDir = v
	}

	setDefaults(cfg)

	if err := cfg.Simulation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	return cfg, nil
}

// setDefaults backfills zero-valued simulation fields so a partial YAML file
// only overrides what it names.
func setDefaults(cfg *AppConfig) {
	def := projection.DefaultConfig()
	sim := &cfg.Simulation
	if sim.MortgageRate == 0 {
		sim.MortgageRate = def.MortgageRate
	}
	if sim.MortgageTermYears == 0 {
		sim.MortgageTermYears = def.MortgageTermYears
	}
	if sim.EquityLoanAmount == 0 {
		sim.EquityLoanAmount = def.EquityLoanAmount
	}
	if sim.MortgageAmount == 0 {
		sim.MortgageAmount = def.MortgageAmount
	}
	if sim.InitialEquity == 0 {
		sim.InitialEquity = def.InitialEquity
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "datasets"
	}
}
