package config

import (
	"fmt"
	"os"
	"strconv"

	"selsim/internal/errors"
)

// Config represents the complete experiment configuration
type Config struct {
	Selection SelectionConfig
	Shrinkage ShrinkageConfig
	Runtime   RuntimeConfig
}

// SelectionConfig holds settings for the selection-inflation study: forward
// selection with and without sample splitting under a true null.
type SelectionConfig struct {
	N             int     // observations per replicate
	P             int     // covariate count
	Replicates    int     // number of replicates
	NoiseSD       float64 // response noise scale (response is pure noise)
	Seed          int64
	Level         float64 // significance level for the critical value
	SelectionRows int     // rows given to the selection half of a split
}

// ShrinkageConfig holds settings for the shrinkage-bias study: LASSO at a
// fixed penalty versus the post-selection OLS refit.
type ShrinkageConfig struct {
	N          int
	Replicates int
	TrueBeta   []float64 // known ground truth; index 0 is the covariate of interest
	NoiseSD    float64
	Lambda     float64
	Seed       int64
	Covariate  int // covariate of interest
}

// RuntimeConfig holds execution settings
type RuntimeConfig struct {
	Workers   int    // concurrent fits; 0 means one per CPU
	ExcelPath string // optional summary workbook destination; empty disables export
}

// Load reads configuration from environment variables, applies defaults, and
// validates the result before any simulation work starts.
func Load() (*Config, error) {
	cfg := Default()

	cfg.Selection.N = getEnvInt("SELSIM_SELECTION_N", cfg.Selection.N)
	cfg.Selection.P = getEnvInt("SELSIM_SELECTION_P", cfg.Selection.P)
	cfg.Selection.Replicates = getEnvInt("SELSIM_SELECTION_REPLICATES", cfg.Selection.Replicates)
	cfg.Selection.NoiseSD = getEnvFloat("SELSIM_SELECTION_NOISE_SD", cfg.Selection.NoiseSD)
	cfg.Selection.Seed = getEnvInt64("SELSIM_SELECTION_SEED", cfg.Selection.Seed)
	cfg.Selection.Level = getEnvFloat("SELSIM_LEVEL", cfg.Selection.Level)
	cfg.Selection.SelectionRows = getEnvInt("SELSIM_SELECTION_ROWS", cfg.Selection.SelectionRows)

	cfg.Shrinkage.N = getEnvInt("SELSIM_SHRINKAGE_N", cfg.Shrinkage.N)
	cfg.Shrinkage.Replicates = getEnvInt("SELSIM_SHRINKAGE_REPLICATES", cfg.Shrinkage.Replicates)
	cfg.Shrinkage.NoiseSD = getEnvFloat("SELSIM_SHRINKAGE_NOISE_SD", cfg.Shrinkage.NoiseSD)
	cfg.Shrinkage.Lambda = getEnvFloat("SELSIM_LAMBDA", cfg.Shrinkage.Lambda)
	cfg.Shrinkage.Seed = getEnvInt64("SELSIM_SHRINKAGE_SEED", cfg.Shrinkage.Seed)
	cfg.Shrinkage.Covariate = getEnvInt("SELSIM_SHRINKAGE_COVARIATE", cfg.Shrinkage.Covariate)

	cfg.Runtime.Workers = getEnvInt("SELSIM_WORKERS", cfg.Runtime.Workers)
	cfg.Runtime.ExcelPath = getEnvString("SELSIM_EXCEL_PATH", cfg.Runtime.ExcelPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the published study settings: the null selection study at
// n=100, p=10, R=1000 with a 50/50 split, and the shrinkage study at n=1000
// with true coefficients (75, -5, 0) and large noise.
func Default() *Config {
	return &Config{
		Selection: SelectionConfig{
			N:             100,
			P:             10,
			Replicates:    1000,
			NoiseSD:       1.0,
			Seed:          20211113,
			Level:         0.95,
			SelectionRows: 50,
		},
		Shrinkage: ShrinkageConfig{
			N:          1000,
			Replicates: 1000,
			TrueBeta:   []float64{75, -5, 0},
			NoiseSD:    25.0,
			Lambda:     5.0,
			Seed:       20211113,
			Covariate:  0,
		},
		Runtime: RuntimeConfig{},
	}
}

// Validate fails fast on configurations that could not produce a well-posed
// simulation. Failures here are configuration errors, never retried.
func (c *Config) Validate() error {
	s := c.Selection
	if s.N <= s.P+1 {
		return errors.ConfigInvalid(fmt.Sprintf("selection study: sample size must exceed covariate count plus intercept: n=%d, p=%d", s.N, s.P))
	}
	if s.Replicates <= 0 {
		return errors.ConfigInvalid(fmt.Sprintf("selection study: replicate count must be positive, got %d", s.Replicates))
	}
	if s.Level <= 0 || s.Level >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("significance level must be in (0,1), got %g", s.Level))
	}
	if s.SelectionRows < 2 || s.SelectionRows > s.N-2 {
		return errors.ConfigInvalid(fmt.Sprintf("selection rows %d leave no usable split of %d observations", s.SelectionRows, s.N))
	}

	h := c.Shrinkage
	if h.N <= len(h.TrueBeta)+1 {
		return errors.ConfigInvalid(fmt.Sprintf("shrinkage study: sample size must exceed covariate count plus intercept: n=%d, p=%d", h.N, len(h.TrueBeta)))
	}
	if h.Replicates <= 0 {
		return errors.ConfigInvalid(fmt.Sprintf("shrinkage study: replicate count must be positive, got %d", h.Replicates))
	}
	if h.Lambda < 0 {
		return errors.ConfigInvalid(fmt.Sprintf("penalty strength must be non-negative, got %g", h.Lambda))
	}
	if h.Covariate < 0 || h.Covariate >= len(h.TrueBeta) {
		return errors.ConfigInvalid(fmt.Sprintf("covariate of interest %d out of range [0, %d)", h.Covariate, len(h.TrueBeta)))
	}

	if c.Runtime.Workers < 0 {
		return errors.ConfigInvalid(fmt.Sprintf("worker count must be non-negative, got %d", c.Runtime.Workers))
	}
	return nil
}

// Environment variable helpers

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
