package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selsim/internal/errors"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 100, cfg.Selection.N)
	assert.Equal(t, 10, cfg.Selection.P)
	assert.Equal(t, 1000, cfg.Selection.Replicates)
	assert.Equal(t, int64(20211113), cfg.Selection.Seed)
	assert.Equal(t, 50, cfg.Selection.SelectionRows)
	assert.Equal(t, []float64{75, -5, 0}, cfg.Shrinkage.TrueBeta)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SELSIM_SELECTION_N", "200")
	t.Setenv("SELSIM_SELECTION_REPLICATES", "50")
	t.Setenv("SELSIM_LAMBDA", "2.5")
	t.Setenv("SELSIM_WORKERS", "3")
	t.Setenv("SELSIM_EXCEL_PATH", "/tmp/out.xlsx")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.Selection.N)
	assert.Equal(t, 50, cfg.Selection.Replicates)
	assert.Equal(t, 2.5, cfg.Shrinkage.Lambda)
	assert.Equal(t, 3, cfg.Runtime.Workers)
	assert.Equal(t, "/tmp/out.xlsx", cfg.Runtime.ExcelPath)
}

func TestLoad_MalformedEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("SELSIM_SELECTION_N", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Selection.N)
}

func TestValidate_FailsFastBeforeAnySimulation(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*Config)
	}{
		{"selection n too small", func(c *Config) { c.Selection.N = 11 }},
		{"selection replicates", func(c *Config) { c.Selection.Replicates = 0 }},
		{"level at one", func(c *Config) { c.Selection.Level = 1 }},
		{"level at zero", func(c *Config) { c.Selection.Level = 0 }},
		{"split leaves nothing", func(c *Config) { c.Selection.SelectionRows = 99 }},
		{"shrinkage replicates", func(c *Config) { c.Shrinkage.Replicates = -1 }},
		{"negative penalty", func(c *Config) { c.Shrinkage.Lambda = -0.5 }},
		{"covariate out of range", func(c *Config) { c.Shrinkage.Covariate = 3 }},
		{"negative workers", func(c *Config) { c.Runtime.Workers = -2 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mod(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
