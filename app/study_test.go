package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selsim/internal/config"
)

// The two study tests below reproduce the published experiments end to end
// with the default configuration, so they are slow; run with -short to skip.

func TestSelectionStudy_DoubleDippingInflatesTypeIError(t *testing.T) {
	if testing.Short() {
		t.Skip("full selection study is slow")
	}

	cfg := config.Default()
	svc := NewStudyService(0)

	artifact, err := svc.SelectionStudy(context.Background(), cfg.Selection)
	require.NoError(t, err)

	// The response is pure noise, so a 5%-level test should reject about 5%
	// of the time. Testing the best of 10 covariates on the data that chose
	// it pushes the rate far past nominal.
	assert.Greater(t, artifact.Unsplit.Rate, 0.30,
		"same-data inference should inflate the rejection rate well past 0.05")
	assert.Equal(t, 1, artifact.Unsplit.DFNum)
	assert.Equal(t, 98, artifact.Unsplit.DFDen)
	assert.Equal(t, cfg.Selection.Replicates, artifact.Unsplit.Total)
	assert.Zero(t, artifact.Unsplit.Undefined)

	// Selecting on one half and testing on the other restores the nominal
	// level up to Monte Carlo error (se ≈ 0.007 at R=1000).
	assert.Greater(t, artifact.Split.Rate, 0.02)
	assert.Less(t, artifact.Split.Rate, 0.09)
	assert.Equal(t, 1, artifact.Split.DFNum)
	assert.Equal(t, 48, artifact.Split.DFDen)
	assert.Zero(t, artifact.Split.Undefined)

	assert.Less(t, artifact.Split.Rate, artifact.Unsplit.Rate)

	assert.Equal(t, "forward_selection", artifact.UnsplitManifest.Pipeline)
	assert.Equal(t, "split_selection", artifact.SplitManifest.Pipeline)
	assert.NotEqual(t, artifact.UnsplitManifest.RunID, artifact.SplitManifest.RunID)
}

func TestShrinkageStudy_LassoBiasedPostLassoCentered(t *testing.T) {
	if testing.Short() {
		t.Skip("full shrinkage study is slow")
	}

	cfg := config.Default()
	svc := NewStudyService(0)

	artifact, err := svc.ShrinkageStudy(context.Background(), cfg.Shrinkage)
	require.NoError(t, err)

	trueValue := cfg.Shrinkage.TrueBeta[cfg.Shrinkage.Covariate]
	assert.Equal(t, trueValue, artifact.Lasso.TrueValue)
	assert.Equal(t, trueValue, artifact.PostLasso.TrueValue)

	// The penalty pulls the coefficient toward zero by roughly lambda, so
	// the lasso distribution centers visibly below the truth.
	assert.Less(t, artifact.Lasso.Mean, 73.0,
		"lasso estimate should be biased below the true value of 75")
	assert.Greater(t, artifact.Lasso.Mean, 60.0)
	assert.Zero(t, artifact.Lasso.Undefined)

	// The OLS refit on the selected covariates removes the shrinkage; at
	// n=1000 its Monte Carlo mean sits within a unit of the truth.
	assert.InDelta(t, trueValue, artifact.PostLasso.Mean, 1.0)
	assert.Zero(t, artifact.PostLasso.Undefined,
		"a coefficient of 75 should survive selection in every replicate")
	assert.Equal(t, cfg.Shrinkage.Replicates, artifact.PostLasso.Defined)

	assert.Greater(t, artifact.PostLasso.Mean, artifact.Lasso.Mean)

	// Histograms cover every defined replicate.
	lassoCount := 0
	for _, bin := range artifact.Lasso.Bins {
		lassoCount += bin.Count
	}
	assert.Equal(t, artifact.Lasso.Defined, lassoCount)

	assert.Equal(t, "lasso_coefficient", artifact.LassoManifest.Pipeline)
	assert.Equal(t, "post_lasso_coefficient", artifact.PostLassoManifest.Pipeline)
}

func TestSelectionStudy_SeedReproducible(t *testing.T) {
	cfg := config.SelectionConfig{
		N:             60,
		P:             5,
		Replicates:    100,
		NoiseSD:       1.0,
		Seed:          42,
		Level:         0.95,
		SelectionRows: 30,
	}
	svc := NewStudyService(4)

	first, err := svc.SelectionStudy(context.Background(), cfg)
	require.NoError(t, err)
	second, err := svc.SelectionStudy(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Unsplit.Rate, second.Unsplit.Rate)
	assert.Equal(t, first.Split.Rate, second.Split.Rate)
	assert.Equal(t, first.Unsplit.Rejected, second.Unsplit.Rejected)
}

func TestShrinkageStudy_SeedReproducible(t *testing.T) {
	cfg := config.ShrinkageConfig{
		N:          200,
		Replicates: 50,
		TrueBeta:   []float64{75, -5, 0},
		NoiseSD:    25,
		Lambda:     5,
		Seed:       42,
		Covariate:  0,
	}
	svc := NewStudyService(4)

	first, err := svc.ShrinkageStudy(context.Background(), cfg)
	require.NoError(t, err)
	second, err := svc.ShrinkageStudy(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Lasso.Mean, second.Lasso.Mean)
	assert.Equal(t, first.PostLasso.Mean, second.PostLasso.Mean)
	assert.Equal(t, first.Lasso.StdDev, second.Lasso.StdDev)
}

func TestShrinkageStudy_RejectsBadLambda(t *testing.T) {
	cfg := config.Default().Shrinkage
	cfg.Lambda = -1

	_, err := NewStudyService(1).ShrinkageStudy(context.Background(), cfg)
	assert.Error(t, err)
}
