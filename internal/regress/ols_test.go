package regress

import (
	"math"
	"testing"

	"selsim/domain/experiment"
	"selsim/internal/errors"
)

// Hand-computed single-covariate fit: x = 1..4, y = {2,4,5,7}.
// slope = 1.6, intercept = 0.5, RSS = 0.2, TSS = 13, F = 12.8/0.1 = 128.
func TestFitSingle_MatchesHandComputation(t *testing.T) {
	ds := experiment.Dataset{
		ID: 1,
		X:  [][]float64{{1}, {2}, {3}, {4}},
		Y:  []float64{2, 4, 5, 7},
	}

	model, err := FitSingle(&ds, 0)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	if len(model.Selected) != 1 || model.Selected[0] != 0 {
		t.Fatalf("expected selected set [0], got %v", model.Selected)
	}
	if math.Abs(model.Coefficients[0]-1.6) > 1e-9 {
		t.Fatalf("slope = %v, want 1.6", model.Coefficients[0])
	}
	if math.Abs(model.Intercept-0.5) > 1e-9 {
		t.Fatalf("intercept = %v, want 0.5", model.Intercept)
	}
	if math.Abs(model.FStat-128) > 1e-6 {
		t.Fatalf("F = %v, want 128", model.FStat)
	}
	if model.DFNum != 1 || model.DFDen != 2 {
		t.Fatalf("df = (%d,%d), want (1,2)", model.DFNum, model.DFDen)
	}
	if model.PValue <= 0 || model.PValue >= 1 {
		t.Fatalf("p-value %v outside (0,1)", model.PValue)
	}
}

func TestFitFull_RecoversPlantedCoefficients(t *testing.T) {
	// Exact linear relation, no noise: the fit must recover it to solver
	// precision and the residual sum of squares collapses to zero.
	ds := experiment.Dataset{
		ID: 1,
		X: [][]float64{
			{1, 2}, {2, 1}, {3, 5}, {4, 3}, {5, 8}, {6, 2}, {7, 9},
		},
		Y: make([]float64, 7),
	}
	for i := range ds.Y {
		ds.Y[i] = 4 + 2*ds.X[i][0] - 3*ds.X[i][1]
	}

	model, err := FitFull(&ds)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	if math.Abs(model.Intercept-4) > 1e-8 {
		t.Fatalf("intercept = %v, want 4", model.Intercept)
	}
	if math.Abs(model.Coefficients[0]-2) > 1e-8 || math.Abs(model.Coefficients[1]+3) > 1e-8 {
		t.Fatalf("coefficients = %v, want [2 -3]", model.Coefficients)
	}
	if !math.IsInf(model.FStat, 1) {
		t.Fatalf("expected infinite F for a perfect fit, got %v", model.FStat)
	}
	if model.PValue != 0 {
		t.Fatalf("expected zero p-value for a perfect fit, got %v", model.PValue)
	}
	if model.DFNum != 2 || model.DFDen != 4 {
		t.Fatalf("df = (%d,%d), want (2,4)", model.DFNum, model.DFDen)
	}
}

func TestFitSubset_RankDeficientDesignFails(t *testing.T) {
	// Second covariate is an exact copy of the first.
	ds := experiment.Dataset{
		ID: 1,
		X:  [][]float64{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}, {6, 6}},
		Y:  []float64{1, 2, 2, 4, 4, 6},
	}

	_, err := FitFull(&ds)
	if err == nil {
		t.Fatal("expected rank-deficiency error, got nil")
	}
	if errors.GetCode(err) != errors.CodeDegenerateFit {
		t.Fatalf("expected %s, got %s (%v)", errors.CodeDegenerateFit, errors.GetCode(err), err)
	}
}

func TestFitSubset_EmptySelectionIsInterceptOnly(t *testing.T) {
	ds := experiment.Dataset{
		ID: 1,
		X:  [][]float64{{1}, {2}, {3}, {4}},
		Y:  []float64{2, 4, 6, 8},
	}

	model, err := FitSubset(&ds, nil)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if len(model.Selected) != 0 || len(model.Coefficients) != 0 {
		t.Fatalf("intercept-only model carries covariates: %v", model.Selected)
	}
	if math.Abs(model.Intercept-5) > 1e-12 {
		t.Fatalf("intercept = %v, want mean 5", model.Intercept)
	}
	if !math.IsNaN(model.FStat) {
		t.Fatalf("intercept-only F should be NaN, got %v", model.FStat)
	}
	if !math.IsNaN(model.CoefficientFor(0)) {
		t.Fatal("coefficient for unselected covariate should be NaN")
	}
}

func TestFitSubset_TooFewObservations(t *testing.T) {
	ds := experiment.Dataset{
		ID: 1,
		X:  [][]float64{{1, 2}, {3, 4}},
		Y:  []float64{1, 2},
	}
	_, err := FitFull(&ds)
	if err == nil {
		t.Fatal("expected error fitting 2 covariates with 2 observations")
	}
	if errors.GetCode(err) != errors.CodeInvalidInput {
		t.Fatalf("expected %s, got %s", errors.CodeInvalidInput, errors.GetCode(err))
	}
}

func TestFitSubset_OutOfRangeCovariate(t *testing.T) {
	ds := experiment.Dataset{
		ID: 1,
		X:  [][]float64{{1}, {2}, {3}, {4}},
		Y:  []float64{1, 2, 3, 4},
	}
	_, err := FitSubset(&ds, []int{3})
	if err == nil {
		t.Fatal("expected error for out-of-range covariate index")
	}
}
