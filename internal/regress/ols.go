// Package regress implements the ordinary least squares fits used by the
// simulation pipelines: the full regression on all covariates, single
// covariate fits, one-step forward selection, and the split variant that
// separates selection from inference.
package regress

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"selsim/domain/experiment"
	"selsim/internal/errors"
)

// FitFull fits Y on all p covariates plus an intercept and returns the fit
// with its overall F-statistic testing the joint null that every coefficient
// is zero (df p, n-p-1).
func FitFull(ds *experiment.Dataset) (experiment.FittedModel, error) {
	selected := make([]int, ds.Covariates())
	for j := range selected {
		selected[j] = j
	}
	return FitSubset(ds, selected)
}

// FitSingle regresses Y on covariate j alone (plus intercept).
func FitSingle(ds *experiment.Dataset, j int) (experiment.FittedModel, error) {
	return FitSubset(ds, []int{j})
}

// FitSubset fits Y on the given covariate subset plus an intercept. An empty
// subset degenerates to the intercept-only model, which carries no
// F-statistic (NaN) and no covariate coefficients.
func FitSubset(ds *experiment.Dataset, selected []int) (experiment.FittedModel, error) {
	n := ds.Rows()
	k := len(selected)

	if n < k+2 {
		return experiment.FittedModel{}, errors.InvalidInput(
			fmt.Sprintf("cannot fit %d covariates with %d observations", k, n))
	}
	for _, j := range selected {
		if j < 0 || j >= ds.Covariates() {
			return experiment.FittedModel{}, errors.InvalidInput(
				fmt.Sprintf("covariate index %d out of range [0, %d)", j, ds.Covariates()))
		}
	}

	if k == 0 {
		return interceptOnly(ds), nil
	}

	// Design matrix: intercept column followed by the selected covariates.
	design := mat.NewDense(n, k+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for c, j := range selected {
			design.Set(i, c+1, ds.X[i][j])
		}
	}
	response := mat.NewVecDense(n, append([]float64(nil), ds.Y...))

	var qr mat.QR
	qr.Factorize(design)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, response); err != nil {
		return experiment.FittedModel{}, errors.DegenerateFit(
			fmt.Sprintf("design matrix is rank-deficient for replicate %d: %v", ds.ID, err))
	}

	// Residual and total sums of squares.
	var fitted mat.VecDense
	fitted.MulVec(design, &beta)

	yMean := 0.0
	for _, v := range ds.Y {
		yMean += v
	}
	yMean /= float64(n)

	rss, tss := 0.0, 0.0
	for i := 0; i < n; i++ {
		r := ds.Y[i] - fitted.AtVec(i)
		rss += r * r
		d := ds.Y[i] - yMean
		tss += d * d
	}

	dfNum := k
	dfDen := n - k - 1
	fStat := ((tss - rss) / float64(dfNum)) / (rss / float64(dfDen))
	if rss == 0 {
		fStat = math.Inf(1)
	}

	model := experiment.FittedModel{
		Selected:     append([]int(nil), selected...),
		Coefficients: make([]float64, k),
		Intercept:    beta.AtVec(0),
		FStat:        fStat,
		DFNum:        dfNum,
		DFDen:        dfDen,
		PValue:       fSurvival(fStat, dfNum, dfDen),
	}
	for c := 0; c < k; c++ {
		model.Coefficients[c] = beta.AtVec(c + 1)
	}
	return model, nil
}

// interceptOnly is the degenerate fit used when a selection step returns no
// covariates. Its coefficient for any covariate is undefined.
func interceptOnly(ds *experiment.Dataset) experiment.FittedModel {
	yMean := 0.0
	for _, v := range ds.Y {
		yMean += v
	}
	yMean /= float64(ds.Rows())

	return experiment.FittedModel{
		Selected:     nil,
		Coefficients: nil,
		Intercept:    yMean,
		FStat:        math.NaN(),
		DFNum:        0,
		DFDen:        ds.Rows() - 1,
		PValue:       math.NaN(),
	}
}

// fSurvival is the upper-tail probability of the F distribution.
func fSurvival(f float64, dfNum, dfDen int) float64 {
	if math.IsNaN(f) {
		return math.NaN()
	}
	if math.IsInf(f, 1) {
		return 0
	}
	dist := distuv.F{D1: float64(dfNum), D2: float64(dfDen)}
	return dist.Survival(f)
}
