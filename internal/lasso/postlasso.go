package lasso

import (
	"fmt"

	"selsim/domain/experiment"
	"selsim/internal/errors"
	"selsim/internal/regress"
)

// SelectionTolerance guards the selected-set test against floating-point
// near-zero noise: a coefficient counts as selected only when its magnitude
// exceeds this bound, not when it is exactly nonzero.
const SelectionTolerance = 1e-5

// Selected returns the indices of covariates the penalized fit kept, in
// ascending order. The intercept is never part of the set.
func (m *Model) Selected(tol float64) []int {
	var selected []int
	for j, w := range m.Weights {
		if w > tol || w < -tol {
			selected = append(selected, j)
		}
	}
	return selected
}

// Refit performs the post-selection OLS refit: ordinary least squares on the
// covariates the penalized fit selected, dropping the penalty entirely. An
// empty selection degenerates to the intercept-only model; the refit then has
// an undefined (NaN) coefficient for every covariate, and the caller records
// the replicate as undefined rather than failing.
func Refit(ds *experiment.Dataset, m *Model, tol float64) (experiment.FittedModel, error) {
	if len(m.Weights) != ds.Covariates() {
		return experiment.FittedModel{}, errors.InvalidInput(
			fmt.Sprintf("model has %d weights for a dataset with %d covariates", len(m.Weights), ds.Covariates()))
	}

	selected := m.Selected(tol)
	refit, err := regress.FitSubset(ds, selected)
	if err != nil {
		return experiment.FittedModel{}, errors.Wrap(err, "post-selection refit failed")
	}
	return refit, nil
}
