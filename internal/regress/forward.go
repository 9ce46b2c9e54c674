package regress

import (
	"fmt"

	"selsim/domain/experiment"
	"selsim/internal/errors"
)

// ForwardResult is the outcome of one greedy forward-selection step.
type ForwardResult struct {
	Covariate int // index of the winning covariate
	Model     experiment.FittedModel
}

// SelectForward performs a single greedy step of forward selection: it fits p
// separate single-covariate regressions and returns the one with the maximal
// F-statistic. Ties break toward the lowest covariate index. This is
// deliberately not the full stepwise procedure; one step is where the
// selection effect on downstream inference comes from.
func SelectForward(ds *experiment.Dataset) (ForwardResult, error) {
	p := ds.Covariates()
	if p == 0 {
		return ForwardResult{}, errors.InvalidInput("dataset has no covariates to select from")
	}

	best := ForwardResult{Covariate: -1}
	for j := 0; j < p; j++ {
		model, err := FitSingle(ds, j)
		if err != nil {
			return ForwardResult{}, errors.Wrapf(err, "single-covariate fit failed for covariate %d", j)
		}
		// Strict comparison keeps the first (lowest-index) covariate on ties.
		if best.Covariate < 0 || model.FStat > best.Model.FStat {
			best = ForwardResult{Covariate: j, Model: model}
		}
	}

	if best.Covariate < 0 {
		return ForwardResult{}, errors.InternalError(
			fmt.Sprintf("forward selection produced no candidate among %d covariates", p))
	}
	return best, nil
}
