// Package driver orchestrates the replication loop: it applies a configured
// fitting pipeline to every replicate dataset and collects one result per
// replicate, in replicate order, regardless of how the fits are scheduled.
package driver

import (
	"math"

	"selsim/domain/experiment"
	"selsim/internal/lasso"
	"selsim/internal/regress"
)

// Pipeline is one configured fitting procedure plus the extraction of its
// scalar of interest. Fit must be safe for concurrent use across replicates;
// pipelines hold no per-replicate state.
type Pipeline interface {
	Name() string
	Fit(ds *experiment.Dataset) (experiment.ReplicationResult, error)
}

// ForwardSelectionPipeline runs one greedy forward-selection step on the full
// dataset and extracts the winning F-statistic. Selecting and testing on the
// same rows is the double-dipping procedure under study.
type ForwardSelectionPipeline struct{}

func (ForwardSelectionPipeline) Name() string { return "forward_selection" }

func (ForwardSelectionPipeline) Fit(ds *experiment.Dataset) (experiment.ReplicationResult, error) {
	chosen, err := regress.SelectForward(ds)
	if err != nil {
		return experiment.ReplicationResult{}, err
	}
	return experiment.ReplicationResult{
		ReplicateID: ds.ID,
		Value:       chosen.Model.FStat,
		OK:          true,
	}, nil
}

// SplitSelectionPipeline selects on one partition and tests on the disjoint
// other, extracting the inference-subset F-statistic.
type SplitSelectionPipeline struct {
	Policy regress.SplitPolicy
}

func (SplitSelectionPipeline) Name() string { return "split_selection" }

func (p SplitSelectionPipeline) Fit(ds *experiment.Dataset) (experiment.ReplicationResult, error) {
	fit, err := regress.SelectThenTest(ds, p.Policy)
	if err != nil {
		return experiment.ReplicationResult{}, err
	}
	return experiment.ReplicationResult{
		ReplicateID: ds.ID,
		Value:       fit.Inference.FStat,
		OK:          true,
	}, nil
}

// FullRegressionPipeline fits all covariates at once and extracts the overall
// F-statistic of the joint null.
type FullRegressionPipeline struct{}

func (FullRegressionPipeline) Name() string { return "full_regression" }

func (FullRegressionPipeline) Fit(ds *experiment.Dataset) (experiment.ReplicationResult, error) {
	model, err := regress.FitFull(ds)
	if err != nil {
		return experiment.ReplicationResult{}, err
	}
	return experiment.ReplicationResult{
		ReplicateID: ds.ID,
		Value:       model.FStat,
		OK:          true,
	}, nil
}

// LassoCoefficientPipeline fits the penalized regression at a fixed penalty
// and extracts the (shrunken) coefficient of the covariate of interest. A
// coefficient shrunk exactly to zero is still a defined estimate.
type LassoCoefficientPipeline struct {
	Config    lasso.Config
	Covariate int
}

func (LassoCoefficientPipeline) Name() string { return "lasso_coefficient" }

func (p LassoCoefficientPipeline) Fit(ds *experiment.Dataset) (experiment.ReplicationResult, error) {
	model, err := lasso.Fit(ds, p.Config)
	if err != nil {
		return experiment.ReplicationResult{}, err
	}
	return experiment.ReplicationResult{
		ReplicateID: ds.ID,
		Value:       model.Weights[p.Covariate],
		OK:          true,
	}, nil
}

// PostLassoCoefficientPipeline fits the penalized regression, refits OLS on
// the selected covariates, and extracts the refit coefficient of the
// covariate of interest. The result is undefined when that covariate was not
// selected (including the empty-selection case) — the replicate is then
// marked rather than failed.
type PostLassoCoefficientPipeline struct {
	Config    lasso.Config
	Covariate int
	Tol       float64 // selection tolerance; zero means lasso.SelectionTolerance
}

func (PostLassoCoefficientPipeline) Name() string { return "post_lasso_coefficient" }

func (p PostLassoCoefficientPipeline) Fit(ds *experiment.Dataset) (experiment.ReplicationResult, error) {
	tol := p.Tol
	if tol == 0 {
		tol = lasso.SelectionTolerance
	}

	model, err := lasso.Fit(ds, p.Config)
	if err != nil {
		return experiment.ReplicationResult{}, err
	}
	refit, err := lasso.Refit(ds, model, tol)
	if err != nil {
		return experiment.ReplicationResult{}, err
	}

	value := refit.CoefficientFor(p.Covariate)
	return experiment.ReplicationResult{
		ReplicateID: ds.ID,
		Value:       value,
		OK:          !math.IsNaN(value),
	}, nil
}
