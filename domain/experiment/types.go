// Package experiment defines the core value types shared by the simulation
// pipeline: replicate datasets, fitted models, splits, and per-replicate
// results. All types are plain values; nothing here mutates after creation.
package experiment

import (
	"math"
	"time"
)

// Dataset is one synthetic replicate: n observation rows of p covariates plus
// one response. Generation parameters are identical across replicates; only
// the draws differ.
type Dataset struct {
	ID int           // replicate identifier, 1..R
	X  [][]float64   // n rows, each of length p
	Y  []float64     // n responses
}

// Rows returns the number of observations n.
func (d *Dataset) Rows() int { return len(d.Y) }

// Covariates returns the number of covariates p.
func (d *Dataset) Covariates() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// Subset returns a new Dataset containing only the given rows, preserving
// their order. The returned dataset shares no backing storage with d.
func (d *Dataset) Subset(rows []int) Dataset {
	sub := Dataset{
		ID: d.ID,
		X:  make([][]float64, len(rows)),
		Y:  make([]float64, len(rows)),
	}
	for i, r := range rows {
		row := make([]float64, len(d.X[r]))
		copy(row, d.X[r])
		sub.X[i] = row
		sub.Y[i] = d.Y[r]
	}
	return sub
}

// Column extracts covariate column j as a flat slice.
func (d *Dataset) Column(j int) []float64 {
	col := make([]float64, len(d.X))
	for i := range d.X {
		col[i] = d.X[i][j]
	}
	return col
}

// FittedModel is the immutable outcome of fitting one procedure to one
// dataset (or sub-split of it).
type FittedModel struct {
	Selected     []int     // covariate indices in the model, ascending
	Coefficients []float64 // one entry per covariate in Selected order
	Intercept    float64
	FStat        float64 // overall F-statistic of the fit
	DFNum        int     // numerator degrees of freedom
	DFDen        int     // denominator degrees of freedom
	PValue       float64
}

// CoefficientFor returns the estimated coefficient for covariate j, or NaN
// when j is not in the model.
func (m *FittedModel) CoefficientFor(j int) float64 {
	for i, sel := range m.Selected {
		if sel == j {
			return m.Coefficients[i]
		}
	}
	return math.NaN()
}

// Split partitions a dataset's rows into a selection subset and an inference
// subset. Invariant: the two index sets are disjoint and their union covers
// every row exactly once.
type Split struct {
	Selection []int
	Inference []int
}

// ReplicationResult is the scalar of interest extracted from one replicate.
// OK is false when the value is undefined for that replicate (for example an
// empty penalized selection); Value is then NaN.
type ReplicationResult struct {
	ReplicateID int
	Value       float64
	OK          bool
}

// ResultSeries is the ordered collection of per-replicate results. Index i
// holds replicate i+1; the driver guarantees no gaps or duplicates.
type ResultSeries []ReplicationResult

// Values returns the defined values in replicate order along with the count
// of undefined replicates that were skipped.
func (s ResultSeries) Values() (defined []float64, undefined int) {
	defined = make([]float64, 0, len(s))
	for _, r := range s {
		if !r.OK || math.IsNaN(r.Value) {
			undefined++
			continue
		}
		defined = append(defined, r.Value)
	}
	return defined, undefined
}

// RunManifest records the provenance of one driver run so a result series can
// be tied back to the exact configuration that produced it.
type RunManifest struct {
	RunID      string
	Pipeline   string
	Seed       int64
	Replicates int
	CreatedAt  time.Time
}

// HistogramBin is one bar of an empirical distribution.
type HistogramBin struct {
	Low   float64
	High  float64
	Count int
}

// RejectionSummary is the rejection-rate mode aggregate: the fraction of
// defined replicate statistics exceeding the critical value.
type RejectionSummary struct {
	Rate          float64
	CriticalValue float64
	Level         float64
	DFNum         int
	DFDen         int
	Rejected      int
	Total         int
	Undefined     int
}

// DistributionSummary is the distribution mode aggregate: the empirical
// sampling distribution of a coefficient estimate across replicates.
type DistributionSummary struct {
	Mean      float64
	StdDev    float64
	Bins      []HistogramBin
	TrueValue float64 // known ground-truth value, for comparison
	Defined   int
	Undefined int
}
