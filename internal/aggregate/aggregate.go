// Package aggregate turns a completed result series into its two published
// artifact forms: an empirical rejection rate against an F critical value, or
// an empirical sampling distribution with summary statistics and
// histogram-ready bins.
package aggregate

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"selsim/domain/experiment"
	"selsim/internal/errors"
)

// RejectionRate computes the fraction of defined replicate statistics that
// exceed the F critical value at the given level and degrees of freedom. The
// degrees of freedom must match the inference fit that produced the
// statistics — a split pipeline tests against a smaller denominator df than
// an unsplit one because only the inference subset enters the refit.
func RejectionRate(series experiment.ResultSeries, level float64, dfNum, dfDen int) (experiment.RejectionSummary, error) {
	if level <= 0 || level >= 1 {
		return experiment.RejectionSummary{}, errors.ConfigInvalid(
			fmt.Sprintf("significance level must be in (0,1), got %g", level))
	}
	if dfNum < 1 || dfDen < 1 {
		return experiment.RejectionSummary{}, errors.ConfigInvalid(
			fmt.Sprintf("degrees of freedom must be positive, got (%d, %d)", dfNum, dfDen))
	}
	if len(series) == 0 {
		return experiment.RejectionSummary{}, errors.InvalidInput("cannot aggregate an empty result series")
	}

	critical := distuv.F{D1: float64(dfNum), D2: float64(dfDen)}.Quantile(level)

	defined, undefined := series.Values()
	rejected := 0
	for _, v := range defined {
		if v > critical {
			rejected++
		}
	}

	rate := 0.0
	if len(defined) > 0 {
		rate = float64(rejected) / float64(len(defined))
	}

	return experiment.RejectionSummary{
		Rate:          rate,
		CriticalValue: critical,
		Level:         level,
		DFNum:         dfNum,
		DFDen:         dfDen,
		Rejected:      rejected,
		Total:         len(defined),
		Undefined:     undefined,
	}, nil
}

// Distribution summarizes the empirical sampling distribution of an
// estimator across replicates. Undefined replicates are excluded from the
// mean and standard deviation but their count is carried on the summary.
// binCount <= 0 selects the bin count by the Sturges rule.
func Distribution(series experiment.ResultSeries, trueValue float64, binCount int) (experiment.DistributionSummary, error) {
	if len(series) == 0 {
		return experiment.DistributionSummary{}, errors.InvalidInput("cannot aggregate an empty result series")
	}

	defined, undefined := series.Values()
	summary := experiment.DistributionSummary{
		Mean:      math.NaN(),
		StdDev:    math.NaN(),
		TrueValue: trueValue,
		Defined:   len(defined),
		Undefined: undefined,
	}
	if len(defined) == 0 {
		return summary, nil
	}

	mean, err := stats.Mean(defined)
	if err != nil {
		return experiment.DistributionSummary{}, errors.Wrap(err, "mean computation failed")
	}
	summary.Mean = mean

	if len(defined) > 1 {
		sd, err := stats.StandardDeviationSample(defined)
		if err != nil {
			return experiment.DistributionSummary{}, errors.Wrap(err, "standard deviation computation failed")
		}
		summary.StdDev = sd
	}

	if binCount <= 0 {
		binCount = sturgesBins(len(defined))
	}
	summary.Bins = binValues(defined, binCount)

	return summary, nil
}

// sturgesBins is the Sturges rule bin count for n observations.
func sturgesBins(n int) int {
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

// binValues buckets values into equal-width bins spanning [min, max]. Values
// on a boundary fall into the higher bin; the maximum lands in the last bin.
func binValues(values []float64, binCount int) []experiment.HistogramBin {
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if lo == hi {
		return []experiment.HistogramBin{{Low: lo, High: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(binCount)
	bins := make([]experiment.HistogramBin, binCount)
	for b := range bins {
		bins[b].Low = lo + float64(b)*width
		bins[b].High = lo + float64(b+1)*width
	}
	bins[binCount-1].High = hi

	for _, v := range values {
		b := int((v - lo) / width)
		if b >= binCount {
			b = binCount - 1
		}
		bins[b].Count++
	}
	return bins
}
