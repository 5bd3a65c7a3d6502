package series

import (
	"cmp"
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	apperrors "rtbstats/internal/errors"
)

// AnalyzeValues computes max, min, mean, median, population standard
// deviation and sum over the current values, and caches the median and
// deviation for RemoveOutliers. An empty store yields an unavailable result.
func (s *Store) AnalyzeValues() (ValueStats, error) {
	result := ValueStats{Count: len(s.records)}
	if len(s.records) == 0 {
		result.Reason = ReasonEmpty
		s.median, s.stdDev, s.hasValues = 0, 0, false
		s.analyzed = true
		return result, nil
	}

	data := stats.Float64Data(s.Values())

	var err error
	if result.Max, err = stats.Max(data); err != nil {
		return result, apperrors.Wrapf(err, "max of %s", s.name)
	}
	if result.Min, err = stats.Min(data); err != nil {
		return result, apperrors.Wrapf(err, "min of %s", s.name)
	}
	if result.Mean, err = stats.Mean(data); err != nil {
		return result, apperrors.Wrapf(err, "mean of %s", s.name)
	}
	if result.Median, err = stats.Median(data); err != nil {
		return result, apperrors.Wrapf(err, "median of %s", s.name)
	}
	// montanaflynn's StandardDeviation is the population deviation
	if result.StdDev, err = stats.StandardDeviation(data); err != nil {
		return result, apperrors.Wrapf(err, "standard deviation of %s", s.name)
	}
	if result.Sum, err = stats.Sum(data); err != nil {
		return result, apperrors.Wrapf(err, "sum of %s", s.name)
	}
	result.Available = true

	s.median, s.stdDev, s.hasValues = result.Median, result.StdDev, true
	s.analyzed = true
	return result, nil
}

// AnalyzeTime describes the spacing between consecutive timestamps. When the
// spacing is not uniform the top ceil(n*gapsFraction) intervals are reported
// as gaps, ties resolved in time order. Needs a sorted store.
func (s *Store) AnalyzeTime(gapsFraction float64) (TimeStats, error) {
	result := TimeStats{Count: len(s.records)}
	if !s.sorted {
		return result, ErrNotSorted
	}
	if err := checkFraction("gaps", gapsFraction); err != nil {
		return result, err
	}

	s.intervals = nil
	switch len(s.records) {
	case 0:
		result.Reason = ReasonEmpty
		return result, nil
	case 1:
		result.Reason = ReasonSingleRecord
		return result, nil
	}

	first, last := s.records[0], s.records[len(s.records)-1]
	result.Range = last.Time - first.Time

	intervals := make([]Interval, 0, len(s.records)-1)
	durations := make([]float64, 0, len(s.records)-1)
	step := s.records[1].Time - first.Time
	result.Uniform = true
	for i := 1; i < len(s.records); i++ {
		iv := Interval{Duration: s.records[i].Time - s.records[i-1].Time, Start: s.records[i-1].Time}
		if iv.Duration != step {
			result.Uniform = false
		}
		intervals = append(intervals, iv)
		durations = append(durations, float64(iv.Duration))
	}
	s.intervals = intervals

	if !result.Uniform {
		result.Gaps = largest(intervals, gapsFraction, func(iv Interval) float64 { return float64(iv.Duration) })
	}

	result.IntervalMax = slices.MaxFunc(intervals, byDuration).Duration
	result.IntervalMin = slices.MinFunc(intervals, byDuration).Duration
	result.IntervalMean, result.IntervalStdDev = stat.PopMeanStdDev(durations, nil)
	result.Available = true
	return result, nil
}

// AnalyzeRateOfChange computes dValue/dTime for each pair of consecutive
// records, keyed by the earlier timestamp. Pairs sharing a timestamp are
// skipped. The top ceil(n*derivsFraction) rates are reported as the largest
// changes. Needs a sorted store.
func (s *Store) AnalyzeRateOfChange(derivsFraction float64) (RateStats, error) {
	result := RateStats{Count: len(s.records)}
	if !s.sorted {
		return result, ErrNotSorted
	}
	if err := checkFraction("derivatives", derivsFraction); err != nil {
		return result, err
	}

	switch len(s.records) {
	case 0:
		result.Reason = ReasonEmpty
		return result, nil
	case 1:
		result.Reason = ReasonSingleRecord
		return result, nil
	}

	derivs := make([]Derivative, 0, len(s.records)-1)
	rates := make([]float64, 0, len(s.records)-1)
	for i := 1; i < len(s.records); i++ {
		prev, cur := s.records[i-1], s.records[i]
		dt := cur.Time - prev.Time
		if dt == 0 {
			result.Skipped++
			continue
		}
		rate := (cur.Value - prev.Value) / float64(dt)
		derivs = append(derivs, Derivative{Rate: rate, Start: prev.Time})
		rates = append(rates, rate)
	}

	if len(derivs) == 0 {
		result.Reason = ReasonSameTimestamp
		return result, nil
	}

	result.Derivatives = derivs
	result.Largest = largest(derivs, derivsFraction, func(d Derivative) float64 { return d.Rate })
	result.Mean, result.StdDev = stat.PopMeanStdDev(rates, nil)
	result.Available = true
	return result, nil
}

func byDuration(a, b Interval) int {
	return cmp.Compare(a.Duration, b.Duration)
}

// largest returns the top ceil(len(items)*fraction) items by key, descending.
// The sort is stable so equal keys keep their original order.
func largest[T any](items []T, fraction float64, key func(T) float64) []T {
	n := int(math.Ceil(float64(len(items)) * fraction))
	if n <= 0 {
		return nil
	}
	if n > len(items) {
		n = len(items)
	}
	ranked := slices.Clone(items)
	slices.SortStableFunc(ranked, func(a, b T) int {
		return cmp.Compare(key(b), key(a))
	})
	return ranked[:n:n]
}

func checkFraction(what string, f float64) error {
	if math.IsNaN(f) || f < 0 || f > 1 {
		return apperrors.Newf(apperrors.CodeInvalidInput, "%s fraction must be within [0, 1], got %g", what, f)
	}
	return nil
}
