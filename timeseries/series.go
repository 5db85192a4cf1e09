// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"errors"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Errors returned by series constructors and accessors.
var (
	// ErrLengthMismatch indicates timestamps and values differ in length.
	ErrLengthMismatch = errors.New("timestamps and values must have the same length")
	// ErrNotChronological indicates timestamps are not strictly increasing.
	ErrNotChronological = errors.New("timestamps must be strictly increasing")
)

// Series represents an observed time series with timestamps and values.
// Values may contain NaN to mark observations that are undefined, for
// example at the boundaries of a centered moving average.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a series from values with synthetic daily timestamps.
func New(values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range timestamps {
		timestamps[i] = base.AddDate(0, 0, i)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// NewWithTimestamps creates a series with explicit timestamps. Timestamps
// must be strictly increasing and match the values in length.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, ErrLengthMismatch
	}
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return nil, ErrNotChronological
		}
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance calculates the unbiased sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// Std calculates the standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Min(s.Values)
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Max(s.Values)
}

// Median returns the median value of the series.
func (s *Series) Median() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// TruncateBefore returns the subsequence of observations whose timestamp is
// at or after cutoff, preserving the original order. No interpolation or
// fill happens at the cut point.
func (s *Series) TruncateBefore(cutoff time.Time) *Series {
	values := make([]float64, 0, len(s.Values))
	timestamps := make([]time.Time, 0, len(s.Timestamps))
	for i, ts := range s.Timestamps {
		if ts.Before(cutoff) {
			continue
		}
		timestamps = append(timestamps, ts)
		values = append(values, s.Values[i])
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Diff calculates the first difference of the series (d=1).
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN calculates the n-th order difference of the series.
func (s *Series) DiffN(n int) *Series {
	if n <= 0 || len(s.Values) <= n {
		return &Series{Values: []float64{}}
	}

	result := make([]float64, len(s.Values)-n)
	for i := n; i < len(s.Values); i++ {
		result[i-n] = s.Values[i] - s.Values[i-n]
	}

	timestamps := make([]time.Time, len(result))
	if len(s.Timestamps) > n {
		copy(timestamps, s.Timestamps[n:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_diff",
	}
}

// SeasonalDiff calculates the seasonal difference with period m.
func (s *Series) SeasonalDiff(m int) *Series {
	if m <= 0 || len(s.Values) <= m {
		return &Series{Values: []float64{}}
	}

	result := make([]float64, len(s.Values)-m)
	for i := m; i < len(s.Values); i++ {
		result[i-m] = s.Values[i] - s.Values[i-m]
	}

	timestamps := make([]time.Time, len(result))
	if len(s.Timestamps) > m {
		copy(timestamps, s.Timestamps[m:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_seasonal_diff",
	}
}

// Lag returns a lagged version of the series.
func (s *Series) Lag(k int) *Series {
	if k <= 0 || k >= len(s.Values) {
		return &Series{Values: []float64{}}
	}

	result := make([]float64, len(s.Values)-k)
	copy(result, s.Values[:len(s.Values)-k])

	timestamps := make([]time.Time, len(result))
	if len(s.Timestamps) > k {
		copy(timestamps, s.Timestamps[k:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_lag",
	}
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Split divides the series into a training head and a test tail of
// testSize observations.
func (s *Series) Split(testSize int) (train, test *Series) {
	n := len(s.Values)
	if testSize < 0 {
		testSize = 0
	}
	if testSize > n {
		testSize = n
	}
	return s.Slice(0, n-testSize), s.Slice(n-testSize, n)
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// CenteredMovingAverage smooths the series with a centered window of
// 2*halfWindow+1 observations. Positions whose window extends past either
// end of the series are undefined and hold NaN; they are never imputed.
func (s *Series) CenteredMovingAverage(halfWindow int) *Series {
	if halfWindow <= 0 {
		return &Series{Values: []float64{}}
	}

	n := len(s.Values)
	width := 2*halfWindow + 1
	result := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < halfWindow || i >= n-halfWindow {
			result[i] = math.NaN()
			continue
		}
		sum := 0.0
		for j := i - halfWindow; j <= i+halfWindow; j++ {
			sum += s.Values[j]
		}
		result[i] = sum / float64(width)
	}

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_smoothed",
	}
}

// HasUndefined reports whether any observation is NaN.
func (s *Series) HasUndefined() bool {
	for _, v := range s.Values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// TrimUndefined removes leading and trailing NaN observations, leaving the
// interior untouched. Interior NaN remains an error for model fitting and
// must be handled by the caller.
func (s *Series) TrimUndefined() *Series {
	start := 0
	for start < len(s.Values) && math.IsNaN(s.Values[start]) {
		start++
	}
	end := len(s.Values)
	for end > start && math.IsNaN(s.Values[end-1]) {
		end--
	}
	return s.Slice(start, end)
}
