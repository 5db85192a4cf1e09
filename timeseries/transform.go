package timeseries

import (
	"math"
	"time"
)

func copyTimestamps(ts []time.Time) []time.Time {
	out := make([]time.Time, len(ts))
	copy(out, ts)
	return out
}

// PowerTransform applies a variance-stabilizing power transform v^Lambda.
// Lambda of 0 means the natural logarithm, following the Box-Cox power
// family convention. The transform is exactly invertible, which matters
// when forecasts produced on the transformed scale must be reported on the
// original scale.
type PowerTransform struct {
	Lambda float64
}

// ChooseTransform selects a power transform for a count series. The square
// root (lambda 0.5) is chosen when the series contains zeros, because the
// logarithm is undefined at zero; otherwise the log transform is used.
func ChooseTransform(s *Series) PowerTransform {
	for _, v := range s.Values {
		if v == 0 {
			return PowerTransform{Lambda: 0.5}
		}
	}
	return PowerTransform{Lambda: 0}
}

// Apply transforms each value. Negative values, and zeros under the log
// transform, are undefined and map to NaN. NaN inputs propagate.
func (t PowerTransform) Apply(s *Series) *Series {
	result := make([]float64, len(s.Values))
	for i, v := range s.Values {
		result[i] = t.apply(v)
	}

	return &Series{
		Timestamps: copyTimestamps(s.Timestamps),
		Values:     result,
		Name:       s.Name + t.suffix(),
	}
}

// Invert maps transformed values back to the original scale. The round
// trip Apply then Invert reconstructs non-negative inputs to within
// floating-point tolerance.
func (t PowerTransform) Invert(s *Series) *Series {
	result := make([]float64, len(s.Values))
	for i, v := range s.Values {
		result[i] = t.invert(v)
	}

	return &Series{
		Timestamps: copyTimestamps(s.Timestamps),
		Values:     result,
		Name:       s.Name + "_inv",
	}
}

// InvertValues maps a transformed slice back to the original scale without
// requiring a Series, which suits forecast outputs.
func (t PowerTransform) InvertValues(values []float64) []float64 {
	result := make([]float64, len(values))
	for i, v := range values {
		result[i] = t.invert(v)
	}
	return result
}

// IsLog reports whether the transform is the natural logarithm.
func (t PowerTransform) IsLog() bool {
	return t.Lambda == 0
}

func (t PowerTransform) apply(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return math.NaN()
	}
	if t.Lambda == 0 {
		if v == 0 {
			return math.NaN()
		}
		return math.Log(v)
	}
	return math.Pow(v, t.Lambda)
}

func (t PowerTransform) invert(v float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	if t.Lambda == 0 {
		return math.Exp(v)
	}
	return math.Pow(v, 1/t.Lambda)
}

func (t PowerTransform) suffix() string {
	if t.Lambda == 0 {
		return "_log"
	}
	return "_pow"
}
