package stats

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goforecast/timeseries"
)

// ErrEmptySeries indicates a diagnostic was asked for on a series with no
// defined observations.
var ErrEmptySeries = errors.New("series has no defined observations")

// WeekdayEffectResult holds the estimated mean level per weekday from a
// no-intercept regression on one-hot weekday indicators. Arrays are indexed
// by time.Weekday, Sunday first. Weekdays absent from the series hold NaN.
type WeekdayEffectResult struct {
	Means   [7]float64
	StdErrs [7]float64
	Counts  [7]int
	// Imbalance is the spread of weekday means, (max-min)/grand mean.
	// Values well above zero indicate a reporting-cycle artifact worth
	// smoothing away before model fitting.
	Imbalance float64
}

// MinWeekday returns the weekday with the lowest estimated mean level.
// Ties resolve to the earliest weekday; weekdays with no observations are
// ignored.
func (r *WeekdayEffectResult) MinWeekday() time.Weekday {
	best := time.Sunday
	bestVal := math.Inf(1)
	for d, m := range r.Means {
		if !math.IsNaN(m) && m < bestVal {
			bestVal = m
			best = time.Weekday(d)
		}
	}
	return best
}

// MaxWeekday returns the weekday with the highest estimated mean level.
func (r *WeekdayEffectResult) MaxWeekday() time.Weekday {
	best := time.Sunday
	bestVal := math.Inf(-1)
	for d, m := range r.Means {
		if !math.IsNaN(m) && m > bestVal {
			bestVal = m
			best = time.Weekday(d)
		}
	}
	return best
}

// WeekdayDummies builds the one-hot weekday indicator matrix for the given
// timestamps. Row i holds exactly one 1, in the column of
// timestamps[i].Weekday(), Sunday being column 0.
func WeekdayDummies(timestamps []time.Time) *mat.Dense {
	X := mat.NewDense(len(timestamps), 7, nil)
	for i, ts := range timestamps {
		X.Set(i, int(ts.Weekday()), 1)
	}
	return X
}

// WeekdayEffect regresses the series on its weekday indicators without an
// intercept, so each coefficient is directly the estimated mean level for
// that weekday. Undefined observations are excluded; weekdays that never
// occur get NaN coefficients rather than failing the regression.
// The result is a diagnostic only; it does not alter the series.
func WeekdayEffect(s *timeseries.Series) (*WeekdayEffectResult, error) {
	var (
		days   []int
		values []float64
		counts [7]int
	)
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		d := int(s.Timestamps[i].Weekday())
		days = append(days, d)
		values = append(values, v)
		counts[d]++
	}
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}

	// Columns for weekdays with no observations are all zero and would
	// make the design singular, so the regression runs on the present
	// weekdays only.
	var present []int
	col := make(map[int]int, 7)
	for d := 0; d < 7; d++ {
		if counts[d] > 0 {
			col[d] = len(present)
			present = append(present, d)
		}
	}

	X := mat.NewDense(len(values), len(present), nil)
	for i, d := range days {
		X.Set(i, col[d], 1)
	}

	coeffs, stdErrs, err := olsFit(X, values)
	if err != nil {
		return nil, err
	}

	result := &WeekdayEffectResult{Counts: counts}
	for d := 0; d < 7; d++ {
		result.Means[d] = math.NaN()
		result.StdErrs[d] = math.NaN()
	}
	for j, d := range present {
		result.Means[d] = coeffs[j]
		if stdErrs != nil {
			result.StdErrs[d] = stdErrs[j]
		}
	}

	min, max, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, m := range result.Means {
		if math.IsNaN(m) {
			continue
		}
		if m < min {
			min = m
		}
		if m > max {
			max = m
		}
	}
	for _, v := range values {
		sum += v
	}
	grand := sum / float64(len(values))
	if grand != 0 {
		result.Imbalance = (max - min) / math.Abs(grand)
	}

	return result, nil
}
