package stats

import (
	"math"

	"github.com/sartorproj/goforecast/timeseries"
)

// ACF returns the sample autocorrelations of the series for lags 0
// through maxLag. A constant series has no defined autocorrelation and
// yields nil.
func ACF(series *timeseries.Series, maxLag int) []float64 {
	n := series.Len()
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := series.Mean()
	centered := make([]float64, n)
	var ss float64
	for i, v := range series.Values {
		centered[i] = v - mean
		ss += centered[i] * centered[i]
	}
	if ss == 0 {
		return nil
	}

	out := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		var s float64
		for t := lag; t < n; t++ {
			s += centered[t] * centered[t-lag]
		}
		out[lag] = s / ss
	}
	return out
}

// PACF returns the sample partial autocorrelations for lags 0 through
// maxLag, computed from the ACF with the Durbin-Levinson recursion.
func PACF(series *timeseries.Series, maxLag int) []float64 {
	n := series.Len()
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 1 {
		return nil
	}

	acf := ACF(series, maxLag)
	if acf == nil {
		return nil
	}

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1.0

	// Durbin-Levinson needs only the previous row of AR coefficients.
	prev := make([]float64, maxLag+1)
	cur := make([]float64, maxLag+1)
	prev[1] = acf[1]
	pacf[1] = acf[1]

	for k := 2; k <= maxLag; k++ {
		num := acf[k]
		den := 1.0
		for j := 1; j < k; j++ {
			num -= prev[j] * acf[k-j]
			den -= prev[j] * acf[j]
		}

		if den == 0 {
			pacf[k] = 0
			for j := range prev {
				prev[j] = 0
			}
			continue
		}

		cur[k] = num / den
		pacf[k] = cur[k]
		for j := 1; j < k; j++ {
			cur[j] = prev[j] - cur[k]*prev[k-j]
		}
		prev, cur = cur, prev
	}

	return pacf
}

// ACFResult holds autocorrelations alongside their 95% confidence bound.
type ACFResult struct {
	Lags       []int
	Values     []float64
	ConfBounds float64
}

// PACFResult holds partial autocorrelations alongside their 95%
// confidence bound.
type PACFResult struct {
	Lags       []int
	Values     []float64
	ConfBounds float64
}

// ACFWithConfidence computes the ACF together with the ±1.96/sqrt(n)
// bound used to judge which lags matter.
func ACFWithConfidence(series *timeseries.Series, maxLag int) *ACFResult {
	acf := ACF(series, maxLag)
	if acf == nil {
		return nil
	}
	return &ACFResult{
		Lags:       lagIndex(len(acf)),
		Values:     acf,
		ConfBounds: confidenceBound(series.Len()),
	}
}

// PACFWithConfidence computes the PACF together with its confidence bound.
func PACFWithConfidence(series *timeseries.Series, maxLag int) *PACFResult {
	pacf := PACF(series, maxLag)
	if pacf == nil {
		return nil
	}
	return &PACFResult{
		Lags:       lagIndex(len(pacf)),
		Values:     pacf,
		ConfBounds: confidenceBound(series.Len()),
	}
}

// SignificantLags returns the lags whose values exceed the confidence
// bound in absolute value, skipping lag 0.
func SignificantLags(values []float64, confBound float64) []int {
	var significant []int
	for i := 1; i < len(values); i++ {
		if math.Abs(values[i]) > confBound {
			significant = append(significant, i)
		}
	}
	return significant
}

func lagIndex(n int) []int {
	lags := make([]int, n)
	for i := range lags {
		lags[i] = i
	}
	return lags
}

func confidenceBound(n int) float64 {
	return 1.96 / math.Sqrt(float64(n))
}
