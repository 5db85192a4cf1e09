package stats

import (
	"math"

	"github.com/sartorproj/goforecast/timeseries"
)

// DecompositionResult represents the decomposition of a time series.
type DecompositionResult struct {
	Original *timeseries.Series
	Trend    *timeseries.Series
	Seasonal *timeseries.Series
	Residual *timeseries.Series
	Period   int
	Type     string // "additive" or "multiplicative"
}

// Decompose performs classical seasonal decomposition with a centered
// moving average for the trend. Type is "additive" (Y = T + S + R) or
// "multiplicative" (Y = T * S * R). Trend and residual are undefined (NaN)
// where the smoothing window is incomplete. Returns nil when fewer than
// two full periods are available.
func Decompose(series *timeseries.Series, period int, decompositionType string) *DecompositionResult {
	n := series.Len()
	if period < 2 || n < 2*period {
		return nil
	}

	if decompositionType != "additive" && decompositionType != "multiplicative" {
		decompositionType = "additive"
	}

	trend := calculateTrend(series, period)

	detrended := make([]float64, n)
	if decompositionType == "multiplicative" {
		for i := 0; i < n; i++ {
			if !math.IsNaN(trend.Values[i]) && trend.Values[i] != 0 {
				detrended[i] = series.Values[i] / trend.Values[i]
			} else {
				detrended[i] = math.NaN()
			}
		}
	} else {
		for i := 0; i < n; i++ {
			if !math.IsNaN(trend.Values[i]) {
				detrended[i] = series.Values[i] - trend.Values[i]
			} else {
				detrended[i] = math.NaN()
			}
		}
	}

	// Seasonal component: average the detrended values within each phase
	// of the period.
	seasonalPattern := make([]float64, period)
	counts := make([]int, period)

	for i := 0; i < n; i++ {
		if !math.IsNaN(detrended[i]) {
			seasonIdx := i % period
			seasonalPattern[seasonIdx] += detrended[i]
			counts[seasonIdx]++
		}
	}

	for i := 0; i < period; i++ {
		if counts[i] > 0 {
			seasonalPattern[i] /= float64(counts[i])
		}
	}

	// Normalize so the seasonal component sums to zero (additive) or
	// averages to one (multiplicative) over a period.
	sum := 0.0
	for _, v := range seasonalPattern {
		sum += v
	}
	mean := sum / float64(period)
	if decompositionType == "multiplicative" {
		for i := range seasonalPattern {
			seasonalPattern[i] /= mean
		}
	} else {
		for i := range seasonalPattern {
			seasonalPattern[i] -= mean
		}
	}

	seasonal := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = seasonalPattern[i%period]
	}

	residual := make([]float64, n)
	if decompositionType == "multiplicative" {
		for i := 0; i < n; i++ {
			if !math.IsNaN(trend.Values[i]) && trend.Values[i] != 0 && seasonal[i] != 0 {
				residual[i] = series.Values[i] / (trend.Values[i] * seasonal[i])
			} else {
				residual[i] = math.NaN()
			}
		}
	} else {
		for i := 0; i < n; i++ {
			if !math.IsNaN(trend.Values[i]) {
				residual[i] = series.Values[i] - trend.Values[i] - seasonal[i]
			} else {
				residual[i] = math.NaN()
			}
		}
	}

	return &DecompositionResult{
		Original: series,
		Trend: &timeseries.Series{
			Values:     trend.Values,
			Timestamps: series.Timestamps,
			Name:       "trend",
		},
		Seasonal: &timeseries.Series{
			Values:     seasonal,
			Timestamps: series.Timestamps,
			Name:       "seasonal",
		},
		Residual: &timeseries.Series{
			Values:     residual,
			Timestamps: series.Timestamps,
			Name:       "residual",
		},
		Period: period,
		Type:   decompositionType,
	}
}

// calculateTrend extracts the trend with a centered moving average over
// one full period. Even periods use the standard 2xm average with
// half-weighted endpoints to stay centered.
func calculateTrend(series *timeseries.Series, period int) *timeseries.Series {
	if period%2 == 1 {
		return series.CenteredMovingAverage(period / 2)
	}

	n := series.Len()
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}

	halfPeriod := period / 2
	for i := halfPeriod; i < n-halfPeriod; i++ {
		sum := series.Values[i-halfPeriod]*0.5 + series.Values[i+halfPeriod]*0.5
		for j := i - halfPeriod + 1; j < i+halfPeriod; j++ {
			sum += series.Values[j]
		}
		trend[i] = sum / float64(period)
	}

	return &timeseries.Series{
		Values:     trend,
		Timestamps: series.Timestamps,
		Name:       "trend",
	}
}
