package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/timeseries"
)

func TestNDiffs(t *testing.T) {
	// A stationary series needs no differencing, and differencing it zero
	// times leaves the verdict unchanged.
	stationary := meanRevertingSeries(220, 100)

	d := NDiffs(stationary, 2, "kpss")
	assert.Equal(t, 0, d, "stationary series needs no differences")

	kpss := KPSS(stationary, "c", 0)
	require.NotNil(t, kpss)
	assert.True(t, kpss.IsStationary, "verdict must agree with the selected order")

	// A random walk needs at least one difference.
	rng := rand.New(rand.NewSource(11))
	walk := make([]float64, 150)
	for i := 1; i < len(walk); i++ {
		walk[i] = walk[i-1] + rng.NormFloat64()
	}
	d = NDiffs(timeseries.New(walk), 2, "kpss")
	t.Logf("random walk ndiffs: %d", d)
	assert.GreaterOrEqual(t, d, 1, "random walk is not stationary in levels")

	// A linear trend needs at least one difference as well.
	trend := trendingSeries(196, 2)
	d = NDiffs(trend, 2, "kpss")
	t.Logf("trend ndiffs: %d", d)
	assert.GreaterOrEqual(t, d, 1, "trending series is not stationary in levels")
}

func TestNDiffsADF(t *testing.T) {
	stationary := meanRevertingSeries(220, 100)
	assert.Equal(t, 0, NDiffs(stationary, 2, "adf"))
}

func TestNDiffsDefaults(t *testing.T) {
	stationary := meanRevertingSeries(110, 100)

	// maxD <= 0 falls back to 2, empty test type falls back to KPSS.
	assert.Equal(t, 0, NDiffs(stationary, 0, ""))
}

func TestNSDiffs(t *testing.T) {
	// A clean yearly cycle on monthly data wants one seasonal difference:
	// the sine cancels exactly at lag 12 and nothing seasonal remains.
	n := 120
	seasonal := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = 100 + float64(i)*0.5 + 15*math.Sin(2*math.Pi*float64(i)/12)
	}
	sd := NSDiffs(timeseries.New(seasonal), 12, 1)
	assert.Equal(t, 1, sd)

	// Plain noise has no seasonal structure.
	rng := rand.New(rand.NewSource(13))
	noise := make([]float64, n)
	for i := range noise {
		noise[i] = 100 + rng.NormFloat64()
	}
	sd = NSDiffs(timeseries.New(noise), 12, 1)
	assert.Equal(t, 0, sd)
}

func TestNSDiffsShortSeries(t *testing.T) {
	short := timeseries.New([]float64{1, 2, 3, 4, 5, 6, 7, 8})

	assert.Equal(t, 0, NSDiffs(short, 12, 1), "fewer than two periods")
	assert.Equal(t, 0, NSDiffs(short, 1, 1), "period 1 has no seasonality")
}

func TestAICc(t *testing.T) {
	tests := []struct {
		name    string
		aic     float64
		nObs    int
		nParams int
	}{
		{"moderate sample", 100.0, 50, 3},
		{"large sample", 200.0, 100, 5},
		{"small sample", 150.0, 30, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aicc := AICc(tt.aic, tt.nObs, tt.nParams)

			k := float64(tt.nParams)
			n := float64(tt.nObs)
			expected := tt.aic + 2*k*(k+1)/(n-k-1)

			assert.InDelta(t, expected, aicc, 1e-10)
			assert.GreaterOrEqual(t, aicc, tt.aic, "the correction is never negative")
		})
	}
}

func TestAICcDegenerate(t *testing.T) {
	// The correction blows up when n-k-1 <= 0.
	assert.True(t, math.IsInf(AICc(100.0, 5, 5), 1))
	assert.True(t, math.IsInf(AICc(100.0, 4, 5), 1))
}

func TestCalculateIC(t *testing.T) {
	logLik := -50.0
	nObs := 100
	nParams := 3

	ic := CalculateIC(logLik, nObs, nParams)
	require.NotNil(t, ic)

	assert.InDelta(t, -2*logLik+2*float64(nParams), ic.AIC, 1e-10)
	assert.InDelta(t, -2*logLik+float64(nParams)*math.Log(float64(nObs)), ic.BIC, 1e-10)
	assert.GreaterOrEqual(t, ic.AICc, ic.AIC)
	assert.Equal(t, logLik, ic.LogLik)

	// Too few observations for the small-sample correction.
	degenerate := CalculateIC(logLik, 4, 5)
	assert.True(t, math.IsInf(degenerate.AICc, 1))
}

func TestSeasonalStrength(t *testing.T) {
	n := 120

	strong := make([]float64, n)
	for i := 0; i < n; i++ {
		strong[i] = 100 + 20*math.Sin(2*math.Pi*float64(i)/12)
	}
	strength := seasonalStrength(timeseries.New(strong), 12)
	t.Logf("strong seasonal strength: %.4f", strength)
	assert.Greater(t, strength, 0.64, "clean cycle dominates the residual")

	rng := rand.New(rand.NewSource(17))
	weak := make([]float64, n)
	for i := range weak {
		weak[i] = 100 + rng.NormFloat64()
	}
	weakStrength := seasonalStrength(timeseries.New(weak), 12)
	t.Logf("weak seasonal strength: %.4f", weakStrength)
	assert.Less(t, weakStrength, 0.64)

	assert.GreaterOrEqual(t, strength, 0.0)
	assert.LessOrEqual(t, strength, 1.0)
}

func TestDefinedVariance(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 32.0/7.0, definedVariance(data), 1e-10)

	// NaN values carry no information and are skipped.
	withNaN := []float64{2, 4, math.NaN(), 4, 5, math.NaN(), 7, 9}
	defined := []float64{2, 4, 4, 5, 7, 9}
	assert.InDelta(t, definedVariance(defined), definedVariance(withNaN), 1e-10)

	assert.Equal(t, 0.0, definedVariance([]float64{math.NaN(), 1}), "one defined value")
	assert.Equal(t, 0.0, definedVariance(nil))
}
