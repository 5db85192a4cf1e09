package sarima

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/timeseries"
)

// monthlySeries builds ten years of monthly data with trend, yearly
// seasonality, and a small deterministic ripple standing in for noise.
func monthlySeries(n int) *timeseries.Series {
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		trend := float64(i) * 0.5
		seasonal := 20 * math.Sin(2*math.Pi*float64(i)/12)
		ripple := float64(i%5-2) / 2
		values[i] = 100 + trend + seasonal + ripple
	}
	return timeseries.New(values)
}

func TestNew(t *testing.T) {
	model := New(1, 1, 1, 2, 1, 2, 12)

	assert.Equal(t, Order{P: 1, D: 1, Q: 1, SP: 2, SD: 1, SQ: 2, M: 12}, model.Order)
	assert.Len(t, model.ARCoeffs, 1)
	assert.Len(t, model.MACoeffs, 1)
	assert.Len(t, model.SARCoeffs, 2)
	assert.Len(t, model.SMACoeffs, 2)
	assert.False(t, model.fitted)
}

func TestFitMonthlyData(t *testing.T) {
	series := monthlySeries(120)
	model := New(1, 0, 0, 1, 0, 0, 12)

	err := model.Fit(series)
	require.NoError(t, err)

	require.NotNil(t, model.IC)
	assert.False(t, math.IsNaN(model.IC.AICc))
	assert.Equal(t, 3, model.NumParams())
	assert.InDelta(t, model.AICc(), model.IC.AICc, 1e-12)

	t.Logf("SARIMA(1,0,0)(1,0,0)[12] - AIC: %f, AICc: %f, BIC: %f",
		model.IC.AIC, model.IC.AICc, model.IC.BIC)
	t.Logf("AR coeffs: %v", model.ARCoeffs)
	t.Logf("SAR coeffs: %v", model.SARCoeffs)
}

func TestFitWithDifferencing(t *testing.T) {
	n := 144
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		trend := float64(i) * 0.3
		seasonal := 15 * math.Cos(2*math.Pi*float64(i)/12)
		values[i] = 50 + trend + seasonal + float64(i%7-3)/3
	}
	series := timeseries.New(values)

	model := New(1, 1, 0, 1, 1, 0, 12)
	err := model.Fit(series)
	require.NoError(t, err)

	// One non-seasonal and one seasonal difference shorten the working
	// series by 1 + 12 observations.
	assert.Len(t, model.Residuals(), n-1-12)
	assert.Len(t, model.FittedValues(), n-1-12)
}

func TestFitRejectsUndefinedValues(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = float64(i)
	}
	values[17] = math.NaN()

	model := New(1, 0, 0, 0, 0, 0, 0)
	err := model.Fit(timeseries.New(values))
	assert.ErrorIs(t, err, ErrUndefinedValues)
}

func TestFitTooShort(t *testing.T) {
	series := timeseries.New(make([]float64, 20))

	// Needs 1 + 12 + 20 = 33 observations.
	model := New(1, 0, 0, 1, 0, 0, 12)
	err := model.Fit(series)
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestNotFitted(t *testing.T) {
	model := New(1, 0, 0, 0, 0, 0, 0)

	_, err := model.Predict(5)
	assert.ErrorIs(t, err, ErrNotFitted)

	_, _, _, err = model.Forecast(5)
	assert.ErrorIs(t, err, ErrNotFitted)

	assert.Nil(t, model.Summary())
	assert.Nil(t, model.Residuals())
	assert.Nil(t, model.FittedValues())
	assert.True(t, math.IsInf(model.AICc(), 1))
}

func TestPredict(t *testing.T) {
	series := monthlySeries(120)
	model := New(1, 0, 0, 1, 0, 0, 12)
	require.NoError(t, model.Fit(series))

	forecasts, err := model.Predict(24)
	require.NoError(t, err)
	require.Len(t, forecasts, 24)

	for i, f := range forecasts {
		assert.False(t, math.IsNaN(f), "forecast %d is NaN", i)
		assert.False(t, math.IsInf(f, 0), "forecast %d is Inf", i)
	}
}

func TestForecastIntervals(t *testing.T) {
	series := monthlySeries(120)
	model := New(1, 0, 0, 1, 0, 0, 12)
	require.NoError(t, model.Fit(series))

	point, lower, upper, err := model.Forecast(12)
	require.NoError(t, err)
	require.Len(t, point, 12)
	require.Len(t, lower, 12)
	require.Len(t, upper, 12)

	for h := range point {
		assert.Less(t, lower[h], point[h], "step %d", h)
		assert.Greater(t, upper[h], point[h], "step %d", h)
	}
}

func TestIntervalWideningWithDifferencing(t *testing.T) {
	n := 60
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 30 + 1.2*float64(i) + float64((i*3)%7-3)
	}
	series := timeseries.New(values)

	model := New(1, 1, 0, 0, 0, 0, 0)
	require.NoError(t, model.Fit(series))

	_, lower, upper, err := model.PredictWithInterval(12, 0.95)
	require.NoError(t, err)

	firstWidth := upper[0] - lower[0]
	lastWidth := upper[11] - lower[11]
	require.Greater(t, firstWidth, 0.0)

	// With d=1 the standard error scales by sqrt(h+1).
	assert.Greater(t, lastWidth, firstWidth)
	assert.InDelta(t, math.Sqrt(12), lastWidth/firstWidth, 1e-6)
}

func TestForecastContinuesTrendExactly(t *testing.T) {
	// A noiseless linear series differenced once is constant, so the
	// integrated forecast must extend the line exactly.
	n := 30
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 5 + 2*float64(i)
	}
	series := timeseries.New(values)

	model := New(0, 1, 0, 0, 0, 0, 0)
	require.NoError(t, model.Fit(series))

	point, lower, upper, err := model.Forecast(4)
	require.NoError(t, err)

	for h := 0; h < 4; h++ {
		want := 5 + 2*float64(n+h)
		assert.InDelta(t, want, point[h], 1e-9)
		// Perfect fit means zero residual variance and collapsed bounds.
		assert.InDelta(t, want, lower[h], 1e-9)
		assert.InDelta(t, want, upper[h], 1e-9)
	}
}

func TestForecastContinuesQuadraticExactly(t *testing.T) {
	// A noiseless quadratic differenced twice is constant, so the
	// integrated forecast must extend the parabola exactly. Each
	// integration pass has to be seeded by the last value of the
	// intermediate difference series, not the last observation.
	n := 30
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = float64(i * i)
	}
	series := timeseries.New(values)

	model := New(0, 2, 0, 0, 0, 0, 0)
	require.NoError(t, model.Fit(series))

	point, lower, upper, err := model.Forecast(3)
	require.NoError(t, err)

	for h := 0; h < 3; h++ {
		want := float64((n + h) * (n + h))
		assert.InDelta(t, want, point[h], 1e-9)
		assert.InDelta(t, want, lower[h], 1e-9)
		assert.InDelta(t, want, upper[h], 1e-9)
	}
}

func TestForecastRepeatsSeasonExactly(t *testing.T) {
	// A purely periodic series seasonally differenced is all zeros, so
	// the integrated forecast must replay the last observed cycle.
	base := []float64{40, 55, 35, 50}
	n := 32
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = base[i%4]
	}
	series := timeseries.New(values)

	model := New(0, 0, 0, 0, 1, 0, 4)
	require.NoError(t, model.Fit(series))

	point, _, _, err := model.Forecast(8)
	require.NoError(t, err)

	for h := 0; h < 8; h++ {
		assert.InDelta(t, base[h%4], point[h], 1e-9)
	}
}

func TestResidualsAndFittedValues(t *testing.T) {
	series := monthlySeries(120)
	model := New(1, 0, 0, 1, 0, 0, 12)
	require.NoError(t, model.Fit(series))

	residuals := model.Residuals()
	fitted := model.FittedValues()
	require.Len(t, residuals, 120)
	require.Len(t, fitted, 120)

	mean := 0.0
	for i := range residuals {
		assert.False(t, math.IsNaN(residuals[i]))
		assert.InDelta(t, series.Values[i], fitted[i]+residuals[i], 1e-9)
		mean += residuals[i]
	}
	t.Logf("residual mean: %f", mean/float64(len(residuals)))

	// Accessors hand out copies, not the internal state.
	residuals[0] = 12345
	assert.NotEqual(t, 12345.0, model.Residuals()[0])
}

func TestSummary(t *testing.T) {
	series := monthlySeries(120)
	model := New(1, 0, 0, 1, 0, 0, 12)
	require.NoError(t, model.Fit(series))

	s := model.Summary()
	require.NotNil(t, s)

	assert.Equal(t, model.Order, s.Order)
	assert.Equal(t, 120, s.NObs)
	assert.Equal(t, model.IC, s.IC)
	require.NotNil(t, s.LjungBox)
	require.NotNil(t, s.DurbinWatson)
	// Ten autocorrelation lags minus the three estimated parameters
	// (two ARMA coefficients plus the intercept).
	assert.Equal(t, 7, s.LjungBox.DOF)
}

func TestMultipleOrders(t *testing.T) {
	series := monthlySeries(120)

	tests := []struct {
		name  string
		order [7]int
	}{
		{"AR(1)", [7]int{1, 0, 0, 0, 0, 0, 0}},
		{"MA(1)", [7]int{0, 0, 1, 0, 0, 0, 0}},
		{"ARIMA(1,1,1)", [7]int{1, 1, 1, 0, 0, 0, 0}},
		{"SARIMA(1,0,0)(1,0,0)[12]", [7]int{1, 0, 0, 1, 0, 0, 12}},
		{"SARIMA(1,1,1)(1,1,1)[12]", [7]int{1, 1, 1, 1, 1, 1, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.order
			model := New(o[0], o[1], o[2], o[3], o[4], o[5], o[6])
			if err := model.Fit(series); err != nil {
				t.Logf("fit failed (acceptable for some orders): %v", err)
				return
			}
			require.NotNil(t, model.IC)
			assert.False(t, math.IsNaN(model.AICc()))
			t.Logf("%s AICc: %f", tt.name, model.AICc())
		})
	}
}

func TestWeeklyData(t *testing.T) {
	// Daily counts with a weekly cycle, the shape reporting pipelines
	// feed into this package.
	n := 140
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + 0.2*float64(i)
		if i%7 == 0 || i%7 == 1 {
			base -= 25 // weekend-style dip
		}
		values[i] = base + float64((i*5)%3-1)
	}
	series := timeseries.New(values)

	model := New(1, 0, 0, 1, 0, 0, 7)
	require.NoError(t, model.Fit(series))

	forecasts, err := model.Predict(14)
	require.NoError(t, err)
	require.Len(t, forecasts, 14)
	for _, f := range forecasts {
		assert.False(t, math.IsNaN(f))
		assert.False(t, math.IsInf(f, 0))
	}
}

func TestQuarterlyData(t *testing.T) {
	n := 80
	pattern := []float64{15, -5, -15, 5}
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 200 + 1.5*float64(i) + pattern[i%4] + float64(i%3-1)
	}
	series := timeseries.New(values)

	model := New(1, 1, 0, 0, 1, 0, 4)
	require.NoError(t, model.Fit(series))

	forecasts, err := model.Predict(8)
	require.NoError(t, err)
	for _, f := range forecasts {
		assert.False(t, math.IsNaN(f))
		assert.False(t, math.IsInf(f, 0))
	}
}

func TestYuleWalker(t *testing.T) {
	// For an AR(1) autocorrelation sequence rho^k the solution is rho,
	// and higher-order coefficients vanish.
	acf := []float64{1, 0.6, 0.36, 0.216}

	phi := yuleWalker(acf, 1)
	require.Len(t, phi, 1)
	assert.InDelta(t, 0.6, phi[0], 1e-12)

	phi = yuleWalker(acf, 2)
	require.Len(t, phi, 2)
	assert.InDelta(t, 0.6, phi[0], 1e-12)
	assert.InDelta(t, 0.0, phi[1], 1e-12)

	assert.Nil(t, yuleWalker(acf, 0))
	assert.Nil(t, yuleWalker([]float64{1}, 1))
}
