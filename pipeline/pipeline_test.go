package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/timeseries"
)

// reportingGapSeries is a constant level with every seventh observation
// zeroed, the shape of a weekly collection dropout. Synthetic timestamps
// start on a Wednesday, so offset 5 lands on Mondays.
func reportingGapSeries(n int, level float64, offset int) *timeseries.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = level
		if i%7 == offset {
			values[i] = 0
		}
	}
	return timeseries.New(values)
}

// nearUnitRootSeries follows an AR(1) close to the unit circle, driven by
// deterministic hash noise. KPSS sees a level to revert to while the ADF
// regression lacks the power to reject its unit-root null, the classic
// case of the two test families disagreeing.
func nearUnitRootSeries(n int, phi, level float64) *timeseries.Series {
	const burn = 50
	values := make([]float64, 0, n)
	v := 0.0
	for t := 0; t < n+burn; t++ {
		v = phi*v + hashNoise(t)
		if t >= burn {
			values = append(values, level+v)
		}
	}
	return timeseries.New(values)
}

func hashNoise(i int) float64 {
	x := math.Sin(float64(i+1)) * 43758.5453123
	return x - math.Floor(x) - 0.5
}

func TestDetectOnset(t *testing.T) {
	s := timeseries.New([]float64{0, 0, 1, 2, 9, 12, 30, 45})

	onset, err := DetectOnset(s, 10)
	require.NoError(t, err)
	assert.Equal(t, s.Timestamps[5], onset, "first observation at or above the threshold")

	_, err = DetectOnset(s, 100)
	assert.ErrorIs(t, err, ErrOnsetNotReached)
}

func TestDetectOnsetSkipsUndefined(t *testing.T) {
	s := timeseries.New([]float64{math.NaN(), 50, 60})

	onset, err := DetectOnset(s, 10)
	require.NoError(t, err)
	assert.Equal(t, s.Timestamps[1], onset)
}

func TestNewDefaults(t *testing.T) {
	c := New(Config{HalfWindow: -2}, nil)
	require.NotNil(t, c)
	assert.Equal(t, 0.05, c.cfg.Alpha)
	assert.Equal(t, 0, c.cfg.HalfWindow)
	assert.NotNil(t, c.log)
}

func TestRunEmptySeries(t *testing.T) {
	c := New(Config{}, nil)

	_, err := c.Run(context.Background(), timeseries.New(nil))
	assert.ErrorIs(t, err, ErrNoObservations)

	_, err = c.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoObservations)
}

func TestRunCutoffTruncation(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i) + 10
	}
	s := timeseries.New(values)

	c := New(Config{Cutoff: s.Timestamps[10]}, nil)
	res, err := c.Run(context.Background(), s)
	require.NoError(t, err)

	assert.Same(t, s, res.Raw)
	assert.Equal(t, 30, res.Raw.Len(), "input series stays untouched")
	assert.Equal(t, 20, res.Truncated.Len())
	assert.Equal(t, 20.0, res.Truncated.Values[0])
	assert.Nil(t, res.Smoothed, "smoothing disabled")
	assert.Equal(t, 0.0, res.Transform.Lambda, "no zeros, log transform")
	require.NotNil(t, res.Decision)
}

func TestRunOnsetTruncation(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = float64(i)
	}
	s := timeseries.New(values)

	c := New(Config{OnsetThreshold: 10}, nil)
	res, err := c.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 30, res.Truncated.Len())
	assert.Equal(t, 10.0, res.Truncated.Values[0])

	c = New(Config{OnsetThreshold: 1000}, nil)
	_, err = c.Run(context.Background(), s)
	assert.ErrorIs(t, err, ErrOnsetNotReached)
}

func TestRunCutoffBeyondData(t *testing.T) {
	s := timeseries.New([]float64{1, 2, 3})

	c := New(Config{Cutoff: s.Timestamps[2].AddDate(0, 0, 1)}, nil)
	_, err := c.Run(context.Background(), s)
	assert.ErrorIs(t, err, ErrAllTruncated)
}

func TestRunWeeklyReportingGap(t *testing.T) {
	s := reportingGapSeries(30, 100, 5)

	c := New(Config{HalfWindow: 3, Period: 7}, nil)
	res, err := c.Run(context.Background(), s)
	require.NoError(t, err)

	// The diagnostic pins the dropout to its weekday.
	require.NotNil(t, res.Weekday)
	assert.Equal(t, time.Monday, res.Weekday.MinWeekday())
	assert.InDelta(t, 0.0, res.Weekday.Means[time.Monday], 1e-9)
	assert.Greater(t, res.Weekday.Imbalance, 1.0, "weekly dropout dominates the spread")

	// A full seven-day window spans exactly one gap, so no smoothed value
	// drops anywhere near zero.
	require.NotNil(t, res.Smoothed)
	assert.Equal(t, 30, res.Smoothed.Len())
	defined := 0
	for _, v := range res.Smoothed.Values {
		if math.IsNaN(v) {
			continue
		}
		defined++
		assert.GreaterOrEqual(t, v, 70.0)
		assert.InDelta(t, 600.0/7, v, 1e-9)
	}
	assert.Equal(t, 24, defined, "three boundary positions on each side are undefined")

	assert.Equal(t, 0.5, res.Transform.Lambda, "zeros in the counts force the square root")

	require.NotNil(t, res.Decision)
	assert.Equal(t, 0, res.Decision.D)
	assert.Equal(t, 0, res.Decision.SeasonalD)
	assert.True(t, res.Decision.Confirmed)
	assert.False(t, res.Decision.Disagreement)
	assert.Nil(t, res.Decision.ADFAfter, "constant series leaves the Dickey-Fuller regression singular")
}

func TestRunTransformOverride(t *testing.T) {
	s := meanRevertingSeries(220, 100)

	// Without zeros the automatic choice is the log.
	res, err := New(Config{}, nil).Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, res.Transform.IsLog())

	override := &timeseries.PowerTransform{Lambda: 0.5}
	res, err = New(Config{Transform: override}, nil).Run(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 0.5, res.Transform.Lambda)
	for i, v := range res.Transformed.Values {
		assert.InDelta(t, math.Sqrt(s.Values[i]), v, 1e-12)
	}
}

func TestRunWarnsOnTestDisagreement(t *testing.T) {
	s := nearUnitRootSeries(150, 0.95, 50)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	c := New(Config{}, logger)
	res, err := c.Run(context.Background(), s)
	require.NoError(t, err)

	require.NotNil(t, res.Decision)
	assert.Equal(t, 0, res.Decision.D, "the KPSS recommendation stands")
	assert.True(t, res.Decision.Confirmed)
	assert.True(t, res.Decision.Disagreement)
	assert.Contains(t, buf.String(), "stationarity tests disagree")
}
