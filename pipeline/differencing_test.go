package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/timeseries"
)

// Deterministic cycles instead of random noise keep the test verdicts
// reproducible.

func trendingSeries(n int, slope float64) *timeseries.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = slope*float64(i) + float64((i*3)%7-3)*0.5
	}
	return timeseries.New(values)
}

func meanRevertingSeries(n int, level float64) *timeseries.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = level + float64((i*7)%11) - 5
	}
	return timeseries.New(values)
}

func TestSelectDifferencingTrend(t *testing.T) {
	s := trendingSeries(196, 2)

	dec, err := SelectDifferencing(s, 0, 0.05)
	require.NoError(t, err)

	assert.Equal(t, 1, dec.D, "one difference removes a linear trend")
	assert.Equal(t, 0, dec.SeasonalD)

	require.NotNil(t, dec.KPSSBefore)
	assert.True(t, dec.KPSSBefore.RejectsStationarity(0.05))
	require.NotNil(t, dec.KPSSAfter)
	assert.False(t, dec.KPSSAfter.RejectsStationarity(0.05))
	assert.True(t, dec.Confirmed)

	require.NotNil(t, dec.ADFBefore)
	assert.False(t, dec.ADFBefore.RejectsUnitRoot(0.05))
	require.NotNil(t, dec.ADFAfter)
	assert.True(t, dec.ADFAfter.RejectsUnitRoot(0.05))
	assert.False(t, dec.Disagreement)

	// The trend really is gone: both halves of the differenced series
	// average to the slope.
	diffed := s.Diff()
	mid := diffed.Len() / 2
	first := diffed.Slice(0, mid)
	second := diffed.Slice(mid, diffed.Len())
	assert.InDelta(t, 2.0, first.Mean(), 0.1)
	assert.InDelta(t, first.Mean(), second.Mean(), 0.1)
}

func TestSelectDifferencingStationary(t *testing.T) {
	s := meanRevertingSeries(220, 100)

	dec, err := SelectDifferencing(s, 0, 0.05)
	require.NoError(t, err)

	assert.Equal(t, 0, dec.D, "already stationary")
	assert.Equal(t, 0, dec.SeasonalD)

	// Zero differences leave the verdict unchanged.
	require.NotNil(t, dec.KPSSBefore)
	assert.False(t, dec.KPSSBefore.RejectsStationarity(0.05))
	require.NotNil(t, dec.KPSSAfter)
	assert.False(t, dec.KPSSAfter.RejectsStationarity(0.05))
	assert.True(t, dec.Confirmed)

	require.NotNil(t, dec.ADFAfter)
	assert.True(t, dec.ADFAfter.RejectsUnitRoot(0.05))
	assert.False(t, dec.Disagreement)
}

func TestSelectDifferencingSeasonal(t *testing.T) {
	// A zero-sum monthly pattern on a linear trend. The seasonal
	// difference cancels the pattern exactly and leaves the constant
	// yearly drift, so no regular difference is needed on top.
	pattern := []float64{0, 8, 15, 12, 5, -3, -10, -15, -12, -6, 2, 4}
	values := make([]float64, 120)
	for i := range values {
		values[i] = 100 + 0.5*float64(i) + pattern[i%12]
	}
	s := timeseries.New(values)

	dec, err := SelectDifferencing(s, 12, 0.05)
	require.NoError(t, err)

	assert.Equal(t, 1, dec.SeasonalD, "a yearly cycle wants one seasonal difference")
	assert.Equal(t, 0, dec.D)
	assert.True(t, dec.Confirmed)
	assert.False(t, dec.Disagreement)

	require.NotNil(t, dec.KPSSBefore)
	assert.True(t, dec.KPSSBefore.RejectsStationarity(0.05))
	require.NotNil(t, dec.ADFBefore)
	assert.False(t, dec.ADFBefore.RejectsUnitRoot(0.05))
	assert.Nil(t, dec.ADFAfter, "the differenced series is constant")
}

func TestSelectDifferencingDisagreement(t *testing.T) {
	s := nearUnitRootSeries(150, 0.95, 0)

	dec, err := SelectDifferencing(s, 0, 0.05)
	require.NoError(t, err)

	assert.Equal(t, 0, dec.D)
	assert.True(t, dec.Confirmed, "KPSS fails to reject stationarity")
	require.NotNil(t, dec.ADFAfter)
	assert.False(t, dec.ADFAfter.RejectsUnitRoot(0.05), "ADF cannot reject its unit root")
	assert.True(t, dec.Disagreement)
}

func TestSelectDifferencingErrors(t *testing.T) {
	_, err := SelectDifferencing(nil, 0, 0.05)
	assert.ErrorIs(t, err, ErrTooShort)

	_, err = SelectDifferencing(timeseries.New([]float64{1, 2, 3}), 0, 0.05)
	assert.ErrorIs(t, err, ErrTooShort)

	withNaN := meanRevertingSeries(20, 100)
	withNaN.Values[7] = math.NaN()
	_, err = SelectDifferencing(withNaN, 0, 0.05)
	assert.ErrorIs(t, err, ErrUndefinedValues)
}

func TestSelectDifferencingAlphaFallback(t *testing.T) {
	dec, err := SelectDifferencing(meanRevertingSeries(110, 100), 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, dec.D)
	assert.True(t, dec.Confirmed, "alpha outside (0, 1) falls back to 0.05")
}
