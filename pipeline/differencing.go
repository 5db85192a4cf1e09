package pipeline

import (
	"fmt"

	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

// DifferencingDecision records the differencing orders chosen for a series
// together with the stationarity evidence behind them. A test result is
// nil when that test could not run, for example on a series the chosen
// differencing left too short, or on a constant series whose Dickey-Fuller
// regression is singular.
type DifferencingDecision struct {
	// D is the non-seasonal differencing order, from sequential KPSS
	// testing.
	D int

	// SeasonalD is the seasonal differencing order, from the seasonal
	// strength rule.
	SeasonalD int

	// KPSSBefore and ADFBefore test the series as given.
	KPSSBefore *stats.KPSSResult
	ADFBefore  *stats.ADFResult

	// KPSSAfter and ADFAfter test the series after applying SeasonalD
	// seasonal and D regular differences.
	KPSSAfter *stats.KPSSResult
	ADFAfter  *stats.ADFResult

	// Confirmed reports that KPSS fails to reject stationarity of the
	// differenced series.
	Confirmed bool

	// Disagreement reports that the ADF cross-check contradicts the KPSS
	// verdict on the differenced series. The KPSS-chosen order stands
	// either way; callers decide how loudly to complain.
	Disagreement bool
}

// SelectDifferencing chooses the seasonal and non-seasonal differencing
// orders for a series and cross-checks the outcome.
//
// The seasonal order comes first, from the seasonal strength of a
// classical decomposition. The non-seasonal order then comes from
// sequential KPSS testing of the seasonally differenced series. A
// confirmatory KPSS run on the fully differenced series sets Confirmed,
// and an ADF run cross-checks it from the opposite null hypothesis. Both
// verdicts compare the test statistic against the critical value at
// alpha; values of alpha outside (0, 1) fall back to 0.05.
func SelectDifferencing(s *timeseries.Series, period int, alpha float64) (*DifferencingDecision, error) {
	if s == nil || s.Len() < 10 {
		n := 0
		if s != nil {
			n = s.Len()
		}
		return nil, fmt.Errorf("%w: need at least 10 observations, have %d", ErrTooShort, n)
	}
	if s.HasUndefined() {
		return nil, ErrUndefinedValues
	}
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.05
	}

	dec := &DifferencingDecision{}

	if period > 1 {
		dec.SeasonalD = stats.NSDiffs(s, period, 1)
	}
	deseasoned := s
	for i := 0; i < dec.SeasonalD; i++ {
		deseasoned = deseasoned.SeasonalDiff(period)
	}

	dec.D = stats.NDiffs(deseasoned, 2, "kpss")
	differenced := deseasoned
	for i := 0; i < dec.D; i++ {
		differenced = differenced.Diff()
	}

	dec.KPSSBefore = stats.KPSS(s, "c", 0)
	dec.ADFBefore = stats.ADF(s, 0)
	dec.KPSSAfter = stats.KPSS(differenced, "c", 0)
	dec.ADFAfter = stats.ADF(differenced, 0)

	if dec.KPSSAfter == nil {
		return nil, fmt.Errorf("%w: %d observations left after differencing", ErrTooShort, differenced.Len())
	}

	dec.Confirmed = !dec.KPSSAfter.RejectsStationarity(alpha)

	// The ADF null is a unit root, so agreement means it rejects exactly
	// when KPSS fails to reject. An absent ADF result cannot disagree.
	if dec.ADFAfter != nil {
		dec.Disagreement = dec.Confirmed != dec.ADFAfter.RejectsUnitRoot(alpha)
	}

	return dec, nil
}
