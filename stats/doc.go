// Package stats provides statistical tests and analysis functions for time series.
//
// This package includes stationarity tests, autocorrelation functions,
// the weekday reporting-cycle diagnostic, and residual diagnostics for
// model validation.
//
// # Stationarity Tests
//
// Test whether a time series is stationary:
//
//	// Augmented Dickey-Fuller test
//	// H0: Series has unit root (non-stationary)
//	adf := stats.ADF(series, 0)
//	fmt.Printf("ADF: stat=%.4f, p=%.4f\n", adf.Statistic, adf.PValue)
//	if adf.RejectsUnitRoot(0.05) {
//	    // statistic is below the 5% critical value
//	}
//
//	// KPSS test
//	// H0: Series is stationary
//	kpss := stats.KPSS(series, "c", 0)
//	if kpss.RejectsStationarity(0.05) {
//	    // differencing is needed
//	}
//
//	// Phillips-Perron test
//	pp := stats.PhillipsPerron(series, 0)
//
// Decisions always compare the test statistic against the critical value
// at the chosen significance level (or equivalently the p-value against
// the level). A p-value is never compared against a statistic.
//
// # Differencing Analysis
//
// Determine the differencing orders:
//
//	// Number of first differences needed
//	d := stats.NDiffs(series, 2, "kpss")
//
//	// Number of seasonal differences needed
//	sd := stats.NSDiffs(series, 7, 1) // period=7 for a weekly cycle
//
// # Weekday Effect
//
// Quantify a weekly reporting cycle in daily data:
//
//	effect, err := stats.WeekdayEffect(series)
//	fmt.Printf("lowest mean on %s, imbalance %.2f\n",
//	    effect.MinWeekday(), effect.Imbalance)
//
// # Autocorrelation Functions
//
//	acf := stats.ACF(series, 20)
//	pacf := stats.PACF(series, 20)
//
//	acfResult := stats.ACFWithConfidence(series, 20)
//	significant := stats.SignificantLags(acfResult.Values, acfResult.ConfBounds)
//
// # Residual Diagnostics
//
//	// Ljung-Box test for autocorrelation, fitdf counting every
//	// estimated model parameter
//	lb := stats.LjungBox(residuals, 10, numParams)
//	if lb.Passes(0.05) {
//	    // residuals are consistent with white noise
//	}
//
//	// Durbin-Watson statistic
//	dw := stats.DurbinWatson(residuals.Values)
//
// # Time Series Decomposition
//
//	decomp := stats.Decompose(series, 12, "additive")
//	// decomp.Trend, decomp.Seasonal, decomp.Residual
package stats
