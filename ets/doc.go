// Package ets implements exponential smoothing (ETS) state-space models with
// additive errors.
//
// An ETS model maintains level, trend, and seasonal states updated by
// error-correction recursions. The spec picks the structure: trend N (none),
// A (additive), or Ad (additive damped); season N (none), A (additive), or
// M (multiplicative). Smoothing parameters are estimated by a coarse grid
// search followed by coordinate descent on the one-step sum of squared errors.
//
// # Basic Usage
//
// Fit simple exponential smoothing to a series without trend or season:
//
//	model := ets.New(ets.Spec{Trend: ets.None, Season: ets.None})
//
//	err := model.Fit(series)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	forecasts, _ := model.Predict(12)
//
// # Common Models
//
// Popular configurations:
//
//	// Holt's linear trend: ETS(A,A,N)
//	model := ets.New(ets.Spec{Trend: ets.Additive, Season: ets.None})
//
//	// Damped trend for saturating growth: ETS(A,Ad,N)
//	model := ets.New(ets.Spec{Trend: ets.AdditiveDamped, Season: ets.None})
//
//	// Holt-Winters for monthly data: ETS(A,A,A)[12]
//	model := ets.New(ets.Spec{Trend: ets.Additive, Season: ets.Additive, Period: 12})
//
// A multiplicative season requires strictly positive observations; Fit
// returns ErrNonPositiveData otherwise. Seasonal specs need at least two
// full cycles to seed the seasonal states.
//
// # Prediction Intervals
//
// PredictWithInterval widens intervals with the analytic forecast variance
// of the additive structures; for a multiplicative season the same growth
// is used as an approximation:
//
//	point, lower, upper, err := model.PredictWithInterval(12, 0.95)
//
// # Model Selection
//
// Use information criteria to compare fitted models:
//
//	fmt.Printf("AIC: %.2f, AICc: %.2f, BIC: %.2f\n",
//	    model.IC.AIC, model.IC.AICc, model.IC.BIC)
//
// To compare ETS specs against SARIMA orders with residual checks, use the
// eval package.
package ets
