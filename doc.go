// Package goforecast provides count-series conditioning and candidate-based
// forecasting with SARIMA and exponential smoothing models.
//
// GoForecast covers the full path from a raw observed series to a vetted
// forecast: truncation and onset detection, weekday-effect diagnostics,
// centered smoothing, variance-stabilizing transforms, differencing-order
// selection by stationarity testing, and evaluation of configured model
// candidates by corrected AIC with a residual-autocorrelation gate.
//
// # Quick Start
//
// Condition a series and evaluate candidates:
//
//	cond := pipeline.New(pipeline.Config{HalfWindow: 3, Period: 7}, nil)
//	res, _ := cond.Run(ctx, series)
//
//	candidates := []eval.Candidate{
//	    eval.SARIMACandidate("drift", 0, 1, 0, 0, 0, 0, 0),
//	    eval.SARIMACandidate("weekly-airline", 0, 1, 1, 0, 1, 1, 7),
//	}
//	results := eval.Evaluate(res.Transformed, candidates, eval.Options{})
//	best, _ := eval.Select(results, 0.05)
//	fc, _ := best.Forecast(14)
//
// Forecasts come back on the transformed scale; invert them with
// res.Transform before reporting.
//
// # Packages
//
// The library is organized into the following packages:
//
//   - timeseries: series data structures, CSV input, conditioning primitives
//   - stats: stationarity tests, autocorrelation, weekday-effect diagnostics
//   - sarima: seasonal ARIMA models
//   - ets: exponential smoothing (error/trend/season) models
//   - pipeline: the conditioning pipeline and differencing decision
//   - eval: candidate evaluation, selection, forecast accuracy
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Box, G. E. P., & Jenkins, G. M. (1976). Time Series Analysis: Forecasting and Control
//   - Kwiatkowski, Phillips, Schmidt, & Shin (1992). Testing the null hypothesis of stationarity
package goforecast
