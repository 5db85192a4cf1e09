// Package sarima implements Seasonal ARIMA (SARIMA) models for time series with seasonality.
//
// SARIMA models extend ARIMA to handle seasonal patterns. A SARIMA(p,d,q)(P,D,Q)[m] model includes:
//   - Non-seasonal components: AR(p), I(d), MA(q)
//   - Seasonal components: SAR(P), SI(D), SMA(Q) at seasonal period m
//
// Setting the seasonal orders and period to zero gives a plain ARIMA(p,d,q) model.
//
// # Basic Usage
//
// Create and fit a SARIMA model for daily data with a weekly cycle (m=7):
//
//	// SARIMA(1,1,1)(1,0,0)[7]
//	model := sarima.New(1, 1, 1, 1, 0, 0, 7)
//
//	err := model.Fit(series)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Generate forecasts for the next two weeks
//	forecasts, _ := model.Predict(14)
//
// The series must be fully defined; Fit returns ErrUndefinedValues when it
// contains NaN observations, and ErrTooShort when there is not enough data
// for the requested order.
//
// # Common Models
//
// Popular SARIMA configurations:
//
//	// Airline Model: SARIMA(0,1,1)(0,1,1)[12] for monthly data
//	model := sarima.New(0, 1, 1, 0, 1, 1, 12)
//
//	// Daily counts with weekly seasonal AR: SARIMA(1,1,0)(1,0,0)[7]
//	model := sarima.New(1, 1, 0, 1, 0, 0, 7)
//
// # Seasonal Periods
//
// Common seasonal periods:
//   - Daily data with weekly seasonality: m = 7
//   - Monthly data with yearly seasonality: m = 12
//   - Quarterly data: m = 4
//   - Weekly data with yearly seasonality: m = 52
//
// # Model Selection
//
// Use information criteria to select the best model:
//
//	// Compare AICc values (lower is better)
//	fmt.Printf("AIC: %.2f, AICc: %.2f, BIC: %.2f\n",
//	    model.IC.AIC, model.IC.AICc, model.IC.BIC)
//
// To compare several candidate orders with residual checks, use the eval
// package, which ranks fitted candidates by AICc and gates them on the
// Ljung-Box test.
package sarima
