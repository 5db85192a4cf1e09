// Package eval evaluates candidate forecasting models against a series and
// picks the best one by information criteria, gated on residual diagnostics.
//
// Candidates are configuration, not search: each one names a model family
// and fixed structure (a SARIMA order or an ETS spec), and Evaluate fits
// them all. A candidate that fails to fit is recorded and skipped; it never
// aborts the run.
//
// # Basic Usage
//
//	candidates := []eval.Candidate{
//	    eval.SARIMACandidate("weekly", 1, 1, 1, 1, 0, 0, 7),
//	    eval.SARIMACandidate("airline", 0, 1, 1, 0, 1, 1, 7),
//	}
//
//	results := eval.Evaluate(series, candidates, eval.Options{})
//	best, err := eval.Select(results, 0.05)
//	if err != nil {
//	    log.Fatal(err) // no candidate passed the residual gate
//	}
//
//	fc, _ := best.Forecast(14)
//
// Select keeps only candidates whose residuals show no significant
// autocorrelation (Ljung-Box p at or above the level), then takes the
// minimum AICc; near-ties go to the model with fewer parameters.
//
// # Candidate Files
//
// LoadSpecs reads named candidates from YAML:
//
//	- name: weekly-airline
//	  type: sarima
//	  order: {p: 0, d: 1, q: 1, sp: 0, sd: 1, sq: 1, m: 7}
//	- name: holt-winters
//	  type: ets
//	  trend: A
//	  season: A
//	  period: 12
//
// Spec.Candidate binds each entry to its provider package.
//
// # Accuracy
//
// Measure compares forecasts against a holdout:
//
//	acc, _ := eval.Measure(test.Values, fc.Mean)
//	fmt.Printf("RMSE=%.4f MAE=%.4f MAPE=%.2f%%\n", acc.RMSE, acc.MAE, acc.MAPE)
package eval
