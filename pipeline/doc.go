// Package pipeline conditions a raw count series for model fitting.
//
// A Conditioner composes the stages in their natural order: truncation,
// weekday-effect diagnostic, centered smoothing, variance-stabilizing
// transform, and the differencing-order decision. Each stage is a pure
// function over freshly allocated series; the Conditioner adds structured
// progress logging around them and nothing else.
//
// # Basic Usage
//
//	cfg := pipeline.Config{
//	    OnsetThreshold: 1,   // drop the leading zero-count segment
//	    HalfWindow:     3,   // 7-day centered moving average
//	    Period:         7,   // weekly cycle
//	}
//	cond := pipeline.New(cfg, logger)
//
//	res, err := cond.Run(ctx, series)
//	if err != nil {
//	    return err
//	}
//
//	// res.Transformed is ready for fitting; res.Decision carries the
//	// differencing orders and the stationarity evidence behind them.
//
// # Differencing Decision
//
// SelectDifferencing is usable on its own. It picks the seasonal order
// from seasonal strength and the regular order from sequential KPSS
// testing, then confirms the result with a second KPSS run and an ADF
// cross-check. Verdicts always compare the test statistic against the
// critical value at the requested level. The two test families have
// opposite null hypotheses and occasionally disagree; the KPSS choice
// stands and the decision records the conflict.
package pipeline
