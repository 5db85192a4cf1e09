// Package eval fits candidate forecasting models, gates them on residual
// diagnostics, and ranks the survivors by AICc.
package eval

import (
	"errors"
	"fmt"
	"math"

	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

var (
	// ErrNoAdequateModel indicates no candidate both fitted and passed the
	// residual autocorrelation gate.
	ErrNoAdequateModel = errors.New("no candidate passed the residual diagnostics")
	// ErrLengthMismatch indicates actual and forecast slices differ in length.
	ErrLengthMismatch = errors.New("actual and forecast lengths differ")
	// ErrNoObservations indicates there is nothing to measure.
	ErrNoObservations = errors.New("no observations to measure")
)

// Model is the capability a fitted candidate must expose. The sarima and
// ets providers satisfy it structurally; nothing in those packages refers
// to this interface.
type Model interface {
	NumParams() int
	AICc() float64
	Residuals() []float64
	Forecast(steps int) (point, lower, upper []float64, err error)
}

// FitFunc fits a model to a series. Implementations must not mutate the
// series.
type FitFunc func(*timeseries.Series) (Model, error)

// Candidate is a named model family entry in an evaluation run.
type Candidate struct {
	Name string
	Fit  FitFunc
}

// Options tunes the evaluation. Zero values select the defaults.
type Options struct {
	// LjungBoxLags is the lag count for the residual portmanteau test
	// (default 10).
	LjungBoxLags int
	// Alpha is the significance level for the adequacy verdict recorded on
	// each result (default 0.05). Select takes its own level and
	// re-derives the verdict from the stored test.
	Alpha float64
}

func (o Options) withDefaults() Options {
	if o.LjungBoxLags <= 0 {
		o.LjungBoxLags = 10
	}
	if o.Alpha <= 0 || o.Alpha >= 1 {
		o.Alpha = 0.05
	}
	return o
}

// Result records the outcome for one candidate. Either Err is set and the
// model fields are empty, or Model/AICc/LjungBox describe a successful fit.
type Result struct {
	Name      string
	Model     Model
	AICc      float64
	NumParams int
	LjungBox  *stats.LjungBoxResult
	// Adequate reports whether the residuals showed no significant
	// autocorrelation at the evaluation alpha.
	Adequate bool
	Err      error
}

// Evaluate fits every candidate against the series. Candidates are isolated:
// a fit failure is recorded on that candidate's Result and evaluation
// continues with the rest. Results keep the input order.
func Evaluate(series *timeseries.Series, candidates []Candidate, opts Options) []Result {
	opts = opts.withDefaults()

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		r := Result{Name: c.Name, AICc: math.Inf(1)}

		model, err := c.Fit(series)
		if err != nil {
			r.Err = fmt.Errorf("fit %s: %w", c.Name, err)
			results = append(results, r)
			continue
		}

		r.Model = model
		r.AICc = model.AICc()
		r.NumParams = model.NumParams()

		residuals := model.Residuals()
		r.LjungBox = stats.LjungBox(timeseries.New(residuals), opts.LjungBoxLags, model.NumParams())
		r.Adequate = residualGate(r.LjungBox, model, opts.Alpha)

		results = append(results, r)
	}
	return results
}

// residualGate reports whether a fitted candidate's residuals pass the
// autocorrelation gate at alpha. When the portmanteau is undefined (too few
// residuals or zero variance) only an exact fit passes: all-zero residuals
// trivially carry no autocorrelation.
func residualGate(lb *stats.LjungBoxResult, m Model, alpha float64) bool {
	if lb != nil {
		return lb.Passes(alpha)
	}
	residuals := m.Residuals()
	if len(residuals) == 0 {
		return false
	}
	for _, r := range residuals {
		if r != 0 {
			return false
		}
	}
	return true
}

// aiccTolerance treats AICc values this close as tied, breaking the tie
// toward the model with fewer parameters.
const aiccTolerance = 1e-9

// Select returns the minimum-AICc result among those whose residuals show
// no significant autocorrelation at level alpha. Failed fits are skipped.
// ErrNoAdequateModel when nothing qualifies.
func Select(results []Result, alpha float64) (*Result, error) {
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.05
	}

	var best *Result
	for i := range results {
		r := &results[i]
		if r.Err != nil || r.Model == nil {
			continue
		}
		if !residualGate(r.LjungBox, r.Model, alpha) {
			continue
		}
		if math.IsNaN(r.AICc) {
			continue
		}
		if best == nil {
			best = r
			continue
		}
		switch {
		case r.AICc < best.AICc-aiccTolerance:
			best = r
		case math.Abs(r.AICc-best.AICc) <= aiccTolerance && r.NumParams < best.NumParams:
			best = r
		}
	}

	if best == nil {
		return nil, ErrNoAdequateModel
	}
	return best, nil
}

// Forecast bundles point forecasts with interval bounds at a fixed level.
type Forecast struct {
	Mean  []float64
	Lower []float64
	Upper []float64
	Level float64
}

// Forecast runs the fitted model the given number of steps ahead and
// assembles the bounds. The level is fixed at 95% on this path.
func (r *Result) Forecast(steps int) (*Forecast, error) {
	if r.Err != nil {
		return nil, fmt.Errorf("candidate %s did not fit: %w", r.Name, r.Err)
	}
	if r.Model == nil {
		return nil, fmt.Errorf("candidate %s has no fitted model", r.Name)
	}

	mean, lower, upper, err := r.Model.Forecast(steps)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", r.Name, err)
	}
	return &Forecast{Mean: mean, Lower: lower, Upper: upper, Level: 0.95}, nil
}

// Accuracy holds holdout accuracy metrics.
type Accuracy struct {
	RMSE float64
	MAE  float64
	MAPE float64
}

// Measure computes RMSE, MAE, and MAPE of a forecast against the actuals.
// MAPE terms with a zero actual are skipped in the numerator while the
// denominator stays the full count.
func Measure(actual, forecast []float64) (*Accuracy, error) {
	if len(actual) == 0 {
		return nil, ErrNoObservations
	}
	if len(actual) != len(forecast) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(actual), len(forecast))
	}

	var sq, abs, pct float64
	for i := range actual {
		d := actual[i] - forecast[i]
		sq += d * d
		abs += math.Abs(d)
		if actual[i] != 0 {
			pct += math.Abs(d) / math.Abs(actual[i]) * 100
		}
	}

	n := float64(len(actual))
	return &Accuracy{
		RMSE: math.Sqrt(sq / n),
		MAE:  abs / n,
		MAPE: pct / n,
	}, nil
}
