// Package ets implements exponential smoothing state-space models with
// additive errors, the candidate provider for smooth monthly series.
package ets

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

var (
	// ErrTooShort indicates the series cannot support the specified components.
	ErrTooShort = errors.New("series too short for the specified components")
	// ErrUndefinedValues indicates the series carries NaN observations.
	ErrUndefinedValues = errors.New("series contains undefined values")
	// ErrNotFitted indicates a forecast or summary was requested before Fit.
	ErrNotFitted = errors.New("model is not fitted")
	// ErrInvalidSpec indicates an unsupported component combination.
	ErrInvalidSpec = errors.New("invalid model specification")
	// ErrNonPositiveData indicates multiplicative seasonality was requested
	// for a series with zero or negative values.
	ErrNonPositiveData = errors.New("multiplicative seasonality requires strictly positive values")
)

// Component identifies the form of a trend or seasonal term.
type Component string

const (
	None           Component = "N"
	Additive       Component = "A"
	AdditiveDamped Component = "Ad"
	Multiplicative Component = "M"
)

// Spec selects the model structure. Errors are always additive, so
// Spec{Trend: Additive, Season: Additive, Period: 12} is ETS(A,A,A)[12].
type Spec struct {
	Trend  Component
	Season Component
	Period int
}

// Validate reports whether the component combination is supported.
func (s Spec) Validate() error {
	switch s.Trend {
	case None, Additive, AdditiveDamped:
	default:
		return fmt.Errorf("%w: trend %q", ErrInvalidSpec, s.Trend)
	}
	switch s.Season {
	case None:
	case Additive, Multiplicative:
		if s.Period < 2 {
			return fmt.Errorf("%w: seasonal component needs a period of at least 2, got %d",
				ErrInvalidSpec, s.Period)
		}
	default:
		return fmt.Errorf("%w: season %q", ErrInvalidSpec, s.Season)
	}
	return nil
}

// String renders the spec in the usual ETS(error,trend,season) notation.
func (s Spec) String() string {
	if s.Season == None {
		return fmt.Sprintf("ETS(A,%s,N)", s.Trend)
	}
	return fmt.Sprintf("ETS(A,%s,%s)[%d]", s.Trend, s.Season, s.Period)
}

func (s Spec) hasTrend() bool  { return s.Trend != None }
func (s Spec) isDamped() bool  { return s.Trend == AdditiveDamped }
func (s Spec) hasSeason() bool { return s.Season != None }

// Model represents an additive-error exponential smoothing model.
type Model struct {
	Spec  Spec
	Alpha float64 // level smoothing
	Beta  float64 // trend smoothing, zero when the spec has no trend
	Gamma float64 // seasonal smoothing, zero when the spec has no season
	Phi   float64 // damping, one unless the trend is damped

	Level    float64   // final level state
	Trend    float64   // final trend state
	Seasonal []float64 // final seasonal states, one per phase

	Variance float64
	IC       *stats.InformationCriteria

	fitted       bool
	data         *timeseries.Series
	residuals    []float64
	fittedVals   []float64
	initLevel    float64
	initTrend    float64
	initSeasonal []float64
}

// New creates a model for the given spec. The spec is validated on Fit.
func New(spec Spec) *Model {
	return &Model{Spec: spec, Phi: 1}
}

// Fit estimates the smoothing parameters by minimizing the one-step sum of
// squared errors, first over a coarse grid and then by coordinate descent.
// The series must be fully defined, and a seasonal spec needs at least two
// full cycles to seed the seasonal states.
func (m *Model) Fit(series *timeseries.Series) error {
	if err := m.Spec.Validate(); err != nil {
		return err
	}
	if series.HasUndefined() {
		return ErrUndefinedValues
	}

	minLen := 10
	if m.Spec.hasSeason() && 2*m.Spec.Period > minLen {
		minLen = 2 * m.Spec.Period
	}
	if series.Len() < minLen {
		return fmt.Errorf("%w: need %d observations, have %d", ErrTooShort, minLen, series.Len())
	}

	if m.Spec.Season == Multiplicative {
		for _, v := range series.Values {
			if v <= 0 {
				return ErrNonPositiveData
			}
		}
	}

	m.data = series
	m.initStates(series.Values)

	p := m.gridSearch(series.Values)
	p = m.refine(series.Values, p)

	m.Alpha = p.alpha
	m.Beta = p.beta
	m.Gamma = p.gamma
	m.Phi = p.phi

	res := m.smooth(series.Values, p, true)
	m.residuals = res.residuals
	m.fittedVals = res.fitted
	m.Level = res.level
	m.Trend = res.trend
	m.Seasonal = res.seasonal

	n := len(m.residuals)
	k := m.NumParams()
	if n > k {
		m.Variance = res.sse / float64(n-k)
	} else {
		m.Variance = res.sse / float64(n)
	}

	m.calculateIC(res.sse)
	m.fitted = true
	return nil
}

// initStates seeds the level, trend, and seasonal states from the first
// observations. Seasonal specs fit a line through the first two cycle means
// and read the seasonal pattern off the detrended values, so a noiseless
// trend-plus-season series starts with zero error.
func (m *Model) initStates(y []float64) {
	if !m.Spec.hasSeason() {
		if m.Spec.hasTrend() {
			m.initTrend = y[1] - y[0]
			m.initLevel = y[0] - m.initTrend
		} else {
			m.initTrend = 0
			m.initLevel = y[0]
		}
		m.initSeasonal = nil
		return
	}

	period := m.Spec.Period
	mean1 := 0.0
	mean2 := 0.0
	for j := 0; j < period; j++ {
		mean1 += y[j]
		mean2 += y[period+j]
	}
	mean1 /= float64(period)
	mean2 /= float64(period)

	slope := 0.0
	if m.Spec.hasTrend() {
		slope = (mean2 - mean1) / float64(period)
	}
	// Line through the two cycle means, anchored at the first cycle's center.
	trendline := func(i int) float64 {
		return mean1 + slope*(float64(i)-float64(period-1)/2)
	}

	m.initTrend = slope
	m.initLevel = trendline(-1)

	seasonal := make([]float64, period)
	for j := 0; j < period; j++ {
		sum := 0.0
		for k := 0; k < 2; k++ {
			i := k*period + j
			if m.Spec.Season == Multiplicative {
				base := trendline(i)
				if base <= 0 {
					base = mean1
				}
				sum += y[i] / base
			} else {
				sum += y[i] - trendline(i)
			}
		}
		seasonal[j] = sum / 2
	}

	// Normalize: additive indices sum to zero, multiplicative average to one.
	total := 0.0
	for _, s := range seasonal {
		total += s
	}
	if m.Spec.Season == Multiplicative {
		mean := total / float64(period)
		if mean != 0 {
			for j := range seasonal {
				seasonal[j] /= mean
			}
		}
	} else {
		mean := total / float64(period)
		for j := range seasonal {
			seasonal[j] -= mean
		}
	}
	m.initSeasonal = seasonal
}

// smoothParams bundles the free parameters during estimation.
type smoothParams struct {
	alpha, beta, gamma, phi float64
}

// clampParams applies the admissibility bounds: alpha in (0,1), beta below
// alpha, gamma below 1-alpha, phi in the usual damping band.
func (m *Model) clampParams(p smoothParams) smoothParams {
	p.alpha = clamp(p.alpha, 1e-4, 0.9999)
	if m.Spec.hasTrend() {
		p.beta = clamp(p.beta, 1e-4, p.alpha)
	} else {
		p.beta = 0
	}
	if m.Spec.hasSeason() {
		p.gamma = clamp(p.gamma, 1e-4, math.Max(1e-4, 1-p.alpha))
	} else {
		p.gamma = 0
	}
	if m.Spec.isDamped() {
		p.phi = clamp(p.phi, 0.8, 0.98)
	} else {
		p.phi = 1
	}
	return p
}

// gridSearch scans a coarse parameter grid and returns the best combination.
func (m *Model) gridSearch(y []float64) smoothParams {
	alphas := []float64{0.1, 0.3, 0.5, 0.7, 0.9}
	betas := []float64{0}
	if m.Spec.hasTrend() {
		betas = []float64{0.01, 0.05, 0.1, 0.3}
	}
	gammas := []float64{0}
	if m.Spec.hasSeason() {
		gammas = []float64{0.05, 0.1, 0.2, 0.3}
	}
	phis := []float64{1}
	if m.Spec.isDamped() {
		phis = []float64{0.8, 0.9, 0.98}
	}

	best := smoothParams{alpha: 0.3, beta: betas[0], gamma: gammas[0], phi: phis[0]}
	best = m.clampParams(best)
	bestSSE := math.Inf(1)

	for _, a := range alphas {
		for _, b := range betas {
			if m.Spec.hasTrend() && b >= a {
				continue
			}
			for _, g := range gammas {
				if m.Spec.hasSeason() && g >= 1-a {
					continue
				}
				for _, ph := range phis {
					p := m.clampParams(smoothParams{alpha: a, beta: b, gamma: g, phi: ph})
					sse := m.smooth(y, p, false).sse
					if sse < bestSSE {
						bestSSE = sse
						best = p
					}
				}
			}
		}
	}
	return best
}

// refine polishes the grid winner by coordinate descent with a shrinking
// step, holding each parameter inside its bounds.
func (m *Model) refine(y []float64, p smoothParams) smoothParams {
	bestSSE := m.smooth(y, p, false).sse

	try := func(cand smoothParams) bool {
		cand = m.clampParams(cand)
		if cand == p {
			return false
		}
		sse := m.smooth(y, cand, false).sse
		if sse < bestSSE-1e-12 {
			bestSSE = sse
			p = cand
			return true
		}
		return false
	}

	step := 0.05
	for step >= 1e-4 {
		improved := false
		for _, dir := range []float64{step, -step} {
			cand := p
			cand.alpha += dir
			improved = try(cand) || improved

			if m.Spec.hasTrend() {
				cand = p
				cand.beta += dir
				improved = try(cand) || improved
			}
			if m.Spec.hasSeason() {
				cand = p
				cand.gamma += dir
				improved = try(cand) || improved
			}
			if m.Spec.isDamped() {
				cand = p
				cand.phi += dir
				improved = try(cand) || improved
			}
		}
		if !improved {
			step /= 2
		}
	}
	return p
}

// smoothResult carries the output of one smoothing pass.
type smoothResult struct {
	sse       float64
	residuals []float64
	fitted    []float64
	level     float64
	trend     float64
	seasonal  []float64
}

// smooth runs the additive-error recursions over y with the given
// parameters, starting from the seeded states. With record set it also
// collects residuals and fitted values.
func (m *Model) smooth(y []float64, p smoothParams, record bool) smoothResult {
	n := len(y)
	l := m.initLevel
	b := m.initTrend
	var seas []float64
	period := 1
	if m.Spec.hasSeason() {
		period = m.Spec.Period
		seas = make([]float64, period)
		copy(seas, m.initSeasonal)
	}

	res := smoothResult{}
	if record {
		res.residuals = make([]float64, n)
		res.fitted = make([]float64, n)
	}

	for t := 0; t < n; t++ {
		tb := 0.0
		switch m.Spec.Trend {
		case Additive:
			tb = b
		case AdditiveDamped:
			tb = p.phi * b
		}
		base := l + tb

		var yhat float64
		idx := t % period
		switch m.Spec.Season {
		case Additive:
			yhat = base + seas[idx]
		case Multiplicative:
			yhat = base * seas[idx]
		default:
			yhat = base
		}

		e := y[t] - yhat
		if record {
			res.fitted[t] = yhat
			res.residuals[t] = e
		}
		res.sse += e * e

		switch m.Spec.Season {
		case Multiplicative:
			den := seas[idx]
			if math.Abs(den) < 1e-10 || math.Abs(base) < 1e-10 {
				res.sse = math.Inf(1)
				res.level, res.trend, res.seasonal = l, b, seas
				return res
			}
			l = base + p.alpha*e/den
			if m.Spec.hasTrend() {
				b = tb + p.beta*e/den
			}
			seas[idx] = den + p.gamma*e/base
		case Additive:
			l = base + p.alpha*e
			if m.Spec.hasTrend() {
				b = tb + p.beta*e
			}
			seas[idx] = seas[idx] + p.gamma*e
		default:
			l = base + p.alpha*e
			if m.Spec.hasTrend() {
				b = tb + p.beta*e
			}
		}
	}

	if math.IsNaN(res.sse) {
		res.sse = math.Inf(1)
	}
	res.level = l
	res.trend = b
	res.seasonal = seas
	return res
}

// calculateIC derives the information criteria from the Gaussian
// log-likelihood of the one-step errors.
func (m *Model) calculateIC(sse float64) {
	n := len(m.residuals)
	k := m.NumParams()

	logLik := math.Inf(-1)
	if m.Variance > 0 {
		logLik = -float64(n)/2*math.Log(2*math.Pi) - float64(n)/2*math.Log(m.Variance) - sse/(2*m.Variance)
	}

	m.IC = stats.CalculateIC(logLik, n, k)
}

// NumParams returns the number of estimated smoothing parameters. The state
// seeds come from closed-form initialization and are not counted.
func (m *Model) NumParams() int {
	k := 1 // alpha
	if m.Spec.hasTrend() {
		k++
	}
	if m.Spec.hasSeason() {
		k++
	}
	if m.Spec.isDamped() {
		k++
	}
	return k
}

// AICc returns the corrected Akaike information criterion of the fit.
// +Inf before fitting, so an unfitted model never wins a comparison.
func (m *Model) AICc() float64 {
	if m.IC == nil {
		return math.Inf(1)
	}
	return m.IC.AICc
}

// Predict generates point forecasts for the specified number of steps.
func (m *Model) Predict(steps int) ([]float64, error) {
	forecasts, _, _, err := m.PredictWithInterval(steps, 0.95)
	return forecasts, err
}

// Forecast generates point forecasts with 95% interval bounds. It is the
// signature the evaluation layer consumes.
func (m *Model) Forecast(steps int) (point, lower, upper []float64, err error) {
	return m.PredictWithInterval(steps, 0.95)
}

// PredictWithInterval generates forecasts with prediction intervals at the
// given confidence level. Interval widths follow the analytic forecast
// variance of the additive structures; a multiplicative season reuses the
// same growth as an approximation.
func (m *Model) PredictWithInterval(steps int, confidence float64) (forecasts, lower, upper []float64, err error) {
	if !m.fitted {
		return nil, nil, nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, nil, nil, errors.New("steps must be at least 1")
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}

	n := m.data.Len()
	forecasts = make([]float64, steps)
	for h := 1; h <= steps; h++ {
		base := m.Level
		switch m.Spec.Trend {
		case Additive:
			base += float64(h) * m.Trend
		case AdditiveDamped:
			base += m.Trend * dampedSum(m.Phi, h)
		}

		if m.Spec.hasSeason() {
			idx := (n + h - 1) % m.Spec.Period
			if m.Spec.Season == Multiplicative {
				base *= m.Seasonal[idx]
			} else {
				base += m.Seasonal[idx]
			}
		}
		forecasts[h-1] = base
	}

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile((1 + confidence) / 2)

	lower = make([]float64, steps)
	upper = make([]float64, steps)
	sumC2 := 0.0
	for h := 1; h <= steps; h++ {
		if h > 1 {
			c := m.errorWeight(h - 1)
			sumC2 += c * c
		}
		se := math.Sqrt(m.Variance * (1 + sumC2))
		lower[h-1] = forecasts[h-1] - z*se
		upper[h-1] = forecasts[h-1] + z*se
	}

	return forecasts, lower, upper, nil
}

// errorWeight is the coefficient c_j linking the error at lead j to the
// h-step forecast error in the additive state-space form.
func (m *Model) errorWeight(j int) float64 {
	c := m.Alpha
	switch m.Spec.Trend {
	case Additive:
		c += m.Beta * float64(j)
	case AdditiveDamped:
		c += m.Beta * dampedSum(m.Phi, j)
	}
	if m.Spec.hasSeason() && j%m.Spec.Period == 0 {
		c += m.Gamma
	}
	return c
}

// dampedSum is phi + phi^2 + ... + phi^h.
func dampedSum(phi float64, h int) float64 {
	return phi * (1 - math.Pow(phi, float64(h))) / (1 - phi)
}

// Residuals returns a copy of the one-step errors.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.residuals))
	copy(result, m.residuals)
	return result
}

// FittedValues returns a copy of the in-sample one-step predictions.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.fittedVals))
	copy(result, m.fittedVals)
	return result
}

// Summary represents a fitted-model report with residual diagnostics.
type Summary struct {
	Spec         Spec
	Alpha        float64
	Beta         float64
	Gamma        float64
	Phi          float64
	Level        float64
	Trend        float64
	Seasonal     []float64
	Variance     float64
	IC           *stats.InformationCriteria
	NObs         int
	LjungBox     *stats.LjungBoxResult
	DurbinWatson *stats.DurbinWatsonResult
}

// Summary returns a summary of the fitted model, nil before Fit.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	residSeries := timeseries.New(m.residuals)
	lb := stats.LjungBox(residSeries, 10, m.NumParams())
	dw := stats.DurbinWatson(m.residuals)

	return &Summary{
		Spec:         m.Spec,
		Alpha:        m.Alpha,
		Beta:         m.Beta,
		Gamma:        m.Gamma,
		Phi:          m.Phi,
		Level:        m.Level,
		Trend:        m.Trend,
		Seasonal:     m.Seasonal,
		Variance:     m.Variance,
		IC:           m.IC,
		NObs:         m.data.Len(),
		LjungBox:     lb,
		DurbinWatson: dw,
	}
}

func clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
