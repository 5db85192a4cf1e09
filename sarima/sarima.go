// Package sarima implements seasonal ARIMA models, the default candidate
// provider for daily count series with a weekly cycle.
package sarima

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

var (
	// ErrTooShort indicates the series cannot support the specified order.
	ErrTooShort = errors.New("series too short for the specified order")
	// ErrUndefinedValues indicates the series carries NaN observations.
	// Trim or smooth them before fitting; the estimator never imputes.
	ErrUndefinedValues = errors.New("series contains undefined values")
	// ErrNotFitted indicates a forecast or summary was requested before Fit.
	ErrNotFitted = errors.New("model is not fitted")
)

// Order represents SARIMA model order (p, d, q) x (P, D, Q)[m].
type Order struct {
	P int // Non-seasonal AR order
	D int // Non-seasonal differencing order
	Q int // Non-seasonal MA order
	// Seasonal components
	SP int // Seasonal AR order
	SD int // Seasonal differencing order
	SQ int // Seasonal MA order
	M  int // Seasonal period (e.g. 7 for daily data with a weekly cycle)
}

// Model represents a SARIMA model. A zero seasonal part (SP=SD=SQ=0, M=0)
// makes it a plain ARIMA(p,d,q) model.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // Non-seasonal AR coefficients
	MACoeffs  []float64 // Non-seasonal MA coefficients
	SARCoeffs []float64 // Seasonal AR coefficients
	SMACoeffs []float64 // Seasonal MA coefficients
	Intercept float64
	Variance  float64
	IC        *stats.InformationCriteria

	fitted     bool
	data       *timeseries.Series
	diffData   *timeseries.Series
	residuals  []float64
	fittedVals []float64
}

// New creates a new SARIMA model with the specified order.
func New(p, d, q, sp, sd, sq, m int) *Model {
	return &Model{
		Order: Order{
			P: p, D: d, Q: q,
			SP: sp, SD: sd, SQ: sq, M: m,
		},
		ARCoeffs:  make([]float64, p),
		MACoeffs:  make([]float64, q),
		SARCoeffs: make([]float64, sp),
		SMACoeffs: make([]float64, sq),
	}
}

// Fit fits the model to the given series by conditional sum of squares.
// The series must be fully defined: undefined (NaN) observations are a
// contract violation, not data.
func (m *Model) Fit(series *timeseries.Series) error {
	if series.HasUndefined() {
		return ErrUndefinedValues
	}

	minLen := m.Order.P + m.Order.Q + m.Order.D +
		m.Order.SP*m.Order.M + m.Order.SD*m.Order.M + m.Order.SQ*m.Order.M + 20
	if series.Len() < minLen {
		return fmt.Errorf("%w: need %d observations, have %d", ErrTooShort, minLen, series.Len())
	}

	m.data = series

	// Non-seasonal differencing first, then seasonal.
	diffSeries := series
	for i := 0; i < m.Order.D; i++ {
		diffSeries = diffSeries.Diff()
		if diffSeries.Len() == 0 {
			return fmt.Errorf("%w: differencing consumed the series", ErrTooShort)
		}
	}
	for i := 0; i < m.Order.SD; i++ {
		diffSeries = diffSeries.SeasonalDiff(m.Order.M)
		if diffSeries.Len() == 0 {
			return fmt.Errorf("%w: seasonal differencing consumed the series", ErrTooShort)
		}
	}
	m.diffData = diffSeries

	if err := m.fitCSS(); err != nil {
		return err
	}

	m.calculateIC()
	m.fitted = true
	return nil
}

// fitCSS estimates the coefficients by conditional sum of squares.
func (m *Model) fitCSS() error {
	y := m.diffData.Values
	n := len(y)
	p := m.Order.P
	sp := m.Order.SP
	period := m.Order.M

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(n)
	m.Intercept = mean

	// Yule-Walker starting values for the AR part.
	if p > 0 {
		acf := stats.ACF(m.diffData, p)
		if acf != nil {
			if phi := yuleWalker(acf, p); phi != nil {
				m.ARCoeffs = phi
			}
		}
	}

	// Seasonal AR start: damped autocorrelation at seasonal lags.
	if sp > 0 {
		acf := stats.ACF(m.diffData, sp*period)
		if acf != nil {
			for i := 0; i < sp; i++ {
				idx := (i + 1) * period
				if idx < len(acf) {
					m.SARCoeffs[i] = acf[idx] * 0.5
				}
			}
		}
	}

	// MA terms start small and let the optimizer pull them in.
	for i := range m.MACoeffs {
		m.MACoeffs[i] = 0.1
	}
	for i := range m.SMACoeffs {
		m.SMACoeffs[i] = 0.1
	}

	return m.optimizeCSS(y)
}

// optimizeCSS refines the parameters with gradient descent plus momentum,
// tracking the best solution seen and decaying the learning rate.
func (m *Model) optimizeCSS(y []float64) error {
	n := len(y)
	p := m.Order.P
	q := m.Order.Q
	sp := m.Order.SP
	sq := m.Order.SQ
	period := m.Order.M

	maxIter := 200
	tolerance := 1e-8
	learningRate := 0.005
	momentum := 0.9
	decay := 0.99

	arMomentum := make([]float64, p)
	maMomentum := make([]float64, q)
	sarMomentum := make([]float64, sp)
	smaMomentum := make([]float64, sq)

	// Start past the longest lag to avoid boundary effects, unless that
	// would leave too few usable observations.
	startIdx := max(max(p, q), max(sp*period, sq*period))
	if startIdx >= n-10 {
		startIdx = 0
	}

	bestSSE := math.Inf(1)
	bestARCoeffs := make([]float64, p)
	bestMACoeffs := make([]float64, q)
	bestSARCoeffs := make([]float64, sp)
	bestSMACoeffs := make([]float64, sq)
	noImproveCount := 0

	for iter := 0; iter < maxIter; iter++ {
		residuals := make([]float64, n)
		currentSSE := 0.0

		for t := startIdx; t < n; t++ {
			pred := m.predictOne(y, residuals, t, n)
			residuals[t] = y[t] - pred
			currentSSE += residuals[t] * residuals[t]
		}

		if currentSSE < bestSSE {
			bestSSE = currentSSE
			copy(bestARCoeffs, m.ARCoeffs)
			copy(bestMACoeffs, m.MACoeffs)
			copy(bestSARCoeffs, m.SARCoeffs)
			copy(bestSMACoeffs, m.SMACoeffs)
			noImproveCount = 0
		} else {
			noImproveCount++
		}

		if noImproveCount > 20 {
			break
		}

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		sarGrad := make([]float64, sp)
		smaGrad := make([]float64, sq)

		for t := startIdx; t < n; t++ {
			for i := 0; i < p && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * residuals[t] * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < sp; i++ {
				lag := (i + 1) * period
				if t-lag >= 0 {
					sarGrad[i] -= 2 * residuals[t] * (y[t-lag] - m.Intercept)
				}
			}
			for i := 0; i < q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * residuals[t] * residuals[t-i-1]
			}
			for i := 0; i < sq; i++ {
				lag := (i + 1) * period
				if t-lag >= 0 {
					smaGrad[i] -= 2 * residuals[t] * residuals[t-lag]
				}
			}
		}

		for i := 0; i < p; i++ {
			arMomentum[i] = momentum*arMomentum[i] + learningRate*arGrad[i]/float64(n)
			m.ARCoeffs[i] = clamp(m.ARCoeffs[i]-arMomentum[i], -0.99, 0.99)
		}
		for i := 0; i < sp; i++ {
			sarMomentum[i] = momentum*sarMomentum[i] + learningRate*sarGrad[i]/float64(n)
			m.SARCoeffs[i] = clamp(m.SARCoeffs[i]-sarMomentum[i], -0.99, 0.99)
		}
		for i := 0; i < q; i++ {
			maMomentum[i] = momentum*maMomentum[i] + learningRate*maGrad[i]/float64(n)
			m.MACoeffs[i] = clamp(m.MACoeffs[i]-maMomentum[i], -0.99, 0.99)
		}
		for i := 0; i < sq; i++ {
			smaMomentum[i] = momentum*smaMomentum[i] + learningRate*smaGrad[i]/float64(n)
			m.SMACoeffs[i] = clamp(m.SMACoeffs[i]-smaMomentum[i], -0.99, 0.99)
		}

		learningRate *= decay

		if iter > 0 && math.Abs(currentSSE-bestSSE) < tolerance {
			break
		}
	}

	copy(m.ARCoeffs, bestARCoeffs)
	copy(m.MACoeffs, bestMACoeffs)
	copy(m.SARCoeffs, bestSARCoeffs)
	copy(m.SMACoeffs, bestSMACoeffs)

	// Final pass over the whole sample for residuals and fitted values.
	m.residuals = make([]float64, n)
	m.fittedVals = make([]float64, n)
	for t := 0; t < n; t++ {
		pred := m.predictOne(y, m.residuals, t, n)
		m.fittedVals[t] = pred
		m.residuals[t] = y[t] - pred
	}

	sse := 0.0
	count := 0
	for t := startIdx; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}

	numParams := m.NumParams()
	if count > numParams {
		m.Variance = sse / float64(count-numParams)
	} else {
		m.Variance = sse / float64(count)
	}

	return nil
}

// predictOne evaluates the one-step prediction at time t given the history
// y and the residual series. Residual indices at or past limit read as zero
// (unobserved future residuals).
func (m *Model) predictOne(y, residuals []float64, t, limit int) float64 {
	p := m.Order.P
	q := m.Order.Q
	sp := m.Order.SP
	sq := m.Order.SQ
	period := m.Order.M

	pred := m.Intercept
	for i := 0; i < p && t-i-1 >= 0; i++ {
		pred += m.ARCoeffs[i] * (y[t-i-1] - m.Intercept)
	}
	for i := 0; i < sp; i++ {
		lag := (i + 1) * period
		if t-lag >= 0 {
			pred += m.SARCoeffs[i] * (y[t-lag] - m.Intercept)
		}
	}
	for i := 0; i < q && t-i-1 >= 0; i++ {
		if t-i-1 < limit {
			pred += m.MACoeffs[i] * residuals[t-i-1]
		}
	}
	for i := 0; i < sq; i++ {
		lag := (i + 1) * period
		if t-lag >= 0 && t-lag < limit {
			pred += m.SMACoeffs[i] * residuals[t-lag]
		}
	}
	return pred
}

// calculateIC derives the information criteria from the Gaussian
// log-likelihood of the residuals.
func (m *Model) calculateIC() {
	n := len(m.residuals)
	k := m.NumParams()

	sse := 0.0
	for _, r := range m.residuals {
		sse += r * r
	}

	logLik := math.Inf(-1)
	if m.Variance > 0 {
		logLik = -float64(n)/2*math.Log(2*math.Pi) - float64(n)/2*math.Log(m.Variance) - sse/(2*m.Variance)
	}

	m.IC = stats.CalculateIC(logLik, n, k)
}

// NumParams returns the number of estimated parameters: the ARMA
// coefficients plus the intercept.
func (m *Model) NumParams() int {
	return m.Order.P + m.Order.Q + m.Order.SP + m.Order.SQ + 1
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
// given confidence level.
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

	d := m.Order.D
	sd := m.Order.SD
	period := m.Order.M

	y := m.diffData.Values
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)
	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	// Iterate the recursion forward; future residuals read as zero.
	for h := 0; h < steps; h++ {
		t := n + h
		extY[t] = m.predictOne(extY, extResiduals, t, n)
		extResiduals[t] = 0
	}

	forecasts = make([]float64, steps)
	copy(forecasts, extY[n:])

	forecasts = m.integrate(forecasts)

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile((1 + confidence) / 2)

	lower = make([]float64, steps)
	upper = make([]float64, steps)
	for h := 0; h < steps; h++ {
		se := math.Sqrt(m.Variance)

		// Uncertainty grows with the horizon once the series is
		// integrated back.
		growthFactor := 1.0
		if d > 0 {
			growthFactor *= math.Sqrt(float64(h + 1))
		}
		if sd > 0 && period > 0 {
			seasonalCycles := float64(h/period + 1)
			growthFactor *= math.Sqrt(seasonalCycles)
		}

		se *= growthFactor
		lower[h] = forecasts[h] - z*se
		upper[h] = forecasts[h] + z*se
	}

	return forecasts, lower, upper, nil
}

// integrate undoes differencing to return forecasts on the original scale.
// Fit differences non-seasonally first, then seasonally, so integration
// undoes the seasonal part first and then rebuilds the difference levels
// from the deepest out. Each level is seeded by the last value of the
// corresponding intermediate series: with d=2 the first undo needs the
// last first difference, not the last observation.
func (m *Model) integrate(forecasts []float64) []float64 {
	d := m.Order.D
	sd := m.Order.SD
	period := m.Order.M
	original := m.data.Values

	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	// Walk down the non-seasonal difference levels, recording the last
	// value of each as that level's integration seed. The deepest series
	// also supplies the seasonal integration seeds.
	seeds := make([]float64, 0, d)
	level := original
	for i := 0; i < d && len(level) > 1; i++ {
		seeds = append(seeds, level[len(level)-1])
		next := make([]float64, len(level)-1)
		for j := 1; j < len(level); j++ {
			next[j-1] = level[j] - level[j-1]
		}
		level = next
	}

	// z_t = y_t - y_{t-m}  =>  y_t = z_t + y_{t-m}
	if sd > 0 && period > 0 {
		nDiff := len(level)
		for i := 0; i < sd; i++ {
			for j := 0; j < len(result); j++ {
				if j < period {
					idx := nDiff - period + j
					if idx >= 0 && idx < nDiff {
						result[j] += level[idx]
					}
				} else {
					result[j] += result[j-period]
				}
			}
		}
	}

	// y'_t = y_t - y_{t-1}  =>  cumulative sum seeded per level.
	for i := len(seeds) - 1; i >= 0; i-- {
		for j := 0; j < len(result); j++ {
			if j == 0 {
				result[j] += seeds[i]
			} else {
				result[j] += result[j-1]
			}
		}
	}

	return result
}

// Residuals returns a copy of the model residuals on the differenced scale.
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
	Order        Order
	ARCoeffs     []float64
	MACoeffs     []float64
	SARCoeffs    []float64
	SMACoeffs    []float64
	Intercept    float64
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
		Order:        m.Order,
		ARCoeffs:     m.ARCoeffs,
		MACoeffs:     m.MACoeffs,
		SARCoeffs:    m.SARCoeffs,
		SMACoeffs:    m.SMACoeffs,
		Intercept:    m.Intercept,
		Variance:     m.Variance,
		IC:           m.IC,
		NObs:         len(m.data.Values),
		LjungBox:     lb,
		DurbinWatson: dw,
	}
}

// yuleWalker solves the Yule-Walker equations with the Levinson-Durbin
// recursion to get AR starting values from the autocorrelations.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = acf[1]
	if order == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]
	for i := 1; i < order; i++ {
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		lambda /= v

		newPhi := make([]float64, i+1)
		for j := 0; j < i; j++ {
			newPhi[j] = phi[j] - lambda*phi[i-1-j]
		}
		newPhi[i] = lambda
		copy(phi, newPhi)

		v *= 1 - lambda*lambda
		if v <= 0 {
			break
		}
	}

	return phi
}

func clamp(v, lower, upper float64) float64 { //nolint:unparam // lower is always -0.99 currently but may vary
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
