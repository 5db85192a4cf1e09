package stats

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast/timeseries"
)

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	NObs         int
	CriticalVals map[string]float64 // Critical values at 1%, 5%, 10%
	IsStationary bool
}

// CriticalValue returns the critical value at significance level alpha.
// Supported levels are 0.01, 0.05, and 0.10; other levels return NaN.
func (r *ADFResult) CriticalValue(alpha float64) float64 {
	return criticalAt(r.CriticalVals, alpha)
}

// RejectsUnitRoot reports whether the unit-root null is rejected at alpha.
// The decision compares the test statistic against the critical value in
// the left tail: a statistic below the critical value rejects the null.
func (r *ADFResult) RejectsUnitRoot(alpha float64) bool {
	cv := r.CriticalValue(alpha)
	return !math.IsNaN(cv) && r.Statistic < cv
}

// ADF performs the Augmented Dickey-Fuller test for unit root.
// The null hypothesis is that the series has a unit root (is non-stationary).
// Returns nil when the series is too short to regress.
func ADF(series *timeseries.Series, maxLag int) *ADFResult {
	n := series.Len()
	if n < 10 {
		return nil
	}

	// Default lag selection: floor of (n-1)^(1/3)
	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Pow(float64(n-1), 1.0/3.0)))
	}
	if maxLag >= n-1 {
		maxLag = n - 2
	}

	diff := series.Diff()

	// Regression: delta_y_t = alpha + beta*y_{t-1} + sum(gamma_i * delta_y_{t-i}) + e
	// The null beta = 0 (unit root) is tested against beta < 0 (stationary).
	nObs := n - maxLag - 1
	if nObs < 10 {
		return nil
	}

	y := make([]float64, nObs)
	X := mat.NewDense(nObs, 2+maxLag, nil)

	for i := 0; i < nObs; i++ {
		t := i + maxLag
		y[i] = diff.Values[t]

		X.Set(i, 0, 1)                // constant
		X.Set(i, 1, series.Values[t]) // lagged level
		for j := 1; j <= maxLag; j++ {
			X.Set(i, 1+j, diff.Values[t-j]) // lagged differences
		}
	}

	coeffs, se, err := olsFit(X, y)
	if err != nil || se == nil {
		return nil
	}

	// Test statistic is the t-stat for the lagged level coefficient.
	tStat := coeffs[1] / se[1]

	// Critical values for the constant, no trend regression.
	criticalVals := map[string]float64{
		"1%":  -3.43,
		"5%":  -2.86,
		"10%": -2.57,
	}

	pValue := mackinnonPValue(tStat, n, "c")

	return &ADFResult{
		Statistic:    tStat,
		PValue:       pValue,
		Lags:         maxLag,
		NObs:         nObs,
		CriticalVals: criticalVals,
		IsStationary: pValue < 0.05,
	}
}

// KPSSResult represents the result of a KPSS test.
type KPSSResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	CriticalVals map[string]float64
	IsStationary bool
}

// CriticalValue returns the critical value at significance level alpha.
// Supported levels are 0.01, 0.05, and 0.10; other levels return NaN.
func (r *KPSSResult) CriticalValue(alpha float64) float64 {
	return criticalAt(r.CriticalVals, alpha)
}

// RejectsStationarity reports whether the stationarity null is rejected at
// alpha. KPSS rejects in the right tail: a statistic above the critical
// value rejects the null.
func (r *KPSSResult) RejectsStationarity(alpha float64) bool {
	cv := r.CriticalValue(alpha)
	return !math.IsNaN(cv) && r.Statistic > cv
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test for stationarity.
// The null hypothesis is that the series is stationary. regression is "c"
// for level stationarity or "ct" for trend stationarity.
// Returns nil when the series is too short.
func KPSS(series *timeseries.Series, regression string, nlags int) *KPSSResult {
	n := series.Len()
	if n < 10 {
		return nil
	}

	// Default lag selection
	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}

	residuals := make([]float64, n)
	if regression == "ct" {
		// Remove constant and linear trend.
		ts := make([]float64, n)
		for i := range ts {
			ts[i] = float64(i)
		}
		a, b := stat.LinearRegression(ts, series.Values, nil, false)
		for i, v := range series.Values {
			residuals[i] = v - a - b*float64(i)
		}
	} else {
		mean := series.Mean()
		for i, v := range series.Values {
			residuals[i] = v - mean
		}
	}

	// Partial sums of residuals
	cumSum := make([]float64, n)
	cumSum[0] = residuals[0]
	for i := 1; i < n; i++ {
		cumSum[i] = cumSum[i-1] + residuals[i]
	}

	// Long-run variance estimator with Bartlett weights (Newey-West)
	s2 := 0.0
	for _, r := range residuals {
		s2 += r * r
	}
	s2 /= float64(n)

	for l := 1; l <= nlags; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += residuals[i] * residuals[i-l]
		}
		cov /= float64(n)
		weight := 1.0 - float64(l)/float64(nlags+1)
		s2 += 2 * weight * cov
	}

	if s2 <= 0 {
		s2 = 1e-10
	}

	etaSq := 0.0
	for _, cs := range cumSum {
		etaSq += cs * cs
	}
	kpssStat := etaSq / (float64(n) * float64(n) * s2)

	var criticalVals map[string]float64
	if regression == "ct" {
		criticalVals = map[string]float64{
			"10%": 0.119,
			"5%":  0.146,
			"1%":  0.216,
		}
	} else {
		criticalVals = map[string]float64{
			"10%": 0.347,
			"5%":  0.463,
			"1%":  0.739,
		}
	}

	pValue := kpssPValue(kpssStat, regression)

	// Null is stationarity, so the series counts as stationary when the
	// null is not rejected.
	return &KPSSResult{
		Statistic:    kpssStat,
		PValue:       pValue,
		Lags:         nlags,
		CriticalVals: criticalVals,
		IsStationary: pValue >= 0.05,
	}
}

// PhillipsPerronResult represents the result of a Phillips-Perron test.
type PhillipsPerronResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	CriticalVals map[string]float64
	IsStationary bool
}

// CriticalValue returns the critical value at significance level alpha.
// Supported levels are 0.01, 0.05, and 0.10; other levels return NaN.
func (r *PhillipsPerronResult) CriticalValue(alpha float64) float64 {
	return criticalAt(r.CriticalVals, alpha)
}

// RejectsUnitRoot reports whether the unit-root null is rejected at alpha,
// comparing the statistic against the left-tail critical value.
func (r *PhillipsPerronResult) RejectsUnitRoot(alpha float64) bool {
	cv := r.CriticalValue(alpha)
	return !math.IsNaN(cv) && r.Statistic < cv
}

// PhillipsPerron performs the Phillips-Perron test for unit root.
// Similar to ADF but corrects for serial correlation nonparametrically.
// Returns nil when the series is too short.
func PhillipsPerron(series *timeseries.Series, nlags int) *PhillipsPerronResult {
	n := series.Len()
	if n < 10 {
		return nil
	}

	if nlags <= 0 {
		nlags = int(math.Floor(4 * math.Pow(float64(n)/100, 0.25)))
	}

	diff := series.Diff()

	// OLS: delta_y_t = alpha + beta * y_{t-1} + e
	nObs := n - 1
	y := diff.Values
	X := mat.NewDense(nObs, 2, nil)
	for i := 0; i < nObs; i++ {
		X.Set(i, 0, 1)
		X.Set(i, 1, series.Values[i])
	}

	coeffs, se, err := olsFit(X, y)
	if err != nil || se == nil {
		return nil
	}

	residuals := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		residuals[i] = y[i] - coeffs[0] - coeffs[1]*series.Values[i]
	}

	// Short-run variance gamma0 and long-run variance lambda2
	gamma0 := 0.0
	for _, r := range residuals {
		gamma0 += r * r
	}
	gamma0 /= float64(nObs)

	lambda2 := gamma0
	for l := 1; l <= nlags; l++ {
		gammaL := 0.0
		for i := l; i < nObs; i++ {
			gammaL += residuals[i] * residuals[i-l]
		}
		gammaL /= float64(nObs)
		weight := 1.0 - float64(l)/float64(nlags+1)
		lambda2 += 2 * weight * gammaL
	}
	if lambda2 <= 0 {
		lambda2 = 1e-10
	}

	tStat := coeffs[1] / se[1]

	xMean := stat.Mean(series.Values[:nObs], nil)
	sumXDev2 := 0.0
	for i := 0; i < nObs; i++ {
		d := series.Values[i] - xMean
		sumXDev2 += d * d
	}

	correction := 0.0
	if lambda2 > 0 {
		correction = (lambda2 - gamma0) * math.Sqrt(float64(nObs)) /
			(2 * math.Sqrt(lambda2) * math.Sqrt(sumXDev2))
	}

	ppStat := math.Sqrt(gamma0/lambda2)*tStat - correction

	criticalVals := map[string]float64{
		"1%":  -3.43,
		"5%":  -2.86,
		"10%": -2.57,
	}

	pValue := mackinnonPValue(ppStat, n, "c")

	return &PhillipsPerronResult{
		Statistic:    ppStat,
		PValue:       pValue,
		Lags:         nlags,
		CriticalVals: criticalVals,
		IsStationary: pValue < 0.05,
	}
}

// criticalAt looks up the tabulated critical value for alpha.
func criticalAt(cvs map[string]float64, alpha float64) float64 {
	var key string
	switch {
	case math.Abs(alpha-0.01) < 1e-9:
		key = "1%"
	case math.Abs(alpha-0.05) < 1e-9:
		key = "5%"
	case math.Abs(alpha-0.10) < 1e-9:
		key = "10%"
	default:
		return math.NaN()
	}
	cv, ok := cvs[key]
	if !ok {
		return math.NaN()
	}
	return cv
}

// mackinnonPValue approximates the p-value for ADF/PP statistics using the
// MacKinnon (1994) response surface for the constant-only regression.
func mackinnonPValue(stat float64, _ int, _ string) float64 {
	switch {
	case stat < -3.96:
		return 0.001
	case stat < -3.43:
		return 0.01
	case stat < -2.86:
		return 0.05
	case stat < -2.57:
		return 0.10
	case stat < -1.94:
		return 0.25
	case stat < -1.62:
		return 0.50
	default:
		return math.Min(0.5+(stat+1.62)*0.25, 0.99)
	}
}

// kpssPValue approximates the p-value for KPSS statistics by interpolating
// the tabulated critical values.
func kpssPValue(stat float64, regression string) float64 {
	if regression == "ct" {
		switch {
		case stat > 0.216:
			return 0.01
		case stat > 0.146:
			return 0.05
		case stat > 0.119:
			return 0.10
		default:
			return 0.10 + (0.119-stat)*2
		}
	}

	switch {
	case stat > 0.739:
		return 0.01
	case stat > 0.463:
		return 0.05
	case stat > 0.347:
		return 0.10
	default:
		return 0.10 + (0.347-stat)*0.5
	}
}
