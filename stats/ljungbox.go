package stats

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goforecast/timeseries"
)

// LjungBoxResult represents the result of a Ljung-Box test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int // degrees of freedom
}

// Passes reports whether the residuals show no significant autocorrelation
// at significance level alpha, i.e. the no-autocorrelation null is not
// rejected.
func (r *LjungBoxResult) Passes(alpha float64) bool {
	return r.PValue >= alpha
}

// LjungBox performs the Ljung-Box portmanteau test for autocorrelation.
// The null hypothesis is that there is no autocorrelation up to the given
// lag. fitdf is the number of parameters estimated by the model whose
// residuals are tested; it is subtracted from the degrees of freedom.
// Returns nil when the series is too short.
func LjungBox(series *timeseries.Series, lags, fitdf int) *LjungBoxResult {
	n := series.Len()
	if n < 10 || lags < 1 {
		return nil
	}

	if lags >= n {
		lags = n - 1
	}

	acf := ACF(series, lags)
	if acf == nil {
		return nil
	}

	// Q = n(n+2) * sum_k acf_k^2 / (n-k)
	q := 0.0
	for k := 1; k <= lags; k++ {
		q += (acf[k] * acf[k]) / float64(n-k)
	}
	q *= float64(n * (n + 2))

	dof := lags - fitdf
	if dof < 1 {
		dof = 1
	}

	chi2 := distuv.ChiSquared{K: float64(dof)}
	pValue := 1 - chi2.CDF(q)

	return &LjungBoxResult{
		Statistic: q,
		PValue:    pValue,
		Lags:      lags,
		DOF:       dof,
	}
}

// DurbinWatsonResult represents the result of a Durbin-Watson test.
// A statistic near 2 indicates no first-order autocorrelation; values
// toward 0 indicate positive and toward 4 negative autocorrelation.
type DurbinWatsonResult struct {
	Statistic float64
}

// DurbinWatson calculates the Durbin-Watson statistic for first-order
// autocorrelation in residuals. Returns nil on degenerate input.
func DurbinWatson(residuals []float64) *DurbinWatsonResult {
	n := len(residuals)
	if n < 2 {
		return nil
	}

	numerator := 0.0
	denominator := 0.0

	for i := 1; i < n; i++ {
		diff := residuals[i] - residuals[i-1]
		numerator += diff * diff
	}

	for _, r := range residuals {
		denominator += r * r
	}

	if denominator == 0 {
		return nil
	}

	return &DurbinWatsonResult{
		Statistic: numerator / denominator,
	}
}
