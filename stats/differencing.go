package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast/timeseries"
)

// NDiffs determines the number of first differences required for
// stationarity by testing and differencing sequentially. Returns a value
// between 0 and maxD (default 2). testType is "kpss" (default) or "adf".
func NDiffs(series *timeseries.Series, maxD int, testType string) int {
	if maxD <= 0 {
		maxD = 2
	}
	if testType == "" {
		testType = "kpss"
	}

	current := series
	for d := 0; d < maxD; d++ {
		isStationary := false

		if testType == "adf" {
			result := ADF(current, 0)
			if result != nil && result.IsStationary {
				isStationary = true
			}
		} else {
			result := KPSS(current, "c", 0)
			if result != nil && result.IsStationary {
				isStationary = true
			}
		}

		if isStationary {
			return d
		}

		current = current.Diff()
		if current.Len() < 10 {
			return d
		}
	}

	return maxD
}

// NSDiffs determines the number of seasonal differences required, using
// the seasonal strength measure: one seasonal difference is suggested
// while F_S >= 0.64. period is the seasonal period, e.g. 7 for daily data
// with a weekly cycle or 12 for monthly data with a yearly cycle.
func NSDiffs(series *timeseries.Series, period int, maxD int) int {
	if maxD <= 0 {
		maxD = 1
	}
	if period <= 1 || series.Len() < 2*period {
		return 0
	}

	current := series
	for d := 0; d < maxD; d++ {
		strength := seasonalStrength(current, period)

		if strength < 0.64 {
			return d
		}

		current = current.SeasonalDiff(period)
		if current.Len() < 2*period {
			return d
		}
	}

	return maxD
}

// seasonalStrength calculates the strength of seasonality:
// F_S = max(0, 1 - Var(R) / Var(S+R)) with S the seasonal and R the
// residual component of a classical decomposition.
func seasonalStrength(series *timeseries.Series, period int) float64 {
	if series.Len() < 2*period {
		return 0
	}

	decomp := Decompose(series, period, "additive")
	if decomp == nil {
		return 0
	}

	varR := definedVariance(decomp.Residual.Values)

	seasonalPlusResid := make([]float64, len(decomp.Seasonal.Values))
	for i := range seasonalPlusResid {
		if !math.IsNaN(decomp.Seasonal.Values[i]) && !math.IsNaN(decomp.Residual.Values[i]) {
			seasonalPlusResid[i] = decomp.Seasonal.Values[i] + decomp.Residual.Values[i]
		} else {
			seasonalPlusResid[i] = math.NaN()
		}
	}
	varSR := definedVariance(seasonalPlusResid)

	if varSR == 0 {
		return 0
	}

	strength := 1 - varR/varSR
	if strength < 0 {
		strength = 0
	}

	return strength
}

// definedVariance calculates the sample variance of the defined values,
// ignoring NaN.
func definedVariance(data []float64) float64 {
	valid := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}

	if len(valid) < 2 {
		return 0
	}

	return stat.Variance(valid, nil)
}

// AICc calculates the corrected Akaike information criterion:
// AICc = AIC + 2k(k+1)/(n-k-1), which penalizes parameter count more
// strongly in small samples.
func AICc(aic float64, nObs int, nParams int) float64 {
	k := float64(nParams)
	n := float64(nObs)

	if n-k-1 <= 0 {
		return math.Inf(1)
	}

	correction := 2 * k * (k + 1) / (n - k - 1)
	return aic + correction
}

// InformationCriteria holds the likelihood-based model selection criteria.
type InformationCriteria struct {
	AIC    float64
	AICc   float64
	BIC    float64
	LogLik float64
}

// CalculateIC calculates AIC, AICc, and BIC from the log-likelihood, the
// number of observations, and the number of estimated parameters.
func CalculateIC(logLik float64, nObs int, nParams int) *InformationCriteria {
	k := float64(nParams)
	n := float64(nObs)

	aic := -2*logLik + 2*k
	bic := -2*logLik + k*math.Log(n)

	var aicc float64
	if n-k-1 > 0 {
		aicc = aic + 2*k*(k+1)/(n-k-1)
	} else {
		aicc = math.Inf(1)
	}

	return &InformationCriteria{
		AIC:    aic,
		AICc:   aicc,
		BIC:    bic,
		LogLik: logLik,
	}
}
