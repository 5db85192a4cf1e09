package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularDesign indicates a regression design matrix with linearly
// dependent columns.
var ErrSingularDesign = errors.New("singular design matrix")

// olsFit solves y = X*beta by ordinary least squares through the normal
// equations and returns the coefficients with their standard errors.
// Standard errors are nil when there are no residual degrees of freedom.
func olsFit(X *mat.Dense, y []float64) (coeffs, stdErrs []float64, err error) {
	n, k := X.Dims()
	if n == 0 || n != len(y) {
		return nil, nil, errors.New("design matrix and response length mismatch")
	}

	var xtx mat.Dense
	xtx.Mul(X.T(), X)

	var xtxInv mat.Dense
	if invErr := xtxInv.Inverse(&xtx); invErr != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSingularDesign, invErr)
	}

	yVec := mat.NewVecDense(n, y)
	var xty mat.VecDense
	xty.MulVec(X.T(), yVec)

	var beta mat.VecDense
	beta.MulVec(&xtxInv, &xty)

	coeffs = make([]float64, k)
	for i := range coeffs {
		coeffs[i] = beta.AtVec(i)
	}

	var fitted mat.VecDense
	fitted.MulVec(X, &beta)

	sse := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		sse += r * r
	}

	if n <= k {
		return coeffs, nil, nil
	}

	s2 := sse / float64(n-k)
	stdErrs = make([]float64, k)
	for i := range stdErrs {
		stdErrs[i] = math.Sqrt(s2 * xtxInv.At(i, i))
	}

	return coeffs, stdErrs, nil
}
