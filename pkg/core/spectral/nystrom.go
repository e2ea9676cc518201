package spectral

import (
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/spectra/pkg/errors"
)

// ErrFactorization is returned when the SVD of the landmark block fails.
var ErrFactorization = errors.New(errors.ErrCodeInternal, "singular value decomposition did not converge")

// pseudoInverse returns the regularized pseudoinverse V·diag(r)·Uᵗ of phi,
// where r_i = σ_i / (σ_i² + σ_max³/σ_i²). Zero singular values contribute
// nothing, so rank-deficient input never fails.
func pseudoInverse(phi *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(phi, mat.SVDFull) {
		return nil, ErrFactorization
	}

	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	maxS := 0.0
	if len(s) > 0 {
		maxS = s[0]
	}
	damp := maxS * maxS * maxS
	reg := make([]float64, len(s))
	for i, si := range s {
		if si <= 0 {
			continue
		}
		sq := si * si
		if sq == 0 {
			continue
		}
		reg[i] = si / (sq + damp/sq)
	}

	var vr, inv mat.Dense
	vr.Mul(&v, mat.NewDiagDense(len(reg), reg))
	inv.Mul(&vr, u.T())
	return &inv, nil
}
