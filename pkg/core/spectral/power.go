package spectral

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// seedRatio stands in for the previous Rayleigh quotient before the first
	// step, and whenever that quotient is exactly zero.
	seedRatio = 1e-9

	// vanishingNorm is the iterate norm below which the operator is treated
	// as having annihilated the vector.
	vanishingNorm = 1e-12
)

// gram applies the implicit double-centered Gram matrix
// center(C · INV · (-½ Cᵗ) · center(x)) without forming the N×N product.
type gram struct {
	c, inv *mat.Dense
	k      *mat.VecDense // scratch, length k
	k2     *mat.VecDense // scratch, length k
	x      []float64     // scratch, length N
}

func newGram(c, inv *mat.Dense) *gram {
	n, k := c.Dims()
	return &gram{
		c:   c,
		inv: inv,
		k:   mat.NewVecDense(k, nil),
		k2:  mat.NewVecDense(k, nil),
		x:   make([]float64, n),
	}
}

// apply writes the operator applied to x into dst. x is left untouched.
func (g *gram) apply(dst, x []float64) {
	copy(g.x, x)
	center(g.x)
	g.applyCt(g.x)
	g.k2.MulVec(g.inv, g.k)
	out := mat.NewVecDense(len(dst), dst)
	out.MulVec(g.c, g.k2)
	center(dst)
}

// applyCt computes -½ Cᵗ x into the k-length scratch vector.
func (g *gram) applyCt(x []float64) {
	g.k.MulVec(g.c.T(), mat.NewVecDense(len(x), x))
	g.k.ScaleVec(-0.5, g.k)
}

// center subtracts the mean from every entry in place.
func center(x []float64) {
	if len(x) == 0 {
		return
	}
	floats.AddConst(-floats.Sum(x)/float64(len(x)), x)
}

// eigenpair is one converged (or capped) power iteration run.
type eigenpair struct {
	vec        []float64
	value      float64
	iterations int
	converged  bool
}

// dominantEigenpair runs power iteration on op from a random unit vector.
// When deflate is non-nil the iterate is made orthogonal to it before every
// application. The loop stops once the step-over-step ratio of Rayleigh
// quotients lies in [1, 1+tol], or after maxIter steps.
func dominantEigenpair(ctx context.Context, op *gram, n int, rng Source, deflate []float64, tol float64, maxIter int) (eigenpair, error) {
	y := make([]float64, n)
	for i := range y {
		y[i] = rng.Float64()
	}
	if norm := floats.Norm(y, 2); norm > 0 {
		floats.Scale(1/norm, y)
	}

	v := make([]float64, n)
	previous := seedRatio
	res := eigenpair{vec: y}
	for res.iterations < maxIter {
		if err := ctx.Err(); err != nil {
			return eigenpair{}, err
		}
		res.iterations++

		// op centers its input, so centering v first leaves op(v) unchanged.
		copy(v, y)
		center(v)
		if deflate != nil {
			floats.AddScaled(v, -floats.Dot(deflate, v), deflate)
		}
		if floats.Norm(v, 2) < vanishingNorm {
			return vanished(res), nil
		}
		op.apply(y, v)
		res.value = floats.Dot(v, y)

		norm := floats.Norm(y, 2)
		if norm < vanishingNorm {
			return vanished(res), nil
		}
		floats.Scale(1/norm, y)

		current := floats.Dot(v, y)
		ratio := math.Abs(current / previous)
		if ratio >= 1 && ratio <= 1+tol {
			res.converged = true
			return res, nil
		}
		previous = current
		if previous == 0 {
			previous = seedRatio
		}
	}
	return res, nil
}

func vanished(res eigenpair) eigenpair {
	for i := range res.vec {
		res.vec[i] = 0
	}
	res.value = 0
	res.converged = true
	return res
}
