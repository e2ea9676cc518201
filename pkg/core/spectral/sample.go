package spectral

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SamplingType selects how landmark vertices are chosen.
type SamplingType string

const (
	// SamplingRandom draws landmarks uniformly without replacement.
	SamplingRandom SamplingType = "random"
	// SamplingGreedy starts from a random landmark and repeatedly adds the
	// vertex farthest from all landmarks chosen so far.
	SamplingGreedy SamplingType = "greedy"
)

// SamplingTypes lists the accepted sampling types.
var SamplingTypes = []string{string(SamplingRandom), string(SamplingGreedy)}

// Source supplies randomness for landmark sampling and the power iteration
// start vectors. *math/rand/v2.Rand satisfies it.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// sample picks k landmarks over adj and returns them together with the
// N×k matrix of squared scaled hop distances, one column per landmark.
func sample(ctx context.Context, adj [][]int, k int, typ SamplingType, sep float64, rng Source) ([]int, *mat.Dense, error) {
	n := len(adj)
	k = min(k, n)
	c := mat.NewDense(n, k, nil)
	landmarks := make([]int, 0, k)

	switch typ {
	case SamplingRandom:
		chosen := make(map[int]bool, k)
		for len(landmarks) < k {
			if i := rng.IntN(n); !chosen[i] {
				chosen[i] = true
				landmarks = append(landmarks, i)
			}
		}
		for col, l := range landmarks {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			bfs(adj, l, c, col, sep, nil)
		}

	default:
		minDist := make([]float64, n)
		for i := range minDist {
			minDist[i] = math.Inf(1)
		}
		next := rng.IntN(n)
		for col := range k {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			landmarks = append(landmarks, next)
			next = bfs(adj, next, c, col, sep, minDist)
		}
	}

	c.Apply(func(_, _ int, v float64) float64 { return v * v }, c)
	return landmarks, c, nil
}

// landmarkBlock extracts the k×k submatrix PHI with PHI[i][j] = C[l_j][i].
func landmarkBlock(c *mat.Dense, landmarks []int) *mat.Dense {
	k := len(landmarks)
	phi := mat.NewDense(k, k, nil)
	for j, l := range landmarks {
		for i := range k {
			phi.Set(i, j, c.At(l, i))
		}
	}
	return phi
}
