package spectral

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// relativeResidual returns ‖PHI·INV·PHI − PHI‖ / ‖PHI‖ in the Frobenius norm.
func relativeResidual(phi, inv *mat.Dense) float64 {
	var pi, pip, diff mat.Dense
	pi.Mul(phi, inv)
	pip.Mul(&pi, phi)
	diff.Sub(&pip, phi)
	return mat.Norm(&diff, 2) / mat.Norm(phi, 2)
}

func TestPseudoInverseCompleteGraph(t *testing.T) {
	// K4 with separation 100: every off-diagonal squared distance is 1e4.
	phi := mat.NewDense(4, 4, nil)
	for i := range 4 {
		for j := range 4 {
			if i != j {
				phi.Set(i, j, 1e4)
			}
		}
	}

	inv, err := pseudoInverse(phi)
	require.NoError(t, err)
	assert.Less(t, relativeResidual(phi, inv), 1e-2)
}

func TestPseudoInverseCycle(t *testing.T) {
	adj := make([][]int, 6)
	for i := range 6 {
		adj[i] = []int{(i + 5) % 6, (i + 1) % 6}
	}
	landmarks, c, err := sample(context.Background(), adj, 6, SamplingGreedy, 100, rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)

	phi := landmarkBlock(c, landmarks)
	inv, err := pseudoInverse(phi)
	require.NoError(t, err)
	assert.Less(t, relativeResidual(phi, inv), 1e-2)
}

func TestPseudoInverseRankDeficient(t *testing.T) {
	tests := []struct {
		name string
		phi  *mat.Dense
	}{
		{"zero", mat.NewDense(3, 3, nil)},
		{"rank one", mat.NewDense(2, 2, []float64{4, 4, 4, 4})},
		{"single", mat.NewDense(1, 1, []float64{0})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := pseudoInverse(tt.phi)
			require.NoError(t, err)
			r, c := inv.Dims()
			pr, pc := tt.phi.Dims()
			assert.Equal(t, pr, r)
			assert.Equal(t, pc, c)
			for i := range r {
				for j := range c {
					assert.False(t, math.IsNaN(inv.At(i, j)), "NaN in inverse")
				}
			}
		})
	}
}
