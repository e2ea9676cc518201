package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestBFSDistances(t *testing.T) {
	adj := pathAdjacency(4)
	c := mat.NewDense(4, 1, nil)

	bfs(adj, 0, c, 0, 2, nil)

	assert.Equal(t, []float64{0, 2, 4, 6}, mat.Col(nil, 0, c))
}

func TestBFSUnreachable(t *testing.T) {
	adj := [][]int{{1}, {0}, {}}
	c := mat.NewDense(3, 1, nil)

	bfs(adj, 0, c, 0, 1, nil)

	assert.Equal(t, 0.0, c.At(0, 0))
	assert.Equal(t, 1.0, c.At(1, 0))
	assert.Equal(t, infinity, c.At(2, 0))
}

func TestBFSGreedyFarthest(t *testing.T) {
	adj := pathAdjacency(4)
	c := mat.NewDense(4, 2, nil)
	minDist := []float64{math.Inf(1), math.Inf(1), math.Inf(1), math.Inf(1)}

	next := bfs(adj, 0, c, 0, 2, minDist)
	assert.Equal(t, 3, next)
	assert.Equal(t, []float64{0, 2, 4, 6}, minDist)

	next = bfs(adj, 3, c, 1, 2, minDist)
	assert.Equal(t, 1, next, "ties go to the lowest index")
	assert.Equal(t, []float64{0, 2, 2, 0}, minDist)
}

func TestBFSGreedyTieIgnoresVisitOrder(t *testing.T) {
	// Star whose center lists the higher leaf first, so 2 is reached before 1.
	adj := [][]int{{2, 1}, {0}, {0}}
	c := mat.NewDense(3, 1, nil)
	minDist := []float64{math.Inf(1), math.Inf(1), math.Inf(1)}

	assert.Equal(t, 1, bfs(adj, 0, c, 0, 1, minDist))
	assert.Equal(t, []float64{0, 1, 1}, minDist)
}

func TestBFSGreedyAllCovered(t *testing.T) {
	adj := pathAdjacency(3)
	c := mat.NewDense(3, 1, nil)
	minDist := []float64{0, 0, math.Inf(1)}

	// Once 2 becomes a landmark every vertex is covered.
	assert.Equal(t, 1, bfs(adj, 2, c, 0, 1, minDist))
	assert.Equal(t, []float64{0, 0, 0}, minDist)
}

func TestFarthestIndex(t *testing.T) {
	tests := []struct {
		name    string
		minDist []float64
		want    int
	}{
		{"single vertex", []float64{0}, 0},
		{"all zero defaults to one", []float64{0, 0, 0}, 1},
		{"strict maximum", []float64{0, 3, 5, 1}, 2},
		{"tie keeps lowest index", []float64{0, 4, 2, 4}, 1},
		{"unreached wins", []float64{0, 1, infinity}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, farthestIndex(tt.minDist))
		})
	}
}

func TestBFSSingleVertex(t *testing.T) {
	c := mat.NewDense(1, 1, nil)
	assert.Equal(t, 0, bfs([][]int{{}}, 0, c, 0, 75, []float64{math.Inf(1)}))
	assert.Equal(t, 0.0, c.At(0, 0))
}
