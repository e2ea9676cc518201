package spectral

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/spectra/pkg/core/cgraph"
)

// build creates a graph from parent-annotated nodes ("child<parent") and
// undirected edge pairs.
func build(t *testing.T, nodes []string, edges [][2]string) *cgraph.Graph {
	t.Helper()
	g := cgraph.New(nil)
	for _, spec := range nodes {
		n := cgraph.Node{ID: spec}
		for i := range len(spec) {
			if spec[i] == '<' {
				n = cgraph.Node{ID: spec[:i], Parent: spec[i+1:]}
				break
			}
		}
		require.NoError(t, g.AddNode(n))
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(cgraph.Edge{From: e[0], To: e[1]}))
	}
	require.NoError(t, g.Validate())
	return g
}

func pathGraph(t *testing.T) *cgraph.Graph {
	return build(t,
		[]string{"1", "2", "3", "4", "5"},
		[][2]string{{"1", "2"}, {"2", "3"}, {"3", "4"}, {"4", "5"}},
	)
}

func twoTriangles(t *testing.T) *cgraph.Graph {
	return build(t,
		[]string{"a", "b", "c", "d", "e", "f"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"d", "e"}, {"e", "f"}, {"f", "d"}},
	)
}

func pathAdjacency(n int) [][]int {
	adj := make([][]int, n)
	for i := range n - 1 {
		adj[i] = append(adj[i], i+1)
		adj[i+1] = append(adj[i+1], i)
	}
	return adj
}
