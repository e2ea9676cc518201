package spectral

import "gonum.org/v1/gonum/mat"

// infinity marks vertices a BFS run never reached.
const infinity = 1e8

// bfs runs a unit-hop breadth-first search from src over adj and writes the
// scaled hop distance of every vertex into column col of c.
//
// When minDist is non-nil it holds, per vertex, the scaled distance to the
// nearest landmark seen so far. bfs folds this run into it and returns the
// vertex farthest from every landmark, which is the next greedy landmark.
// Ties go to the lowest index; when no vertex is farther than 0 the result
// is 1 (or 0 for a single vertex).
func bfs(adj [][]int, src int, c *mat.Dense, col int, sep float64, minDist []float64) int {
	n := len(adj)
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = infinity
	}
	dist[src] = 0

	queue := make([]int, 0, n)
	queue = append(queue, src)
	for head := 0; head < len(queue); head++ {
		curr := queue[head]
		c.Set(curr, col, dist[curr]*sep)
		if minDist != nil {
			minDist[curr] = min(minDist[curr], dist[curr]*sep)
		}
		for _, nb := range adj[curr] {
			if dist[nb] == infinity {
				dist[nb] = dist[curr] + 1
				queue = append(queue, nb)
			}
		}
	}

	if len(queue) < n {
		for i, d := range dist {
			if d == infinity {
				c.Set(i, col, infinity*sep)
				if minDist != nil {
					minDist[i] = min(minDist[i], infinity*sep)
				}
			}
		}
	}

	if minDist == nil {
		return 0
	}
	return farthestIndex(minDist)
}

// farthestIndex returns the lowest index holding the largest positive value,
// defaulting to 1 when n > 1 and 0 otherwise.
func farthestIndex(minDist []float64) int {
	farthest, best := 0, 0.0
	if len(minDist) > 1 {
		farthest = 1
	}
	for i, d := range minDist {
		if d > best {
			best = d
			farthest = i
		}
	}
	return farthest
}
