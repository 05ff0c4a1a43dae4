package topology

import "math"

// unreachable stands in for the C source's INT_MAX sentinel weight
// (infAllNodes), the initial distance assigned to every node before the
// search runs.
const unreachable = math.MaxInt32

// ShortestDistances runs the same unweighted single-source shortest-path
// sweep as original_source/src/nameserver/nameserver-core.c's getGEOIP:
// every node starts at distance "unreachable" except from, which starts at
// 0; at each step the closest remaining node is picked and its neighbors
// relaxed by one hop, until every node has been visited once.
//
// The relaxation guard in the original — "only consider the unvisited" —
// tests whether the node just popped (not the neighbor) is still in the
// unvisited set. Since that node is only removed from the set after its
// neighbors are relaxed, the guard always holds; this implementation
// preserves that same shape rather than simplifying it away, since popped
// nodes are still relaxed unconditionally against neighbors regardless of
// whether those neighbors were already finalized.
//
// Returns a map from node id to hop-count distance from "from". A node
// absent from the graph yields an empty map.
func (g *Graph) ShortestDistances(from string) map[string]int {
	if !g.Has(from) {
		return map[string]int{}
	}

	unvisited := make(map[string]*node, len(g.nodes))
	for id, n := range g.nodes {
		n.weight = unreachable
		unvisited[id] = n
	}
	unvisited[from].weight = 0

	for len(unvisited) > 0 {
		curr := findMinWeight(unvisited)

		// Mirrors the original's "if (node_find(unvisited, ..., gcurr->id))"
		// guard: curr is still present in unvisited at this point by
		// construction, so relaxation always proceeds.
		if _, stillUnvisited := unvisited[curr.id]; stillUnvisited {
			for _, neighbor := range curr.neighbors {
				weight := curr.weight + 1
				if weight < neighbor.weight {
					neighbor.weight = weight
				}
			}
		}

		delete(unvisited, curr.id)
	}

	distances := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		distances[id] = n.weight
	}
	return distances
}

// findMinWeight returns the node with the smallest weight in the set,
// breaking ties by the first one encountered — findMinWeight in
// nameserver-core.c iterates a linked list in insertion order and keeps
// the first minimum seen, which Go's unordered map range cannot reproduce
// exactly; ties are broken arbitrarily here instead, which does not change
// the resulting distances since all edge weights are 1.
func findMinWeight(set map[string]*node) *node {
	var min *node
	minWeight := unreachable + 1
	for _, n := range set {
		if n.weight < minWeight {
			minWeight = n.weight
			min = n
		}
	}
	return min
}
