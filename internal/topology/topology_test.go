package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeIsUndirectedAndIdempotent(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b")
	assert.True(t, g.EdgeExists("a", "b"))
	assert.True(t, g.EdgeExists("b", "a"))

	// Re-adding the same edge must not duplicate it or otherwise corrupt
	// the adjacency sets (Testable Property 6).
	g.AddEdge("a", "b")
	assert.Equal(t, 2, g.Len())
}

func TestAddEdgeCreatesMissingNodes(t *testing.T) {
	g := NewGraph()
	g.AddEdge("x", "y")
	assert.True(t, g.Has("x"))
	assert.True(t, g.Has("y"))
	assert.False(t, g.Has("z"))
}

// TestLatestSequenceNumberWins covers Testable Property 4: an LSA with a
// lower or equal sequence number than what's stored is ignored.
func TestLatestSequenceNumberWins(t *testing.T) {
	s := NewStore()
	assert.True(t, s.Ingest(LSA{IP: "10.0.0.1", SeqNum: 1, Neighbors: []string{"10.0.0.2"}}))
	assert.False(t, s.Ingest(LSA{IP: "10.0.0.1", SeqNum: 1, Neighbors: []string{"10.0.0.3"}}))
	assert.False(t, s.Ingest(LSA{IP: "10.0.0.1", SeqNum: 0, Neighbors: []string{"10.0.0.3"}}))
	assert.True(t, s.Ingest(LSA{IP: "10.0.0.1", SeqNum: 2, Neighbors: []string{"10.0.0.3"}}))

	g := s.BuildGraph()
	assert.True(t, g.EdgeExists("10.0.0.1", "10.0.0.3"))
	assert.False(t, g.EdgeExists("10.0.0.1", "10.0.0.2"))
}

func TestParseLSALine(t *testing.T) {
	lsa, err := ParseLSALine("10.0.0.1 5 10.0.0.2,10.0.0.3\n")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", lsa.IP)
	assert.Equal(t, 5, lsa.SeqNum)
	assert.Equal(t, []string{"10.0.0.2", "10.0.0.3"}, lsa.Neighbors)
}

func TestParseLSALineRejectsMalformed(t *testing.T) {
	_, err := ParseLSALine("not enough fields")
	assert.Error(t, err)
}

// TestShortestDistancesHopCount covers Testable Property 5: shortest path
// is measured in unweighted hop count, not a weighted metric.
func TestShortestDistancesHopCount(t *testing.T) {
	g := NewGraph()
	g.AddEdge("client", "mid")
	g.AddEdge("mid", "far")
	g.AddEdge("client", "direct")
	g.AddEdge("direct", "far")

	d := g.ShortestDistances("client")
	assert.Equal(t, 0, d["client"])
	assert.Equal(t, 1, d["mid"])
	assert.Equal(t, 1, d["direct"])
	assert.Equal(t, 2, d["far"])
}

func TestShortestDistancesUnknownSource(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b")
	d := g.ShortestDistances("nowhere")
	assert.Empty(t, d)
}

func TestClosestServerPicksNearest(t *testing.T) {
	g := NewGraph()
	g.AddEdge("client", "near")
	g.AddEdge("near", "far")
	g.AddEdge("far", "farther")

	got := ClosestServer(g, []string{"far", "near", "farther"}, "client")
	assert.Equal(t, "near", got)
}

func TestClosestServerDefaultsWhenUnreachable(t *testing.T) {
	g := NewGraph()
	g.AddEdge("client", "a")
	got := ClosestServer(g, []string{"unreachable-server"}, "client")
	assert.Equal(t, DefaultServerIP, got)
}

// TestRoundRobinFairness covers Testable Property 7: successive calls
// cycle through every server exactly once before repeating.
func TestRoundRobinFairness(t *testing.T) {
	rr := NewRoundRobin([]string{"s1", "s2", "s3"})
	got := []string{rr.Next(), rr.Next(), rr.Next(), rr.Next()}
	assert.Equal(t, []string{"s1", "s2", "s3", "s1"}, got)
}

func TestRoundRobinEmptyServers(t *testing.T) {
	rr := NewRoundRobin(nil)
	assert.Equal(t, DefaultServerIP, rr.Next())
}
