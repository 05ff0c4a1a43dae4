package topology

import "sync/atomic"

// DefaultServerIP is returned when no server can be selected — an empty
// server list, or (for GEO) no path to any server — matching DEFAULT_IP in
// original_source/src/nameserver/nameserver-core.c.
const DefaultServerIP = "0.0.0.0"

// RoundRobin cycles through a fixed server list in order, wrapping back to
// the start, per getRRIP in original_source/src/nameserver/nameserver-core.c.
// It uses atomic increment instead of the C source's static rrIndex so the
// counter can be shared safely if the caller ever serves more than one
// request concurrently, even though the nameserver's loop is single
// threaded today.
type RoundRobin struct {
	servers []string
	next    atomic.Uint64
}

// NewRoundRobin returns a balancer cycling over servers in the given order.
func NewRoundRobin(servers []string) *RoundRobin {
	cp := make([]string, len(servers))
	copy(cp, servers)
	return &RoundRobin{servers: cp}
}

// Next returns the next server in rotation, or DefaultServerIP if the
// balancer has no servers.
func (r *RoundRobin) Next() string {
	if len(r.servers) == 0 {
		return DefaultServerIP
	}
	i := r.next.Add(1) - 1
	return r.servers[i%uint64(len(r.servers))]
}

// ClosestServer picks, among servers, the one with the smallest hop-count
// distance from clientIP in g, per minWeightedServer in
// original_source/src/nameserver/nameserver-core.c. Ties are broken by
// the order servers are given in, matching the C source's left-to-right
// scan that only replaces the incumbent on a strictly smaller weight.
// Returns DefaultServerIP if no candidate server is reachable (or none
// exist).
func ClosestServer(g *Graph, servers []string, clientIP string) string {
	distances := g.ShortestDistances(clientIP)

	best := DefaultServerIP
	bestWeight := unreachable
	for _, server := range servers {
		weight, ok := distances[server]
		if !ok {
			continue
		}
		if weight < bestWeight {
			bestWeight = weight
			best = server
		}
	}
	return best
}
