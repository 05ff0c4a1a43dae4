package topology

import (
	"fmt"
	"strconv"
	"strings"
)

// LSA is a single link-state advertisement: a router announcing its
// current neighbor set and a sequence number that orders announcements
// about the same router, per spec.md §4.3 and
// original_source/src/nameserver/nameserver-core.c's "struct lsa".
type LSA struct {
	IP        string
	SeqNum    int
	Neighbors []string
}

// ParseLSALine parses one line of an LSA file in the "<ip> <seq> <n1,n2,...>"
// format original_source/src/nameserver/nameserver-core.c reads with
// sscanf(line, "%s %d %s\n", ...), splitting the neighbor field on commas
// the way constructNetworkGraph's strtok(lsa->neighbors, ",\n") does.
func ParseLSALine(line string) (LSA, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return LSA{}, fmt.Errorf("topology: malformed LSA line %q", line)
	}

	seqNum, err := strconv.Atoi(fields[1])
	if err != nil {
		return LSA{}, fmt.Errorf("topology: malformed sequence number in %q: %w", line, err)
	}

	neighbors := strings.Split(strings.Trim(fields[2], ","), ",")
	return LSA{IP: fields[0], SeqNum: seqNum, Neighbors: neighbors}, nil
}

// Store keeps the most recent LSA seen per announcing IP — "latest
// sequence number wins" — per storeLatestLSA in
// original_source/src/nameserver/nameserver-core.c.
type Store struct {
	latest map[string]LSA
}

// NewStore returns an empty LSA store.
func NewStore() *Store {
	return &Store{latest: make(map[string]LSA)}
}

// Ingest records lsa if it is new or supersedes the previously stored LSA
// for the same IP (strictly higher SeqNum). It reports whether the stored
// entry changed, so callers can decide whether the derived graph is now
// stale (spec.md §4.3, Testable Property 4).
func (s *Store) Ingest(lsa LSA) bool {
	existing, ok := s.latest[lsa.IP]
	if ok && existing.SeqNum >= lsa.SeqNum {
		return false
	}
	s.latest[lsa.IP] = lsa
	return true
}

// BuildGraph constructs the undirected network graph implied by every
// stored LSA's neighbor list, per constructNetworkGraph in
// original_source/src/nameserver/nameserver-core.c.
func (s *Store) BuildGraph() *Graph {
	g := NewGraph()
	for _, lsa := range s.latest {
		for _, neighbor := range lsa.Neighbors {
			if neighbor == "" {
				continue
			}
			g.AddEdge(lsa.IP, neighbor)
		}
	}
	return g
}

// Len returns the number of distinct IPs with a stored LSA.
func (s *Store) Len() int {
	return len(s.latest)
}
