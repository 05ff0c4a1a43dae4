package nameserver

import (
	"log/slog"
	"time"

	"github.com/kestrelnet/vcdn/internal/dnswire"
	"github.com/kestrelnet/vcdn/internal/topology"
)

// Service holds the nameserver's process-wide state: the configured
// servers, the load-balancing mode, the network graph built from ingested
// LSAs, and the activity log. It is the Go analogue of struct dns_config_t
// in original_source/src/nameserver/nameserver.h, kept as an explicit
// struct rather than package-level globals per spec.md's design notes.
type Service struct {
	cfg     Config
	servers []string
	rr      *topology.RoundRobin
	graph   *topology.Graph
	log     *ActivityLog
	logger  *slog.Logger
}

// NewService builds a Service from cfg, the parsed servers list, and (for
// GEO mode) the graph built from ingested LSAs. graph may be nil in RR
// mode, since round robin never consults it.
func NewService(cfg Config, servers []string, graph *topology.Graph, activity *ActivityLog, logger *slog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		servers: servers,
		rr:      topology.NewRoundRobin(servers),
		graph:   graph,
		log:     activity,
		logger:  logger,
	}
}

// Stats is a point-in-time snapshot of nameserver state exposed to
// internal/adminapi.
type Stats struct {
	Mode        string `json:"mode"`
	ServerCount int    `json:"server_count"`
	GraphNodes  int    `json:"graph_nodes"`
}

// Snapshot returns the current Stats.
func (s *Service) Snapshot() Stats {
	mode := "geo"
	if s.cfg.Mode == ModeRoundRobin {
		mode = "round-robin"
	}
	nodes := 0
	if s.graph != nil {
		nodes = s.graph.Len()
	}
	return Stats{
		Mode:        mode,
		ServerCount: len(s.servers),
		GraphNodes:  nodes,
	}
}

// resolve picks a server IP for a client, using the configured
// load-balancing mode — round robin or geographic shortest path — per
// getRRIP/getGEOIP in original_source/src/nameserver/nameserver-core.c.
// It reports ok=false only when round robin has no servers configured at
// all, matching getRRIP's NULL return for an empty server list; GEO mode
// always succeeds, falling back to topology.DefaultServerIP.
func (s *Service) resolve(clientIP string) (string, bool) {
	if s.cfg.Mode == ModeRoundRobin {
		if len(s.servers) == 0 {
			return "", false
		}
		return s.rr.Next(), true
	}
	return topology.ClosestServer(s.graph, s.servers, clientIP), true
}

// HandleQuery answers one incoming DNS query from clientIP, returning the
// wire-format response to send back. It mirrors processRecvfrom in
// original_source/src/nameserver/nameserver.c:
//
//   - a query for any name other than the fixed domain gets an invalid
//     (RCODE 3) response, chosen server IP is still resolved and logged
//     first, matching the original's quirk of computing and logging a
//     server IP even for a request it is about to refuse;
//   - a query for the fixed domain gets the resolved server's IP;
//   - the activity log always records the fixed domain as the query name,
//     not whatever name the client actually asked for, since
//     original_source's FMT call hardcodes VID_DOMAIN regardless of
//     dnsRequest->query_name;
//   - a nil response with no error means no server could be resolved at
//     all (round robin with an empty server list) — the nameserver drops
//     the query and sends nothing back, exactly as processRecvfrom does
//     when getRRIP returns NULL.
func (s *Service) HandleQuery(raw []byte, clientIP string) ([]byte, error) {
	req, err := dnswire.Parse(raw)
	if err != nil {
		return nil, err
	}

	ip, ok := s.resolve(clientIP)
	if !ok {
		s.logger.Warn("no server available to answer query", "client", clientIP)
		return nil, nil
	}

	var reply dnswire.Message
	if req.Invalid {
		s.logger.Debug("query for foreign name", "client", clientIP, "name", req.QueryName)
		reply = dnswire.NewInvalidResponse(req.ID)
	} else {
		reply = dnswire.NewResponse(req.ID, ip)
	}

	if s.log != nil {
		epoch := float64(time.Now().UnixNano()) / 1e9
		if err := s.log.Record(epoch, clientIP, dnswire.FixedDomain, ip); err != nil {
			s.logger.Warn("failed to record activity log", "error", err)
		}
	}

	return reply.Marshal()
}
