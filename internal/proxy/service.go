package proxy

import (
	"fmt"
	"log/slog"

	"golang.org/x/sys/unix"

	"github.com/kestrelnet/vcdn/internal/metrics"
)

// bootstrapManifestRequest is the hard-coded manifest GET the proxy injects
// into the startup manifest connection's outbound buffer before the event
// loop starts, per get_manifest in original_source/src/proxy/stream.c. The
// response to THIS request is what primes the bitrate ladder (the "normal"
// manifest, as opposed to the "_nolist" copy a real browser request
// triggers via duplicateManifest).
const bootstrapManifestRequest = "GET /vod/big_buck_bunny.f4m  HTTP/1.0\r\nConnection: close\r\n\r\n"

// Service holds the proxy's process-wide state: the connection table, the
// EWMA throughput estimate, the advertised bitrate ladder, and the most
// recent segment/fragment numbers — the Go analogue of the file-scope
// globals in original_source/src/proxy/{bitrate,parse}.c and
// proxy-core.h's connections array, gathered into one explicit struct per
// spec.md §9's design note.
type Service struct {
	cfg Config

	listenerFD int
	conns      *connTable

	throughputT int64
	bitrates    []int

	segNum, fragNum, modifiedBitrate int

	activity *ActivityLog
	metrics  *metrics.Store
	logger   *slog.Logger
}

// NewService builds a Service ready to accept connections once Bootstrap
// and Run are called.
func NewService(cfg Config, activity *ActivityLog, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		conns:    newConnTable(),
		activity: activity,
		logger:   logger,
	}
}

// Listen opens and binds the proxy's browser-facing TCP listener, per
// setupListen in original_source/src/proxy/proxy-core.c.
func (svc *Service) Listen() error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("%w: listen socket: %v", ErrStartup, err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("%w: setsockopt SO_REUSEADDR: %v", ErrStartup, err)
	}

	port, err := parsePort(svc.cfg.ListenPort)
	if err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}
	addr := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("%w: bind listener to port %d: %v", ErrStartup, port, err)
	}

	if err := unix.Listen(fd, Backlog); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("%w: listen: %v", ErrStartup, err)
	}

	svc.listenerFD = fd
	svc.logger.Info("proxy listening", "port", port)
	return nil
}

// Bootstrap opens the startup manifest connection and injects the
// hard-coded manifest request into its outbound buffer, per
// getManifestWrapper in original_source/src/proxy/proxy.c. Its origin
// socket is registered in the connection table exactly like any other
// connection's, so the ordinary event loop drives its send and its
// response runs through the ordinary response inspector — priming
// svc.bitrates the same way any later manifest response would.
func (svc *Service) Bootstrap() error {
	originIP, err := svc.resolveOriginIP()
	if err != nil {
		return fmt.Errorf("%w: resolve manifest origin: %v", ErrStartup, err)
	}

	originFD, originAddr, err := svc.connectOrigin(originIP)
	if err != nil {
		return fmt.Errorf("%w: connect manifest origin: %v", ErrStartup, err)
	}

	conn := NewConnection(bootstrapBrowserFD, originFD)
	conn.OriginIPText = originAddr
	if err := conn.OriginOut.Append([]byte(bootstrapManifestRequest), len(bootstrapManifestRequest)); err != nil {
		_ = unix.Close(originFD)
		return fmt.Errorf("%w: buffer manifest request: %v", ErrStartup, err)
	}

	svc.conns.register(conn)
	svc.logger.Info("manifest bootstrap connection established", "origin", originAddr, "fd", originFD)
	return nil
}

func parsePort(s string) (int, error) {
	var port int
	if _, err := fmt.Sscanf(s, "%d", &port); err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	return port, nil
}

// SetMetricsStore attaches an optional persisted fragment-metrics store.
// When set, every recorded fragment is written both to the fixed-format
// activity log and to this store, feeding the admin API's history
// endpoint (SPEC_FULL.md's "Fragment metrics history" supplemented
// feature).
func (svc *Service) SetMetricsStore(store *metrics.Store) {
	svc.metrics = store
}

// Stats is a point-in-time snapshot of proxy state exposed to
// internal/adminapi.
type Stats struct {
	ThroughputBps int64 `json:"throughput_bps"`
	Bitrates      []int `json:"bitrates"`
	ActiveConns   int   `json:"active_connections"`
	LastBitrate   int   `json:"last_bitrate"`
	LastSegment   int   `json:"last_segment"`
	LastFragment  int   `json:"last_fragment"`
}

// Snapshot returns the current Stats.
func (svc *Service) Snapshot() Stats {
	return Stats{
		ThroughputBps: svc.throughputT,
		Bitrates:      append([]int(nil), svc.bitrates...),
		ActiveConns:   len(svc.conns.fds()),
		LastBitrate:   svc.modifiedBitrate,
		LastSegment:   svc.segNum,
		LastFragment:  svc.fragNum,
	}
}

// Close releases the listening socket and activity log.
func (svc *Service) Close() {
	if svc.listenerFD != 0 {
		_ = unix.Close(svc.listenerFD)
	}
	if svc.activity != nil {
		_ = svc.activity.Close()
	}
}
