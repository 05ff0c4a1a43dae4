// Package proxy implements the video-streaming proxy: a single-threaded,
// readiness-multiplexed relay that sits between a browser and an origin
// HTTP server, rewriting video-fragment requests to the bitrate its EWMA
// throughput estimate supports. It is grounded on
// original_source/src/proxy/{proxy,proxy-core,connection,stream,parse,
// bitrate,mydns,config}.c, reshaped the way the teacher repository
// (jroosing/hydradns) reshapes its own single-threaded UDP core: an
// explicit Service struct in place of the C source's file-scope globals,
// golang.org/x/sys/unix for the raw socket/select primitives the teacher's
// internal/server/udp_server.go also reaches for, and internal/dnswire
// standing in for mydnsparse.c.
package proxy

import "errors"

// Error kinds, per spec.md §7's OutOfMemory/Parse/Io/Protocol/Timeout/Config
// taxonomy. Callers use errors.Is against these sentinels; context is added
// with fmt.Errorf("...: %w", ...).
var (
	// ErrConfig marks a malformed or incomplete CLI configuration.
	ErrConfig = errors.New("proxy: config error")
	// ErrProtocol marks an unexpected wire shape — a malformed DNS reply, an
	// HTTP message this proxy cannot frame.
	ErrProtocol = errors.New("proxy: protocol error")
	// ErrTimeout marks an operation that exceeded its deadline — only ever
	// the nameserver DNS query, made at startup and for every accepted
	// browser connection (spec.md §4.6).
	ErrTimeout = errors.New("proxy: timeout")
	// ErrStartup marks a fatal error during proxy bootstrap (listen, the
	// manifest bootstrap connection) that should abort the process.
	ErrStartup = errors.New("proxy: startup failed")
)
