package proxy

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/kestrelnet/vcdn/internal/buffer"
	"github.com/kestrelnet/vcdn/internal/poolutil"
)

// Run drives the proxy's single-threaded readiness loop: build fd_sets from
// the listener and every live connection, block in select(2), then service
// ready descriptors in descending order with writes serviced before reads
// on the same descriptor — the Go analogue of run_proxy's dispatch loop in
// original_source/src/proxy/proxy-core.c, which checks FD_ISSET for write
// before read on every fd it walks.
func (svc *Service) Run() error {
	for {
		readFDs, writeFDs, maxFD := svc.buildFDSets()

		n, err := unix.Select(maxFD+1, readFDs, writeFDs, nil, nil)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("proxy: select: %w", err)
		}
		if n == 0 {
			continue
		}

		for fd := maxFD; fd >= 0; fd-- {
			if fdIsSet(writeFDs, fd) {
				svc.serviceWrite(fd)
			}
			// serviceRead re-checks the connection table itself, so a write
			// that just tore the connection down above is handled safely.
			if fdIsSet(readFDs, fd) {
				svc.serviceRead(fd)
			}
		}
	}
}

// buildFDSets assembles the read and write fd_sets for the next select(2)
// call. The listener is always monitored for read. Every live connection's
// non-bootstrap browser fd and its origin fd are always monitored for read;
// a fd is additionally monitored for write only when its corresponding
// outbound buffer still holds bytes, mirroring connectionHaveContent's use
// in original_source/src/proxy/proxy-core.c's fd_set construction.
func (svc *Service) buildFDSets() (read, write *unix.FdSet, maxFD int) {
	read = &unix.FdSet{}
	write = &unix.FdSet{}
	fdZero(read)
	fdZero(write)

	fdSet(read, svc.listenerFD)
	maxFD = svc.listenerFD

	seen := make(map[int]bool)
	for _, fd := range svc.conns.fds() {
		if seen[fd] {
			continue
		}
		seen[fd] = true

		fdSet(read, fd)
		if fd > maxFD {
			maxFD = fd
		}
	}

	for _, fd := range svc.conns.fds() {
		conn := svc.conns.lookup(fd)
		if conn == nil {
			continue
		}
		if !conn.isBootstrap() && fd == conn.BrowserFD && conn.BrowserOut.HasContent() {
			fdSet(write, fd)
		}
		if fd == conn.OriginFD && conn.OriginOut.HasContent() {
			fdSet(write, fd)
		}
	}

	return read, write, maxFD
}

// serviceRead handles a readable descriptor: accepting a new browser
// connection on the listener, or reading and framing bytes from an
// existing connection's socket. A 0-byte read only tears the connection
// down when neither outbound buffer still holds bytes to deliver, per
// connectionHaveContent's guard in
// original_source/src/proxy/proxy-core.c — otherwise a half-close raced
// against a still-buffered response tail would drop it on the floor.
func (svc *Service) serviceRead(fd int) {
	if fd == svc.listenerFD {
		svc.acceptBrowser()
		return
	}

	conn := svc.conns.lookup(fd)
	if conn == nil {
		return
	}

	scratch := poolutil.RecvScratch.Get()
	defer poolutil.RecvScratch.Put(scratch)

	n, err := unix.Read(fd, scratch[:])
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return
		}
		svc.removeConnection(conn)
		return
	}
	if n == 0 {
		if !conn.hasContent() {
			svc.removeConnection(conn)
		}
		return
	}

	dir := conn.directionOf(fd)
	sb := conn.Stream.bufferFor(dir)
	if err := sb.recv.Append(scratch[:n], n); err != nil {
		svc.logger.Warn("dropping connection: recv buffer append failed", "error", err)
		svc.removeConnection(conn)
		return
	}

	msg, ok := frameOne(sb)
	if !ok {
		return
	}

	svc.dispatchMessage(conn, dir, msg)
}

// dispatchMessage applies request rewriting or response inspection to a
// freshly-framed message and queues the result for delivery to the other
// side of the connection, per spec.md §4.7.
func (svc *Service) dispatchMessage(conn *Connection, dir direction, msg []byte) {
	out := conn.outboundBufferFor(dir)

	if dir == dirBrowserToOrigin {
		rewritten := svc.rewriteRequest(conn, msg)
		if err := out.Append(rewritten, len(rewritten)); err != nil {
			svc.logger.Warn("dropping connection: outbound buffer append failed", "error", err)
			svc.removeConnection(conn)
		}
		return
	}

	// Origin to browser: a complete response has just been framed, so mark
	// the final timestamp before inspecting it, mirroring parse_data's
	// microtime call ahead of parse_response in
	// original_source/src/proxy/parse.c.
	conn.Stream.tFinal = nowMicros()

	forward, ok := svc.inspectResponse(conn, msg)
	if !ok {
		return
	}
	if err := out.Append(forward, len(forward)); err != nil {
		svc.logger.Warn("dropping connection: outbound buffer append failed", "error", err)
		svc.removeConnection(conn)
	}
}

// acceptBrowser accepts a pending browser connection, resolves and connects
// to the origin, and registers the resulting Connection — the per-request
// analogue of original_source/src/proxy/proxy-core.c's acceptConnection
// followed by createServerSock.
func (svc *Service) acceptBrowser() {
	browserFD, _, err := unix.Accept(svc.listenerFD)
	if err != nil {
		if err != unix.EAGAIN && err != unix.EINTR {
			svc.logger.Warn("accept failed", "error", err)
		}
		return
	}

	originIP, err := svc.resolveOriginIP()
	if err != nil {
		svc.logger.Warn("dropping browser connection: origin resolution failed", "error", err)
		_ = unix.Close(browserFD)
		return
	}

	originFD, originAddr, err := svc.connectOrigin(originIP)
	if err != nil {
		svc.logger.Warn("dropping browser connection: origin connect failed", "error", err)
		_ = unix.Close(browserFD)
		return
	}

	conn := NewConnection(browserFD, originFD)
	conn.OriginIPText = originAddr
	svc.conns.register(conn)
}

// serviceWrite drains as much of fd's outbound buffer as a single write(2)
// accepts, recording t_start on any successful send, per stream_t's shared
// timestamp semantics documented on connection.go's Stream. Only
// EPIPE/ECONNRESET/EHOSTUNREACH tear the connection down, per spec.md §4.5
// and the errno switch in original_source/src/proxy/proxy-core.c's
// sendConnection; other errors are logged and the connection is left alive
// to retry on the next writable iteration.
func (svc *Service) serviceWrite(fd int) {
	conn := svc.conns.lookup(fd)
	if conn == nil {
		return
	}

	outbound := svc.outboundBufferForFD(conn, fd)
	if outbound == nil || !outbound.HasContent() {
		return
	}

	n, err := unix.Write(fd, outbound.Bytes())
	if err != nil {
		switch err {
		case unix.EAGAIN, unix.EINTR:
			return
		case unix.EPIPE, unix.ECONNRESET, unix.EHOSTUNREACH:
			svc.removeConnection(conn)
			return
		default:
			svc.logger.Warn("write failed", "fd", fd, "error", err)
			return
		}
	}
	if n > 0 {
		outbound.Consume(n)
		conn.Stream.tStart = nowMicros()
	}
}

// outboundBufferForFD returns the buffer fd should drain, or nil if fd does
// not belong to conn.
func (svc *Service) outboundBufferForFD(conn *Connection, fd int) *buffer.Buffer {
	switch {
	case !conn.isBootstrap() && fd == conn.BrowserFD:
		return conn.BrowserOut
	case fd == conn.OriginFD:
		return conn.OriginOut
	default:
		return nil
	}
}

// removeConnection closes both of conn's sockets (only the origin socket
// for the bootstrap connection), ignoring close errors, and drops it from
// the connection table, per
// removeConnection in original_source/src/proxy/proxy-core.c.
func (svc *Service) removeConnection(conn *Connection) {
	svc.conns.remove(conn)
	if !conn.isBootstrap() {
		_ = unix.Close(conn.BrowserFD)
	}
	_ = unix.Close(conn.OriginFD)
}
