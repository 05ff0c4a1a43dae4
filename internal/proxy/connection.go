package proxy

import "github.com/kestrelnet/vcdn/internal/buffer"

// direction distinguishes the two half-duplex byte streams a Connection
// multiplexes, per spec.md §3's "two half-duplex byte streams".
type direction int

const (
	// dirBrowserToOrigin carries browser requests toward the origin.
	dirBrowserToOrigin direction = iota
	// dirOriginToBrowser carries origin responses back to the browser.
	dirOriginToBrowser
)

// bootstrapBrowserFD is the sentinel browser-side socket identifier used by
// the startup manifest connection (spec.md §4.6, §9): that connection has
// no real browser peer, so it is never registered in the connection table
// under this value and never monitored for read/write readiness on it.
const bootstrapBrowserFD = 0

// streamBuffer accumulates raw bytes received in one direction until a
// complete HTTP message can be framed out of it, per spec.md §3's
// stream_buffer (recv_buf/recv_len half; send_buf/send_len is transient —
// see framer.go's frameOne, which returns the framed message directly
// rather than storing it back on the struct).
type streamBuffer struct {
	recv *buffer.Buffer
}

func newStreamBuffer() streamBuffer {
	return streamBuffer{recv: buffer.New()}
}

// Stream holds the per-connection framing state for both directions, plus
// the single t_start/t_final timing pair original_source/src/proxy/stream.h's
// struct stream_t carries directly on the stream (not per-direction).
// t_start is updated by ANY successful send on either socket of the
// connection (spec.md §4.5's write-ready path, mirroring sendConnection's
// unconditional microtime call in proxy-core.c); t_final is updated only
// when a complete response has just been framed from the origin (mirroring
// parse_data's microtime call, which runs before parse_response). Preserve
// this asymmetry rather than "fixing" it into a per-direction timestamp:
// it is the exact quirk spec.md §4.8 describes.
type Stream struct {
	browserToOrigin streamBuffer
	originToBrowser streamBuffer
	tStart          int64
	tFinal          int64
}

func newStream() Stream {
	return Stream{
		browserToOrigin: newStreamBuffer(),
		originToBrowser: newStreamBuffer(),
	}
}

// bufferFor returns the accumulation buffer for bytes travelling in
// direction dir.
func (s *Stream) bufferFor(dir direction) *streamBuffer {
	if dir == dirBrowserToOrigin {
		return &s.browserToOrigin
	}
	return &s.originToBrowser
}

// Connection pairs one browser socket with one origin socket, per
// spec.md §3's Connection record and original_source/src/proxy/connection.h's
// struct connection_t. BrowserFD is bootstrapBrowserFD for the startup
// manifest connection, which has no browser peer.
type Connection struct {
	BrowserFD int
	OriginFD  int

	// BrowserOut / OriginOut hold bytes awaiting transmission to their
	// respective peer — the connection-level "outbound buffer" of
	// spec.md §3, distinct from Stream's recv-side framing buffers.
	BrowserOut *buffer.Buffer
	OriginOut  *buffer.Buffer

	Stream Stream

	// OriginIPText is the stringified origin peer address, kept for
	// logging per spec.md §3 and original_source's connection_t.serverIP.
	OriginIPText string

	// ExpectingVideoResponse is set when a fragment request was just
	// forwarded to the origin, per original_source's video_next_response.
	ExpectingVideoResponse bool
}

// NewConnection builds a Connection pairing browserFD and originFD, per
// createConnection in original_source/src/proxy/connection.c.
func NewConnection(browserFD, originFD int) *Connection {
	return &Connection{
		BrowserFD:  browserFD,
		OriginFD:   originFD,
		BrowserOut: buffer.New(),
		OriginOut:  buffer.New(),
		Stream:     newStream(),
	}
}

// isBootstrap reports whether c is the startup manifest connection, which
// has no real browser socket.
func (c *Connection) isBootstrap() bool {
	return c.BrowserFD == bootstrapBrowserFD
}

// directionOf reports which half-duplex direction bytes arriving on fd
// belong to. Callers must only call this for fd == c.BrowserFD or
// fd == c.OriginFD.
func (c *Connection) directionOf(fd int) direction {
	if fd == c.BrowserFD && !c.isBootstrap() {
		return dirBrowserToOrigin
	}
	return dirOriginToBrowser
}

// outboundBufferFor returns the outbound buffer bytes read from fd should
// eventually be forwarded into — i.e. the buffer for the OTHER socket.
func (c *Connection) outboundBufferFor(dir direction) *buffer.Buffer {
	if dir == dirBrowserToOrigin {
		return c.OriginOut
	}
	return c.BrowserOut
}

// hasContent reports whether either outbound buffer still holds bytes to
// send, per connectionHaveContent in original_source/src/proxy/proxy-core.c.
func (c *Connection) hasContent() bool {
	return c.BrowserOut.HasContent() || c.OriginOut.HasContent()
}

// connTable maps a live socket identifier to the Connection record that
// owns it, per spec.md §9's design note generalizing
// original_source/src/proxy/proxy-core.h's connections[FD_SETSIZE] array
// into a safer handle->owner mapping.
type connTable struct {
	byFD map[int]*Connection
}

func newConnTable() *connTable {
	return &connTable{byFD: make(map[int]*Connection)}
}

func (t *connTable) lookup(fd int) *Connection {
	return t.byFD[fd]
}

// register adds c under both of its socket identifiers, skipping the
// bootstrap sentinel so fd 0 is never mistaken for a live monitored socket.
func (t *connTable) register(c *Connection) {
	if !c.isBootstrap() {
		t.byFD[c.BrowserFD] = c
	}
	t.byFD[c.OriginFD] = c
}

// remove clears c's table entries, mirroring removeConnection's
// connections[...] = NULL assignments in original_source/src/proxy/proxy-core.c.
func (t *connTable) remove(c *Connection) {
	if !c.isBootstrap() {
		delete(t.byFD, c.BrowserFD)
	}
	delete(t.byFD, c.OriginFD)
}

// fds returns every distinct live socket identifier currently monitored.
func (t *connTable) fds() []int {
	out := make([]int, 0, len(t.byFD))
	for fd := range t.byFD {
		out = append(out, fd)
	}
	return out
}
