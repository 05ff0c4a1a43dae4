package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnectionDirectionRouting(t *testing.T) {
	conn := NewConnection(5, 6)

	assert.Equal(t, dirBrowserToOrigin, conn.directionOf(5))
	assert.Equal(t, dirOriginToBrowser, conn.directionOf(6))

	assert.Same(t, conn.OriginOut, conn.outboundBufferFor(dirBrowserToOrigin))
	assert.Same(t, conn.BrowserOut, conn.outboundBufferFor(dirOriginToBrowser))
}

func TestBootstrapConnectionHasNoBrowserDirection(t *testing.T) {
	conn := NewConnection(bootstrapBrowserFD, 7)
	assert.True(t, conn.isBootstrap())
	// Bytes arriving on its only real socket are always origin-to-browser.
	assert.Equal(t, dirOriginToBrowser, conn.directionOf(7))
}

func TestConnTableSkipsBootstrapSentinel(t *testing.T) {
	table := newConnTable()
	conn := NewConnection(bootstrapBrowserFD, 7)
	table.register(conn)

	assert.Nil(t, table.lookup(bootstrapBrowserFD), "fd 0 must never be a live table key")
	assert.Same(t, conn, table.lookup(7))

	table.remove(conn)
	assert.Nil(t, table.lookup(7))
}

func TestConnTableRegistersBothRealSockets(t *testing.T) {
	table := newConnTable()
	conn := NewConnection(10, 20)
	table.register(conn)

	require.Same(t, conn, table.lookup(10))
	require.Same(t, conn, table.lookup(20))

	fds := table.fds()
	assert.ElementsMatch(t, []int{10, 20}, fds)
}

func TestHasContentReflectsEitherOutboundBuffer(t *testing.T) {
	conn := NewConnection(1, 2)
	assert.False(t, conn.hasContent())

	require.NoError(t, conn.BrowserOut.Append([]byte("x"), 1))
	assert.True(t, conn.hasContent())
}
