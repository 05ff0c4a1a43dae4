package nameserver

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelnet/vcdn/internal/dnswire"
	"github.com/kestrelnet/vcdn/internal/topology"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestActivityLog(t *testing.T) *ActivityLog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "activity.log")
	log, err := OpenActivityLog(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestHandleQueryRoundRobin(t *testing.T) {
	cfg := Config{Mode: ModeRoundRobin}
	svc := NewService(cfg, []string{"10.0.0.1", "10.0.0.2"}, nil, newTestActivityLog(t), discardLogger())

	q := dnswire.NewQuery(1)
	raw, err := q.Marshal()
	require.NoError(t, err)

	resp, err := svc.HandleQuery(raw, "192.168.0.1")
	require.NoError(t, err)

	got, err := dnswire.Parse(resp)
	require.NoError(t, err)
	assert.False(t, got.Invalid)
	assert.Equal(t, "10.0.0.1", got.ResponseIP)

	// Second call cycles to the next server.
	resp2, err := svc.HandleQuery(raw, "192.168.0.1")
	require.NoError(t, err)
	got2, err := dnswire.Parse(resp2)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", got2.ResponseIP)
}

func TestHandleQueryRoundRobinNoServersDropsSilently(t *testing.T) {
	cfg := Config{Mode: ModeRoundRobin}
	svc := NewService(cfg, nil, nil, newTestActivityLog(t), discardLogger())

	q := dnswire.NewQuery(1)
	raw, err := q.Marshal()
	require.NoError(t, err)

	resp, err := svc.HandleQuery(raw, "192.168.0.1")
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestHandleQueryGeoPicksClosest(t *testing.T) {
	g := topology.NewGraph()
	g.AddEdge("192.168.0.1", "10.0.0.1")
	g.AddEdge("10.0.0.1", "10.0.0.2")
	g.AddEdge("192.168.0.1", "10.0.0.2")

	cfg := Config{Mode: ModeGeo}
	svc := NewService(cfg, []string{"10.0.0.1", "10.0.0.2"}, g, newTestActivityLog(t), discardLogger())

	q := dnswire.NewQuery(9)
	raw, err := q.Marshal()
	require.NoError(t, err)

	resp, err := svc.HandleQuery(raw, "192.168.0.1")
	require.NoError(t, err)

	got, err := dnswire.Parse(resp)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", got.ResponseIP)
}

func TestHandleQueryForeignNameReturnsInvalid(t *testing.T) {
	cfg := Config{Mode: ModeRoundRobin}
	svc := NewService(cfg, []string{"10.0.0.1"}, nil, newTestActivityLog(t), discardLogger())

	q := dnswire.NewQuery(5)
	raw, err := q.Marshal()
	require.NoError(t, err)

	// "devil.cs.cmu.edu" label-encodes to the same 18-byte wire length
	// as the fixed domain, so splicing it into QNAME keeps the message
	// at QueryLen while naming a different domain.
	devilDomain := []byte{5, 'd', 'e', 'v', 'i', 'l', 2, 'c', 's', 3, 'c', 'm', 'u', 3, 'e', 'd', 'u', 0}
	require.Len(t, devilDomain, dnswire.DomainNameLen)
	copy(raw[dnswire.HeaderLen:dnswire.HeaderLen+dnswire.DomainNameLen], devilDomain)

	resp, err := svc.HandleQuery(raw, "192.168.0.1")
	require.NoError(t, err)

	got, err := dnswire.Parse(resp)
	require.NoError(t, err)
	assert.True(t, got.Invalid)
}
