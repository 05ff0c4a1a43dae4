package proxy

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBitrates(t *testing.T) {
	resp := []byte(`<manifest><media bitrate="500"/><media bitrate="1000"/><media bitrate="1500"/></manifest>`)
	assert.Equal(t, []int{500, 1000, 1500}, extractBitrates(resp))
}

func TestExtractBitratesCapsAtMax(t *testing.T) {
	var resp []byte
	for i := 0; i < MaxBitrates+10; i++ {
		resp = append(resp, []byte(`bitrate="1"`)...)
	}
	assert.Len(t, extractBitrates(resp), MaxBitrates)
}

func TestContentLengthOf(t *testing.T) {
	msg := []byte("HTTP/1.0 200 OK\r\nContent-Length: 7\r\n\r\n1234567")
	assert.Equal(t, 7, contentLengthOf(msg))
}

func TestInspectResponseDropsNolistManifestAndExtractsBitrates(t *testing.T) {
	svc := &Service{logger: slog.Default()}
	resp := []byte(`HTTP/1.0 200 OK\r\n\r\n<media bitrate="500"/><media bitrate="1000"/>`)

	forward, ok := svc.inspectResponse(&Connection{}, resp)
	assert.False(t, ok)
	assert.Nil(t, forward)
	assert.Equal(t, []int{500, 1000}, svc.bitrates)
}

func TestInspectResponseSeedsThroughputFromLowestBitrateWithoutUnitConversion(t *testing.T) {
	svc := &Service{logger: slog.Default(), bitrates: []int{500, 1000}}
	resp := []byte("HTTP/1.0 200 OK\r\n\r\nnot a manifest body")

	forward, ok := svc.inspectResponse(&Connection{}, resp)
	require.True(t, ok)
	assert.Equal(t, resp, forward)
	assert.Equal(t, int64(500), svc.throughputT, "seeded directly from Kbps, not converted to bits/sec")
}

func TestInspectResponseRecordsFragmentWhenExpected(t *testing.T) {
	svc := &Service{logger: slog.Default(), cfg: Config{Alpha: 0.5}, bitrates: []int{500, 1000}, throughputT: 500_000, modifiedBitrate: 500}
	conn := &Connection{ExpectingVideoResponse: true}
	conn.Stream.tStart = 0
	conn.Stream.tFinal = 1_000_000

	resp := []byte("HTTP/1.0 200 OK\r\nContent-Length: 10\r\n\r\n1234567890")
	forward, ok := svc.inspectResponse(conn, resp)

	require.True(t, ok)
	assert.Equal(t, resp, forward)
	assert.False(t, conn.ExpectingVideoResponse)
	assert.NotEqual(t, int64(500_000), svc.throughputT, "EWMA should have folded in the new sample")
}
