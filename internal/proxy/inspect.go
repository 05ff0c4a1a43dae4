package proxy

import (
	"bytes"
	"strconv"
	"time"

	"github.com/kestrelnet/vcdn/internal/metrics"
)

// manifestSentinel is the bitrate value the "_nolist" manifest response
// always advertises first, used to recognize it among forwarded responses,
// per spec.md §4.7.4 and open question (c): if 500 is not actually one of
// the advertised bitrates the nolist response is forwarded to the browser
// instead of dropped, exactly as original_source behaves.
const manifestSentinel = `bitrate="500"`

const bitrateFieldKey = `bitrate="`

// extractBitrates scans resp for every bitrate="<n>" occurrence and returns
// the parsed integers, capped at MaxBitrates, per
// extract_bitrates_from_response in original_source/src/proxy/parse.c.
func extractBitrates(resp []byte) []int {
	var bitrates []int
	rest := resp
	for len(bitrates) < MaxBitrates {
		idx := bytes.Index(rest, []byte(bitrateFieldKey))
		if idx < 0 {
			break
		}
		start := idx + len(bitrateFieldKey)
		end := bytes.IndexByte(rest[start:], '"')
		if end < 0 {
			break
		}
		if n, err := strconv.Atoi(string(rest[start : start+end])); err == nil {
			bitrates = append(bitrates, n)
		}
		rest = rest[start+end:]
	}
	return bitrates
}

// contentLengthOf re-derives the declared body length of a fully-framed
// message, per first_body_length(buffer->send_buf) in
// original_source/src/proxy/parse.c's parse_response (it re-parses the
// framed response rather than threading the value through from framing).
func contentLengthOf(msg []byte) int {
	idx := bytes.Index(msg, []byte(headerTerminator))
	if idx < 0 {
		return 0
	}
	return headerContentLength(msg[:idx+len(headerTerminator)])
}

// inspectResponse applies spec.md §4.7.4 to a freshly-framed origin
// response, mirroring parse_response in original_source/src/proxy/parse.c.
// It returns the bytes to forward to the browser (nil if the response
// should be dropped) and whether to forward at all.
//
//   - A "_nolist" manifest response (recognized by manifestSentinel) is
//     parsed for its bitrate ladder and dropped — never forwarded.
//   - If the EWMA throughput T is still zero, it is seeded from the lowest
//     advertised bitrate WITHOUT unit conversion: original_source's
//     `throughput = lowest_bitrate()` assigns the manifest's raw Kbps
//     number directly into the nominally-bits/sec throughput variable.
//     This module preserves that exact quirk rather than "fixing" the
//     units, per spec.md §4.7.4 and §9's guidance to replicate observed
//     source behavior.
//   - Otherwise, if conn was expecting a fragment response, the
//     throughput is measured and folded into the EWMA, and an activity
//     log line is emitted.
func (svc *Service) inspectResponse(conn *Connection, resp []byte) ([]byte, bool) {
	if bytes.Contains(resp, []byte(manifestSentinel)) {
		if len(svc.bitrates) == 0 {
			svc.bitrates = extractBitrates(resp)
		}
		return nil, false
	}

	if svc.throughputT == 0 {
		if len(svc.bitrates) > 0 {
			svc.throughputT = int64(lowestBitrate(svc.bitrates))
		}
		return resp, true
	}

	if conn.ExpectingVideoResponse {
		svc.recordFragment(conn, resp)
		conn.ExpectingVideoResponse = false
	}

	return resp, true
}

// recordFragment measures throughput for the just-completed fragment
// response and appends the activity log line, per the video_next_response
// branch of parse_response in original_source/src/proxy/parse.c.
func (svc *Service) recordFragment(conn *Connection, resp []byte) {
	fragSize := contentLengthOf(resp)
	dt := conn.Stream.tFinal - conn.Stream.tStart

	inst := instantaneousThroughput(fragSize, dt)
	svc.throughputT = ewma(svc.cfg.Alpha, inst, svc.throughputT)

	// duration is logged from the raw (unclamped) elapsed time, matching
	// parse_response's `duration = (t_final - t_start)/1000000.0` — only
	// calculate_throughput's internal denominator is clamped to 1.
	duration := float64(dt) / 1e6

	chunkName := formatChunkName(svc.modifiedBitrate, svc.segNum, svc.fragNum)
	instKbps := inst / 1000
	avgKbps := svc.throughputT / 1000

	if svc.activity != nil {
		if err := svc.activity.Record(epochSeconds(), duration, instKbps, avgKbps, svc.modifiedBitrate, conn.OriginIPText, chunkName); err != nil {
			svc.logger.Warn("failed to record activity log", "error", err)
		}
	}

	if svc.metrics != nil {
		row := metrics.FragmentMetric{
			RecordedAt: time.Now(),
			DurationS:  duration,
			InstKbps:   instKbps,
			AvgKbps:    avgKbps,
			Bitrate:    svc.modifiedBitrate,
			OriginIP:   conn.OriginIPText,
			ChunkName:  chunkName,
		}
		if err := svc.metrics.RecordFragment(row); err != nil {
			svc.logger.Warn("failed to record fragment metric", "error", err)
		}
	}
}

func formatChunkName(bitrate, seg, frag int) string {
	return strconv.Itoa(bitrate) + "Seg" + strconv.Itoa(seg) + "-Frag" + strconv.Itoa(frag)
}
